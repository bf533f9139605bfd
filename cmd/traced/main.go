package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/danmuck/tracectl/internal/config"
	"github.com/danmuck/tracectl/internal/daemon"
	"github.com/danmuck/tracectl/internal/observability"
)

func main() {
	configPath := flag.String("config", "traced.toml", "daemon configuration file")
	flag.Parse()

	observability.InitLogger("traced")

	cfg, err := config.LoadDaemonConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "traced: %v\n", err)
		os.Exit(1)
	}

	svc := daemon.NewService(cfg)
	if err := svc.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "traced: %v\n", err)
		os.Exit(1)
	}
}
