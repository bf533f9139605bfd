package main

import (
	"flag"
	"fmt"
	"net"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/tracectl/internal/observability"
	"github.com/danmuck/tracectl/internal/protocol/record"
	"github.com/danmuck/tracectl/internal/protocol/session"
)

func main() {
	profilePath := flag.String("profile", "tracectl.toml", "client profile file")
	flag.Parse()

	observability.InitLogger("tracectl")

	if err := run(*profilePath); err != nil {
		fmt.Fprintf(os.Stderr, "tracectl: %v\n", err)
		os.Exit(1)
	}
}

func run(profilePath string) error {
	profile, err := loadProfile(profilePath)
	if err != nil {
		return err
	}

	conn, err := net.DialTimeout("tcp", profile.DaemonAddr, profile.ConnectTimeout)
	if err != nil {
		return fmt.Errorf("dial %s: %w", profile.DaemonAddr, err)
	}
	defer conn.Close()

	c := session.NewConn(conn, session.DefaultConfig())

	records := make([]record.Record, 0, len(profile.Outputs)+len(profile.Rules))
	for _, o := range profile.Outputs {
		records = append(records, o)
	}
	for _, r := range profile.Rules {
		records = append(records, r)
	}

	for _, rec := range records {
		if err := c.WriteRecord(rec); err != nil {
			return fmt.Errorf("push %s: %w", rec.Kind(), err)
		}
		log.Info().Stringer("kind", rec.Kind()).Int("bytes", rec.WireSize()).Msg("pushed")
	}

	log.Info().Int("records", len(records)).Str("daemon", profile.DaemonAddr).Msg("profile applied")
	return nil
}
