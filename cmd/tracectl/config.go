package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/danmuck/tracectl/internal/protocol/rule"
	"github.com/danmuck/tracectl/internal/protocol/snapshot"
)

// profile is the client-side TOML shape: where the daemon lives and the
// configuration records to push to it.
type fileProfile struct {
	DaemonAddr     string              `toml:"daemon_addr"`
	ConnectTimeout string              `toml:"connect_timeout"`
	Outputs        []fileOutputProfile `toml:"outputs"`
	Rules          []fileRuleProfile   `toml:"rules"`
}

type fileOutputProfile struct {
	Name    string `toml:"name"`
	DataURL string `toml:"data_url"`
	CtrlURL string `toml:"ctrl_url"`
	MaxSize uint64 `toml:"max_size"`
}

type fileRuleProfile struct {
	Site    string `toml:"site"`
	Pattern string `toml:"pattern"`
	Filter  string `toml:"filter"`
}

type clientProfile struct {
	DaemonAddr     string
	ConnectTimeout time.Duration
	Outputs        []*snapshot.Output
	Rules          []*rule.Syscall
}

func loadProfile(path string) (clientProfile, error) {
	profile := clientProfile{
		DaemonAddr:     "127.0.0.1:9770",
		ConnectTimeout: 5 * time.Second,
	}

	var raw fileProfile
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return clientProfile{}, fmt.Errorf("load profile: %w", err)
	}

	if meta.IsDefined("daemon_addr") {
		addr := strings.TrimSpace(raw.DaemonAddr)
		if addr != "" {
			profile.DaemonAddr = addr
		}
	}

	if meta.IsDefined("connect_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.ConnectTimeout))
		if err != nil {
			return clientProfile{}, fmt.Errorf("parse connect_timeout: %w", err)
		}
		profile.ConnectTimeout = d
	}

	for i, oc := range raw.Outputs {
		out := &snapshot.Output{
			Name:    strings.TrimSpace(oc.Name),
			DataURL: strings.TrimSpace(oc.DataURL),
			CtrlURL: strings.TrimSpace(oc.CtrlURL),
			MaxSize: oc.MaxSize,
		}
		if !out.Validate() {
			return clientProfile{}, fmt.Errorf("profile outputs[%d] (%q) is invalid", i, oc.Name)
		}
		profile.Outputs = append(profile.Outputs, out)
	}

	for i, rc := range raw.Rules {
		site, err := rule.ParseEmissionSite(rc.Site)
		if err != nil {
			return clientProfile{}, fmt.Errorf("profile rules[%d]: %w", i, err)
		}
		r, err := rule.NewSyscall(site, strings.TrimSpace(rc.Pattern))
		if err != nil {
			return clientProfile{}, fmt.Errorf("profile rules[%d]: %w", i, err)
		}
		if f := strings.TrimSpace(rc.Filter); f != "" {
			r.SetFilter(f)
		}
		profile.Rules = append(profile.Rules, r)
	}

	return profile, nil
}
