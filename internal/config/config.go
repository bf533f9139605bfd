package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/danmuck/tracectl/internal/protocol/rule"
	"github.com/danmuck/tracectl/internal/protocol/snapshot"
)

type DaemonConfig struct {
	Name        string         `toml:"name"`
	ControlAddr string         `toml:"control_addr"`
	AdminAddr   string         `toml:"admin_addr"`
	CorsOrigins []string       `toml:"cors_origins"`
	Outputs     []OutputConfig `toml:"outputs"`
	Rules       []RuleConfig   `toml:"rules"`
}

type OutputConfig struct {
	Name    string `toml:"name"`
	DataURL string `toml:"data_url"`
	CtrlURL string `toml:"ctrl_url"`
	MaxSize uint64 `toml:"max_size"`
}

type RuleConfig struct {
	Site    string `toml:"site"`
	Pattern string `toml:"pattern"`
	Filter  string `toml:"filter"`
}

func LoadDaemonConfig(path string) (DaemonConfig, error) {
	var cfg DaemonConfig
	if err := loadToml(path, &cfg); err != nil {
		return DaemonConfig{}, err
	}
	if cfg.Name == "" {
		cfg.Name = "traced"
	}
	if cfg.ControlAddr == "" {
		cfg.ControlAddr = ":9770"
	}
	if cfg.AdminAddr == "" {
		cfg.AdminAddr = ":9771"
	}
	if err := ValidateDaemonConfig(cfg); err != nil {
		return DaemonConfig{}, err
	}
	return cfg, nil
}

func ValidateDaemonConfig(cfg DaemonConfig) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return fmt.Errorf("config invalid: empty daemon name")
	}
	for i, oc := range cfg.Outputs {
		if !oc.ToOutput().Validate() {
			return fmt.Errorf("config invalid: outputs[%d] (%q)", i, oc.Name)
		}
	}
	for i, rc := range cfg.Rules {
		if _, err := rc.ToRule(); err != nil {
			return fmt.Errorf("config invalid: rules[%d]: %w", i, err)
		}
	}
	return nil
}

// ToOutput converts the declaration into a snapshot output value.
func (oc OutputConfig) ToOutput() *snapshot.Output {
	return &snapshot.Output{
		Name:    strings.TrimSpace(oc.Name),
		DataURL: strings.TrimSpace(oc.DataURL),
		CtrlURL: strings.TrimSpace(oc.CtrlURL),
		MaxSize: oc.MaxSize,
	}
}

// ToRule converts the declaration into a syscall rule.
func (rc RuleConfig) ToRule() (*rule.Syscall, error) {
	site, err := rule.ParseEmissionSite(rc.Site)
	if err != nil {
		return nil, err
	}
	r, err := rule.NewSyscall(site, strings.TrimSpace(rc.Pattern))
	if err != nil {
		return nil, err
	}
	if f := strings.TrimSpace(rc.Filter); f != "" {
		r.SetFilter(f)
	}
	return r, nil
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}
