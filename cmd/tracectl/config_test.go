package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danmuck/tracectl/internal/protocol/rule"
)

func writeProfile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tracectl.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write profile: %v", err)
	}
	return path
}

func TestLoadProfileDefaultsAndOverrides(t *testing.T) {
	path := writeProfile(t, `
daemon_addr = "10.0.0.5:9770"
connect_timeout = "2s"

[[outputs]]
name = "daily"
data_url = "/var/snap"

[[rules]]
site = "entry+exit"
pattern = "open*"
filter = "fd > 2"
`)

	profile, err := loadProfile(path)
	if err != nil {
		t.Fatalf("load profile: %v", err)
	}
	if profile.DaemonAddr != "10.0.0.5:9770" {
		t.Fatalf("unexpected daemon addr: %q", profile.DaemonAddr)
	}
	if profile.ConnectTimeout != 2*time.Second {
		t.Fatalf("unexpected connect timeout: %v", profile.ConnectTimeout)
	}
	if len(profile.Outputs) != 1 || profile.Outputs[0].Name != "daily" {
		t.Fatalf("unexpected outputs: %+v", profile.Outputs)
	}
	if len(profile.Rules) != 1 || profile.Rules[0].Site != rule.EmissionSiteEntryExit {
		t.Fatalf("unexpected rules: %+v", profile.Rules)
	}
}

func TestLoadProfileDefaultsWhenUnset(t *testing.T) {
	profile, err := loadProfile(writeProfile(t, ""))
	if err != nil {
		t.Fatalf("load profile: %v", err)
	}
	if profile.DaemonAddr != "127.0.0.1:9770" {
		t.Fatalf("unexpected default addr: %q", profile.DaemonAddr)
	}
	if profile.ConnectTimeout != 5*time.Second {
		t.Fatalf("unexpected default timeout: %v", profile.ConnectTimeout)
	}
}

func TestLoadProfileRejectsInvalidOutput(t *testing.T) {
	_, err := loadProfile(writeProfile(t, `
[[outputs]]
name = ""
data_url = "/var/snap"
`))
	if err == nil {
		t.Fatalf("expected invalid output to fail")
	}
}

func TestLoadProfileRejectsBadTimeout(t *testing.T) {
	_, err := loadProfile(writeProfile(t, `connect_timeout = "soon"`))
	if err == nil {
		t.Fatalf("expected bad timeout to fail")
	}
}
