package snapshot

import (
	"strings"
	"testing"

	"github.com/danmuck/tracectl/internal/testutil/testlog"
)

func TestValidateDailyLocalOutput(t *testing.T) {
	testlog.Start(t)
	o := &Output{Name: "daily", DataURL: "/var/snap", MaxSize: 0}
	if !o.Validate() {
		t.Fatalf("expected valid output: %+v", o)
	}
	o.Name = ""
	if o.Validate() {
		t.Fatalf("empty name validated")
	}
}

func TestValidateLocatorForms(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		dataURL string
		ctrlURL string
		want    bool
	}{
		{"/var/snap", "", true},
		{"net://relay.local:5342", "net://relay.local:5343", true},
		{"tcp://10.0.0.7", "", true},
		{"relative/path", "", false},
		{"", "", false},
		{"/var/snap", "not a locator", false},
	}
	for _, tc := range cases {
		o := &Output{Name: "cap", DataURL: tc.dataURL, CtrlURL: tc.ctrlURL}
		if got := o.Validate(); got != tc.want {
			t.Fatalf("validate data=%q ctrl=%q: got %v want %v", tc.dataURL, tc.ctrlURL, got, tc.want)
		}
	}
}

func TestValidateNameBound(t *testing.T) {
	testlog.Start(t)
	o := &Output{Name: strings.Repeat("n", MaxNameLen), DataURL: "/var/snap"}
	if !o.Validate() {
		t.Fatalf("name at bound rejected")
	}
	o.Name += "n"
	if o.Validate() {
		t.Fatalf("name over bound accepted")
	}
}

func TestEqualIsEquivalenceRelation(t *testing.T) {
	testlog.Start(t)
	a := &Output{Name: "daily", DataURL: "/var/snap", MaxSize: 1 << 20}
	b := &Output{Name: "daily", DataURL: "/var/snap", MaxSize: 1 << 20}
	c := &Output{Name: "daily", DataURL: "/var/snap", MaxSize: 1 << 20}

	if !a.Equal(a) {
		t.Fatalf("not reflexive")
	}
	if !a.Equal(b) || !b.Equal(a) {
		t.Fatalf("not symmetric")
	}
	if !a.Equal(b) || !b.Equal(c) || !a.Equal(c) {
		t.Fatalf("not transitive")
	}
}

func TestEqualExcludesRegistryID(t *testing.T) {
	testlog.Start(t)
	a := &Output{ID: 1, Name: "daily", DataURL: "/var/snap"}
	b := &Output{ID: 7, Name: "daily", DataURL: "/var/snap"}
	if !a.Equal(b) {
		t.Fatalf("registry ID participated in equality")
	}
	b.MaxSize = 512
	if a.Equal(b) {
		t.Fatalf("max size excluded from equality")
	}
}
