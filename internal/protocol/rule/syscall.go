package rule

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyPattern = errors.New("rule: empty syscall pattern")
	ErrUnknownSite  = errors.New("rule: unknown emission site")
)

// EmissionSite is the point relative to a syscall at which a rule fires.
type EmissionSite uint32

const (
	EmissionSiteEntry EmissionSite = iota
	EmissionSiteExit
	EmissionSiteEntryExit
)

func (s EmissionSite) valid() bool {
	switch s {
	case EmissionSiteEntry, EmissionSiteExit, EmissionSiteEntryExit:
		return true
	default:
		return false
	}
}

func (s EmissionSite) String() string {
	switch s {
	case EmissionSiteEntry:
		return "entry"
	case EmissionSiteExit:
		return "exit"
	case EmissionSiteEntryExit:
		return "entry+exit"
	default:
		return "???"
	}
}

// ParseEmissionSite maps a configuration spelling to an emission site.
func ParseEmissionSite(raw string) (EmissionSite, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "entry":
		return EmissionSiteEntry, nil
	case "exit":
		return EmissionSiteExit, nil
	case "entry+exit", "entry-exit", "both":
		return EmissionSiteEntryExit, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownSite, raw)
	}
}

// Syscall matches kernel syscalls by name pattern, optionally narrowed by
// a filter expression. It holds exactly the state that crosses the wire;
// locally compiled filter bytecode lives in CompiledSyscall.
type Syscall struct {
	Site    EmissionSite
	Pattern string

	// FilterExpression is the human-authored filter source. Empty means
	// no filter; the wire format cannot tell an empty expression apart
	// from an absent one.
	FilterExpression string
}

// NewSyscall builds a rule from user input. The pattern is a glob matched
// against syscall names and must be non-empty.
func NewSyscall(site EmissionSite, pattern string) (*Syscall, error) {
	if !site.valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSite, uint32(site))
	}
	if pattern == "" {
		return nil, ErrEmptyPattern
	}
	return &Syscall{Site: site, Pattern: pattern}, nil
}

// SetFilter attaches a filter expression to the rule.
func (r *Syscall) SetFilter(expression string) {
	r.FilterExpression = expression
}

// HasFilter reports whether the rule carries a filter expression.
func (r *Syscall) HasFilter() bool {
	return r.FilterExpression != ""
}

// Equal compares the wire-visible fields of two rules.
func (r *Syscall) Equal(other *Syscall) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.Site == other.Site &&
		r.Pattern == other.Pattern &&
		r.FilterExpression == other.FilterExpression
}

// CompiledSyscall pairs a rule with the bytecode compiled from its filter
// expression. The bytecode is local-only derived state: it never crosses
// the wire and the receiving side recompiles it after decode. Keeping it
// on a separate type means the codec cannot emit it by accident.
type CompiledSyscall struct {
	Rule     Syscall
	Bytecode []byte
}
