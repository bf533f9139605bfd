package registry

import (
	"errors"
	"sort"
	"sync"

	"github.com/danmuck/tracectl/internal/protocol/rule"
	"github.com/danmuck/tracectl/internal/protocol/snapshot"
)

var (
	ErrNilRecord       = errors.New("registry: nil record")
	ErrRuleExists      = errors.New("registry: rule already installed")
	ErrOutputExists    = errors.New("registry: output already installed")
	ErrInvalidOutput   = errors.New("registry: invalid snapshot output")
	ErrOutputNameTaken = errors.New("registry: output name already taken")
)

// Registry holds the active tracing configuration: installed syscall
// rules and registered snapshot outputs. Decoded objects are installed
// here after they come off the wire.
type Registry struct {
	mu           sync.Mutex
	rules        []*rule.Syscall
	outputs      []*snapshot.Output
	nextOutputID uint32
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{nextOutputID: 1}
}

// InstallRule adds a syscall rule. Value-equal duplicates are rejected.
func (r *Registry) InstallRule(s *rule.Syscall) error {
	if s == nil {
		return ErrNilRecord
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.rules {
		if existing.Equal(s) {
			return ErrRuleExists
		}
	}
	r.rules = append(r.rules, s)
	return nil
}

// InstallOutput validates and adds a snapshot output, assigning its
// registry ID. Outputs that differ only in ID are duplicates.
func (r *Registry) InstallOutput(o *snapshot.Output) error {
	if o == nil {
		return ErrNilRecord
	}
	if !o.Validate() {
		return ErrInvalidOutput
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.outputs {
		if existing.Equal(o) {
			return ErrOutputExists
		}
		if existing.Name == o.Name {
			return ErrOutputNameTaken
		}
	}
	o.ID = r.nextOutputID
	r.nextOutputID++
	r.outputs = append(r.outputs, o)
	return nil
}

// LookupOutput resolves an output by name.
func (r *Registry) LookupOutput(name string) (*snapshot.Output, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.outputs {
		if o.Name == name {
			return o, true
		}
	}
	return nil, false
}

// Rules returns the installed rules in installation order.
func (r *Registry) Rules() []*rule.Syscall {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*rule.Syscall, len(r.rules))
	copy(out, r.rules)
	return out
}

// Outputs returns the registered outputs ordered by name.
func (r *Registry) Outputs() []*snapshot.Output {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*snapshot.Output, len(r.outputs))
	copy(out, r.outputs)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}
