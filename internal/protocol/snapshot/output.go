package snapshot

import (
	"net/url"
	"strings"
)

// MaxNameLen bounds snapshot output names.
const MaxNameLen = 255

// Output is a named destination for point-in-time trace captures.
// Outputs are values: any change produces a new one.
type Output struct {
	// ID is assigned by the registry when the output is installed. It is
	// a transient identity used for lookups only and takes part in
	// neither the wire format nor Equal.
	ID uint32

	Name string

	// DataURL locates where snapshot data is written: an absolute local
	// path or a scheme://host[:port] locator.
	DataURL string

	// CtrlURL optionally locates the control port for network outputs.
	// Empty means none.
	CtrlURL string

	// MaxSize is the byte quota for one capture. 0 means unlimited.
	MaxSize uint64
}

// Validate reports whether the output is semantically well-formed: name
// non-empty and bounded, locators parseable. It does not check
// reachability; that is an operational concern for the session layer.
func (o *Output) Validate() bool {
	if o == nil {
		return false
	}
	if o.Name == "" || len(o.Name) > MaxNameLen {
		return false
	}
	if !validLocator(o.DataURL) {
		return false
	}
	if o.CtrlURL != "" && !validLocator(o.CtrlURL) {
		return false
	}
	return true
}

// Equal compares the semantically meaningful fields of two outputs. It is
// an equivalence relation; the registry relies on that for deduplication.
func (o *Output) Equal(other *Output) bool {
	if o == nil || other == nil {
		return o == other
	}
	return o.Name == other.Name &&
		o.DataURL == other.DataURL &&
		o.CtrlURL == other.CtrlURL &&
		o.MaxSize == other.MaxSize
}

// validLocator accepts an absolute local path or a URL with a scheme and
// host.
func validLocator(raw string) bool {
	if raw == "" {
		return false
	}
	if strings.HasPrefix(raw, "/") {
		return !strings.ContainsRune(raw, 0)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}
