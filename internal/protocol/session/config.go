package session

import (
	"time"

	"github.com/danmuck/tracectl/internal/protocol/frame"
)

// Config defines control-channel reliability defaults.
type Config struct {
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	Limits         frame.Limits
}

// DefaultConfig returns the defaults both binaries start from.
func DefaultConfig() Config {
	return Config{
		ConnectTimeout: 5 * time.Second,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		Limits:         frame.DefaultLimits(),
	}
}
