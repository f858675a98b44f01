package history

import (
	"fmt"
	"strings"
	"time"
)

// Package history provides the local chat transcript store.

// Entry is one line of a session transcript.
type Entry struct {
	Role string    `json:"role"` // "user" or "tutor"
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Store persists transcript entries per session.
type Store interface {
	Close() error
	Append(sessionID string, e Entry) error
	Recent(sessionID string, n int) ([]Entry, error)
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	EntryTTL        time.Duration
	CleanupInterval time.Duration
}

const (
	defaultEntryTTL        = 30 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured transcript backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt history requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported history type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.EntryTTL <= 0 {
		opts.EntryTTL = defaultEntryTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                        { return nil }
func (noopStore) Append(string, Entry) error          { return nil }
func (noopStore) Recent(string, int) ([]Entry, error) { return nil, nil }
