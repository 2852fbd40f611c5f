// Package storage keeps an optional local journal of probe outcomes.
// Response bodies are never stored.
package storage

import (
	"fmt"
	"strings"
	"time"
)

// Record is the outcome of one probe.
type Record struct {
	Probe       string    `json:"probe"`
	URL         string    `json:"url"`
	Scheme      string    `json:"scheme"`
	StatusCode  int       `json:"status_code,omitempty"`
	Outcome     string    `json:"outcome"`
	Error       string    `json:"error,omitempty"`
	ElapsedMs   int64     `json:"elapsed_ms"`
	CompletedAt time.Time `json:"completed_at"`
}

// Journal persists probe records.
type Journal interface {
	Close() error
	Record(rec Record) error
	Recent(limit int) ([]Record, error)
}

// Options controls retention characteristics for concrete journal implementations.
type Options struct {
	RecordTTL       time.Duration
	CleanupInterval time.Duration
}

const (
	defaultRecordTTL       = 7 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewJournal creates the configured journal backend.
func NewJournal(typ, path string, opts Options) (Journal, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopJournal{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt journal requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported journal type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.RecordTTL <= 0 {
		opts.RecordTTL = defaultRecordTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopJournal struct{}

func (noopJournal) Close() error                 { return nil }
func (noopJournal) Record(Record) error          { return nil }
func (noopJournal) Recent(int) ([]Record, error) { return nil, nil }
