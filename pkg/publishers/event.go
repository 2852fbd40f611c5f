package publishers

import "time"

// Report is the probe outcome published downstream. It never carries the
// response body.
type Report struct {
	App         string    `json:"app,omitempty"`
	Probe       string    `json:"probe"`
	URL         string    `json:"url"`
	Scheme      string    `json:"scheme"`
	StatusCode  int       `json:"status_code,omitempty"`
	Outcome     string    `json:"outcome"`
	Error       string    `json:"error,omitempty"`
	ElapsedMs   int64     `json:"elapsed_ms"`
	CompletedAt time.Time `json:"completed_at"`
}

// attributes returns the message attributes shared by queue/topic publishers.
func (r Report) attributes() map[string]string {
	return map[string]string{
		"probe":   r.Probe,
		"outcome": r.Outcome,
	}
}
