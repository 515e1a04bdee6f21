// Package runstate records when a roster was uploaded and when it was last
// processed, so the service can tell whether a download is current.
package runstate

import (
	"context"
	"time"

	"github.com/mediapoint/roster/internal/roster"
)

// State is the upload/process bookkeeping for the single active roster.
type State struct {
	UploadedAt  time.Time       `json:"uploaded_at"`
	ProcessedAt time.Time       `json:"processed_at"`
	RunID       string          `json:"run_id,omitempty"`
	LastError   string          `json:"last_error,omitempty"`
	Summary     *roster.Summary `json:"summary,omitempty"`
}

// Uploaded reports whether an upload has been recorded.
func (s State) Uploaded() bool { return !s.UploadedAt.IsZero() }

// DownloadReady reports whether a successful run happened at or after the
// most recent upload.
func (s State) DownloadReady() bool {
	return s.Uploaded() && !s.ProcessedAt.IsZero() && !s.ProcessedAt.Before(s.UploadedAt)
}

// Store persists State. Load returns the zero State when nothing is saved.
type Store interface {
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, st State) error
	Clear(ctx context.Context) error
}
