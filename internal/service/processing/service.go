package processing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mediapoint/roster/internal/pkg/distlock"
	"github.com/mediapoint/roster/internal/pkg/logger"
	"github.com/mediapoint/roster/internal/roster"
	"github.com/mediapoint/roster/internal/runstate"
	"github.com/mediapoint/roster/internal/storage"
)

// LockFactory returns a fresh lock instance for one run.
type LockFactory func() distlock.DistLock

// Keys names the blobs holding the source and output workbooks.
type Keys struct {
	Source string
	Output string
}

// Service orchestrates uploads, runs and downloads. It is safe for
// concurrent use; runs are serialized by the lock.
type Service struct {
	blobs    storage.BlobStore
	state    runstate.Store
	pipeline *roster.Pipeline
	newLock  LockFactory
	keys     Keys

	now   func() time.Time
	newID func() string
}

// NewService creates a processing service.
func NewService(blobs storage.BlobStore, state runstate.Store, pipeline *roster.Pipeline, newLock LockFactory, keys Keys) *Service {
	return &Service{
		blobs:    blobs,
		state:    state,
		pipeline: pipeline,
		newLock:  newLock,
		keys:     keys,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    func() string { return uuid.New().String() },
	}
}

// Keys returns the configured blob names.
func (s *Service) Keys() Keys { return s.keys }

// Upload stores r as the source workbook and marks any previous output as
// stale. It returns the key the file was stored under.
func (s *Service) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	if !strings.HasSuffix(strings.ToLower(strings.TrimSpace(filename)), ".xlsx") {
		return "", ErrUnsupportedFile
	}
	if err := s.blobs.Put(ctx, s.keys.Source, r); err != nil {
		return "", fmt.Errorf("storing upload: %w", err)
	}
	if err := s.blobs.Delete(ctx, s.keys.Output); err != nil {
		return "", fmt.Errorf("removing previous output: %w", err)
	}
	if err := s.state.Save(ctx, runstate.State{UploadedAt: s.now()}); err != nil {
		return "", err
	}

	logger.Info("roster uploaded", "file", filename, "key", s.keys.Source)
	return s.keys.Source, nil
}

// RunResult describes a successful run.
type RunResult struct {
	RunID    string         `json:"run_id"`
	Summary  roster.Summary `json:"summary"`
	Duration time.Duration  `json:"-"`
}

// Run classifies the uploaded roster and stores the output workbook.
func (s *Service) Run(ctx context.Context) (*RunResult, error) {
	st, err := s.state.Load(ctx)
	if err != nil {
		return nil, err
	}
	if !st.Uploaded() {
		return nil, ErrNotUploaded
	}
	ok, err := s.blobs.Exists(ctx, s.keys.Source)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotUploaded
	}

	lock := s.newLock()
	acquired, err := lock.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquiring run lock: %w", err)
	}
	if !acquired {
		return nil, ErrRunInProgress
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("releasing run lock failed", "error", err)
		}
	}()

	start := time.Now()
	res, err := s.process(ctx)
	if err != nil {
		logger.Warn("roster run failed", "error", err)
		cur, current, lerr := s.currentUpload(ctx, st.UploadedAt)
		if lerr != nil {
			logger.Error("loading run state failed", "error", lerr)
			return nil, err
		}
		if current {
			cur.LastError = err.Error()
			if serr := s.state.Save(ctx, cur); serr != nil {
				logger.Error("saving run state failed", "error", serr)
			}
		}
		return nil, err
	}

	// An upload that landed while the run was busy owns the state now.
	cur, current, err := s.currentUpload(ctx, st.UploadedAt)
	if err != nil {
		return nil, err
	}
	if !current {
		if err := s.blobs.Delete(ctx, s.keys.Output); err != nil {
			logger.Error("removing stale output failed", "error", err)
		}
		logger.Warn("roster replaced during run, output discarded",
			"started_for", st.UploadedAt, "uploaded_at", cur.UploadedAt)
		return nil, ErrSourceReplaced
	}

	out := &RunResult{RunID: s.newID(), Summary: res.Summary, Duration: time.Since(start)}
	cur.ProcessedAt = s.now()
	cur.RunID = out.RunID
	cur.LastError = ""
	cur.Summary = &out.Summary
	if err := s.state.Save(ctx, cur); err != nil {
		return nil, err
	}

	logger.Info("roster processed",
		"run_id", out.RunID,
		"records", res.Summary.Records,
		"mailing_list", res.Summary.Count(roster.SheetMailingList),
		"letters", res.Summary.Count(roster.SheetPhysicalSharedPrimary),
		"duration_ms", out.Duration.Milliseconds(),
	)
	return out, nil
}

// currentUpload reloads the state and reports whether it still describes the
// upload made at uploadedAt.
func (s *Service) currentUpload(ctx context.Context, uploadedAt time.Time) (runstate.State, bool, error) {
	cur, err := s.state.Load(ctx)
	if err != nil {
		return runstate.State{}, false, err
	}
	return cur, cur.UploadedAt.Equal(uploadedAt), nil
}

func (s *Service) process(ctx context.Context) (*roster.Result, error) {
	src, err := s.blobs.Open(ctx, s.keys.Source)
	if err != nil {
		return nil, fmt.Errorf("opening upload: %w", err)
	}
	defer src.Close()

	var buf bytes.Buffer
	res, err := Transform(s.pipeline, src, &buf)
	if err != nil {
		return nil, err
	}
	if err := s.blobs.Put(ctx, s.keys.Output, &buf); err != nil {
		return nil, fmt.Errorf("storing output: %w", err)
	}
	return res, nil
}

// Status is the externally visible state of the active roster.
type Status struct {
	Uploaded    bool            `json:"uploaded"`
	Processed   bool            `json:"processed"`
	UploadedAt  *time.Time      `json:"uploaded_at,omitempty"`
	ProcessedAt *time.Time      `json:"processed_at,omitempty"`
	RunID       string          `json:"run_id,omitempty"`
	LastError   string          `json:"last_error,omitempty"`
	Summary     *roster.Summary `json:"summary,omitempty"`
}

// Status reports whether a source is present and whether its output is
// ready to download.
func (s *Service) Status(ctx context.Context) (Status, error) {
	st, err := s.state.Load(ctx)
	if err != nil {
		return Status{}, err
	}
	var out Status
	if st.Uploaded() {
		if out.Uploaded, err = s.blobs.Exists(ctx, s.keys.Source); err != nil {
			return Status{}, err
		}
		out.UploadedAt = &st.UploadedAt
	}
	if st.DownloadReady() {
		if out.Processed, err = s.blobs.Exists(ctx, s.keys.Output); err != nil {
			return Status{}, err
		}
		out.ProcessedAt = &st.ProcessedAt
		out.RunID = st.RunID
		out.Summary = st.Summary
	}
	out.LastError = st.LastError
	return out, nil
}

// Download opens the output workbook if it is current.
func (s *Service) Download(ctx context.Context) (io.ReadCloser, error) {
	st, err := s.state.Load(ctx)
	if err != nil {
		return nil, err
	}
	if !st.DownloadReady() {
		return nil, ErrNotProcessed
	}
	rc, err := s.blobs.Open(ctx, s.keys.Output)
	if errors.Is(err, storage.ErrNotExist) {
		return nil, ErrNotProcessed
	}
	return rc, err
}

// Cleanup removes the source, the output and the recorded state.
func (s *Service) Cleanup(ctx context.Context) error {
	err := errors.Join(
		s.blobs.Delete(ctx, s.keys.Source),
		s.blobs.Delete(ctx, s.keys.Output),
		s.state.Clear(ctx),
	)
	if err == nil {
		logger.Info("roster files removed")
	}
	return err
}
