package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/mediapoint/roster/internal/config"
	"github.com/mediapoint/roster/internal/pkg/httputil"
	"github.com/mediapoint/roster/internal/pkg/logger"
	"github.com/mediapoint/roster/internal/roster"
	"github.com/mediapoint/roster/internal/service/processing"
	"github.com/mediapoint/roster/internal/workbook"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handlers contains the HTTP handlers for the upload workflow.
type Handlers struct {
	svc         *processing.Service
	uploadLimit int64
	index       string
}

// NewHandlers creates the handlers and renders the upload page.
func NewHandlers(cfg config.ServerConfig, svc *processing.Service) (*Handlers, error) {
	keys := svc.Keys()
	index, err := renderIndex(cfg.Title, keys.Source, keys.Output)
	if err != nil {
		return nil, err
	}
	return &Handlers{svc: svc, uploadLimit: cfg.UploadLimit(), index: index}, nil
}

// Index serves the upload page.
//
//	GET /
func (h *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, h.index)
}

// Upload stores the posted workbook as the active source.
//
//	POST /upload (multipart, field "file")
func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.uploadLimit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.Error(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("File exceeds the upload limit of %d MB", h.uploadLimit>>20))
			return
		}
		httputil.BadRequest(w, "Expected a multipart form with a file field")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.BadRequest(w, "No file uploaded")
		return
	}
	defer file.Close()

	key, err := h.svc.Upload(r.Context(), header.Filename, file)
	if err != nil {
		h.fail(w, err)
		return
	}
	httputil.OK(w, map[string]string{
		"message": "Upload successful",
		"path":    key,
	})
}

// Run processes the uploaded roster.
//
//	POST /run
func (h *Handlers) Run(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Run(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	httputil.OK(w, map[string]any{
		"message": "File processed successfully.",
		"run_id":  res.RunID,
		"summary": res.Summary,
	})
}

// Download streams the processed workbook and removes the roster files
// once the transfer completed.
//
//	GET /download
func (h *Handlers) Download(w http.ResponseWriter, r *http.Request) {
	rc, err := h.svc.Download(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.svc.Keys().Output))
	_, copyErr := io.Copy(w, rc)
	rc.Close()
	if copyErr != nil {
		logger.Warn("download interrupted", "error", copyErr)
		return
	}

	if err := h.svc.Cleanup(context.WithoutCancel(r.Context())); err != nil {
		logger.Error("cleanup after download failed", "error", err)
	}
}

// Status reports upload and processing state.
//
//	GET /status
func (h *Handlers) Status(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Status(r.Context())
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, st)
}

// fail maps service and roster errors onto HTTP responses.
func (h *Handlers) fail(w http.ResponseWriter, err error) {
	keys := h.svc.Keys()
	switch {
	case errors.Is(err, processing.ErrUnsupportedFile):
		httputil.BadRequest(w, "Only .xlsx files are supported")
	case errors.Is(err, processing.ErrNotUploaded):
		httputil.BadRequest(w, fmt.Sprintf("Please upload %s first.", keys.Source))
	case errors.Is(err, processing.ErrNotProcessed):
		httputil.NotFound(w, fmt.Sprintf("%s not found. Run the processor first.", keys.Output))
	case errors.Is(err, processing.ErrRunInProgress):
		httputil.ErrorCode(w, http.StatusConflict, "run_in_progress", "A run is already in progress. Try again shortly.")
	case errors.Is(err, processing.ErrSourceReplaced):
		httputil.ErrorCode(w, http.StatusConflict, "roster_replaced",
			fmt.Sprintf("%s was replaced while it was processed. Run the processor again.", keys.Source))
	case roster.IsInputError(err), isWorkbookError(err):
		httputil.ErrorCode(w, http.StatusUnprocessableEntity, "invalid_roster", "Failed to process file: "+err.Error())
	default:
		httputil.InternalError(w, err)
	}
}

func isWorkbookError(err error) bool {
	return errors.Is(err, workbook.ErrUnreadable) || errors.Is(err, workbook.ErrNoSheets)
}
