package processing

import "errors"

// Sentinel errors for the processing service layer.
var (
	ErrUnsupportedFile = errors.New("only .xlsx files are supported")
	ErrNotUploaded     = errors.New("no roster has been uploaded")
	ErrNotProcessed    = errors.New("no processed roster is available")
	ErrRunInProgress   = errors.New("a run is already in progress")
	ErrSourceReplaced  = errors.New("the roster was replaced during the run")
)
