// Package processing implements the upload, run and download cycle around
// the roster pipeline.
//
// One roster is active at a time: an upload replaces the source workbook,
// a run classifies it and stores the output workbook, and a download is
// only offered when the last successful run happened at or after the last
// upload. The service depends on the storage, runstate and distlock
// abstractions and never imports net/http.
package processing
