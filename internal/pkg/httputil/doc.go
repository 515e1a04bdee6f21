// Package httputil holds the JSON response helpers shared by the API
// handlers. Every error body is an ErrorResponse.
package httputil
