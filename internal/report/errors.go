package report

import "errors"

// ErrMissingReport is returned when a report file has not been written yet.
var ErrMissingReport = errors.New("report file not found")
