package types

import "errors"

// Sentinel error kinds shared by every stage of a run. Stages wrap them with
// %w so callers can classify failures with errors.Is.
var (
	ErrResourceUnavailable = errors.New("resource unavailable")
	ErrMalformedRecord     = errors.New("malformed reference record")
	ErrMalformedConfig     = errors.New("malformed config")
	ErrReportingFailure    = errors.New("issue reporting failed")
)

// IsFatal reports whether err must abort a run before any output is written.
func IsFatal(err error) bool {
	return errors.Is(err, ErrResourceUnavailable) ||
		errors.Is(err, ErrMalformedRecord) ||
		errors.Is(err, ErrMalformedConfig)
}
