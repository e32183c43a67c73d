package app

import (
	"fmt"

	"github.com/okian/coordcheck/internal/domain/types"
)

// StageError is an error raised by one stage of a run.
type StageError struct {
	Stage types.Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Fatal reports whether the error aborts the run: every loader failure does,
// as do the fatal kinds of the error taxonomy raised anywhere else.
func (e *StageError) Fatal() bool { return e.Stage.Loader() || types.IsFatal(e.Err) }
