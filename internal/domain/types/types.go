// Package types contains common types used across the application
package types

// Stage names one step of a validation run.
type Stage string

// Run stages in execution order.
const (
	StageLoadConfig     Stage = "load_config"
	StageLoadReferences Stage = "load_references"
	StageMatch          Stage = "match"
	StageEvaluate       Stage = "evaluate"
	StageReportIssue    Stage = "report_issue"
	StageWriteResult    Stage = "write_result"
)

// String implements fmt.Stringer.
func (s Stage) String() string { return string(s) }

// Loader reports whether the stage loads run inputs. Any failure in a loader
// stage aborts the run.
func (s Stage) Loader() bool {
	return s == StageLoadConfig || s == StageLoadReferences
}
