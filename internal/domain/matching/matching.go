// Package matching selects the reference record that applies to a model file.
//
// File names are expected to embed a short project or site code. A record
// applies when its code is a case-sensitive substring of the file name and
// the first such record in table order wins. Overlapping codes are a data
// quality problem in the reference table, not a runtime fault: they are
// reported back to the caller in Result.Shadowed so they can be logged.
package matching

import (
	"strings"

	"github.com/okian/coordcheck/internal/domain/model"
)

// Result is the outcome of matching a file name against the reference table.
type Result struct {
	Record model.ReferenceRecord
	Index  int  // position of Record in the table, -1 when not found
	Found  bool // false means no record applies; this is not an error

	// Shadowed lists codes of later records that also match fileName.
	Shadowed []string
}

// Ambiguous reports whether more than one record matched.
func (r Result) Ambiguous() bool { return len(r.Shadowed) > 0 }

// Match returns the first record whose code is contained in fileName.
// Records with a blank code never match.
func Match(records []model.ReferenceRecord, fileName string) Result {
	res := Result{Index: -1}
	for i, rec := range records {
		if strings.TrimSpace(rec.Code) == "" || !strings.Contains(fileName, rec.Code) {
			continue
		}
		if !res.Found {
			res.Record = rec
			res.Index = i
			res.Found = true
			continue
		}
		res.Shadowed = append(res.Shadowed, rec.Code)
	}
	return res
}
