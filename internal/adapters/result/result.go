// Package result writes the artifact that records what a run saw and what it
// expected. The artifact is the primary output of a run.
package result

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/okian/coordcheck/internal/domain/model"
)

// Artifact is the JSON document written at the end of every run that got past
// loading. The correct* fields are set only when a reference record matched
// and are omitted, not null, otherwise.
type Artifact struct {
	BasePoint               string  `json:"basePoint"`
	SurveyPoint             string  `json:"surveyPoint"`
	TrueNorthAngle          float64 `json:"trueNorthAngle"`
	CorrectProjectBasePoint *string `json:"correctProjectBasePoint,omitempty"`
	CorrectSurveyPoint      *string `json:"correctSurveyPoint,omitempty"`
}

// NewArtifact builds the artifact from the extracted coordinates and, when
// non-nil, the matched reference record.
func NewArtifact(extracted model.ExtractedCoordinates, matched *model.ReferenceRecord) Artifact {
	a := Artifact{
		BasePoint:      extracted.BasePoint.String(),
		SurveyPoint:    extracted.SurveyPoint.String(),
		TrueNorthAngle: extracted.TrueNorthAngle,
	}
	if matched != nil {
		base := matched.BasePoint.String()
		survey := matched.SurveyPoint.String()
		a.CorrectProjectBasePoint = &base
		a.CorrectSurveyPoint = &survey
	}
	return a
}

// Write encodes a to path, replacing any existing file.
func Write(_ context.Context, path string, a Artifact) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create result: %w", err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(a); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}
