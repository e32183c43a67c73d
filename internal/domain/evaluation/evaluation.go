// Package evaluation compares extracted coordinates against a reference record.
package evaluation

import "github.com/okian/coordcheck/internal/domain/model"

// Evaluate measures how far the extracted base and survey points are from the
// reference record and flags a mismatch when either distance exceeds
// tolerance. True-north angles are not compared.
func Evaluate(record model.ReferenceRecord, extracted model.ExtractedCoordinates, tolerance float64) model.ComparisonResult {
	base := extracted.BasePoint.DistanceTo(record.BasePoint)
	survey := extracted.SurveyPoint.DistanceTo(record.SurveyPoint)

	return model.ComparisonResult{
		Record:              record,
		BasePointDistance:   base,
		SurveyPointDistance: survey,
		Mismatch:            base > tolerance || survey > tolerance,
	}
}
