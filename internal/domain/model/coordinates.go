// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"math"
)

// Point is a 3D coordinate in model units.
type Point struct {
	X float64
	Y float64
	Z float64
}

// DistanceTo returns the Euclidean distance between p and o.
func (p Point) DistanceTo(o Point) float64 {
	dx := p.X - o.X
	dy := p.Y - o.Y
	dz := p.Z - o.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// String renders the point as "(x, y, z)" with nine decimals.
func (p Point) String() string {
	return fmt.Sprintf("(%.9f, %.9f, %.9f)", p.X, p.Y, p.Z)
}

// ReferenceRecord is one row of known-correct coordinates.
// Code is matched as a substring of the model file name and is not unique.
type ReferenceRecord struct {
	Code        string
	BasePoint   Point
	SurveyPoint Point
	Angle       float64 // true-north rotation, radians
}

// ExtractedCoordinates are read from the model by the host before a run.
type ExtractedCoordinates struct {
	BasePoint      Point
	SurveyPoint    Point
	TrueNorthAngle float64 // radians
}

// ComparisonResult is the outcome of evaluating extracted coordinates
// against a matched reference record.
type ComparisonResult struct {
	Record              ReferenceRecord
	BasePointDistance   float64
	SurveyPointDistance float64
	Mismatch            bool
}
