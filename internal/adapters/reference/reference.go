// Package reference loads the table of known-correct model coordinates.
//
// The table has no header and one record per row with eight fields:
//
//	code, baseX, baseY, baseZ, angle, surveyX, surveyY, surveyZ
//
// Comma-separated text is the primary format; a .xlsx workbook with the same
// columns on its first sheet is accepted as well. Loading is all or nothing:
// the first bad row fails the whole table.
package reference

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/okian/coordcheck/internal/domain/model"
	"github.com/okian/coordcheck/internal/domain/types"
)

// FieldCount is the number of fields in every reference row.
const FieldCount = 8

// Load reads the reference table at path, choosing the format by extension.
func Load(ctx context.Context, path string) ([]model.ReferenceRecord, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return loadWorkbook(ctx, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reference table: %v", types.ErrResourceUnavailable, err)
	}
	defer f.Close()

	return Parse(ctx, f)
}

// Parse reads comma-separated reference rows from r in order.
func Parse(ctx context.Context, r io.Reader) ([]model.ReferenceRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = FieldCount
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	var records []model.ReferenceRecord
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				return nil, fmt.Errorf("%w: line %d: %v", types.ErrMalformedRecord, perr.Line, perr.Err)
			}
			return nil, fmt.Errorf("%w: reference table: %v", types.ErrResourceUnavailable, err)
		}

		line, _ := cr.FieldPos(0)
		rec, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", types.ErrMalformedRecord, line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// parseRow converts the eight fields of a row into a record.
func parseRow(row []string) (model.ReferenceRecord, error) {
	if len(row) != FieldCount {
		return model.ReferenceRecord{}, fmt.Errorf("expected %d fields, got %d", FieldCount, len(row))
	}

	var nums [FieldCount - 1]float64
	for i, raw := range row[1:] {
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return model.ReferenceRecord{}, fmt.Errorf("field %d (%q): not a number", i+2, raw)
		}
		nums[i] = v
	}

	return model.ReferenceRecord{
		Code:        strings.TrimSpace(row[0]),
		BasePoint:   model.Point{X: nums[0], Y: nums[1], Z: nums[2]},
		Angle:       nums[3],
		SurveyPoint: model.Point{X: nums[4], Y: nums[5], Z: nums[6]},
	}, nil
}

// classifyOpenError maps a file open failure onto the error taxonomy.
func classifyOpenError(err error) error {
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
		return fmt.Errorf("%w: reference table: %v", types.ErrResourceUnavailable, err)
	}
	return fmt.Errorf("%w: reference workbook: %v", types.ErrMalformedRecord, err)
}
