package reference

import (
	"context"
	"fmt"

	"github.com/okian/coordcheck/internal/domain/model"
	"github.com/okian/coordcheck/internal/domain/types"

	"github.com/xuri/excelize/v2"
)

// loadWorkbook reads reference rows from the first sheet of an .xlsx file.
// Empty rows are skipped; row numbers in errors are 1-based sheet rows.
func loadWorkbook(ctx context.Context, path string) ([]model.ReferenceRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, classifyOpenError(err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", types.ErrMalformedRecord)
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: sheet %q: %v", types.ErrMalformedRecord, sheets[0], err)
	}
	defer rows.Close()

	var records []model.ReferenceRecord
	for n := 1; rows.Next(); n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		cols, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", types.ErrMalformedRecord, n, err)
		}
		if len(cols) == 0 {
			continue
		}

		rec, err := parseRow(cols)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", types.ErrMalformedRecord, n, err)
		}
		records = append(records, rec)
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("%w: sheet %q: %v", types.ErrMalformedRecord, sheets[0], err)
	}
	return records, nil
}
