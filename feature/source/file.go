package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"datarec/core/errors"
	"datarec/core/frame"

	"github.com/xuri/excelize/v2"
)

// CSV reads a local CSV file.
type CSV struct {
	Path string
	Spec Spec
}

// Load implements Source.
func (s *CSV) Load(ctx context.Context) (*frame.Table, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", s.Path, err)
	}
	defer f.Close()
	return decodeCSV(ctx, f, s.Spec)
}

func decodeCSV(ctx context.Context, r io.Reader, spec Spec) (*frame.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.NewShapeError("csv", "no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	var rows [][]string
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}
		rows = append(rows, rec)
	}
	return fromText(header, rows, spec)
}

// XLSX reads a sheet of a local workbook.
type XLSX struct {
	Path string
	Spec Spec
}

// Load implements Source.
func (s *XLSX) Load(ctx context.Context) (*frame.Table, error) {
	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", s.Path, err)
	}
	defer f.Close()
	return decodeWorkbook(ctx, f, s.Spec)
}

func decodeXLSX(ctx context.Context, r io.Reader, spec Spec) (*frame.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook: %w", err)
	}
	defer f.Close()
	return decodeWorkbook(ctx, f, spec)
}

func decodeWorkbook(ctx context.Context, f *excelize.File, spec Spec) (*frame.Table, error) {
	sheet := spec.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.NewShapeError("workbook", "has no sheets")
		}
		sheet = sheets[0]
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, errors.NewNotFoundError("sheet", sheet)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.NewShapeError(fmt.Sprintf("sheet %q", sheet), "no header row")
	}
	return fromText(rows[0], rows[1:], spec)
}
