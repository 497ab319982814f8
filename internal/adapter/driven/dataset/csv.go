// Package dataset reads historical applicant datasets used to seed the
// ledger.
package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/ericfisherdev/creditpanel/internal/domain/model"
	"github.com/ericfisherdev/creditpanel/internal/domain/port/driven"
)

var _ driven.DatasetSource = (*CSVSource)(nil)

// requiredColumns must all appear in the header. Extra columns are ignored.
var requiredColumns = []string{
	model.FieldIncomeTotal,
	model.FieldDaysEmployed,
	model.FieldIncomeType,
	model.FieldChildrenCount,
	model.FieldOwnCar,
	model.FieldOwnRealty,
}

// CSVSource reads a comma-separated dataset with a header row.
type CSVSource struct{}

// NewCSVSource creates a CSVSource.
func NewCSVSource() *CSVSource {
	return &CSVSource{}
}

// Load implements driven.DatasetSource.
func (s *CSVSource) Load(ctx context.Context, path string) ([]driven.DatasetRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	return Read(ctx, f)
}

// Read parses a dataset from r.
func Read(ctx context.Context, r io.Reader) ([]driven.DatasetRow, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("dataset is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read dataset header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("dataset header missing column %s", col)
		}
	}
	targetCol, hasTarget := idx[model.FieldTarget]

	var rows []driven.DatasetRow
	for line := 1; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &driven.RowError{Row: line, Err: err}
		}

		row, err := parseRow(rec, idx)
		if err != nil {
			var rowErr *driven.RowError
			if errors.As(err, &rowErr) {
				rowErr.Row = line
			}
			return nil, err
		}
		row.Line = line

		if hasTarget {
			target, err := parseCount(rec[targetCol])
			if err != nil || target > 1 {
				return nil, &driven.RowError{Row: line, Field: model.FieldTarget, Err: fmt.Errorf("invalid target %q", rec[targetCol])}
			}
			row.Target = target
		}

		rows = append(rows, row)
	}

	return rows, nil
}

func parseRow(rec []string, idx map[string]int) (driven.DatasetRow, error) {
	field := func(name string) string {
		return strings.TrimSpace(rec[idx[name]])
	}

	income, err := parseNumber(field(model.FieldIncomeTotal))
	if err != nil {
		return driven.DatasetRow{}, &driven.RowError{Field: model.FieldIncomeTotal, Err: err}
	}

	days, err := parseNumber(field(model.FieldDaysEmployed))
	if err != nil {
		return driven.DatasetRow{}, &driven.RowError{Field: model.FieldDaysEmployed, Err: err}
	}

	children, err := parseCount(field(model.FieldChildrenCount))
	if err != nil {
		return driven.DatasetRow{}, &driven.RowError{Field: model.FieldChildrenCount, Err: err}
	}

	// Category membership is the encoder's decision, not the reader's.
	a := model.ApplicantFromDays(
		income, days,
		field(model.FieldIncomeType),
		children,
		model.Flag(field(model.FieldOwnCar)),
		model.Flag(field(model.FieldOwnRealty)),
	)

	return driven.DatasetRow{Applicant: a}, nil
}

func parseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", s)
	}
	return v, nil
}

// parseCount accepts non-negative integers, including the "2.0" form
// pandas writes for integer columns that once held a NaN.
func parseCount(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative count %d", n)
		}
		return n, nil
	}

	v, err := parseNumber(s)
	if err != nil {
		return 0, err
	}
	if v < 0 || v != math.Trunc(v) {
		return 0, fmt.Errorf("not a non-negative integer: %q", s)
	}
	return int(v), nil
}
