package driven

import (
	"context"
	"fmt"

	"github.com/ericfisherdev/creditpanel/internal/domain/model"
)

// DatasetRow is one historical applicant read from a seed dataset. Line is
// the 1-based data row number, not counting the header.
type DatasetRow struct {
	Line      int
	Applicant model.Applicant
	Target    int
}

// RowError pinpoints the dataset row and column that could not be used.
type RowError struct {
	Row   int
	Field string
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d field %s: %v", e.Row, e.Field, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// DatasetSource defines the driven port for reading a seed dataset. Load
// returns a *RowError for the first malformed row.
type DatasetSource interface {
	Load(ctx context.Context, path string) ([]DatasetRow, error)
}
