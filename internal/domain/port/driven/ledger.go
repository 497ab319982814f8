package driven

import (
	"context"

	"github.com/ericfisherdev/creditpanel/internal/domain/model"
)

// Ledger defines the driven port for the append-only assessment history.
//
// Append assigns a strictly increasing ID and a server timestamp and returns
// only after the record is durably committed; an error means the record was
// not stored. AppendBatch applies the same guarantee to every record in a
// single transaction. ListAll orders by CreatedAt descending, ties broken by
// ID descending.
type Ledger interface {
	Append(ctx context.Context, rec model.ApplicationRecord) (model.ApplicationRecord, error)
	AppendBatch(ctx context.Context, recs []model.ApplicationRecord) (int, error)
	ListAll(ctx context.Context) ([]model.ApplicationRecord, error)
	Count(ctx context.Context) (int, error)
}
