package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Tx is an opaque transaction handle passed through the `qx` argument of
// repository methods. The concrete type is infra-defined (pgx.Tx for
// Postgres); repositories must accept nil for the non-transactional path.
type Tx interface{}

var NoTX interface{}

// TransactionManager executes a function within one database transaction,
// passing the tx handle via qx so use-case interfaces stay storage-agnostic.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
