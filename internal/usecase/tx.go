package usecase

import "github.com/jackc/pgx/v4"

// defaultTxOptions keeps verification at read-committed; the payment_records
// unique index carries the dedupe guarantee, not the isolation level.
func defaultTxOptions() pgx.TxOptions { return pgx.TxOptions{} }
