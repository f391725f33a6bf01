package model

import "time"

// PaymentResult is the untrusted tuple handed back by a checkout session. It
// is worthless until the verifier confirms the signature server-side.
type PaymentResult struct {
	PaymentID string
	OrderID   string
	Signature string
}

type PaymentRecordStatus string

const (
	PaymentRecordStatusCreated    PaymentRecordStatus = "created"
	PaymentRecordStatusSuccessful PaymentRecordStatus = "successful"
	PaymentRecordStatusFailed     PaymentRecordStatus = "failed"
)

// PaymentRecord is one append-only history entry per verified (or rejected)
// attempt. Never mutated after creation; PaymentID is the dedupe key.
type PaymentRecord struct {
	ID        string // ULID, time-sortable
	PaymentID string
	OrderID   string
	UserID    string
	Tier      Tier
	Amount    int64
	Currency  string
	Status    PaymentRecordStatus
	CreatedAt time.Time
}

// ConfirmedPayment is what the verifier forwards to the membership updater
// once a PaymentResult has been proven genuine.
type ConfirmedPayment struct {
	PaymentID string
	OrderID   string
	UserID    string
	Plan      Plan
	Amount    int64
	Simulated bool
}
