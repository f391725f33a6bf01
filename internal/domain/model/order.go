package model

import "time"

type OrderStatus string

const (
	OrderStatusCreated   OrderStatus = "created"   // registered with the gateway, awaiting checkout
	OrderStatusVerified  OrderStatus = "verified"  // a payment against it passed verification
	OrderStatusAbandoned OrderStatus = "abandoned" // checkout dismissed or never completed
)

// Order is a short-lived payment intent for one purchase attempt. It exists
// only until verified or abandoned; a retry always creates a new Order.
type Order struct {
	ID        string // opaque gateway order id
	UserID    string
	Tier      Tier
	Amount    int64 // minor currency units; must match the plan price at creation
	Currency  string
	KeyID     string // gateway key material the checkout session needs
	Simulated bool
	Status    OrderStatus
	CreatedAt time.Time
}

// Openable reports whether the order carries everything a checkout session
// needs before it may be opened.
func (o *Order) Openable() bool {
	return o != nil && o.ID != "" && o.Amount > 0 && o.KeyID != ""
}
