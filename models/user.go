package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account row. Credits are the transcription quota,
// one credit per second of transcribed video. Decrements happen through
// a single conditional RPC so concurrent requests cannot double-spend.
type User struct {
	ID               uuid.UUID `json:"id"`
	Email            string    `json:"email"`
	Credits          int64     `json:"credits"`
	StripeCustomerID *string   `json:"stripe_customer_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Plan is a purchasable credit bundle surfaced by the pricing endpoint.
type Plan struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Credits     int64     `json:"credits"`
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}
