package models

import "time"

// PaymentProcessor links a user to a billing account at one payment
// provider. RawData holds the adapter-serialized provider state.
type PaymentProcessor struct {
	UserEmail string    `db:"user_email" json:"user"`
	Name      string    `db:"name" json:"name"`
	Default   bool      `db:"is_default" json:"default"`
	RawData   []byte    `db:"raw_data" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// PaymentMethod is a stored payment instrument at a provider
type PaymentMethod struct {
	ID       string `json:"id"`
	Merchant string `json:"merchant"`
	LastFour string `json:"last_four"`
	Default  bool   `json:"default"`
}
