package models

import (
	"time"

	"github.com/google/uuid"
)

// DebitType identifies what a usage charge is for
type DebitType string

// Debit types
const (
	DebitTypeStorage    DebitType = "storage"
	DebitTypeBandwidth  DebitType = "bandwidth"
	DebitTypeAdjustment DebitType = "adjustment"
)

// Debit is a ledger entry charging a user for resource usage
type Debit struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserEmail string    `db:"user_email" json:"user"`
	Amount    Money     `db:"amount" json:"amount"`
	Type      DebitType `db:"debit_type" json:"type"`
	Bandwidth int64     `db:"bandwidth" json:"bandwidth"`
	Storage   int64     `db:"storage" json:"storage"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Validate checks the debit before persistence
func (d *Debit) Validate() error {
	switch d.Type {
	case DebitTypeStorage, DebitTypeBandwidth, DebitTypeAdjustment:
	default:
		return NewValidationError("type", "must be storage, bandwidth or adjustment")
	}
	if d.Bandwidth < 0 {
		return NewValidationError("bandwidth", "cannot be negative")
	}
	if d.Storage < 0 {
		return NewValidationError("storage", "cannot be negative")
	}
	return nil
}
