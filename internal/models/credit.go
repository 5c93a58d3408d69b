package models

import (
	"time"

	"github.com/google/uuid"
)

// CreditType distinguishes automatically issued credits from manual
// adjustments.
type CreditType string

// Credit types
const (
	CreditTypeAutomatic CreditType = "automatic"
	CreditTypeManual    CreditType = "manual"
)

// NoPromoCode is the sentinel promo code carried by non-promotional
// credits.
const NoPromoCode = "none"

// Credit is a ledger entry representing promotional or paid credit.
// Monetary fields are fixed-point sub-cent amounts.
type Credit struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	UserEmail      string     `db:"user_email" json:"user"`
	PaidAmount     Money      `db:"paid_amount" json:"paid_amount"`
	InvoicedAmount Money      `db:"invoiced_amount" json:"invoiced_amount"`
	PromoAmount    Money      `db:"promo_amount" json:"promo_amount"`
	PromoCode      string     `db:"promo_code" json:"promo_code"`
	Paid           bool       `db:"paid" json:"paid"`
	Processor      string     `db:"payment_processor" json:"payment_processor"`
	Type           CreditType `db:"credit_type" json:"type"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// Validate runs the ledger consistency rules, in order, before the
// credit is persisted. It also derives the paid flag once the invoice
// has been fully covered.
//
// A promotional credit must carry a promo code and no invoiced or
// paid amount; this is enforced as a hard failure rather than a
// logged assertion so the ledger can never hold a mixed entry.
func (c *Credit) Validate() error {
	if c.PaidAmount > c.InvoicedAmount {
		return NewInvariantViolation("paid amount cannot exceed invoiced amount")
	}

	if c.Paid {
		if c.PaidAmount.IsZero() {
			return NewInvariantViolation("a paid credit must have a positive paid amount")
		}
		if c.PaidAmount != c.InvoicedAmount {
			return NewInvariantViolation("a paid credit must be fully invoiced")
		}
	}

	if c.PromoAmount > 0 {
		if c.PromoCode == NoPromoCode || c.PromoCode == "" {
			return NewInvariantViolation("a promotional credit must carry a promo code")
		}
		if !c.PaidAmount.IsZero() || !c.InvoicedAmount.IsZero() {
			return NewInvariantViolation("a promotional credit cannot carry paid or invoiced amounts")
		}
	}

	if c.InvoicedAmount > 0 && c.InvoicedAmount == c.PaidAmount {
		c.Paid = true
	}

	return nil
}
