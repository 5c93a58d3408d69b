package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMoney(t *testing.T) {
	t.Run("round trips decimal cents", func(t *testing.T) {
		cents := decimal.NewFromFloat(1234.56)
		m := MoneyFromCents(cents)
		assert.Equal(t, Money(12345600), m)
		assert.True(t, cents.Equal(m.Cents()))
	})

	t.Run("rounds to the nearest sub-cent unit", func(t *testing.T) {
		m := MoneyFromCents(decimal.NewFromFloat(0.00006))
		assert.Equal(t, Money(1), m)
	})

	t.Run("repeated increments stay exact", func(t *testing.T) {
		var total Money
		step := MoneyFromCents(decimal.NewFromFloat(0.1))
		for i := 0; i < 1000; i++ {
			total = total.Add(step)
		}
		assert.True(t, decimal.NewFromInt(100).Equal(total.Cents()))
	})
}

func TestCredit_Validate(t *testing.T) {
	tests := []struct {
		name    string
		credit  Credit
		wantErr bool
	}{
		{
			name: "paid amount exceeding invoiced is rejected",
			credit: Credit{
				PaidAmount:     Money(2000),
				InvoicedAmount: Money(1000),
				PromoCode:      NoPromoCode,
			},
			wantErr: true,
		},
		{
			name: "paid flag with zero paid amount is rejected",
			credit: Credit{
				Paid:      true,
				PromoCode: NoPromoCode,
			},
			wantErr: true,
		},
		{
			name: "paid flag with partial payment is rejected",
			credit: Credit{
				Paid:           true,
				PaidAmount:     Money(500),
				InvoicedAmount: Money(1000),
				PromoCode:      NoPromoCode,
			},
			wantErr: true,
		},
		{
			name: "promo credit without a code is rejected",
			credit: Credit{
				PromoAmount: Money(1000),
				PromoCode:   NoPromoCode,
			},
			wantErr: true,
		},
		{
			name: "promo credit with paid amount is rejected",
			credit: Credit{
				PromoAmount:    Money(1000),
				PromoCode:      "WELCOME",
				PaidAmount:     Money(100),
				InvoicedAmount: Money(100),
			},
			wantErr: true,
		},
		{
			name: "valid promo credit",
			credit: Credit{
				PromoAmount: Money(1000),
				PromoCode:   "WELCOME",
			},
			wantErr: false,
		},
		{
			name: "valid unpaid invoice",
			credit: Credit{
				InvoicedAmount: Money(1000),
				PromoCode:      NoPromoCode,
			},
			wantErr: false,
		},
		{
			name: "valid fully paid invoice",
			credit: Credit{
				Paid:           true,
				PaidAmount:     Money(1000),
				InvoicedAmount: Money(1000),
				PromoCode:      NoPromoCode,
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.credit.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, IsInvariant(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCredit_Validate_DerivesPaid(t *testing.T) {
	t.Run("fully covered invoice becomes paid", func(t *testing.T) {
		c := Credit{
			PaidAmount:     Money(1000),
			InvoicedAmount: Money(1000),
			PromoCode:      NoPromoCode,
		}
		assert.NoError(t, c.Validate())
		assert.True(t, c.Paid)
	})

	t.Run("zero amounts never derive paid", func(t *testing.T) {
		c := Credit{PromoCode: NoPromoCode}
		assert.NoError(t, c.Validate())
		assert.False(t, c.Paid)
	})
}

func TestDebit_Validate(t *testing.T) {
	tests := []struct {
		name    string
		debit   Debit
		wantErr bool
	}{
		{
			name:    "valid bandwidth debit",
			debit:   Debit{Type: DebitTypeBandwidth, Amount: Money(100), Bandwidth: 4096},
			wantErr: false,
		},
		{
			name:    "valid storage debit",
			debit:   Debit{Type: DebitTypeStorage, Amount: Money(100), Storage: 1 << 30},
			wantErr: false,
		},
		{
			name:    "unknown type",
			debit:   Debit{Type: "refund"},
			wantErr: true,
		},
		{
			name:    "negative bandwidth",
			debit:   Debit{Type: DebitTypeBandwidth, Bandwidth: -1},
			wantErr: true,
		},
		{
			name:    "negative storage",
			debit:   Debit{Type: DebitTypeStorage, Storage: -1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.debit.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, IsValidation(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
