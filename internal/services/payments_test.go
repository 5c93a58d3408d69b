package services

import (
	"context"
	"testing"

	"github.com/gridstore/bridge/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdapterRegistry_Get(t *testing.T) {
	registry := NewAdapterRegistry("manual")
	registry.Add(ManualAdapter{})

	tests := []struct {
		name     string
		lookup   string
		wantName string
		wantErr  bool
	}{
		{
			name:     "by name",
			lookup:   "manual",
			wantName: "manual",
		},
		{
			name:     "empty name falls back to default",
			lookup:   "",
			wantName: "manual",
		},
		{
			name:    "unknown processor",
			lookup:  "stripe",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter, err := registry.Get(tt.lookup)
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, models.IsNotFound(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, adapter.Name())
		})
	}
}

func TestManualAdapter_Register(t *testing.T) {
	adapter := ManualAdapter{}

	reg, err := adapter.Register(context.Background(), "", "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "manual:alice@example.com", reg.CustomerRef)
	assert.GreaterOrEqual(t, reg.BillingDate, 1)
	assert.LessOrEqual(t, reg.BillingDate, 31)
}

func TestManualAdapter_Charge(t *testing.T) {
	adapter := ManualAdapter{}

	err := adapter.Charge(context.Background(), &ProcessorData{CustomerRef: "manual:alice@example.com"}, models.Money(100_0000))
	assert.NoError(t, err)

	err = adapter.Charge(context.Background(), &ProcessorData{}, models.Money(100_0000))
	assert.Error(t, err)
}

func TestManualAdapter_PaymentMethods(t *testing.T) {
	adapter := ManualAdapter{}
	data := &ProcessorData{CustomerRef: "manual:alice@example.com"}

	first, err := adapter.AddPaymentMethod(context.Background(), data, "tok-1")
	require.NoError(t, err)
	assert.True(t, first.Default, "first method becomes default")

	second, err := adapter.AddPaymentMethod(context.Background(), data, "tok-2")
	require.NoError(t, err)
	assert.False(t, second.Default)

	got := adapter.DefaultPaymentMethod(data)
	require.NotNil(t, got)
	assert.Equal(t, "tok-1", got.ID)

	require.NoError(t, adapter.RemovePaymentMethod(context.Background(), data, "tok-1"))
	assert.Len(t, data.PaymentMethods, 1)

	err = adapter.RemovePaymentMethod(context.Background(), data, "tok-1")
	assert.True(t, models.IsNotFound(err))
}

func TestManualAdapter_Validate(t *testing.T) {
	adapter := ManualAdapter{}

	assert.True(t, adapter.Validate(&ProcessorData{CustomerRef: "manual:alice@example.com"}))
	assert.False(t, adapter.Validate(&ProcessorData{}))
}
