package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gridstore/bridge/internal/models"
	"github.com/gridstore/bridge/internal/storage"
	"github.com/jackc/pgx/v5"
)

// Registration is the provider-side result of registering a customer
type Registration struct {
	CustomerRef string `json:"customer_ref"`
	BillingDate int    `json:"billing_date"`
}

// ProcessorData is the adapter-owned state stored per user/processor
type ProcessorData struct {
	CustomerRef    string                 `json:"customer_ref"`
	BillingDate    int                    `json:"billing_date"`
	PaymentMethods []models.PaymentMethod `json:"payment_methods"`
}

// PaymentAdapter is the capability interface a payment provider must
// supply. Concrete gateways live behind this boundary; the control
// plane only stores the serialized adapter state.
type PaymentAdapter interface {
	Name() string
	Register(ctx context.Context, token, email string) (*Registration, error)
	Charge(ctx context.Context, data *ProcessorData, amount models.Money) error
	Cancel(ctx context.Context, data *ProcessorData) error
	Delete(ctx context.Context, data *ProcessorData) error
	Validate(data *ProcessorData) bool
	AddPaymentMethod(ctx context.Context, data *ProcessorData, token string) (*models.PaymentMethod, error)
	RemovePaymentMethod(ctx context.Context, data *ProcessorData, methodID string) error
	DefaultPaymentMethod(data *ProcessorData) *models.PaymentMethod
	BillingDate(data *ProcessorData) int
}

// AdapterRegistry resolves payment adapters by processor name
type AdapterRegistry struct {
	adapters map[string]PaymentAdapter
	fallback string
}

// NewAdapterRegistry creates a registry with the given default
// processor name.
func NewAdapterRegistry(defaultName string) *AdapterRegistry {
	return &AdapterRegistry{
		adapters: make(map[string]PaymentAdapter),
		fallback: defaultName,
	}
}

// Add registers an adapter under its name
func (r *AdapterRegistry) Add(adapter PaymentAdapter) {
	r.adapters[adapter.Name()] = adapter
}

// Get resolves an adapter by name, falling back to the default when
// name is empty.
func (r *AdapterRegistry) Get(name string) (PaymentAdapter, error) {
	if name == "" {
		name = r.fallback
	}
	adapter, ok := r.adapters[name]
	if !ok {
		return nil, models.NewNotFoundError("payment adapter", name)
	}
	return adapter, nil
}

// PaymentService handles payment processor registrations per user
type PaymentService struct {
	db       *storage.DB
	registry *AdapterRegistry
}

// NewPaymentService creates a new payment service
func NewPaymentService(db *storage.DB, registry *AdapterRegistry) *PaymentService {
	return &PaymentService{db: db, registry: registry}
}

// Register creates a billing account for a user at a processor and
// stores the serialized adapter state. The first processor registered
// becomes the user's default.
func (s *PaymentService) Register(ctx context.Context, email, processorName, token string) (*models.PaymentProcessor, error) {
	adapter, err := s.registry.Get(processorName)
	if err != nil {
		return nil, err
	}

	reg, err := adapter.Register(ctx, token, email)
	if err != nil {
		return nil, fmt.Errorf("processor registration failed: %w", err)
	}

	raw, err := json.Marshal(ProcessorData{CustomerRef: reg.CustomerRef, BillingDate: reg.BillingDate})
	if err != nil {
		return nil, fmt.Errorf("failed to serialize processor data: %w", err)
	}

	processor := &models.PaymentProcessor{
		UserEmail: email,
		Name:      adapter.Name(),
		RawData:   raw,
	}

	var existing int
	err = s.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM payment_processors WHERE user_email = $1`, email).Scan(&existing)
	if err != nil {
		return nil, fmt.Errorf("failed to count processors: %w", err)
	}
	processor.Default = existing == 0

	_, err = s.db.Pool.Exec(ctx,
		`INSERT INTO payment_processors (user_email, name, is_default, raw_data)
		 VALUES ($1, $2, $3, $4)`,
		processor.UserEmail, processor.Name, processor.Default, processor.RawData)
	if storage.IsUniqueViolation(err) {
		return nil, models.NewConflictError("payment processor", processor.Name)
	}
	if storage.IsForeignKeyViolation(err) {
		return nil, models.NewNotFoundError("user", email)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to store payment processor: %w", err)
	}

	return processor, nil
}

// DefaultProcessor returns the user's default processor with its
// adapter and deserialized state.
func (s *PaymentService) DefaultProcessor(ctx context.Context, email string) (*models.PaymentProcessor, PaymentAdapter, *ProcessorData, error) {
	var p models.PaymentProcessor
	err := s.db.Pool.QueryRow(ctx,
		`SELECT user_email, name, is_default, raw_data, created_at, updated_at
		 FROM payment_processors WHERE user_email = $1 AND is_default`, email).Scan(
		&p.UserEmail, &p.Name, &p.Default, &p.RawData, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, nil, models.NewNotFoundError("payment processor", email)
	}
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load payment processor: %w", err)
	}

	adapter, err := s.registry.Get(p.Name)
	if err != nil {
		return nil, nil, nil, err
	}

	var data ProcessorData
	if err := json.Unmarshal(p.RawData, &data); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to parse processor data: %w", err)
	}

	return &p, adapter, &data, nil
}

// AddPaymentMethod stores a payment instrument with the user's default
// processor and persists the updated adapter state.
func (s *PaymentService) AddPaymentMethod(ctx context.Context, email, token string) (*models.PaymentMethod, error) {
	processor, adapter, data, err := s.DefaultProcessor(ctx, email)
	if err != nil {
		return nil, err
	}

	method, err := adapter.AddPaymentMethod(ctx, data, token)
	if err != nil {
		return nil, fmt.Errorf("failed to add payment method: %w", err)
	}

	if err := s.saveProcessorData(ctx, processor, data); err != nil {
		return nil, err
	}
	return method, nil
}

// RemovePaymentMethod removes a stored payment instrument from the
// user's default processor and persists the updated adapter state.
func (s *PaymentService) RemovePaymentMethod(ctx context.Context, email, methodID string) error {
	processor, adapter, data, err := s.DefaultProcessor(ctx, email)
	if err != nil {
		return err
	}

	if err := adapter.RemovePaymentMethod(ctx, data, methodID); err != nil {
		return err
	}

	return s.saveProcessorData(ctx, processor, data)
}

// saveProcessorData writes the adapter-owned state back to the
// processor row. Adapter mutations only take effect once this
// serialization lands.
func (s *PaymentService) saveProcessorData(ctx context.Context, processor *models.PaymentProcessor, data *ProcessorData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to serialize processor data: %w", err)
	}

	_, err = s.db.Pool.Exec(ctx,
		`UPDATE payment_processors SET raw_data = $3, updated_at = NOW()
		 WHERE user_email = $1 AND name = $2`,
		processor.UserEmail, processor.Name, raw)
	if err != nil {
		return fmt.Errorf("failed to store processor data: %w", err)
	}
	return nil
}

// Charge bills the user's default processor and records the matching
// credit as paid.
func (s *PaymentService) Charge(ctx context.Context, billing *BillingService, email string, amount models.Money) (*models.Credit, error) {
	_, adapter, data, err := s.DefaultProcessor(ctx, email)
	if err != nil {
		return nil, err
	}

	if !adapter.Validate(data) {
		return nil, models.NewValidationError("payment_processor", "processor state is not chargeable")
	}

	if err := adapter.Charge(ctx, data, amount); err != nil {
		return nil, fmt.Errorf("charge failed: %w", err)
	}

	credit := &models.Credit{
		UserEmail:      email,
		PaidAmount:     amount,
		InvoicedAmount: amount,
		PromoCode:      models.NoPromoCode,
		Processor:      adapter.Name(),
		Type:           models.CreditTypeAutomatic,
	}
	if err := billing.CreateCredit(ctx, credit); err != nil {
		return nil, err
	}
	return credit, nil
}

// ManualAdapter is a no-gateway adapter for operator-driven billing.
// It keeps all state locally and accepts every charge.
type ManualAdapter struct{}

// Name returns the processor name
func (ManualAdapter) Name() string { return "manual" }

// Register creates a local customer reference
func (ManualAdapter) Register(_ context.Context, _, email string) (*Registration, error) {
	return &Registration{
		CustomerRef: "manual:" + email,
		BillingDate: time.Now().UTC().Day(),
	}, nil
}

// Charge accepts any charge against a registered customer
func (ManualAdapter) Charge(_ context.Context, data *ProcessorData, _ models.Money) error {
	if data.CustomerRef == "" {
		return fmt.Errorf("no customer reference")
	}
	return nil
}

// Cancel is a no-op for manual billing
func (ManualAdapter) Cancel(_ context.Context, _ *ProcessorData) error { return nil }

// Delete is a no-op for manual billing
func (ManualAdapter) Delete(_ context.Context, _ *ProcessorData) error { return nil }

// Validate reports whether the customer reference is present
func (ManualAdapter) Validate(data *ProcessorData) bool { return data.CustomerRef != "" }

// AddPaymentMethod records an opaque manual payment method
func (ManualAdapter) AddPaymentMethod(_ context.Context, data *ProcessorData, token string) (*models.PaymentMethod, error) {
	method := models.PaymentMethod{
		ID:       token,
		Merchant: "manual",
		Default:  len(data.PaymentMethods) == 0,
	}
	data.PaymentMethods = append(data.PaymentMethods, method)
	return &method, nil
}

// RemovePaymentMethod removes a stored payment method by ID
func (ManualAdapter) RemovePaymentMethod(_ context.Context, data *ProcessorData, methodID string) error {
	for i, m := range data.PaymentMethods {
		if m.ID == methodID {
			data.PaymentMethods = append(data.PaymentMethods[:i], data.PaymentMethods[i+1:]...)
			return nil
		}
	}
	return models.NewNotFoundError("payment method", methodID)
}

// DefaultPaymentMethod returns the default stored method, if any
func (ManualAdapter) DefaultPaymentMethod(data *ProcessorData) *models.PaymentMethod {
	for i := range data.PaymentMethods {
		if data.PaymentMethods[i].Default {
			return &data.PaymentMethods[i]
		}
	}
	return nil
}

// BillingDate returns the customer's billing day of month
func (ManualAdapter) BillingDate(data *ProcessorData) int { return data.BillingDate }
