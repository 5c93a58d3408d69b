package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/gridstore/bridge/internal/models"
	"github.com/gridstore/bridge/internal/storage"
	"github.com/jackc/pgx/v5"
)

// BillingService handles credit and debit ledger operations
type BillingService struct {
	db *storage.DB
}

// NewBillingService creates a new billing service
func NewBillingService(db *storage.DB) *BillingService {
	return &BillingService{db: db}
}

// CreateCredit validates and persists a credit ledger entry. The
// validation pipeline runs before any write; a credit that fails an
// accounting rule never reaches storage.
func (s *BillingService) CreateCredit(ctx context.Context, credit *models.Credit) error {
	if credit.PromoCode == "" {
		credit.PromoCode = models.NoPromoCode
	}
	if credit.Type == "" {
		credit.Type = models.CreditTypeAutomatic
	}
	if err := credit.Validate(); err != nil {
		return err
	}

	if credit.ID == uuid.Nil {
		credit.ID = uuid.New()
	}

	_, err := s.db.Pool.Exec(ctx,
		`INSERT INTO credits (id, user_email, paid_amount, invoiced_amount, promo_amount, promo_code, paid, payment_processor, credit_type)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		credit.ID, credit.UserEmail, credit.PaidAmount, credit.InvoicedAmount,
		credit.PromoAmount, credit.PromoCode, credit.Paid, credit.Processor, credit.Type)
	if storage.IsUniqueViolation(err) {
		return models.NewConflictError("credit", credit.ID.String())
	}
	if storage.IsForeignKeyViolation(err) {
		return models.NewNotFoundError("user", credit.UserEmail)
	}
	if err != nil {
		return fmt.Errorf("failed to create credit: %w", err)
	}
	return nil
}

// MarkCreditPaid settles an invoiced credit, re-running the ledger
// rules against the updated amounts inside a row-locked transaction.
func (s *BillingService) MarkCreditPaid(ctx context.Context, creditID uuid.UUID, paidAmount models.Money) (*models.Credit, error) {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx,
		`SELECT id, user_email, paid_amount, invoiced_amount, promo_amount, promo_code, paid, payment_processor, credit_type, created_at, updated_at
		 FROM credits WHERE id = $1 FOR UPDATE`, creditID)
	credit, err := scanCredit(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewNotFoundError("credit", creditID.String())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load credit: %w", err)
	}

	credit.PaidAmount = paidAmount
	if err := credit.Validate(); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx,
		`UPDATE credits SET paid_amount = $2, paid = $3, updated_at = NOW() WHERE id = $1`,
		credit.ID, credit.PaidAmount, credit.Paid)
	if err != nil {
		return nil, fmt.Errorf("failed to update credit: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit credit update: %w", err)
	}
	return credit, nil
}

// ListCredits retrieves a user's credits, newest first
func (s *BillingService) ListCredits(ctx context.Context, email string) ([]models.Credit, error) {
	rows, err := s.db.Pool.Query(ctx,
		`SELECT id, user_email, paid_amount, invoiced_amount, promo_amount, promo_code, paid, payment_processor, credit_type, created_at, updated_at
		 FROM credits WHERE user_email = $1 ORDER BY created_at DESC`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var credits []models.Credit
	for rows.Next() {
		credit, err := scanCredit(rows)
		if err != nil {
			return nil, err
		}
		credits = append(credits, *credit)
	}
	return credits, rows.Err()
}

// CreateDebit validates and persists a usage charge
func (s *BillingService) CreateDebit(ctx context.Context, debit *models.Debit) error {
	if err := debit.Validate(); err != nil {
		return err
	}

	if debit.ID == uuid.Nil {
		debit.ID = uuid.New()
	}

	_, err := s.db.Pool.Exec(ctx,
		`INSERT INTO debits (id, user_email, amount, debit_type, bandwidth, storage)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		debit.ID, debit.UserEmail, debit.Amount, debit.Type, debit.Bandwidth, debit.Storage)
	if storage.IsForeignKeyViolation(err) {
		return models.NewNotFoundError("user", debit.UserEmail)
	}
	if err != nil {
		return fmt.Errorf("failed to create debit: %w", err)
	}
	return nil
}

// ListDebits retrieves a user's debits, newest first
func (s *BillingService) ListDebits(ctx context.Context, email string) ([]models.Debit, error) {
	rows, err := s.db.Pool.Query(ctx,
		`SELECT id, user_email, amount, debit_type, bandwidth, storage, created_at
		 FROM debits WHERE user_email = $1 ORDER BY created_at DESC`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var debits []models.Debit
	for rows.Next() {
		var d models.Debit
		if err := rows.Scan(&d.ID, &d.UserEmail, &d.Amount, &d.Type, &d.Bandwidth, &d.Storage, &d.CreatedAt); err != nil {
			return nil, err
		}
		debits = append(debits, d)
	}
	return debits, rows.Err()
}

// Balance returns the user's outstanding amount: debits minus credit
// coverage (paid and promotional), in sub-cent units.
func (s *BillingService) Balance(ctx context.Context, email string) (models.Money, error) {
	var debits, credits int64
	err := s.db.Pool.QueryRow(ctx,
		`SELECT
			COALESCE((SELECT SUM(amount) FROM debits WHERE user_email = $1), 0),
			COALESCE((SELECT SUM(paid_amount + promo_amount) FROM credits WHERE user_email = $1), 0)`,
		email).Scan(&debits, &credits)
	if err != nil {
		return 0, fmt.Errorf("failed to compute balance: %w", err)
	}
	return models.Money(debits - credits), nil
}

func scanCredit(row pgx.Row) (*models.Credit, error) {
	var c models.Credit
	err := row.Scan(
		&c.ID, &c.UserEmail, &c.PaidAmount, &c.InvoicedAmount, &c.PromoAmount,
		&c.PromoCode, &c.Paid, &c.Processor, &c.Type, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
