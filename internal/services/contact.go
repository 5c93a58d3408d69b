package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gridstore/bridge/internal/models"
	"github.com/gridstore/bridge/internal/storage"
	"github.com/jackc/pgx/v5"
)

const contactColumns = `node_id, address, port, last_seen, reputation, last_timeout,
	 timeout_rate, response_time, space_available, protocol, user_agent, created_at, updated_at`

// ContactService handles farmer contact operations
type ContactService struct {
	db *storage.DB
}

// NewContactService creates a new contact service
func NewContactService(db *storage.DB) *ContactService {
	return &ContactService{db: db}
}

// UpsertContactRequest represents an observed contact
type UpsertContactRequest struct {
	NodeID         string `json:"node_id" binding:"required"`
	Address        string `json:"address" binding:"required"`
	Port           int    `json:"port" binding:"required"`
	Protocol       string `json:"protocol"`
	UserAgent      string `json:"user_agent"`
	SpaceAvailable bool   `json:"space_available"`
}

// Upsert records an observation of a contact, creating it on first
// sight and refreshing its endpoint and last-seen time otherwise.
func (s *ContactService) Upsert(ctx context.Context, req UpsertContactRequest, now time.Time) (*models.Contact, error) {
	row := s.db.Pool.QueryRow(ctx,
		`INSERT INTO contacts (node_id, address, port, last_seen, response_time, space_available, protocol, user_agent, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $4, $4)
		 ON CONFLICT (node_id) DO UPDATE SET
			address = EXCLUDED.address,
			port = EXCLUDED.port,
			last_seen = EXCLUDED.last_seen,
			space_available = EXCLUDED.space_available,
			protocol = EXCLUDED.protocol,
			user_agent = EXCLUDED.user_agent,
			updated_at = EXCLUDED.updated_at
		 RETURNING `+contactColumns,
		req.NodeID, req.Address, req.Port, now, float64(models.DefaultResponseTime),
		req.SpaceAvailable, req.Protocol, req.UserAgent)

	contact, err := scanContact(row)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert contact: %w", err)
	}
	return contact, nil
}

// Get retrieves a contact by node ID
func (s *ContactService) Get(ctx context.Context, nodeID string) (*models.Contact, error) {
	row := s.db.Pool.QueryRow(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE node_id = $1`, nodeID)
	contact, err := scanContact(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewNotFoundError("contact", nodeID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load contact: %w", err)
	}
	return contact, nil
}

// List retrieves contacts ordered by most recently seen
func (s *ContactService) List(ctx context.Context, limit int) ([]models.Contact, error) {
	rows, err := s.db.Pool.Query(ctx,
		`SELECT `+contactColumns+` FROM contacts ORDER BY last_seen DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []models.Contact
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, *contact)
	}
	return contacts, rows.Err()
}

// RecordPoints adjusts a contact's reputation by points, clamped into
// the reputation bounds, as a single atomic update.
func (s *ContactService) RecordPoints(ctx context.Context, nodeID string, points int) (*models.Contact, error) {
	row := s.db.Pool.QueryRow(ctx,
		`UPDATE contacts
		 SET reputation = LEAST(GREATEST(reputation + $2, $3), $4), updated_at = NOW()
		 WHERE node_id = $1
		 RETURNING `+contactColumns,
		nodeID, points, models.MinReputationPoints, models.MaxReputationPoints)

	contact, err := scanContact(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewNotFoundError("contact", nodeID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to record points: %w", err)
	}
	return contact, nil
}

// RecordTimeoutFailure applies the timeout-rate decay model for a
// contact that failed to respond. The row is locked for the
// read-modify-write so concurrent recorders cannot lose updates.
func (s *ContactService) RecordTimeoutFailure(ctx context.Context, nodeID string, now time.Time) (*models.Contact, error) {
	return s.mutateContact(ctx, nodeID, func(c *models.Contact) error {
		c.RecordTimeoutFailure(now)
		return nil
	})
}

// RecordResponseTime folds an observed response time into the
// contact's moving average.
func (s *ContactService) RecordResponseTime(ctx context.Context, nodeID string, ms float64) (*models.Contact, error) {
	return s.mutateContact(ctx, nodeID, func(c *models.Contact) error {
		return c.RecordResponseTime(ms)
	})
}

// mutateContact runs fn over the contact's in-memory state inside a
// row-locked transaction and persists the tracked fields.
func (s *ContactService) mutateContact(ctx context.Context, nodeID string, fn func(*models.Contact) error) (*models.Contact, error) {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE node_id = $1 FOR UPDATE`, nodeID)
	contact, err := scanContact(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewNotFoundError("contact", nodeID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load contact: %w", err)
	}

	if err := fn(contact); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx,
		`UPDATE contacts
		 SET reputation = $2, last_timeout = $3, timeout_rate = $4, response_time = $5, updated_at = NOW()
		 WHERE node_id = $1`,
		contact.NodeID, contact.Reputation, contact.LastTimeout, contact.TimeoutRate, contact.ResponseTime)
	if err != nil {
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit contact update: %w", err)
	}
	return contact, nil
}

func scanContact(row pgx.Row) (*models.Contact, error) {
	var c models.Contact
	err := row.Scan(
		&c.NodeID, &c.Address, &c.Port, &c.LastSeen, &c.Reputation, &c.LastTimeout,
		&c.TimeoutRate, &c.ResponseTime, &c.SpaceAvailable, &c.Protocol, &c.UserAgent,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
