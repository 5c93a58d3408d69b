package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gridstore/bridge/internal/models"
	"github.com/gridstore/bridge/internal/storage"
)

// AuditService handles audit job scheduling and the worker claim cycle
type AuditService struct {
	db         *storage.DB
	claimLimit int
}

// NewAuditService creates a new audit service
func NewAuditService(db *storage.DB, claimLimit int) *AuditService {
	return &AuditService{db: db, claimLimit: claimLimit}
}

// Schedule expands contract summaries into audit jobs and persists
// them in one transaction: either every challenge is scheduled or
// none are.
func (s *AuditService) Schedule(ctx context.Context, summaries []models.ContractSummary, fn models.ScheduleFunc) ([]models.FullAudit, error) {
	audits, err := models.ScheduleFullAudits(summaries, fn)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, a := range audits {
		_, err := tx.Exec(ctx,
			`INSERT INTO full_audits (id, farmer_id, data_hash, root, depth, challenge, ts, processing)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE)`,
			a.ID, a.FarmerID, a.DataHash, a.Root, a.Depth, a.Challenge, a.TS)
		if err != nil {
			return nil, fmt.Errorf("failed to insert audit job: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit audit schedule: %w", err)
	}
	return audits, nil
}

// PopReadyAudits claims every due, unclaimed job up to the configured
// limit and returns them without their claim state. The claim is a
// single conditional update, so concurrent workers each receive a
// disjoint set of jobs.
func (s *AuditService) PopReadyAudits(ctx context.Context, now time.Time) ([]models.FullAudit, error) {
	rows, err := s.db.Pool.Query(ctx,
		`UPDATE full_audits SET processing = TRUE
		 WHERE id IN (
			SELECT id FROM full_audits
			WHERE ts <= $1 AND NOT processing AND passed IS NULL
			ORDER BY ts
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		 )
		 RETURNING id, farmer_id, data_hash, root, depth, challenge, ts`,
		now.UnixMilli(), s.claimLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to claim audits: %w", err)
	}
	defer rows.Close()

	var audits []models.FullAudit
	for rows.Next() {
		var a models.FullAudit
		if err := rows.Scan(&a.ID, &a.FarmerID, &a.DataHash, &a.Root, &a.Depth, &a.Challenge, &a.TS); err != nil {
			return nil, err
		}
		audits = append(audits, a)
	}
	return audits, rows.Err()
}

// HandleAuditResult records the terminal pass/fail outcome for a job
// and clears its claim. Repeating a result is idempotent; a changed
// result overwrites the previous one.
func (s *AuditService) HandleAuditResult(ctx context.Context, auditID uuid.UUID, passed bool) error {
	tag, err := s.db.Pool.Exec(ctx,
		`UPDATE full_audits SET passed = $2, processing = FALSE WHERE id = $1`,
		auditID, passed)
	if err != nil {
		return fmt.Errorf("failed to record audit result: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.NewNotFoundError("audit", auditID.String())
	}
	return nil
}

// PendingCount reports how many jobs are due but unclaimed as of now
func (s *AuditService) PendingCount(ctx context.Context, now time.Time) (int, error) {
	var count int
	err := s.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM full_audits WHERE ts <= $1 AND NOT processing AND passed IS NULL`,
		now.UnixMilli()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending audits: %w", err)
	}
	return count, nil
}
