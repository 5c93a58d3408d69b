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

// BucketService handles bucket and bucket entry operations
type BucketService struct {
	db *storage.DB
}

// NewBucketService creates a new bucket service
func NewBucketService(db *storage.DB) *BucketService {
	return &BucketService{db: db}
}

// Create makes a new bucket for a user. Bucket names are unique per
// user.
func (s *BucketService) Create(ctx context.Context, userEmail, name string) (*models.Bucket, error) {
	bucket := &models.Bucket{
		ID:        uuid.New(),
		UserEmail: userEmail,
		Name:      name,
	}
	if err := bucket.Validate(); err != nil {
		return nil, err
	}

	_, err := s.db.Pool.Exec(ctx,
		`INSERT INTO buckets (id, user_email, name) VALUES ($1, $2, $3)`,
		bucket.ID, bucket.UserEmail, bucket.Name)
	if storage.IsUniqueViolation(err) {
		return nil, models.NewConflictError("bucket", name)
	}
	if storage.IsForeignKeyViolation(err) {
		return nil, models.NewNotFoundError("user", userEmail)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}
	return bucket, nil
}

// Get retrieves a bucket by ID
func (s *BucketService) Get(ctx context.Context, bucketID uuid.UUID) (*models.Bucket, error) {
	var b models.Bucket
	err := s.db.Pool.QueryRow(ctx,
		`SELECT id, user_email, name, transfer, storage, created_at, updated_at
		 FROM buckets WHERE id = $1`, bucketID).Scan(
		&b.ID, &b.UserEmail, &b.Name, &b.Transfer, &b.Storage, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewNotFoundError("bucket", bucketID.String())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load bucket: %w", err)
	}
	return &b, nil
}

// ListForUser retrieves a user's buckets by name
func (s *BucketService) ListForUser(ctx context.Context, userEmail string) ([]models.Bucket, error) {
	rows, err := s.db.Pool.Query(ctx,
		`SELECT id, user_email, name, transfer, storage, created_at, updated_at
		 FROM buckets WHERE user_email = $1 ORDER BY name`, userEmail)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var buckets []models.Bucket
	for rows.Next() {
		var b models.Bucket
		if err := rows.Scan(&b.ID, &b.UserEmail, &b.Name, &b.Transfer, &b.Storage, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

// Delete removes a bucket and its entries
func (s *BucketService) Delete(ctx context.Context, bucketID uuid.UUID) error {
	tag, err := s.db.Pool.Exec(ctx, `DELETE FROM buckets WHERE id = $1`, bucketID)
	if err != nil {
		return fmt.Errorf("failed to delete bucket: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.NewNotFoundError("bucket", bucketID.String())
	}
	return nil
}

// CreateEntry commits a frame into a bucket as a named file. Entry
// names are unique per bucket.
func (s *BucketService) CreateEntry(ctx context.Context, entry *models.BucketEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// The entry's size is the frame's logical size at commit time.
	var frameSize int64
	err = tx.QueryRow(ctx, `SELECT size FROM frames WHERE id = $1`, entry.FrameID).Scan(&frameSize)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.NewNotFoundError("frame", entry.FrameID.String())
	}
	if err != nil {
		return fmt.Errorf("failed to load frame: %w", err)
	}
	entry.Size = frameSize

	_, err = tx.Exec(ctx,
		`INSERT INTO bucket_entries (id, bucket_id, frame_id, name, mime_type, size)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ID, entry.BucketID, entry.FrameID, entry.Name, entry.MimeType, entry.Size)
	if storage.IsUniqueViolation(err) {
		return models.NewConflictError("file", entry.Name)
	}
	if storage.IsForeignKeyViolation(err) {
		return models.NewNotFoundError("bucket", entry.BucketID.String())
	}
	if err != nil {
		return fmt.Errorf("failed to create bucket entry: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE buckets SET storage = storage + $2, updated_at = NOW() WHERE id = $1`,
		entry.BucketID, entry.Size)
	if err != nil {
		return fmt.Errorf("failed to update bucket storage: %w", err)
	}

	return tx.Commit(ctx)
}

// ListEntries retrieves a bucket's entries by name
func (s *BucketService) ListEntries(ctx context.Context, bucketID uuid.UUID) ([]models.BucketEntry, error) {
	rows, err := s.db.Pool.Query(ctx,
		`SELECT id, bucket_id, frame_id, name, mime_type, size, created_at
		 FROM bucket_entries WHERE bucket_id = $1 ORDER BY name`, bucketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.BucketEntry
	for rows.Next() {
		var e models.BucketEntry
		if err := rows.Scan(&e.ID, &e.BucketID, &e.FrameID, &e.Name, &e.MimeType, &e.Size, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
