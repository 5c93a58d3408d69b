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

// FrameService handles frame and shard bookkeeping operations
type FrameService struct {
	db          *storage.DB
	strictIndex bool
}

// NewFrameService creates a new frame service
func NewFrameService(db *storage.DB, strictIndex bool) *FrameService {
	return &FrameService{db: db, strictIndex: strictIndex}
}

// Create opens an empty frame for a user
func (s *FrameService) Create(ctx context.Context, userEmail string) (*models.Frame, error) {
	frame := &models.Frame{
		ID:        uuid.New(),
		UserEmail: userEmail,
	}

	_, err := s.db.Pool.Exec(ctx,
		`INSERT INTO frames (id, user_email, locked, size, storage_size)
		 VALUES ($1, $2, FALSE, 0, 0)`,
		frame.ID, frame.UserEmail)
	if storage.IsForeignKeyViolation(err) {
		return nil, models.NewNotFoundError("user", userEmail)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create frame: %w", err)
	}
	return frame, nil
}

// Get retrieves a frame with its shard list
func (s *FrameService) Get(ctx context.Context, frameID uuid.UUID) (*models.Frame, error) {
	frame, err := s.loadFrame(ctx, s.db.Pool, frameID, false)
	if err != nil {
		return nil, err
	}
	frame.Shards, err = s.loadShards(ctx, s.db.Pool, frameID)
	if err != nil {
		return nil, err
	}
	return frame, nil
}

// ListForUser retrieves a user's frames, newest first, without shards
func (s *FrameService) ListForUser(ctx context.Context, userEmail string) ([]models.Frame, error) {
	rows, err := s.db.Pool.Query(ctx,
		`SELECT id, user_email, locked, size, storage_size, created_at, updated_at
		 FROM frames WHERE user_email = $1 ORDER BY created_at DESC`, userEmail)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var frames []models.Frame
	for rows.Next() {
		var f models.Frame
		if err := rows.Scan(&f.ID, &f.UserEmail, &f.Locked, &f.Size, &f.StorageSize, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}
	return frames, rows.Err()
}

// SetLocked locks a frame while an upload commit is in progress, or
// unlocks it afterward. Only the owning user's frames are touched; a
// frame belonging to someone else reads as not found.
func (s *FrameService) SetLocked(ctx context.Context, frameID uuid.UUID, userEmail string, locked bool) error {
	tag, err := s.db.Pool.Exec(ctx,
		`UPDATE frames SET locked = $3, updated_at = NOW() WHERE id = $1 AND user_email = $2`,
		frameID, userEmail, locked)
	if err != nil {
		return fmt.Errorf("failed to update frame lock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.NewNotFoundError("frame", frameID.String())
	}
	return nil
}

// AddShard validates the frame's shard sizing, replaces any shard at
// the same index and adjusts both running totals. The whole
// read-modify-write runs in one row-locked transaction, so the totals
// can never expose a torn intermediate state to concurrent writers.
// A frame owned by a different user reads as not found.
func (s *FrameService) AddShard(ctx context.Context, frameID uuid.UUID, userEmail string, shard models.Pointer) (*models.Frame, error) {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	frame, err := s.loadFrame(ctx, tx, frameID, true)
	if err != nil {
		return nil, err
	}
	if frame.UserEmail != userEmail {
		return nil, models.NewNotFoundError("frame", frameID.String())
	}
	if frame.Locked {
		return nil, models.NewValidationError("frame", "frame is locked")
	}

	frame.Shards, err = s.loadShards(ctx, tx, frameID)
	if err != nil {
		return nil, err
	}

	shard.ID = uuid.New()
	shard.FrameID = frameID
	sizeBefore, storageBefore := frame.Size, frame.StorageSize

	replaced, err := frame.AddShard(shard, s.strictIndex)
	if err != nil {
		return nil, err
	}

	if replaced != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM pointers WHERE id = $1`, replaced.ID); err != nil {
			return nil, fmt.Errorf("failed to remove replaced shard: %w", err)
		}
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO pointers (id, frame_id, shard_index, hash, size, parity)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		shard.ID, shard.FrameID, shard.Index, shard.Hash, shard.Size, shard.Parity)
	if err != nil {
		return nil, fmt.Errorf("failed to insert shard: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE frames SET size = size + $2, storage_size = storage_size + $3, updated_at = NOW()
		 WHERE id = $1`,
		frameID, frame.Size-sizeBefore, frame.StorageSize-storageBefore)
	if err != nil {
		return nil, fmt.Errorf("failed to update frame totals: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit shard add: %w", err)
	}
	return frame, nil
}

// querier lets frame loads run against the pool or a transaction
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (s *FrameService) loadFrame(ctx context.Context, q querier, frameID uuid.UUID, forUpdate bool) (*models.Frame, error) {
	query := `SELECT id, user_email, locked, size, storage_size, created_at, updated_at
		 FROM frames WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var f models.Frame
	err := q.QueryRow(ctx, query, frameID).Scan(
		&f.ID, &f.UserEmail, &f.Locked, &f.Size, &f.StorageSize, &f.CreatedAt, &f.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewNotFoundError("frame", frameID.String())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load frame: %w", err)
	}
	return &f, nil
}

func (s *FrameService) loadShards(ctx context.Context, q querier, frameID uuid.UUID) ([]models.Pointer, error) {
	rows, err := q.Query(ctx,
		`SELECT id, frame_id, shard_index, hash, size, parity, created_at
		 FROM pointers WHERE frame_id = $1 ORDER BY shard_index`, frameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shards []models.Pointer
	for rows.Next() {
		var p models.Pointer
		if err := rows.Scan(&p.ID, &p.FrameID, &p.Index, &p.Hash, &p.Size, &p.Parity, &p.CreatedAt); err != nil {
			return nil, err
		}
		shards = append(shards, p)
	}
	return shards, rows.Err()
}
