package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/gridstore/bridge/internal/models"
	"github.com/gridstore/bridge/internal/storage"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

const userColumns = `email, password_hash, activated, free_tier,
	 up_hour_start, up_hour_bytes, up_day_start, up_day_bytes, up_month_start, up_month_bytes,
	 down_hour_start, down_hour_bytes, down_day_start, down_day_bytes, down_month_start, down_month_bytes,
	 created_at, updated_at`

// TransferDirection selects which counter set an operation targets
type TransferDirection string

// Transfer directions
const (
	TransferUpload   TransferDirection = "upload"
	TransferDownload TransferDirection = "download"
)

// UserService handles user account and bandwidth accounting operations
type UserService struct {
	db     *storage.DB
	limits models.TransferLimits
}

// NewUserService creates a new user service
func NewUserService(db *storage.DB, limits models.TransferLimits) *UserService {
	return &UserService{db: db, limits: limits}
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register creates a new user on the free tier
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return nil, models.NewValidationError("email", "malformed address")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		FreeTier:     true,
	}

	_, err = s.db.Pool.Exec(ctx,
		`INSERT INTO users (email, password_hash, activated, free_tier)
		 VALUES ($1, $2, $3, $4)`,
		user.Email, user.PasswordHash, user.Activated, user.FreeTier)
	if storage.IsUniqueViolation(err) {
		return nil, models.NewConflictError("user", req.Email)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login authenticates a user
func (s *UserService) Login(ctx context.Context, req LoginRequest) (*models.User, error) {
	user, err := s.Get(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}

	return user, nil
}

// Get retrieves a user by email
func (s *UserService) Get(ctx context.Context, email string) (*models.User, error) {
	row := s.db.Pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewNotFoundError("user", email)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

// Activate marks a user account as activated
func (s *UserService) Activate(ctx context.Context, email string) error {
	tag, err := s.db.Pool.Exec(ctx,
		`UPDATE users SET activated = TRUE, updated_at = NOW() WHERE email = $1`, email)
	if err != nil {
		return fmt.Errorf("failed to activate user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.NewNotFoundError("user", email)
	}
	return nil
}

// RecordTransferBytes adds bytes to one direction's rolling windows.
// All three windows move in a single row-locked update so concurrent
// recorders cannot tear the counters.
func (s *UserService) RecordTransferBytes(ctx context.Context, email string, dir TransferDirection, bytes int64, now time.Time) (*models.User, error) {
	if bytes < 0 {
		return nil, models.NewValidationError("bytes", "cannot be negative")
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1 FOR UPDATE`, email)
	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewNotFoundError("user", email)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	counter := &user.Uploaded
	prefix := "up"
	if dir == TransferDownload {
		counter = &user.Downloaded
		prefix = "down"
	}
	counter.Record(bytes, now)

	_, err = tx.Exec(ctx, fmt.Sprintf(
		`UPDATE users SET
			%[1]s_hour_start = $2, %[1]s_hour_bytes = $3,
			%[1]s_day_start = $4, %[1]s_day_bytes = $5,
			%[1]s_month_start = $6, %[1]s_month_bytes = $7,
			updated_at = NOW()
		 WHERE email = $1`, prefix),
		email,
		counter.Hour.WindowStart, counter.Hour.Accumulated,
		counter.Day.WindowStart, counter.Day.Accumulated,
		counter.Month.WindowStart, counter.Month.Accumulated)
	if err != nil {
		return nil, fmt.Errorf("failed to update transfer counters: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transfer update: %w", err)
	}
	return user, nil
}

// IsRateLimited reports whether the user has hit a ceiling for the
// given direction as of now. The check reads current state without
// mutating stored windows.
func (s *UserService) IsRateLimited(ctx context.Context, email string, dir TransferDirection, now time.Time) (bool, error) {
	user, err := s.Get(ctx, email)
	if err != nil {
		return false, err
	}
	if dir == TransferDownload {
		return user.IsDownloadRateLimited(s.limits, now), nil
	}
	return user.IsUploadRateLimited(s.limits, now), nil
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	var upHour, upDay, upMonth, downHour, downDay, downMonth *time.Time
	err := row.Scan(
		&u.Email, &u.PasswordHash, &u.Activated, &u.FreeTier,
		&upHour, &u.Uploaded.Hour.Accumulated,
		&upDay, &u.Uploaded.Day.Accumulated,
		&upMonth, &u.Uploaded.Month.Accumulated,
		&downHour, &u.Downloaded.Hour.Accumulated,
		&downDay, &u.Downloaded.Day.Accumulated,
		&downMonth, &u.Downloaded.Month.Accumulated,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u.Uploaded.Hour.WindowStart = windowTime(upHour)
	u.Uploaded.Day.WindowStart = windowTime(upDay)
	u.Uploaded.Month.WindowStart = windowTime(upMonth)
	u.Downloaded.Hour.WindowStart = windowTime(downHour)
	u.Downloaded.Day.WindowStart = windowTime(downDay)
	u.Downloaded.Month.WindowStart = windowTime(downMonth)
	return &u, nil
}

// windowTime maps a NULL window start onto the zero time, meaning the
// window has never been seeded.
func windowTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
