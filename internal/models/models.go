package models

import (
	"time"

	"github.com/google/uuid"
)

// Bucket groups a user's files under a unique name
type Bucket struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserEmail string    `db:"user_email" json:"user"`
	Name      string    `db:"name" json:"name"`
	Transfer  int64     `db:"transfer" json:"transfer"`
	Storage   int64     `db:"storage" json:"storage"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Validate checks the bucket before persistence
func (b *Bucket) Validate() error {
	if b.Name == "" {
		return NewValidationError("name", "cannot be empty")
	}
	if b.UserEmail == "" {
		return NewValidationError("user", "cannot be empty")
	}
	return nil
}

// BucketEntry is a committed file inside a bucket, pointing at the
// frame that holds its shards
type BucketEntry struct {
	ID        uuid.UUID `db:"id" json:"id"`
	BucketID  uuid.UUID `db:"bucket_id" json:"bucket_id"`
	FrameID   uuid.UUID `db:"frame_id" json:"frame_id"`
	Name      string    `db:"name" json:"name"`
	MimeType  string    `db:"mime_type" json:"mime_type"`
	Size      int64     `db:"size" json:"size"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Validate checks the bucket entry before persistence
func (e *BucketEntry) Validate() error {
	if e.Name == "" {
		return NewValidationError("name", "cannot be empty")
	}
	if e.FrameID == uuid.Nil {
		return NewValidationError("frame_id", "must reference a frame")
	}
	return nil
}
