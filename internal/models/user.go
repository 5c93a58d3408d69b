package models

import "time"

// User is an account in the control plane, identified by email. The
// two transfer counters track upload and download bandwidth
// independently for rate limiting of free-tier accounts.
type User struct {
	Email        string          `db:"email" json:"email"`
	PasswordHash string          `db:"password_hash" json:"-"`
	Activated    bool            `db:"activated" json:"activated"`
	FreeTier     bool            `db:"free_tier" json:"free_tier"`
	Uploaded     TransferCounter `json:"bytes_uploaded"`
	Downloaded   TransferCounter `json:"bytes_downloaded"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// RecordUploadBytes adds uploaded bytes to all upload windows
func (u *User) RecordUploadBytes(bytes int64, now time.Time) {
	u.Uploaded.Record(bytes, now)
}

// RecordDownloadBytes adds downloaded bytes to all download windows
func (u *User) RecordDownloadBytes(bytes int64, now time.Time) {
	u.Downloaded.Record(bytes, now)
}

// IsUploadRateLimited reports whether the user has hit an upload
// ceiling as of now. Paid accounts are never limited.
func (u *User) IsUploadRateLimited(limits TransferLimits, now time.Time) bool {
	if !u.FreeTier {
		return false
	}
	return u.Uploaded.Exceeds(limits, now)
}

// IsDownloadRateLimited reports whether the user has hit a download
// ceiling as of now. Paid accounts are never limited.
func (u *User) IsDownloadRateLimited(limits TransferLimits, now time.Time) bool {
	if !u.FreeTier {
		return false
	}
	return u.Downloaded.Exceeds(limits, now)
}
