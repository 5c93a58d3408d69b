package models

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// MinShardSize is the smallest permitted data shard, in bytes
const MinShardSize = 1024 * 1024

// Pointer references one stored shard (or parity shard) of a file
type Pointer struct {
	ID        uuid.UUID `db:"id" json:"id"`
	FrameID   uuid.UUID `db:"frame_id" json:"frame_id"`
	Index     int       `db:"shard_index" json:"index"`
	Hash      string    `db:"hash" json:"hash"`
	Size      int64     `db:"size" json:"size"`
	Parity    bool      `db:"parity" json:"parity"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Frame is an upload-in-progress grouping of shards for one file.
// Size is the sum of non-parity shard bytes; StorageSize includes
// parity.
type Frame struct {
	ID          uuid.UUID `db:"id" json:"id"`
	UserEmail   string    `db:"user_email" json:"user"`
	Locked      bool      `db:"locked" json:"locked"`
	Size        int64     `db:"size" json:"size"`
	StorageSize int64     `db:"storage_size" json:"storage_size"`
	Shards      []Pointer `json:"shards"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ValidShardSizes reports whether a frame's shard list uses one
// uniform size for every data shard except the last, each at least
// MinShardSize. Parity shards are exempt.
//
// When strict is false a frame whose lowest shard index is not zero is
// accepted without further checks; that permissiveness is inherited
// behavior kept for compatibility, and strict mode validates such
// frames like any other.
func ValidShardSizes(shards []Pointer, strict bool) bool {
	if len(shards) <= 1 {
		return true
	}

	sorted := make([]Pointer, len(shards))
	copy(sorted, shards)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })

	if sorted[0].Index != 0 && !strict {
		return true
	}

	// Data shards run up to the first parity shard.
	dataEnd := len(sorted)
	for i, s := range sorted {
		if s.Parity {
			dataEnd = i
			break
		}
	}

	uniform := sorted[0].Size
	for i := 0; i < dataEnd-1; i++ {
		if sorted[i].Size != uniform || sorted[i].Size < MinShardSize {
			return false
		}
	}
	return true
}

// AddShard validates the frame's current shard list, replaces any
// shard already occupying the new shard's index, and adjusts both
// running totals. The returned pointer is the replaced shard, if any,
// so the caller can mirror the removal into storage as part of the
// same atomic update.
func (f *Frame) AddShard(p Pointer, strict bool) (*Pointer, error) {
	if !ValidShardSizes(f.Shards, strict) {
		return nil, NewValidationError("shards", "frame has inconsistent shard sizes")
	}

	var replaced *Pointer
	for i, existing := range f.Shards {
		if existing.Index == p.Index {
			old := existing
			replaced = &old
			f.Shards = append(f.Shards[:i], f.Shards[i+1:]...)
			f.StorageSize -= old.Size
			if !old.Parity {
				f.Size -= old.Size
			}
			break
		}
	}

	f.Shards = append(f.Shards, p)
	f.StorageSize += p.Size
	if !p.Parity {
		f.Size += p.Size
	}

	return replaced, nil
}
