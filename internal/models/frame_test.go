package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func shard(index int, size int64, parity bool) Pointer {
	return Pointer{ID: uuid.New(), Index: index, Size: size, Parity: parity}
}

func TestValidShardSizes(t *testing.T) {
	tests := []struct {
		name   string
		shards []Pointer
		strict bool
		want   bool
	}{
		{
			name:   "empty frame",
			shards: nil,
			want:   true,
		},
		{
			name:   "single shard of any size",
			shards: []Pointer{shard(0, 42, false)},
			want:   true,
		},
		{
			name: "uniform data shards",
			shards: []Pointer{
				shard(0, 2*MinShardSize, false),
				shard(1, 2*MinShardSize, false),
				shard(2, 2*MinShardSize, false),
			},
			want: true,
		},
		{
			name: "smaller last data shard",
			shards: []Pointer{
				shard(0, 2*MinShardSize, false),
				shard(1, 2*MinShardSize, false),
				shard(2, 100, false),
			},
			want: true,
		},
		{
			name: "mismatched middle shard",
			shards: []Pointer{
				shard(0, 2*MinShardSize, false),
				shard(1, 3*MinShardSize, false),
				shard(2, 2*MinShardSize, false),
			},
			want: false,
		},
		{
			name: "data shards below the minimum",
			shards: []Pointer{
				shard(0, 1024, false),
				shard(1, 1024, false),
				shard(2, 500, false),
			},
			want: false,
		},
		{
			name: "parity shards are exempt from sizing",
			shards: []Pointer{
				shard(0, 2*MinShardSize, false),
				shard(1, 2*MinShardSize, false),
				shard(2, 999, true),
				shard(3, 999, true),
			},
			want: true,
		},
		{
			name: "unsorted input is sorted by index",
			shards: []Pointer{
				shard(2, 100, false),
				shard(0, 2*MinShardSize, false),
				shard(1, 2*MinShardSize, false),
			},
			want: true,
		},
		{
			name: "nonzero first index passes in compatible mode",
			shards: []Pointer{
				shard(3, 1, false),
				shard(4, 77, false),
			},
			want: true,
		},
		{
			name: "nonzero first index validated in strict mode",
			shards: []Pointer{
				shard(3, 1, false),
				shard(4, 77, false),
			},
			strict: true,
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidShardSizes(tt.shards, tt.strict))
		})
	}
}

func TestFrame_AddShard(t *testing.T) {
	t.Run("data shard grows both totals", func(t *testing.T) {
		f := &Frame{ID: uuid.New()}
		replaced, err := f.AddShard(shard(0, 2*MinShardSize, false), false)
		assert.NoError(t, err)
		assert.Nil(t, replaced)
		assert.Equal(t, int64(2*MinShardSize), f.Size)
		assert.Equal(t, int64(2*MinShardSize), f.StorageSize)
	})

	t.Run("parity shard grows only storage size", func(t *testing.T) {
		f := &Frame{ID: uuid.New()}
		_, err := f.AddShard(shard(0, 2*MinShardSize, true), false)
		assert.NoError(t, err)
		assert.Equal(t, int64(0), f.Size)
		assert.Equal(t, int64(2*MinShardSize), f.StorageSize)
	})

	t.Run("replacing an index nets to the new size", func(t *testing.T) {
		f := &Frame{ID: uuid.New()}
		_, err := f.AddShard(shard(0, 2*MinShardSize, false), false)
		assert.NoError(t, err)

		replaced, err := f.AddShard(shard(0, 3*MinShardSize, false), false)
		assert.NoError(t, err)
		if assert.NotNil(t, replaced) {
			assert.Equal(t, int64(2*MinShardSize), replaced.Size)
		}
		assert.Equal(t, int64(3*MinShardSize), f.Size)
		assert.Equal(t, int64(3*MinShardSize), f.StorageSize)
		assert.Len(t, f.Shards, 1)
	})

	t.Run("replacing parity with data moves size", func(t *testing.T) {
		f := &Frame{ID: uuid.New()}
		_, err := f.AddShard(shard(0, 2*MinShardSize, true), false)
		assert.NoError(t, err)

		_, err = f.AddShard(shard(0, 2*MinShardSize, false), false)
		assert.NoError(t, err)
		assert.Equal(t, int64(2*MinShardSize), f.Size)
		assert.Equal(t, int64(2*MinShardSize), f.StorageSize)
	})

	t.Run("invalid existing sizing rejects the add", func(t *testing.T) {
		f := &Frame{ID: uuid.New()}
		_, err := f.AddShard(shard(0, 2*MinShardSize, false), false)
		assert.NoError(t, err)
		_, err = f.AddShard(shard(1, 5*MinShardSize, false), false)
		assert.NoError(t, err, "a mismatched trailing shard is legal until it stops being last")
		_, err = f.AddShard(shard(2, 2*MinShardSize, false), false)
		assert.NoError(t, err)
		// Frame now holds a mismatched interior shard; the next add fails.
		_, err = f.AddShard(shard(3, 2*MinShardSize, false), false)
		assert.Error(t, err)
		assert.True(t, IsValidation(err))
	})

	t.Run("totals always match the shard list", func(t *testing.T) {
		f := &Frame{ID: uuid.New()}
		adds := []Pointer{
			shard(0, 2*MinShardSize, false),
			shard(1, 2*MinShardSize, false),
			shard(2, 2*MinShardSize, true),
			shard(1, 2*MinShardSize, false),
		}
		for _, p := range adds {
			_, err := f.AddShard(p, false)
			assert.NoError(t, err)
		}

		var size, storageSize int64
		for _, s := range f.Shards {
			storageSize += s.Size
			if !s.Parity {
				size += s.Size
			}
		}
		assert.Equal(t, size, f.Size)
		assert.Equal(t, storageSize, f.StorageSize)
	})
}
