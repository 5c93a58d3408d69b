package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTransferCounter_Record(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("accumulates within the same hour", func(t *testing.T) {
		var c TransferCounter
		c.Record(4096, now)
		c.Record(1000, now.Add(10*time.Minute))

		assert.Equal(t, int64(5096), c.Hour.Accumulated)
		assert.Equal(t, int64(5096), c.Day.Accumulated)
		assert.Equal(t, int64(5096), c.Month.Accumulated)
	})

	t.Run("hour window resets after exactly one hour", func(t *testing.T) {
		var c TransferCounter
		c.Record(4096, now)
		c.Record(1000, now.Add(10*time.Minute))

		later := now.Add(time.Hour)
		c.Record(500, later)

		assert.Equal(t, int64(500), c.Hour.Accumulated, "hour window restarts with the new amount")
		assert.Equal(t, later, c.Hour.WindowStart)
		assert.Equal(t, int64(5596), c.Day.Accumulated, "day window keeps accumulating")
		assert.Equal(t, int64(5596), c.Month.Accumulated, "month window keeps accumulating")
		assert.Equal(t, now, c.Day.WindowStart)
	})

	t.Run("first record seeds all windows", func(t *testing.T) {
		var c TransferCounter
		c.Record(128, now)
		assert.Equal(t, now, c.Hour.WindowStart)
		assert.Equal(t, now, c.Day.WindowStart)
		assert.Equal(t, now, c.Month.WindowStart)
		assert.Equal(t, int64(128), c.Hour.Accumulated)
	})

	t.Run("window start only moves forward", func(t *testing.T) {
		var c TransferCounter
		c.Record(100, now)
		c.Record(100, now.Add(30*time.Minute))
		assert.Equal(t, now, c.Hour.WindowStart)

		c.Record(100, now.Add(90*time.Minute))
		assert.Equal(t, now.Add(90*time.Minute), c.Hour.WindowStart)
	})
}

func TestTransferCounter_Exceeds(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	limits := TransferLimits{HourBytes: 1000, DayBytes: 5000, MonthBytes: 20000}

	t.Run("under all limits", func(t *testing.T) {
		var c TransferCounter
		c.Record(500, now)
		assert.False(t, c.Exceeds(limits, now))
	})

	t.Run("at the hour limit", func(t *testing.T) {
		var c TransferCounter
		c.Record(1000, now)
		assert.True(t, c.Exceeds(limits, now))
	})

	t.Run("elapsed window counts as empty without mutating state", func(t *testing.T) {
		var c TransferCounter
		c.Record(1500, now)

		later := now.Add(time.Hour)
		assert.False(t, c.Exceeds(TransferLimits{HourBytes: 1000, DayBytes: 1 << 40, MonthBytes: 1 << 40}, later))
		assert.Equal(t, int64(1500), c.Hour.Accumulated, "the check must not reset stored state")
		assert.Equal(t, now, c.Hour.WindowStart)
	})

	t.Run("day limit trips independently of hour", func(t *testing.T) {
		var c TransferCounter
		c.Record(4000, now)
		c.Record(1500, now.Add(2*time.Hour))
		assert.True(t, c.Exceeds(limits, now.Add(2*time.Hour+time.Minute)))
	})
}

func TestUser_RateLimiting(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	limits := TransferLimits{HourBytes: 1000, DayBytes: 5000, MonthBytes: 20000}

	t.Run("paid accounts are never limited", func(t *testing.T) {
		u := &User{Email: "paid@example.com", FreeTier: false}
		u.RecordUploadBytes(1_000_000, now)
		u.RecordDownloadBytes(1_000_000, now)
		assert.False(t, u.IsUploadRateLimited(limits, now))
		assert.False(t, u.IsDownloadRateLimited(limits, now))
	})

	t.Run("free tier upload and download are independent", func(t *testing.T) {
		u := &User{Email: "free@example.com", FreeTier: true}
		u.RecordUploadBytes(1000, now)
		assert.True(t, u.IsUploadRateLimited(limits, now))
		assert.False(t, u.IsDownloadRateLimited(limits, now))
	})
}
