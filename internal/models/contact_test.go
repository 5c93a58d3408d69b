package models

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestContact_RecordPoints(t *testing.T) {
	tests := []struct {
		name   string
		start  int
		points []int
		want   int
	}{
		{
			name:   "accumulates positive points",
			start:  0,
			points: []int{10, 25},
			want:   35,
		},
		{
			name:   "clamps at maximum",
			start:  MaxReputationPoints - 5,
			points: []int{100},
			want:   MaxReputationPoints,
		},
		{
			name:   "clamps at minimum",
			start:  3,
			points: []int{-10},
			want:   MinReputationPoints,
		},
		{
			name:   "negative then positive",
			start:  0,
			points: []int{-100, 50},
			want:   50,
		},
		{
			name:   "stays clamped across calls",
			start:  MaxReputationPoints,
			points: []int{1, 1, -2},
			want:   MaxReputationPoints - 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Contact{Reputation: tt.start}
			for _, p := range tt.points {
				c.RecordPoints(p)
			}
			assert.Equal(t, tt.want, c.Reputation)
			assert.GreaterOrEqual(t, c.Reputation, MinReputationPoints)
			assert.LessOrEqual(t, c.Reputation, MaxReputationPoints)
		})
	}
}

func TestContact_RecordTimeoutFailure(t *testing.T) {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("two failures ten minutes apart", func(t *testing.T) {
		c := &Contact{LastSeen: base}

		c.RecordTimeoutFailure(base)
		assert.Equal(t, 0.0, c.TimeoutRate)

		c.RecordTimeoutFailure(base.Add(10 * time.Minute))
		assert.Equal(t, 0.0, c.TimeoutRate)

		c.RecordTimeoutFailure(base.Add(20 * time.Minute))
		assert.InDelta(t, 0.0069, c.TimeoutRate, 0.0001)
	})

	t.Run("twelve hourly failures reach half", func(t *testing.T) {
		c := &Contact{LastSeen: base}
		for i := 1; i <= 12; i++ {
			c.RecordTimeoutFailure(base.Add(time.Duration(i) * time.Hour))
		}
		assert.InDelta(t, 0.5, c.TimeoutRate, 0.0001)
	})

	t.Run("twenty four hourly failures clamp at one", func(t *testing.T) {
		c := &Contact{LastSeen: base}
		for i := 1; i <= 24; i++ {
			c.RecordTimeoutFailure(base.Add(time.Duration(i) * time.Hour))
		}
		assert.Equal(t, 1.0, c.TimeoutRate)

		c.RecordTimeoutFailure(base.Add(48 * time.Hour))
		assert.Equal(t, 1.0, c.TimeoutRate)
	})

	t.Run("online time earns the rate back", func(t *testing.T) {
		lastTimeout := base
		c := &Contact{
			TimeoutRate: 0.5,
			LastTimeout: &lastTimeout,
			LastSeen:    base.Add(6 * time.Hour),
		}

		// 6h online out of the 24h window recovers 0.25.
		c.RecordTimeoutFailure(base.Add(7 * time.Hour))
		assert.InDelta(t, 0.25, c.TimeoutRate, 0.0001)
	})

	t.Run("recovery clamps at zero", func(t *testing.T) {
		lastTimeout := base
		c := &Contact{
			TimeoutRate: 0.1,
			LastTimeout: &lastTimeout,
			LastSeen:    base.Add(48 * time.Hour),
		}

		c.RecordTimeoutFailure(base.Add(49 * time.Hour))
		assert.Equal(t, 0.0, c.TimeoutRate)
	})

	t.Run("always advances last timeout", func(t *testing.T) {
		c := &Contact{LastSeen: base}
		now := base.Add(time.Minute)
		c.RecordTimeoutFailure(now)
		if assert.NotNil(t, c.LastTimeout) {
			assert.Equal(t, now, *c.LastTimeout)
		}
	})
}

func TestContact_RecordResponseTime(t *testing.T) {
	t.Run("first observation moves off the default", func(t *testing.T) {
		c := &Contact{}
		err := c.RecordResponseTime(400)
		assert.NoError(t, err)
		assert.InDelta(t, 9981, c.ResponseTime, 1)
	})

	t.Run("converges toward a constant fast input", func(t *testing.T) {
		c := &Contact{}
		for i := 0; i < 10000; i++ {
			assert.NoError(t, c.RecordResponseTime(100))
		}
		assert.InDelta(t, 100, c.ResponseTime, 1)
	})

	t.Run("stays at the default for default-speed input", func(t *testing.T) {
		c := &Contact{}
		for i := 0; i < 100; i++ {
			assert.NoError(t, c.RecordResponseTime(10000))
		}
		assert.InDelta(t, DefaultResponseTime, c.ResponseTime, 1e-6)
	})

	t.Run("rejects non-finite values", func(t *testing.T) {
		c := &Contact{ResponseTime: 5000}
		assert.Error(t, c.RecordResponseTime(math.NaN()))
		assert.Error(t, c.RecordResponseTime(math.Inf(1)))
		assert.Error(t, c.RecordResponseTime(math.Inf(-1)))
		assert.Equal(t, 5000.0, c.ResponseTime, "rejected samples must not change state")
		assert.True(t, IsValidation(c.RecordResponseTime(math.NaN())))
	})
}

func TestContact_Seen(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	c := &Contact{Address: "old.example.com", Port: 4000}

	c.Seen(now, "new.example.com", 4001)
	assert.Equal(t, now, c.LastSeen)
	assert.Equal(t, "new.example.com", c.Address)
	assert.Equal(t, 4001, c.Port)

	// Empty endpoint details leave the known ones in place.
	c.Seen(now.Add(time.Minute), "", 0)
	assert.Equal(t, "new.example.com", c.Address)
	assert.Equal(t, 4001, c.Port)
}
