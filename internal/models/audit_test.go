package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScheduleFullAudits(t *testing.T) {
	t.Run("evenly distributes challenges across the contract", func(t *testing.T) {
		summary := ContractSummary{
			FarmerID:   "farmer-1",
			DataHash:   "hash-1",
			Root:       "root-1",
			Depth:      4,
			Start:      0,
			End:        9,
			Challenges: []string{"c0", "c1", "c2"},
		}

		audits, err := ScheduleFullAudits([]ContractSummary{summary}, nil)
		assert.NoError(t, err)
		assert.Len(t, audits, 3)
		assert.Equal(t, int64(3), audits[0].TS)
		assert.Equal(t, int64(6), audits[1].TS)
		assert.Equal(t, int64(9), audits[2].TS)

		for i, a := range audits {
			assert.Equal(t, summary.FarmerID, a.FarmerID)
			assert.Equal(t, summary.DataHash, a.DataHash)
			assert.Equal(t, summary.Root, a.Root)
			assert.Equal(t, summary.Depth, a.Depth)
			assert.Equal(t, summary.Challenges[i], a.Challenge)
			assert.False(t, a.Processing)
			assert.Nil(t, a.Passed)
		}
	})

	t.Run("last challenge lands at the contract end", func(t *testing.T) {
		summary := ContractSummary{
			Start:      1000,
			End:        87400,
			Challenges: []string{"a", "b", "c", "d"},
		}
		audits, err := ScheduleFullAudits([]ContractSummary{summary}, nil)
		assert.NoError(t, err)
		assert.Equal(t, summary.End, audits[len(audits)-1].TS)
	})

	t.Run("missing challenge set creates no jobs", func(t *testing.T) {
		summaries := []ContractSummary{
			{FarmerID: "ok", Challenges: []string{"c0"}, Start: 0, End: 10},
			{FarmerID: "broken", Start: 0, End: 10},
		}
		audits, err := ScheduleFullAudits(summaries, nil)
		assert.Error(t, err)
		assert.True(t, IsValidation(err))
		assert.Nil(t, audits)
	})

	t.Run("empty challenge set is allowed and yields nothing", func(t *testing.T) {
		audits, err := ScheduleFullAudits([]ContractSummary{
			{FarmerID: "f", Challenges: []string{}, Start: 0, End: 10},
		}, nil)
		assert.NoError(t, err)
		assert.Empty(t, audits)
	})

	t.Run("custom schedule function overrides the default", func(t *testing.T) {
		fixed := func(summary ContractSummary, index int) int64 { return 42 }
		audits, err := ScheduleFullAudits([]ContractSummary{
			{FarmerID: "f", Challenges: []string{"a", "b"}, Start: 0, End: 100},
		}, fixed)
		assert.NoError(t, err)
		for _, a := range audits {
			assert.Equal(t, int64(42), a.TS)
		}
	})

	t.Run("multiple summaries expand together", func(t *testing.T) {
		audits, err := ScheduleFullAudits([]ContractSummary{
			{FarmerID: "f1", Challenges: []string{"a", "b"}, Start: 0, End: 100},
			{FarmerID: "f2", Challenges: []string{"x"}, Start: 0, End: 100},
		}, nil)
		assert.NoError(t, err)
		assert.Len(t, audits, 3)
		assert.Equal(t, "f2", audits[2].FarmerID)
	})
}
