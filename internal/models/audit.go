package models

import (
	"math"

	"github.com/google/uuid"
)

// ContractSummary carries the audit-relevant slice of a storage
// contract: its time window and full challenge set.
type ContractSummary struct {
	FarmerID   string   `json:"farmer_id"`
	DataHash   string   `json:"data_hash"`
	Root       string   `json:"root"`
	Depth      int      `json:"depth"`
	Start      int64    `json:"start"`
	End        int64    `json:"end"`
	Challenges []string `json:"challenges"`
}

// FullAudit is one scheduled proof-of-storage challenge derived from
// a contract. Passed is tri-state: nil until a worker reports a
// result.
type FullAudit struct {
	ID         uuid.UUID `db:"id" json:"id"`
	FarmerID   string    `db:"farmer_id" json:"farmer_id"`
	DataHash   string    `db:"data_hash" json:"data_hash"`
	Root       string    `db:"root" json:"root"`
	Depth      int       `db:"depth" json:"depth"`
	Challenge  string    `db:"challenge" json:"challenge"`
	TS         int64     `db:"ts" json:"ts"`
	Processing bool      `db:"processing" json:"-"`
	Passed     *bool     `db:"passed" json:"-"`
}

// ScheduleFunc maps a challenge index to the millisecond timestamp at
// which its audit should run.
type ScheduleFunc func(summary ContractSummary, index int) int64

// DefaultAuditSchedule distributes a contract's challenges evenly
// across its lifetime, each landing at the end of its interval.
func DefaultAuditSchedule(summary ContractSummary, index int) int64 {
	span := float64(summary.End - summary.Start)
	interval := span / float64(len(summary.Challenges))
	return int64(math.Round(float64(summary.Start) + interval*float64(index+1)))
}

// ScheduleFullAudits expands contract summaries into one audit job
// per challenge. No jobs are created if any summary lacks a challenge
// set.
func ScheduleFullAudits(summaries []ContractSummary, schedule ScheduleFunc) ([]FullAudit, error) {
	if schedule == nil {
		schedule = DefaultAuditSchedule
	}

	for _, s := range summaries {
		if s.Challenges == nil {
			return nil, NewValidationError("challenges", "contract summary has no challenge set")
		}
	}

	var audits []FullAudit
	for _, s := range summaries {
		for i, challenge := range s.Challenges {
			audits = append(audits, FullAudit{
				ID:        uuid.New(),
				FarmerID:  s.FarmerID,
				DataHash:  s.DataHash,
				Root:      s.Root,
				Depth:     s.Depth,
				Challenge: challenge,
				TS:        schedule(s, i),
			})
		}
	}
	return audits, nil
}
