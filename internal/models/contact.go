package models

import (
	"math"
	"time"
)

// Reputation and timing constants for farmer contacts.
const (
	// MinReputationPoints and MaxReputationPoints bound the score a
	// contact can accumulate.
	MinReputationPoints = 0
	MaxReputationPoints = 5000

	// timeoutRateWindow is the observation window for the timeout
	// rate: a contact that stays unreachable for the whole window
	// reaches a rate of 1, and earns it back at the same linear rate
	// while reachable.
	timeoutRateWindow = 24 * time.Hour

	// responseTimePeriod is the EMA period (in observations) for
	// response-time smoothing.
	responseTimePeriod = 1000

	// DefaultResponseTime is the conservative starting value for a
	// contact with no recorded responses, equal to the assumed
	// timeout threshold in milliseconds.
	DefaultResponseTime = 10000
)

// Contact is a network participant's known endpoint plus its trust
// and performance statistics. Contacts are upserted on every
// observation and never explicitly deleted.
type Contact struct {
	NodeID         string     `db:"node_id" json:"node_id"`
	Address        string     `db:"address" json:"address"`
	Port           int        `db:"port" json:"port"`
	LastSeen       time.Time  `db:"last_seen" json:"last_seen"`
	Reputation     int        `db:"reputation" json:"reputation"`
	LastTimeout    *time.Time `db:"last_timeout" json:"last_timeout,omitempty"`
	TimeoutRate    float64    `db:"timeout_rate" json:"timeout_rate"`
	ResponseTime   float64    `db:"response_time" json:"response_time"`
	SpaceAvailable bool       `db:"space_available" json:"space_available"`
	Protocol       string     `db:"protocol" json:"protocol"`
	UserAgent      string     `db:"user_agent" json:"user_agent"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// RecordPoints adds points (positive or negative) to the contact's
// reputation, clamping the result into
// [MinReputationPoints, MaxReputationPoints].
func (c *Contact) RecordPoints(points int) {
	score := c.Reputation + points
	if score > MaxReputationPoints {
		score = MaxReputationPoints
	}
	if score < MinReputationPoints {
		score = MinReputationPoints
	}
	c.Reputation = score
}

// RecordTimeoutFailure updates the timeout rate for a contact that
// failed to respond at time now. While the contact stays offline the
// rate climbs linearly over the 24h window; once it has been seen
// again, time spent online since the last failure is credited back at
// the same rate. A contact with no recorded failure is measured from
// its last successful contact.
func (c *Contact) RecordTimeoutFailure(now time.Time) {
	rate := c.TimeoutRate

	if c.LastTimeout == nil || c.LastTimeout.After(c.LastSeen) {
		since := c.LastSeen
		if c.LastTimeout != nil {
			since = *c.LastTimeout
		}
		offline := float64(now.Sub(since).Milliseconds())
		rate = math.Min(rate+offline/float64(timeoutRateWindow.Milliseconds()), 1)
	} else {
		online := float64(c.LastSeen.Sub(*c.LastTimeout).Milliseconds())
		rate = math.Max(rate-online/float64(timeoutRateWindow.Milliseconds()), 0)
	}

	c.TimeoutRate = rate
	t := now
	c.LastTimeout = &t
}

// RecordResponseTime folds a new observed response time (in
// milliseconds) into the contact's moving average. A contact with no
// history starts from DefaultResponseTime so that untested contacts
// rank behind proven ones.
func (c *Contact) RecordResponseTime(ms float64) error {
	if math.IsNaN(ms) || math.IsInf(ms, 0) {
		return NewValidationError("response_time", "must be a finite number")
	}

	prev := c.ResponseTime
	if prev == 0 {
		prev = DefaultResponseTime
	}
	c.ResponseTime = ewma(prev, ms, responseTimePeriod)
	return nil
}

// Seen marks the contact as observed at time now and refreshes its
// endpoint details.
func (c *Contact) Seen(now time.Time, address string, port int) {
	c.LastSeen = now
	if address != "" {
		c.Address = address
	}
	if port != 0 {
		c.Port = port
	}
}
