package models

import "time"

// Rolling window durations for bandwidth accounting. The month window
// is a fixed 30 days, matching billing periods rather than calendar
// months.
const (
	HourWindow  = time.Hour
	DayWindow   = 24 * time.Hour
	MonthWindow = 30 * 24 * time.Hour
)

// TransferWindow tracks bytes accumulated since the window start. A
// window whose duration has elapsed is logically empty until the next
// record resets it; the stored state is only mutated on record.
type TransferWindow struct {
	WindowStart time.Time `db:"window_start" json:"window_start"`
	Accumulated int64     `db:"accumulated" json:"accumulated"`
}

// record adds bytes to the window, starting a fresh window if the
// previous one has elapsed. The triggering observation seeds the new
// window.
func (w *TransferWindow) record(bytes int64, now time.Time, duration time.Duration) {
	if w.WindowStart.IsZero() || now.Sub(w.WindowStart) >= duration {
		w.WindowStart = now
		w.Accumulated = bytes
		return
	}
	w.Accumulated += bytes
}

// effectiveAt returns the bytes counted against the window as of now,
// treating an elapsed window as zero without mutating stored state.
func (w *TransferWindow) effectiveAt(now time.Time, duration time.Duration) int64 {
	if w.WindowStart.IsZero() || now.Sub(w.WindowStart) >= duration {
		return 0
	}
	return w.Accumulated
}

// TransferCounter tracks one direction of transfer (upload or
// download) across three rolling windows.
type TransferCounter struct {
	Hour  TransferWindow `json:"hour"`
	Day   TransferWindow `json:"day"`
	Month TransferWindow `json:"month"`
}

// Record adds bytes to all three windows as one logical update
func (c *TransferCounter) Record(bytes int64, now time.Time) {
	c.Hour.record(bytes, now, HourWindow)
	c.Day.record(bytes, now, DayWindow)
	c.Month.record(bytes, now, MonthWindow)
}

// TransferLimits holds the per-window byte ceilings for a tier
type TransferLimits struct {
	HourBytes  int64
	DayBytes   int64
	MonthBytes int64
}

// Exceeds reports whether any window has reached its limit as of now.
// Elapsed windows count as empty.
func (c *TransferCounter) Exceeds(limits TransferLimits, now time.Time) bool {
	return c.Hour.effectiveAt(now, HourWindow) >= limits.HourBytes ||
		c.Day.effectiveAt(now, DayWindow) >= limits.DayBytes ||
		c.Month.effectiveAt(now, MonthWindow) >= limits.MonthBytes
}
