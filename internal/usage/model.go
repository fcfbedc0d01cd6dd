package usage

import (
	"time"

	"github.com/google/uuid"
)

// GenerationEvent matches the generation_events table schema. Events are
// append-only: never mutated, never deleted; expiry out of the quota
// window is computed, not enforced by deletion.
type GenerationEvent struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	ProjectID *uuid.UUID `json:"project_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Status is the quota view for one user at one instant. Degraded marks a
// result computed from the advisory cache because the event store was
// unreachable; such a result is for display only and never blocks an
// attempt.
type Status struct {
	HasReachedLimit bool       `json:"has_reached_limit"`
	Remaining       int        `json:"remaining"`
	ResetTime       *time.Time `json:"reset_time,omitempty"`
	Degraded        bool       `json:"degraded,omitempty"`
}

// ComputeStatus derives the quota status from the events inside the window.
// remaining = limit - count, clamped to [0, limit]; ResetTime is set only
// once the limit is reached and equals the oldest in-window event plus the
// window.
func ComputeStatus(events []GenerationEvent, now time.Time, limit int, window time.Duration) Status {
	cutoff := now.Add(-window)

	count := 0
	var oldest time.Time
	for _, ev := range events {
		if ev.CreatedAt.Before(cutoff) {
			continue
		}
		count++
		if oldest.IsZero() || ev.CreatedAt.Before(oldest) {
			oldest = ev.CreatedAt
		}
	}

	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}

	st := Status{
		HasReachedLimit: count >= limit,
		Remaining:       remaining,
	}
	if st.HasReachedLimit && !oldest.IsZero() {
		reset := oldest.Add(window)
		st.ResetTime = &reset
	}
	return st
}
