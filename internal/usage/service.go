package usage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/taskweave/taskweave/internal/config"
)

// Ledger computes quota status from the durable event store and keeps the
// advisory cache in sync. The store is the sole source of truth; the cache
// is a rebuildable projection.
type Ledger struct {
	store Store
	cache *Cache
	cfg   config.QuotaConfig
	now   func() time.Time
}

// NewLedger creates a new usage Ledger.
func NewLedger(store Store, cache *Cache, cfg config.QuotaConfig) *Ledger {
	return &Ledger{
		store: store,
		cache: cache,
		cfg:   cfg,
		now:   time.Now,
	}
}

// Check returns the user's current quota status. On a store failure it
// degrades to the last cached status rather than blocking the attempt;
// the durable write at Record time remains the enforceable action.
func (l *Ledger) Check(ctx context.Context, userID uuid.UUID) (Status, error) {
	now := l.now()

	events, err := l.store.ListEventsSince(ctx, userID, now.Add(-l.cfg.Window))
	if err != nil {
		slog.Warn("usage: event store unreachable, degrading to cache", "error", err, "user_id", userID)
		return l.degradedStatus(ctx, userID), nil
	}

	st := ComputeStatus(events, now, l.cfg.WeeklyLimit, l.cfg.Window)

	// Refresh-after-authoritative-read. Cache failures never fail a check.
	if l.cache != nil {
		if err := l.cache.Put(ctx, userID, st); err != nil {
			slog.Warn("usage: failed to refresh advisory cache", "error", err, "user_id", userID)
		}
	}

	return st, nil
}

func (l *Ledger) degradedStatus(ctx context.Context, userID uuid.UUID) Status {
	if l.cache != nil {
		st, ok, err := l.cache.Get(ctx, userID)
		if err != nil {
			slog.Warn("usage: advisory cache read failed", "error", err, "user_id", userID)
		} else if ok {
			st.Degraded = true
			return st
		}
	}
	// Nothing cached either: report full remaining so the attempt is still
	// permitted; Record against the store is what actually enforces.
	return Status{Remaining: l.cfg.WeeklyLimit, Degraded: true}
}

// Record appends a generation event to the durable store, then mirrors it
// into the advisory cache. A cache-mirror failure is logged and swallowed:
// the durable write already succeeded and must not be reported as failed.
func (l *Ledger) Record(ctx context.Context, userID uuid.UUID, projectID *uuid.UUID) error {
	now := l.now()

	ev := &GenerationEvent{
		UserID:    userID,
		ProjectID: projectID,
		CreatedAt: now.UTC(),
	}
	if err := l.store.InsertEvent(ctx, ev); err != nil {
		return fmt.Errorf("recording generation event: %w", err)
	}

	if l.cache != nil {
		if err := l.cache.RecordEvent(ctx, userID, l.cfg.WeeklyLimit, l.cfg.Window, now); err != nil {
			slog.Warn("usage: failed to mirror event into advisory cache", "error", err, "user_id", userID)
		}
	}

	return nil
}
