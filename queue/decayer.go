// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package queue

import (
	"context"
	"log/slog"
	"math/rand"
	"time"
)

// Decayer periodically drains every stand's line in the background so
// counters stay fresh even when nobody reads them.
type Decayer struct {
	store    *Store
	interval time.Duration
}

func NewDecayer(store *Store, interval time.Duration) *Decayer {
	return &Decayer{store: store, interval: interval}
}

// Run ticks until ctx is cancelled
func (d *Decayer) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	slog.Info("queue decayer started", "interval", d.interval.String())
	for {
		select {
		case <-ctx.Done():
			slog.Info("queue decayer stopped")
			return
		case <-ticker.C:
			served, err := d.store.DecayAll(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				slog.Error("queue decay failed", "error", err)
				continue
			}
			if served > 0 {
				slog.Debug("queue decay", "served", served)
			}
		}
	}
}

// SeedRandomQueues sets every stand's line to a random length in
// [0, min(max, capacity)], like a fresh event with people already waiting.
func SeedRandomQueues(ctx context.Context, store *Store, max int, rng *rand.Rand) (map[string]int, error) {
	stands, err := store.ListStands(ctx, "")
	if err != nil {
		return nil, err
	}

	lengths := make(map[string]int, len(stands))
	for _, st := range stands {
		limit := max
		if st.MaxCapacity < limit {
			limit = st.MaxCapacity
		}
		n := 0
		if limit > 0 {
			n = rng.Intn(limit + 1)
		}
		updated, err := store.SetQueueLength(ctx, st.ID, n)
		if err != nil {
			return nil, err
		}
		lengths[st.ID] = updated.QueueCounter
	}

	slog.Info("queues seeded", "stands", len(stands))
	return lengths, nil
}
