package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/cartforge/cartforge/internal/config"
	"github.com/cartforge/cartforge/internal/port/database"
	"github.com/cartforge/cartforge/internal/port/messagequeue"
)

// Sweeper periodically scans for carts that crossed the abandonment
// threshold and emits carts.abandoned events for them. Abandonment is a
// derived state; the sweeper never mutates the carts it reports.
type Sweeper struct {
	store        database.Store
	queue        messagequeue.Queue
	logger       *slog.Logger
	abandonAfter time.Duration
	batch        int
	schedule     string
	cron         *cron.Cron
}

// NewSweeper creates a sweeper from the cart and sweep configuration.
func NewSweeper(store database.Store, queue messagequeue.Queue, logger *slog.Logger, carts config.Carts, sweep config.Sweep) *Sweeper {
	return &Sweeper{
		store:        store,
		queue:        queue,
		logger:       logger,
		abandonAfter: carts.AbandonAfter,
		batch:        sweep.Batch,
		schedule:     sweep.Schedule,
	}
}

// Start schedules the sweep. A zero abandonment threshold disables it.
func (s *Sweeper) Start(ctx context.Context) error {
	if s.abandonAfter <= 0 {
		s.logger.Info("cart sweeper disabled, no abandonment threshold")
		return nil
	}

	s.cron = cron.New()
	_, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.Sweep(ctx); err != nil {
			s.logger.Error("cart sweep failed", "error", err)
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("cart sweeper started", "schedule", s.schedule, "abandon_after", s.abandonAfter.String())
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// Sweep runs one pass: list carts untouched since the cutoff and publish an
// abandonment event per cart. Re-reporting across passes is acceptable;
// consumers treat the event as level, not edge.
func (s *Sweeper) Sweep(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-s.abandonAfter)
	stale, err := s.store.ListStaleCarts(ctx, cutoff, s.batch)
	if err != nil {
		return err
	}
	if len(stale) == 0 {
		return nil
	}

	now := time.Now().UTC()
	for i := range stale {
		c := &stale[i]
		payload := messagequeue.CartEventPayload{
			CartID:    c.ID,
			Tenant:    c.Tenant.String(),
			Customer:  c.Customer,
			ItemCount: len(c.Items),
			Subtotal:  c.Subtotal,
			Currency:  c.Currency,
			At:        now,
		}
		data, err := json.Marshal(payload)
		if err != nil {
			continue
		}
		if s.queue != nil {
			if err := s.queue.Publish(ctx, messagequeue.SubjectCartAbandoned, data); err != nil {
				s.logger.Warn("abandoned cart event publish failed", "cart", c.ID, "error", err)
			}
		}
	}

	s.logger.Info("cart sweep completed", "abandoned", len(stale))
	return nil
}
