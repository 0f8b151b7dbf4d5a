package outbox

import (
	"context"
	"time"

	"github.com/soukplace/soukplace-backend/pkg/config"
	"github.com/soukplace/soukplace-backend/pkg/db/models"
	"github.com/soukplace/soukplace-backend/pkg/logger"
)

// Handler consumes a single outbox event. A non-nil error leaves the event
// unpublished with its attempt count bumped so the next poll retries it.
type Handler interface {
	Handle(ctx context.Context, event models.OutboxEvent) error
}

// Dispatcher polls unpublished outbox rows and feeds them to a handler.
type Dispatcher struct {
	repo    *Repository
	handler Handler
	logg    *logger.Logger
	cfg     config.OutboxConfig
}

func NewDispatcher(repo *Repository, handler Handler, logg *logger.Logger, cfg config.OutboxConfig) *Dispatcher {
	return &Dispatcher{repo: repo, handler: handler, logg: logg, cfg: cfg}
}

// Run polls until the context is canceled.
func (d *Dispatcher) Run(ctx context.Context) error {
	interval := time.Duration(d.cfg.PollIntervalMS) * time.Millisecond
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := d.DispatchOnce(ctx); err != nil {
				d.logg.Error(ctx, "outbox dispatch cycle failed", err)
			}
		}
	}
}

// DispatchOnce drains up to one batch of unpublished events.
func (d *Dispatcher) DispatchOnce(ctx context.Context) error {
	rows, err := d.repo.FetchUnpublished(d.cfg.BatchSize, d.cfg.MaxAttempts)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if err := d.handler.Handle(ctx, row); err != nil {
			logCtx := d.logg.WithField(ctx, "event_id", row.ID.String())
			d.logg.Warn(logCtx, "outbox event handling failed")
			if markErr := d.repo.MarkFailed(row.ID, err); markErr != nil {
				return markErr
			}
			continue
		}
		if err := d.repo.MarkPublished(row.ID); err != nil {
			return err
		}
	}
	return nil
}
