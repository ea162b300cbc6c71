package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"staffdesk/internal/apperr"
	"staffdesk/internal/logger"
	"staffdesk/internal/metrics"
	"staffdesk/internal/models"
)

const (
	defaultDeliveryAttempts = 3
	defaultDeliveryBackoff  = 50 * time.Millisecond
)

// Dispatcher turns committed state changes into notification rows and
// pushes them to live connections. A failed delivery is reported but never
// undoes the change that produced it.
type Dispatcher struct {
	Notifications NotificationStore
	Cache         UnreadCache
	Publisher     Publisher
	Attempts      int
	Backoff       time.Duration
}

func NewDispatcher(notifications NotificationStore, cache UnreadCache, publisher Publisher) *Dispatcher {
	if cache == nil {
		cache = noopCache{}
	}
	if publisher == nil {
		publisher = noopPublisher{}
	}
	return &Dispatcher{
		Notifications: notifications,
		Cache:         cache,
		Publisher:     publisher,
		Attempts:      defaultDeliveryAttempts,
		Backoff:       defaultDeliveryBackoff,
	}
}

// Deliver persists every event, retrying transient failures with
// exponential backoff. It returns the joined errors of events that could
// not be stored; the rest are still delivered.
func (d *Dispatcher) Deliver(ctx context.Context, events []models.NotificationEvent) error {
	if len(events) == 0 {
		return nil
	}
	// The originating request may already be finished.
	ctx = context.WithoutCancel(ctx)
	l := logger.FromContext(ctx)

	var errs []error
	for _, ev := range events {
		n := &models.Notification{
			AccountID: ev.AccountID,
			TaskID:    ev.TaskID,
			Title:     ev.Title,
			Message:   ev.Message,
		}
		if err := d.persist(ctx, n); err != nil {
			metrics.NotificationDeliveries.WithLabelValues("failed").Inc()
			l.Error().Err(err).Int("account_id", ev.AccountID).Str("title", ev.Title).Msg("notification delivery failed")
			errs = append(errs, fmt.Errorf("notify account %d: %w", ev.AccountID, err))
			continue
		}

		metrics.NotificationDeliveries.WithLabelValues("delivered").Inc()
		d.Cache.InvalidateUnread(ctx, n.AccountID)
		d.Publisher.Publish(n.AccountID, n)
	}

	return errors.Join(errs...)
}

func (d *Dispatcher) persist(ctx context.Context, n *models.Notification) error {
	attempts := d.Attempts
	if attempts < 1 {
		attempts = 1
	}
	backoff := d.Backoff

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = d.Notifications.Create(ctx, n); err == nil {
			return nil
		}
		// Only unclassified errors (driver, network) are worth retrying.
		if apperr.KindOf(err) != apperr.KindInternal || attempt == attempts {
			break
		}
		metrics.NotificationRetries.Inc()
		l := logger.FromContext(ctx)
		l.Warn().Err(err).Int("attempt", attempt).Int("account_id", n.AccountID).Msg("retrying notification")
		time.Sleep(backoff)
		backoff *= 2
	}
	return err
}
