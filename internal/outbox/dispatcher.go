package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sarthak7846/uptime-monitor/internal/events"
	"github.com/sarthak7846/uptime-monitor/internal/models"
	"github.com/sarthak7846/uptime-monitor/internal/notify"
)

type OutboxStore interface {
	PendingEvents(ctx context.Context, limit int) ([]models.NotificationEvent, error)
	MarkProcessed(ctx context.Context, id uint, at time.Time) error
}

type RuleStore interface {
	MatchingRules(ctx context.Context, userID uint, eventType events.Type, monitorID uint) ([]models.NotificationRule, error)
}

// Dispatcher polls the outbox on a fixed interval, independent of any
// monitor's probe cadence, and fans pending events out to matching delivery
// rules. The pipeline is at-least-once: a crash between delivery and
// mark-processed redelivers on the next poll.
type Dispatcher struct {
	outbox     OutboxStore
	rules      RuleStore
	deliverers map[string]notify.Deliverer // keyed by endpoint channel
	interval   time.Duration
	batchSize  int
	logger     zerolog.Logger
	now        func() time.Time
}

func NewDispatcher(outbox OutboxStore, rules RuleStore, deliverers map[string]notify.Deliverer, interval time.Duration, batchSize int, logger zerolog.Logger) *Dispatcher {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 10
	}
	return &Dispatcher{
		outbox:     outbox,
		rules:      rules,
		deliverers: deliverers,
		interval:   interval,
		batchSize:  batchSize,
		logger:     logger.With().Str("component", "outbox").Logger(),
		now:        time.Now,
	}
}

// Run polls until the context is canceled.
func (d *Dispatcher) Run(ctx context.Context) {
	d.logger.Info().Dur("interval", d.interval).Int("batch_size", d.batchSize).Msg("outbox dispatcher started")

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info().Msg("outbox dispatcher stopped")
			return
		case <-ticker.C:
			if err := d.ProcessBatch(ctx); err != nil {
				d.logger.Error().Err(err).Msg("outbox batch failed")
			}
		}
	}
}

// ProcessBatch handles one bounded batch of pending events, oldest first.
func (d *Dispatcher) ProcessBatch(ctx context.Context) error {
	rows, err := d.outbox.PendingEvents(ctx, d.batchSize)
	if err != nil {
		return fmt.Errorf("fetch pending events: %w", err)
	}

	for i := range rows {
		d.handleEvent(ctx, &rows[i])
	}
	return nil
}

func (d *Dispatcher) handleEvent(ctx context.Context, row *models.NotificationEvent) {
	event, err := events.Unmarshal(row.Payload)
	if err != nil {
		// A payload that cannot decode will never succeed; mark it so it
		// does not poison every future batch.
		d.logger.Error().Uint("outbox_id", row.ID).Err(err).Msg("dropping undecodable outbox event")
		d.markProcessed(ctx, row)
		return
	}

	rules, err := d.rules.MatchingRules(ctx, event.UserID, event.Type, event.MonitorID)
	if err != nil {
		// Leave the row PENDING; it is retried on the next poll.
		d.logger.Error().Uint("outbox_id", row.ID).Err(err).Msg("rule lookup failed")
		return
	}

	subject, body := Compose(event)

	for _, rule := range rules {
		deliverer, ok := d.deliverers[rule.Endpoint.Channel]
		if !ok {
			d.logger.Warn().
				Uint("rule_id", rule.ID).
				Str("channel", rule.Endpoint.Channel).
				Msg("no deliverer registered for channel")
			continue
		}

		if err := deliverer.Deliver(ctx, rule.Endpoint.Address, subject, body); err != nil {
			// One rule's failure must not block the others or the event.
			d.logger.Error().
				Uint("outbox_id", row.ID).
				Uint("rule_id", rule.ID).
				Str("channel", rule.Endpoint.Channel).
				Err(err).
				Msg("delivery failed")
			continue
		}

		d.logger.Info().
			Uint("outbox_id", row.ID).
			Uint("rule_id", rule.ID).
			Str("channel", rule.Endpoint.Channel).
			Str("type", string(event.Type)).
			Msg("notification delivered")
	}

	// Marked once per event, after every matching rule was attempted.
	d.markProcessed(ctx, row)
}

func (d *Dispatcher) markProcessed(ctx context.Context, row *models.NotificationEvent) {
	if err := d.outbox.MarkProcessed(ctx, row.ID, d.now()); err != nil {
		d.logger.Error().Uint("outbox_id", row.ID).Err(err).Msg("failed to mark event processed")
	}
}
