package worker

import (
	"context"
	"strings"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/you/smart-dobi/internal/events"
	"github.com/you/smart-dobi/internal/notifier"
	"github.com/you/smart-dobi/pkg/mq"
)

// Consumer drains machine notification events off the queue and pushes
// them out through the configured notifier. Failed deliveries are
// nacked and requeued; poison messages end up on the DLQ.
type Consumer struct {
	consumer *mq.Consumer
	notifier notifier.Notifier
	log      zerolog.Logger
}

func NewConsumer(c *mq.Consumer, n notifier.Notifier, log zerolog.Logger) *Consumer {
	return &Consumer{consumer: c, notifier: n, log: log}
}

func (c *Consumer) Run(ctx context.Context) error {
	msgs, err := c.consumer.Deliveries(ctx, "notification-worker")
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			if err := c.handleDelivery(ctx, d); err != nil {
				c.log.Warn().Err(err).Str("key", d.RoutingKey).Msg("handle delivery failed, nack and requeue")
				_ = d.Nack(false, true)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (c *Consumer) handleDelivery(ctx context.Context, d amqp.Delivery) error {
	switch d.RoutingKey {
	case events.RKMachineStarted, events.RKMachineCompleted, events.RKMachineReminder:
		ev, err := events.MustUnmarshal[events.Notification](d.Body)
		if err != nil {
			return err
		}
		if ev.Number == "" {
			c.log.Debug().Str("key", d.RoutingKey).Msg("no contact on event, dropping")
			return nil
		}
		kind := strings.TrimPrefix(d.RoutingKey, "machine.")
		return c.notifier.Notify(ctx, kind, ev.MachineID, ev.Number, ev.Message)
	default:
		c.log.Info().Str("key", d.RoutingKey).Msg("skip unknown routing key")
		return nil
	}
}
