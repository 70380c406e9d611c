package notifier

import (
	"context"

	"github.com/you/smart-dobi/internal/events"
	"github.com/you/smart-dobi/pkg/mq"
)

// QueueNotifier hands delivery off to the notification worker via the
// message broker instead of calling the gateway inline.
type QueueNotifier struct {
	pub *mq.Publisher
}

func NewQueue(pub *mq.Publisher) *QueueNotifier {
	return &QueueNotifier{pub: pub}
}

func (q *QueueNotifier) Notify(ctx context.Context, kind, machineID, number, message string) error {
	return q.pub.PublishJSON(ctx, "machine."+kind, events.Notification{
		MachineID: machineID,
		Number:    number,
		Message:   message,
	})
}
