package worker

import (
	"context"
	"errors"
	"sync"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

type recordingNotifier struct {
	mu    sync.Mutex
	calls []string
	fail  bool
}

func (n *recordingNotifier) Notify(_ context.Context, kind, machineID, number, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errors.New("delivery failed")
	}
	n.calls = append(n.calls, kind+":"+machineID+":"+number+":"+message)
	return nil
}

func delivery(key, body string) amqp.Delivery {
	return amqp.Delivery{RoutingKey: key, Body: []byte(body)}
}

func TestHandleDelivery(t *testing.T) {
	n := &recordingNotifier{}
	c := NewConsumer(nil, n, zerolog.Nop())
	ctx := context.Background()

	body := `{"machine_id":"1","number":"0189892155","message":"Mesin 1 dah start!"}`
	if err := c.handleDelivery(ctx, delivery("machine.started", body)); err != nil {
		t.Fatalf("started: %v", err)
	}
	if err := c.handleDelivery(ctx, delivery("machine.completed", body)); err != nil {
		t.Fatalf("completed: %v", err)
	}
	if len(n.calls) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(n.calls))
	}
	if n.calls[0] != "started:1:0189892155:Mesin 1 dah start!" {
		t.Fatalf("unexpected call %q", n.calls[0])
	}
	if n.calls[1] != "completed:1:0189892155:Mesin 1 dah start!" {
		t.Fatalf("unexpected call %q", n.calls[1])
	}
}

func TestHandleDeliveryDropsEmptyContact(t *testing.T) {
	n := &recordingNotifier{}
	c := NewConsumer(nil, n, zerolog.Nop())

	body := `{"machine_id":"1","number":"","message":"ignored"}`
	if err := c.handleDelivery(context.Background(), delivery("machine.reminder", body)); err != nil {
		t.Fatalf("empty contact must be dropped, not failed: %v", err)
	}
	if len(n.calls) != 0 {
		t.Fatalf("expected no notifications, got %d", len(n.calls))
	}
}

func TestHandleDeliverySkipsUnknownKey(t *testing.T) {
	n := &recordingNotifier{}
	c := NewConsumer(nil, n, zerolog.Nop())

	if err := c.handleDelivery(context.Background(), delivery("machine.unknown", `{}`)); err != nil {
		t.Fatalf("unknown key must be skipped, not failed: %v", err)
	}
	if len(n.calls) != 0 {
		t.Fatalf("expected no notifications, got %d", len(n.calls))
	}
}

func TestHandleDeliveryBadPayload(t *testing.T) {
	n := &recordingNotifier{}
	c := NewConsumer(nil, n, zerolog.Nop())

	if err := c.handleDelivery(context.Background(), delivery("machine.started", `not json`)); err == nil {
		t.Fatal("malformed payload must be reported so it reaches the DLQ")
	}
}

func TestHandleDeliveryNotifierError(t *testing.T) {
	n := &recordingNotifier{fail: true}
	c := NewConsumer(nil, n, zerolog.Nop())

	body := `{"machine_id":"1","number":"0189892155","message":"m"}`
	if err := c.handleDelivery(context.Background(), delivery("machine.started", body)); err == nil {
		t.Fatal("notifier failure must propagate for requeue")
	}
}
