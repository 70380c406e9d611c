package events

import (
	"encoding/json"
	"fmt"
)

// Routing keys for machine lifecycle notifications.
const (
	RKMachineStarted   = "machine.started"
	RKMachineCompleted = "machine.completed"
	RKMachineReminder  = "machine.reminder"
)

// Notification kinds as used by the engine; the queue notifier maps them
// onto routing keys ("machine." + kind).
const (
	KindStarted   = "started"
	KindCompleted = "completed"
	KindReminder  = "reminder"
)

// Notification carries everything the worker needs to deliver a message.
type Notification struct {
	MachineID string `json:"machine_id"`
	Number    string `json:"number"`
	Message   string `json:"message"`
}

func MustUnmarshal[T any](b []byte) (T, error) {
	var t T
	if err := json.Unmarshal(b, &t); err != nil {
		var zero T
		return zero, fmt.Errorf("decode payload failed: %w", err)
	}
	return t, nil
}
