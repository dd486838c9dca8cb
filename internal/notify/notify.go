// Package notify is the boundary to the external notification service.
// Delivery is fire-and-forget: a notification failure is logged and never
// fails or rolls back the state transition that produced it.
package notify

import (
	"context"
	"log"
	"strings"
)

// Notifier delivers a message to a set of recipients (worker/supervisor IDs).
type Notifier interface {
	Notify(ctx context.Context, recipients []string, subject, body string) error
}

// LogNotifier writes notifications to the process log. It stands in for the
// push/SMS gateway, which is outside this service.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, recipients []string, subject, body string) error {
	log.Printf("[notify] to=%s subject=%q body=%q", strings.Join(recipients, ","), subject, body)
	return nil
}

// Send dispatches without letting a delivery failure surface to the caller.
func Send(ctx context.Context, n Notifier, recipients []string, subject, body string) {
	if n == nil || len(recipients) == 0 {
		return
	}
	if err := n.Notify(ctx, recipients, subject, body); err != nil {
		log.Printf("[notify] delivery failed (ignored): %v", err)
	}
}
