package clients

import (
	"context"
	"log/slog"

	"splitpay-api/internal/domain"
)

type Pusher interface {
	Enabled() bool
	Push(ctx context.Context, n domain.Notification) (map[string]any, error)
}

type RealtimeNotifier interface {
	NotifyUser(ctx context.Context, n domain.Notification) bool
}

type EventPublisher interface {
	Publish(subject string, message any) error
}

type DeliveryResult struct {
	Skipped  bool           `json:"skipped,omitempty"`
	Push     map[string]any `json:"push,omitempty"`
	Realtime bool           `json:"realtime"`
}

// Dispatcher delivers a notification over push, then copies it to the
// realtime hub and the event bus. Only the push outcome is reported as an
// error; the other channels are best effort.
type Dispatcher struct {
	push     Pusher
	realtime RealtimeNotifier
	events   EventPublisher
}

// NewDispatcher accepts nil for any channel that is not configured.
func NewDispatcher(push Pusher, realtime RealtimeNotifier, events EventPublisher) *Dispatcher {
	return &Dispatcher{push: push, realtime: realtime, events: events}
}

func NotificationSubject(t domain.NotificationType) string {
	return "notifications." + string(t)
}

func (d *Dispatcher) Send(ctx context.Context, n domain.Notification) (DeliveryResult, error) {
	var res DeliveryResult

	if d.realtime != nil {
		res.Realtime = d.realtime.NotifyUser(ctx, n)
	}

	if d.events != nil {
		if err := d.events.Publish(NotificationSubject(n.Type), n); err != nil {
			slog.Warn("notification event not published", "type", n.Type, "error", err)
		}
	}

	if d.push == nil || !d.push.Enabled() {
		res.Skipped = true
		return res, nil
	}

	out, err := d.push.Push(ctx, n)
	if err != nil {
		return res, err
	}
	res.Push = out
	return res, nil
}
