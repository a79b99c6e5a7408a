package clients

import (
	"context"

	"splitpay-api/internal/domain"
	ws "splitpay-api/internal/transport/websocket"
)

const notificationsChannel = "notifications"

// WebSocketClient mirrors push notifications to the recipient's open sockets.
type WebSocketClient struct {
	hub *ws.Hub
}

func NewWebSocketClient(hub *ws.Hub) *WebSocketClient {
	return &WebSocketClient{hub: hub}
}

// NotifyUser reports whether the message was queued for delivery.
func (c *WebSocketClient) NotifyUser(ctx context.Context, n domain.Notification) bool {
	if c == nil || c.hub == nil || c.hub.Online(n.RecipientUUID) == 0 {
		return false
	}

	return c.hub.Broadcast(n.RecipientUUID, &ws.Message{
		Type:    string(n.Type),
		Channel: notificationsChannel,
		Data: map[string]any{
			"heading": n.Heading,
			"content": n.Content,
			"data":    n.Data,
		},
	})
}
