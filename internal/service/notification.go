package service

import (
	"context"
	"fmt"
	"log/slog"
	"maps"

	"github.com/shopspring/decimal"

	"splitpay-api/internal/clients"
	"splitpay-api/internal/domain"
)

type NotificationSender interface {
	Send(ctx context.Context, n domain.Notification) (clients.DeliveryResult, error)
}

type NotificationParams struct {
	Amount   *decimal.Decimal
	Currency string
	Notes    string
	// Extra is merged into the push data payload.
	Extra map[string]any
}

// BuildNotification renders the push addressed to `to` about an action taken
// by `from`.
func BuildNotification(t domain.NotificationType, from, to domain.Profile, p NotificationParams) domain.Notification {
	currency := p.Currency
	if currency == "" {
		currency = domain.DefaultCurrency
	}

	data := map[string]any{
		"senderUserUUID":   from.UserUUID,
		"receiverUserUUID": to.UserUUID,
		"type":             string(t),
		"amount":           nil,
		"currency":         currency,
		"notes":            nil,
	}
	if p.Amount != nil {
		data["amount"] = p.Amount.String()
	}
	if p.Notes != "" {
		data["notes"] = p.Notes
	}

	amount := ""
	if p.Amount != nil {
		amount = formatRupees(*p.Amount)
	}
	withNote := func(s string) string {
		if p.Notes != "" {
			return s + " Note: " + p.Notes
		}
		return s
	}

	n := domain.Notification{
		RecipientUUID: to.UserUUID,
		Type:          t,
		Heading:       "New Notification",
	}

	switch t {
	case domain.NotifyPaymentRequest:
		n.Heading = "Payment Request 💰"
		n.Content = withNote(fmt.Sprintf("%s has requested a payment of %s.", from.Name, amount))
		data["paymentType"] = "REQUEST"

	case domain.NotifyPaymentReminder:
		n.Heading = "Payment Reminder ⏰"
		if p.Amount != nil {
			n.Content = fmt.Sprintf("Reminder: You still owe %s to %s.", amount, from.Name)
		} else {
			n.Content = fmt.Sprintf("Reminder: You have a pending payment to %s.", from.Name)
		}
		n.Content = withNote(n.Content)
		data["paymentType"] = "REMINDER"

	case domain.NotifyPaymentReceipt:
		n.Heading = "Payment Received ✅"
		n.Content = withNote(fmt.Sprintf("Your payment of %s to %s was successful.", amount, from.Name))
		data["paymentType"] = "RECEIPT"

	case domain.NotifyPaymentDeclined:
		n.Heading = "Payment Request Declined"
		n.Content = fmt.Sprintf("%s declined your payment request of %s.", from.Name, amount)
		data["paymentType"] = "DECLINED"

	case domain.NotifyMessage:
		n.Heading = "New message from " + from.Name
		n.Content = p.Notes
		if n.Content == "" {
			n.Content = from.Name + " sent you a message."
		}

	case domain.NotifyInvite:
		n.Heading = "You have a new invite 🎉"
		n.Content = from.Name + " invited you to connect."

	case domain.NotifyPartnerMotivation:
		n.Heading = "Stronger Together 💼"
		n.Content = fmt.Sprintf("Great partnerships create great success, %s. From %s", to.Name, from.Name)

	case domain.NotifyAlert:
		n.Heading = "Important Alert ⚡"
		n.Content = withNote(from.Name + " sent you an urgent update.")

	case domain.NotifyBillCreated:
		n.Heading = "New Bill Created"
		n.Content = fmt.Sprintf("Hi %s, your bill %v is ready!", to.Name, p.Extra["billNumber"])

	default:
		n.Content = withNote(fmt.Sprintf("Hi %s, you got a new notification from %s.", to.Name, from.Name))
	}

	maps.Copy(data, p.Extra)
	n.Data = data
	return n
}

// DeliveryError reports a push the provider refused or could not take.
type DeliveryError struct {
	Err error
}

func (e *DeliveryError) Error() string { return e.Err.Error() }

func (e *DeliveryError) Unwrap() error { return e.Err }

type UserResolver interface {
	Resolve(ctx context.Context, userUUID string) (domain.Profile, error)
}

type PaymentRequestCreator interface {
	Create(ctx context.Context, in CreatePaymentRequestInput) (*domain.PaymentRequest, error)
}

type SendBetweenInput struct {
	SenderUserUUID   string                  `json:"senderUserUUID" validate:"required"`
	ReceiverUserUUID string                  `json:"receiverUserUUID" validate:"required"`
	Type             domain.NotificationType `json:"type" validate:"required"`
	Amount           *decimal.Decimal        `json:"amount"`
	Currency         string                  `json:"currency"`
	Notes            string                  `json:"notes"`
}

type SendBetweenResult struct {
	Sender         domain.Profile         `json:"sender"`
	Receiver       domain.Profile         `json:"receiver"`
	PaymentRequest *domain.PaymentRequest `json:"paymentRequest"`
	Payload        domain.Notification    `json:"payload"`
	Delivery       clients.DeliveryResult `json:"delivery"`
}

type NotificationService struct {
	users    UserResolver
	ledger   PaymentRequestCreator
	notifier NotificationSender
}

func NewNotificationService(users UserResolver, ledger PaymentRequestCreator, notifier NotificationSender) *NotificationService {
	return &NotificationService{users: users, ledger: ledger, notifier: notifier}
}

// SendBetween pushes a templated notification from one user to another. A
// PAYMENT_REQUEST also records the request, and that record stays even when
// the push fails.
func (s *NotificationService) SendBetween(ctx context.Context, in SendBetweenInput) (*SendBetweenResult, error) {
	if in.SenderUserUUID == "" || in.ReceiverUserUUID == "" || in.Type == "" {
		return nil, &domain.ValidationError{Field: "body", Message: "senderUserUUID, receiverUserUUID and type are required"}
	}

	receiver, err := s.users.Resolve(ctx, in.ReceiverUserUUID)
	if err != nil {
		return nil, err
	}
	sender, err := s.users.Resolve(ctx, in.SenderUserUUID)
	if err != nil {
		return nil, err
	}

	res := &SendBetweenResult{Sender: sender, Receiver: receiver}
	params := NotificationParams{Amount: in.Amount, Currency: in.Currency, Notes: in.Notes}

	if in.Type == domain.NotifyPaymentRequest {
		if in.Amount == nil || !in.Amount.IsPositive() {
			return nil, &domain.ValidationError{Field: "amount", Message: "Amount must be provided when type is PAYMENT_REQUEST"}
		}
		pr, err := s.ledger.Create(ctx, CreatePaymentRequestInput{
			SenderUserUUID:   in.SenderUserUUID,
			ReceiverUserUUID: in.ReceiverUserUUID,
			Amount:           *in.Amount,
			Currency:         in.Currency,
			Notes:            in.Notes,
			Silent:           true,
		})
		if err != nil {
			return nil, err
		}
		res.PaymentRequest = pr
		params.Extra = map[string]any{"paymentRequestId": pr.ID}
	} else {
		params.Extra = map[string]any{"paymentRequestId": nil}
	}

	res.Payload = BuildNotification(in.Type, sender, receiver, params)

	delivery, err := s.notifier.Send(ctx, res.Payload)
	if err != nil {
		slog.Warn("send-between push failed", "type", in.Type, "receiver", in.ReceiverUserUUID, "error", err)
		return res, &DeliveryError{Err: err}
	}
	res.Delivery = delivery
	return res, nil
}
