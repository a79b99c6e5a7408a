package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type NotificationType string

const (
	NotifyPaymentRequest    NotificationType = "PAYMENT_REQUEST"
	NotifyPaymentReminder   NotificationType = "PAYMENT_REMINDER"
	NotifyPaymentReceipt    NotificationType = "PAYMENT_RECEIPT"
	NotifyPaymentDeclined   NotificationType = "PAYMENT_DECLINED"
	NotifyMessage           NotificationType = "MESSAGE"
	NotifyInvite            NotificationType = "INVITE"
	NotifyPartnerMotivation NotificationType = "PARTNER_MOTIVATION"
	NotifyAlert             NotificationType = "ALERT"
	NotifyBillCreated       NotificationType = "BILL_CREATED"
)

// Notification is a templated push addressed to one external user id.
type Notification struct {
	RecipientUUID string           `json:"recipientUUID"`
	Type          NotificationType `json:"type"`
	Heading       string           `json:"heading"`
	Content       string           `json:"content"`
	Data          map[string]any   `json:"data"`
}

// NotificationTransaction is a payment event captured from a device
// notification listener.
type NotificationTransaction struct {
	ID          string          `json:"id" db:"id"`
	PackageName string          `json:"packageName" db:"package_name"`
	Title       string          `json:"title" db:"title"`
	Message     string          `json:"message" db:"message"`
	Username    string          `json:"username" db:"username"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	UpiID       string          `json:"upiId" db:"upi_id"`
	Type        string          `json:"type" db:"type"`
	Event       string          `json:"event" db:"event"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
}
