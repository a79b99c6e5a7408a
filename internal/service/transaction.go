package service

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"splitpay-api/internal/domain"
)

const (
	defaultTransactionType  = "PAYMENT"
	defaultTransactionEvent = "recorded"
)

type TransactionStore interface {
	Create(ctx context.Context, t *domain.NotificationTransaction) error
}

type SaveTransactionInput struct {
	PackageName string          `json:"packageName"`
	Title       string          `json:"title"`
	Message     string          `json:"message"`
	Username    string          `json:"username" validate:"required"`
	Amount      decimal.Decimal `json:"amount" validate:"gt=0"`
	UpiID       string          `json:"upiId"`
	Type        string          `json:"type"`
	Event       string          `json:"event"`
}

type TransactionService struct {
	store TransactionStore
	now   func() time.Time
}

func NewTransactionService(store TransactionStore) *TransactionService {
	return &TransactionService{store: store, now: time.Now}
}

func (s *TransactionService) Save(ctx context.Context, in SaveTransactionInput) (*domain.NotificationTransaction, error) {
	if strings.TrimSpace(in.Username) == "" || !in.Amount.IsPositive() {
		return nil, &domain.ValidationError{Field: "body", Message: "Amount and username are required"}
	}
	if err := domain.ValidateAmount("amount", in.Amount); err != nil {
		return nil, err
	}

	t := &domain.NotificationTransaction{
		PackageName: in.PackageName,
		Title:       in.Title,
		Message:     in.Message,
		Username:    strings.TrimSpace(in.Username),
		Amount:      in.Amount,
		UpiID:       in.UpiID,
		Type:        in.Type,
		Event:       in.Event,
		CreatedAt:   s.now(),
	}
	if t.Type == "" {
		t.Type = defaultTransactionType
	}
	if t.Event == "" {
		t.Event = defaultTransactionEvent
	}

	if err := s.store.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}
