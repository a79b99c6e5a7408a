package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"splitpay-api/internal/domain"
)

type memoryTransactions struct {
	saved []domain.NotificationTransaction
}

func (m *memoryTransactions) Create(_ context.Context, t *domain.NotificationTransaction) error {
	t.ID = "txn-1"
	m.saved = append(m.saved, *t)
	return nil
}

func TestTransactionService_SaveDefaults(t *testing.T) {
	store := &memoryTransactions{}
	svc := NewTransactionService(store)

	txn, err := svc.Save(context.Background(), SaveTransactionInput{
		Username: "alice",
		Amount:   decimal.NewFromInt(120),
		UpiID:    "alice@upi",
	})
	require.NoError(t, err)

	assert.Equal(t, "txn-1", txn.ID)
	assert.Equal(t, "PAYMENT", txn.Type)
	assert.Equal(t, "recorded", txn.Event)
	assert.Len(t, store.saved, 1)
}

func TestTransactionService_RequiresAmountAndUsername(t *testing.T) {
	svc := NewTransactionService(&memoryTransactions{})

	for _, in := range []SaveTransactionInput{
		{Amount: decimal.NewFromInt(1)},
		{Username: "alice"},
	} {
		_, err := svc.Save(context.Background(), in)
		var vErr *domain.ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, "Amount and username are required", vErr.Message)
	}
}

func TestTransactionService_RejectsSubCentAmount(t *testing.T) {
	store := &memoryTransactions{}
	svc := NewTransactionService(store)

	_, err := svc.Save(context.Background(), SaveTransactionInput{Username: "alice", Amount: decimal.RequireFromString("1.999")})
	var vErr *domain.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "amount", vErr.Field)
	assert.Empty(t, store.saved)
}
