package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"splitpay-api/internal/domain"
)

var prColumns = []string{
	"id", "sender_user_uuid", "receiver_user_uuid", "amount", "currency", "notes", "status",
	"transaction_id", "payment_method", "paid_at", "mark_as_friend_credit", "repayments",
	"version", "created_at", "updated_at",
}

func TestPaymentRequestRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPaymentRequestRepository(db)
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	pr := &domain.PaymentRequest{
		SenderUserUUID:   "S",
		ReceiverUserUUID: "R",
		Amount:           decimal.NewFromInt(50),
		Currency:         "INR",
		Status:           domain.StatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	mock.ExpectExec("^INSERT INTO payment_requests").
		WithArgs(sqlmock.AnyArg(), "S", "R", sqlmock.AnyArg(), "INR", "", "PENDING",
			nil, nil, nil, false, []byte("[]"), int64(1), now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), pr))
	assert.NotEmpty(t, pr.ID)
	assert.Equal(t, int64(1), pr.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRequestRepository_GetByID(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		name       string
		mockSetup  func(mock sqlmock.Sqlmock)
		assertFunc func(t *testing.T, pr *domain.PaymentRequest, err error)
	}{
		{
			name: "Success",
			mockSetup: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(prColumns).AddRow(
					"pr-1", "S", "R", "100.00", "INR", "dinner", "PENDING",
					nil, nil, nil, false,
					[]byte(`[{"amount":"40","repaidAt":"2025-05-02T10:00:00Z","balanceRemaining":"60","notes":""}]`),
					int64(2), now, now,
				)
				mock.ExpectQuery("^SELECT (.+) FROM payment_requests WHERE id = \\$1").
					WithArgs("pr-1").
					WillReturnRows(rows)
			},
			assertFunc: func(t *testing.T, pr *domain.PaymentRequest, err error) {
				require.NoError(t, err)
				assert.True(t, pr.Amount.Equal(decimal.NewFromInt(100)))
				assert.Equal(t, domain.StatusPending, pr.Status)
				require.Len(t, pr.Repayments, 1)
				assert.True(t, pr.Balance().Equal(decimal.NewFromInt(60)))
				assert.Equal(t, int64(2), pr.Version)
			},
		},
		{
			name: "Not Found",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("^SELECT (.+) FROM payment_requests").
					WithArgs("pr-1").
					WillReturnRows(sqlmock.NewRows(prColumns))
			},
			assertFunc: func(t *testing.T, pr *domain.PaymentRequest, err error) {
				assert.Nil(t, pr)
				assert.True(t, errors.Is(err, domain.ErrNotFound))
				assert.Equal(t, "No payment request found with ID: pr-1", err.Error())
			},
		},
		{
			name: "Database Error",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("^SELECT (.+) FROM payment_requests").
					WithArgs("pr-1").
					WillReturnError(errors.New("connection reset"))
			},
			assertFunc: func(t *testing.T, pr *domain.PaymentRequest, err error) {
				assert.Nil(t, pr)
				assert.ErrorContains(t, err, "connection reset")
				assert.False(t, errors.Is(err, domain.ErrNotFound))
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			tc.mockSetup(mock)

			pr, err := NewPaymentRequestRepository(db).GetByID(context.Background(), "pr-1")

			tc.assertFunc(t, pr, err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPaymentRequestRepository_UpdateCompareAndSwap(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPaymentRequestRepository(db)

	pr := &domain.PaymentRequest{ID: "pr-1", Amount: decimal.NewFromInt(10), Status: domain.StatusPaid, Version: 3}

	mock.ExpectExec("^UPDATE payment_requests SET").
		WithArgs(append([]driver.Value{"pr-1", int64(3)}, anyArgs(10)...)...).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Update(context.Background(), pr))
	assert.Equal(t, int64(4), pr.Version)

	mock.ExpectExec("^UPDATE payment_requests SET").
		WithArgs(append([]driver.Value{"pr-1", int64(4)}, anyArgs(10)...)...).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.Update(context.Background(), pr)
	assert.ErrorIs(t, err, domain.ErrVersionConflict)
	assert.Equal(t, int64(4), pr.Version)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRequestRepository_ListBuildsFilter(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPaymentRequestRepository(db)

	receiver := "R"
	mock.ExpectQuery(`WHERE 1=1 AND receiver_user_uuid = \$1 AND status NOT IN \(\$2, \$3\) ORDER BY created_at DESC, id DESC`).
		WithArgs("R", "DECLINED", "PAID").
		WillReturnRows(sqlmock.NewRows(prColumns))

	got, err := repo.List(context.Background(), PaymentRequestsFilter{
		ReceiverUUID:    &receiver,
		ExcludeStatuses: []domain.PaymentRequestStatus{domain.StatusDeclined, domain.StatusPaid},
	})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	self := "pr-9"
	mock.ExpectQuery(`\(\(sender_user_uuid = \$1 AND receiver_user_uuid = \$2\) OR \(sender_user_uuid = \$2 AND receiver_user_uuid = \$1\)\) AND status NOT IN \(\$3\) AND id <> \$4`).
		WithArgs("A", "B", "DECLINED", "pr-9").
		WillReturnRows(sqlmock.NewRows(prColumns))

	_, err = repo.List(context.Background(), PaymentRequestsFilter{
		Pair:            &[2]string{"A", "B"},
		ExcludeStatuses: []domain.PaymentRequestStatus{domain.StatusDeclined},
		ExcludeID:       &self,
	})
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func anyArgs(n int) []driver.Value {
	out := make([]driver.Value, n)
	for i := range out {
		out[i] = sqlmock.AnyArg()
	}
	return out
}
