package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"splitpay-api/internal/domain"
)

var billCols = []string{"id", "bill_uuid", "bill_number", "bill_date", "customer", "items", "grand_total", "gst", "status", "notes", "created_by", "created_at", "updated_at"}

func TestBillRepository_CreateAndGet(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBillRepository(db)
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectExec("^INSERT INTO bills").WillReturnResult(sqlmock.NewResult(0, 1))

	b := &domain.Bill{
		BillUUID:   "B1",
		BillNumber: "INV-1",
		BillDate:   now,
		Customer:   domain.Customer{Name: "Kiran", Phone: "98765"},
		Items:      domain.BillItems{{Name: "Rice", Quantity: decimal.NewFromInt(2), Price: decimal.NewFromInt(30)}},
		Status:     domain.BillPending,
	}
	b.ComputeTotals()
	require.NoError(t, repo.Create(context.Background(), b))
	assert.NotEmpty(t, b.ID)

	mock.ExpectQuery("^SELECT (.+) FROM bills WHERE id = \\$1").
		WithArgs(b.ID).
		WillReturnRows(sqlmock.NewRows(billCols).AddRow(
			b.ID, "B1", "INV-1", now,
			[]byte(`{"name":"Kiran","phone":"98765"}`),
			[]byte(`[{"name":"Rice","quantity":"2","unit":"","price":"30","total":"60"}]`),
			"60", "0", "PENDING", "", nil, now, now,
		))

	got, err := repo.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kiran", got.Customer.Name)
	require.Len(t, got.Items, 1)
	assert.True(t, got.GrandTotal.Equal(decimal.NewFromInt(60)))
	assert.Nil(t, got.CreatedBy)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBillRepository_GetMissing(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("^SELECT (.+) FROM bills").WithArgs("x").WillReturnRows(sqlmock.NewRows(billCols))

	_, err := NewBillRepository(db).GetByID(context.Background(), "x")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMapWriteError_PassesThroughOtherErrors(t *testing.T) {
	plain := errors.New("timeout")
	assert.Same(t, plain, mapWriteError(plain))
}
