package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"splitpay-api/internal/domain"
)

const billColumns = `id, bill_uuid, bill_number, bill_date, customer, items, grand_total, gst, status, notes, created_by, created_at, updated_at`

type BillRepository struct {
	db *sqlx.DB
}

func NewBillRepository(db *sqlx.DB) *BillRepository {
	return &BillRepository{db: db}
}

func (r *BillRepository) Create(ctx context.Context, b *domain.Bill) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO bills (`+billColumns+`)
		VALUES (:id, :bill_uuid, :bill_number, :bill_date, :customer, :items, :grand_total, :gst,
			:status, :notes, :created_by, :created_at, :updated_at)`, b)
	if err != nil {
		return fmt.Errorf("insert bill: %w", mapWriteError(err))
	}
	return nil
}

func (r *BillRepository) List(ctx context.Context) ([]domain.Bill, error) {
	bills := []domain.Bill{}
	if err := r.db.SelectContext(ctx, &bills, `SELECT `+billColumns+` FROM bills ORDER BY created_at DESC, id DESC`); err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	return bills, nil
}

func (r *BillRepository) GetByID(ctx context.Context, id string) (*domain.Bill, error) {
	var b domain.Bill
	err := r.db.GetContext(ctx, &b, `SELECT `+billColumns+` FROM bills WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "bill", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get bill: %w", err)
	}
	return &b, nil
}
