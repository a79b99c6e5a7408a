package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"splitpay-api/internal/domain"
)

type TransactionRepository struct {
	db *sqlx.DB
}

func NewTransactionRepository(db *sqlx.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, t *domain.NotificationTransaction) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO notification_transactions
			(id, package_name, title, message, username, amount, upi_id, type, event, created_at)
		VALUES
			(:id, :package_name, :title, :message, :username, :amount, :upi_id, :type, :event, :created_at)`, t)
	if err != nil {
		return fmt.Errorf("insert notification transaction: %w", err)
	}
	return nil
}
