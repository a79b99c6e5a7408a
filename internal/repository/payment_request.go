package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"splitpay-api/internal/domain"
)

const paymentRequestColumns = `
	id, sender_user_uuid, receiver_user_uuid, amount, currency, notes, status,
	transaction_id, payment_method, paid_at, mark_as_friend_credit, repayments,
	version, created_at, updated_at`

type PaymentRequestsFilter struct {
	ReceiverUUID *string
	// PartyUUID matches either side of the request.
	PartyUUID *string
	// Pair matches the two users in either direction.
	Pair            *[2]string
	ExcludeStatuses []domain.PaymentRequestStatus
	ExcludeID       *string
}

type PaymentRequestRepository struct {
	db *sqlx.DB
}

func NewPaymentRequestRepository(db *sqlx.DB) *PaymentRequestRepository {
	return &PaymentRequestRepository{db: db}
}

func (r *PaymentRequestRepository) Create(ctx context.Context, pr *domain.PaymentRequest) error {
	if pr.ID == "" {
		pr.ID = uuid.NewString()
	}
	if pr.Repayments == nil {
		pr.Repayments = domain.Repayments{}
	}
	pr.Version = 1

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO payment_requests (`+paymentRequestColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		pr.ID,
		pr.SenderUserUUID,
		pr.ReceiverUserUUID,
		pr.Amount,
		pr.Currency,
		pr.Notes,
		pr.Status,
		pr.TransactionID,
		pr.PaymentMethod,
		pr.PaidAt,
		pr.MarkAsFriendCredit,
		pr.Repayments,
		pr.Version,
		pr.CreatedAt,
		pr.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment request: %w", mapWriteError(err))
	}
	return nil
}

func (r *PaymentRequestRepository) GetByID(ctx context.Context, id string) (*domain.PaymentRequest, error) {
	var pr domain.PaymentRequest
	err := r.db.GetContext(ctx, &pr, `SELECT `+paymentRequestColumns+` FROM payment_requests WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "payment request", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get payment request: %w", err)
	}
	return &pr, nil
}

// Update writes pr when its version still matches the stored row and bumps
// the version. A stale version yields domain.ErrVersionConflict.
func (r *PaymentRequestRepository) Update(ctx context.Context, pr *domain.PaymentRequest) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE payment_requests SET
			amount = $3,
			currency = $4,
			notes = $5,
			status = $6,
			transaction_id = $7,
			payment_method = $8,
			paid_at = $9,
			mark_as_friend_credit = $10,
			repayments = $11,
			updated_at = $12,
			version = version + 1
		WHERE id = $1 AND version = $2`,
		pr.ID,
		pr.Version,
		pr.Amount,
		pr.Currency,
		pr.Notes,
		pr.Status,
		pr.TransactionID,
		pr.PaymentMethod,
		pr.PaidAt,
		pr.MarkAsFriendCredit,
		pr.Repayments,
		pr.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update payment request: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update payment request: %w", err)
	}
	if n == 0 {
		return domain.ErrVersionConflict
	}

	pr.Version++
	return nil
}

// List returns matching requests newest first; id breaks created_at ties.
func (r *PaymentRequestRepository) List(ctx context.Context, f PaymentRequestsFilter) ([]domain.PaymentRequest, error) {
	where := []string{"1=1"}
	args := []any{}
	i := 1

	if f.ReceiverUUID != nil {
		where = append(where, fmt.Sprintf("receiver_user_uuid = $%d", i))
		args = append(args, *f.ReceiverUUID)
		i++
	}

	if f.PartyUUID != nil {
		where = append(where, fmt.Sprintf("(sender_user_uuid = $%d OR receiver_user_uuid = $%d)", i, i))
		args = append(args, *f.PartyUUID)
		i++
	}

	if f.Pair != nil {
		where = append(where, fmt.Sprintf(
			"((sender_user_uuid = $%d AND receiver_user_uuid = $%d) OR (sender_user_uuid = $%d AND receiver_user_uuid = $%d))",
			i, i+1, i+1, i))
		args = append(args, f.Pair[0], f.Pair[1])
		i += 2
	}

	if len(f.ExcludeStatuses) > 0 {
		ph := make([]string, len(f.ExcludeStatuses))
		for j, s := range f.ExcludeStatuses {
			ph[j] = fmt.Sprintf("$%d", i)
			args = append(args, s)
			i++
		}
		where = append(where, "status NOT IN ("+strings.Join(ph, ", ")+")")
	}

	if f.ExcludeID != nil {
		where = append(where, fmt.Sprintf("id <> $%d", i))
		args = append(args, *f.ExcludeID)
		i++
	}

	query := `SELECT ` + paymentRequestColumns + ` FROM payment_requests WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY created_at DESC, id DESC`

	result := []domain.PaymentRequest{}
	if err := r.db.SelectContext(ctx, &result, query, args...); err != nil {
		return nil, fmt.Errorf("list payment requests: %w", err)
	}
	return result, nil
}
