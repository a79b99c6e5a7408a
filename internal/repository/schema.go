package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"splitpay-api/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	user_uuid     TEXT NOT NULL,
	name          TEXT NOT NULL,
	email         TEXT NOT NULL,
	mobile_number TEXT NOT NULL,
	platform      TEXT NOT NULL DEFAULT 'unknown',
	image_url     TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS users_user_uuid_key ON users (user_uuid);
CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (email);
CREATE UNIQUE INDEX IF NOT EXISTS users_mobile_number_key ON users (mobile_number);

CREATE TABLE IF NOT EXISTS payment_requests (
	id                    TEXT PRIMARY KEY,
	sender_user_uuid      TEXT NOT NULL,
	receiver_user_uuid    TEXT NOT NULL,
	amount                NUMERIC(14, 2) NOT NULL CHECK (amount > 0),
	currency              TEXT NOT NULL DEFAULT 'INR',
	notes                 TEXT NOT NULL DEFAULT '',
	status                TEXT NOT NULL DEFAULT 'PENDING',
	transaction_id        TEXT,
	payment_method        TEXT,
	paid_at               TIMESTAMPTZ,
	mark_as_friend_credit BOOLEAN NOT NULL DEFAULT false,
	repayments            JSONB NOT NULL DEFAULT '[]'::jsonb,
	version               BIGINT NOT NULL DEFAULT 1,
	created_at            TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at            TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS payment_requests_receiver_idx ON payment_requests (receiver_user_uuid, created_at DESC);
CREATE INDEX IF NOT EXISTS payment_requests_sender_idx ON payment_requests (sender_user_uuid, created_at DESC);

CREATE TABLE IF NOT EXISTS bills (
	id          TEXT PRIMARY KEY,
	bill_uuid   TEXT NOT NULL,
	bill_number TEXT NOT NULL,
	bill_date   TIMESTAMPTZ NOT NULL,
	customer    JSONB NOT NULL,
	items       JSONB NOT NULL DEFAULT '[]'::jsonb,
	grand_total NUMERIC(14, 2) NOT NULL DEFAULT 0,
	gst         NUMERIC(14, 2) NOT NULL DEFAULT 0,
	status      TEXT NOT NULL DEFAULT 'PENDING',
	notes       TEXT NOT NULL DEFAULT '',
	created_by  TEXT,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS bills_bill_uuid_key ON bills (bill_uuid);
CREATE UNIQUE INDEX IF NOT EXISTS bills_bill_number_key ON bills (bill_number);

CREATE TABLE IF NOT EXISTS notification_transactions (
	id           TEXT PRIMARY KEY,
	package_name TEXT NOT NULL DEFAULT '',
	title        TEXT NOT NULL DEFAULT '',
	message      TEXT NOT NULL DEFAULT '',
	username     TEXT NOT NULL,
	amount       NUMERIC(14, 2) NOT NULL,
	upi_id       TEXT NOT NULL DEFAULT '',
	type         TEXT NOT NULL DEFAULT 'PAYMENT',
	event        TEXT NOT NULL DEFAULT 'recorded',
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Migrate creates the tables and indexes when they do not exist.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

const uniqueViolation = "23505"

// mapWriteError turns unique index violations into domain.ErrConflict.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", domain.ErrConflict, conflictField(pgErr.ConstraintName))
	}
	return err
}

func conflictField(constraint string) string {
	switch constraint {
	case "users_user_uuid_key":
		return "userUUID"
	case "users_email_key":
		return "email"
	case "users_mobile_number_key":
		return "mobileNumber"
	case "bills_bill_uuid_key":
		return "billUUID"
	case "bills_bill_number_key":
		return "billNumber"
	case "":
		return "duplicate key"
	default:
		return constraint
	}
}
