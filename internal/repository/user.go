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

const userColumns = `id, user_uuid, name, email, mobile_number, platform, image_url, created_at, updated_at`

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	users := []domain.User{}
	if err := r.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id DESC`); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (:id, :user_uuid, :name, :email, :mobile_number, :platform, :image_url, :created_at, :updated_at)`, u)
	if err != nil {
		return fmt.Errorf("insert user: %w", mapWriteError(err))
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, "user", id, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// FindByUUIDOrMobile matches on userUUID first, then mobile number. Empty
// arguments are ignored.
func (r *UserRepository) FindByUUIDOrMobile(ctx context.Context, userUUID, mobile string) (*domain.User, error) {
	key := userUUID
	if key == "" {
		key = mobile
	}
	return r.getOne(ctx, "user", key, `
		SELECT `+userColumns+` FROM users
		WHERE ($1 <> '' AND user_uuid = $1) OR ($2 <> '' AND mobile_number = $2)
		ORDER BY (user_uuid = $1) DESC
		LIMIT 1`, userUUID, mobile)
}

func (r *UserRepository) GetByUUID(ctx context.Context, userUUID string) (*domain.User, error) {
	return r.getOne(ctx, "user", userUUID, `SELECT `+userColumns+` FROM users WHERE user_uuid = $1`, userUUID)
}

// FindByMobilePrefix returns the oldest user whose mobile number starts with
// prefix, or nil when there is none.
func (r *UserRepository) FindByMobilePrefix(ctx context.Context, prefix string) (*domain.User, error) {
	if prefix == "" {
		return nil, nil
	}
	var u domain.User
	err := r.db.GetContext(ctx, &u, `
		SELECT `+userColumns+` FROM users
		WHERE starts_with(mobile_number, $1)
		ORDER BY created_at ASC
		LIMIT 1`, prefix)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by mobile prefix: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	res, err := r.db.NamedExecContext(ctx, `
		UPDATE users SET
			user_uuid = :user_uuid,
			name = :name,
			email = :email,
			mobile_number = :mobile_number,
			platform = :platform,
			image_url = :image_url,
			updated_at = :updated_at
		WHERE id = :id`, u)
	if err != nil {
		return fmt.Errorf("update user: %w", mapWriteError(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &domain.NotFoundError{Entity: "user", ID: u.ID}
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := r.db.GetContext(ctx, &u, `DELETE FROM users WHERE id = $1 RETURNING `+userColumns, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: "user", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("delete user: %w", err)
	}
	return &u, nil
}

// ProfilesByUUIDs loads the display profiles for uuids in one query.
func (r *UserRepository) ProfilesByUUIDs(ctx context.Context, uuids []string) ([]domain.Profile, error) {
	profiles := []domain.Profile{}
	if len(uuids) == 0 {
		return profiles, nil
	}

	query, args, err := sqlx.In(`
		SELECT user_uuid, name, email, mobile_number, platform, image_url
		FROM users WHERE user_uuid IN (?)`, uuids)
	if err != nil {
		return nil, fmt.Errorf("build profiles query: %w", err)
	}

	if err := r.db.SelectContext(ctx, &profiles, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}
	return profiles, nil
}

func (r *UserRepository) getOne(ctx context.Context, entity, key, query string, args ...any) (*domain.User, error) {
	var u domain.User
	err := r.db.GetContext(ctx, &u, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: entity, ID: key}
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", entity, err)
	}
	return &u, nil
}
