package service

import (
	"context"
	"strings"
	"time"

	"splitpay-api/internal/domain"
)

type UserStore interface {
	List(ctx context.Context) ([]domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	FindByUUIDOrMobile(ctx context.Context, userUUID, mobile string) (*domain.User, error)
	Update(ctx context.Context, u *domain.User) error
	Delete(ctx context.Context, id string) (*domain.User, error)
}

type ProfileInvalidator interface {
	Forget(ctx context.Context, uuids ...string)
}

type CreateUserInput struct {
	UserUUID     string `json:"userUUID" validate:"required"`
	Name         string `json:"name" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	MobileNumber string `json:"mobileNumber" validate:"required"`
	Platform     string `json:"platform"`
	ImageURL     string `json:"imageUrl" validate:"omitempty,url"`
}

type UpdateUserInput struct {
	UserUUID     *string `json:"userUUID" validate:"omitempty,min=1"`
	Name         *string `json:"name" validate:"omitempty,min=1"`
	Email        *string `json:"email" validate:"omitempty,email"`
	MobileNumber *string `json:"mobileNumber" validate:"omitempty,min=1"`
	Platform     *string `json:"platform"`
	ImageURL     *string `json:"imageUrl" validate:"omitempty,url"`
}

type UserService struct {
	store     UserStore
	directory ProfileInvalidator
	now       func() time.Time
}

func NewUserService(store UserStore, directory ProfileInvalidator) *UserService {
	return &UserService{store: store, directory: directory, now: time.Now}
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.store.List(ctx)
}

func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*domain.User, error) {
	now := s.now()
	u := &domain.User{
		UserUUID:     strings.TrimSpace(in.UserUUID),
		Name:         strings.TrimSpace(in.Name),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		MobileNumber: strings.TrimSpace(in.MobileNumber),
		Platform:     in.Platform,
		ImageURL:     in.ImageURL,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if u.Platform == "" {
		u.Platform = domain.DefaultPlatform
	}
	if u.ImageURL == "" {
		u.ImageURL = domain.DefaultImageURL
	}

	if err := s.store.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.store.GetByID(ctx, id)
}

// Find looks a user up by userUUID or mobile number; at least one is needed.
func (s *UserService) Find(ctx context.Context, userUUID, mobile string) (*domain.User, error) {
	userUUID, mobile = strings.TrimSpace(userUUID), strings.TrimSpace(mobile)
	if userUUID == "" && mobile == "" {
		return nil, &domain.ValidationError{Field: "query", Message: "Please provide either userUUID or mobileNumber"}
	}
	return s.store.FindByUUIDOrMobile(ctx, userUUID, mobile)
}

func (s *UserService) Update(ctx context.Context, id string, in UpdateUserInput) (*domain.User, error) {
	u, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	oldUUID := u.UserUUID

	if in.UserUUID != nil {
		u.UserUUID = strings.TrimSpace(*in.UserUUID)
	}
	if in.Name != nil {
		u.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		u.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.MobileNumber != nil {
		u.MobileNumber = strings.TrimSpace(*in.MobileNumber)
	}
	if in.Platform != nil {
		u.Platform = *in.Platform
	}
	if in.ImageURL != nil {
		u.ImageURL = *in.ImageURL
	}
	u.UpdatedAt = s.now()

	if err := s.store.Update(ctx, u); err != nil {
		return nil, err
	}
	s.forget(ctx, oldUUID, u.UserUUID)
	return u, nil
}

func (s *UserService) Delete(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.store.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.forget(ctx, u.UserUUID)
	return u, nil
}

func (s *UserService) forget(ctx context.Context, uuids ...string) {
	if s.directory != nil {
		s.directory.Forget(ctx, uuids...)
	}
}
