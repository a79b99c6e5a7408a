package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"splitpay-api/internal/domain"
)

type BillStore interface {
	Create(ctx context.Context, b *domain.Bill) error
	List(ctx context.Context) ([]domain.Bill, error)
	GetByID(ctx context.Context, id string) (*domain.Bill, error)
}

type CustomerFinder interface {
	FindByMobilePrefix(ctx context.Context, prefix string) (*domain.User, error)
}

type BillItemInput struct {
	Name     string           `json:"name" validate:"required"`
	Quantity decimal.Decimal  `json:"quantity" validate:"gt=0"`
	Unit     string           `json:"unit"`
	Price    decimal.Decimal  `json:"price" validate:"gte=0"`
	Total    *decimal.Decimal `json:"total"`
}

type CustomerInput struct {
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone"`
	Email   string `json:"email" validate:"omitempty,email"`
	Address string `json:"address"`
}

type CreateBillInput struct {
	BillUUID   string          `json:"billUUID" validate:"required"`
	BillNumber string          `json:"billNumber" validate:"required"`
	BillDate   time.Time       `json:"billDate" validate:"required"`
	Customer   CustomerInput   `json:"customer"`
	Items      []BillItemInput `json:"items" validate:"required,min=1,dive"`
	GST        decimal.Decimal `json:"gst" validate:"gte=0"`
	Notes      string          `json:"notes"`
	CreatedBy  *string         `json:"createdBy"`
}

type BillCreated struct {
	Bill         *domain.Bill `json:"bill"`
	CustomerUser *domain.User `json:"customerUser"`
}

type BillView struct {
	domain.Bill
	Creator *domain.Profile `json:"creator"`
}

type BillService struct {
	store     BillStore
	customers CustomerFinder
	profiles  ProfileResolver
	notifier  NotificationSender
	now       func() time.Time
}

func NewBillService(store BillStore, customers CustomerFinder, profiles ProfileResolver, notifier NotificationSender) *BillService {
	return &BillService{store: store, customers: customers, profiles: profiles, notifier: notifier, now: time.Now}
}

// Create saves the bill and pushes it to the registered user whose mobile
// number starts with the customer's phone, if there is one.
func (s *BillService) Create(ctx context.Context, in CreateBillInput) (*BillCreated, error) {
	now := s.now()
	b := &domain.Bill{
		BillUUID:   in.BillUUID,
		BillNumber: in.BillNumber,
		BillDate:   in.BillDate,
		Customer: domain.Customer{
			Name:    in.Customer.Name,
			Phone:   strings.ReplaceAll(strings.TrimSpace(in.Customer.Phone), " ", ""),
			Email:   in.Customer.Email,
			Address: in.Customer.Address,
		},
		Items:     make(domain.BillItems, 0, len(in.Items)),
		GST:       in.GST,
		Status:    domain.BillPending,
		Notes:     in.Notes,
		CreatedBy: in.CreatedBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, it := range in.Items {
		item := domain.BillItem{Name: it.Name, Quantity: it.Quantity, Unit: it.Unit, Price: it.Price}
		if it.Total != nil {
			item.Total = *it.Total
		}
		b.Items = append(b.Items, item)
	}
	b.ComputeTotals()

	if err := s.store.Create(ctx, b); err != nil {
		return nil, err
	}

	out := &BillCreated{Bill: b}
	if b.Customer.Phone == "" {
		return out, nil
	}

	customer, err := s.customers.FindByMobilePrefix(ctx, b.Customer.Phone)
	if err != nil {
		slog.Warn("bill customer lookup failed", "bill_id", b.ID, "error", err)
		return out, nil
	}
	if customer == nil {
		return out, nil
	}
	out.CustomerUser = customer

	if s.notifier != nil {
		total := b.GrandTotal
		n := BuildNotification(domain.NotifyBillCreated, s.creatorProfile(ctx, b), customer.Profile(), NotificationParams{
			Amount: &total,
			Extra: map[string]any{
				"billId":     b.ID,
				"billNumber": b.BillNumber,
				"bill":       b,
			},
		})
		if _, err := s.notifier.Send(ctx, n); err != nil {
			slog.Warn("bill notification failed", "bill_id", b.ID, "error", err)
		}
	}
	return out, nil
}

func (s *BillService) creatorProfile(ctx context.Context, b *domain.Bill) domain.Profile {
	if b.CreatedBy == nil || s.profiles == nil {
		return domain.Profile{}
	}
	found, err := s.profiles.ResolveMany(ctx, []string{*b.CreatedBy})
	if err != nil {
		return domain.Profile{UserUUID: *b.CreatedBy}
	}
	p, ok := found[*b.CreatedBy]
	if !ok {
		return domain.Profile{UserUUID: *b.CreatedBy}
	}
	return p
}

// List attaches the creator's profile to each bill.
func (s *BillService) List(ctx context.Context) ([]BillView, error) {
	bills, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	var uuids []string
	seen := map[string]struct{}{}
	for _, b := range bills {
		if b.CreatedBy == nil {
			continue
		}
		if _, ok := seen[*b.CreatedBy]; !ok {
			seen[*b.CreatedBy] = struct{}{}
			uuids = append(uuids, *b.CreatedBy)
		}
	}

	profiles := map[string]domain.Profile{}
	if len(uuids) > 0 {
		if profiles, err = s.profiles.ResolveMany(ctx, uuids); err != nil {
			return nil, err
		}
	}

	views := make([]BillView, 0, len(bills))
	for _, b := range bills {
		v := BillView{Bill: b}
		if b.CreatedBy != nil {
			if p, ok := profiles[*b.CreatedBy]; ok {
				v.Creator = &p
			}
		}
		views = append(views, v)
	}
	return views, nil
}

func (s *BillService) Get(ctx context.Context, id string) (*domain.Bill, error) {
	return s.store.GetByID(ctx, id)
}
