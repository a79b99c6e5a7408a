package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"splitpay-api/internal/domain"
	"splitpay-api/internal/metrics"
	"splitpay-api/internal/repository"
)

const (
	RoleSender   = "SENDER"
	RoleReceiver = "RECEIVER"

	repaymentAttempts = 3
	notifyTimeout     = 10 * time.Second
)

type PaymentRequestStore interface {
	Create(ctx context.Context, pr *domain.PaymentRequest) error
	GetByID(ctx context.Context, id string) (*domain.PaymentRequest, error)
	Update(ctx context.Context, pr *domain.PaymentRequest) error
	List(ctx context.Context, f repository.PaymentRequestsFilter) ([]domain.PaymentRequest, error)
}

type ProfileResolver interface {
	ResolveMany(ctx context.Context, uuids []string) (map[string]domain.Profile, error)
}

type CreatePaymentRequestInput struct {
	SenderUserUUID   string          `json:"senderUserUUID" validate:"required"`
	ReceiverUserUUID string          `json:"receiverUserUUID" validate:"required"`
	Amount           decimal.Decimal `json:"amount" validate:"gt=0"`
	Currency         string          `json:"currency"`
	Notes            string          `json:"notes"`
	// Silent skips the PAYMENT_REQUEST push; the caller sends its own.
	Silent bool `json:"-"`
}

type RepaymentView struct {
	domain.Repayment
	ReadableDate string `json:"readableDate"`
}

type PaymentRequestView struct {
	domain.PaymentRequest
	Repayments       []RepaymentView  `json:"repayments"`
	Sender           *domain.Profile  `json:"sender"`
	Receiver         *domain.Profile  `json:"receiver"`
	TotalRepaid      decimal.Decimal  `json:"totalRepaid"`
	BalanceRemaining decimal.Decimal  `json:"balanceRemaining"`
	ReadableDate     string           `json:"readableDate"`
	CreatedAgo       string           `json:"createdAgo"`
	Role             *string          `json:"role"`
}

type PaymentRequestDetail struct {
	PaymentRequestView
	Role             *string              `json:"role"`
	PreviousRequests []PaymentRequestView `json:"previousRequests"`
}

type RepaymentResult struct {
	*domain.PaymentRequest
	LatestRepayment domain.Repayment `json:"latestRepayment"`
}

type PaymentRequestService struct {
	store    PaymentRequestStore
	profiles ProfileResolver
	notifier NotificationSender
	loc      *time.Location
	locks    *keyedMutex

	now   func() time.Time
	async func(func())
}

func NewPaymentRequestService(
	store PaymentRequestStore,
	profiles ProfileResolver,
	notifier NotificationSender,
	loc *time.Location,
) *PaymentRequestService {
	if loc == nil {
		loc = time.UTC
	}
	return &PaymentRequestService{
		store:    store,
		profiles: profiles,
		notifier: notifier,
		loc:      loc,
		locks:    newKeyedMutex(),
		now:      time.Now,
		async:    func(fn func()) { go fn() },
	}
}

func (s *PaymentRequestService) Create(ctx context.Context, in CreatePaymentRequestInput) (*domain.PaymentRequest, error) {
	in.SenderUserUUID = strings.TrimSpace(in.SenderUserUUID)
	in.ReceiverUserUUID = strings.TrimSpace(in.ReceiverUserUUID)
	if in.SenderUserUUID == "" || in.ReceiverUserUUID == "" {
		return nil, &domain.ValidationError{Field: "body", Message: "senderUserUUID, receiverUserUUID, and amount are required"}
	}
	if err := domain.ValidateAmount("amount", in.Amount); err != nil {
		return nil, err
	}

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = domain.DefaultCurrency
	}

	now := s.now()
	pr := &domain.PaymentRequest{
		SenderUserUUID:   in.SenderUserUUID,
		ReceiverUserUUID: in.ReceiverUserUUID,
		Amount:           in.Amount,
		Currency:         currency,
		Notes:            in.Notes,
		Status:           domain.StatusPending,
		Repayments:       domain.Repayments{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.store.Create(ctx, pr); err != nil {
		return nil, err
	}
	metrics.PaymentRequestsCreated.Inc()

	if !in.Silent {
		amount := pr.Amount
		s.notify(domain.NotifyPaymentRequest, pr.SenderUserUUID, pr.ReceiverUserUUID, NotificationParams{
			Amount:   &amount,
			Currency: pr.Currency,
			Notes:    pr.Notes,
			Extra:    map[string]any{"paymentRequestId": pr.ID},
		})
	}
	return pr, nil
}

func (s *PaymentRequestService) Decline(ctx context.Context, id string) (*domain.PaymentRequest, error) {
	pr, err := s.mutate(ctx, id, func(pr *domain.PaymentRequest, now time.Time) error {
		pr.Decline(now)
		return nil
	})
	if err != nil {
		return nil, err
	}

	amount := pr.Amount
	s.notify(domain.NotifyPaymentDeclined, pr.ReceiverUserUUID, pr.SenderUserUUID, NotificationParams{
		Amount:   &amount,
		Currency: pr.Currency,
		Extra:    map[string]any{"paymentRequestId": pr.ID},
	})
	return pr, nil
}

func (s *PaymentRequestService) SetStatus(ctx context.Context, id string, status domain.PaymentRequestStatus) (*domain.PaymentRequest, error) {
	if !status.Valid() {
		return nil, &domain.ValidationError{Field: "status", Message: "Status must be PENDING, PAID, or DECLINED"}
	}
	return s.mutate(ctx, id, func(pr *domain.PaymentRequest, now time.Time) error {
		return pr.SetStatus(status, now)
	})
}

func (s *PaymentRequestService) MarkPaid(ctx context.Context, id string, markAsFriendCredit bool) (*domain.PaymentRequest, error) {
	var wasPaid bool
	pr, err := s.mutate(ctx, id, func(pr *domain.PaymentRequest, now time.Time) error {
		wasPaid = pr.Status == domain.StatusPaid
		txnID, err := domain.NewTransactionID(now)
		if err != nil {
			return err
		}
		pr.MarkPaid(txnID, domain.DefaultPaymentMethod, markAsFriendCredit, now)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !wasPaid {
		metrics.PaymentRequestsSettled.WithLabelValues(metrics.SettledByMarkPaid).Inc()
	}

	amount := pr.Amount
	s.notify(domain.NotifyPaymentReceipt, pr.SenderUserUUID, pr.ReceiverUserUUID, NotificationParams{
		Amount:   &amount,
		Currency: pr.Currency,
		Extra: map[string]any{
			"paymentRequestId": pr.ID,
			"transactionId":    *pr.TransactionID,
		},
	})
	return pr, nil
}

// AddRepayment appends an installment. Calls for the same id are serialized
// in process, and the version check in the store catches writers elsewhere.
func (s *PaymentRequestService) AddRepayment(ctx context.Context, id string, amount decimal.Decimal, notes string) (*RepaymentResult, error) {
	if err := domain.ValidateAmount("amount", amount); err != nil {
		return nil, err
	}

	var latest domain.Repayment
	var settled bool
	pr, err := s.mutate(ctx, id, func(pr *domain.PaymentRequest, now time.Time) error {
		wasPaid := pr.Status == domain.StatusPaid
		rep, err := pr.ApplyRepayment(amount, notes, now)
		if err != nil {
			return err
		}
		latest = rep
		settled = !wasPaid && pr.Status == domain.StatusPaid
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RepaymentsRecorded.Inc()
	if settled {
		metrics.PaymentRequestsSettled.WithLabelValues(metrics.SettledByRepayment).Inc()
	}

	repaid := latest.Amount
	s.notify(domain.NotifyPaymentReceipt, pr.SenderUserUUID, pr.ReceiverUserUUID, NotificationParams{
		Amount:   &repaid,
		Currency: pr.Currency,
		Notes:    notes,
		Extra: map[string]any{
			"paymentRequestId": pr.ID,
			"balanceRemaining": latest.BalanceRemaining.String(),
		},
	})

	return &RepaymentResult{PaymentRequest: pr, LatestRepayment: latest}, nil
}

// mutate loads id, applies fn and writes it back, reloading and retrying when
// another writer bumped the version first.
func (s *PaymentRequestService) mutate(
	ctx context.Context,
	id string,
	fn func(pr *domain.PaymentRequest, now time.Time) error,
) (*domain.PaymentRequest, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	for attempt := 1; ; attempt++ {
		pr, err := s.store.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := fn(pr, s.now()); err != nil {
			return nil, err
		}

		err = s.store.Update(ctx, pr)
		if err == nil {
			return pr, nil
		}
		if !errors.Is(err, domain.ErrVersionConflict) || attempt >= repaymentAttempts {
			return nil, err
		}
		slog.Debug("payment request version conflict, retrying", "id", id, "attempt", attempt)
	}
}

// ListForUser returns the open requests the user has been asked to pay.
func (s *PaymentRequestService) ListForUser(ctx context.Context, userUUID string) ([]PaymentRequestView, error) {
	items, err := s.store.List(ctx, repository.PaymentRequestsFilter{
		ReceiverUUID:    &userUUID,
		ExcludeStatuses: []domain.PaymentRequestStatus{domain.StatusDeclined, domain.StatusPaid},
	})
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, items, "")
}

// ListAllForUser returns every non-declined request on either side.
func (s *PaymentRequestService) ListAllForUser(ctx context.Context, userUUID string) ([]PaymentRequestView, error) {
	items, err := s.store.List(ctx, repository.PaymentRequestsFilter{
		PartyUUID:       &userUUID,
		ExcludeStatuses: []domain.PaymentRequestStatus{domain.StatusDeclined},
	})
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, items, "")
}

func (s *PaymentRequestService) GetDetail(ctx context.Context, id, requestingUserUUID string) (*PaymentRequestDetail, error) {
	pr, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if pr.Status == domain.StatusDeclined {
		return nil, &domain.NotFoundError{Entity: "payment request", ID: id}
	}

	previous, err := s.store.List(ctx, repository.PaymentRequestsFilter{
		Pair:            &[2]string{pr.SenderUserUUID, pr.ReceiverUserUUID},
		ExcludeStatuses: []domain.PaymentRequestStatus{domain.StatusDeclined},
		ExcludeID:       &pr.ID,
	})
	if err != nil {
		return nil, err
	}

	all := append([]domain.PaymentRequest{*pr}, previous...)
	views, err := s.enrich(ctx, all, requestingUserUUID)
	if err != nil {
		return nil, err
	}

	head := views[0]
	role := head.Role
	head.Role = nil
	return &PaymentRequestDetail{
		PaymentRequestView: head,
		Role:               role,
		PreviousRequests:   views[1:],
	}, nil
}

// enrich resolves every party profile in one directory call. A role is only
// attached when viewer is set.
func (s *PaymentRequestService) enrich(ctx context.Context, items []domain.PaymentRequest, viewer string) ([]PaymentRequestView, error) {
	views := make([]PaymentRequestView, 0, len(items))
	if len(items) == 0 {
		return views, nil
	}

	seen := map[string]struct{}{}
	uuids := make([]string, 0, len(items)*2)
	for _, pr := range items {
		for _, u := range []string{pr.SenderUserUUID, pr.ReceiverUserUUID} {
			if _, ok := seen[u]; !ok {
				seen[u] = struct{}{}
				uuids = append(uuids, u)
			}
		}
	}

	profiles, err := s.profiles.ResolveMany(ctx, uuids)
	if err != nil {
		return nil, fmt.Errorf("resolve profiles: %w", err)
	}

	now := s.now()
	for _, pr := range items {
		v := PaymentRequestView{
			PaymentRequest:   pr,
			Repayments:       make([]RepaymentView, 0, len(pr.Repayments)),
			TotalRepaid:      pr.TotalRepaid(),
			BalanceRemaining: pr.Balance(),
			ReadableDate:     readableDate(pr.CreatedAt, s.loc),
			CreatedAgo:       createdAgo(pr.CreatedAt, now),
		}
		for _, r := range pr.Repayments {
			v.Repayments = append(v.Repayments, RepaymentView{Repayment: r, ReadableDate: readableDate(r.RepaidAt, s.loc)})
		}
		if p, ok := profiles[pr.SenderUserUUID]; ok {
			v.Sender = &p
		}
		if p, ok := profiles[pr.ReceiverUserUUID]; ok {
			v.Receiver = &p
		}
		if viewer != "" {
			v.Role = roleOf(&pr, viewer)
		}
		views = append(views, v)
	}
	return views, nil
}

func roleOf(pr *domain.PaymentRequest, userUUID string) *string {
	var role string
	switch userUUID {
	case pr.SenderUserUUID:
		role = RoleSender
	case pr.ReceiverUserUUID:
		role = RoleReceiver
	default:
		return nil
	}
	return &role
}

// notify sends a ledger push in the background. Failures are logged and
// counted, never returned.
func (s *PaymentRequestService) notify(t domain.NotificationType, fromUUID, toUUID string, p NotificationParams) {
	if s.notifier == nil {
		return
	}
	s.async(func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		profiles, err := s.profiles.ResolveMany(ctx, []string{fromUUID, toUUID})
		if err != nil {
			slog.Warn("notification profiles unavailable", "type", t, "error", err)
			profiles = map[string]domain.Profile{}
		}
		from, ok := profiles[fromUUID]
		if !ok {
			from = domain.Profile{UserUUID: fromUUID, Name: "Someone"}
		}
		to, ok := profiles[toUUID]
		if !ok {
			to = domain.Profile{UserUUID: toUUID}
		}

		if _, err := s.notifier.Send(ctx, BuildNotification(t, from, to, p)); err != nil {
			metrics.NotificationsFailed.Inc()
			slog.Warn("ledger notification failed", "type", t, "recipient", toUUID, "error", err)
		}
	})
}
