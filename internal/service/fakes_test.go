package service

import (
	"context"
	"errors"
	"slices"
	"sort"
	"strconv"
	"sync"
	"time"

	"splitpay-api/internal/clients"
	"splitpay-api/internal/domain"
	"splitpay-api/internal/repository"
)

type memoryRequests struct {
	mu      sync.Mutex
	seq     int
	rows    map[string]domain.PaymentRequest
	updates int
	// conflicts makes the next n updates fail with a version conflict.
	conflicts int
}

func newMemoryRequests() *memoryRequests {
	return &memoryRequests{rows: map[string]domain.PaymentRequest{}}
}

func clone(pr domain.PaymentRequest) domain.PaymentRequest {
	pr.Repayments = slices.Clone(pr.Repayments)
	return pr
}

func (m *memoryRequests) Create(_ context.Context, pr *domain.PaymentRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	pr.ID = "pr-" + strconv.Itoa(m.seq)
	pr.Version = 1
	m.rows[pr.ID] = clone(*pr)
	return nil
}

func (m *memoryRequests) put(pr domain.PaymentRequest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if pr.Version == 0 {
		pr.Version = 1
	}
	m.rows[pr.ID] = clone(pr)
}

func (m *memoryRequests) GetByID(_ context.Context, id string) (*domain.PaymentRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pr, ok := m.rows[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "payment request", ID: id}
	}
	out := clone(pr)
	return &out, nil
}

func (m *memoryRequests) Update(_ context.Context, pr *domain.PaymentRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates++
	if m.conflicts > 0 {
		m.conflicts--
		return domain.ErrVersionConflict
	}
	cur, ok := m.rows[pr.ID]
	if !ok || cur.Version != pr.Version {
		return domain.ErrVersionConflict
	}
	pr.Version++
	m.rows[pr.ID] = clone(*pr)
	return nil
}

func (m *memoryRequests) List(_ context.Context, f repository.PaymentRequestsFilter) ([]domain.PaymentRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.PaymentRequest
	for _, pr := range m.rows {
		if f.ReceiverUUID != nil && pr.ReceiverUserUUID != *f.ReceiverUUID {
			continue
		}
		if f.PartyUUID != nil && !pr.IsParty(*f.PartyUUID) {
			continue
		}
		if f.Pair != nil && !pr.SamePair(&domain.PaymentRequest{SenderUserUUID: f.Pair[0], ReceiverUserUUID: f.Pair[1]}) {
			continue
		}
		if slices.Contains(f.ExcludeStatuses, pr.Status) {
			continue
		}
		if f.ExcludeID != nil && pr.ID == *f.ExcludeID {
			continue
		}
		out = append(out, clone(pr))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

type staticProfiles struct {
	mu      sync.Mutex
	byUUID  map[string]domain.Profile
	calls   int
	failing bool
}

func newStaticProfiles(profiles ...domain.Profile) *staticProfiles {
	s := &staticProfiles{byUUID: map[string]domain.Profile{}}
	for _, p := range profiles {
		s.byUUID[p.UserUUID] = p
	}
	return s
}

func (s *staticProfiles) ResolveMany(_ context.Context, uuids []string) (map[string]domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.failing {
		return nil, errors.New("directory down")
	}
	out := map[string]domain.Profile{}
	for _, u := range uuids {
		if p, ok := s.byUUID[u]; ok {
			out[u] = p
		}
	}
	return out, nil
}

func (s *staticProfiles) Resolve(ctx context.Context, userUUID string) (domain.Profile, error) {
	found, err := s.ResolveMany(ctx, []string{userUUID})
	if err != nil {
		return domain.Profile{}, err
	}
	p, ok := found[userUUID]
	if !ok {
		return domain.Profile{}, &domain.NotFoundError{Entity: "user", ID: userUUID}
	}
	return p, nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []domain.Notification
	err  error
}

func (r *recordingNotifier) Send(_ context.Context, n domain.Notification) (clients.DeliveryResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	if r.err != nil {
		return clients.DeliveryResult{}, r.err
	}
	return clients.DeliveryResult{Push: map[string]any{"id": "push-1"}}, nil
}

func (r *recordingNotifier) all() []domain.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.sent)
}

var (
	alice = domain.Profile{UserUUID: "A", Name: "Alice", MobileNumber: "9000000001"}
	bob   = domain.Profile{UserUUID: "B", Name: "Bob", MobileNumber: "9000000002"}
	carol = domain.Profile{UserUUID: "C", Name: "Carol", MobileNumber: "9000000003"}
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestLedger(store *memoryRequests, notifier NotificationSender) (*PaymentRequestService, *staticProfiles) {
	profiles := newStaticProfiles(alice, bob, carol)
	svc := NewPaymentRequestService(store, profiles, notifier, time.UTC)
	svc.now = fixedClock(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))
	svc.async = func(fn func()) { fn() }
	return svc, profiles
}
