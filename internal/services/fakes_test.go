package services

import (
	"context"
	"errors"
	"sync"

	"storefront_back_end/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// memOrderStore reproduit orders / orders_by_user / orders_by_payment en mémoire.
// Comme gocql, chaque appel échoue si le contexte est déjà annulé.
type memOrderStore struct {
	mu          sync.Mutex
	orders      map[uuid.UUID]models.Order
	claims      map[string]models.PaymentClaim
	createErr   error
	updateErr   error
	beforeWrite func(ctx context.Context)
	releaseHits int
	takeovers   int
}

func newMemOrderStore() *memOrderStore {
	return &memOrderStore{orders: map[uuid.UUID]models.Order{}, claims: map[string]models.PaymentClaim{}}
}

func (s *memOrderStore) CreateOrder(ctx context.Context, order *models.Order) error {
	if s.beforeWrite != nil {
		s.beforeWrite(ctx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	s.orders[order.ID] = *order
	return nil
}

func (s *memOrderStore) GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, models.ErrOrderNotFound
	}
	o = cloneOrder(o)
	return &o, nil
}

func (s *memOrderStore) GetOrdersByUserID(_ context.Context, userID string) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Order
	for _, o := range s.orders {
		if o.UserID == userID {
			out = append(out, cloneOrder(o))
		}
	}
	return out, nil
}

func (s *memOrderStore) UpdateEmailSent(_ context.Context, order *models.Order, sent bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	o := s.orders[order.ID]
	o.EmailSent = sent
	s.orders[order.ID] = o
	order.EmailSent = sent
	return nil
}

func (s *memOrderStore) ClaimPayment(ctx context.Context, paymentID string, claim models.PaymentClaim) (models.PaymentClaim, bool, error) {
	if err := ctx.Err(); err != nil {
		return models.PaymentClaim{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.claims[paymentID]; ok {
		return current, false, nil
	}
	s.claims[paymentID] = claim
	return claim, true, nil
}

func (s *memOrderStore) TakeOverPayment(ctx context.Context, paymentID string, stale uuid.UUID, claim models.PaymentClaim) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.claims[paymentID]; !ok || current.OrderID != stale {
		return false, nil
	}
	s.claims[paymentID] = claim
	s.takeovers++
	return true, nil
}

func (s *memOrderStore) ReleasePayment(ctx context.Context, paymentID string, orderID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releaseHits++
	if current, ok := s.claims[paymentID]; ok && current.OrderID == orderID {
		delete(s.claims, paymentID)
	}
	return nil
}

func (s *memOrderStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

// cloneOrder imite une relecture en base : les lignes ne sont pas partagées
func cloneOrder(o models.Order) models.Order {
	o.OrderItems = append([]models.OrderItem(nil), o.OrderItems...)
	return o
}

// memUserStore stocke les comptes avec leur hash
type memUserStore struct {
	mu        sync.Mutex
	users     map[string]models.User
	updateErr error
	updates   int
}

func newMemUserStore(users ...models.User) *memUserStore {
	s := &memUserStore{users: map[string]models.User{}}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *memUserStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	return &u, nil
}

func (s *memUserStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (s *memUserStore) UpdateUser(_ context.Context, _ string, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	for id, u := range s.users {
		if id != user.ID && u.Email == user.Email {
			return models.ErrDuplicateEmail
		}
	}
	s.users[user.ID] = *user
	s.updates++
	return nil
}

type mockVerifier struct {
	mock.Mock
}

func (m *mockVerifier) RetrieveByIntentID(ctx context.Context, id string) (*models.PaymentRecord, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(*models.PaymentRecord)
	return r, args.Error(1)
}

func (m *mockVerifier) RetrieveByCheckoutSessionID(ctx context.Context, id string) (*models.PaymentRecord, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(*models.PaymentRecord)
	return r, args.Error(1)
}

// fakeSender compte les envois et renvoie un résultat fixe
type fakeSender struct {
	mu     sync.Mutex
	result NotificationResult
	calls  int
	items  [][]models.OrderItem
}

func (f *fakeSender) SendPaymentConfirmation(_ context.Context, _ string, _ *models.PaymentRecord, items []models.OrderItem) NotificationResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.items = append(f.items, items)
	return f.result
}

type fakeIndexer struct {
	err     error
	indexed []uuid.UUID
}

func (f *fakeIndexer) IndexOrder(_ context.Context, order *models.Order) error {
	if f.err != nil {
		return f.err
	}
	f.indexed = append(f.indexed, order.ID)
	return nil
}

type recordingInvalidator struct {
	calls [][]string
}

func (r *recordingInvalidator) InvalidateUser(_ context.Context, userID string, emails ...string) {
	r.calls = append(r.calls, append([]string{userID}, emails...))
}

var errBoom = errors.New("boom")
