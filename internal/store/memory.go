package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kirin765/naver-smartstore/internal/models"
)

// MemoryStore keeps everything in-process. A single mutex serializes all
// balance changes, which gives the same per-account atomicity as the
// conditional updates of PostgresStore.
type MemoryStore struct {
	mu           sync.RWMutex
	users        map[string]models.User
	emails       map[string]string // lower-cased email -> user ID
	accounts     map[string]models.CreditAccount
	reservations map[string]models.Reservation
	transactions []models.CreditTransaction
	products     map[string]models.Product
	logs         []models.GenerationLog
	now          func() time.Time
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:        make(map[string]models.User),
		emails:       make(map[string]string),
		accounts:     make(map[string]models.CreditAccount),
		reservations: make(map[string]models.Reservation),
		products:     make(map[string]models.Product),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// CreateAccount opens a credit account without a user record. Tests use it to
// set up balances directly.
func (m *MemoryStore) CreateAccount(userID string, initialCredits int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[userID] = models.CreditAccount{
		UserID:       userID,
		Balance:      initialCredits,
		InitialGrant: initialCredits,
		UpdatedAt:    m.now(),
	}
}

func (m *MemoryStore) CreateUser(ctx context.Context, u *models.User, initialCredits int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	email := strings.ToLower(u.Email)
	if _, exists := m.emails[email]; exists {
		return models.ErrEmailTaken
	}
	now := m.now()
	u.CreatedAt, u.UpdatedAt = now, now
	m.users[u.ID] = *u
	m.emails[email] = u.ID
	m.accounts[u.ID] = models.CreditAccount{
		UserID:       u.ID,
		Balance:      initialCredits,
		InitialGrant: initialCredits,
		UpdatedAt:    now,
	}
	return nil
}

func (m *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.emails[strings.ToLower(email)]
	if !ok {
		return nil, models.ErrNotFound
	}
	u := m.users[id]
	return &u, nil
}

func (m *MemoryStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &u, nil
}

func (m *MemoryStore) GetAccount(ctx context.Context, userID string) (*models.CreditAccount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	acc, ok := m.accounts[userID]
	if !ok {
		return nil, models.ErrAccountNotFound
	}
	return &acc, nil
}

func (m *MemoryStore) ReserveCredits(ctx context.Context, r *models.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[r.UserID]
	if !ok {
		return models.ErrAccountNotFound
	}
	if acc.Balance < r.Amount {
		return &models.InsufficientCreditsError{Required: r.Amount, Available: acc.Balance}
	}
	if _, exists := m.reservations[r.ID]; exists {
		return fmt.Errorf("reservation %s already exists", r.ID)
	}
	now := m.now()
	acc.Balance -= r.Amount
	acc.UpdatedAt = now
	m.accounts[r.UserID] = acc

	r.Status = models.ReservationPending
	r.CreatedAt = now
	m.reservations[r.ID] = *r
	return nil
}

func (m *MemoryStore) CommitReservation(ctx context.Context, reservationID string, tx *models.CreditTransaction) (*models.CreditTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res, ok := m.reservations[reservationID]
	if !ok {
		return nil, models.ErrReservationNotFound
	}
	switch res.Status {
	case models.ReservationCommitted:
		for _, existing := range m.transactions {
			if existing.ID == res.TransactionID {
				return &existing, nil
			}
		}
		return nil, fmt.Errorf("committed reservation %s has no transaction", reservationID)
	case models.ReservationReleased:
		return nil, models.ErrReservationSettled
	}

	now := m.now()
	committed := *tx
	committed.UserID = res.UserID
	committed.Amount = -res.Amount
	committed.ReservationID = res.ID
	committed.CreatedAt = now
	m.transactions = append(m.transactions, committed)

	res.Status = models.ReservationCommitted
	res.TransactionID = committed.ID
	res.SettledAt = &now
	m.reservations[res.ID] = res

	acc := m.accounts[res.UserID]
	acc.LifetimeUsage += res.Amount
	acc.UpdatedAt = now
	m.accounts[res.UserID] = acc

	return &committed, nil
}

func (m *MemoryStore) ReleaseReservation(ctx context.Context, reservationID string) (*models.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res, ok := m.reservations[reservationID]
	if !ok {
		return nil, models.ErrReservationNotFound
	}
	switch res.Status {
	case models.ReservationReleased:
		return &res, nil
	case models.ReservationCommitted:
		return nil, models.ErrReservationSettled
	}

	now := m.now()
	res.Status = models.ReservationReleased
	res.SettledAt = &now
	m.reservations[res.ID] = res

	acc := m.accounts[res.UserID]
	acc.Balance += res.Amount
	acc.UpdatedAt = now
	m.accounts[res.UserID] = acc

	return &res, nil
}

func (m *MemoryStore) AddCredits(ctx context.Context, tx *models.CreditTransaction) (*models.CreditAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[tx.UserID]
	if !ok {
		return nil, models.ErrAccountNotFound
	}
	now := m.now()
	acc.Balance += tx.Amount
	acc.UpdatedAt = now
	m.accounts[tx.UserID] = acc

	tx.CreatedAt = now
	m.transactions = append(m.transactions, *tx)
	return &acc, nil
}

func (m *MemoryStore) ListTransactions(ctx context.Context, userID string, limit int) ([]models.CreditTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.CreditTransaction, 0)
	for i := len(m.transactions) - 1; i >= 0; i-- {
		if m.transactions[i].UserID != userID {
			continue
		}
		out = append(out, m.transactions[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *MemoryStore) ListStaleReservations(ctx context.Context, createdBefore time.Time, limit int) ([]models.Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Reservation, 0)
	for _, r := range m.reservations {
		if r.Status == models.ReservationPending && r.CreatedAt.Before(createdBefore) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) InsertProduct(ctx context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	p.CreatedAt, p.UpdatedAt = now, now
	m.products[p.ID] = cloneProduct(*p)
	return nil
}

func (m *MemoryStore) GetProduct(ctx context.Context, userID, productID string) (*models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[productID]
	if !ok || p.UserID != userID {
		return nil, models.ErrNotFound
	}
	p = cloneProduct(p)
	return &p, nil
}

func (m *MemoryStore) UpdateProduct(ctx context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.products[p.ID]
	if !ok || existing.UserID != p.UserID {
		return models.ErrNotFound
	}
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = m.now()
	m.products[p.ID] = cloneProduct(*p)
	return nil
}

func (m *MemoryStore) SaveGeneration(ctx context.Context, userID, productID string, t models.GenerationType, r *models.GenerationResult) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.products[productID]
	if !ok || existing.UserID != userID {
		return nil, models.ErrNotFound
	}
	p := cloneProduct(existing)
	p.ApplyGeneration(t, r)
	p.UpdatedAt = m.now()
	m.products[productID] = p
	out := cloneProduct(p)
	return &out, nil
}

func (m *MemoryStore) DeleteProduct(ctx context.Context, userID, productID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[productID]
	if !ok || p.UserID != userID {
		return models.ErrNotFound
	}
	delete(m.products, productID)
	return nil
}

func (m *MemoryStore) ListProductsByUser(ctx context.Context, userID string, limit int) ([]models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Product, 0)
	for _, p := range m.products {
		if p.UserID == userID {
			out = append(out, cloneProduct(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) CountProductsByUser(ctx context.Context, userID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, p := range m.products {
		if p.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) InsertGenerationLog(ctx context.Context, l *models.GenerationLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l.CreatedAt = m.now()
	m.logs = append(m.logs, *l)
	return nil
}

// GenerationLogs returns a copy of the recorded generation logs.
func (m *MemoryStore) GenerationLogs() []models.GenerationLog {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.GenerationLog(nil), m.logs...)
}

func cloneProduct(p models.Product) models.Product {
	p.Keywords = append([]string(nil), p.Keywords...)
	p.GeneratedAlternatives = append([]string(nil), p.GeneratedAlternatives...)
	p.GeneratedBulletSpecs = append([]string(nil), p.GeneratedBulletSpecs...)
	p.GeneratedTags = append([]string(nil), p.GeneratedTags...)
	if p.Price != nil {
		price := *p.Price
		p.Price = &price
	}
	return p
}
