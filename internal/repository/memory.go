package repository

import (
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dudhwala/milkbook/internal/domain"
)

// Memory is an in-process Store with the same semantics as the Postgres
// implementation. It backs tests and DSN-less dev runs (DB_DSN=memory).
type Memory struct {
	mu       sync.Mutex
	accounts map[int64]domain.Account
	records  []domain.DeliveryRecord
	nextAcct int64
	nextRec  int64
}

func NewMemory() *Memory {
	return &Memory{
		accounts: make(map[int64]domain.Account),
		nextAcct: 1,
		nextRec:  1,
	}
}

var _ Store = (*Memory)(nil)

func (m *Memory) GetAccount(id int64) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (m *Memory) GetAccountByUsername(username string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.Username == username {
			a := a
			return &a, nil
		}
	}
	return nil, nil
}

func (m *Memory) CreateCustomer(username, password string, rate int64) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.Username == username {
			return nil, domain.ErrConflict
		}
	}
	a := domain.Account{
		ID:        m.nextAcct,
		Username:  username,
		Password:  password,
		Role:      domain.RoleCustomer,
		Rate:      rate,
		CreatedAt: time.Now(),
	}
	m.nextAcct++
	m.accounts[a.ID] = a
	return &a, nil
}

func (m *Memory) ListCustomers() ([]domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Account, 0, len(m.accounts))
	for _, a := range m.accounts {
		if a.Role == domain.RoleCustomer {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) DeleteAccount(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.records[:0]
	for _, r := range m.records {
		if r.UserID != id {
			kept = append(kept, r)
		}
	}
	m.records = kept
	delete(m.accounts, id)
	return nil
}

func (m *Memory) AddDeliveryRecord(userID int64, quantity float64, date domain.Date) (*domain.DeliveryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	// NUMERIC(10,2) rounds in Postgres; mirror it through decimal so the
	// fake agrees (float math alone rounds 1.555 the wrong way).
	rounded, _ := decimal.NewFromFloat(quantity).Round(2).Float64()
	rec := domain.DeliveryRecord{
		ID:        m.nextRec,
		UserID:    userID,
		Quantity:  rounded,
		Date:      date,
		CreatedAt: time.Now(),
	}
	m.nextRec++
	m.records = append(m.records, rec)
	return &rec, nil
}

func (m *Memory) ListDeliveryRecords(userID int64) ([]domain.DeliveryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.DeliveryRecord
	for _, r := range m.records {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date.Time)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}
