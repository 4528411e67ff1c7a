package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/dudhwala/milkbook/internal/domain"
)

// Store is the persistence boundary for accounts and delivery records.
// Lookups return (nil, nil) on a miss; only real failures are errors.
type Store interface {
	GetAccount(id int64) (*domain.Account, error)
	GetAccountByUsername(username string) (*domain.Account, error)
	CreateCustomer(username, password string, rate int64) (*domain.Account, error)
	ListCustomers() ([]domain.Account, error)
	DeleteAccount(id int64) error
	AddDeliveryRecord(userID int64, quantity float64, date domain.Date) (*domain.DeliveryRecord, error)
	ListDeliveryRecords(userID int64) ([]domain.DeliveryRecord, error)
}

type Repos struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Repos { return &Repos{db: db} }

var _ Store = (*Repos)(nil)

func (r *Repos) GetAccount(id int64) (*domain.Account, error) {
	var a domain.Account
	err := r.db.Get(&a, `SELECT id, username, password, role, rate, created_at FROM users WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Repos) GetAccountByUsername(username string) (*domain.Account, error) {
	var a domain.Account
	err := r.db.Get(&a, `SELECT id, username, password, role, rate, created_at FROM users WHERE username = $1`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateCustomer relies on the UNIQUE constraint on users.username to close
// the check-then-insert race: a concurrent duplicate surfaces here as
// domain.ErrConflict no matter what the caller checked beforehand.
func (r *Repos) CreateCustomer(username, password string, rate int64) (*domain.Account, error) {
	var a domain.Account
	err := r.db.Get(&a, `
		INSERT INTO users (username, password, role, rate)
		VALUES ($1, $2, $3, $4)
		RETURNING id, username, password, role, rate, created_at`,
		username, password, domain.RoleCustomer, rate)
	if isUniqueViolation(err) {
		return nil, domain.ErrConflict
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Repos) ListCustomers() ([]domain.Account, error) {
	var out []domain.Account
	err := r.db.Select(&out, `SELECT id, username, password, role, rate, created_at FROM users WHERE role = $1 ORDER BY id`, domain.RoleCustomer)
	return out, err
}

// DeleteAccount removes the account's records first, then the account, in
// one transaction. Deleting an unknown id is a no-op.
func (r *Repos) DeleteAccount(id int64) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM milk_records WHERE user_id = $1`, id); err != nil {
		return fmt.Errorf("delete records: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM users WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return tx.Commit()
}

func (r *Repos) AddDeliveryRecord(userID int64, quantity float64, date domain.Date) (*domain.DeliveryRecord, error) {
	var rec domain.DeliveryRecord
	err := r.db.Get(&rec, `
		INSERT INTO milk_records (user_id, quantity, date)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, quantity, date, created_at`,
		userID, quantity, date)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *Repos) ListDeliveryRecords(userID int64) ([]domain.DeliveryRecord, error) {
	var out []domain.DeliveryRecord
	err := r.db.Select(&out, `
		SELECT id, user_id, quantity, date, created_at FROM milk_records
		WHERE user_id = $1
		ORDER BY date DESC, id DESC`, userID)
	return out, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
