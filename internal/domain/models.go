package domain

import "time"

const (
	RoleOwner    = "owner"
	RoleCustomer = "customer"
)

// Account is a user row. The owner is a synthetic account (id 0) that is
// never persisted; customers live in the users table.
type Account struct {
	ID        int64     `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	Password  string    `db:"password" json:"password"`
	Role      string    `db:"role" json:"role"`
	Rate      int64     `db:"rate" json:"rate"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// CheckPassword compares a login attempt against the stored credential.
// Storage is plaintext to match the legacy data; callers go through this
// method so a hashed scheme can replace the comparison in one place.
func (a *Account) CheckPassword(password string) bool {
	return a.Password != "" && a.Password == password
}

// OwnerAccount returns the synthetic owner identity handed out on a
// successful PIN login. The password is always empty on the wire.
func OwnerAccount() Account {
	return Account{
		ID:        0,
		Username:  "Owner",
		Role:      RoleOwner,
		CreatedAt: time.Now(),
	}
}

// DeliveryRecord is one dated milk entry for a customer account.
// Records are append-only; they go away only when their account is deleted.
type DeliveryRecord struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"userId"`
	Quantity  float64   `db:"quantity" json:"quantity"`
	Date      Date      `db:"date" json:"date"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Stats is the derived pair for an account: total liters delivered and the
// bill at the account's current rate.
type Stats struct {
	TotalMilk float64 `json:"totalMilk"`
	TotalBill float64 `json:"totalBill"`
}
