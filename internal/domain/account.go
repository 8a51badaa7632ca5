package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrAccountNotFound indicates that the account is not found.
	ErrAccountNotFound = errors.New("account not found")
	// ErrDepositTooSmall indicates that the initial deposit is below the product minimum.
	ErrDepositTooSmall = errors.New("initial deposit too small")
)

// Account holds a customer balance for one product.
type Account struct {
	ID        int32       `json:"id"`
	Owner     string      `json:"owner"`
	Type      AccountType `json:"type"`
	Balance   string      `json:"balance"`
	Maturity  *time.Time  `json:"maturity,omitempty"` // certificate_of_deposit only
	CreatedAt time.Time   `json:"created_at"`
}

// Number returns the caller-facing account number of the account.
func (a Account) Number() string {
	return AccountNumber(a.ID)
}

// AccountNumber formats an account id as a zero-padded 10 digit account number.
func AccountNumber(id int32) string {
	return fmt.Sprintf("%010d", id)
}
