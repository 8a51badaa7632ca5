// Package domain provides definitions of all entities.
package domain

import "errors"

var (
	// ErrAccountTypeNotFound indicates that the account type is not found.
	ErrAccountTypeNotFound = errors.New("account type not found")
	// ErrAccountTypeExists indicates that an account type with the same name already exists.
	ErrAccountTypeExists = errors.New("account type name already exists")
)

// Category classifies an account product.
type Category int32

// Account product categories.
const (
	CategoryChecking Category = iota
	CategorySavings
	CategoryMoneyMarket
	CategoryCertificateOfDeposit
)

// String implements fmt.Stringer.
func (c Category) String() string {
	switch c {
	case CategoryChecking:
		return "checking"
	case CategorySavings:
		return "savings"
	case CategoryMoneyMarket:
		return "money_market"
	case CategoryCertificateOfDeposit:
		return "certificate_of_deposit"
	}

	return "unknown"
}

// AccountType is a catalog entry describing the rules of a banking product.
// Instances are immutable once loaded.
type AccountType struct {
	ID             int32    `json:"id"`
	Name           string   `json:"name"`
	Category       Category `json:"category"`
	MinDeposit     string   `json:"min_deposit"`
	MinBalance     string   `json:"min_balance"`
	MaintenanceFee string   `json:"maintenance_fee"`
	OverdraftFee   string   `json:"overdraft_fee"`
	APY            float64  `json:"apy"`
	MaturityDays   int32    `json:"maturity_days"` // certificate_of_deposit only
}
