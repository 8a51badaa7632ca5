package domain

import (
	"errors"
	"time"
)

var (
	// ErrInvalidAmount indicates that the amount is not a valid decimal number.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrNonPositiveAmount indicates an attempt to move a negative or zero amount.
	ErrNonPositiveAmount = errors.New("cannot withdraw negative or zero amount of funds")
	// ErrSameAccount indicates that the source and destination accounts are the same.
	ErrSameAccount = errors.New("source and destination accounts must not be the same")
	// ErrInsufficientFunds indicates that the source balance does not cover the amount.
	// The transfer engine charges the overdraft fee before returning it.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrBelowMinimumBalance indicates that the transfer would break the product minimum balance.
	ErrBelowMinimumBalance = errors.New("insufficient minimum balance")
	// ErrMaturityNotReached indicates a withdrawal from a certificate of deposit before maturity.
	ErrMaturityNotReached = errors.New("account maturity not reached")
	// ErrContention indicates a storage-level lock conflict. The operation made no
	// changes and may be retried.
	ErrContention = errors.New("storage contention")
)

// Transaction is one immutable ledger row recording a single balance change.
// A nil SourceID marks an externally sourced credit such as interest; a nil
// DestID marks an externally destined debit such as a fee.
type Transaction struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"` // day granularity
	SourceID    *int32    `json:"source_id,omitempty"`
	DestID      *int32    `json:"dest_id,omitempty"`
	Amount      string    `json:"amount"` // always positive
	CreatedAt   time.Time `json:"created_at"`
}

// DateLayout is the canonical encoding of the day-granularity ledger dates.
const DateLayout = "2006-01-02"

// CreateTransactionParams is the input data for appending a ledger row.
type CreateTransactionParams struct {
	Description string
	Date        time.Time
	SourceID    *int32
	DestID      *int32
	Amount      string
}

// ListTransactionsParams is the input data for querying an account's ledger.
// From and To bound the date range when non-nil.
type ListTransactionsParams struct {
	AccountID int32
	From      *time.Time
	To        *time.Time
	Limit     int32
	Offset    int32
}

// TransferTxResult is the result of a committed transfer.
type TransferTxResult struct {
	Transaction Transaction `json:"transaction"`
	FromAccount Account     `json:"from_account"`
	ToAccount   Account     `json:"to_account"`
}
