package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/congo-pay/wallet_ledger/internal/money"
)

var (
	// ErrWalletNotFound occurs when a referenced wallet id does not exist.
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrInsufficientFunds occurs when a debit would leave the sender's
	// balance below 0.00.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrConflict indicates a uniqueness violation, e.g. a duplicate wallet name.
	ErrConflict = errors.New("conflict")

	// ErrBalanceLimit occurs when a credit would push a balance above money.Max.
	// It is also an invalid amount from the caller's point of view.
	ErrBalanceLimit = fmt.Errorf("balance limit exceeded: %w", money.ErrInvalidAmount)

	errWalletNotLocked = errors.New("wallet not locked in this unit of work")
)

// Kind is the type of a ledger entry.
type Kind string

const (
	KindDeposit    Kind = "deposit"
	KindWithdrawal Kind = "withdrawal"
)

// Order selects how ListOperations sorts its result.
type Order string

const (
	// OrderDefault is insertion order (ascending operation id).
	OrderDefault  Order = ""
	OrderDateAsc  Order = "date"
	OrderDateDesc Order = "-date"
)

// Wallet is a named account with a non-negative balance.
type Wallet struct {
	ID              int64        `json:"id"`
	Name            string       `json:"name"`
	ClientFirstname string       `json:"client_firstname"`
	ClientSurname   string       `json:"client_surname"`
	Balance         money.Amount `json:"balance"`
}

// WalletInput carries the fields needed to provision a wallet.
type WalletInput struct {
	Name            string
	ClientFirstname string
	ClientSurname   string
}

// WalletPatch is a partial update; nil fields are left untouched.
type WalletPatch struct {
	Name            *string
	ClientFirstname *string
	ClientSurname   *string
}

// Operation is an immutable ledger entry.
type Operation struct {
	ID       int64        `json:"id"`
	Kind     Kind         `json:"kind"`
	WalletID int64        `json:"wallet_id"`
	Amount   money.Amount `json:"amount"`
	Date     time.Time    `json:"date"`
}

// OperationFilter narrows ListOperations. Zero values mean "all kinds" and
// default order.
type OperationFilter struct {
	Kind  Kind
	Order Order
}

// Store defines the contract implemented by ledger backends (Postgres, memory).
type Store interface {
	GetWallet(ctx context.Context, id int64) (Wallet, error)
	ListWallets(ctx context.Context) ([]Wallet, error)
	CreateWallet(ctx context.Context, in WalletInput) (Wallet, error)
	UpdateWallet(ctx context.Context, id int64, patch WalletPatch) (Wallet, error)
	DeleteWallet(ctx context.Context, id int64) error

	ListOperations(ctx context.Context, walletID int64, filter OperationFilter) ([]Operation, error)

	// WithinTx runs fn as one atomic unit. Returning an error from fn, or
	// cancelling ctx, rolls back every change made through tx.
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the balance-mutating view of the store inside an atomic unit.
type Tx interface {
	// LockWallets checks that every id exists and takes exclusive locks on
	// them in ascending id order. Duplicate ids are allowed.
	LockWallets(ctx context.Context, ids ...int64) error

	// AdjustBalance applies delta to a locked wallet and returns the new
	// balance. A negative result is returned as is; callers decide.
	AdjustBalance(ctx context.Context, walletID int64, delta money.Amount) (money.Amount, error)

	// CreateOperation records an operation on a locked wallet and returns it
	// with the id and date it will carry once committed.
	CreateOperation(ctx context.Context, kind Kind, walletID int64, amount money.Amount) (Operation, error)
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindDeposit || k == KindWithdrawal
}

// Valid reports whether o is a known order.
func (o Order) Valid() bool {
	return o == OrderDefault || o == OrderDateAsc || o == OrderDateDesc
}
