// Package validation holds the request checks shared by deposits, transfers
// and operation queries. Every check runs before the ledger is touched.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/congo-pay/wallet_ledger/internal/ledger"
	"github.com/congo-pay/wallet_ledger/internal/money"
)

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrInvalidAmount  = money.ErrInvalidAmount
	ErrInvalidFilter  = errors.New("invalid filter")
)

// Error carries a taxonomy sentinel plus human-readable details.
type Error struct {
	Kind    error
	Details []string
}

func (e *Error) Error() string {
	if len(e.Details) == 0 {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind, strings.Join(e.Details, "; "))
}

func (e *Error) Unwrap() error { return e.Kind }

func invalid(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Details: []string{fmt.Sprintf(format, args...)}}
}

// ParseWalletID parses a path or body wallet id. Only non-negative base-10
// integers are accepted.
func ParseWalletID(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, invalid(ErrInvalidRequest, "wallet id is required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 || strings.HasPrefix(raw, "+") {
		return 0, invalid(ErrInvalidRequest, "wallet id %q must be a non-negative integer", raw)
	}
	return id, nil
}

// ParseAmount applies the amount rules (floor to 2 places, 0 < a <= max).
func ParseAmount(raw string) (money.Amount, error) {
	a, err := money.Parse(raw)
	if err != nil {
		return money.Amount{}, &Error{Kind: ErrInvalidAmount, Details: []string{err.Error()}}
	}
	return a, nil
}

// ParseAmountJSON accepts the raw JSON value of an "amount" field, either a
// number or a numeric string.
func ParseAmountJSON(raw json.RawMessage) (money.Amount, error) {
	literal, err := money.Literal(raw)
	if err != nil {
		return money.Amount{}, &Error{Kind: ErrInvalidAmount, Details: []string{err.Error()}}
	}
	return ParseAmount(literal)
}

// ParseKind validates an optional operation kind filter.
func ParseKind(raw string) (ledger.Kind, error) {
	k := ledger.Kind(strings.TrimSpace(raw))
	if k == "" || k.Valid() {
		return k, nil
	}
	return "", invalid(ErrInvalidFilter, "kind must be %q or %q", ledger.KindDeposit, ledger.KindWithdrawal)
}

// ParseOrder validates an optional ordering.
func ParseOrder(raw string) (ledger.Order, error) {
	o := ledger.Order(strings.TrimSpace(raw))
	if o.Valid() {
		return o, nil
	}
	return "", invalid(ErrInvalidFilter, "order must be %q or %q", ledger.OrderDateAsc, ledger.OrderDateDesc)
}

// Details returns the messages attached to err, if any.
func Details(err error) []string {
	var vErr *Error
	if errors.As(err, &vErr) {
		return vErr.Details
	}
	return nil
}
