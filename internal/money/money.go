package money

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits carried by every Amount.
const Scale = 2

var (
	// ErrInvalidAmount is returned for amounts that are unparseable, not
	// strictly positive, or larger than Max.
	ErrInvalidAmount = errors.New("invalid amount")

	// Max is the largest amount (and the largest balance) the ledger accepts.
	Max = Amount{d: decimal.RequireFromString("9999999.99")}

	// Zero is 0.00.
	Zero = Amount{d: decimal.Zero}
)

// Amount is a fixed-point decimal with exactly two fractional digits.
type Amount struct {
	d decimal.Decimal
}

// Parse interprets s as a decimal literal, floors it to two fractional digits
// and checks 0.00 < amount <= Max.
func Parse(s string) (Amount, error) {
	raw, err := parseDecimal(s)
	if err != nil {
		return Amount{}, err
	}
	a := Amount{d: raw.RoundFloor(Scale)}
	if err := a.ValidateTransferable(); err != nil {
		return Amount{}, err
	}
	return a, nil
}

// ParseBalance parses a stored balance. Balances are not floored and may be zero.
func ParseBalance(s string) (Amount, error) {
	raw, err := parseDecimal(s)
	if err != nil {
		return Amount{}, err
	}
	if raw.Exponent() < -Scale && !raw.Equal(raw.Round(Scale)) {
		return Amount{}, fmt.Errorf("%w: %q has more than %d fractional digits", ErrInvalidAmount, s, Scale)
	}
	return Amount{d: raw.Round(Scale)}, nil
}

// MustParse is ParseBalance that panics; meant for constants and tests.
func MustParse(s string) Amount {
	a, err := ParseBalance(s)
	if err != nil {
		panic(err)
	}
	return a
}

func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Decimal{}, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q is not a decimal number", ErrInvalidAmount, s)
	}
	return d, nil
}

// ValidateTransferable reports whether a can be deposited or transferred.
func (a Amount) ValidateTransferable() error {
	if !a.d.IsPositive() {
		return fmt.Errorf("%w: must be greater than 0.00", ErrInvalidAmount)
	}
	if a.d.GreaterThan(Max.d) {
		return fmt.Errorf("%w: must not exceed %s", ErrInvalidAmount, Max)
	}
	return nil
}

func (a Amount) Add(b Amount) Amount { return Amount{d: a.d.Add(b.d)} }
func (a Amount) Sub(b Amount) Amount { return Amount{d: a.d.Sub(b.d)} }
func (a Amount) Neg() Amount         { return Amount{d: a.d.Neg()} }

// Cmp compares exactly: -1 if a < b, 0 if equal, +1 if a > b.
func (a Amount) Cmp(b Amount) int     { return a.d.Cmp(b.d) }
func (a Amount) Equal(b Amount) bool  { return a.d.Equal(b.d) }
func (a Amount) IsNegative() bool     { return a.d.IsNegative() }
func (a Amount) IsZero() bool         { return a.d.IsZero() }
func (a Amount) GreaterThanMax() bool { return a.d.GreaterThan(Max.d) }

// String renders the amount with exactly two fractional digits.
func (a Amount) String() string {
	return a.d.StringFixed(Scale)
}

// MarshalJSON encodes the amount as a string, e.g. "400.00".
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts a JSON string or number holding a stored value:
// 0.00 <= amount <= Max with at most two fractional digits. Request amounts
// go through Parse instead.
func (a *Amount) UnmarshalJSON(data []byte) error {
	literal, err := Literal(data)
	if err != nil {
		return err
	}
	parsed, err := ParseBalance(literal)
	if err != nil {
		return err
	}
	if parsed.IsNegative() || parsed.GreaterThanMax() {
		return fmt.Errorf("%w: %s is outside 0.00..%s", ErrInvalidAmount, parsed, Max)
	}
	*a = parsed
	return nil
}

// Literal extracts the decimal literal from a raw JSON value, which may be a
// number or a string holding a number.
func Literal(raw []byte) (string, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return "", fmt.Errorf("%w: missing", ErrInvalidAmount)
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal([]byte(trimmed), &s); err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidAmount, err)
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal([]byte(trimmed), &n); err != nil {
		return "", fmt.Errorf("%w: %s is not a number", ErrInvalidAmount, trimmed)
	}
	return n.String(), nil
}
