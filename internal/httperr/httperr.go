// Package httperr maps domain errors onto HTTP responses.
package httperr

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/wallet_ledger/internal/ledger"
	"github.com/congo-pay/wallet_ledger/internal/validation"
)

// Error is the rendered form of any failure.
type Error struct {
	Status  int      `json:"-"`
	Code    string   `json:"error"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

func (e *Error) Error() string { return e.Message }

// FromError classifies err. Unknown errors become a generic 500 so internal
// details never leak to clients.
func FromError(err error) *Error {
	var (
		rendered *Error
		fiberErr *fiber.Error
	)
	switch {
	case err == nil:
		return nil
	case errors.As(err, &rendered):
		return rendered
	case errors.Is(err, ledger.ErrBalanceLimit):
		return &Error{Status: http.StatusBadRequest, Code: "balance_limit_exceeded", Message: "resulting balance would exceed 9999999.99"}
	case errors.Is(err, validation.ErrInvalidAmount):
		return withDetails(http.StatusBadRequest, "invalid_amount", "amount must be a number greater than 0.00 and at most 9999999.99", err)
	case errors.Is(err, validation.ErrInvalidFilter):
		return withDetails(http.StatusBadRequest, "invalid_filter", "unrecognised filter value", err)
	case errors.Is(err, validation.ErrInvalidRequest):
		return withDetails(http.StatusBadRequest, "invalid_request", "malformed request", err)
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return &Error{Status: http.StatusBadRequest, Code: "insufficient_funds", Message: "insufficient funds"}
	case errors.Is(err, ledger.ErrWalletNotFound):
		return &Error{Status: http.StatusNotFound, Code: "wallet_not_found", Message: "wallet not found"}
	case errors.Is(err, ledger.ErrConflict):
		return &Error{Status: http.StatusConflict, Code: "conflict", Message: "a wallet with this name already exists"}
	case errors.As(err, &fiberErr):
		return &Error{Status: fiberErr.Code, Code: codeFor(fiberErr.Code), Message: fiberErr.Message}
	default:
		return &Error{Status: http.StatusInternalServerError, Code: "internal_error", Message: "internal server error"}
	}
}

func withDetails(status int, code, message string, err error) *Error {
	return &Error{Status: status, Code: code, Message: message, Details: validation.Details(err)}
}

func codeFor(status int) string {
	return strings.ReplaceAll(strings.ToLower(http.StatusText(status)), " ", "_")
}

// New builds an error with an explicit status.
func New(status int, message string) *Error {
	return &Error{Status: status, Code: codeFor(status), Message: message}
}

// Handler is the fiber ErrorHandler for the application.
func Handler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		rendered := FromError(err)
		if rendered.Status >= http.StatusInternalServerError {
			logger.Error("unhandled error",
				slog.String("method", c.Method()),
				slog.String("path", c.Path()),
				slog.Any("error", err))
		}
		return c.Status(rendered.Status).JSON(rendered)
	}
}
