package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/wallet_ledger/internal/auth"
)

const usernameLocal = "username"

// Authenticator resolves an API token to a username, failing with
// auth.ErrTokenNotFound for unknown tokens.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (string, error)
}

// TokenAuth requires "Authorization: Token <key>" (or "Bearer <key>") and
// stores the resolved username in the request locals.
func TokenAuth(authenticator Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := tokenFromHeader(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			return fiber.NewError(http.StatusUnauthorized, "authentication credentials were not provided")
		}
		username, err := authenticator.Authenticate(c.UserContext(), token)
		if err != nil {
			if errors.Is(err, auth.ErrTokenNotFound) {
				return fiber.NewError(http.StatusUnauthorized, "invalid token")
			}
			return err
		}
		c.Locals(usernameLocal, username)
		return c.Next()
	}
}

func tokenFromHeader(header string) string {
	parts := strings.Fields(header)
	if len(parts) != 2 {
		return ""
	}
	switch strings.ToLower(parts[0]) {
	case "token", "bearer":
		return parts[1]
	default:
		return ""
	}
}

// UsernameFrom returns the user set by TokenAuth, or "".
func UsernameFrom(c *fiber.Ctx) string {
	name, _ := c.Locals(usernameLocal).(string)
	return name
}
