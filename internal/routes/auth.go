package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/wallet_ledger/internal/auth"
)

// RegisterAuthRoutes wires the token endpoint.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, rateLimiter fiber.Handler) {
	if rateLimiter != nil {
		r.Post("/token", rateLimiter, h.Token)
		return
	}
	r.Post("/token", h.Token)
}
