package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/wallet_ledger/internal/wallet"
)

// RegisterWalletRoutes wires wallet CRUD endpoints.
func RegisterWalletRoutes(r fiber.Router, h *wallet.Handler) {
	r.Get("/wallets", h.List)
	r.Post("/wallets", h.Create)
	r.Get("/wallets/:walletId", h.Get)
	r.Patch("/wallets/:walletId", h.Update)
	r.Delete("/wallets/:walletId", h.Delete)
}
