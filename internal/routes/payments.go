package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/wallet_ledger/internal/operations"
	"github.com/congo-pay/wallet_ledger/internal/payments"
)

// RegisterPaymentRoutes wires deposit and transfer endpoints.
func RegisterPaymentRoutes(r fiber.Router, h *payments.Handler) {
	r.Post("/wallets/:walletId/deposits", h.Deposit)
	r.Post("/wallets/:senderId/withdrawals/:receiverId", h.Transfer)
}

// RegisterOperationRoutes wires the operation history endpoint.
func RegisterOperationRoutes(r fiber.Router, h *operations.Handler) {
	r.Get("/operations/:walletId/:kind?", h.List)
}
