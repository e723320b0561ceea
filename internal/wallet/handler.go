package wallet

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/wallet_ledger/internal/validation"
)

// Handler exposes wallet HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a wallet HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func badBody() error {
	return &validation.Error{Kind: validation.ErrInvalidRequest, Details: []string{"body must be a JSON object"}}
}

// List returns all wallets.
func (h *Handler) List(c *fiber.Ctx) error {
	wallets, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(wallets)
}

// Create provisions a wallet.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req CreateInput
	if err := c.BodyParser(&req); err != nil {
		return badBody()
	}
	w, err := h.service.Create(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(w)
}

// Get returns one wallet with its balance.
func (h *Handler) Get(c *fiber.Ctx) error {
	id, err := validation.ParseWalletID(c.Params("walletId"))
	if err != nil {
		return err
	}
	w, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(w)
}

// Update applies a partial update.
func (h *Handler) Update(c *fiber.Ctx) error {
	id, err := validation.ParseWalletID(c.Params("walletId"))
	if err != nil {
		return err
	}
	var req UpdateInput
	if err := c.BodyParser(&req); err != nil {
		return badBody()
	}
	w, err := h.service.Update(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(w)
}

// Delete removes a wallet.
func (h *Handler) Delete(c *fiber.Ctx) error {
	id, err := validation.ParseWalletID(c.Params("walletId"))
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"id": id, "status": "deleted"})
}
