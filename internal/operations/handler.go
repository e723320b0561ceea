package operations

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/wallet_ledger/internal/ledger"
	"github.com/congo-pay/wallet_ledger/internal/validation"
)

const maxPageSize = 100

// Handler exposes the operation history endpoint.
type Handler struct {
	service *Service
}

// NewHandler constructs an operations handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type listResponse struct {
	Count    int                `json:"count"`
	Page     int                `json:"page,omitempty"`
	PageSize int                `json:"page_size,omitempty"`
	Results  []ledger.Operation `json:"results"`
}

// List serves GET /operations/:walletId/:kind?. The kind may also come from
// ?kind=, the order from ?order= or ?filter=.
func (h *Handler) List(c *fiber.Ctx) error {
	walletID, err := validation.ParseWalletID(c.Params("walletId"))
	if err != nil {
		return err
	}

	q := Query{
		Kinds: []string{c.Params("kind"), c.Query("kind")},
		Order: c.Query("order", c.Query("filter")),
	}
	ops, err := h.service.Find(c.UserContext(), walletID, q)
	if err != nil {
		return err
	}

	page, pageSize, err := pagination(c)
	if err != nil {
		return err
	}

	resp := listResponse{Count: len(ops), Results: ops}
	if pageSize > 0 {
		resp.Page, resp.PageSize = page, pageSize
		resp.Results = slicePage(ops, page, pageSize)
	}
	return c.Status(http.StatusOK).JSON(resp)
}

func pagination(c *fiber.Ctx) (page, pageSize int, err error) {
	var v validation.Validator
	page, pageSize = 1, 0

	if raw := c.Query("page"); raw != "" {
		n, convErr := strconv.Atoi(raw)
		v.Check(convErr == nil && n >= 1, "page must be a positive integer")
		page = n
	}
	if raw := c.Query("page_size"); raw != "" {
		n, convErr := strconv.Atoi(raw)
		v.Check(convErr == nil && n >= 1 && n <= maxPageSize, "page_size must be between 1 and 100")
		pageSize = n
	} else if c.Query("page") != "" {
		pageSize = maxPageSize
	}
	return page, pageSize, v.Err()
}

// slicePage returns page (1-based) of ops. Pages past the end are empty; the
// bound is checked before multiplying so huge page numbers cannot overflow.
func slicePage(ops []ledger.Operation, page, pageSize int) []ledger.Operation {
	pages := (len(ops) + pageSize - 1) / pageSize
	if page > pages {
		return []ledger.Operation{}
	}
	start := (page - 1) * pageSize
	end := start + pageSize
	if end > len(ops) {
		end = len(ops)
	}
	return ops[start:end]
}
