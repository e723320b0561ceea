package payments

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/wallet_ledger/internal/money"
	"github.com/congo-pay/wallet_ledger/internal/validation"
)

// Handler exposes deposit and transfer endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a payment handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type amountRequest struct {
	Amount json.RawMessage `json:"amount"`
}

func parseAmountBody(c *fiber.Ctx) (money.Amount, error) {
	var req amountRequest
	if err := c.BodyParser(&req); err != nil {
		return money.Amount{}, &validation.Error{Kind: validation.ErrInvalidRequest, Details: []string{"body must be a JSON object with an amount"}}
	}
	return validation.ParseAmountJSON(req.Amount)
}

type depositResponse struct {
	WalletID    int64        `json:"wallet_id"`
	Amount      money.Amount `json:"amount"`
	Balance     money.Amount `json:"balance"`
	OperationID int64        `json:"operation_id"`
	CompletedAt time.Time    `json:"completed_at"`
}

// Deposit credits the wallet named in the path.
func (h *Handler) Deposit(c *fiber.Ctx) error {
	walletID, err := validation.ParseWalletID(c.Params("walletId"))
	if err != nil {
		return err
	}
	amount, err := parseAmountBody(c)
	if err != nil {
		return err
	}

	res, err := h.service.Deposit(c.UserContext(), walletID, amount)
	if err != nil {
		return err
	}

	return c.Status(http.StatusOK).JSON(depositResponse{
		WalletID:    res.WalletID,
		Amount:      amount,
		Balance:     res.Balance,
		OperationID: res.OperationID,
		CompletedAt: res.CompletedAt,
	})
}

type transferResponse struct {
	SenderID        int64        `json:"sender_id"`
	ReceiverID      int64        `json:"receiver_id"`
	Amount          money.Amount `json:"amount"`
	SenderBalance   money.Amount `json:"sender_balance"`
	ReceiverBalance money.Amount `json:"receiver_balance"`
	WithdrawalID    int64        `json:"withdrawal_id"`
	DepositID       int64        `json:"deposit_id"`
	CompletedAt     time.Time    `json:"completed_at"`
}

// Transfer moves money from :senderId to :receiverId.
func (h *Handler) Transfer(c *fiber.Ctx) error {
	senderID, err := validation.ParseWalletID(c.Params("senderId"))
	if err != nil {
		return err
	}
	receiverID, err := validation.ParseWalletID(c.Params("receiverId"))
	if err != nil {
		return err
	}
	amount, err := parseAmountBody(c)
	if err != nil {
		return err
	}

	res, err := h.service.Transfer(c.UserContext(), TransferInput{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Amount:     amount,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusOK).JSON(transferResponse{
		SenderID:        senderID,
		ReceiverID:      receiverID,
		Amount:          amount,
		SenderBalance:   res.SenderBalance,
		ReceiverBalance: res.ReceiverBalance,
		WithdrawalID:    res.WithdrawalID,
		DepositID:       res.DepositID,
		CompletedAt:     res.CompletedAt,
	})
}
