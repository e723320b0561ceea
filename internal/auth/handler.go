package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes the token endpoint.
type Handler struct {
	svc    *Service
	logger *slog.Logger
}

func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

type tokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Token validates credentials and returns the caller's token.
func (h *Handler) Token(c *fiber.Ctx) error {
	var req tokenRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "body must be a JSON object with username and password")
	}
	token, err := h.svc.IssueToken(c.UserContext(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			h.logger.Warn("token refused", slog.String("username", req.Username), slog.String("ip", c.IP()))
			return fiber.NewError(http.StatusUnauthorized, ErrInvalidCredentials.Error())
		}
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"token": token})
}
