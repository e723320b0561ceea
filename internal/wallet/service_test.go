package wallet

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/wallet_ledger/internal/httperr"
	"github.com/congo-pay/wallet_ledger/internal/ledger"
	"github.com/congo-pay/wallet_ledger/internal/logging"
	"github.com/congo-pay/wallet_ledger/internal/validation"
)

func TestServiceCreateGetUpdateDelete(t *testing.T) {
	svc := NewService(ledger.NewInMemory(), logging.Discard())
	ctx := context.Background()

	w, err := svc.Create(ctx, CreateInput{Name: "  savings ", ClientFirstname: "Ada", ClientSurname: "Lovelace"})
	if err != nil {
		t.Fatalf("create wallet: %v", err)
	}
	if w.Name != "savings" || w.Balance.String() != "0.00" {
		t.Fatalf("unexpected wallet %+v", w)
	}

	fetched, err := svc.Get(ctx, w.ID)
	if err != nil {
		t.Fatalf("get wallet: %v", err)
	}
	if fetched.ID != w.ID {
		t.Fatalf("expected wallet ID %d, got %d", w.ID, fetched.ID)
	}

	if _, err := svc.Create(ctx, CreateInput{Name: "savings", ClientFirstname: "B", ClientSurname: "C"}); !errors.Is(err, ledger.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	first := "Augusta"
	updated, err := svc.Update(ctx, w.ID, UpdateInput{ClientFirstname: &first})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ClientFirstname != "Augusta" || updated.Name != "savings" {
		t.Fatalf("unexpected update result %+v", updated)
	}

	list, err := svc.List(ctx)
	if err != nil || len(list) != 1 || list[0].Name != "savings" {
		t.Fatalf("unexpected list %+v (%v)", list, err)
	}

	if err := svc.Delete(ctx, w.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(ctx, w.ID); !errors.Is(err, ledger.ErrWalletNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestServiceValidation(t *testing.T) {
	svc := NewService(ledger.NewInMemory(), logging.Discard())
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Name: " ", ClientFirstname: "", ClientSurname: strings.Repeat("x", 256)})
	if !errors.Is(err, validation.ErrInvalidRequest) {
		t.Fatalf("expected invalid request, got %v", err)
	}
	if got := len(validation.Details(err)); got != 3 {
		t.Fatalf("expected 3 messages, got %d: %v", got, validation.Details(err))
	}

	w, _ := svc.Create(ctx, CreateInput{Name: "main", ClientFirstname: "A", ClientSurname: "B"})
	if _, err := svc.Update(ctx, w.ID, UpdateInput{}); !errors.Is(err, validation.ErrInvalidRequest) {
		t.Fatalf("expected empty patch to be rejected, got %v", err)
	}
	blank := ""
	if _, err := svc.Update(ctx, w.ID, UpdateInput{Name: &blank}); !errors.Is(err, validation.ErrInvalidRequest) {
		t.Fatalf("expected blank name to be rejected, got %v", err)
	}
}

func TestHandlerRoutes(t *testing.T) {
	h := NewHandler(NewService(ledger.NewInMemory(), logging.Discard()))
	app := fiber.New(fiber.Config{ErrorHandler: httperr.Handler(logging.Discard())})
	app.Get("/wallets", h.List)
	app.Post("/wallets", h.Create)
	app.Get("/wallets/:walletId", h.Get)
	app.Patch("/wallets/:walletId", h.Update)
	app.Delete("/wallets/:walletId", h.Delete)

	do := func(method, path, body string) int {
		t.Helper()
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("%s %s: %v", method, path, err)
		}
		resp.Body.Close()
		return resp.StatusCode
	}

	body := `{"name":"main","client_firstname":"Ada","client_surname":"Lovelace"}`
	if got := do(http.MethodPost, "/wallets", body); got != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", got)
	}
	if got := do(http.MethodPost, "/wallets", body); got != http.StatusConflict {
		t.Fatalf("duplicate: expected 409, got %d", got)
	}
	if got := do(http.MethodGet, "/wallets/1", ""); got != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", got)
	}
	if got := do(http.MethodGet, "/wallets/x", ""); got != http.StatusBadRequest {
		t.Fatalf("bad id: expected 400, got %d", got)
	}
	if got := do(http.MethodPatch, "/wallets/1", `{"client_surname":"Byron"}`); got != http.StatusOK {
		t.Fatalf("patch: expected 200, got %d", got)
	}
	if got := do(http.MethodPatch, "/wallets/2", `{"client_surname":"Byron"}`); got != http.StatusNotFound {
		t.Fatalf("patch missing: expected 404, got %d", got)
	}
	if got := do(http.MethodGet, "/wallets", ""); got != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", got)
	}
	if got := do(http.MethodDelete, "/wallets/1", ""); got != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", got)
	}
	if got := do(http.MethodGet, "/wallets/1", ""); got != http.StatusNotFound {
		t.Fatalf("get deleted: expected 404, got %d", got)
	}
}
