package operations

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/congo-pay/wallet_ledger/internal/httperr"
	"github.com/congo-pay/wallet_ledger/internal/ledger"
	"github.com/congo-pay/wallet_ledger/internal/logging"
	"github.com/congo-pay/wallet_ledger/internal/money"
	"github.com/congo-pay/wallet_ledger/internal/payments"
	"github.com/congo-pay/wallet_ledger/internal/validation"
)

// seed builds wallets A (500.00) and B, then runs a deposit and two transfers
// so A holds one deposit and two withdrawals.
func seed(t *testing.T) (ledger.Store, int64, int64) {
	t.Helper()
	ctx := context.Background()
	store := ledger.NewInMemory()
	a, err := store.CreateWallet(ctx, ledger.WalletInput{Name: "A"})
	require.NoError(t, err)
	b, err := store.CreateWallet(ctx, ledger.WalletInput{Name: "B"})
	require.NoError(t, err)

	engine := payments.NewService(store, nil, logging.Discard())
	_, err = engine.Deposit(ctx, a.ID, money.MustParse("500.00"))
	require.NoError(t, err)
	_, err = engine.Transfer(ctx, payments.TransferInput{SenderID: a.ID, ReceiverID: b.ID, Amount: money.MustParse("100.00")})
	require.NoError(t, err)
	_, err = engine.Transfer(ctx, payments.TransferInput{SenderID: a.ID, ReceiverID: b.ID, Amount: money.MustParse("25.00")})
	require.NoError(t, err)
	return store, a.ID, b.ID
}

func TestListFiltersAndOrders(t *testing.T) {
	store, a, _ := seed(t)
	svc := NewService(store)
	ctx := context.Background()

	ops, err := svc.List(ctx, a, "withdrawal", "-date")
	require.NoError(t, err)
	require.Len(t, ops, 2)
	for _, op := range ops {
		assert.Equal(t, ledger.KindWithdrawal, op.Kind)
		assert.Equal(t, a, op.WalletID)
	}
	assert.False(t, ops[0].Date.Before(ops[1].Date))
	assert.Greater(t, ops[0].ID, ops[1].ID)

	all, err := svc.List(ctx, a, "", "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	again, err := svc.List(ctx, a, "", "")
	require.NoError(t, err)
	assert.Equal(t, all, again)
}

func TestListErrorPrecedence(t *testing.T) {
	store, a, _ := seed(t)
	svc := NewService(store)
	ctx := context.Background()

	_, err := svc.List(ctx, 999, "bogus", "bogus")
	assert.ErrorIs(t, err, ledger.ErrWalletNotFound)

	_, err = svc.List(ctx, a, "refund", "")
	assert.ErrorIs(t, err, validation.ErrInvalidFilter)

	_, err = svc.List(ctx, a, "", "amount")
	assert.ErrorIs(t, err, validation.ErrInvalidFilter)

	_, err = svc.Find(ctx, 999, Query{Kinds: []string{"deposit", "withdrawal"}})
	assert.ErrorIs(t, err, ledger.ErrWalletNotFound)

	_, err = svc.Find(ctx, a, Query{Kinds: []string{"deposit", "withdrawal"}})
	assert.ErrorIs(t, err, validation.ErrInvalidFilter)

	ops, err := svc.Find(ctx, a, Query{Kinds: []string{"deposit", "deposit"}})
	require.NoError(t, err)
	assert.Len(t, ops, 1)
}

func get(t *testing.T, app *fiber.App, path string) (int, map[string]any) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	decoded := map[string]any{}
	require.NoError(t, json.Unmarshal(raw, &decoded), string(raw))
	return resp.StatusCode, decoded
}

func TestHandlerList(t *testing.T) {
	store, a, b := seed(t)
	app := fiber.New(fiber.Config{ErrorHandler: httperr.Handler(logging.Discard())})
	app.Get("/operations/:walletId/:kind?", NewHandler(NewService(store)).List)

	status, body := get(t, app, fmt.Sprintf("/operations/%d/withdrawal?filter=-date", a))
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, float64(2), body["count"])
	results := body["results"].([]any)
	first := results[0].(map[string]any)
	assert.Equal(t, "25.00", first["amount"])
	assert.Equal(t, "withdrawal", first["kind"])

	status, body = get(t, app, fmt.Sprintf("/operations/%d?kind=deposit", b))
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, float64(2), body["count"])

	status, body = get(t, app, fmt.Sprintf("/operations/%d?page=2&page_size=2", a))
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, float64(3), body["count"])
	assert.Len(t, body["results"], 1)

	status, body = get(t, app, fmt.Sprintf("/operations/%d/transfer", a))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid_filter", body["error"])

	status, body = get(t, app, fmt.Sprintf("/operations/%d?order=size", a))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid_filter", body["error"])

	status, body = get(t, app, "/operations/999/transfer")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "wallet_not_found", body["error"])

	status, body = get(t, app, fmt.Sprintf("/operations/%d?page=0", a))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid_request", body["error"])

	status, body = get(t, app, fmt.Sprintf("/operations/%d/deposit?kind=withdrawal", a))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid_filter", body["error"])

	status, body = get(t, app, "/operations/999/deposit?kind=withdrawal")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "wallet_not_found", body["error"])
}

func TestHandlerListPagesPastTheEnd(t *testing.T) {
	store, a, _ := seed(t)
	app := fiber.New(fiber.Config{ErrorHandler: httperr.Handler(logging.Discard())})
	app.Use(recover.New())
	app.Get("/operations/:walletId/:kind?", NewHandler(NewService(store)).List)

	for _, page := range []string{"3", "9223372036854775807"} {
		status, body := get(t, app, fmt.Sprintf("/operations/%d?page=%s&page_size=100", a, page))
		require.Equal(t, http.StatusOK, status, body)
		assert.Equal(t, float64(3), body["count"])
		assert.Empty(t, body["results"])
	}

	status, body := get(t, app, fmt.Sprintf("/operations/%d?page=99999999999999999999", a))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid_request", body["error"])
}
