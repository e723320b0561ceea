package middleware

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/congo-pay/wallet_ledger/internal/logging"
)

func setupTestApp(t *testing.T) (*fiber.App, *miniredis.Miniredis, *atomic.Int32) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}

	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		cache.Close()
		mr.Close()
	})

	calls := &atomic.Int32{}
	app := fiber.New()
	app.Use(Idempotency(cache, time.Minute, logging.Discard()))
	app.Post("/resource", func(c *fiber.Ctx) error {
		n := calls.Add(1)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"call": n})
	})
	app.Post("/failing", func(c *fiber.Ctx) error {
		calls.Add(1)
		return fiber.NewError(fiber.StatusBadRequest, "nope")
	})
	return app, mr, calls
}

func post(t *testing.T, app *fiber.App, path, key string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, path, strings.NewReader("{}"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if key != "" {
		req.Header.Set(idempotencyKeyHeader, key)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(body)
}

func TestIdempotencyWithoutHeaderPassesThrough(t *testing.T) {
	app, _, calls := setupTestApp(t)

	for i := 0; i < 2; i++ {
		status, _ := post(t, app, "/resource", "")
		if status != fiber.StatusOK {
			t.Fatalf("expected %d got %d", fiber.StatusOK, status)
		}
	}
	if calls.Load() != 2 {
		t.Fatalf("expected handler to run twice, ran %d times", calls.Load())
	}
}

func TestIdempotencyReturnsCachedResponse(t *testing.T) {
	app, _, calls := setupTestApp(t)

	status, payload := post(t, app, "/resource", "abc123")
	if status != fiber.StatusOK {
		t.Fatalf("expected status %d got %d", fiber.StatusOK, status)
	}

	// Second request is served from the cache without invoking the handler.
	status, cachedPayload := post(t, app, "/resource", "abc123")
	if status != fiber.StatusOK {
		t.Fatalf("expected cached status %d got %d", fiber.StatusOK, status)
	}
	if cachedPayload != payload {
		t.Fatalf("expected cached payload %s got %s", payload, cachedPayload)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected handler to run once, ran %d times", calls.Load())
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(cachedPayload), &decoded); err != nil {
		t.Fatalf("cached payload invalid json: %v", err)
	}

	// A different key executes again.
	post(t, app, "/resource", "other")
	if calls.Load() != 2 {
		t.Fatalf("expected a new key to reach the handler")
	}
}

func TestIdempotencyDoesNotCacheErrors(t *testing.T) {
	app, mr, calls := setupTestApp(t)

	for i := 0; i < 2; i++ {
		status, _ := post(t, app, "/failing", "k1")
		if status != fiber.StatusBadRequest {
			t.Fatalf("expected %d got %d", fiber.StatusBadRequest, status)
		}
	}
	if calls.Load() != 2 {
		t.Fatalf("expected failed requests to be retried, ran %d times", calls.Load())
	}
	if len(mr.Keys()) != 0 {
		t.Fatalf("expected reservation to be released, found %v", mr.Keys())
	}
}

func TestIdempotencyRejectsInFlightDuplicate(t *testing.T) {
	app, mr, calls := setupTestApp(t)

	if err := mr.Set(idempotencyPrefix+":POST:/resource:busy", inProgressMarker); err != nil {
		t.Fatalf("seed marker: %v", err)
	}

	status, _ := post(t, app, "/resource", "busy")
	if status != fiber.StatusConflict {
		t.Fatalf("expected %d got %d", fiber.StatusConflict, status)
	}
	if calls.Load() != 0 {
		t.Fatalf("handler should not run for an in-flight key")
	}
}

func TestIdempotencyRejectsOversizedKey(t *testing.T) {
	app, _, _ := setupTestApp(t)

	status, _ := post(t, app, "/resource", strings.Repeat("k", maxIdempotencyKeyLen+1))
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected %d got %d", fiber.StatusBadRequest, status)
	}
}

func TestIdempotencyWithoutCacheIsNoop(t *testing.T) {
	app := fiber.New()
	app.Use(Idempotency(nil, time.Minute, logging.Discard()))
	app.Post("/resource", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	status, _ := post(t, app, "/resource", "abc")
	if status != fiber.StatusOK {
		t.Fatalf("expected %d got %d", fiber.StatusOK, status)
	}
}
