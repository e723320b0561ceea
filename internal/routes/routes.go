package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/congo-pay/wallet_ledger/internal/auth"
	"github.com/congo-pay/wallet_ledger/internal/config"
	"github.com/congo-pay/wallet_ledger/internal/ledger"
	"github.com/congo-pay/wallet_ledger/internal/middleware"
	"github.com/congo-pay/wallet_ledger/internal/notification"
	"github.com/congo-pay/wallet_ledger/internal/operations"
	"github.com/congo-pay/wallet_ledger/internal/payments"
	"github.com/congo-pay/wallet_ledger/internal/wallet"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
	// Store overrides the ledger backend chosen from DB.
	Store ledger.Store
	// Events receives operation events in addition to the log notifier.
	Events notification.Notifier
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though config also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil && d.Store == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))
	if d.Cfg.IsDev() {
		// Plain text access log in desired format: [HH:MM:SS] 200 -  145ms METHOD /path
		app.Use(logger.New(logger.Config{
			Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
			TimeFormat: "15:04:05",
			TimeZone:   "Local",
		}))
	}

	RegisterHealthRoutes(app, d)

	store := d.Store
	if store == nil {
		if d.DB != nil {
			store = ledger.NewPostgresStore(d.DB)
		} else {
			d.Logger.Warn("no DATABASE_URL configured, using the in-memory ledger")
			store = ledger.NewInMemory()
		}
	}

	notifier := notification.Fanout{notification.NewLoggerNotifier(d.Logger)}
	if d.Events != nil {
		notifier = append(notifier, d.Events)
	}

	var tokens auth.TokenStore = auth.NewMemoryTokenStore()
	if d.Cache != nil {
		tokens = auth.NewRedisTokenStore(d.Cache, d.Cfg.TokenTTL)
	}
	authSvc := auth.NewService(auth.Admin{Username: d.Cfg.AdminUsername, PasswordHash: d.Cfg.AdminPassword}, tokens)

	walletHandler := wallet.NewHandler(wallet.NewService(store, d.Logger))
	paymentHandler := payments.NewHandler(payments.NewService(store, notifier, d.Logger))
	operationHandler := operations.NewHandler(operations.NewService(store))

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": middleware.RequestIDFrom(c),
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public routes
	rateLimiter := middleware.TokenRateLimit(d.Cache, d.Cfg.TokenRateLimit, d.Logger)
	RegisterAuthRoutes(api, auth.NewHandler(authSvc, d.Logger), rateLimiter)

	// Protected routes
	protected := api.Group("",
		middleware.TokenAuth(authSvc),
		middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger),
	)
	RegisterWalletRoutes(protected, walletHandler)
	RegisterPaymentRoutes(protected, paymentHandler)
	RegisterOperationRoutes(protected, operationHandler)

	return nil
}
