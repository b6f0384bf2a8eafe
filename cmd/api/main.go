package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/facturacion-pe/internal/application/billing"
	"github.com/jhoicas/facturacion-pe/internal/application/ports"
	"github.com/jhoicas/facturacion-pe/internal/application/subscription"
	"github.com/jhoicas/facturacion-pe/internal/application/usecase"
	"github.com/jhoicas/facturacion-pe/internal/domain/repository"
	infraai "github.com/jhoicas/facturacion-pe/internal/infrastructure/ai"
	infraauth "github.com/jhoicas/facturacion-pe/internal/infrastructure/auth"
	"github.com/jhoicas/facturacion-pe/internal/infrastructure/cache"
	"github.com/jhoicas/facturacion-pe/internal/infrastructure/cpe"
	"github.com/jhoicas/facturacion-pe/internal/infrastructure/memory"
	"github.com/jhoicas/facturacion-pe/internal/infrastructure/payments"
	infrapdf "github.com/jhoicas/facturacion-pe/internal/infrastructure/pdf"
	"github.com/jhoicas/facturacion-pe/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/facturacion-pe/internal/interfaces/http"
	"github.com/jhoicas/facturacion-pe/pkg/config"
	"github.com/jhoicas/facturacion-pe/pkg/logger"
)

// storage repositorios y runner transaccional del driver elegido.
type storage struct {
	txRunner      billing.LedgerTxRunner
	invoices      repository.InvoiceRepository
	payments      repository.PaymentRepository
	businesses    repository.BusinessRepository
	subscriptions repository.SubscriptionRepository
	close         func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("db_driver", cfg.DB.Driver).
		Str("auth_provider", cfg.Auth.Provider).
		Msg("iniciando aplicación")

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("la aplicación terminó con error")
	}
	log.Info().Msg("aplicación detenida")
}

// run levanta el servidor y bloquea hasta SIGINT/SIGTERM. Los recursos abiertos se
// liberan antes de devolver, también cuando el arranque falla a mitad de camino.
func run(cfg *config.Config, log *logger.Logger) error {
	app, cleanup, err := newApp(context.Background(), cfg, log, "./docs/swagger.json")
	if err != nil {
		return err
	}
	defer cleanup()

	listenErr := make(chan error, 1)
	go func() {
		listenErr <- app.Listen(cfg.HTTP.Addr())
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-listenErr:
		return fmt.Errorf("servidor HTTP: %w", err)
	case <-quit:
	}

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	return nil
}

// newApp resuelve las dependencias y arma la aplicación Fiber. docsFile vacío omite Swagger UI.
// El cleanup devuelto cierra almacenamiento y Redis; ante error no queda nada abierto.
func newApp(ctx context.Context, cfg *config.Config, log *logger.Logger, docsFile string) (*fiber.App, func(), error) {
	var verifier ports.IdentityVerifier
	switch cfg.Auth.Provider {
	case config.AuthProviderFirebase:
		fv, err := infraauth.NewFirebaseVerifier(ctx, cfg.Firebase)
		if err != nil {
			return nil, nil, fmt.Errorf("inicializar Firebase Auth: %w", err)
		}
		verifier = fv
	default:
		verifier = infraauth.NewJWTVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	}

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var idem ports.IdempotencyStore = cache.NewMemoryIdempotencyStore()
	if cfg.Redis.URL != "" {
		rs, err := cache.NewRedisIdempotencyStore(ctx, cfg.Redis.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("conexión a Redis: %w", err)
		}
		closers = append(closers, func() { _ = rs.Close() })
		idem = rs
	}

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	closers = append(closers, store.close)

	// Colaboradores externos opcionales: sin configuración los endpoints responden 503.
	var worker ports.CPEWorker
	if cfg.CPE.WorkerURL != "" {
		worker = cpe.NewWorkerClient(cfg.CPE.WorkerURL, cfg.CPE.Timeout)
	} else {
		log.Warn().Msg("CPE_WORKER_URL vacío: emisión electrónica deshabilitada")
	}
	var chat ports.ChatService
	if cfg.AI.AnthropicAPIKey != "" {
		chat = infraai.NewAnthropicService(cfg.AI.AnthropicAPIKey, cfg.AI.AnthropicModel, cfg.AI.Timeout)
	}
	var provider ports.SubscriptionProvider
	if cfg.Subscription.BaseURL != "" && cfg.Subscription.AccessToken != "" {
		provider = payments.NewProviderClient(cfg.Subscription.BaseURL, cfg.Subscription.AccessToken, cfg.Subscription.Timeout)
	}

	invoiceUC := billing.NewInvoiceUseCase(store.txRunner, store.invoices, log)
	paymentUC := billing.NewPaymentUseCase(store.txRunner, store.invoices, store.payments, log)
	businessUC := billing.NewBusinessUseCase(store.businesses)
	cpeUC := billing.NewCPERelayUseCase(store.invoices, worker, log)
	pdfUC := billing.NewPDFUseCase(store.invoices, store.businesses, infrapdf.NewMarotoPDFGenerator())
	chatUC := usecase.NewChatUseCase(chat, cfg.AI.Timeout, log)
	subscriptionUC := subscription.NewUseCase(store.subscriptions, provider, idem, subscription.Settings{
		Plans:          cfg.Subscription.Plans,
		WebhookSecret:  cfg.Subscription.WebhookSecret,
		BackURL:        cfg.Subscription.BackURL,
		IdempotencyTTL: cfg.Redis.IdempotencyTTL,
	}, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler(log),
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Named("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	if docsFile != "" {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: docsFile,
			Path:     "docs",
			Title:    "Facturación PE API",
		}))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		Verifier:     verifier,
		Invoices:     invoiceUC,
		Payments:     paymentUC,
		Businesses:   businessUC,
		CPE:          cpeUC,
		PDF:          pdfUC,
		Chat:         chatUC,
		Subscription: subscriptionUC,
		Log:          log,
	})
	return app, cleanup, nil
}

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (storage, error) {
	if cfg.DB.Driver == config.DriverMemory {
		log.Warn().Msg("DB_DRIVER=memory: los datos se pierden al reiniciar")
		s := memory.NewStore()
		return storage{
			txRunner:      s,
			invoices:      s.Invoices(),
			payments:      s.Payments(),
			businesses:    s.Businesses(),
			subscriptions: s.Subscriptions(),
			close:         func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return storage{}, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	return storage{
		txRunner:      postgres.NewTxRunner(pool),
		invoices:      postgres.NewInvoiceRepository(pool),
		payments:      postgres.NewPaymentRepository(pool),
		businesses:    postgres.NewBusinessRepository(pool),
		subscriptions: postgres.NewSubscriptionRepository(pool),
		close:         pool.Close,
	}, nil
}
