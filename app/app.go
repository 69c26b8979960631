package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	stripeapi "github.com/stripe/stripe-go/v84"

	"github.com/gitshopapp/storefront/internal/blobstore"
	"github.com/gitshopapp/storefront/internal/cache"
	"github.com/gitshopapp/storefront/internal/catalog"
	"github.com/gitshopapp/storefront/internal/config"
	"github.com/gitshopapp/storefront/internal/crypto"
	"github.com/gitshopapp/storefront/internal/docstore"
	"github.com/gitshopapp/storefront/internal/email"
	"github.com/gitshopapp/storefront/internal/handlers"
	"github.com/gitshopapp/storefront/internal/handoff"
	"github.com/gitshopapp/storefront/internal/invoice"
	"github.com/gitshopapp/storefront/internal/logging"
	"github.com/gitshopapp/storefront/internal/models"
	"github.com/gitshopapp/storefront/internal/observability"
	"github.com/gitshopapp/storefront/internal/orders"
	"github.com/gitshopapp/storefront/internal/services"
	"github.com/gitshopapp/storefront/internal/session"
	"github.com/gitshopapp/storefront/internal/stripe"
)

const (
	emailTimeout  = 10 * time.Second
	stripeTimeout = 30 * time.Second
)

type checkoutGateway interface {
	CreateCheckoutSession(ctx context.Context, params stripe.CheckoutSessionParams) (*stripeapi.CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (*stripe.CheckoutSession, error)
}

type orderNotifier interface {
	OrderConfirmed(ctx context.Context, order *models.Order)
	OrderCancelled(ctx context.Context, order *models.Order)
}

type App struct {
	Config         *config.Config
	Logger         *slog.Logger
	Store          docstore.Store
	CacheProvider  cache.Provider
	SessionManager *session.Manager
	Blobs          *blobstore.FileStore
	Handlers       *handlers.Handlers

	logCloser     io.Closer
	sentryEnabled bool
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger, logCloser, err := logging.New(logging.Options{
		Level:    cfg.LogLevel,
		Format:   cfg.LogFormat,
		FilePath: cfg.LogFile,
	})
	if err != nil {
		return nil, err
	}
	a := &App{Config: cfg, Logger: logger, logCloser: logCloser}

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.SentryEnvironment,
			EnableTracing:    true,
			TracesSampleRate: cfg.SentryTracesSampleRate,
		}); err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize sentry: %w", err)
		}
		a.sentryEnabled = true
	}

	if err := a.wire(cfg, logger); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// wire builds every dependency; a.Close releases whatever was created before a failure.
func (a *App) wire(cfg *config.Config, logger *slog.Logger) error {
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	storefront, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return err
	}

	store, err := docstore.NewStore(startupCtx, docstore.Config{
		Provider:      cfg.DocstoreProvider,
		MongoURI:      cfg.MongoURI,
		MongoDatabase: cfg.MongoDatabase,
		DatabaseURL:   cfg.DatabaseURL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize document store: %w", err)
	}
	a.Store = store

	cacheProvider, err := cache.NewProvider(cache.Config{
		Provider:      cfg.CacheProvider,
		RedisURL:      cfg.RedisURL,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize cache provider: %w", err)
	}
	a.CacheProvider = cacheProvider

	sessionStore, err := session.NewStore(startupCtx, session.Config{
		Provider:      cfg.SessionStoreProvider,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize session store: %w", err)
	}
	a.SessionManager = session.NewManager(sessionStore, handlers.SecureCookiesFromConfig(cfg))

	sealer, err := crypto.NewSealer(cfg.EncryptionKey)
	if err != nil {
		return fmt.Errorf("failed to initialize sealer: %w", err)
	}
	handoffStore, err := handoff.NewStore(cacheProvider, sealer, cfg.HandoffTTL, logger.With("component", "handoff"))
	if err != nil {
		return fmt.Errorf("failed to initialize checkout handoff: %w", err)
	}

	signer, err := blobstore.NewSigner(cfg.DownloadSigningKey, cfg.DownloadURLTTL)
	if err != nil {
		return fmt.Errorf("failed to initialize download signer: %w", err)
	}
	blobs, err := blobstore.NewFileStore(cfg.BlobRoot, signer, cfg.BaseURL)
	if err != nil {
		return fmt.Errorf("failed to initialize blob store: %w", err)
	}
	a.Blobs = blobs

	invoiceOpts := invoice.Options{
		ShopName:       storefront.Shop.Name,
		CurrencySymbol: storefront.Shop.CurrencySymbol(),
	}

	emailProvider, err := email.NewProvider(email.Config{
		APIKey: cfg.ResendAPIKey,
		From:   cfg.EmailFrom,
	}, observability.NewHTTPClient(observability.ResendAPIHost, emailTimeout))
	if err != nil {
		return fmt.Errorf("failed to initialize email provider: %w", err)
	}
	// Both stay nil interfaces when unconfigured so the services fall back.
	var notifier orderNotifier
	if emailProvider != nil {
		n, err := services.NewOrderNotifier(emailProvider, invoiceOpts, cfg.BaseURL, logger.With("component", "order_notifier"))
		if err != nil {
			return fmt.Errorf("failed to initialize order notifier: %w", err)
		}
		notifier = n
	}

	var gateway checkoutGateway
	if cfg.StripeEnabled() {
		gateway = stripe.NewClient(cfg.StripeSecretKey, observability.NewHTTPClient(observability.StripeAPIHost, stripeTimeout))
	} else {
		logger.Warn("STRIPE_SECRET_KEY is not set, orders are confirmed without payment")
	}

	orderManager := orders.NewManager(store, logger.With("component", "orders"))
	checkoutService := services.NewCheckoutService(
		storefront,
		catalog.NewPricer(),
		gateway,
		handoffStore,
		orderManager,
		notifier,
		cfg.BaseURL,
		logger.With("component", "checkout_service"),
	)
	orderService := services.NewOrderService(orderManager, notifier, logger.With("component", "order_service"))
	stripeService := services.NewStripeService(gateway, handoffStore, cacheProvider, logger.With("component", "stripe_service"))
	stripeRouter := handlers.NewStripeEventRouter(stripeService, logger.With("component", "stripe_router"))

	h, err := handlers.New(handlers.Dependencies{
		Config:          cfg,
		Store:           store,
		Catalog:         storefront,
		SessionManager:  a.SessionManager,
		CheckoutService: checkoutService,
		OrderService:    orderService,
		StripeService:   stripeService,
		StripeRouter:    stripeRouter,
		SupportService:  services.NewSupportService(storefront),
		DownloadService: services.NewDownloadService(storefront, store, blobs, logger.With("component", "download_service")),
		Blobs:           blobs,
		InvoiceOptions:  invoiceOpts,
		Logger:          logger,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize handlers: %w", err)
	}
	a.Handlers = h
	return nil
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.SessionManager != nil {
		if err := a.SessionManager.Close(); err != nil {
			a.Logger.Warn("failed to close session manager", "error", err)
		}
	}
	if a.CacheProvider != nil {
		if err := a.CacheProvider.Close(); err != nil {
			a.Logger.Warn("failed to close cache provider", "error", err)
		}
	}
	if a.Blobs != nil {
		if err := a.Blobs.Close(); err != nil {
			a.Logger.Warn("failed to close blob store", "error", err)
		}
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			a.Logger.Warn("failed to close document store", "error", err)
		}
	}
	if a.sentryEnabled {
		sentry.Flush(2 * time.Second)
	}
	if a.logCloser != nil {
		_ = a.logCloser.Close()
	}
}
