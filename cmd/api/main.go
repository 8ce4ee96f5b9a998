package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/channah-state/internal/application/auth"
	"github.com/jhoicas/channah-state/internal/application/currency"
	"github.com/jhoicas/channah-state/internal/application/ports"
	"github.com/jhoicas/channah-state/internal/application/store"
	"github.com/jhoicas/channah-state/internal/infrastructure/exchange"
	"github.com/jhoicas/channah-state/internal/infrastructure/gateway"
	infrapdf "github.com/jhoicas/channah-state/internal/infrastructure/pdf"
	infras3 "github.com/jhoicas/channah-state/internal/infrastructure/s3"
	httpRouter "github.com/jhoicas/channah-state/internal/interfaces/http"
	"github.com/jhoicas/channah-state/pkg/config"
	"github.com/jhoicas/channah-state/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, closeStorage, err := openStorage(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacenamiento")
	}
	defer closeStorage()

	opts := store.Options{Logger: log.Component("store"), WriteBehind: cfg.Storage.WriteBehind}
	authStore := store.NewAuthStore(ctx, repo, opts)

	gwOpts := gateway.OptionsFromConfig(cfg.API, log.Component("gateway"))
	gwOpts.Notifier = gateway.LogNotifier{Log: log.Component("notifier")}
	gwOpts.OnSessionExpired = authStore.Logout
	client, err := gateway.NewClient(gwOpts)
	if err != nil {
		log.Fatal().Err(err).Msg("cliente del backend")
	}

	// S3 es opcional: sin bucket los documentos solo se registran por URL.
	var uploader ports.FileUploader
	if cfg.S3.Bucket != "" {
		up, err := infras3.NewUploader(ctx, cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("uploader S3")
		}
		uploader = up
	}

	cart := store.NewCartStore(ctx, repo, client, opts)
	wishlist := store.NewWishlistStore(ctx, repo, opts)
	comparison := store.NewComparisonStore(ctx, repo, opts)
	documents := store.NewDocumentStore(ctx, repo, uploader, opts)
	orders := store.NewPurchaseOrderStore(ctx, repo, opts)
	sourcing := store.NewSourcingStore(ctx, repo, opts)
	closers := []interface{ Close(context.Context) error }{cart, wishlist, comparison, documents, orders, sourcing, authStore}

	cur := currency.NewStore(
		exchange.NewRatesClient(cfg.Currency.RatesURL, nil),
		exchange.NewGeoClient(cfg.Currency.GeoURL, nil),
		cfg.Currency.Default,
		log.Component("currency"),
	)
	cur.DetectCountry(ctx)
	go func() {
		if err := cur.FetchExchangeRates(ctx); err != nil {
			log.Warn().Err(err).Msg("tasas iniciales")
		}
	}()

	tokens := gateway.CookieTokenSource{Client: client, Name: cfg.API.SessionCookie}
	auth.NewBootstrap(authStore, tokens, client, log.Component("auth")).Run(ctx)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    20 << 20,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	if err := httpRouter.Router(app, httpRouter.RouterDeps{
		Cart:           cart,
		Wishlist:       wishlist,
		Comparison:     comparison,
		Documents:      documents,
		PurchaseOrders: orders,
		Sourcing:       sourcing,
		Auth:           authStore,
		Currency:       cur,
		Gateway:        client,
		PDF:            infrapdf.NewPurchaseOrderRenderer(cfg.App.Name),
		RateLimit:      cfg.RateLimit.Rate,
	}); err != nil {
		log.Fatal().Err(err).Msg("registrar rutas")
	}

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	for _, s := range closers {
		if err := s.Close(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("vaciar estado pendiente")
		}
	}

	log.Info().Msg("aplicación detenida")
}
