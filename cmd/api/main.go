package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Logistica-api/internal/application/dto"
	"github.com/jhoicas/Logistica-api/internal/application/inventory"
	"github.com/jhoicas/Logistica-api/internal/infrastructure/messaging"
	httpRouter "github.com/jhoicas/Logistica-api/internal/interfaces/http"
	"github.com/jhoicas/Logistica-api/pkg/config"
	"github.com/jhoicas/Logistica-api/pkg/logger"
	"github.com/jhoicas/Logistica-api/pkg/tracing"
)

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
		Str("storage", cfg.Storage.Driver).
		Str("broker", cfg.Events.Broker).
		Msg("iniciando aplicación")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.Setup(ctx, tracing.Config{
		ServiceName: cfg.App.Name,
		Endpoint:    cfg.Otel.Endpoint,
		Insecure:    cfg.Otel.Insecure,
	})
	if err != nil {
		log.Warn().Err(err).Msg("trazas desactivadas")
	}

	storage, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento")
	}
	defer storage.close()

	publisher, err := openPublisher(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("broker de eventos")
	}
	defer publisher.Close()

	idem, closeRedis, err := openIdempotency(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("redis")
	}
	defer closeRedis()

	policy := inventory.RetryPolicy{
		MaxAttempts:     cfg.Alloc.MaxAttempts,
		InitialInterval: cfg.Alloc.InitialBackoff,
		MaxInterval:     cfg.Alloc.MaxBackoff,
	}
	placeOrderUC := inventory.NewPlaceOrderUseCase(storage.runner, policy, log)
	restockUC := inventory.NewRestockUseCase(storage.runner, policy, log)
	queryUC := inventory.NewQueryUseCase(storage.runner, policy, log)

	relay := messaging.NewRelay(log, storage.outbox, publisher, messaging.RelayConfig{
		RelayID:   relayID(),
		BatchSize: cfg.Events.RelayBatch,
		Interval:  cfg.Events.RelayInterval,
		Lease:     cfg.Events.RelayLease,
	})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("relay del outbox finalizado")
		}
	}()

	app := fiber.New(httpRouter.ServerConfig(cfg.App.Name))
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Logistica API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(dto.HealthResponse{Status: "ok", Service: cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		PlaceOrder:  placeOrderUC,
		Restock:     restockUC,
		Query:       queryUC,
		Log:         log,
		JWTSecret:   cfg.JWT.Secret,
		Idempotency: idem,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	cancel()
	wg.Wait()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado de trazas")
	}

	log.Info().Msg("aplicación detenida")
}
