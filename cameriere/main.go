package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "net/http/pprof"

	healthgo "github.com/hellofresh/health-go/v5"
	"github.com/labstack/echo-contrib/pprof"
	"github.com/labstack/echo/v4"
	"github.com/nats-io/nats.go"
	echoSwagger "github.com/swaggo/echo-swagger"
	_ "github.com/taldoflemis/forno/cameriere/docs"
	"github.com/taldoflemis/forno/pacchetto/telemetry"
)

// @title		Cameriere
// @version		1.0
// @description	Pizzeria menu and ordering API.
// @host		localhost:8000
// @BasePath	/
func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()
	retcode := 0
	defer func() {
		os.Exit(retcode)
	}()

	slog.InfoContext(ctx, "Launching cameriere")

	slog.InfoContext(ctx, "Loading config")
	settings, err := LoadConfig()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", slog.Any("err", err))
		retcode = 1
		return
	}

	slog.InfoContext(ctx, "Setting up opentelemetry")
	otelShutdown, err := telemetry.SetupOTelSDK(ctx, settings.App, settings.OpenTelemetry)
	if err != nil {
		slog.Error("failed to setup telemetry", slog.Any("err", err))
		retcode = 1
		return
	}

	defer func() {
		err = errors.Join(err, otelShutdown(context.Background()))
		if err != nil {
			slog.ErrorContext(
				ctx,
				"failed to shutdown opentelemetry providers",
				slog.Any("err", err),
			)
			retcode = 1
		}
	}()

	slog.InfoContext(ctx, "Connecting to MongoDB")
	mongoClient, err := settings.Mongo.GetMongoClient(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create MongoDB client", slog.Any("err", err))
		retcode = 1
		return
	}
	if mongoClient == nil {
		slog.WarnContext(ctx, "no database URL configured, menu and orders are unavailable")
	}

	store := NewMongoDocumentStore(mongoClient, settings.Mongo.Database)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			slog.ErrorContext(ctx, "failed to disconnect from MongoDB", slog.Any("err", err))
		}
	}()

	checks := []healthgo.Config{
		{
			Name:    "mongo",
			Timeout: 2 * time.Second,
			Check:   store.Ping,
		},
	}

	var orderPublisher OrderPublisher = NoopOrderPublisher{}
	if settings.Nats.Enabled {
		slog.InfoContext(ctx, "Connecting to NATS server")
		var nc *nats.Conn
		nc, err = settings.Nats.GetNatsClient()
		if err != nil {
			slog.ErrorContext(ctx, "failed to connect to NATS server", slog.Any("err", err))
			retcode = 1
			return
		}
		defer nc.Close()

		orderPublisher = NewNATSOrderPublisher(nc, settings.Nats.Subject)
		checks = append(checks, healthgo.Config{
			Name: "nats",
			Check: func(ctx context.Context) error {
				if !nc.IsConnected() {
					return errors.New("NATS connection is not active")
				}
				return nil
			},
		})
	}

	slog.InfoContext(ctx, "Setting up health checker")
	health, err := healthgo.New(
		healthgo.WithComponent(healthgo.Component{
			Name:    settings.App.Name,
			Version: settings.App.Version,
		}),
		healthgo.WithChecks(checks...),
	)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create health checker", slog.Any("err", err))
		retcode = 1
		return
	}

	errChan := make(chan error)
	server := echo.New()
	server.HideBanner = true

	_, err = NewMainHandler(server, settings, store, orderPublisher, health)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create handler", slog.Any("err", err))
		retcode = 1
		return
	}
	server.GET("/swagger/*", echoSwagger.WrapHandler)
	pprof.Register(server)

	go func() {
		slog.InfoContext(ctx, "listening for requests", slog.String("ip", settings.HTTP.IP), slog.String("port", settings.HTTP.Port))
		errChan <- server.Start(fmt.Sprintf("%s:%s", settings.HTTP.IP, settings.HTTP.Port))
	}()

	select {
	case err = <-errChan:
		slog.ErrorContext(ctx, "error when running server", slog.Any("err", err))
		retcode = 1
		return
	case <-ctx.Done():
		// Wait for first Signal arrives
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err = server.Shutdown(shutdownCtx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to shutdown gracefully the server", slog.Any("err", err))
	}
}
