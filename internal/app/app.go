package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/1241007/shop-spark-45/internal/dal/postgres"
	"github.com/1241007/shop-spark-45/internal/dal/rabbitmq"
	"github.com/1241007/shop-spark-45/internal/dal/repositories/audit"
	cartrepo "github.com/1241007/shop-spark-45/internal/dal/repositories/cart/postgres"
	inventoryrepo "github.com/1241007/shop-spark-45/internal/dal/repositories/inventory/postgres"
	outboxrepo "github.com/1241007/shop-spark-45/internal/dal/repositories/outbox/postgres"
	"github.com/1241007/shop-spark-45/internal/otel"
	"github.com/1241007/shop-spark-45/internal/payment"
	"github.com/1241007/shop-spark-45/internal/service/services/cartsvc"
	"github.com/1241007/shop-spark-45/internal/service/services/checkoutsvc"
	"github.com/1241007/shop-spark-45/internal/service/services/inventorysvc"
	"github.com/1241007/shop-spark-45/internal/service/services/ordersvc"
	httptransport "github.com/1241007/shop-spark-45/internal/transport/http"
	outboxworker "github.com/1241007/shop-spark-45/internal/worker/outbox"
)

// App represents the application.
type App struct {
	transport      *httptransport.HTTPTransport
	outboxWorker   *outboxworker.Worker
	otelController *otel.OtelController
	postgresClient *postgres.Client
	rabbitClient   *rabbitmq.Client
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	otelController := otel.MustInitOtel()

	postgresClient := postgres.MustNewClient()
	rabbitClient := rabbitmq.MustNewClient()

	auditRepo := audit.NewAuditRabbitMQRepository(rabbitClient)

	orderSvc := ordersvc.MustNewOrderService(
		ordersvc.WithPostgresClient(postgresClient),
	)
	inventorySvc := inventorysvc.MustNewInventoryService(
		inventorysvc.WithRepository(inventoryrepo.NewPostgresInventoryRepository(postgresClient.Pool())),
		inventorysvc.WithAuditRepository(auditRepo),
	)
	cartSvc := cartsvc.MustNewCartService(
		cartsvc.WithRepository(cartrepo.NewPostgresCartRepository(postgresClient.Pool())),
	)
	checkoutSvc := checkoutsvc.MustNewCheckoutService(
		checkoutsvc.WithOrderLedger(orderSvc),
		checkoutsvc.WithInventoryLedger(inventorySvc),
		checkoutsvc.WithVerifier(payment.MustNewVerifierFromEnv()),
	)

	transport := httptransport.NewHTTPTransport(checkoutSvc, orderSvc, cartSvc)
	transport.RegisterRoutes()

	worker := outboxworker.NewWorker(
		outboxrepo.NewOutboxRepository(postgresClient.Pool()),
		rabbitClient,
	)

	return &App{
		transport:      transport,
		outboxWorker:   worker,
		otelController: otelController,
		postgresClient: postgresClient,
		rabbitClient:   rabbitClient,
	}
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	// Create a channel to receive OS signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	workerCtx, cancelWorker := context.WithCancel(context.Background())
	go a.outboxWorker.Start(workerCtx)

	go func() {
		slog.Info("Starting HTTP server")
		if err := a.transport.Run(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	<-stop
	slog.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.transport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	cancelWorker()

	if err := a.rabbitClient.Close(); err != nil {
		slog.Error("RabbitMQ connection close error", "error", err)
	} else {
		slog.Info("RabbitMQ connection closed gracefully")
	}

	a.postgresClient.Close()
	slog.Info("Database connection closed gracefully")

	if err := a.otelController.Shutdown(); err != nil {
		slog.Error("Trace provider shutdown error", "error", err)
	}

	slog.Info("Application shutdown complete")
}
