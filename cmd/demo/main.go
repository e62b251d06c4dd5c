// Command demo places, persists, and dispatches a few orders end to end.
//
// Without DEMO_POSTGRES_DSN the events are kept in memory, otherwise they go to a Postgres
// outbox table through the driver chosen by DEMO_DB_DRIVER (pgx, sql, sqlx).
// Metrics go to a Prometheus registry. With DEMO_OTLP_ENDPOINT set, dispatch and persist spans
// are exported via OTLP/gRPC as well.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/AntonStoeckl/domain-kernel-go/example/ordering"
	"github.com/AntonStoeckl/domain-kernel-go/internal/config"
	"github.com/AntonStoeckl/domain-kernel-go/kernel"
	"github.com/AntonStoeckl/domain-kernel-go/kernel/broker"
	"github.com/AntonStoeckl/domain-kernel-go/kernel/oteladapters"
	"github.com/AntonStoeckl/domain-kernel-go/kernel/postgresoutbox"
	"github.com/AntonStoeckl/domain-kernel-go/kernel/promadapters"
	"github.com/AntonStoeckl/domain-kernel-go/kernel/unitofwork"
)

const (
	defaultOrders = 3
	serviceName   = "domain-kernel-demo"
)

func main() {
	orders := flag.Int("orders", defaultOrders, "Number of orders to place")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, *orders); err != nil {
		logger.Error("demo failed", "error", err.Error())
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger, orders int) error {
	registry := prometheus.NewRegistry()
	metrics := promadapters.NewMetricsCollector(registry, promadapters.WithNamespace("demo"))

	brokerOptions := []broker.Option{broker.WithLogger(logger), broker.WithMetrics(metrics)}
	outboxOptions := []postgresoutbox.Option{postgresoutbox.WithLogger(logger), postgresoutbox.WithMetrics(metrics)}

	if cfg.UsesOpenTelemetry() {
		providers, err := config.NewObservabilityProviders(ctx, cfg.OTLPEndpoint)
		if err != nil {
			return fmt.Errorf("setting up opentelemetry: %w", err)
		}

		defer func() {
			if err := providers.Shutdown(); err != nil {
				logger.Warn("opentelemetry shutdown failed", "error", err.Error())
			}
		}()

		tracing := oteladapters.NewTracingCollector(providers.TracerProvider.Tracer(serviceName))
		contextualLogger := oteladapters.NewSlogBridgeLogger(serviceName)

		brokerOptions = append(brokerOptions, broker.WithTracing(tracing), broker.WithContextualLogger(contextualLogger))
		outboxOptions = append(outboxOptions, postgresoutbox.WithTracing(tracing), postgresoutbox.WithContextualLogger(contextualLogger))
	}

	persister, closePersister, err := newPersister(ctx, cfg, logger, outboxOptions)
	if err != nil {
		return err
	}
	defer closePersister()

	b, err := broker.NewBroker(brokerOptions...)
	if err != nil {
		return err
	}
	defer b.ClearEventHandlers()

	summaries := ordering.NewOrderSummaries()
	for _, kind := range ordering.EventKinds() {
		b.RegisterEventHandler(kind, summaries.Project)
	}

	var notifications sync.WaitGroup
	notify := broker.Async(
		func(ctx context.Context, event kernel.Event) error {
			defer notifications.Done()
			logger.InfoContext(ctx, "shipping notification sent", "order_id", event.AggregateID().String())

			return nil
		},
		func(event kernel.Event, err error) {
			logger.Error("shipping notification failed", "order_id", event.AggregateID().String(), "error", err.Error())
		},
	)
	b.RegisterEventHandler(ordering.OrderShippedEventKind, func(ctx context.Context, event kernel.Event) error {
		notifications.Add(1)

		return notify(ctx, event)
	})

	uowOptions := []unitofwork.Option{unitofwork.WithLogger(logger)}
	if cfg.UsesPostgres() {
		uowOptions = append(uowOptions, unitofwork.WithPersistRetry(
			unitofwork.WithRetryableErrors(postgresoutbox.IsRetryable),
		))
	}

	uow, err := unitofwork.New(persister, b, uowOptions...)
	if err != nil {
		return err
	}

	placed, err := placeOrders(cfg, orders)
	if err != nil {
		return err
	}

	for _, order := range placed {
		uow.Track(order)
	}

	if err := uow.Commit(ctx); err != nil {
		return err
	}

	notifications.Wait()

	for _, order := range placed {
		summary, _ := summaries.Summary(order.ID())
		logger.Info(
			"order summary",
			"order_id", summary.OrderID.String(),
			"customer_id", summary.CustomerID.String(),
			"line_count", summary.LineCount,
			"total_cents", summary.TotalCents,
			"currency", summary.Currency,
			"shipped", summary.Shipped,
		)
	}

	families, err := registry.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}

	logger.Info("demo finished", "orders", len(placed), "metric_families", len(families))

	return nil
}

// placeOrders runs the domain logic. Every second order is shipped.
func placeOrders(cfg config.Config, count int) ([]*ordering.Order, error) {
	placed := make([]*ordering.Order, 0, count)

	for i := range count {
		order := ordering.PlaceOrder(
			kernel.ID(fmt.Sprintf("customer-%d", i+1)),
			kernel.WithIDGenerator(cfg.IDGenerator()),
		)

		for j := range i + 1 {
			line, err := ordering.NewOrderLine(fmt.Sprintf("SKU-%d", j+1), j+1, ordering.NewMoney(int64(250*(j+1)), "EUR"))
			if err != nil {
				return nil, err
			}

			if err := order.AddLine(line); err != nil {
				return nil, err
			}
		}

		if i%2 == 1 {
			if err := order.Ship(); err != nil {
				return nil, err
			}
		}

		placed = append(placed, order)
	}

	return placed, nil
}

func newPersister(
	ctx context.Context,
	cfg config.Config,
	logger *slog.Logger,
	outboxOptions []postgresoutbox.Option,
) (unitofwork.Persister, func(), error) {

	if !cfg.UsesPostgres() {
		logger.Info("using in-memory persister")
		return unitofwork.NewInMemoryPersister(), func() {}, nil
	}

	options := append([]postgresoutbox.Option{postgresoutbox.WithTableName(cfg.OutboxTable)}, outboxOptions...)

	var (
		store   postgresoutbox.Store
		closeDB func()
		err     error
	)

	switch cfg.DBDriver {
	case config.DriverSQL:
		db, openErr := config.OpenSQLDB(ctx, cfg.PostgresDSN)
		if openErr != nil {
			return nil, nil, openErr
		}

		closeDB = func() { _ = db.Close() }
		store, err = postgresoutbox.NewStoreFromSQLDB(db, options...)

	case config.DriverSQLX:
		db, openErr := config.OpenSQLX(ctx, cfg.PostgresDSN)
		if openErr != nil {
			return nil, nil, openErr
		}

		closeDB = func() { _ = db.Close() }
		store, err = postgresoutbox.NewStoreFromSQLX(db, options...)

	default:
		pool, openErr := config.OpenPGXPool(ctx, cfg.PostgresDSN)
		if openErr != nil {
			return nil, nil, openErr
		}

		closeDB = pool.Close
		store, err = postgresoutbox.NewStoreFromPGXPool(pool, options...)
	}

	if err == nil {
		err = store.EnsureSchema(ctx)
	}

	if err != nil {
		closeDB()
		return nil, nil, errors.Join(errors.New("setting up the postgres outbox"), err)
	}

	logger.Info("using postgres outbox", "driver", cfg.DBDriver, "table", store.TableName())

	return store, closeDB, nil
}
