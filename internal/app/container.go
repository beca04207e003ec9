// Package app wires the training core to the infrastructure selected by
// configuration.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/discipline/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/discipline/internal/training/application"
	"github.com/felixgeelhaar/discipline/internal/training/application/services"
	"github.com/felixgeelhaar/discipline/internal/training/application/subscribers"
	"github.com/felixgeelhaar/discipline/internal/training/domain"
	"github.com/felixgeelhaar/discipline/internal/training/infrastructure/persistence"
	"github.com/felixgeelhaar/discipline/internal/training/infrastructure/reminder"
	"github.com/felixgeelhaar/discipline/pkg/config"
	"github.com/felixgeelhaar/discipline/pkg/observability"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Container holds the wired dependencies of one process.
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *observability.InMemoryMetrics
	Health  *observability.HealthRegistry

	// Connections, set only for the driver in use
	SQLite      *sql.DB
	Postgres    *pgxpool.Pool
	RedisClient *redis.Client

	// Gateway is the outermost decorator handed to the store.
	Gateway domain.Gateway
	Breaker *persistence.BreakerGateway
	Async   *persistence.AsyncGateway

	EventBus       *eventbus.InProcessEventBus
	EventPublisher *eventbus.DomainEventPublisher
	Reminders      *reminder.Scheduler

	// Consumer is set by ConnectReminderConsumer in the worker.
	Consumer *eventbus.RabbitMQConsumer

	Store *application.Store
}

// Option customizes container construction.
type Option func(*options)

type options struct {
	notifier reminder.Notifier
	clock    application.Clock
}

// WithNotifier replaces the log-based reminder notifier.
func WithNotifier(n reminder.Notifier) Option {
	return func(o *options) {
		o.notifier = n
	}
}

// WithClock overrides the store clock.
func WithClock(clock application.Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// NewContainer opens storage, builds the event pipeline and loads the store.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewInMemoryMetrics(),
		Health:  observability.NewHealthRegistry(),
	}

	if err := c.openGateway(ctx); err != nil {
		c.Close()
		return nil, err
	}

	if err := c.buildEventPipeline(o.notifier); err != nil {
		c.Close()
		return nil, err
	}

	storeOpts := []application.StoreOption{
		application.WithUserID(cfg.UserID),
		application.WithMetrics(c.Metrics),
	}
	if o.clock != nil {
		storeOpts = append(storeOpts, application.WithClock(o.clock))
	}
	c.Store = application.NewStore(ctx, c.Gateway, c.EventPublisher, services.NewCoach(), logger, storeOpts...)

	logger.Debug("container ready",
		"driver", cfg.StorageDriver,
		"async_save", cfg.AsyncSave,
		"rabbitmq", cfg.RabbitMQURL != "",
	)
	return c, nil
}

func (c *Container) buildEventPipeline(notifier reminder.Notifier) error {
	logger := c.Logger

	if notifier == nil {
		notifier = reminder.NewLogNotifier(logger)
	}
	c.Reminders = reminder.NewScheduler(c.countingNotifier(notifier), logger)

	c.EventBus = eventbus.NewInProcessEventBus(logger)
	c.EventBus.RegisterConsumer(subscribers.NewReminderSubscriber(c.Reminders, logger))

	publishers := []eventbus.Publisher{c.EventBus}
	if c.Config.RabbitMQURL != "" {
		rmq, err := eventbus.NewRabbitMQPublisher(c.Config.RabbitMQURL, eventbus.DefaultExchangeName, logger)
		switch {
		case err == nil:
			publishers = append(publishers, rmq)
			c.Health.Register("broker", observability.PingChecker("rabbitmq", false, rmq.Ping))
		case c.Config.IsDevelopment():
			logger.Warn("RabbitMQ not available, events stay in process", "error", err)
			publishers = append(publishers, eventbus.NewNoopPublisher(logger))
		default:
			return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
	}
	c.EventPublisher = eventbus.NewDomainEventPublisher(logger, publishers...)
	return nil
}

func (c *Container) countingNotifier(next reminder.Notifier) reminder.Notifier {
	return reminder.NotifierFunc(func(ctx context.Context, identifier, message string) error {
		c.Metrics.Counter(observability.MetricRemindersFired, 1)
		return next.Notify(ctx, identifier, message)
	})
}

// RestoreReminder arms the daily reminder stored in the snapshot. Long-running
// hosts call it once after construction.
func (c *Container) RestoreReminder(ctx context.Context) error {
	settings := c.Store.Reminder()
	if !settings.Enabled {
		return nil
	}
	return c.Reminders.ScheduleDailyReminder(ctx, domain.DailyReminderID, settings.Hour, settings.Minute)
}

// ConnectReminderConsumer subscribes the reminder scheduler to events that
// other processes publish on RabbitMQ, so "discipline reminder set" in a
// shell re-arms the worker. It returns nil when RABBITMQ_URL is unset.
// The caller runs Consumer.Start.
func (c *Container) ConnectReminderConsumer() (*eventbus.RabbitMQConsumer, error) {
	if c.Config.RabbitMQURL == "" {
		return nil, nil
	}
	consumer, err := eventbus.NewRabbitMQConsumer(eventbus.RabbitMQConsumerConfig{
		URL:       c.Config.RabbitMQURL,
		QueueName: c.Config.RabbitMQQueue,
		Exchange:  eventbus.DefaultExchangeName,
		Logger:    c.Logger,
	}, eventbus.NewConsumerRegistry(c.Logger))
	if err != nil {
		return nil, err
	}
	if err := consumer.RegisterConsumer(subscribers.NewReminderSubscriber(c.Reminders, c.Logger)); err != nil {
		_ = consumer.Close()
		return nil, err
	}
	c.Health.Register("consumer", observability.PingChecker("rabbitmq consumer", false, consumer.Ping))
	c.Consumer = consumer
	return consumer, nil
}

// Close flushes pending writes and releases every connection.
func (c *Container) Close() {
	if c.Async != nil {
		if err := c.Async.Close(); err != nil {
			c.Logger.Warn("error flushing pending snapshot", "error", err)
		}
	}

	if c.Reminders != nil {
		_ = c.Reminders.Close()
	}

	if c.Consumer != nil {
		if err := c.Consumer.Close(); err != nil {
			c.Logger.Warn("error closing event consumer", "error", err)
		}
	}

	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", "error", err)
		}
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("error closing Redis connection", "error", err)
		}
	}

	if c.Postgres != nil {
		c.Postgres.Close()
	}

	if c.SQLite != nil {
		if err := c.SQLite.Close(); err != nil {
			c.Logger.Warn("error closing SQLite connection", "error", err)
		}
	}
}
