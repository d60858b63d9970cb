// main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"resort-booking/cmd"
	"resort-booking/internal/data/repository"
	"resort-booking/internal/usecase"
	"resort-booking/internal/wire"
	"resort-booking/pkg/cache"
	"resort-booking/pkg/database"
	"resort-booking/pkg/gateway"
	"resort-booking/pkg/mq"
	"resort-booking/pkg/obs"
	"resort-booking/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	mode := "server"
	if len(os.Args) > 1 {
		mode = os.Args[1]
	}

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("mode", mode),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := obs.InitTracer(ctx, config.App.Name, config.Tracing)
	if err != nil {
		logger.Fatal("Failed to init tracer", zap.Error(err))
	}
	defer shutdownTracer(context.Background())

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)

	deps, closeDeps := buildDeps(ctx, repos, config, logger)
	defer closeDeps()

	service := usecase.NewService(repos, deps, config, logger)

	switch mode {
	case "server":
		app := wire.Wiring(service, config, logger)
		if err := cmd.APIServer(ctx, app.Router, config.App.Port, logger); err != nil {
			logger.Fatal("Server error", zap.Error(err))
		}
	case "consume":
		if err := cmd.SyncConsumer(ctx, service.Sync, config.Kafka, logger); err != nil {
			logger.Fatal("Consumer error", zap.Error(err))
		}
	default:
		logger.Fatal("Unknown mode, expected server or consume", zap.String("mode", mode))
	}
}

// buildDeps connects the optional collaborators. Redis, RabbitMQ and Omise
// are each skipped when unconfigured so a bare Postgres setup still runs.
func buildDeps(ctx context.Context, repos *repository.Repository, config *utils.Config, logger *zap.Logger) (usecase.Deps, func()) {
	var closers []func()
	deps := usecase.Deps{Events: mq.Noop{}}

	var store cache.Store = cache.Noop{}
	if config.Redis.Addr != "" {
		client, err := cache.Connect(ctx, config.Redis)
		if err != nil {
			logger.Warn("Redis unavailable, settings are read uncached", zap.Error(err))
		} else {
			store = cache.NewRedisStore(client, config.App.Name+":settings:")
			closers = append(closers, func() { client.Close() })
			logger.Info("Redis connected", zap.String("addr", config.Redis.Addr))
		}
	}
	deps.Settings = usecase.NewSettingsProvider(repos.Setting, store, config.Redis.SettingsTTL, config.Payment, logger)

	if config.AMQP.URL != "" {
		pub, err := mq.NewPublisher(config.AMQP.URL, config.AMQP.Exchange)
		if err != nil {
			logger.Warn("RabbitMQ unavailable, domain events are dropped", zap.Error(err))
		} else {
			deps.Events = pub
			closers = append(closers, func() { pub.Close() })
			logger.Info("RabbitMQ connected", zap.String("exchange", config.AMQP.Exchange))
		}
	}

	if config.Omise.SecretKey != "" {
		gw, err := gateway.NewOmiseGateway(config.Omise.PublicKey, config.Omise.SecretKey)
		if err != nil {
			logger.Fatal("Failed to init payment gateway", zap.Error(err))
		}
		deps.Gateway = gw
	}

	return deps, func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
}
