package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gobusters/ectoenv"
	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	migratedb "github.com/golang-migrate/migrate/v4/database"

	"github.com/piatra/agenda-politicieni/config"
	personrepo "github.com/piatra/agenda-politicieni/internal/repositories/person"
	suggestionrepo "github.com/piatra/agenda-politicieni/internal/repositories/suggestion"
	userrepo "github.com/piatra/agenda-politicieni/internal/repositories/user"
	"github.com/piatra/agenda-politicieni/internal/services/fixture"
	personsvc "github.com/piatra/agenda-politicieni/internal/services/person"
	suggestionsvc "github.com/piatra/agenda-politicieni/internal/services/suggestion"
	"github.com/piatra/agenda-politicieni/pkg/database"
	"github.com/piatra/agenda-politicieni/pkg/events"
	"github.com/piatra/agenda-politicieni/pkg/kafka"
	"github.com/piatra/agenda-politicieni/pkg/middleware"
	pkgredis "github.com/piatra/agenda-politicieni/pkg/redis"
	healthroute "github.com/piatra/agenda-politicieni/pkg/routes/health"
	personroute "github.com/piatra/agenda-politicieni/pkg/routes/person"
	suggestionroute "github.com/piatra/agenda-politicieni/pkg/routes/suggestion"
	"github.com/piatra/agenda-politicieni/pkg/tracing"
)

const version = "1.0.0"

func main() {
	_ = godotenv.Load()

	var cfg config.Config
	if err := ectoenv.BindEnv(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.TracingEnabled {
		shutdown, err := tracing.Init(ctx, tracing.Config{
			ServiceName:  cfg.AppName,
			OTLPEndpoint: cfg.TracingOTLPEndpoint,
			OTLPProtocol: cfg.TracingOTLPProtocol,
			Insecure:     cfg.TracingInsecure,
		})
		if err != nil {
			logger.WithError(err).Error("failed to initialize tracing")
			os.Exit(1)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(shutdownCtx)
		}()
	}

	db, err := database.Connect(database.ConnectConfig{
		Driver:          cfg.DatabaseDriver,
		Host:            cfg.DatabaseHost,
		Port:            cfg.DatabasePort,
		UserName:        cfg.DatabaseUserName,
		Password:        cfg.DatabasePassword,
		Name:            cfg.DatabaseName,
		SSLMode:         cfg.DatabaseSSLMode,
		MaxOpenConns:    cfg.DatabaseMaxOpenConns,
		MaxIdleConns:    cfg.DatabaseMaxIdleConns,
		ConnMaxLifetime: cfg.DatabaseConnMaxLifetime,
	}, logger)
	if err != nil {
		os.Exit(1)
	}
	defer db.Close()

	migrations := database.NewMigrationService(logger, &database.MigrationConfig{
		MigrationFolderPath: cfg.DatabaseMigrationFolderPath,
	})
	newDriver := func() (migratedb.Driver, error) {
		return postgres.WithInstance(db.Unsafe().DB, &postgres.Config{})
	}

	driver, err := newDriver()
	if err != nil {
		logger.WithError(err).Error("failed to create migration driver")
		os.Exit(1)
	}
	if err := migrations.Migrate(cfg.DatabaseName, driver); err != nil {
		os.Exit(1)
	}

	var producer *kafka.Producer
	var publisher events.Publisher
	if cfg.KafkaEnabled {
		producer = kafka.NewProducer(kafka.ProducerConfig{
			Brokers:      cfg.KafkaBrokers,
			Topic:        cfg.KafkaAuditTopic,
			BatchSize:    cfg.KafkaBatchSize,
			BatchTimeout: time.Duration(cfg.KafkaBatchTimeout) * time.Millisecond,
			RequiredAcks: cfg.KafkaRequiredAcks,
			Compression:  cfg.KafkaCompression,
		}, logger)
		defer producer.Close()
		publisher = producer
	}
	emitter := events.NewEmitter(publisher, logger)

	var cache personsvc.Cache
	var redisPinger healthroute.Pinger
	if cfg.RedisEnabled {
		redisClient, err := pkgredis.NewClient(pkgredis.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, logger)
		if err != nil {
			logger.WithError(err).Error("failed to connect to redis")
			os.Exit(1)
		}
		defer redisClient.Close()
		cache = redisClient
		redisPinger = redisClient
	}

	persons := personrepo.NewRepository(db, logger)
	users := userrepo.NewRepository(db, logger)
	suggestions := suggestionrepo.NewRepository(db, logger)

	personService := personsvc.NewService(persons, cache, cfg.PersonsCacheTTL, logger)
	suggestionService := suggestionsvc.NewService(suggestions, persons, emitter, personService, logger)
	fixtureService := fixture.NewService(persons, schemaResetter{
		migrations:   migrations,
		databaseName: cfg.DatabaseName,
		newDriver:    newDriver,
	}, emitter, personService, logger)

	if cfg.FixturePath != "" {
		if err := fixtureService.LoadFile(ctx, cfg.FixturePath, cfg.FixtureFlush); err != nil {
			logger.WithError(err).Errorf("failed to load fixture %s", cfg.FixturePath)
			os.Exit(1)
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second
	e.Server.WriteTimeout = time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second
	e.Server.IdleTimeout = time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second
	e.HTTPErrorHandler = middleware.Error(logger)
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: cfg.AllowMethods,
	}))
	e.Use(middleware.Context())
	e.Use(middleware.Logger(logger))

	api := e.Group("/api/v1")
	personroute.NewHandler(personService).RegisterRoutes(api)
	suggestionroute.NewHandler(suggestionService, users).RegisterRoutes(api)

	checker := healthroute.NewChecker(dbPinger{db: db}, redisPinger, version)
	checker.RegisterRoutes(e)
	checker.SetReady(true)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("http server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("error during shutdown")
	}
}

func newLogger(cfg config.Config) ectologger.Logger {
	var zapLogger *zap.Logger
	if cfg.PrettyLogs {
		zapLogger, _ = zap.NewDevelopment()
	} else {
		zapLogger, _ = zap.NewProduction()
	}
	return zapadapter.NewZapEctoLogger(zapLogger.Named(cfg.AppName), nil)
}

type dbPinger struct {
	db database.DB
}

func (p dbPinger) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

type schemaResetter struct {
	migrations   *database.MigrationService
	databaseName string
	newDriver    database.DriverFactory
}

func (r schemaResetter) Reset() error {
	return r.migrations.Reset(r.databaseName, r.newDriver)
}
