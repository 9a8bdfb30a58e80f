package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/catalog"
	"storefront/internal/config"
	handlers "storefront/internal/controllers/http"
	mongoinfra "storefront/internal/infra/mongo"
	mysqlinfra "storefront/internal/infra/mysql"
	"storefront/internal/infra/rabbitmq"
	"storefront/internal/metrics"
	"storefront/internal/repository"
	"storefront/internal/repository/memory"
	mongorepo "storefront/internal/repository/mongo"
	mysqlrepo "storefront/internal/repository/mysql"
	"storefront/internal/services"
	"storefront/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func newLogger(development bool) (*zap.Logger, error) {
	if development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.LogDevelopment)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("storefront stopped", zap.Error(err))
	}
}

func loadCatalog(ctx context.Context, cfg *config.Config) (*catalog.Catalog, error) {
	switch {
	case cfg.CatalogFile != "":
		return catalog.LoadFile(cfg.CatalogFile)
	case cfg.CatalogURL != "":
		fetchCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return catalog.Fetch(fetchCtx, catalog.NewProductClient(cfg.CatalogURL, 2*time.Second))
	}
	return catalog.Default(), nil
}

// openSink returns the configured order sink and a function releasing its connection.
func openSink(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.OrderSink, func(), error) {
	switch cfg.Sink {
	case config.SinkMongo:
		client, db, err := mongoinfra.Connect(ctx, cfg.Mongo)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() { _ = client.Disconnect(context.Background()) }
		return mongorepo.NewMongoOrderSink(db, cfg.Mongo.Collection), closeFn, nil

	case config.SinkMySQL:
		db, err := mysqlinfra.NewMySQL(cfg.MySQL)
		if err != nil {
			return nil, nil, fmt.Errorf("db: connect: %w", err)
		}
		if err := mysqlrepo.Migrate(db); err != nil {
			return nil, nil, fmt.Errorf("db: migrate: %w", err)
		}
		closeFn := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		return mysqlrepo.NewOrderRepository(db, logger), closeFn, nil
	}

	logger.Warn("orders are kept in memory and lost on restart")
	return memory.NewOrderSink(), func() {}, nil
}

func openSessions(ctx context.Context, g *errgroup.Group, cfg *config.Config, logger *zap.Logger) (session.Store, error) {
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:         cfg.RedisAddr,
			DB:           0,
			PoolSize:     50,
			MinIdleConns: 5,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis: ping: %w", err)
		}
		g.Go(func() error {
			<-ctx.Done()
			return rdb.Close()
		})
		return session.NewRedisStore(rdb, cfg.SessionTTL), nil
	}

	store := session.NewMemoryStore(cfg.SessionTTL)
	g.Go(func() error {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if n := store.Sweep(); n > 0 {
					logger.Debug("expired sessions removed", zap.Int("count", n))
				}
			}
		}
	})
	return store, nil
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	g, ctx := errgroup.WithContext(ctx)

	cat, err := loadCatalog(ctx, cfg)
	if err != nil {
		return err
	}

	sink, closeSink, err := openSink(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeSink()

	sessions, err := openSessions(ctx, g, cfg, logger)
	if err != nil {
		return err
	}

	var publisher rabbitmq.PublisherInterface = rabbitmq.NopPublisher{}
	if cfg.RabbitMQURL != "" {
		p, err := rabbitmq.NewPublisher(cfg.RabbitMQURL, cfg.Exchange, logger)
		if err != nil {
			return fmt.Errorf("failed to init publisher: %w", err)
		}
		defer p.Close()
		publisher = p
	}

	m := metrics.NewRegistry()
	s := services.NewStorefrontService(cat, sessions, sink, publisher)
	s.SetResetPolicy(cfg.ResetPolicy)
	s.SetSubmissionTimeout(cfg.SubmitTimeout)
	s.SetMetrics(m)
	s.SetLogger(logger)
	if cfg.ValidateForm {
		s.SetValidator(services.NewFieldValidator())
	}

	handler := handlers.NewHandler(s, m, logger, cfg.SessionTTL)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	handler.RegisterRoutes(r)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g.Go(func() error {
		logger.Info("starting storefront",
			zap.String("port", cfg.Port),
			zap.String("sink", string(cfg.Sink)),
			zap.Int("products", cat.Len()),
			zap.String("reset_policy", string(cfg.ResetPolicy)),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server run: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		s.Wait()
		return err
	})

	return g.Wait()
}
