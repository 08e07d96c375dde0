package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/DRSN-tech/fashion-search/internal/cfg"
	v1Grpc "github.com/DRSN-tech/fashion-search/internal/delivery/v1/grpc"
	v1Http "github.com/DRSN-tech/fashion-search/internal/delivery/v1/http"
	"github.com/DRSN-tech/fashion-search/internal/infrastructure/kafka"
	ml_service "github.com/DRSN-tech/fashion-search/internal/infrastructure/ml-service"
	"github.com/DRSN-tech/fashion-search/internal/repository/cached"
	s3Repo "github.com/DRSN-tech/fashion-search/internal/repository/minio"
	"github.com/DRSN-tech/fashion-search/internal/repository/pgdb"
	pgdbConv "github.com/DRSN-tech/fashion-search/internal/repository/pgdb/converter"
	qdrantRepo "github.com/DRSN-tech/fashion-search/internal/repository/qdrant"
	"github.com/DRSN-tech/fashion-search/internal/repository/redis"
	redisConv "github.com/DRSN-tech/fashion-search/internal/repository/redis/converter"
	"github.com/DRSN-tech/fashion-search/internal/usecase"
	"github.com/DRSN-tech/fashion-search/pkg/cache"
	"github.com/DRSN-tech/fashion-search/pkg/clients"
	"github.com/DRSN-tech/fashion-search/pkg/closer"
	"github.com/DRSN-tech/fashion-search/pkg/e"
	"github.com/DRSN-tech/fashion-search/pkg/logger"
	"github.com/DRSN-tech/fashion-search/pkg/postgres"
	"github.com/DRSN-tech/fashion-search/pkg/tr"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"
)

const (
	initTimeout     = 10 * time.Second
	shutdownTimeout = 10 * time.Second
	migrationsURL   = "file://db/migrations"
)

type App struct {
	cfg    *config.Config
	logger logger.Logger
	closer *closer.Closer

	httpSrv      *v1Http.Server
	grpcSrv      *v1Grpc.GRPCServer
	outboxWorker *kafka.OutboxWorker
}

// NewApp собирает зависимости приложения. При ошибке уже открытые ресурсы закрываются.
func NewApp(cfg *config.Config, logger logger.Logger) (*App, error) {
	a := &App{
		cfg:    cfg,
		logger: logger,
		closer: closer.NewCloser(0),
	}

	if err := a.init(); err != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if cerr := a.closer.Close(ctx); cerr != nil {
			logger.Errorf(cerr, "failed to release resources")
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return a, nil
}

func (a *App) init() error {
	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	db, err := a.initPGDB(ctx)
	if err != nil {
		return err
	}

	productRepo := pgdb.NewProductRepo(db.Pool, pgdbConv.ProductConverter{})
	categoryRepo := pgdb.NewCategoryRepo(db.Pool, pgdbConv.CategoryConverter{})
	searchResultRepo := pgdb.NewSearchResultRepo(db.Pool, pgdbConv.SearchResultConverter{})
	outboxRepo := pgdb.NewOutboxEventRepo(db.Pool, pgdbConv.OutboxEventConverter{})
	txManager := tr.NewManager(db.Pool)

	embeddingRepo, embeddingHealth, err := a.initEmbeddingStore(ctx)
	if err != nil {
		return err
	}

	vectorCache, err := cache.New[[]float32](a.cfg.Cache.MaxSize, a.cfg.Cache.TTL, cache.WithMetrics(registry, "embeddings"))
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	cachedEmbeddings := cached.NewEmbeddingRepo(embeddingRepo, vectorCache)

	redisClient := clients.NewRedisClient(a.cfg.Redis)
	a.closer.Add("redis", func(context.Context) error { return redisClient.Close() })
	if err := redisClient.Ping(ctx); err != nil {
		a.logger.Errorf(err, "failed to connect to redis")
		return err
	}
	cacheRepo := redis.NewCacheRepo(redisClient, redisConv.SearchResultConverter{}, a.cfg.Redis, a.logger)

	mlConn, err := clients.NewMLConn(a.cfg.Ml)
	if err != nil {
		a.logger.Errorf(err, "failed to initialize ml-service client")
		return err
	}
	a.closer.Add("ml-service", func(context.Context) error { return mlConn.Close() })
	ml := ml_service.NewMLService(mlConn, a.cfg.Ml.Timeout, a.cfg.Ml.MinConfidence, a.logger)

	producer := kafka.NewProducer(a.logger, a.cfg.Kafka)
	a.closer.Add("kafka producer", func(context.Context) error { return producer.Close() })
	if err := producer.EnsureTopic(initTimeout); err != nil {
		a.logger.Errorf(err, "failed to ensure kafka topic")
		return err
	}

	pipelineMetrics, err := usecase.NewPipelineMetrics(registry)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	searcher := usecase.NewSimilaritySearch(productRepo, cachedEmbeddings, a.logger)
	searchResultUC := usecase.NewSearchResultUC(searchResultRepo, outboxRepo, cacheRepo, producer, txManager, a.logger)
	imageProcessor := usecase.NewImageProcessor(ml, searcher, searchResultUC, a.logger, pipelineMetrics, a.cfg.Search.TopK)
	catalogUC := usecase.NewCatalogUC(productRepo, categoryRepo, ml, searcher, txManager, a.logger)

	a.outboxWorker = kafka.NewOutboxWorker(outboxRepo, a.logger, producer, db.Dsn, pgdb.OutboxChannel, a.cfg.Kafka.OutboxBatchSize)

	a.grpcSrv = v1Grpc.NewGRPCServer(a.cfg.Grpc, a.cfg.Http.MaxUploadSize, a.logger)
	a.grpcSrv.RegisterServices(imageProcessor, searchResultUC)

	r := chi.NewRouter()
	v1Http.NewRouter(r, a.logger).Init(v1Http.Deps{
		ImageProcessor: imageProcessor,
		SearchResults:  searchResultUC,
		Catalog:        catalogUC,
		HealthChecks: map[string]v1Http.HealthChecker{
			"postgres":        v1Http.PingFunc(db.Ping),
			"embedding_store": embeddingHealth,
			"ml_service":      v1Http.PingFunc(func(context.Context) error { return connHealth(mlConn) }),
		},
		Gatherer:             registry,
		MaxUploadSize:        a.cfg.Http.MaxUploadSize,
		MaxRequestsPerMinute: a.cfg.Http.MaxRequestsPerMinute,
	})
	a.httpSrv = v1Http.NewServer(r, a.cfg.Http)

	return nil
}

func (a *App) initPGDB(ctx context.Context) (*postgres.PgDatabase, error) {
	db, err := postgres.Connect(ctx, a.cfg.Db)
	if err != nil {
		a.logger.Errorf(err, "failed to connect to database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	a.closer.AddSimple("postgres", db.Close)

	if err := db.RunMigrations(migrationsURL, a.logger); err != nil {
		a.logger.Errorf(err, "failed to run migrations")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}

// initEmbeddingStore выбирает хранилище векторов по EMBEDDING_BACKEND.
func (a *App) initEmbeddingStore(ctx context.Context) (usecase.EmbeddingRepository, v1Http.HealthChecker, error) {
	switch a.cfg.Search.EmbeddingBackend {
	case config.EmbeddingBackendQdrant:
		qdrantClient, err := clients.NewQdrantClient(a.cfg.Qdrant)
		if err != nil {
			a.logger.Errorf(err, "failed to initialize qdrant")
			return nil, nil, e.Wrap(whereami.WhereAmI(), err)
		}
		a.closer.Add("qdrant", func(context.Context) error { return qdrantClient.Close() })

		if err := qdrantClient.EnsureCollection(ctx); err != nil {
			a.logger.Errorf(err, "failed to initialize qdrant collection")
			return nil, nil, e.Wrap(whereami.WhereAmI(), err)
		}

		return qdrantRepo.NewEmbeddingRepo(qdrantClient.Client, a.cfg.Qdrant), qdrantClient, nil

	case config.EmbeddingBackendMinIO:
		minioClient, err := clients.NewMinIOClient(a.cfg.Minio)
		if err != nil {
			a.logger.Errorf(err, "failed to initialize minio client")
			return nil, nil, e.Wrap(whereami.WhereAmI(), err)
		}

		if err := clients.EnsureBucket(ctx, minioClient, a.cfg.Minio.BucketName); err != nil {
			a.logger.Errorf(err, "failed to initialize MinIO bucket")
			return nil, nil, e.Wrap(whereami.WhereAmI(), err)
		}

		health := v1Http.PingFunc(func(ctx context.Context) error {
			return clients.EnsureBucket(ctx, minioClient, a.cfg.Minio.BucketName)
		})
		return s3Repo.NewEmbeddingRepo(minioClient, a.cfg.Minio), health, nil

	default:
		return nil, nil, fmt.Errorf("%w: embedding backend %q", e.ErrIncorrectEnvVariable, a.cfg.Search.EmbeddingBackend)
	}
}

// connHealth считает ML-сервис недоступным, если соединение в состоянии ошибки или закрыто.
func connHealth(conn *grpc.ClientConn) error {
	switch state := conn.GetState(); state {
	case connectivity.TransientFailure, connectivity.Shutdown:
		return fmt.Errorf("grpc connection is %s", state)
	case connectivity.Idle:
		conn.Connect()
	}
	return nil
}

// Run запускает серверы и фоновую отправку событий, ждёт сигнала и корректно останавливается.
func (a *App) Run() error {
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	a.outboxWorker.Start(workerCtx)
	a.closer.Add("outbox worker", a.outboxWorker.Stop)

	grpcErrCh := make(chan error, 1)
	go func() {
		a.logger.Infof("gRPC server starting on %s:%s", a.cfg.Grpc.NetworkMode, a.cfg.Grpc.Port)
		if err := a.grpcSrv.Start(); err != nil {
			a.logger.Errorf(err, "gRPC server failed")
			grpcErrCh <- err
		}
	}()
	a.closer.Add("grpc server", a.grpcSrv.Stop)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Infof("HTTP server started on port %s", a.cfg.Http.Port)
		if err := a.httpSrv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Errorf(err, "HTTP server failed")
			errCh <- err
		}
	}()
	a.closer.Add("http server", a.httpSrv.Stop)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	var appErr error
	select {
	case appErr = <-errCh:
		a.logger.Errorf(appErr, "HTTP server fatal error")
	case appErr = <-grpcErrCh:
		a.logger.Errorf(appErr, "gRPC server fatal error")
	case <-shutdown:
		a.logger.Infof("Received shutdown signal, stopping gracefully...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := a.closer.Close(shutdownCtx); err != nil {
		a.logger.Errorf(err, "shutdown error")
		if appErr == nil {
			appErr = err
		}
	}

	a.logger.Infof("Application shutdown complete")
	return appErr
}
