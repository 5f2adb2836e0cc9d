package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/DRSN-tech/storefront/internal/cfg"
	v1Http "github.com/DRSN-tech/storefront/internal/delivery/v1/http"
	"github.com/DRSN-tech/storefront/internal/infrastructure/kafka"
	s3Repo "github.com/DRSN-tech/storefront/internal/repository/minio"
	"github.com/DRSN-tech/storefront/internal/repository/pgdb"
	"github.com/DRSN-tech/storefront/internal/repository/redis"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/clients"
	"github.com/DRSN-tech/storefront/pkg/closer"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/DRSN-tech/storefront/pkg/postgres"
	"github.com/DRSN-tech/storefront/pkg/tr"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
)

const (
	startupTimeout   = 10 * time.Second
	shutdownTimeout  = 10 * time.Second
	topicInitTimeout = 10 * time.Second
)

// App — собранное приложение: HTTP-сервер, воркер outbox и ресурсы, которые нужно закрыть.
type App struct {
	cfg    *config.Config
	logger logger.Logger
	closer *closer.Closer

	httpSrv *v1Http.Server
	worker  *kafka.OutboxWorker
}

// NewApp поднимает все зависимости. При ошибке уже открытые ресурсы закрываются.
func NewApp(cfg *config.Config, log logger.Logger) (app *App, err error) {
	cl := closer.NewCloser(0)
	defer func() {
		if err != nil {
			if cerr := cl.Close(context.Background()); cerr != nil {
				log.Warnf("cleanup after failed start: %v", cerr)
			}
		}
	}()

	db, err := initPGDB(log, cfg)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	cl.AddSimple("postgres", db.Close)

	txManager := tr.NewManager(db.Pool)
	productRepo := pgdb.NewProductRepo(db.Pool)
	mappingRepo := pgdb.NewVariantMappingRepo(db.Pool)
	orderRepo := pgdb.NewOrderRepo(db.Pool)
	blogRepo := pgdb.NewBlogRepo(db.Pool)
	outboxRepo := pgdb.NewOutboxEventRepo(db.Pool, cfg.Outbox.Channel)

	redisClient := clients.NewRedisClient(cfg.Redis)
	cl.Add("redis", func(context.Context) error { return redisClient.Close() })

	redisCtx, redisCancel := context.WithTimeout(context.Background(), startupTimeout)
	defer redisCancel()
	if err := redisClient.Ping(redisCtx); err != nil {
		log.Errorf(err, "failed to connect to redis")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	cacheRepo := redis.NewCacheRepo(redisClient, cfg.Redis, log)

	minioClient, err := clients.NewMinIOClient(cfg.Minio)
	if err != nil {
		log.Errorf(err, "failed to initialize minio client")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	minioCtx, minioCancel := context.WithTimeout(context.Background(), startupTimeout)
	defer minioCancel()
	if err := clients.EnsureBucket(minioCtx, minioClient, cfg.Minio.BucketName); err != nil {
		log.Errorf(err, "failed to initialize MinIO bucket")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	sitemapRepo := s3Repo.NewSitemapRepo(minioClient, cfg.Minio)

	producer := kafka.NewProducer(log, cfg.Kafka)
	cl.Add("kafka producer", func(context.Context) error { return producer.Close() })

	// Недоступный брокер не мешает старту: события дождутся его в outbox.
	if err := producer.EnsureTopic(topicInitTimeout); err != nil {
		log.Warnf("failed to ensure kafka topic %s: %v", cfg.Kafka.Topic, err)
	}

	ledger := usecase.NewStockLedger(mappingRepo, log)
	hooks := usecase.NewCatalogHooks(mappingRepo, productRepo, log)
	notifier := usecase.NewOrderNotifier(outboxRepo, log)

	checkoutUC := usecase.NewCheckoutUC(productRepo, orderRepo, txManager, ledger, hooks, notifier, log)
	catalogUC := usecase.NewCatalogUC(productRepo, hooks, cacheRepo, log)
	sitemapUC := usecase.NewSitemapUC(productRepo, blogRepo, cacheRepo, sitemapRepo, sitemapSettings(cfg.Site), log)
	blogUC := usecase.NewBlogUC(blogRepo)
	orderUC := usecase.NewOrderUC(orderRepo, productRepo, txManager, ledger, hooks, notifier, log)

	r := chi.NewRouter()
	router := v1Http.NewRouter(r, log, cfg.Site.SuccessPath, cfg.Http.SwaggerURL)
	router.Init(checkoutUC, catalogUC, sitemapUC, blogUC, orderUC)

	return &App{
		cfg:     cfg,
		logger:  log,
		closer:  cl,
		httpSrv: v1Http.NewServer(r, cfg.Http),
		worker:  kafka.NewOutboxWorker(outboxRepo, log, producer, cfg.Outbox, db.Dsn),
	}, nil
}

// Run запускает сервер и воркер и блокируется до сигнала остановки или падения сервера.
func (a *App) Run() error {
	a.worker.Start(context.Background())
	a.closer.AddSimple("outbox worker", a.worker.Stop)
	a.closer.Add("http server", a.httpSrv.Stop)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Infof("HTTP server started on port %s", a.cfg.Http.Port)
		if err := a.httpSrv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// === Ожидание сигнала или ошибки ===
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	var appErr error
	select {
	case appErr = <-errCh:
		a.logger.Errorf(appErr, "HTTP server fatal error")
	case <-shutdown:
		a.logger.Infof("Received shutdown signal, stopping gracefully...")
	}

	// === Graceful shutdown ===
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := a.closer.Close(shutdownCtx); err != nil {
		a.logger.Errorf(err, "shutdown finished with errors")
	}

	a.logger.Infof("Application shutdown complete")
	return appErr
}

func initPGDB(logger logger.Logger, cfg *config.Config) (*postgres.PgDatabase, error) {
	db, err := postgres.Connect(cfg.Db)
	if err != nil {
		logger.Errorf(err, "failed to connect to database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		logger.Errorf(err, "failed to ping database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.RunMigrations(logger); err != nil {
		db.Close()
		logger.Errorf(err, "failed to run migrations")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}

func sitemapSettings(site *config.SiteCfg) usecase.SitemapSettings {
	return usecase.SitemapSettings{
		BaseURL:       site.BaseURL,
		BasePath:      site.BasePath,
		TrailingSlash: usecase.TrailingSlashMode(site.TrailingSlash),
		StaticRoutes:  usecase.DefaultStaticRoutes(),
	}
}
