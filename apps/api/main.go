package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
	"github.com/caarlos0/env/v11"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	contenthandler "github.com/Crane-Ceeshar/CCD-Suite-sub007/domains/content/be/handler"
	contentrepo "github.com/Crane-Ceeshar/CCD-Suite-sub007/domains/content/be/repo"
	contentservice "github.com/Crane-Ceeshar/CCD-Suite-sub007/domains/content/be/service"
	dealshandler "github.com/Crane-Ceeshar/CCD-Suite-sub007/domains/deals/be/handler"
	dealsrepo "github.com/Crane-Ceeshar/CCD-Suite-sub007/domains/deals/be/repo"
	dealsservice "github.com/Crane-Ceeshar/CCD-Suite-sub007/domains/deals/be/service"
	flagshandler "github.com/Crane-Ceeshar/CCD-Suite-sub007/domains/flags/be/handler"
	flagsrepo "github.com/Crane-Ceeshar/CCD-Suite-sub007/domains/flags/be/repo"
	flagsservice "github.com/Crane-Ceeshar/CCD-Suite-sub007/domains/flags/be/service"
	profileshandler "github.com/Crane-Ceeshar/CCD-Suite-sub007/domains/profiles/be/handler"
	profilesrepo "github.com/Crane-Ceeshar/CCD-Suite-sub007/domains/profiles/be/repo"
	profilesservice "github.com/Crane-Ceeshar/CCD-Suite-sub007/domains/profiles/be/service"
	seohandler "github.com/Crane-Ceeshar/CCD-Suite-sub007/domains/seo/be/handler"
	seorepo "github.com/Crane-Ceeshar/CCD-Suite-sub007/domains/seo/be/repo"
	seoservice "github.com/Crane-Ceeshar/CCD-Suite-sub007/domains/seo/be/service"
	taskshandler "github.com/Crane-Ceeshar/CCD-Suite-sub007/domains/tasks/be/handler"
	tasksrepo "github.com/Crane-Ceeshar/CCD-Suite-sub007/domains/tasks/be/repo"
	tasksservice "github.com/Crane-Ceeshar/CCD-Suite-sub007/domains/tasks/be/service"
	tenantshandler "github.com/Crane-Ceeshar/CCD-Suite-sub007/domains/tenants/be/handler"
	tenantsrepo "github.com/Crane-Ceeshar/CCD-Suite-sub007/domains/tenants/be/repo"
	tenantsservice "github.com/Crane-Ceeshar/CCD-Suite-sub007/domains/tenants/be/service"
	platformauth "github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/auth"
	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/cache"
	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/gcp"
	identitymw "github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/identity/middleware"
	platformlogging "github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/logging"
	platformmiddleware "github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/middleware"
	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/persistence"
	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/storage"
)

type config struct {
	Port            string        `env:"PORT" envDefault:"3000"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty       bool          `env:"LOG_PRETTY" envDefault:"false"`
	CORSOrigins     []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:","` // empty allows any origin
	DatabaseURL     string        `env:"DATABASE_URL,required"`
	TenantRole      string        `env:"DB_TENANT_ROLE" envDefault:"ccd_tenant"`
	ServiceRole     string        `env:"DB_SERVICE_ROLE" envDefault:"ccd_service"`
	AuthProvider    string        `env:"AUTH_PROVIDER" envDefault:"firebase"` // firebase | dev
	RedisURL        string        `env:"REDIS_URL"`                           // optional shared identity cache
	IdentityTTL     time.Duration `env:"IDENTITY_CACHE_TTL" envDefault:"1m"`
	SpecPath        string        `env:"OPENAPI_SPEC_PATH" envDefault:"contracts/api.yaml"`
	StorageBackend  string        `env:"STORAGE_BACKEND" envDefault:"gcs"`               // gcs | local
	StorageBucket   string        `env:"STORAGE_BUCKET"`                                 // required when STORAGE_BACKEND=gcs
	StorageLocalDir string        `env:"STORAGE_LOCAL_DIR" envDefault:"./.data/storage"` // used when STORAGE_BACKEND=local
}

func main() {
	ctx := context.Background()

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := platformlogging.NewLogger(platformlogging.Config{
		Component: "api-server",
		Level:     cfg.LogLevel,
		Pretty:    cfg.LogPretty,
	})
	if err != nil {
		log.Fatalf("init zap logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	pool, err := persistence.NewPool(ctx, persistence.PoolConfig{ConnString: cfg.DatabaseURL})
	if err != nil {
		logger.Fatal("init postgres pool", zap.Error(err))
	}
	defer persistence.ClosePool(pool)

	tenantDB := persistence.NewTenantDB(persistence.TenantDBConfig{
		Pool:        pool,
		TenantRole:  cfg.TenantRole,
		ServiceRole: cfg.ServiceRole,
	})

	profileStore := persistence.NewProfileStore(tenantDB)
	tenantStore := persistence.NewTenantStore(tenantDB)
	seoStore := persistence.NewSeoStore(tenantDB)
	taskStore := persistence.NewTaskStore(tenantDB)
	dealStore := persistence.NewDealStore(tenantDB)
	contentStore := persistence.NewContentStore(tenantDB)

	blobs := buildBlobStore(ctx, cfg, logger)

	profilesHTTPHandler := profileshandler.New(
		profilesservice.New(profilesrepo.NewPostgresRepository(profileStore)), logger)
	tenantsHTTPHandler := tenantshandler.New(
		tenantsservice.New(tenantsrepo.NewPostgresRepository(tenantStore)), logger)
	flagsHTTPHandler := flagshandler.New(
		flagsservice.New(flagsrepo.NewPostgresRepository(tenantStore)), logger)
	seoHTTPHandler := seohandler.New(
		seoservice.New(seorepo.NewPostgresRepository(seoStore)), logger)
	tasksHTTPHandler := taskshandler.New(
		tasksservice.New(tasksrepo.NewPostgresRepository(taskStore)), logger)
	dealsHTTPHandler := dealshandler.New(
		dealsservice.New(dealsrepo.NewPostgresRepository(dealStore)), logger)
	contentHTTPHandler := contenthandler.New(
		contentservice.New(contentrepo.NewPostgresRepository(contentStore), blobs, logger), logger)

	authMiddleware := buildAuthMiddleware(ctx, cfg, logger)
	identityCache := buildIdentityCache(cfg, logger)
	resolver := profilesservice.NewIdentityResolver(profileStore)

	specValidator, err := platformmiddleware.NewSpecValidator(cfg.SpecPath)
	if err != nil {
		logger.Fatal("load openapi spec", zap.String("path", cfg.SpecPath), zap.Error(err))
	}

	rootRouter := chi.NewRouter()

	rootRouter.Use(
		chimw.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		chimw.Timeout(cfg.RequestTimeout),
		platformmiddleware.CORS(cfg.CORSOrigins),
	)

	rootRouter.Use(platformlogging.RequestLogger(logger))

	rootRouter.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	rootRouter.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := pool.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	apiRouter := chi.NewRouter()
	apiRouter.Use(authMiddleware)
	apiRouter.Use(identitymw.RequireIdentity(resolver, identitymw.Config{
		Cache:    identityCache,
		CacheTTL: cfg.IdentityTTL,
	}))
	apiRouter.Use(platformmiddleware.RequestTrace)
	apiRouter.Use(specValidator)

	profilesHTTPHandler.RegisterRoutes(apiRouter)
	flagsHTTPHandler.RegisterRoutes(apiRouter)
	seoHTTPHandler.RegisterRoutes(apiRouter)
	tasksHTTPHandler.RegisterRoutes(apiRouter)
	dealsHTTPHandler.RegisterRoutes(apiRouter)
	contentHTTPHandler.RegisterRoutes(apiRouter)

	apiRouter.Group(func(r chi.Router) {
		r.Use(identitymw.RequireAdmin)
		tenantsHTTPHandler.RegisterRoutes(r)
	})

	rootRouter.Mount("/api/v1", apiRouter)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      rootRouter,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	go func() {
		logger.Info("starting api server", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server listen failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// buildAuthMiddleware selects the token verifier for the configured provider.
// The dev verifier accepts unsigned tokens and must never reach production.
func buildAuthMiddleware(ctx context.Context, cfg config, logger *zap.Logger) func(http.Handler) http.Handler {
	switch cfg.AuthProvider {
	case "firebase":
		_, fbAuth, err := gcp.InitFirebaseAuth(ctx)
		if err != nil {
			logger.Fatal("init firebase auth", zap.Error(err))
		}
		return platformauth.JWT(platformauth.FirebaseTokenVerifier(fbAuth), platformauth.DefaultCredentialExtractor)
	case "dev":
		logger.Warn("AUTH_PROVIDER=dev accepts unsigned tokens; local and CI use only")
		return platformauth.JWT(platformauth.UnsignedTokenVerifier(), platformauth.DefaultCredentialExtractor)
	default:
		logger.Fatal("invalid AUTH_PROVIDER (use firebase or dev)", zap.String("provider", cfg.AuthProvider))
		return nil
	}
}

// buildIdentityCache returns the in-process cache, tiered with Redis when a
// REDIS_URL is configured so replicas share resolved identities.
func buildIdentityCache(cfg config, logger *zap.Logger) cache.IdentityCache {
	local := cache.NewMemory()
	if cfg.RedisURL == "" {
		return local
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal("parse redis url", zap.Error(err))
	}

	shared := cache.NewRedis(redis.NewClient(opts), logger)
	return cache.NewTiered(local, shared, 30*time.Second)
}

func buildBlobStore(ctx context.Context, cfg config, logger *zap.Logger) storage.BlobStore {
	switch cfg.StorageBackend {
	case "gcs":
		if cfg.StorageBucket == "" {
			logger.Fatal("storage bucket required when STORAGE_BACKEND=gcs")
		}
		gcsClient, err := gcs.NewClient(ctx)
		if err != nil {
			logger.Fatal("init gcs client", zap.Error(err))
		}
		return storage.NewGCSBlobStore(gcsClient, cfg.StorageBucket)
	case "local":
		if strings.TrimSpace(cfg.StorageLocalDir) == "" {
			logger.Fatal("storage local dir required when STORAGE_BACKEND=local")
		}
		return storage.NewLocalBlobStore(cfg.StorageLocalDir)
	default:
		logger.Fatal("invalid STORAGE_BACKEND (use gcs or local)", zap.String("backend", cfg.StorageBackend))
		return nil
	}
}
