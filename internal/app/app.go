package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/curioapp/curio/internal/assistant"
	"github.com/curioapp/curio/internal/config"
	"github.com/curioapp/curio/internal/curation"
	"github.com/curioapp/curio/internal/dispatch"
	"github.com/curioapp/curio/internal/httpserver"
	"github.com/curioapp/curio/internal/httpserver/deps"
	"github.com/curioapp/curio/internal/logger"
	"github.com/curioapp/curio/internal/redis"
	"github.com/curioapp/curio/internal/scheduler"
	"github.com/curioapp/curio/internal/session"
	"github.com/curioapp/curio/internal/sources/catalog"
	"github.com/curioapp/curio/internal/store"
	"github.com/curioapp/curio/internal/store/memstore"
	"github.com/curioapp/curio/internal/store/redisstore"
	"github.com/curioapp/curio/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	reloader    *scheduler.ProfileReloader
	janitor     *scheduler.SessionJanitor
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Pick the store backend. Redis when configured, otherwise the
	// in-memory store (state is lost on restart).
	var (
		st          store.Store
		redisClient *goredis.Client
	)
	if cfg.RedisAddr != "" {
		loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		client, err := redis.New(redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			RedisDB:        cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, loggerClient)
		if err != nil {
			loggerClient.Errorf("Failed to connect to Redis: %v", err)
			os.Exit(1)
		}
		redisClient = client
		st = redisstore.New(redisClient, loggerClient)
		loggerClient.Info("Redis store initialized")
	} else {
		st = memstore.New()
		loggerClient.Warn("CURIO_REDIS_ADDR not set, using in-memory store (state lost on restart)")
	}

	// Normalizer with built-in aliases, extended by origin profiles.
	normalizer := catalog.NewNormalizer()

	var (
		reloader      *scheduler.ProfileReloader
		reloadTrigger chan struct{}
	)
	if cfg.OriginsFile != "" {
		loggerClient.Info("origins file configured, initializing profile reloader",
			logger.String("file", cfg.OriginsFile))
		reloadTrigger = make(chan struct{}, 1)
		reloader = scheduler.NewProfileReloader(
			cfg.OriginsFile,
			normalizer,
			loggerClient,
			cfg.ProfileReloadInterval,
			reloadTrigger,
		)
	} else {
		loggerClient.Info("origins file not configured, using built-in field aliases only")
	}

	// Engine core: assistant client, dispatcher, sessions, curation.
	client := assistant.NewHTTPClient(cfg.ChatEndpoint, cfg.ChatTimeout, normalizer, loggerClient)
	dispatcher := dispatch.New(st, loggerClient)
	sessions := session.NewManager(st, dispatcher, client, loggerClient)
	curator := curation.NewService(st, loggerClient)

	janitor := scheduler.NewSessionJanitor(
		sessions,
		loggerClient,
		cfg.SessionSweepInterval,
		cfg.SessionMaxIdle,
	)

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:               loggerClient,
		StartTime:            time.Now(),
		Version:              version.Version,
		Commit:               version.Commit,
		BuildDate:            version.BuildDate,
		GoVersion:            version.GoVersion,
		TimeNow:              time.Now,
		RequestTimeout:       cfg.RequestTimeout,
		AllowedOrigins:       cfg.AllowedOrigins,
		AllowedHosts:         cfg.AllowedHosts,
		AllowedCIDRS:         cfg.AllowedCIDRS,
		TrustProxy:           cfg.TrustProxy,
		RedisClient:          redisClient,
		Store:                st,
		Sessions:             sessions,
		Curation:             curator,
		Normalizer:           normalizer,
		ProfileReloadTrigger: reloadTrigger,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		reloader:    reloader,
		janitor:     janitor,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Curio v%s on %s", version.Version, a.cfg.ListenAddr)
	a.logger.Infof("Curio %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start profile reloader (if enabled)
	if a.reloader != nil {
		if err := a.reloader.Start(ctx); err != nil {
			return fmt.Errorf("failed to start profile reloader: %w", err)
		}
		a.logger.Info("profile reloader started",
			logger.Duration("interval", a.cfg.ProfileReloadInterval))
	}

	// Start session janitor
	if err := a.janitor.Start(ctx); err != nil {
		return fmt.Errorf("failed to start session janitor: %w", err)
	}
	a.logger.Info("session janitor started",
		logger.Duration("interval", a.cfg.SessionSweepInterval),
		logger.Duration("max_idle", a.cfg.SessionMaxIdle))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	if a.reloader != nil {
		a.reloader.Stop()
	}
	a.janitor.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.logger.Info("✅ Curio stopped cleanly")
	return nil
}
