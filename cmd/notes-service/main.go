package main

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
	gormlogger "gorm.io/gorm/logger"

	"github.com/DoctorDictator/rdbbms-project-2025-sub000/internal/config"
	"github.com/DoctorDictator/rdbbms-project-2025-sub000/internal/notes-service/database"
	"github.com/DoctorDictator/rdbbms-project-2025-sub000/internal/notes-service/handler"
	"github.com/DoctorDictator/rdbbms-project-2025-sub000/internal/notes-service/handler/middleware"
	"github.com/DoctorDictator/rdbbms-project-2025-sub000/internal/notes-service/service"
	"github.com/DoctorDictator/rdbbms-project-2025-sub000/internal/notes-service/session"
	"github.com/DoctorDictator/rdbbms-project-2025-sub000/pkg/logger"
)

const cleanupInterval = time.Minute

var (
	configFile = flag.String("config", "", "path to a config file (yaml, json, toml or env)")
	envFile    = flag.String("env-file", ".env", "path to a .env file loaded before the environment is read")
)

func main() {
	flag.Parse()

	if err := config.LoadEnvFile(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.WithError(err).Fatal("can't load env file")
	}
	cfg, err := config.Load(*configFile)
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	l := logger.New(cfg.LogLevel, cfg.LogFormat).WithFields(log.Fields{
		"app_env":   cfg.AppEnv,
		"addr":      cfg.GetAddr(),
		"db_driver": cfg.DBDriver,
	})
	if !cfg.IsDevelopment() {
		if err := cfg.ValidateProductionSecurity(); err != nil {
			l.WithError(err).Fatal("insecure production configuration")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gormLevel := gormlogger.Error
	if cfg.IsDevelopment() {
		gormLevel = gormlogger.Info
	}
	db, err := database.NewDb(database.Options{
		Driver:          cfg.DBDriver,
		DSN:             cfg.GetDSN(),
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		LogLevel:        gormLevel,
	})
	if err != nil {
		l.WithError(err).Fatal("failed to open database")
	}
	defer func() {
		if err := database.Close(db); err != nil {
			l.WithError(err).Error("can't close database")
		}
	}()
	if err := database.Migrate(db); err != nil {
		l.WithError(err).Fatal("failed to migrate database")
	}

	sessions, closeSessions, err := newSessions(ctx, cfg, l)
	if err != nil {
		l.WithError(err).Fatal("can't set up sessions")
	}
	defer closeSessions()

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerIP, cfg.RateLimitWindow)
	trusted, err := middleware.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		l.WithError(err).Fatal("invalid trusted proxies")
	}
	limiter.TrustProxies(trusted)
	go limiter.Run(ctx, cleanupInterval)

	svc := service.New(database.NewRepository(db), l)
	server := &http.Server{
		Addr: cfg.GetAddr(),
		Handler: handler.NewHandler(svc, sessions, l, handler.Options{
			CookieSecure: cfg.CookieSecure,
			StaticDir:    cfg.StaticDir,
			RateLimiter:  limiter,
		}),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		l.Infof("listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.WithError(err).Fatal("listen and serve returned err")
		}
	}()

	<-ctx.Done()
	l.Info("got interruption signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		l.WithError(err).Error("handler shutdown returned an err")
	}
}

// newSessions keeps revoked tokens in Redis when REDIS_ADDR is set and in memory otherwise.
func newSessions(ctx context.Context, cfg *config.Config, l *log.Entry) (*session.Manager, func(), error) {
	if cfg.RedisAddr == "" {
		revoker := session.NewMemoryRevoker()
		go revoker.Run(ctx, cleanupInterval)
		m, err := session.NewManager(cfg.JWTSecret, cfg.TokenTTL, revoker)
		return m, func() {}, err
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	closeClient := func() {
		if err := client.Close(); err != nil {
			l.WithError(err).Error("can't close redis client")
		}
	}
	if err := client.Ping(ctx).Err(); err != nil {
		closeClient()
		return nil, nil, err
	}
	m, err := session.NewManager(cfg.JWTSecret, cfg.TokenTTL, session.NewRedisRevoker(client))
	if err != nil {
		closeClient()
		return nil, nil, err
	}
	l.WithField("redis_addr", cfg.RedisAddr).Info("token revocations are kept in redis")
	return m, closeClient, nil
}
