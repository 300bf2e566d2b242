package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	httpadp "github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/adapter/http"
	mw "github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/adapter/middleware"
	"github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/adapter/repository/gormstore"
	"github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/adapter/repository/rediscache"
	"github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/config"
	"github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/domain/identity"
	"github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/infrastructure/cache"
	"github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/infrastructure/db"
	"github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/logger"
	"github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/usecase/draft"
	"github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/usecase/executor"
	"github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/usecase/review"
)

func main() {
	_, envErr := config.LoadEnvFiles(".env", ".env.local")
	cfg := config.Load()

	log, err := logger.New(cfg.LogEnv)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()
	if envErr != nil {
		log.Warn("load env files", zap.Error(envErr))
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid config", zap.Error(err))
	}

	gdb, err := db.OpenGorm(cfg.DBDriver, cfg.DSN(), logger.Gorm(log, logger.GormLevel(cfg.DBLogLevel)))
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}
	if err := gormstore.AutoMigrate(gdb); err != nil {
		log.Fatal("migrate", zap.Error(err))
	}
	log.Info("database ready", zap.String("driver", cfg.DBDriver))

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err != nil {
		log.Fatal("open redis", zap.Error(err))
	}
	defer rdb.Close()

	// repositories
	changes := gormstore.NewChangeRepository(gdb)
	audits := gormstore.NewAuditRepository(gdb)
	storeRoles := gormstore.NewRoleRepository(gdb)
	var roles identity.RoleRepository = storeRoles
	var cachedRoles *rediscache.RoleRepository
	if cfg.RoleCacheTTL() > 0 {
		cachedRoles = rediscache.NewRoleRepository(storeRoles, rdb, cfg.RoleCacheTTL(), log.Named("roles"))
		roles = cachedRoles
	}
	for _, id := range cfg.BootstrapAdmins {
		if err := storeRoles.Grant(context.Background(), id, identity.RoleAdmin); err != nil {
			log.Fatal("bootstrap admin", zap.String("user_id", id), zap.Error(err))
		}
		// a "not admin" decision may be cached from a previous run
		if cachedRoles != nil {
			if err := cachedRoles.Invalidate(context.Background(), id, identity.RoleAdmin); err != nil {
				log.Warn("invalidate role cache", zap.String("user_id", id), zap.Error(err))
			}
		}
	}

	// usecases
	exec := executor.New(gormstore.NewGormUoW(gdb), changes, roles, audits, log.Named("executor"))
	draftUC := draft.NewUsecase(changes, cfg.ImmutableDraftShape, log.Named("drafts"))
	reviewUC := review.NewUsecase(changes, exec, audits)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("actor", identity.FromContext(c.Request().Context()).ActorID),
			}
			if v.Error != nil {
				log.Error("request", append(fields, zap.Error(v.Error))...)
				return nil
			}
			log.Info("request", fields...)
			return nil
		},
	}))

	httpadp.Routes{
		Health: httpadp.NewHandler(map[string]httpadp.Check{
			"db": func(ctx context.Context) error {
				sqlDB, err := gdb.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			},
			"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		}),
		Drafts:      httpadp.NewDraftHandler(draftUC, log.Named("http")),
		Review:      httpadp.NewReviewHandler(reviewUC, log.Named("http")),
		Auth:        mw.Auth([]byte(cfg.JWTSecret), log.Named("auth")),
		Idempotency: mw.Idempotency(rdb, cfg.IdempotencyTTL(), log.Named("idempotency")),
	}.Register(e)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := ":" + cfg.AppPort
	go func() {
		log.Info("listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
}
