package app

import (
	"context"
	"fmt"
	"time"

	"ong_equipment_tool/config"
	"ong_equipment_tool/db"
	"ong_equipment_tool/logger"
	"ong_equipment_tool/metrics"
	"ong_equipment_tool/session"
	"ong_equipment_tool/settings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 简化别名，便于 handlers 调用
type Ctx = gin.Context
type H = gin.H

// App 聚合各依赖
type App struct {
	Router   *gin.Engine
	DB       *gorm.DB
	RDB      *redis.Client
	Repo     *db.Repo
	Settings *settings.Store
	Metrics  *metrics.Recorder
	Log      *zap.Logger
	Config   config.Config

	appSess *session.AppSessionStore
}

func (a *App) AppSessions() *session.AppSessionStore { return a.appSess }

// MustNew loads config from the environment and connects everything, or
// exits.
func MustNew() *App {
	cfg := config.Load()
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(fmt.Sprintf("logger: %v", err))
	}
	a, err := New(cfg, log)
	if err != nil {
		log.Fatal("startup failed", zap.Error(err))
	}
	return a
}

func New(cfg config.Config, log *zap.Logger) (*App, error) {
	// --- DB ---
	dsn := cfg.DatabaseURL
	if cfg.DBDriver == db.DriverSQLite {
		dsn = cfg.SQLitePath
	}
	gdb, err := db.Open(cfg.DBDriver, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(gdb); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	// --- Redis ---
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPwd, DB: 0})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}

	log.Info("connected",
		zap.String("driver", cfg.DBDriver),
		zap.String("redis", cfg.RedisAddr),
	)
	return Build(cfg, log, gdb, rdb), nil
}

// Build wires already opened connections. Tests use it with an in-memory
// sqlite database and miniredis.
func Build(cfg config.Config, log *zap.Logger, gdb *gorm.DB, rdb *redis.Client) *App {
	if log == nil {
		log = zap.NewNop()
	}
	rec := metrics.New()

	repo := db.NewRepo(gdb, log)
	repo.Metrics = rec
	if cfg.LockTimeout > 0 {
		repo.LockTimeout = cfg.LockTimeout
	}
	st := settings.NewStore(repo, rdb, settings.DefaultTTL, log.Named("settings"))
	repo.Fines = st

	// --- Gin ---
	r := gin.New()
	r.Use(RequestLogger(log.Named("http")), Recovery(log.Named("http")))
	useCORS(r, cfg.WebOrigin)

	return &App{
		Router:   r,
		DB:       gdb,
		RDB:      rdb,
		Repo:     repo,
		Settings: st,
		Metrics:  rec,
		Log:      log,
		Config:   cfg,
		appSess:  session.NewAppSessionStore(rdb, cfg.SessionTTL),
	}
}

func (a *App) Close() {
	_ = a.RDB.Close()
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.Log.Sync()
}
