package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/digistall/digistall/internal/adapter/analytics"
	"github.com/digistall/digistall/internal/adapter/enhance"
	"github.com/digistall/digistall/internal/adapter/handler"
	"github.com/digistall/digistall/internal/adapter/identity"
	"github.com/digistall/digistall/internal/adapter/notify"
	"github.com/digistall/digistall/internal/adapter/storage"
	"github.com/digistall/digistall/internal/config"
	"github.com/digistall/digistall/internal/core/service"
	"github.com/digistall/digistall/internal/effects"
	"github.com/digistall/digistall/internal/port"
	"github.com/digistall/digistall/internal/worker"
	"github.com/digistall/digistall/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Environment)
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// MySQL
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal("failed to open mysql", zap.Error(err))
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		log.Fatal("failed to ping mysql", zap.Error(err))
	}
	log.Info("connected to mysql")

	mysqlAdapter := storage.NewMySQLAdapter(db)

	// Redis listing cache is optional; the listing falls back to the DB.
	var cache port.ListingCache
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, PoolSize: 100})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("redis unavailable, listing cache disabled", zap.Error(err))
	} else {
		cache = storage.NewRedisAdapter(rdb)
		log.Info("connected to redis")
	}

	// Post-commit effects pool
	dispatcher, err := effects.NewPoolDispatcher(cfg.EffectsPoolSize, log)
	if err != nil {
		log.Fatal("failed to create effects pool", zap.Error(err))
	}

	mailer := notify.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom, log)

	var analyticsPub port.AnalyticsPublisher
	var kafkaPub *analytics.KafkaPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPub, err = analytics.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		if err != nil {
			log.Warn("kafka unavailable, analytics disabled", zap.Error(err))
		} else {
			analyticsPub = kafkaPub
			log.Info("connected to kafka", zap.Strings("brokers", cfg.KafkaBrokers))
		}
	}

	var assigner port.IdentityAssigner
	if cfg.IdentityAssignMode == "github" {
		assigner = identity.NewGitHubAssigner(cfg.GithubToken)
		log.Info("buyer identity assignment: github")
	}

	// Description enhancement worker pool
	var queue port.EnhancementQueue
	var enhancer *worker.Enhancer
	if cfg.GeminiAPIKey != "" {
		rewriter, err := enhance.NewGeminiRewriter(ctx, cfg.GeminiAPIKey)
		if err != nil {
			log.Warn("gemini unavailable, enhancement disabled", zap.Error(err))
		} else {
			enhancer = worker.NewEnhancer(mysqlAdapter, rewriter, cfg.EnhanceQueueSize, log)
			enhancer.Start(cfg.EnhanceWorkers)
			queue = enhancer
			log.Info("started enhancement workers", zap.Int("workers", cfg.EnhanceWorkers))
		}
	}

	// Services
	purchaseService := service.NewPurchaseService(mysqlAdapter, dispatcher, mailer, analyticsPub, assigner, log)
	itemService := service.NewItemService(mysqlAdapter, cache, queue, dispatcher, analyticsPub, log)
	ledgerService := service.NewLedgerService(mysqlAdapter, mysqlAdapter)

	// Session sweeper
	sched := cron.New()
	if _, err := sched.AddFunc("@hourly", func() {
		n, err := mysqlAdapter.DeleteExpiredSessions(context.Background())
		if err != nil {
			log.Warn("session sweep failed", zap.Error(err))
			return
		}
		if n > 0 {
			log.Info("expired sessions removed", zap.Int64("count", n))
		}
	}); err != nil {
		log.Fatal("failed to schedule session sweeper", zap.Error(err))
	}
	sched.Start()

	// HTTP server
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), logger.GinMiddleware(log))

	httpHandler := handler.NewHTTPHandler(itemService, purchaseService, ledgerService, log)
	httpHandler.Register(router, handler.SessionAuth(mysqlAdapter, log))

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Error("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.ShutdownTimeoutMs)*time.Millisecond)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	log.Info("HTTP server stopped")

	sched.Stop()

	if enhancer != nil {
		enhancer.Stop()
		log.Info("enhancement workers stopped")
	}

	dispatcher.Release()

	if kafkaPub != nil {
		kafkaPub.Close()
	}
	rdb.Close()
	db.Close()
	log.Info("connections closed")
}
