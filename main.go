package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"greenledger/backend/config"
	"greenledger/backend/controllers"
	"greenledger/backend/database"
	"greenledger/backend/jobs"
	"greenledger/backend/logger"
	"greenledger/backend/middlewares"
	"greenledger/backend/observability"
	"greenledger/backend/routes"
	"greenledger/backend/utils"
)

func main() {
	cfg := config.Load()
	lggr, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer lggr.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := openStore(ctx, cfg, lggr)

	enc, err := utils.NewCredentialEncryptor(cfg.EncryptionKey)
	if err != nil {
		lggr.Errorw("credential encryptor", "err", err)
		return
	}

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)

	var pub jobs.Publisher = jobs.NewLogPublisher(lggr.Named("followup"))
	if len(cfg.KafkaBrokers) > 0 {
		pub = jobs.NewKafkaPublisher(cfg.KafkaBrokers, cfg.FollowupTopic)
		lggr.Infow("connection checks go to kafka", "brokers", cfg.KafkaBrokers, "topic", cfg.FollowupTopic)
	}
	followups := jobs.NewScheduler(pub, cfg.FollowupDelay, lggr.Named("followup"), metrics)

	env := controllers.Env{
		Store:         store,
		Encryptor:     enc,
		Followups:     followups,
		Log:           lggr,
		Metrics:       metrics,
		DBTimeout:     cfg.DBTimeout,
		JWTSecret:     cfg.JWTSecret,
		AdminPassword: cfg.AdminPassword,
	}

	r := gin.New()
	r.Use(gin.Recovery(), middlewares.RequestID(), middlewares.AccessLog(lggr.Named("http")), middlewares.CORS(cfg.CORSOrigin))
	routes.Register(r, cfg, env)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		lggr.Infof("server on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lggr.Errorw("server stopped", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lggr.Errorw("server shutdown", "err", err)
	}
	if err := followups.Close(); err != nil {
		lggr.Errorw("followup publisher close", "err", err)
	}
}

// openStore picks the persistence gateway: Postgres, in-memory for demos, or an
// unconfigured store that fails every call.
func openStore(ctx context.Context, cfg config.Config, lggr logger.Logger) database.Store {
	switch cfg.DatabaseURL {
	case "":
		lggr.Warnw("SUPABASE_DB_URL not set; intake endpoints will report the database as not configured")
		return database.Unconfigured{}
	case database.MemoryURL:
		lggr.Warnw("using in-memory store; data is lost on restart")
		return database.NewMemoryStore()
	}
	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		lggr.Errorw("database unavailable", "err", err)
		return database.Unconfigured{}
	}
	if err := database.EnsureSchema(ctx, pool); err != nil {
		lggr.Errorw("schema ensure failed", "err", err)
	}
	return database.NewPgStore(pool)
}
