// cmd/delivery-worker/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"academic-notifications/internal/common/config"
	"academic-notifications/internal/common/database"
	"academic-notifications/internal/common/logger"
	"academic-notifications/internal/common/observability"
	"academic-notifications/internal/delivery"
	"academic-notifications/internal/notify/participants"
	"academic-notifications/internal/notify/processor"
	"academic-notifications/internal/notify/queue"
	"academic-notifications/internal/notify/recipients"
	"academic-notifications/internal/storage"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting delivery worker...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("delivery-worker")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init SES ---
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Notifications.AWS.Region))
	if err != nil {
		zapLog.Fatal("AWS config load failed", zap.Error(err))
	}
	sesClient := ses.NewFromConfig(awsCfg)

	// --- Init RabbitMQ producer + consumer with retry ---
	var q *queue.RabbitQueue
	err = retryWithBackoff(func() error {
		var err error
		q, err = queue.NewRabbitQueue(cfg.Queue, log)
		return err
	}, 10, 2*time.Second, zapLog, "RabbitMQ producer connection")

	if err != nil {
		zapLog.Fatal("rabbitmq producer failed after retries", zap.Error(err))
	}
	defer q.Close()

	var consumer *queue.Consumer
	err = retryWithBackoff(func() error {
		var err error
		consumer, err = queue.NewConsumer(cfg.Queue, log)
		return err
	}, 10, 2*time.Second, zapLog, "RabbitMQ consumer connection")

	if err != nil {
		zapLog.Fatal("rabbitmq consumer failed after retries", zap.Error(err))
	}
	zapLog.Info("RabbitMQ connected successfully")

	// --- Wire the processing pipeline ---
	store := storage.NewPostgresStore(pg.GetDB())
	configs := storage.NewCachedConfigStore(
		store,
		redis.GetClient(),
		time.Duration(cfg.Database.Redis.ConfigCacheTTL)*time.Second,
		log,
	)
	parts := participants.NewService(store, log)
	engine := recipients.NewEngine(store, parts, log)
	proc := processor.New(configs, engine, q, obs, cfg.Notifications.Email.HTML, log)

	mailer := delivery.NewMailer(sesClient, cfg.Notifications.Email.FromEmail, cfg.Notifications.Email.Enabled, log)
	auditor := delivery.NewAuditor(esClient.Client, cfg.Database.Elasticsearch.AuditIndex, log)
	worker := delivery.NewWorker(proc, mailer, auditor, log)

	consumer.RegisterHandler(cfg.Queue.EventKey, worker.HandleEventJob)
	consumer.RegisterHandler(cfg.Queue.EmailKey, worker.HandleEmailJob)

	consumeCtx, stopConsuming := context.WithCancel(ctx)
	defer stopConsuming()
	if err := consumer.Start(consumeCtx); err != nil {
		zapLog.Fatal("consumer start failed", zap.Error(err))
	}
	zapLog.Info("Delivery worker consuming", zap.String("queue", cfg.Queue.ConsumerQueue))

	// --- Health/Metrics server ---
	addr := cfg.App.MetricsAddr
	if addr == "" {
		addr = ":8081"
	}
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening", zap.String("addr", addr))
		if err := http.ListenAndServe(addr, nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping delivery worker...")
	stopConsuming()
	if err := consumer.Close(); err != nil {
		zapLog.Error("Error closing consumer", zap.Error(err))
	}

	zapLog.Info("Delivery worker stopped gracefully")
}
