// cmd/notifier/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"academic-notifications/internal/common/config"
	"academic-notifications/internal/common/database"
	"academic-notifications/internal/common/logger"
	"academic-notifications/internal/common/observability"
	"academic-notifications/internal/models"
	"academic-notifications/internal/notify/dispatch"
	"academic-notifications/internal/notify/enrollment"
	"academic-notifications/internal/notify/eventdata"
	"academic-notifications/internal/notify/handlers"
	"academic-notifications/internal/notify/participants"
	"academic-notifications/internal/notify/queue"
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

	zapLog.Info("Starting notifier...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("notifier")
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

	// --- Init RabbitMQ with retry ---
	var q *queue.RabbitQueue
	err = retryWithBackoff(func() error {
		var err error
		q, err = queue.NewRabbitQueue(cfg.Queue, log)
		return err
	}, 10, 2*time.Second, zapLog, "RabbitMQ connection")

	if err != nil {
		zapLog.Fatal("rabbitmq failed after retries", zap.Error(err))
	}
	defer q.Close()
	zapLog.Info("RabbitMQ connected successfully")

	// --- Wire the pipeline ---
	store := storage.NewPostgresStore(pg.GetDB())
	parts := participants.NewService(store, log)

	assignmentBuilder := eventdata.NewTeachingAssignmentBuilder(store, parts, log)

	dispatcher := dispatch.New(log)
	dispatcher.Register(models.EntityInscription,
		handlers.NewInscriptionHandler(store, eventdata.NewInscriptionBuilder(store, parts, log), q, log))
	dispatcher.Register(models.EntityProposal,
		handlers.NewProposalHandler(store, eventdata.NewProposalBuilder(store, parts, log), q, log))
	dispatcher.Register(models.EntityPreliminaryProject,
		handlers.NewPreliminaryProjectHandler(store, eventdata.NewPreliminaryProjectBuilder(store, parts, log), q, log))
	dispatcher.Register(models.EntityFinalProject,
		handlers.NewFinalProjectHandler(store, eventdata.NewFinalProjectBuilder(store, parts, log), q, log))
	dispatcher.Register(models.EntityTeachingAssignment,
		handlers.NewTeachingAssignmentHandler(store, assignmentBuilder, q, log))

	enroll := enrollment.NewService(eventdata.NewInscriptionBuilder(store, parts, log), q, log)

	intake := &changeIntake{dispatcher: dispatcher, enrollment: enroll, logger: log}

	// --- HTTP server: change intake + health + metrics ---
	addr := cfg.App.MetricsAddr
	if addr == "" {
		addr = ":8080"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/changes", intake.handleChange)
	mux.HandleFunc("/v1/inscriptions/", intake.handleInscriptionCreated)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := pg.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "not ready"})
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "ready",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{Addr: addr, Handler: mux}
	go func() {
		zapLog.Info("Notifier listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping notifier...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}

	zapLog.Info("Notifier stopped gracefully")
}

// changeRequest is the intake payload posted by the academic backend after a
// mutation commits. Old is absent for creations.
type changeRequest struct {
	EntityType models.EntityType `json:"entityType"`
	Old        json.RawMessage   `json:"old,omitempty"`
	New        json.RawMessage   `json:"new"`
}

type changeIntake struct {
	dispatcher *dispatch.Dispatcher
	enrollment *enrollment.Service
	logger     logger.Logger
}

func (i *changeIntake) handleChange(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req changeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	newEntity, err := decodeEntity(req.EntityType, req.New)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if len(req.Old) == 0 {
		i.dispatcher.DispatchCreation(r.Context(), req.EntityType, newEntity)
	} else {
		oldEntity, err := decodeEntity(req.EntityType, req.Old)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		i.dispatcher.DispatchChange(r.Context(), req.EntityType, oldEntity, newEntity)
	}

	// Dispatch never reports failure back to the mutation path.
	w.WriteHeader(http.StatusAccepted)
}

// handleInscriptionCreated serves POST /v1/inscriptions/{id}/created, the
// explicit creation-time notification invoked by the enrollment flow.
func (i *changeIntake) handleInscriptionCreated(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	// v1 / inscriptions / {id} / created
	if len(parts) != 4 || parts[3] != "created" {
		http.NotFound(w, r)
		return
	}
	id, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		http.Error(w, "invalid inscription id", http.StatusBadRequest)
		return
	}

	if err := i.enrollment.NotifyCreated(r.Context(), id); err != nil {
		http.Error(w, "notification failed", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func decodeEntity(t models.EntityType, raw json.RawMessage) (interface{}, error) {
	var target interface{}
	switch t {
	case models.EntityInscription:
		target = &models.Inscription{}
	case models.EntityProposal:
		target = &models.Proposal{}
	case models.EntityPreliminaryProject:
		target = &models.PreliminaryProject{}
	case models.EntityFinalProject:
		target = &models.FinalProject{}
	case models.EntityTeachingAssignment:
		target = &models.TeachingAssignment{}
	default:
		return nil, fmt.Errorf("unknown entity type: %s", t)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return nil, fmt.Errorf("decode %s: %w", t, err)
	}
	return target, nil
}
