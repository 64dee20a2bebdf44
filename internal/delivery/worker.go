// internal/delivery/worker.go
package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	commonerrors "academic-notifications/internal/common/errors"
	"academic-notifications/internal/common/logger"
	"academic-notifications/internal/common/metrics"
	"academic-notifications/internal/notify/processor"
	"academic-notifications/internal/notify/queue"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Worker holds the two consumer-side handlers: event jobs go through the
// processor and come back out as email jobs; email jobs go to the transport.
type Worker struct {
	processor *processor.Processor
	mailer    *Mailer
	auditor   *Auditor
	logger    logger.Logger
}

func NewWorker(proc *processor.Processor, mailer *Mailer, auditor *Auditor, log logger.Logger) *Worker {
	return &Worker{
		processor: proc,
		mailer:    mailer,
		auditor:   auditor,
		logger:    log.WithFields(map[string]interface{}{"component": "delivery-worker"}),
	}
}

// HandleEventJob resolves and renders one queued event occurrence.
func (w *Worker) HandleEventJob(ctx context.Context, d amqp.Delivery) error {
	var job queue.EventJob
	if err := json.Unmarshal(d.Body, &job); err != nil {
		// malformed payloads never become processable, drop without retry
		w.logger.Error("malformed event job, dropped", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}

	w.logger.Info("processing event job", map[string]interface{}{
		"jobId": job.JobID, "eventName": job.EventName,
	})
	return w.processor.ProcessEvent(ctx, job.EventName, job.Data, nil)
}

// HandleEmailJob delivers one resolved message and audits the outcome.
func (w *Worker) HandleEmailJob(ctx context.Context, d amqp.Delivery) error {
	var job queue.EmailJob
	if err := json.Unmarshal(d.Body, &job); err != nil {
		w.logger.Error("malformed email job, dropped", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}

	sendErr := w.mailer.Send(ctx, job.Message)

	status := "sent"
	if sendErr != nil {
		status = "failed"
	}
	metrics.EmailsDelivered.WithLabelValues(status).Inc()

	w.audit(ctx, job, status, sendErr)

	if sendErr != nil {
		// only retryable failures go back to the broker; an addressless
		// message stays addressless no matter how often it is redelivered
		if !commonerrors.IsRetryable(sendErr) {
			w.logger.Error("email job dropped, not retryable", map[string]interface{}{
				"jobId": job.JobID, "error": sendErr.Error(),
			})
			return nil
		}
		return fmt.Errorf("deliver email job %s: %w", job.JobID, sendErr)
	}
	w.logger.Info("email delivered", map[string]interface{}{
		"jobId": job.JobID, "to": len(job.Message.To),
	})
	return nil
}

func (w *Worker) audit(ctx context.Context, job queue.EmailJob, status string, sendErr error) {
	if w.auditor == nil {
		return
	}

	entry := AuditEntry{
		JobID:       job.JobID,
		EventName:   job.EventName,
		Subject:     job.Message.Subject,
		To:          job.Message.To,
		Cc:          job.Message.Cc,
		Bcc:         job.Message.Bcc,
		Status:      status,
		DeliveredAt: time.Now().UTC(),
	}
	if sendErr != nil {
		entry.Error = sendErr.Error()
	}

	if err := w.auditor.Record(ctx, entry); err != nil {
		w.logger.Warn("audit record failed", map[string]interface{}{
			"jobId": job.JobID, "error": err.Error(),
		})
	}
}
