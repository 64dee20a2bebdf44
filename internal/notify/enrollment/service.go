// internal/notify/enrollment/service.go

// Package enrollment owns the creation-time notification for inscriptions.
// The generic change pipeline skips inscription creation on purpose; this
// service is called by the enrollment flow itself, which knows when the
// inscription and its student links are fully persisted.
package enrollment

import (
	"context"

	commonerrors "academic-notifications/internal/common/errors"
	"academic-notifications/internal/common/logger"
	"academic-notifications/internal/common/metrics"
	"academic-notifications/internal/notify/eventdata"
	"academic-notifications/internal/notify/events"
	"academic-notifications/internal/notify/queue"
)

type Service struct {
	builder eventdata.Builder
	queue   queue.Queue
	logger  logger.Logger
}

func NewService(builder eventdata.Builder, q queue.Queue, log logger.Logger) *Service {
	return &Service{
		builder: builder,
		queue:   q,
		logger:  log.WithFields(map[string]interface{}{"component": "enrollment"}),
	}
}

// NotifyCreated fires the inscription-created event. Call it after the
// inscription and all its student rows are committed; the builder reads them
// back to assemble the participant summary.
func (s *Service) NotifyCreated(ctx context.Context, inscriptionID int64) error {
	data, err := s.builder.Build(ctx, inscriptionID, events.InscriptionCreated)
	if err != nil {
		s.logger.Error("event data build failed", map[string]interface{}{
			"inscriptionId": inscriptionID, "error": err.Error(),
		})
		return commonerrors.NewEventDataBuildFailedError(events.InscriptionCreated, err)
	}

	jobID, err := s.queue.Enqueue(ctx, events.InscriptionCreated, data)
	if err != nil {
		s.logger.Error("enqueue failed", map[string]interface{}{
			"inscriptionId": inscriptionID, "error": err.Error(),
		})
		return commonerrors.NewEnqueueFailedError(events.InscriptionCreated, err)
	}

	metrics.JobsEnqueued.WithLabelValues(events.InscriptionCreated).Inc()
	s.logger.Info("inscription creation notified", map[string]interface{}{
		"inscriptionId": inscriptionID, "jobId": jobID,
	})
	return nil
}
