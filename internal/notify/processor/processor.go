// internal/notify/processor/processor.go

// Package processor turns an enqueued event into a resolved, rendered email
// job. It is the second half of the pipeline: configuration lookup, recipient
// resolution and template rendering happen here, inside the delivery worker.
package processor

import (
	"context"
	"time"

	commonerrors "academic-notifications/internal/common/errors"
	"academic-notifications/internal/common/logger"
	"academic-notifications/internal/common/metrics"
	"academic-notifications/internal/common/observability"
	"academic-notifications/internal/models"
	"academic-notifications/internal/notify/queue"
	"academic-notifications/internal/notify/recipients"
	"academic-notifications/internal/notify/template"
	"academic-notifications/internal/storage"
)

type Processor struct {
	configs storage.ConfigStore
	engine  *recipients.Engine
	queue   queue.Queue
	obs     *observability.Observability
	logger  logger.Logger
	html    bool
}

func New(configs storage.ConfigStore, engine *recipients.Engine, q queue.Queue, obs *observability.Observability, html bool, log logger.Logger) *Processor {
	return &Processor{
		configs: configs,
		engine:  engine,
		queue:   q,
		obs:     obs,
		html:    html,
		logger:  log.WithFields(map[string]interface{}{"component": "processor"}),
	}
}

// ProcessEvent resolves the recipients for one event occurrence, renders its
// templates and submits the finished message for delivery. Events with no
// active configuration or no resolvable recipients are dropped silently;
// that is configuration, not failure.
func (p *Processor) ProcessEvent(ctx context.Context, eventName string, data map[string]string, entityCtx *recipients.EntityContext) error {
	start := time.Now()
	defer func() {
		d := time.Since(start)
		metrics.EventProcessingDuration.WithLabelValues(eventName).Observe(d.Seconds())
		p.obs.RecordEventDuration(ctx, eventName, d)
	}()

	cfg, err := p.configs.ActiveConfig(ctx, eventName)
	if err != nil {
		if storage.IsNotFound(err) {
			p.logger.Info("no active configuration, nothing to do", map[string]interface{}{
				"eventName": eventName,
			})
			p.obs.RecordEventProcessed(ctx, eventName, "unconfigured")
			return nil
		}
		p.obs.RecordEventProcessed(ctx, eventName, "error")
		return commonerrors.NewConfigLookupFailedError(eventName, err)
	}

	rules, err := p.configs.Rules(ctx, cfg.ID)
	if err != nil {
		p.obs.RecordEventProcessed(ctx, eventName, "error")
		return commonerrors.NewConfigLookupFailedError(eventName, err)
	}

	resolved := p.engine.Resolve(ctx, rules, data, entityCtx)
	if resolved.Empty() {
		p.logger.Warn("no recipients resolved, event dropped", map[string]interface{}{
			"eventName": eventName, "configId": cfg.ID, "rules": len(rules),
		})
		p.obs.RecordEventProcessed(ctx, eventName, "no_recipients")
		return nil
	}

	msg := models.EmailMessage{
		To:      resolved.To(),
		Cc:      resolved.Cc(),
		Bcc:     resolved.Bcc(),
		Subject: template.Render(cfg.SubjectTemplate, data),
		Body:    template.Render(cfg.BodyTemplate, data),
		HTML:    p.html,
	}

	jobID, err := p.queue.EnqueueDirect(ctx, eventName, msg)
	if err != nil {
		p.obs.RecordEventProcessed(ctx, eventName, "error")
		return commonerrors.NewEnqueueFailedError(eventName, err)
	}

	p.logger.Info("email job submitted", map[string]interface{}{
		"eventName": eventName,
		"jobId":     jobID,
		"to":        len(msg.To),
		"cc":        len(msg.Cc),
		"bcc":       len(msg.Bcc),
	})
	p.obs.RecordEventProcessed(ctx, eventName, "submitted")
	return nil
}

// HasActiveConfiguration reports whether an event name currently has an
// active configuration. Producers may use it to skip data assembly entirely.
// A store failure reads as "unknown", reported as false with an error log so
// a flapping database is not mistaken for a missing configuration.
func (p *Processor) HasActiveConfiguration(ctx context.Context, eventName string) bool {
	_, err := p.configs.ActiveConfig(ctx, eventName)
	if err == nil {
		return true
	}
	if !storage.IsNotFound(err) {
		p.logger.Error("configuration lookup failed", map[string]interface{}{
			"eventName": eventName, "error": err.Error(),
		})
	}
	return false
}
