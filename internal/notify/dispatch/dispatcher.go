// internal/notify/dispatch/dispatcher.go

// Package dispatch routes entity mutations to the change handler registered
// for the entity's type. The registry is explicit and populated at process
// start; no runtime type inspection.
package dispatch

import (
	"context"
	"fmt"

	"academic-notifications/internal/common/logger"
	"academic-notifications/internal/common/metrics"
	"academic-notifications/internal/models"
)

// ChangeHandler reacts to one entity kind's mutations. Implementations
// receive the entity values supplied by the caller and type-assert them.
type ChangeHandler interface {
	HandleChange(ctx context.Context, oldEntity, newEntity interface{}) error
	HandleCreation(ctx context.Context, newEntity interface{}) error
}

// Dispatcher is the no-throw boundary between the business mutation path and
// the notification pipeline. A notification failure never fails or rolls
// back the triggering operation: handler errors and panics are logged and
// swallowed here.
type Dispatcher struct {
	handlers map[models.EntityType]ChangeHandler
	logger   logger.Logger
}

func New(log logger.Logger) *Dispatcher {
	return &Dispatcher{
		handlers: make(map[models.EntityType]ChangeHandler),
		logger:   log.WithFields(map[string]interface{}{"component": "dispatcher"}),
	}
}

// Register binds a handler to an entity type. Later registrations for the
// same type replace earlier ones.
func (d *Dispatcher) Register(t models.EntityType, h ChangeHandler) {
	d.handlers[t] = h
}

// DispatchChange routes a before/after pair. Types without a registered
// handler are a silent no-op; most entity types have no notification
// behavior.
func (d *Dispatcher) DispatchChange(ctx context.Context, t models.EntityType, oldEntity, newEntity interface{}) {
	d.invoke(ctx, t, func(h ChangeHandler) error {
		return h.HandleChange(ctx, oldEntity, newEntity)
	})
}

// DispatchCreation routes a freshly created entity.
func (d *Dispatcher) DispatchCreation(ctx context.Context, t models.EntityType, newEntity interface{}) {
	d.invoke(ctx, t, func(h ChangeHandler) error {
		return h.HandleCreation(ctx, newEntity)
	})
}

func (d *Dispatcher) invoke(ctx context.Context, t models.EntityType, call func(ChangeHandler) error) {
	h, ok := d.handlers[t]
	if !ok {
		metrics.EventsSkipped.WithLabelValues(string(t), "no_handler").Inc()
		return
	}

	metrics.EventsDispatched.WithLabelValues(string(t)).Inc()

	defer func() {
		if r := recover(); r != nil {
			metrics.HandlerFailures.WithLabelValues(string(t)).Inc()
			d.logger.Error("change handler panicked", map[string]interface{}{
				"entityType": string(t), "panic": fmt.Sprintf("%v", r),
			})
		}
	}()

	if err := call(h); err != nil {
		metrics.HandlerFailures.WithLabelValues(string(t)).Inc()
		d.logger.Error("change handler failed", map[string]interface{}{
			"entityType": string(t), "error": err.Error(),
		})
	}
}
