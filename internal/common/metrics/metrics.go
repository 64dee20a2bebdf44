package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_events_dispatched_total",
			Help: "Total number of entity-change events routed to a handler",
		},
		[]string{"entity_type"},
	)

	EventsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_events_skipped_total",
			Help: "Total number of dispatches with no handler or no mapped event",
		},
		[]string{"entity_type", "reason"},
	)

	HandlerFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_handler_failures_total",
			Help: "Total number of handler errors suppressed at the dispatcher boundary",
		},
		[]string{"entity_type"},
	)

	JobsEnqueued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_jobs_enqueued_total",
			Help: "Total number of jobs handed to the delivery queue",
		},
		[]string{"event_name"},
	)

	EmailsDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_emails_delivered_total",
			Help: "Total number of emails handed to the transport",
		},
		[]string{"status"},
	)

	EventProcessingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "notification_event_processing_seconds",
			Help: "Duration of event processing (build, resolve, render, enqueue)",
		},
		[]string{"event_name"},
	)
)
