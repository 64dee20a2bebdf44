// internal/notify/queue/queue.go

// Package queue is the producer/consumer boundary against the delivery
// broker. Submission is fire-and-forget: callers get a job id back and the
// broker owns retries and scheduling.
package queue

import (
	"context"
	"sync"
	"time"

	"academic-notifications/internal/models"

	"github.com/google/uuid"
)

// EventJob carries a named event and its data map to the delivery worker.
type EventJob struct {
	JobID      string            `json:"jobId"`
	EventName  string            `json:"eventName"`
	Data       map[string]string `json:"data"`
	EnqueuedAt time.Time         `json:"enqueuedAt"`
}

// EmailJob carries a fully resolved message to the transport.
type EmailJob struct {
	JobID      string              `json:"jobId"`
	EventName  string              `json:"eventName,omitempty"`
	Message    models.EmailMessage `json:"message"`
	EnqueuedAt time.Time           `json:"enqueuedAt"`
}

// Queue is the delivery-queue capability consumed by the notification core.
// At-least-once, asynchronous; the returned job id is the only confirmation.
type Queue interface {
	// Enqueue submits a named event with its data map.
	Enqueue(ctx context.Context, eventName string, data map[string]string) (string, error)
	// EnqueueDirect submits an already-resolved email message.
	EnqueueDirect(ctx context.Context, eventName string, msg models.EmailMessage) (string, error)
}

// MemoryQueue collects jobs in memory. Used by tests and local development.
type MemoryQueue struct {
	mu     sync.Mutex
	Events []EventJob
	Emails []EmailJob
	// Err, when set, is returned by every enqueue.
	Err error
}

func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{}
}

func (q *MemoryQueue) Enqueue(ctx context.Context, eventName string, data map[string]string) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.Err != nil {
		return "", q.Err
	}
	job := EventJob{
		JobID:      uuid.New().String(),
		EventName:  eventName,
		Data:       data,
		EnqueuedAt: time.Now().UTC(),
	}
	q.Events = append(q.Events, job)
	return job.JobID, nil
}

func (q *MemoryQueue) EnqueueDirect(ctx context.Context, eventName string, msg models.EmailMessage) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.Err != nil {
		return "", q.Err
	}
	job := EmailJob{
		JobID:      uuid.New().String(),
		EventName:  eventName,
		Message:    msg,
		EnqueuedAt: time.Now().UTC(),
	}
	q.Emails = append(q.Emails, job)
	return job.JobID, nil
}

// EventNames returns the event names of all collected event jobs, in order.
func (q *MemoryQueue) EventNames() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	names := make([]string, 0, len(q.Events))
	for _, j := range q.Events {
		names = append(names, j.EventName)
	}
	return names
}
