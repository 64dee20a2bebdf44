// internal/notify/queue/queue_test.go
package queue

import (
	"context"
	"errors"
	"testing"

	"academic-notifications/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestMemoryQueue_Enqueue(t *testing.T) {
	q := NewMemoryQueue()

	jobID, err := q.Enqueue(context.Background(), "INSCRIPTION_APPROVED", map[string]string{"StageName": "Aprobado"})
	assert.NoError(t, err)
	assert.NotEmpty(t, jobID)

	assert.Len(t, q.Events, 1)
	assert.Equal(t, jobID, q.Events[0].JobID)
	assert.Equal(t, "INSCRIPTION_APPROVED", q.Events[0].EventName)
	assert.Equal(t, "Aprobado", q.Events[0].Data["StageName"])
	assert.False(t, q.Events[0].EnqueuedAt.IsZero())
}

func TestMemoryQueue_EnqueueDirect(t *testing.T) {
	q := NewMemoryQueue()

	msg := models.EmailMessage{
		To:      []string{"ana@uni.edu"},
		Subject: "Asunto",
		Body:    "Cuerpo",
	}
	jobID, err := q.EnqueueDirect(context.Background(), "INSCRIPTION_APPROVED", msg)
	assert.NoError(t, err)
	assert.NotEmpty(t, jobID)

	assert.Len(t, q.Emails, 1)
	assert.Equal(t, msg, q.Emails[0].Message)
}

func TestMemoryQueue_DistinctJobIDs(t *testing.T) {
	q := NewMemoryQueue()

	first, err := q.Enqueue(context.Background(), "A", nil)
	assert.NoError(t, err)
	second, err := q.Enqueue(context.Background(), "B", nil)
	assert.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.Equal(t, []string{"A", "B"}, q.EventNames())
}

func TestMemoryQueue_InjectedError(t *testing.T) {
	q := NewMemoryQueue()
	q.Err = errors.New("broker down")

	_, err := q.Enqueue(context.Background(), "A", nil)
	assert.Error(t, err)
	_, err = q.EnqueueDirect(context.Background(), "A", models.EmailMessage{})
	assert.Error(t, err)
	assert.Empty(t, q.Events)
	assert.Empty(t, q.Emails)
}
