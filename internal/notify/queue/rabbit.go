// internal/notify/queue/rabbit.go
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"academic-notifications/internal/common/config"
	"academic-notifications/internal/common/logger"
	"academic-notifications/internal/models"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitQueue publishes jobs to a durable topic exchange. Event jobs and
// resolved-email jobs travel on separate routing keys so the delivery worker
// can tell them apart.
type RabbitQueue struct {
	conn   *amqp.Connection
	cfg    config.QueueConfig
	logger logger.Logger
}

func NewRabbitQueue(cfg config.QueueConfig, log logger.Logger) (*RabbitQueue, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(
		cfg.Exchange, "topic", true, false, false, false, nil,
	); err != nil {
		conn.Close()
		return nil, err
	}

	return &RabbitQueue{
		conn:   conn,
		cfg:    cfg,
		logger: log.WithFields(map[string]interface{}{"component": "queue"}),
	}, nil
}

func (q *RabbitQueue) Enqueue(ctx context.Context, eventName string, data map[string]string) (string, error) {
	job := EventJob{
		JobID:      uuid.New().String(),
		EventName:  eventName,
		Data:       data,
		EnqueuedAt: time.Now().UTC(),
	}
	if err := q.publish(ctx, q.cfg.EventKey, job.JobID, job); err != nil {
		return "", err
	}
	return job.JobID, nil
}

func (q *RabbitQueue) EnqueueDirect(ctx context.Context, eventName string, msg models.EmailMessage) (string, error) {
	job := EmailJob{
		JobID:      uuid.New().String(),
		EventName:  eventName,
		Message:    msg,
		EnqueuedAt: time.Now().UTC(),
	}
	if err := q.publish(ctx, q.cfg.EmailKey, job.JobID, job); err != nil {
		return "", err
	}
	return job.JobID, nil
}

func (q *RabbitQueue) publish(ctx context.Context, key, jobID string, payload interface{}) error {
	ch, err := q.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	// publisher confirms: the broker acks every publishing before Enqueue
	// reports the job id to the caller
	if err := ch.Confirm(false); err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	conf, err := ch.PublishWithDeferredConfirmWithContext(
		ctx, q.cfg.Exchange, key, false, false,
		amqp.Publishing{
			ContentType:   "application/json",
			DeliveryMode:  amqp.Persistent,
			MessageId:     jobID,
			CorrelationId: uuid.NewString(),
			Timestamp:     time.Now(),
			Body:          body,
		},
	)
	if err != nil {
		return err
	}

	acked, err := conf.WaitContext(ctx)
	if err != nil {
		return err
	}
	if !acked {
		return fmt.Errorf("publish %s nacked by broker", jobID)
	}

	q.logger.Info("job published", map[string]interface{}{
		"key": key, "jobId": jobID, "exchange": q.cfg.Exchange,
	})
	return nil
}

func (q *RabbitQueue) Close() error {
	return q.conn.Close()
}
