// internal/notify/queue/consumer.go
package queue

import (
	"context"
	"sync"

	"academic-notifications/internal/common/config"
	"academic-notifications/internal/common/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Handler processes one delivery. A returned error nacks the message for the
// broker's redelivery policy.
type Handler func(ctx context.Context, d amqp.Delivery) error

// Consumer binds the delivery queue to the notification exchange and feeds
// deliveries to per-routing-key handlers.
type Consumer struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	cfg      config.QueueConfig
	logger   logger.Logger
	handlers map[string]Handler
	done     chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
}

func NewConsumer(cfg config.QueueConfig, log logger.Logger) (*Consumer, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, err
	}

	return &Consumer{
		conn:     conn,
		ch:       ch,
		cfg:      cfg,
		logger:   log.WithFields(map[string]interface{}{"component": "consumer"}),
		handlers: make(map[string]Handler),
		done:     make(chan struct{}),
	}, nil
}

// RegisterHandler binds a handler to a routing key. Call before Start.
func (c *Consumer) RegisterHandler(routingKey string, h Handler) {
	c.handlers[routingKey] = h
}

// Start declares the consumer queue, binds the registered keys, and consumes
// until Close.
func (c *Consumer) Start(ctx context.Context) error {
	var startErr error
	c.once.Do(func() {
		if err := c.ch.Qos(c.cfg.PrefetchCount, 0, false); err != nil {
			startErr = err
			return
		}
		q, err := c.ch.QueueDeclare(c.cfg.ConsumerQueue, true, false, false, false, nil)
		if err != nil {
			startErr = err
			return
		}
		for key := range c.handlers {
			if err := c.ch.QueueBind(q.Name, key, c.cfg.Exchange, false, nil); err != nil {
				startErr = err
				return
			}
		}
		msgs, err := c.ch.Consume(q.Name, "", false, false, false, false, nil)
		if err != nil {
			startErr = err
			return
		}

		c.wg.Add(1)
		go c.loop(ctx, msgs)
		c.logger.Info("consumer started", map[string]interface{}{
			"queue": c.cfg.ConsumerQueue,
		})
	})
	return startErr
}

func (c *Consumer) loop(ctx context.Context, msgs <-chan amqp.Delivery) {
	defer c.wg.Done()
	for {
		select {
		case <-c.done:
			return
		case <-ctx.Done():
			return
		case d, ok := <-msgs:
			if !ok {
				return
			}
			c.dispatch(ctx, d)
		}
	}
}

func (c *Consumer) dispatch(ctx context.Context, d amqp.Delivery) {
	h, ok := c.handlers[d.RoutingKey]
	if !ok {
		c.logger.Warn("no handler for routing key", map[string]interface{}{
			"key": d.RoutingKey,
		})
		_ = d.Nack(false, false)
		return
	}

	if err := h(ctx, d); err != nil {
		c.logger.Error("delivery handling failed", map[string]interface{}{
			"key": d.RoutingKey, "messageId": d.MessageId, "error": err.Error(),
		})
		_ = d.Nack(false, true)
		return
	}
	_ = d.Ack(false)
}

func (c *Consumer) Close() error {
	close(c.done)
	c.wg.Wait()
	if err := c.ch.Close(); err != nil {
		c.conn.Close()
		return err
	}
	return c.conn.Close()
}
