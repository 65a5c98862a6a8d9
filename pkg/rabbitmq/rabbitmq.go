package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/streadway/amqp"
	"go.uber.org/zap"
)

// PortfolioQueue is the durable queue carrying portfolio lifecycle events.
const PortfolioQueue = "portfolio_events"

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	mu      sync.Mutex
	log     *zap.Logger
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
}

// NewClient connects to RabbitMQ, opens a channel and declares PortfolioQueue.
func NewClient(cfg Config, log *zap.Logger) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declare(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	log.Info("rabbitmq connected", zap.String("queue", PortfolioQueue))

	return &Client{
		conn:    conn,
		channel: ch,
		log:     log,
	}, nil
}

func declare(ch *amqp.Channel) error {
	_, err := ch.QueueDeclare(
		PortfolioQueue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare %s: %w", PortfolioQueue, err)
	}
	return nil
}

// Close closes the RabbitMQ channel and connection.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors during RabbitMQ client close: %v", errs)
	}
	return nil
}

// PublishPortfolioEvent publishes event as a persistent JSON message.
func (c *Client) PublishPortfolioEvent(ctx context.Context, event PortfolioEvent) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := event.Marshal()
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	err = c.channel.Publish(
		"",             // default exchange
		PortfolioQueue, // routing key
		false,          // mandatory
		false,          // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         string(event.Type),
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}

	c.log.Debug("portfolio event published",
		zap.String("type", string(event.Type)),
		zap.String("portfolio_id", event.PortfolioID))
	return nil
}

// ConsumePortfolioEvents starts a goroutine delivering events to handler.
// Messages are acked on success and requeued when handler fails;
// undecodable messages are dropped.
func (c *Client) ConsumePortfolioEvents(handler func(PortfolioEvent) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	msgs, err := c.channel.Consume(
		PortfolioQueue,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	go func() {
		for msg := range msgs {
			c.deliver(msg, handler)
		}
		c.log.Info("portfolio event consumer stopped")
	}()

	return nil
}

func (c *Client) deliver(msg amqp.Delivery, handler func(PortfolioEvent) error) {
	var event PortfolioEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		c.log.Error("dropping malformed portfolio event", zap.Uint64("delivery_tag", msg.DeliveryTag), zap.Error(err))
		if err := msg.Nack(false, false); err != nil {
			c.log.Error("nack failed", zap.Uint64("delivery_tag", msg.DeliveryTag), zap.Error(err))
		}
		return
	}

	if err := handler(event); err != nil {
		c.log.Error("portfolio event handler failed", zap.Uint64("delivery_tag", msg.DeliveryTag), zap.Error(err))
		if err := msg.Nack(false, true); err != nil {
			c.log.Error("nack failed", zap.Uint64("delivery_tag", msg.DeliveryTag), zap.Error(err))
		}
		return
	}

	if err := msg.Ack(false); err != nil {
		c.log.Error("ack failed", zap.Uint64("delivery_tag", msg.DeliveryTag), zap.Error(err))
	}
}
