package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/controlai/controlai/internal/logger"
)

const publishTimeout = 5 * time.Second

// AMQPClient publishes events to a durable direct exchange, routed by event type.
// A dropped connection is redialled on the next Publish.
type AMQPClient struct {
	url          string
	exchangeName string
	logger       *logger.Logger

	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel
}

func NewAMQPClient(url, exchangeName string, logger *logger.Logger) (*AMQPClient, error) {
	client := &AMQPClient{
		url:          url,
		exchangeName: exchangeName,
		logger:       logger,
	}

	if err := client.connect(); err != nil {
		return nil, err
	}

	return client, nil
}

// connect dials the broker and declares the exchange. Callers hold mu or own
// the client exclusively.
func (c *AMQPClient) connect() error {
	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		c.exchangeName, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("declare exchange: %w", err)
	}

	c.conn = conn
	c.channel = channel

	go c.watch(conn.NotifyClose(make(chan *amqp091.Error, 1)))

	return nil
}

// watch logs an unexpected connection loss. A clean Close sends nothing.
func (c *AMQPClient) watch(closed <-chan *amqp091.Error) {
	if err, ok := <-closed; ok && err != nil {
		c.logger.Warn("AMQP connection lost", "error", err)
	}
}

func (c *AMQPClient) connected() bool {
	return c.conn != nil && !c.conn.IsClosed() && c.channel != nil && !c.channel.IsClosed()
}

func (c *AMQPClient) Publish(ctx context.Context, event ExpenseEvent) error {
	body, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected() {
		c.closeLocked()
		if err = c.connect(); err != nil {
			return fmt.Errorf("reconnect: %w", err)
		}
		c.logger.Info("AMQP connection re-established", "exchange", c.exchangeName)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = c.channel.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		event.Type,     // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    event.Timestamp,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	c.logger.Debug("Published expense event",
		"type", event.Type,
		"expense_id", event.ExpenseID,
		"exchange", c.exchangeName,
	)

	return nil
}

func (c *AMQPClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.closeLocked()
}

func (c *AMQPClient) closeLocked() error {
	var errs []error

	if c.channel != nil && !c.channel.IsClosed() {
		if err := c.channel.Close(); err != nil {
			c.logger.Warn("Failed to close AMQP channel", "error", err)
			errs = append(errs, fmt.Errorf("close channel: %w", err))
		}
	}
	if c.conn != nil && !c.conn.IsClosed() {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close connection: %w", err))
		}
	}

	c.channel = nil
	c.conn = nil

	return errors.Join(errs...)
}

// NewPublisher connects to url, or returns a NopPublisher when url is empty.
func NewPublisher(url, exchangeName string, logger *logger.Logger) (Publisher, error) {
	if url == "" {
		logger.Info("No AMQP URL configured, expense events are disabled")
		return NopPublisher{}, nil
	}

	client, err := NewAMQPClient(url, exchangeName, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("Publishing expense events", "exchange", exchangeName)
	return client, nil
}
