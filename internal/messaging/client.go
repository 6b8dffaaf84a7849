// Package messaging holds the message broker client reserved for the
// asynchronous delivery-cost workflow. No request path publishes yet.
package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"github.com/parcelbox/parcel-service/internal/config"
	apperrors "github.com/parcelbox/parcel-service/internal/errors"
)

const brokerName = "amqp"

// DeliveryCostQueue is the queue a delivery-cost calculator will consume.
const DeliveryCostQueue = "parcel.delivery_cost"

var ErrNotConnected = errors.New("messaging: client not connected")

// Publisher is the surface a future workflow consumes.
type Publisher interface {
	Publish(ctx context.Context, queue string, body []byte) error
}

type dialFunc func(url string) (connection, error)

type connection interface {
	Channel() (channel, error)
	Close() error
}

type channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type Client struct {
	url  string
	dial dialFunc

	mu       sync.Mutex
	conn     connection
	ch       channel
	declared map[string]bool
	closed   bool
}

var _ Publisher = (*Client)(nil)

func NewClient(url string) *Client {
	return &Client{
		url:      url,
		dial:     dialAMQP,
		declared: make(map[string]bool),
	}
}

// Connect opens the connection and a single channel. Broker failures are
// returned as EXTERNAL_SERVICE_ERROR app errors wrapping the cause.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return nil
	}

	conn, err := c.dial(c.url)
	if err != nil {
		return apperrors.External(brokerName, fmt.Errorf("dial amqp: %w", err))
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return apperrors.External(brokerName, fmt.Errorf("open amqp channel: %w", err))
	}

	c.conn = conn
	c.ch = ch
	c.closed = false

	log.Info().Msg("message broker connected")
	return nil
}

// Publish sends a persistent JSON message to queue through the default
// exchange, declaring the queue as durable on first use.
func (c *Client) Publish(ctx context.Context, queue string, body []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ch == nil {
		return ErrNotConnected
	}

	if !c.declared[queue] {
		if _, err := c.ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			return apperrors.External(brokerName, fmt.Errorf("declare queue %s: %w", queue, err))
		}
		c.declared[queue] = true
	}

	err := c.ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		return apperrors.External(brokerName, fmt.Errorf("publish to %s: %w", queue, err))
	}
	return nil
}

// Close releases the channel and connection. Safe to call more than once
// and before Connect.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.conn == nil {
		c.closed = true
		return nil
	}
	c.closed = true

	var errs []error
	if c.ch != nil {
		if err := c.ch.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, err)
		}
	}
	if err := c.conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
		errs = append(errs, err)
	}

	c.conn = nil
	c.ch = nil
	c.declared = make(map[string]bool)

	return errors.Join(errs...)
}

func dialAMQP(url string) (connection, error) {
	conn, err := amqp.DialConfig(url, amqp.Config{
		Dial: amqp.DefaultDial(config.AMQPDialTimeout),
	})
	if err != nil {
		return nil, err
	}
	return &amqpConnection{conn}, nil
}

type amqpConnection struct {
	*amqp.Connection
}

func (c *amqpConnection) Channel() (channel, error) {
	return c.Connection.Channel()
}
