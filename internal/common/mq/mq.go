package mq

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"orderboard/internal/config"
)

const (
	// ChangesExchange fans a change event out to every connected dashboard
	// session, including the one that committed the change.
	ChangesExchange = "orders.changes"
	// ChangesLogQueue is the durable queue the change-subscriber mode drains.
	ChangesLogQueue = "orders.changes.log"
)

type Client struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

func Dial(cfg config.Rabbit) (*Client, error) {
	url := fmt.Sprintf("amqp://%s:%s@%s:%d/", cfg.User, cfg.Pass, cfg.Host, cfg.Port)
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	return &Client{conn: conn, ch: ch}, nil
}

func (c *Client) Close() {
	if c == nil {
		return
	}
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// DeclareChanges declares the fanout exchange and the durable log queue.
// Idempotent; every mode calls it on startup.
func (c *Client) DeclareChanges() error {
	if c == nil || c.ch == nil {
		return fmt.Errorf("nil channel")
	}
	if err := c.ch.ExchangeDeclare(ChangesExchange, "fanout", true, false, false, false, nil); err != nil {
		return err
	}
	if _, err := c.ch.QueueDeclare(ChangesLogQueue, true, false, false, false, nil); err != nil {
		return err
	}
	return c.ch.QueueBind(ChangesLogQueue, "", ChangesExchange, false, nil)
}

// PublishChange sends a change event to the fanout exchange. Events are
// invalidation signals, not diffs, so delivery is transient.
func (c *Client) PublishChange(ctx context.Context, body []byte) error {
	return c.ch.PublishWithContext(ctx, ChangesExchange, "", false, false, amqp.Publishing{
		DeliveryMode: amqp.Transient,
		ContentType:  "application/json",
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}

// ConsumeFanout binds a private auto-delete queue to the changes exchange so
// this process gets its own copy of every event. The queue disappears with the
// connection.
func (c *Client) ConsumeFanout(consumer string) (<-chan amqp.Delivery, error) {
	q, err := c.ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return nil, err
	}
	if err := c.ch.QueueBind(q.Name, "", ChangesExchange, false, nil); err != nil {
		return nil, err
	}
	return c.ch.Consume(q.Name, consumer, true, true, false, false, nil)
}

// ConsumeQueue drains a named durable queue with manual acks.
func (c *Client) ConsumeQueue(queue, consumer string, prefetch int) (<-chan amqp.Delivery, error) {
	if err := c.ch.Qos(prefetch, 0, false); err != nil {
		return nil, err
	}
	return c.ch.Consume(queue, consumer, false, false, false, false, nil)
}

// Cancel stops a consumer without closing the channel.
func (c *Client) Cancel(consumer string) error {
	return c.ch.Cancel(consumer, false)
}
