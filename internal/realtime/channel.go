package realtime

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"storefront/config"
	"storefront/models"
)

// Handler processes one pushed change event. Returning an error nacks the
// delivery back onto the queue.
type Handler func(models.ChangeEvent) error

// Channel is the push-notification side of the backend: it delivers
// row-change events for watched tables. One Channel holds the broker
// connection; each Subscribe opens its own consumer that can be torn
// down independently.
type Channel struct {
	conn *amqp.Connection
	cfg  config.RabbitMQConfig
}

func Dial(cfg config.RabbitMQConfig) (*Channel, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	return &Channel{conn: conn, cfg: cfg}, nil
}

func (c *Channel) Close() {
	if c.conn != nil {
		c.conn.Close()
	}
}

// Subscription is one active consumer. Close is safe to call repeatedly;
// after Close no further events are delivered to the handler.
type Subscription struct {
	ch   *amqp.Channel
	once sync.Once
}

func (s *Subscription) Close() error {
	var err error
	s.once.Do(func() {
		err = s.ch.Close()
	})
	return err
}

// Subscribe consumes change events from queueName, filtered to the given
// table and, when keyValue is non-empty, to rows whose keyField matches.
// Events for other rows are acknowledged and dropped.
func (c *Channel) Subscribe(queueName, table, keyField, keyValue string, handler Handler) (*Subscription, error) {
	ch, err := c.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.Qos(c.cfg.PrefetchCount, 0, false); err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	// Declare queue (idempotent)
	_, err = ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	msgs, err := ch.Consume(
		queueName,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to register consumer: %w", err)
	}

	log.Printf("✓ Subscribed to %s (table=%s, %s=%s)", queueName, table, keyField, keyValue)

	sub := &Subscription{ch: ch}
	go func() {
		for msg := range msgs {
			evt, ok := decodeEvent(msg.Body)
			if !ok || evt.Table != table {
				msg.Ack(false)
				continue
			}
			if keyValue != "" && evt.RowID(keyField) != keyValue {
				msg.Ack(false)
				continue
			}
			if err := handler(evt); err != nil {
				log.Printf("✗ Error processing %s event: %v", table, err)
				// Reject and requeue
				msg.Nack(false, true)
			} else {
				msg.Ack(false)
			}
		}
	}()
	return sub, nil
}

func decodeEvent(body []byte) (models.ChangeEvent, bool) {
	var evt models.ChangeEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		log.Printf("✗ Dropping undecodable change event: %v", err)
		return evt, false
	}
	if evt.Kind != models.EventInsert && evt.Kind != models.EventUpdate {
		return evt, false
	}
	return evt, true
}
