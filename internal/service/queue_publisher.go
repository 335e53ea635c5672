// Package queue_publisher provides functions to publish domain events to
// RabbitMQ. Errors are logged and returned to allow callers to ignore
// failures without interrupting the main request flow. Publishing is
// disabled entirely when no broker URL is configured.
package queue_publisher

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	q "github.com/zyhxx/classseat/internal/queue"
)

// BrokerURL returns the configured RabbitMQ URL, or "" when messaging
// is disabled.
func BrokerURL() string {
	if url := os.Getenv("RABBITMQ_URL"); url != "" {
		return url
	}
	return os.Getenv("AMQP_URL")
}

// PublishSeatReserved publishes a SeatReservedEvent to the
// "seat.reserved" queue.
func PublishSeatReserved(ctx context.Context, event q.SeatReservedEvent) error {
	return publish(ctx, "seat.reserved", event)
}

// PublishUserDeleted publishes a UserDeletedEvent to the
// "user.deleted" queue.
func PublishUserDeleted(ctx context.Context, event q.UserDeletedEvent) error {
	return publish(ctx, "user.deleted", event)
}

// publish marshals the event and sends it to the named queue. The
// function never panics; any error is logged and returned so the caller
// can choose to ignore it. Messages are marked as persistent.
func publish(ctx context.Context, queueName string, event interface{}) error {
	url := BrokerURL()
	if url == "" {
		return nil // messaging not configured
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive
	// broker restarts.
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	err = ch.PublishWithContext(pubCtx, "", queueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		log.Printf("rabbitmq: publish to %s failed: %v", queueName, err)
	}
	return err
}
