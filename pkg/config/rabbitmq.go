package config

import (
	"fmt"
	"log"
	"os"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

var RabbitMQ *amqp.Connection

const (
	rabbitDialAttempts = 10
	rabbitDialBackoff  = 3 * time.Second
)

// InitRabbitMQ connects to the broker named by the RABBITMQ_* environment,
// retrying while the broker is still coming up.
func InitRabbitMQ() {
	url := fmt.Sprintf("amqp://%s:%s@%s:%s/",
		os.Getenv("RABBITMQ_USER"),
		os.Getenv("RABBITMQ_PASSWORD"),
		os.Getenv("RABBITMQ_HOST"),
		os.Getenv("RABBITMQ_PORT"),
	)

	var err error
	for i := 0; i < rabbitDialAttempts; i++ {
		var conn *amqp.Connection
		conn, err = amqp.Dial(url)
		if err == nil {
			RabbitMQ = conn
			log.Printf("Successfully connected to RabbitMQ at %s", os.Getenv("RABBITMQ_HOST"))
			return
		}
		if i < rabbitDialAttempts-1 {
			log.Printf("Failed to connect to RabbitMQ (attempt %d/%d): %v. Retrying in %v...",
				i+1, rabbitDialAttempts, err, rabbitDialBackoff)
			time.Sleep(rabbitDialBackoff)
		}
	}

	log.Fatalf("Failed to connect to RabbitMQ after %d attempts: %v", rabbitDialAttempts, err)
}

func openChannel() (*amqp.Channel, error) {
	if RabbitMQ == nil {
		return nil, fmt.Errorf("RabbitMQ connection not initialized")
	}
	ch, err := RabbitMQ.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	return ch, nil
}

// DeleteQueue deletes a queue by name. Deleting a queue that does not exist
// is an error.
func DeleteQueue(queueName string) error {
	ch, err := openChannel()
	if err != nil {
		return err
	}
	defer ch.Close()

	// unconditional delete: ifUnused and ifEmpty both off
	if _, err := ch.QueueDelete(queueName, false, false, false); err != nil {
		return fmt.Errorf("failed to delete queue %s: %w", queueName, err)
	}

	log.Printf("Successfully deleted RabbitMQ queue: %s", queueName)
	return nil
}

// PurgeQueue drops every message from a queue without deleting the queue.
func PurgeQueue(queueName string) error {
	ch, err := openChannel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if _, err := ch.QueuePurge(queueName, false); err != nil {
		return fmt.Errorf("failed to purge queue %s: %w", queueName, err)
	}

	log.Printf("Successfully purged RabbitMQ queue: %s", queueName)
	return nil
}
