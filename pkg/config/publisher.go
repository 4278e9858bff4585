package config

import (
	"encoding/json"
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher writes JSON messages to durable queues over a dedicated channel.
type Publisher struct {
	channel *amqp.Channel
}

func NewPublisher() (*Publisher, error) {
	ch, err := openChannel()
	if err != nil {
		return nil, err
	}
	return &Publisher{channel: ch}, nil
}

// declareQueue makes a durable, non-exclusive queue. Declaration is
// idempotent, so both publisher and consumer declare before use and neither
// cares who came first.
func declareQueue(ch *amqp.Channel, queueName string) (amqp.Queue, error) {
	return ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,   // args
	)
}

// Publish marshals the message to JSON and sends it to the named queue with
// persistent delivery.
func (p *Publisher) Publish(queueName string, message interface{}) error {
	if _, err := declareQueue(p.channel, queueName); err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	err = p.channel.Publish(
		"",        // exchange
		queueName, // routing key
		false,     // mandatory
		false,     // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	log.Printf("Published message to queue %s: %s", queueName, string(body))
	return nil
}

func (p *Publisher) Close() error {
	if p.channel != nil {
		return p.channel.Close()
	}
	return nil
}
