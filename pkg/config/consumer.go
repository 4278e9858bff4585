package config

import (
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Consumer drains one queue and hands each delivery to a handler. A handler
// error nacks the message back onto the queue.
type Consumer struct {
	channel *amqp.Channel
	queue   string
}

func NewConsumer(queueName string) (*Consumer, error) {
	ch, err := openChannel()
	if err != nil {
		return nil, err
	}

	q, err := declareQueue(ch, queueName)
	if err != nil {
		return nil, err
	}

	return &Consumer{channel: ch, queue: q.Name}, nil
}

// Consume blocks, acking each delivery the handler accepts and requeueing the
// ones it rejects.
func (c *Consumer) Consume(handler func([]byte) error) error {
	msgs, err := c.channel.Consume(
		c.queue,
		"",    // consumer
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,   // args
	)
	if err != nil {
		return err
	}

	log.Printf("Consumer listening on queue %s", c.queue)
	for msg := range msgs {
		if err := handler(msg.Body); err != nil {
			log.Printf("Handle msg failed: %v", err)
			msg.Nack(false, true)
		} else {
			msg.Ack(false)
		}
	}
	return nil
}

func (c *Consumer) Close() error {
	return c.channel.Close()
}
