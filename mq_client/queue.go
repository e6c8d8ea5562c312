package mq_client

import (
	"github.com/streadway/amqp"
)

const EventsExchange = "ledger.events"

var AMQPChannel *amqp.Channel
var Connection *amqp.Connection

func Connect() error {
	cn, err := CreateAMQP()
	if err != nil {
		return err
	}

	Connection = cn

	return nil
}

func GetChannel() *amqp.Channel {
	if AMQPChannel != nil {
		return AMQPChannel
	}

	if Connection == nil {
		return nil
	}

	channel, _ := Connection.Channel()

	AMQPChannel = channel

	return AMQPChannel
}

// EnqueueEvent publishes a ledger event on the topic exchange with the
// routing key kind.id.event. Events are best-effort: a missing connection is
// silently a no-op, delivery problems are the broker's to report.
func EnqueueEvent(kind string, id string, event string, payload []byte) error {
	channel := GetChannel()
	if channel == nil {
		return nil
	}

	routing_key := kind + "." + id + "." + event

	channel.ExchangeDeclare(EventsExchange, "topic", false, false, false, false, nil)

	return channel.Publish(
		EventsExchange,
		routing_key,
		false,
		false,
		amqp.Publishing{
			Headers:      amqp.Table{},
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Persistent,
			Priority:     0,
		},
	)
}
