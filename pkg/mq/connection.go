package mq

import (
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"habitpulse/pkg/config"
)

const (
	ExchangeName = "habitpulse.events"

	defaultConnectionName = "habitpulse"
)

// dialConfig builds the AMQP client config. A dead broker fails the dial
// after DialTimeout instead of blocking startup.
func dialConfig(cfg config.MQConfig) amqp091.Config {
	name := cfg.ConnectionName
	if name == "" {
		name = defaultConnectionName
	}
	return amqp091.Config{
		Heartbeat:  config.ParseDuration(cfg.Heartbeat, 10*time.Second),
		Locale:     "en_US",
		Dial:       amqp091.DefaultDial(config.ParseDuration(cfg.DialTimeout, 10*time.Second)),
		Properties: amqp091.Table{"connection_name": name},
	}
}

// NewConnection dials RabbitMQ with the configured timeout and heartbeat.
func NewConnection(cfg config.MQConfig) (*amqp091.Connection, error) {
	conn, err := amqp091.DialConfig(cfg.URL, dialConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	return conn, nil
}

// openChannel dials, opens a channel and declares the events exchange and
// its dead letter exchange. Publisher and Consumer both start from here.
func openChannel(cfg config.MQConfig) (*amqp091.Connection, *amqp091.Channel, error) {
	conn, err := NewConnection(cfg)
	if err != nil {
		return nil, nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareExchange(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, nil, fmt.Errorf("failed to declare exchange: %w", err)
	}
	if err := DeclareDLQExchange(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, nil, fmt.Errorf("failed to declare dlq exchange: %w", err)
	}
	return conn, ch, nil
}

func declareExchange(ch *amqp091.Channel) error {
	return ch.ExchangeDeclare(
		ExchangeName,
		"topic",
		true,  // durable
		false, // auto-delete
		false,
		false,
		nil,
	)
}
