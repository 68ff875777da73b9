package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"consolidation-route-service/internal/ports"

	amqp "github.com/rabbitmq/amqp091-go"
)

const DefaultAMQPExchange = "route_plans_topic"

// AMQPPublisher publishes route plan events to a durable topic exchange and
// waits for the broker's publisher confirm.
type AMQPPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	acks     <-chan amqp.Confirmation
	exchange string

	mu sync.Mutex // serializes publishes so confirms line up
}

// DialAMQP connects to amqpURL, declares the exchange and enables confirms.
func DialAMQP(amqpURL, exchange string) (*AMQPPublisher, error) {
	if exchange == "" {
		exchange = DefaultAMQPExchange
	}

	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("amqp publisher: dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp publisher: open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("amqp publisher: declare exchange %q: %w", exchange, err)
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("amqp publisher: enable confirms: %w", err)
	}
	acks := ch.NotifyPublish(make(chan amqp.Confirmation, 1))

	return &AMQPPublisher{conn: conn, ch: ch, acks: acks, exchange: exchange}, nil
}

func (p *AMQPPublisher) PublishRoutePlanned(ctx context.Context, evt ports.RoutePlannedEvent) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("amqp publish: marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ch.PublishWithContext(
		ctx,
		p.exchange,
		evt.Type,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			DeliveryMode:  amqp.Persistent,
			ContentType:   "application/json",
			MessageId:     evt.RoutePlanID.String(),
			CorrelationId: evt.ConsolidationID.String(),
			Timestamp:     time.Now().UTC(),
			Headers:       amqp.Table{"x-source": "consolidation-route-service"},
			Body:          body,
		},
	); err != nil {
		return fmt.Errorf("amqp publish: %w", err)
	}

	select {
	case conf := <-p.acks:
		if conf.Ack {
			return nil
		}
		return errors.New("amqp publish: broker returned NACK")
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *AMQPPublisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
