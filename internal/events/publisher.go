package events

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

type Publisher interface {
	PublishCheckIn(ctx context.Context, e CheckIn) error
	PublishCheckOut(ctx context.Context, e CheckOut) error
	Close() error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishCheckIn(context.Context, CheckIn) error   { return nil }
func (NopPublisher) PublishCheckOut(context.Context, CheckOut) error { return nil }
func (NopPublisher) Close() error                                    { return nil }

type RMQPublisher struct {
	Connection    *amqp.Connection
	Channel       *amqp.Channel
	CheckInQueue  amqp.Queue
	CheckOutQueue amqp.Queue
}

func NewRMQPublisher(url, checkInQueue, checkOutQueue string) (*RMQPublisher, error) {
	p := &RMQPublisher{}
	var err error
	p.Connection, err = amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RMQ: %w", err)
	}
	p.Channel, err = p.Connection.Channel()
	if err != nil {
		p.Connection.Close()
		return nil, fmt.Errorf("failed to open RMQ channel: %w", err)
	}
	p.CheckInQueue, err = p.Channel.QueueDeclare(checkInQueue, false, false, false, false, nil)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", checkInQueue, err)
	}
	p.CheckOutQueue, err = p.Channel.QueueDeclare(checkOutQueue, false, false, false, false, nil)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", checkOutQueue, err)
	}
	return p, nil
}

func (p *RMQPublisher) PublishCheckIn(ctx context.Context, e CheckIn) error {
	return p.publish(ctx, p.CheckInQueue.Name, e)
}

func (p *RMQPublisher) PublishCheckOut(ctx context.Context, e CheckOut) error {
	return p.publish(ctx, p.CheckOutQueue.Name, e)
}

func (p *RMQPublisher) Close() error {
	if err := p.Channel.Close(); err != nil {
		p.Connection.Close()
		return err
	}
	return p.Connection.Close()
}

func (p *RMQPublisher) publish(ctx context.Context, queue string, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	err = p.Channel.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", queue, err)
	}
	return nil
}
