package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"tallybook/internal/logger"
)

const (
	attemptHeader       = "x-tallybook-attempt"
	maxDeliveryAttempts = 5
)

var (
	retryBaseDelay = 2 * time.Second
	retryMaxDelay  = time.Minute
)

// AMQPPublisher sends notices to a durable RabbitMQ queue through a direct
// exchange, routed by the queue name. Notices that keep failing are parked on
// a "<queue>.dead" queue.
type AMQPPublisher struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	queueName    string
}

// NewAMQPPublisher dials the broker and declares the exchange, queue and binding.
func NewAMQPPublisher(url, exchangeName, queueName string) (*AMQPPublisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	p := &AMQPPublisher{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		queueName:    queueName,
	}

	if err := p.setup(); err != nil {
		p.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	return p, nil
}

func (p *AMQPPublisher) setup() error {
	if err := p.channel.ExchangeDeclare(
		p.exchangeName, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	for _, queue := range []string{p.queueName, p.deadQueue()} {
		if _, err := p.channel.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare queue %s: %w", queue, err)
		}
		if err := p.channel.QueueBind(queue, queue, p.exchangeName, false, nil); err != nil {
			return fmt.Errorf("bind queue %s: %w", queue, err)
		}
	}
	return nil
}

func (p *AMQPPublisher) deadQueue() string {
	return p.queueName + ".dead"
}

// Publish sends the notice as a persistent JSON message.
func (p *AMQPPublisher) Publish(ctx context.Context, n Notice) error {
	body, err := n.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal notice: %w", err)
	}

	if err := p.publish(ctx, p.queueName, n.SaleID, body, 0); err != nil {
		return fmt.Errorf("publish notice: %w", err)
	}

	logger.Named("notify").Infow("published reconciliation notice",
		"sale_id", n.SaleID,
		"exchange", p.exchangeName,
		"queue", p.queueName,
	)
	return nil
}

func (p *AMQPPublisher) publish(ctx context.Context, routingKey, messageID string, body []byte, attempt int) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return p.channel.PublishWithContext(
		ctx,
		p.exchangeName, // exchange
		routingKey,     // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			MessageId:    messageID,
			Headers:      amqp091.Table{attemptHeader: int32(attempt)},
			Body:         body,
		},
	)
}

// Consume delivers notices to handle until ctx is cancelled. Messages that
// cannot be decoded are dropped. A notice whose handler fails is published
// again after a growing delay, and moved to the dead queue once it has failed
// maxDeliveryAttempts times.
func (p *AMQPPublisher) Consume(ctx context.Context, handle func(context.Context, *Notice) error) error {
	msgs, err := p.channel.Consume(
		p.queueName, // queue
		"",          // consumer
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	log := logger.Named("notify")
	log.Infow("consuming reconciliation notices", "queue", p.queueName)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}

			n, err := NoticeFromJSON(delivery.Body)
			if err != nil {
				log.Errorw("failed to decode notice", "error", err)
				_ = delivery.Nack(false, false)
				continue
			}

			if err := handle(ctx, n); err != nil {
				if err := p.retry(ctx, delivery, n, err); err != nil {
					return err
				}
				continue
			}
			_ = delivery.Ack(false)
		}
	}
}

// retry schedules a failed delivery again or parks it on the dead queue. The
// original delivery is acked only after its successor is published; if that
// publish fails the delivery is requeued as is.
func (p *AMQPPublisher) retry(ctx context.Context, delivery amqp091.Delivery, n *Notice, cause error) error {
	log := logger.Named("notify")
	attempt := deliveryAttempt(delivery.Headers) + 1

	if attempt >= maxDeliveryAttempts {
		log.Errorw("giving up on notice",
			"error", cause, "sale_id", n.SaleID, "attempts", attempt, "queue", p.deadQueue())
		if err := p.publish(ctx, p.deadQueue(), delivery.MessageId, delivery.Body, attempt); err != nil {
			_ = delivery.Nack(false, true)
			return fmt.Errorf("park notice: %w", err)
		}
		return delivery.Ack(false)
	}

	delay := retryDelay(attempt)
	log.Warnw("failed to handle notice, retrying",
		"error", cause, "sale_id", n.SaleID, "attempt", attempt, "delay", delay)

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		_ = delivery.Nack(false, true)
		return ctx.Err()
	case <-timer.C:
	}

	if err := p.publish(ctx, p.queueName, delivery.MessageId, delivery.Body, attempt); err != nil {
		_ = delivery.Nack(false, true)
		return fmt.Errorf("republish notice: %w", err)
	}
	return delivery.Ack(false)
}

// deliveryAttempt reads how many times a notice has already failed.
func deliveryAttempt(headers amqp091.Table) int {
	switch v := headers[attemptHeader].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

// retryDelay doubles from retryBaseDelay for each failed attempt, capped at
// retryMaxDelay.
func retryDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := retryBaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= retryMaxDelay {
			return retryMaxDelay
		}
	}
	return delay
}

// Close closes the channel and the connection.
func (p *AMQPPublisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

var _ Publisher = (*AMQPPublisher)(nil)
