package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/fairprice/fairprice-backend/internal/logger"
)

// Publisher публикует доменные события в Kafka. Если брокеры не настроены,
// публикация превращается в no-op: ядро заказов не зависит от шины.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher создаёт издателя. Пустой список брокеров отключает публикацию.
func NewPublisher(brokers []string) *Publisher {
	if len(brokers) == 0 {
		logger.Log.Warn("events: брокеры Kafka не настроены, события публиковаться не будут")
		return &Publisher{}
	}
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 50 * time.Millisecond,
		},
	}
}

// Close закрывает соединение с брокерами.
func (p *Publisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

func (p *Publisher) publish(ctx context.Context, topic, key string, payload interface{}) error {
	if p.writer == nil {
		return nil
	}

	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("events: marshal %s %w", topic, err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
		Time:  time.Now(),
	}); err != nil {
		return fmt.Errorf("events: publish %s %w", topic, err)
	}
	return nil
}

// OrderCreated публикует событие о создании заказа.
func (p *Publisher) OrderCreated(ctx context.Context, e OrderCreatedEvent) error {
	return p.publish(ctx, TopicOrderCreated, e.OrderID.String(), e)
}

// OrderStatusChanged публикует событие о смене статуса заказа.
func (p *Publisher) OrderStatusChanged(ctx context.Context, e OrderStatusChangedEvent) error {
	return p.publish(ctx, TopicOrderStatusChanged, e.OrderID.String(), e)
}

// EscrowStatusChanged публикует событие о смене статуса escrow.
func (p *Publisher) EscrowStatusChanged(ctx context.Context, e EscrowStatusChangedEvent) error {
	return p.publish(ctx, TopicEscrowStatusChanged, e.OrderID.String(), e)
}

// DisputeOpened публикует событие об открытии спора.
func (p *Publisher) DisputeOpened(ctx context.Context, e DisputeOpenedEvent) error {
	return p.publish(ctx, TopicDisputeOpened, e.OrderID.String(), e)
}

// DisputeResolved публикует событие о закрытии спора.
func (p *Publisher) DisputeResolved(ctx context.Context, e DisputeResolvedEvent) error {
	return p.publish(ctx, TopicDisputeResolved, e.OrderID.String(), e)
}

// ReturnStatusChanged публикует событие о смене статуса возврата.
func (p *Publisher) ReturnStatusChanged(ctx context.Context, e ReturnStatusChangedEvent) error {
	return p.publish(ctx, TopicReturnStatusChanged, e.OrderID.String(), e)
}

// NegotiationCountered публикует событие о контрпредложении продавца.
func (p *Publisher) NegotiationCountered(ctx context.Context, e NegotiationCounterEvent) error {
	return p.publish(ctx, TopicNegotiationCounter, e.NegotiationID.String(), e)
}

// CouponIssued публикует событие о выдаче купона.
func (p *Publisher) CouponIssued(ctx context.Context, e CouponIssuedEvent) error {
	return p.publish(ctx, TopicCouponIssued, e.UserID.String(), e)
}

// Email кладёт письмо в outbox-топик.
func (p *Publisher) Email(ctx context.Context, e EmailEvent) error {
	return p.publish(ctx, TopicEmailOutbox, e.To, e)
}
