package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"

	"github.com/fkhayef/groupledger/internal/expense"
)

const publishTimeout = 5 * time.Second

// channel is the subset of *amqp091.Channel the publisher needs
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

// Publisher sends ledger events to a topic exchange
type Publisher struct {
	conn     *amqp091.Connection
	ch       channel
	closer   func() error
	exchange string
}

// NewPublisher dials the broker and declares a durable topic exchange
func NewPublisher(url, exchange string) (*Publisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &Publisher{conn: conn, ch: ch, closer: ch.Close, exchange: exchange}, nil
}

// ExpenseRecorded publishes an expense.recorded message
func (p *Publisher) ExpenseRecorded(ctx context.Context, e *expense.Expense, memberIDs []int64) error {
	msg := &ExpenseRecordedMessage{
		ExpenseID:   e.ID,
		GroupID:     e.GroupID,
		PaidBy:      e.PaidBy,
		Amount:      e.Amount,
		Description: e.Description,
		Members:     memberIDs,
		RecordedAt:  e.CreatedAt,
	}
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.ch.PublishWithContext(
		ctx,
		p.exchange,                // exchange
		RoutingKeyExpenseRecorded, // routing key
		false,                     // mandatory
		false,                     // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    uuid.NewString(),
			Timestamp:    time.Now(),
			Type:         RoutingKeyExpenseRecorded,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	slog.DebugContext(ctx, "Published expense event",
		"expense_id", e.ID,
		"group_id", e.GroupID,
		"exchange", p.exchange)

	return nil
}

// Close releases the channel and connection
func (p *Publisher) Close() error {
	if p.closer != nil {
		p.closer()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// Nop discards events; it is used when no broker is configured
type Nop struct{}

// ExpenseRecorded does nothing
func (Nop) ExpenseRecorded(context.Context, *expense.Expense, []int64) error {
	return nil
}

// Close does nothing
func (Nop) Close() error {
	return nil
}
