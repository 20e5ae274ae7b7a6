package queue

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/streadway/amqp"
)

// CampaignEvent is published after every completed dispatch so the
// audit worker can record it. Delivery is best-effort: a lost event
// never fails the dispatch that produced it.
type CampaignEvent struct {
	BulkMailID string    `json:"bulk_mail_id"`
	Status     string    `json:"status"`
	Recipients int       `json:"recipients"`
	Sent       int       `json:"sent"`
	Failed     int       `json:"failed"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher interface
type Publisher interface {
	Publish(event CampaignEvent) error
}

// AMQPPublisher pushes campaign events onto a durable RabbitMQ queue.
type AMQPPublisher struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

// NewAMQPPublisher connects to the broker and declares the queue.
func NewAMQPPublisher(url, queueName string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	_, err = ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &AMQPPublisher{conn: conn, ch: ch, queue: queueName}, nil
}

func (p *AMQPPublisher) Publish(event CampaignEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.ch.Publish(
		"",
		p.queue,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

func (p *AMQPPublisher) Close() {
	p.ch.Close()
	p.conn.Close()
}

// MemoryPublisher collects events in memory. Used in tests.
type MemoryPublisher struct {
	mu     sync.Mutex
	Events []CampaignEvent
}

func (p *MemoryPublisher) Publish(event CampaignEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, event)
	return nil
}

// NopPublisher drops events. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(CampaignEvent) error { return nil }
