package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher puts a JSON body on a queue.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// QueueSender implements Sender by enqueueing an EmailJob; cmd/email-worker
// does the actual delivery.
type QueueSender struct {
	pub Publisher
}

func NewQueueSender(pub Publisher) *QueueSender {
	return &QueueSender{pub: pub}
}

func (s *QueueSender) Send(ctx context.Context, to, subject, text, html string) error {
	if to == "" {
		return ErrNoRecipient
	}
	return s.pub.PublishJSON(ctx, EmailJob{To: to, Subject: subject, Text: text, HTML: html})
}

type queueDeclarer interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
}

// amqpChannel is the part of *amqp.Channel the publisher uses.
type amqpChannel interface {
	queueDeclarer
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	IsClosed() bool
	Close() error
}

type session struct {
	conn io.Closer
	ch   amqpChannel
}

func (s *session) close() {
	_ = s.ch.Close()
	if s.conn != nil {
		_ = s.conn.Close()
	}
}

type dialFunc func(url string) (*session, error)

func dialAMQP(url string) (*session, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return &session{conn: conn, ch: ch}, nil
}

// RabbitPublisher publishes to a durable queue. A dropped connection is
// re-dialed on the next publish, so a broker restart costs at most the
// publishes made while it is down.
type RabbitPublisher struct {
	url   string
	Queue string
	dial  dialFunc

	mu   sync.Mutex
	sess *session
}

// NewRabbitPublisher connects eagerly so a bad URL fails at startup.
func NewRabbitPublisher(url, queue string) (*RabbitPublisher, error) {
	return newRabbitPublisher(url, queue, dialAMQP)
}

func newRabbitPublisher(url, queue string, dial dialFunc) (*RabbitPublisher, error) {
	p := &RabbitPublisher{url: url, Queue: queue, dial: dial}
	if _, err := p.channel(); err != nil {
		return nil, err
	}
	return p, nil
}

// DeclareQueue declares the durable email queue. Publisher and worker both
// call it so either may start first.
func DeclareQueue(ch queueDeclarer, queue string) error {
	_, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	return err
}

// channel returns an open channel, dialing a new session when the current one
// is gone.
func (p *RabbitPublisher) channel() (amqpChannel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.sess != nil && !p.sess.ch.IsClosed() {
		return p.sess.ch, nil
	}
	if p.sess != nil {
		p.sess.close()
		p.sess = nil
	}

	sess, err := p.dial(p.url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	if err := DeclareQueue(sess.ch, p.Queue); err != nil {
		sess.close()
		return nil, fmt.Errorf("declare queue %s: %w", p.Queue, err)
	}
	p.sess = sess
	return sess.ch, nil
}

// drop forgets ch if it is still the current channel.
func (p *RabbitPublisher) drop(ch amqpChannel) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sess != nil && p.sess.ch == ch {
		p.sess.close()
		p.sess = nil
	}
}

// Connected reports whether the publisher holds an open channel.
func (p *RabbitPublisher) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sess != nil && !p.sess.ch.IsClosed()
}

func (p *RabbitPublisher) Close() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sess != nil {
		p.sess.close()
		p.sess = nil
	}
}

// PublishJSON publishes a JSON-encoded message to the queue. A publish that
// hits a closed channel is retried once on a fresh connection.
func (p *RabbitPublisher) PublishJSON(ctx context.Context, body any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         b,
	}

	for attempt := 0; ; attempt++ {
		ch, err := p.channel()
		if err != nil {
			return err
		}
		err = ch.PublishWithContext(ctx,
			"",      // default exchange
			p.Queue, // routing key = queue
			false,   // mandatory
			false,   // immediate
			msg,
		)
		if err == nil || !errors.Is(err, amqp.ErrClosed) || attempt > 0 {
			return err
		}
		p.drop(ch)
	}
}
