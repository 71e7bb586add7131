package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"yamdb/internal/config"
	"yamdb/internal/logger"
	"yamdb/internal/mailer"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const (
	sendTimeout = 15 * time.Second
	consumerTag = "yamdb-email-worker"
)

func main() {
	cfg, err := config.LoadMailConfig()
	if err != nil {
		logrus.Fatalf("could not load config: %v", err)
	}
	log := logger.New("yamdb-email-worker", cfg.GoEnv, cfg.LogLevel, cfg.LogFormat)

	if cfg.RabbitMQURL == "" || cfg.RabbitMQEmailQueue == "" {
		log.Fatal("RabbitMQ not configured")
	}

	var sender mailer.Sender
	switch cfg.MailDriver {
	case "log":
		sender = mailer.NewLogSender(log)
	default:
		if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" {
			log.Fatal("Mailgun not configured")
		}
		sender = mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailSender)
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		log.WithError(err).Fatal("amqp dial")
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.WithError(err).Fatal("amqp channel")
	}
	defer func() { _ = ch.Close() }()

	// Prefetch for fair dispatch between workers
	if err := ch.Qos(16, 0, false); err != nil {
		log.WithError(err).Fatal("qos")
	}
	if err := mailer.DeclareQueue(ch, cfg.RabbitMQEmailQueue); err != nil {
		log.WithError(err).Fatal("queue declare")
	}

	msgs, err := ch.Consume(cfg.RabbitMQEmailQueue, consumerTag, false, false, false, false, nil)
	if err != nil {
		log.WithError(err).Fatal("consume")
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for msg := range msgs {
			handle(log, sender, msg)
		}
	}()

	log.WithField("queue", cfg.RabbitMQEmailQueue).Info("email worker listening")
	select {
	case <-stop:
		log.Info("shutting down")
	case <-done:
		log.Warn("delivery channel closed")
		return
	}
	_ = ch.Cancel(consumerTag, false)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}

func handle(log *logrus.Logger, sender mailer.Sender, msg amqp.Delivery) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	outcome, err := mailer.ProcessJob(ctx, msg.Body, sender)
	switch outcome {
	case mailer.Ack:
		_ = msg.Ack(false)
	case mailer.Drop:
		log.WithError(err).Warn("dropping malformed email job")
		_ = msg.Nack(false, false)
	case mailer.Requeue:
		log.WithError(err).Error("email delivery failed, requeueing")
		_ = msg.Nack(false, true)
	}
}
