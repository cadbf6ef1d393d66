package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-clinic-scheduler/config"
	"github.com/oksasatya/go-clinic-scheduler/internal/notify"
	"github.com/oksasatya/go-clinic-scheduler/pkg/helpers"
	"github.com/oksasatya/go-clinic-scheduler/pkg/mailer"
	mailtpl "github.com/oksasatya/go-clinic-scheduler/pkg/mailer/templates"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-notify", cfg.Env)

	if !cfg.MailSendEnabled {
		logger.Info("MAIL_SEND_ENABLED=false; notify worker disabled (no real emails will be sent)")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQEventsQueue == "" {
		log.Fatal("RabbitMQ not configured")
	}
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
		log.Fatal("Mailgun not configured")
	}

	conn, ch, err := helpers.DialQueue(cfg.RabbitMQURL, cfg.RabbitMQEventsQueue)
	if err != nil {
		log.Fatalf("amqp: %v", err)
	}
	defer func() { _ = conn.Close() }()
	defer func() { _ = ch.Close() }()

	// prefetch for fair dispatch across workers
	if err := ch.Qos(16, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}
	msgs, err := ch.Consume(cfg.RabbitMQEventsQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	sender := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender, cfg.MailgunAPIBase)
	sender.Tag = cfg.MailgunTag

	n := notify.NewNotifier(sender, mailtpl.Clinic{Name: cfg.ClinicName, Address: cfg.ClinicAddress, AppName: cfg.AppName},
		cfg.Location(), logger)
	n.CancelURL = cfg.CancelURL
	if cfg.CancelTokenSecret != "" {
		n.Tokens = helpers.NewCancelTokenManager(cfg.CancelTokenSecret, cfg.CancelTokenTTL)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		for msg := range msgs {
			err := n.Handle(ctx, msg.Body)
			entry := logger.WithFields(logrus.Fields{"message_id": msg.MessageId, "type": msg.Type})
			switch {
			case err == nil:
				_ = msg.Ack(false)
			case errors.Is(err, notify.ErrPermanent):
				entry.WithError(err).Error("dropping message")
				_ = msg.Nack(false, false)
			default:
				entry.WithError(err).Warn("delivery failed, requeueing")
				// redelivered messages back off briefly so a mail outage does not spin
				if msg.Redelivered {
					time.Sleep(time.Second)
				}
				_ = msg.Nack(false, true)
			}
		}
		close(done)
	}()

	logger.WithField("queue", cfg.RabbitMQEventsQueue).Info("notify worker listening")
	<-stop
	logger.Info("shutting down...")
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}
