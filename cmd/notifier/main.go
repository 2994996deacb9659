// Command notifier consumes registration notifications from RabbitMQ and
// delivers them by email and Telegram.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Eursukkul/race-registration/internal/config"
	"github.com/Eursukkul/race-registration/internal/consumer"
	applog "github.com/Eursukkul/race-registration/internal/logger"
	"github.com/Eursukkul/race-registration/internal/notify"
	"github.com/Eursukkul/race-registration/pkg/rabbitmq"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := applog.New(cfg.Debug)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.RabbitURL == "" {
		logger.Fatal("RABBITMQ_URL is required")
	}

	var sinks []notify.Notifier
	if cfg.SMTPEnabled() {
		sinks = append(sinks, notify.NewEmailNotifier(notify.SMTPServerConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
			Sender:   cfg.SMTPSender,
		}))
	}
	if cfg.TelegramEnabled() {
		tg, err := notify.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramAdminChatIDs)
		if err != nil {
			logger.Fatal("init telegram failed", zap.Error(err))
		}
		sinks = append(sinks, tg)
	}
	if len(sinks) == 0 {
		logger.Warn("no delivery sinks configured, notifications will be acknowledged and dropped")
	}

	mq, err := rabbitmq.NewConsumer(cfg.RabbitURL)
	if err != nil {
		logger.Fatal("connect rabbitmq failed", zap.Error(err))
	}
	defer mq.Close()

	msgs, err := mq.Consume()
	if err != nil {
		logger.Fatal("start consuming failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("notifier started", zap.Int("sinks", len(sinks)))
	consumer.NewNotificationConsumer(sinks, logger, 30*time.Second).Run(ctx, msgs)
	logger.Info("notifier stopped")
}
