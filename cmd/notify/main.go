package main

import (
	"context"
	"log"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/you/smart-dobi/internal/notifier"
	"github.com/you/smart-dobi/internal/worker"
	"github.com/you/smart-dobi/pkg/config"
	"github.com/you/smart-dobi/pkg/mq"
	"github.com/you/smart-dobi/pkg/obs"
)

func parseCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.RabbitURL == "" {
		log.Fatal("RABBIT_URL is required for the notification worker")
	}

	logger := obs.NewLogger("dobi-notify")

	var n notifier.Notifier
	if cfg.WasapbotInstanceID != "" {
		n = notifier.NewWhatsApp(cfg.WasapbotAPIURL, cfg.WasapbotInstanceID, cfg.WasapbotAccessToken)
	} else {
		n = notifier.NewConsole(logger)
	}

	consumerCfg := mq.ConsumerConfig{
		URL:      cfg.RabbitURL,
		Exchange: cfg.MQExchange,
		Queue:    cfg.NotifyQueue,
		Bindings: parseCSV(cfg.NotifyBindings),
		Prefetch: 16,
		DLXName:  cfg.NotifyDLX,
		DLXQueue: cfg.NotifyDLQ,
	}

	var consumer *mq.Consumer
	for {
		consumer, err = mq.NewConsumer(consumerCfg)
		if err == nil {
			break
		}
		logger.Warn().Err(err).Msg("broker connect failed, retry in 2s")
		time.Sleep(2 * time.Second)
	}
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w := worker.NewConsumer(consumer, n, logger)
	logger.Info().
		Str("queue", cfg.NotifyQueue).
		Str("exchange", cfg.MQExchange).
		Strs("bindings", consumerCfg.Bindings).
		Msg("notification worker started")

	if err := w.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("worker stopped")
	}
}
