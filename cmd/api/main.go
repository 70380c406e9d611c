package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/you/smart-dobi/internal/notifier"
	"github.com/you/smart-dobi/internal/repository"
	"github.com/you/smart-dobi/internal/service"
	transport "github.com/you/smart-dobi/internal/transport/http"
	"github.com/you/smart-dobi/pkg/config"
	"github.com/you/smart-dobi/pkg/db"
	"github.com/you/smart-dobi/pkg/mq"
	"github.com/you/smart-dobi/pkg/obs"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := obs.NewLogger("dobi-api")
	shutdownTracer := obs.InitTracer("dobi-api")

	gdb, err := db.Open(cfg.PGDobiDSN)
	if err != nil {
		log.Fatal(err)
	}

	machineRepo := repository.NewMachineRepo(gdb)
	txnRepo := repository.NewTransactionRepo(gdb)
	dailyRepo := repository.NewDailyRepo(gdb)
	userRepo := repository.NewUserRepo(gdb)
	for _, m := range []interface{ Migrate() error }{machineRepo, txnRepo, dailyRepo, userRepo} {
		if err := m.Migrate(); err != nil {
			log.Fatal(err)
		}
	}

	var pub *mq.Publisher
	var n notifier.Notifier
	switch {
	case cfg.RabbitURL != "":
		pub, err = mq.NewPublisher(cfg.RabbitURL, cfg.MQExchange)
		if err != nil {
			log.Fatal(err)
		}
		n = notifier.NewQueue(pub)
		logger.Info().Str("exchange", cfg.MQExchange).Msg("notifications via message queue")
	case cfg.WasapbotInstanceID != "":
		n = notifier.NewWhatsApp(cfg.WasapbotAPIURL, cfg.WasapbotInstanceID, cfg.WasapbotAccessToken)
		logger.Info().Msg("notifications via wasapbot")
	default:
		n = notifier.NewConsole(logger)
		logger.Warn().Msg("no notification transport configured, logging only")
	}

	machineSvc := service.NewMachineService(
		machineRepo, txnRepo, dailyRepo, n, logger,
		time.Duration(cfg.HeartbeatTimeoutSec)*time.Second,
		cfg.RequirePaymentConfirmation,
	)
	dashboardSvc := service.NewDashboardService(machineRepo, txnRepo, dailyRepo)
	authSvc := service.NewAuthService(
		userRepo, cfg.SessionExchangeURL,
		time.Duration(cfg.SessionTTLHours)*time.Hour,
		logger,
	)

	router := transport.NewRouter(
		transport.NewMachineHandler(machineSvc),
		transport.NewDashboardHandler(dashboardSvc),
		transport.NewAuthHandler(authSvc),
		authSvc,
		cfg.CORSOrigins,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go machineSvc.RunLivenessLoop(ctx)

	srv := &http.Server{Addr: cfg.APIHTTPAddr, Handler: router}
	go func() {
		logger.Info().Str("addr", cfg.APIHTTPAddr).Msg("api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	if pub != nil {
		_ = pub.Close()
	}
	if err := db.Close(gdb); err != nil {
		logger.Error().Err(err).Msg("db close")
	}
	_ = shutdownTracer(shutdownCtx)
}
