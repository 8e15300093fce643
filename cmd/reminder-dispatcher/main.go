package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	config "github.com/coachpulse/coachpulse/internal/config/reminder-dispatcher"
	"github.com/coachpulse/coachpulse/internal/domain/notification"
	"github.com/coachpulse/coachpulse/internal/mailer"
	"github.com/coachpulse/coachpulse/internal/obs"
	kafkaRepo "github.com/coachpulse/coachpulse/internal/repository/kafka"
	pg "github.com/coachpulse/coachpulse/internal/repository/postgres"
	dispatcher "github.com/coachpulse/coachpulse/internal/services/reminder-dispatcher"
	"github.com/coachpulse/coachpulse/internal/services/reminder-dispatcher/repo"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatal(err)
	}

	l, err := obs.NewLogger(cfg.Log.AsLoggerConfig("reminder-dispatcher"))
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = l.Sync() }()

	l.Info("starting reminder-dispatcher",
		zap.Duration("tick", cfg.Dispatch.Tick),
		zap.Duration("horizon", cfg.Dispatch.Horizon),
		zap.String("http_addr", cfg.Dispatch.HTTPAddr),
		zap.String("metrics_addr", cfg.Dispatch.MetricsAddr),
	)

	otelCloser, err := obs.SetupOTel(ctx, cfg.OTEL.AsOTELConfig())
	if err != nil {
		l.Fatal("otel init", zap.Error(err))
	}
	defer func() { _ = otelCloser.Shutdown(context.Background()) }()

	db, err := pg.New(ctx, cfg.DB)
	if err != nil {
		l.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	_ = kafkaRepo.EnsureTopic(ctx, cfg.Kafka.Brokers, kafkaRepo.TopicSpec{Name: cfg.Kafka.Topic}, l)
	prod := kafkaRepo.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic).WithLogger(l)
	defer func() { _ = prod.Close() }()

	clock := notification.SystemClock{}
	h := &dispatcher.Handler{
		Log:       l.With(zap.String("component", "reminder-dispatcher.handler")),
		Reminders: repo.ReminderStore{R: pg.NewReminderRepo(db, l)},
		Notifs:    repo.NotificationStore{R: pg.NewNotificationRepo(db)},
		Mail:      mailer.New(cfg.SMTP).WithLogger(l),
		Events:    kafkaRepo.NewNotificationEvents(prod, l),
		Horizon:   cfg.Dispatch.Horizon,
	}
	runner := dispatcher.New(l, h, clock, &cfg.Dispatch)

	ms := obs.BootstrapMetricsServer(cfg.Dispatch.MetricsAddr, func(ctx context.Context) error {
		hctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
		defer cancel()
		return db.Pool.Ping(hctx)
	}, l)

	ts := dispatcher.NewTriggerServer(cfg.Dispatch.HTTPAddr, h, clock, l)
	go func() {
		l.Info("trigger api listening", zap.String("addr", cfg.Dispatch.HTTPAddr))
		if err := ts.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error("trigger server error", zap.Error(err))
		}
	}()

	errCh := make(chan error, 1)
	go func() { errCh <- runner.Run(ctx) }()

	l.Info("reminder-dispatcher started")

	select {
	case <-ctx.Done():
	case err = <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			l.Error("runner error", zap.Error(err))
		}
	}

	shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = ts.Shutdown(shCtx)
	_ = ms.Shutdown(shCtx)
	l.Info("bye")
}
