package checker

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	config "github.com/coachpulse/coachpulse/internal/config/activity-checker"
	"github.com/coachpulse/coachpulse/internal/domain/notification"
)

type Runner struct {
	Log   *zap.Logger
	H     *Handler
	Clock notification.Clock
	Cfg   *config.CheckCfg

	mRuns   prometheus.Counter
	mSent   prometheus.Counter
	mErr    prometheus.Counter
	mRunDur prometheus.Histogram
}

func New(log *zap.Logger, h *Handler, clock notification.Clock, cfg *config.CheckCfg) *Runner {
	return &Runner{
		Log:   log,
		H:     h,
		Clock: clock,
		Cfg:   cfg,
		mRuns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "activity_checker_runs_total", Help: "Activity check runs started",
		}),
		mSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "activity_checker_notifications_sent_total", Help: "Notifications created",
		}),
		mErr: promauto.NewCounter(prometheus.CounterOpts{
			Name: "activity_checker_run_failures_total", Help: "Runs aborted by a top-level error",
		}),
		mRunDur: promauto.NewHistogram(prometheus.HistogramOpts{
			Name: "activity_checker_run_duration_seconds", Help: "Full run duration",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (r *Runner) tick(ctx context.Context) {
	start := time.Now()
	res := r.H.Run(ctx, r.Clock.Now())
	r.mRuns.Inc()
	if !res.Success {
		r.mErr.Inc()
		r.Log.Warn("activity check failed", zap.String("message", res.Message))
	} else {
		r.mSent.Add(float64(res.Sent))
		r.Log.Info("activity check complete",
			zap.Int("processed", res.Processed), zap.Int("sent", res.Sent))
	}
	r.mRunDur.Observe(time.Since(start).Seconds())
}

func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.Cfg.Tick)
	defer ticker.Stop()

	r.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}
