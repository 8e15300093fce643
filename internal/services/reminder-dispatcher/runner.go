package dispatcher

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	config "github.com/coachpulse/coachpulse/internal/config/reminder-dispatcher"
	"github.com/coachpulse/coachpulse/internal/domain/notification"
)

type Runner struct {
	Log   *zap.Logger
	H     *Handler
	Clock notification.Clock
	Cfg   *config.DispatchCfg

	mRuns   prometheus.Counter
	mDue    prometheus.Counter
	mSent   prometheus.Counter
	mErr    prometheus.Counter
	mRunDur prometheus.Histogram
}

func New(log *zap.Logger, h *Handler, clock notification.Clock, cfg *config.DispatchCfg) *Runner {
	return &Runner{
		Log:   log,
		H:     h,
		Clock: clock,
		Cfg:   cfg,
		mRuns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "reminder_dispatcher_runs_total", Help: "Dispatch runs started",
		}),
		mDue: promauto.NewCounter(prometheus.CounterOpts{
			Name: "reminder_dispatcher_due_total", Help: "Reminders selected as due",
		}),
		mSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "reminder_dispatcher_dispatched_total", Help: "Reminders dispatched",
		}),
		mErr: promauto.NewCounter(prometheus.CounterOpts{
			Name: "reminder_dispatcher_run_failures_total", Help: "Runs aborted by a top-level error",
		}),
		mRunDur: promauto.NewHistogram(prometheus.HistogramOpts{
			Name: "reminder_dispatcher_run_duration_seconds", Help: "Full run duration",
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
		r.Log.Warn("dispatch run failed", zap.String("message", res.Message))
	} else {
		r.mDue.Add(float64(res.Processed))
		r.mSent.Add(float64(res.Sent))
		if res.Processed > 0 {
			r.Log.Info("reminders dispatched",
				zap.Int("due", res.Processed), zap.Int("sent", res.Sent))
		}
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
