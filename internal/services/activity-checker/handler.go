package checker

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/coachpulse/coachpulse/internal/domain/activity"
	"github.com/coachpulse/coachpulse/internal/domain/notification"
	"github.com/coachpulse/coachpulse/internal/domain/student"
	"github.com/coachpulse/coachpulse/internal/obs"
	"github.com/coachpulse/coachpulse/internal/services/activity-checker/repo"
)

// Result is what the invoking scheduler or webhook caller gets back.
type Result struct {
	Success   bool   `json:"success"`
	Processed int    `json:"processed"`
	Sent      int    `json:"sent"`
	Message   string `json:"message"`
}

type Handler struct {
	Log      *zap.Logger
	Students repo.StudentReader
	Counts   repo.ActivityCounts
	Notifs   repo.NotificationStore
	Mail     notification.EmailSender
	Events   notification.Events
}

// Run performs one activity check over all active students. Students are
// processed sequentially; a failure inside one student's processing never
// aborts the batch. Only the initial student fetch is fatal to the run.
func (h *Handler) Run(ctx context.Context, now time.Time) Result {
	tr := otel.Tracer("activity-checker.uc")
	ctx, span := tr.Start(ctx, "activity.run")
	defer span.End()

	students, err := h.Students.ListActive(ctx)
	if err != nil {
		span.RecordError(err)
		obs.WithTrace(ctx, h.Log).Error("fetch students", zap.Error(err))
		return Result{Success: false, Message: fmt.Sprintf("fetch students: %v", err)}
	}

	processed, sent := 0, 0
	for _, st := range students {
		sent += h.processStudent(ctx, now, st)
		processed++
	}

	span.SetAttributes(
		attribute.Int("run.processed", processed),
		attribute.Int("run.sent", sent),
	)
	return Result{
		Success:   true,
		Processed: processed,
		Sent:      sent,
		Message:   fmt.Sprintf("checked %d students, sent %d notifications", processed, sent),
	}
}

func (h *Handler) processStudent(ctx context.Context, now time.Time, st *student.Student) int {
	log := obs.WithTrace(ctx, h.Log).With(
		zap.String("student_id", st.ID),
		zap.String("student", st.FullName()),
	)

	// Skip-gate: one notification batch per student per calendar day. Any
	// notification sent since midnight suppresses all criteria for this run.
	if n := h.countNotifs(ctx, st.ID, activity.StartOfDay(now), log); n > 0 {
		log.Debug("already notified today, skipping")
		return 0
	}

	sig := activity.Signals{
		Reports7d:     h.countEvents(ctx, st.ID, activity.KindReport, activity.LookbackStart(now, 7), log),
		Leads7d:       h.countEvents(ctx, st.ID, activity.KindLead, activity.LookbackStart(now, 7), log),
		CoachCalls14d: h.countEvents(ctx, st.ID, activity.KindCoachCall, activity.LookbackStart(now, 14), log),
		Reports3d:     h.countEvents(ctx, st.ID, activity.KindReport, activity.LookbackStart(now, 3), log),
		Leads3d:       h.countEvents(ctx, st.ID, activity.KindLead, activity.LookbackStart(now, 3), log),
	}

	sent := 0
	for _, it := range activity.Aggregate(st, sig) {
		n := &notification.Notification{
			UserID:     st.ID,
			Type:       it.Type,
			Title:      it.Title,
			Message:    it.Message,
			ActionLink: it.ActionLink,
			Priority:   it.Priority,
			SentAt:     now,
		}
		if err := h.Notifs.Create(ctx, n); err != nil {
			log.Error("create notification", zap.String("type", it.Type), zap.Error(err))
			continue
		}
		if err := h.Mail.Send(ctx, st.Email, it.Title, itemHTML(it)); err != nil {
			log.Warn("email send failed", zap.String("type", it.Type), zap.Error(err))
		}
		if h.Events != nil {
			if err := h.Events.PublishCreated(ctx, n); err != nil {
				log.Warn("feed publish failed", zap.Error(err))
			}
		}
		sent++
	}
	return sent
}

// Count fetches fail open: an error reads as zero, so a backend outage flags
// students rather than silencing the checks.
func (h *Handler) countNotifs(ctx context.Context, userID string, since time.Time, log *zap.Logger) int {
	n, err := h.Notifs.CountForUserSince(ctx, userID, since)
	if err != nil {
		log.Warn("count notifications failed, treating as zero", zap.Error(err))
		return 0
	}
	return n
}

func (h *Handler) countEvents(ctx context.Context, userID string, kind activity.Kind, since time.Time, log *zap.Logger) int {
	n, err := h.Counts.CountSince(ctx, userID, kind, since)
	if err != nil {
		log.Warn("count events failed, treating as zero",
			zap.String("kind", string(kind)), zap.Error(err))
		return 0
	}
	return n
}

func itemHTML(it activity.Item) string {
	return fmt.Sprintf(
		"<html><body><h2>%s</h2><p>%s</p><p><a href=%q>Open CoachPulse</a></p></body></html>",
		it.Title, it.Message, it.ActionLink,
	)
}
