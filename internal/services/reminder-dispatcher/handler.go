package dispatcher

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/coachpulse/coachpulse/internal/domain/notification"
	"github.com/coachpulse/coachpulse/internal/domain/reminder"
	"github.com/coachpulse/coachpulse/internal/obs"
	"github.com/coachpulse/coachpulse/internal/services/reminder-dispatcher/repo"
)

const TypeReminderDue = "REMINDER_DUE"

type Result struct {
	Success   bool   `json:"success"`
	Processed int    `json:"processed"`
	Sent      int    `json:"sent"`
	Message   string `json:"message"`
}

type Handler struct {
	Log       *zap.Logger
	Reminders repo.ReminderStore
	Notifs    repo.NotificationStore
	Mail      notification.EmailSender
	Events    notification.Events
	Horizon   time.Duration
}

// Run dispatches every reminder due in (now, now+horizon]. Reminders are
// processed sequentially; one reminder's failure never aborts the batch.
// Only the candidate fetch is fatal to the run.
func (h *Handler) Run(ctx context.Context, now time.Time) Result {
	tr := otel.Tracer("reminder-dispatcher.uc")
	ctx, span := tr.Start(ctx, "reminders.run")
	defer span.End()

	log := obs.WithTrace(ctx, h.Log)

	rems, err := h.Reminders.ListActive(ctx)
	if err != nil {
		span.RecordError(err)
		log.Error("fetch active reminders", zap.Error(err))
		return Result{Success: false, Message: fmt.Sprintf("fetch active reminders: %v", err)}
	}
	if len(rems) == 0 {
		// some historical rows never had the active flag set; fall back to
		// the unfiltered list so they are not lost
		if rems, err = h.Reminders.ListAll(ctx); err != nil {
			span.RecordError(err)
			log.Error("fetch all reminders", zap.Error(err))
			return Result{Success: false, Message: fmt.Sprintf("fetch all reminders: %v", err)}
		}
	}

	due := reminder.SelectDue(rems, now, h.Horizon)
	span.SetAttributes(
		attribute.Int("run.candidates", len(rems)),
		attribute.Int("run.due", len(due)),
	)

	processed, sent := 0, 0
	for _, rm := range due {
		if h.dispatch(ctx, now, rm) {
			sent++
		}
		processed++
	}
	return Result{
		Success:   true,
		Processed: processed,
		Sent:      sent,
		Message:   fmt.Sprintf("%d reminders due, %d dispatched", processed, sent),
	}
}

func (h *Handler) dispatch(ctx context.Context, now time.Time, rm *reminder.Reminder) bool {
	log := obs.WithTrace(ctx, h.Log).With(zap.String("reminder_id", rm.ID))

	n := &notification.Notification{
		UserID:     rm.UserID,
		Type:       TypeReminderDue,
		Title:      "Reminder: " + rm.Title,
		Message:    reminderMessage(rm),
		ActionLink: "/reminders",
		Priority:   notification.PriorityHigh,
		SentAt:     now,
	}
	if err := h.Notifs.Create(ctx, n); err != nil {
		log.Error("create notification", zap.Error(err))
		return false
	}
	if err := h.Mail.Send(ctx, rm.UserEmail, n.Title, reminderHTML(rm)); err != nil {
		log.Warn("email send failed", zap.Error(err))
	}
	if h.Events != nil {
		if err := h.Events.PublishCreated(ctx, n); err != nil {
			log.Warn("feed publish failed", zap.Error(err))
		}
	}

	if rm.Recurring {
		next := reminder.NextOccurrence(rm.DueAt, rm.Recurrence)
		if err := h.Reminders.UpdateDueAt(ctx, rm.ID, next); err != nil {
			log.Error("advance recurring reminder", zap.Error(err))
		} else {
			log.Debug("recurring reminder advanced", zap.Time("next_due", next))
		}
	}
	return true
}

func reminderMessage(rm *reminder.Reminder) string {
	msg := fmt.Sprintf("Hi %s, your reminder %q is due at %s.",
		rm.UserFirstName, rm.Title, rm.DueAt.UTC().Format("Jan 2, 2006 15:04 MST"))
	if rm.Description != "" {
		msg += " " + rm.Description
	}
	return msg
}

func reminderHTML(rm *reminder.Reminder) string {
	return fmt.Sprintf(
		"<html><body><h2>Reminder: %s</h2><p>%s</p><p><a href=%q>Open CoachPulse</a></p></body></html>",
		rm.Title, reminderMessage(rm), "/reminders",
	)
}
