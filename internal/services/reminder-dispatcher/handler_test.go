package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/coachpulse/coachpulse/internal/domain/notification"
	"github.com/coachpulse/coachpulse/internal/domain/reminder"
	"github.com/coachpulse/coachpulse/internal/services/reminder-dispatcher/repo"
)

type fakeReminderRepo struct {
	active    []*reminder.Reminder
	all       []*reminder.Reminder
	activeErr error
	allErr    error
	updates   map[string]time.Time
	updateErr error
}

func (f *fakeReminderRepo) ListActive(context.Context) ([]*reminder.Reminder, error) {
	return f.active, f.activeErr
}
func (f *fakeReminderRepo) ListAll(context.Context) ([]*reminder.Reminder, error) {
	return f.all, f.allErr
}
func (f *fakeReminderRepo) UpdateDueAt(_ context.Context, id string, due time.Time) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if f.updates == nil {
		f.updates = map[string]time.Time{}
	}
	f.updates[id] = due
	return nil
}

type fakeNotifRepo struct {
	created   []*notification.Notification
	failTitle string // Create fails for notifications with this title
}

func (f *fakeNotifRepo) Create(_ context.Context, n *notification.Notification) error {
	if f.failTitle != "" && strings.Contains(n.Title, f.failTitle) {
		return errors.New("backend unavailable")
	}
	n.ID = fmt.Sprintf("n-%d", len(f.created)+1)
	f.created = append(f.created, n)
	return nil
}
func (f *fakeNotifRepo) CountForUserSince(context.Context, string, time.Time) (int, error) {
	return 0, nil
}

type fakeMail struct {
	sent []string // recipient addresses
	err  error
}

func (f *fakeMail) Send(_ context.Context, to, _, _ string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to)
	return nil
}

type fakeEvents struct {
	published []*notification.Notification
	err       error
}

func (f *fakeEvents) PublishCreated(_ context.Context, n *notification.Notification) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, n)
	return nil
}

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return ts
}

func newHandler(rems *fakeReminderRepo, notifs *fakeNotifRepo, mail *fakeMail, events *fakeEvents) *Handler {
	return &Handler{
		Log:       zap.NewNop(),
		Reminders: repo.ReminderStore{R: rems},
		Notifs:    repo.NotificationStore{R: notifs},
		Mail:      mail,
		Events:    events,
		Horizon:   5 * time.Minute,
	}
}

func TestRunDispatchesDueReminders(t *testing.T) {
	now := mustTime(t, "2024-06-10T09:00:00Z")
	due := mustTime(t, "2024-06-10T09:03:00Z")

	rems := &fakeReminderRepo{active: []*reminder.Reminder{
		{
			ID: "r-a", Title: "Ship weekly report", DueAt: due, Active: true,
			UserID: "u-1", UserEmail: "a@example.com", UserFirstName: "Ada",
		},
		{
			ID: "r-b", Title: "Team standup", DueAt: due, Active: true,
			Recurring: true, Recurrence: reminder.Weekly,
			UserID: "u-2", UserEmail: "b@example.com", UserFirstName: "Ben",
		},
	}}
	notifs := &fakeNotifRepo{}
	mail := &fakeMail{}
	events := &fakeEvents{}

	res := newHandler(rems, notifs, mail, events).Run(context.Background(), now)

	require.True(t, res.Success)
	require.Equal(t, 2, res.Processed)
	require.Equal(t, 2, res.Sent)
	require.Len(t, notifs.created, 2)
	require.Equal(t, []string{"a@example.com", "b@example.com"}, mail.sent)
	require.Len(t, events.published, 2)

	// only the recurring reminder advances, by exactly one week
	require.Len(t, rems.updates, 1)
	require.Equal(t, mustTime(t, "2024-06-17T09:03:00Z"), rems.updates["r-b"])

	for _, n := range notifs.created {
		require.Equal(t, TypeReminderDue, n.Type)
		require.Equal(t, notification.PriorityHigh, n.Priority)
		require.Equal(t, now, n.SentAt)
	}
	require.Contains(t, notifs.created[0].Message, "Ada")
}

func TestRunNotDueIsSkipped(t *testing.T) {
	now := mustTime(t, "2024-06-10T09:00:00Z")
	rems := &fakeReminderRepo{active: []*reminder.Reminder{
		{ID: "r-now", Title: "At now", DueAt: now, Active: true, UserID: "u-1", UserEmail: "a@example.com"},
		{ID: "r-late", Title: "Past horizon", DueAt: now.Add(6 * time.Minute), Active: true, UserID: "u-2", UserEmail: "b@example.com"},
	}}
	notifs := &fakeNotifRepo{}

	res := newHandler(rems, notifs, &fakeMail{}, &fakeEvents{}).Run(context.Background(), now)

	require.True(t, res.Success)
	require.Zero(t, res.Processed)
	require.Zero(t, res.Sent)
	require.Empty(t, notifs.created)
}

func TestRunFallsBackToAllOnEmptyActive(t *testing.T) {
	now := mustTime(t, "2024-06-10T09:00:00Z")
	rems := &fakeReminderRepo{
		all: []*reminder.Reminder{
			{ID: "r-1", Title: "Legacy row", DueAt: now.Add(2 * time.Minute), UserID: "u-1", UserEmail: "a@example.com"},
		},
	}
	notifs := &fakeNotifRepo{}

	res := newHandler(rems, notifs, &fakeMail{}, &fakeEvents{}).Run(context.Background(), now)

	require.True(t, res.Success)
	require.Equal(t, 1, res.Processed)
	require.Len(t, notifs.created, 1)
}

func TestRunFetchErrorAbortsRun(t *testing.T) {
	rems := &fakeReminderRepo{activeErr: errors.New("gateway timeout")}

	res := newHandler(rems, &fakeNotifRepo{}, &fakeMail{}, &fakeEvents{}).Run(context.Background(), time.Now())

	require.False(t, res.Success)
	require.Zero(t, res.Processed)
	require.Zero(t, res.Sent)
	require.Contains(t, res.Message, "gateway timeout")
}

func TestRunFallbackFetchErrorAbortsRun(t *testing.T) {
	rems := &fakeReminderRepo{allErr: errors.New("gateway timeout")}

	res := newHandler(rems, &fakeNotifRepo{}, &fakeMail{}, &fakeEvents{}).Run(context.Background(), time.Now())

	require.False(t, res.Success)
	require.Zero(t, res.Sent)
}

func TestRunCreateFailureIsIsolated(t *testing.T) {
	now := mustTime(t, "2024-06-10T09:00:00Z")
	due := now.Add(time.Minute)
	rems := &fakeReminderRepo{active: []*reminder.Reminder{
		{
			ID: "r-bad", Title: "Doomed", DueAt: due, Active: true,
			Recurring: true, Recurrence: reminder.Daily,
			UserID: "u-1", UserEmail: "a@example.com",
		},
		{ID: "r-ok", Title: "Fine", DueAt: due, Active: true, UserID: "u-2", UserEmail: "b@example.com"},
	}}
	notifs := &fakeNotifRepo{failTitle: "Doomed"}
	mail := &fakeMail{}

	res := newHandler(rems, notifs, mail, &fakeEvents{}).Run(context.Background(), now)

	require.True(t, res.Success)
	require.Equal(t, 2, res.Processed)
	require.Equal(t, 1, res.Sent)
	require.Len(t, notifs.created, 1)
	require.Equal(t, []string{"b@example.com"}, mail.sent)
	// the abandoned item must not advance its recurrence either
	require.Empty(t, rems.updates)
}

func TestRunEmailFailureIsBestEffort(t *testing.T) {
	now := mustTime(t, "2024-06-10T09:00:00Z")
	rems := &fakeReminderRepo{active: []*reminder.Reminder{
		{
			ID: "r-1", Title: "Check in", DueAt: now.Add(time.Minute), Active: true,
			Recurring: true, Recurrence: reminder.Daily,
			UserID: "u-1", UserEmail: "a@example.com",
		},
	}}
	notifs := &fakeNotifRepo{}

	res := newHandler(rems, notifs, &fakeMail{err: errors.New("smtp down")}, &fakeEvents{}).Run(context.Background(), now)

	require.True(t, res.Success)
	require.Equal(t, 1, res.Sent)
	require.Len(t, notifs.created, 1)
	// recurrence still advances
	require.Len(t, rems.updates, 1)
}

func TestRunUpdateFailureDoesNotAbort(t *testing.T) {
	now := mustTime(t, "2024-06-10T09:00:00Z")
	rems := &fakeReminderRepo{
		active: []*reminder.Reminder{
			{
				ID: "r-1", Title: "First", DueAt: now.Add(time.Minute), Active: true,
				Recurring: true, Recurrence: reminder.Daily,
				UserID: "u-1", UserEmail: "a@example.com",
			},
			{ID: "r-2", Title: "Second", DueAt: now.Add(time.Minute), Active: true, UserID: "u-2", UserEmail: "b@example.com"},
		},
		updateErr: errors.New("write refused"),
	}
	notifs := &fakeNotifRepo{}

	res := newHandler(rems, notifs, &fakeMail{}, &fakeEvents{}).Run(context.Background(), now)

	require.True(t, res.Success)
	require.Equal(t, 2, res.Processed)
	require.Equal(t, 2, res.Sent)
	require.Len(t, notifs.created, 2)
}
