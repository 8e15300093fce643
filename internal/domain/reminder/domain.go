package reminder

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Pattern string

const (
	Daily   Pattern = "daily"
	Weekly  Pattern = "weekly"
	Monthly Pattern = "monthly"
	Yearly  Pattern = "yearly"
)

type Reminder struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	DueAt         time.Time `json:"due_at"`
	Active        bool      `json:"active"`
	Recurring     bool      `json:"recurring"`
	Recurrence    Pattern   `json:"recurrence"`
	UserID        string    `json:"user_id"`
	UserEmail     string    `json:"user_email"`
	UserFirstName string    `json:"user_first_name"`
	UserLastName  string    `json:"user_last_name"`
}

var ErrNoDue = errors.New("reminder has no due timestamp")

// dueLayouts are the formats that appear in the historical data: a combined
// timestamp with or without zone designator, and a bare date. All are taken
// as UTC wall clock; no offset is ever applied.
var dueLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// NormalizeDue maps the two historical due representations onto one canonical
// UTC instant: either a single combined timestamp, or a legacy date + time-of-day
// pair. Nothing downstream of this function branches on the stored format.
func NormalizeDue(combined, legacyDate, legacyTime string) (time.Time, error) {
	if s := strings.TrimSpace(combined); s != "" {
		return parseInstant(s)
	}
	d := strings.TrimSpace(legacyDate)
	if d == "" {
		return time.Time{}, ErrNoDue
	}
	tm := strings.TrimSpace(legacyTime)
	if tm == "" {
		tm = "00:00:00"
	}
	return parseInstant(d + "T" + tm)
}

func parseInstant(s string) (time.Time, error) {
	for _, layout := range dueLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized due timestamp %q", s)
}

// SelectDue returns the reminders whose due instant falls in (now, now+horizon].
// A reminder due exactly at now is excluded; one due exactly at now+horizon is
// included.
func SelectDue(list []*Reminder, now time.Time, horizon time.Duration) []*Reminder {
	end := now.Add(horizon)
	out := make([]*Reminder, 0, len(list))
	for _, r := range list {
		if r.DueAt.After(now) && !r.DueAt.After(end) {
			out = append(out, r)
		}
	}
	return out
}

// NextOccurrence advances a due instant by one recurrence period. Monthly and
// yearly keep the day-of-month, clamped to the last valid day of the target
// month (Jan 31 -> Feb 28/29). An unknown or empty pattern advances daily so
// a recurring reminder never stalls.
func NextOccurrence(t time.Time, p Pattern) time.Time {
	switch p {
	case Weekly:
		return t.AddDate(0, 0, 7)
	case Monthly:
		return addMonthsClamped(t, 1)
	case Yearly:
		return addMonthsClamped(t, 12)
	default:
		return t.AddDate(0, 0, 1)
	}
}

func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	target := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	if last := lastDay(target.Year(), target.Month()); d > last {
		d = last
	}
	return time.Date(target.Year(), target.Month(), d,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func lastDay(year int, month time.Month) int {
	// day 0 of the next month
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
