// Package activity holds the absence-check rules that turn a student's recent
// activity counts into notifications.
package activity

import (
	"fmt"
	"time"

	"github.com/coachpulse/coachpulse/internal/domain/notification"
	"github.com/coachpulse/coachpulse/internal/domain/student"
)

type Kind string

const (
	KindReport    Kind = "report"
	KindLead      Kind = "lead"
	KindCoachCall Kind = "coach_call"
)

const (
	TypeNoReport7Days     = "NO_REPORT_7_DAYS"
	TypeNoLeads7Days      = "NO_LEADS_7_DAYS"
	TypeNoCoachCall14Days = "NO_COACH_CALL_14_DAYS"
	TypeStayFocused       = "STAY_FOCUSED"
)

// Criterion maps one absence condition onto a notification template. The set
// is fixed configuration, not persisted state.
type Criterion struct {
	Type       string
	WindowDays int
	Title      string
	Message    string // fmt template, the placeholder is the student's first name
	ActionLink string
	Priority   notification.Priority
}

// Criteria is evaluated in this exact order. The four checks are independent:
// a student can collect anywhere from zero to four items in one run.
var Criteria = [4]Criterion{
	{
		Type:       TypeNoReport7Days,
		WindowDays: 7,
		Title:      "Time to log an activity report",
		Message:    "Hi %s, you haven't submitted an activity report in the last 7 days. Log one to keep your coach in the loop.",
		ActionLink: "/reports/new",
		Priority:   notification.PriorityHigh,
	},
	{
		Type:       TypeNoLeads7Days,
		WindowDays: 7,
		Title:      "No new leads this week",
		Message:    "Hi %s, no new leads were recorded in the last 7 days. Add your latest prospects so your pipeline stays current.",
		ActionLink: "/leads",
		Priority:   notification.PriorityMedium,
	},
	{
		Type:       TypeNoCoachCall14Days,
		WindowDays: 14,
		Title:      "Schedule a coach call",
		Message:    "Hi %s, it's been more than 14 days since your last coach call. Book a session to stay on track.",
		ActionLink: "/calls/schedule",
		Priority:   notification.PriorityMedium,
	},
	{
		Type:       TypeStayFocused,
		WindowDays: 3,
		Title:      "Stay focused",
		Message:    "Hi %s, there's been no activity in the last 3 days. Small consistent steps add up: log a report or a lead today.",
		ActionLink: "/dashboard",
		Priority:   notification.PriorityHigh,
	},
}

// Signals carries the activity counts a single aggregation run consumes.
// A failed count fetch must be folded to zero by the caller before it gets
// here (fail open: an outage flags, it never silences).
type Signals struct {
	Reports7d     int
	Leads7d       int
	CoachCalls14d int
	Reports3d     int
	Leads3d       int
}

type Item struct {
	Type       string
	Title      string
	Message    string
	ActionLink string
	Priority   notification.Priority
}

// Aggregate evaluates the fixed criteria against one student's signals. The
// skip-gate (any notification already sent today) is the caller's job; by the
// time Aggregate runs the student has already passed it.
func Aggregate(st *student.Student, sig Signals) []Item {
	items := make([]Item, 0, len(Criteria))
	for _, c := range Criteria {
		var fired bool
		switch c.Type {
		case TypeNoReport7Days:
			fired = sig.Reports7d == 0
		case TypeNoLeads7Days:
			fired = sig.Leads7d == 0
		case TypeNoCoachCall14Days:
			fired = sig.CoachCalls14d == 0
		case TypeStayFocused:
			// requires both 3-day counts at zero, independent of the 7-day checks
			fired = sig.Reports3d == 0 && sig.Leads3d == 0
		}
		if !fired {
			continue
		}
		items = append(items, Item{
			Type:       c.Type,
			Title:      c.Title,
			Message:    fmt.Sprintf(c.Message, st.FirstName),
			ActionLink: c.ActionLink,
			Priority:   c.Priority,
		})
	}
	return items
}

// LookbackStart is exact 24h-day arithmetic, deliberately ignoring calendar
// days and DST.
func LookbackStart(now time.Time, days int) time.Time {
	return now.Add(-time.Duration(days) * 24 * time.Hour)
}

// StartOfDay is the skip-gate boundary: midnight of now's calendar day in
// now's location.
func StartOfDay(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}
