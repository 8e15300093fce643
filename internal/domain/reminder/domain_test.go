package reminder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestNextOccurrence(t *testing.T) {
	cases := []struct {
		name    string
		current string
		pattern Pattern
		want    string
	}{
		{"daily", "2024-06-10T09:03:00Z", Daily, "2024-06-11T09:03:00Z"},
		{"weekly", "2024-06-10T09:03:00Z", Weekly, "2024-06-17T09:03:00Z"},
		{"monthly", "2024-06-10T09:03:00Z", Monthly, "2024-07-10T09:03:00Z"},
		{"monthly clamps to leap feb", "2024-01-31T08:00:00Z", Monthly, "2024-02-29T08:00:00Z"},
		{"monthly clamps to short feb", "2023-01-31T08:00:00Z", Monthly, "2023-02-28T08:00:00Z"},
		{"monthly clamps 31 to 30", "2024-03-31T08:00:00Z", Monthly, "2024-04-30T08:00:00Z"},
		{"monthly december wraps year", "2024-12-15T08:00:00Z", Monthly, "2025-01-15T08:00:00Z"},
		{"yearly", "2024-06-10T09:03:00Z", Yearly, "2025-06-10T09:03:00Z"},
		{"yearly clamps leap day", "2024-02-29T08:00:00Z", Yearly, "2025-02-28T08:00:00Z"},
		{"unknown pattern advances daily", "2024-06-10T09:03:00Z", Pattern("fortnightly"), "2024-06-11T09:03:00Z"},
		{"empty pattern advances daily", "2024-06-10T09:03:00Z", Pattern(""), "2024-06-11T09:03:00Z"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NextOccurrence(ts(tc.current), tc.pattern)
			require.Equal(t, ts(tc.want), got)
		})
	}
}

func TestNextOccurrenceDailyIsLinear(t *testing.T) {
	start := ts("2024-06-10T09:03:00Z")
	once := NextOccurrence(start, Daily)
	twice := NextOccurrence(once, Daily)
	require.Equal(t, once.AddDate(0, 0, 1), twice)
	// pure: same inputs, same output
	require.Equal(t, once, NextOccurrence(start, Daily))
}

func TestSelectDueBoundaries(t *testing.T) {
	now := ts("2024-06-10T09:00:00Z")
	horizon := 5 * time.Minute

	mk := func(id string, due time.Time) *Reminder {
		return &Reminder{ID: id, DueAt: due, Active: true}
	}
	list := []*Reminder{
		mk("past", now.Add(-time.Minute)),
		mk("at-now", now),
		mk("inside", now.Add(3*time.Minute)),
		mk("at-horizon", now.Add(horizon)),
		mk("past-horizon", now.Add(horizon).Add(time.Millisecond)),
	}

	due := SelectDue(list, now, horizon)
	ids := make([]string, 0, len(due))
	for _, r := range due {
		ids = append(ids, r.ID)
	}
	require.Equal(t, []string{"inside", "at-horizon"}, ids)
}

func TestSelectDueEmpty(t *testing.T) {
	require.Empty(t, SelectDue(nil, time.Now(), time.Minute))
}

func TestNormalizeDueBothFormatsAgree(t *testing.T) {
	legacy, err := NormalizeDue("", "2024-01-01", "14:00:00")
	require.NoError(t, err)
	combined, err := NormalizeDue("2024-01-01T14:00:00Z", "", "")
	require.NoError(t, err)
	require.Equal(t, combined, legacy)
	require.Equal(t, ts("2024-01-01T14:00:00Z"), combined)

	// and both select identically
	now := ts("2024-01-01T13:58:00Z")
	a := &Reminder{ID: "a", DueAt: legacy}
	b := &Reminder{ID: "b", DueAt: combined}
	due := SelectDue([]*Reminder{a, b}, now, 5*time.Minute)
	require.Len(t, due, 2)
}

func TestNormalizeDueVariants(t *testing.T) {
	cases := []struct {
		name                   string
		combined, ldate, ltime string
		want                   string
	}{
		{"combined zoneless as utc", "2024-01-01T14:00:00", "", "", "2024-01-01T14:00:00Z"},
		{"combined space separated", "2024-01-01 14:00:00", "", "", "2024-01-01T14:00:00Z"},
		{"combined bare date at midnight", "2024-01-01", "", "", "2024-01-01T00:00:00Z"},
		{"legacy date without time", "", "2024-01-01", "", "2024-01-01T00:00:00Z"},
		{"combined wins over legacy", "2024-01-01T14:00:00Z", "2030-12-31", "23:59:59", "2024-01-01T14:00:00Z"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeDue(tc.combined, tc.ldate, tc.ltime)
			require.NoError(t, err)
			require.Equal(t, ts(tc.want), got)
		})
	}
}

func TestNormalizeDueErrors(t *testing.T) {
	_, err := NormalizeDue("", "", "")
	require.ErrorIs(t, err, ErrNoDue)

	_, err = NormalizeDue("next tuesday", "", "")
	require.Error(t, err)

	_, err = NormalizeDue("", "01/01/2024", "14:00:00")
	require.Error(t, err)
}
