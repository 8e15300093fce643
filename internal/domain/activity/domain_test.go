package activity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/coachpulse/coachpulse/internal/domain/notification"
	"github.com/coachpulse/coachpulse/internal/domain/student"
)

var alice = &student.Student{ID: "s-1", Email: "alice@example.com", FirstName: "Alice", LastName: "Ng"}

func TestLookbackStart(t *testing.T) {
	now := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	for _, days := range []int{3, 7, 14} {
		got := LookbackStart(now, days)
		require.Equal(t, now.Add(-time.Duration(days)*24*time.Hour), got)
	}
	// exact 24h days, no calendar adjustment
	require.Equal(t, time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC), LookbackStart(now, 7))
}

func TestStartOfDay(t *testing.T) {
	now := time.Date(2024, 6, 10, 23, 59, 59, 123, time.UTC)
	require.Equal(t, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), StartOfDay(now))
}

func TestAggregateQuietStudentGetsAllFour(t *testing.T) {
	items := Aggregate(alice, Signals{})
	require.Len(t, items, 4)

	types := make([]string, 0, len(items))
	for _, it := range items {
		types = append(types, it.Type)
	}
	require.Equal(t, []string{
		TypeNoReport7Days,
		TypeNoLeads7Days,
		TypeNoCoachCall14Days,
		TypeStayFocused,
	}, types)
}

func TestAggregateActiveStudentGetsNothing(t *testing.T) {
	items := Aggregate(alice, Signals{
		Reports7d:     2,
		Leads7d:       1,
		CoachCalls14d: 1,
		Reports3d:     1,
		Leads3d:       1,
	})
	require.Empty(t, items)
}

func TestAggregateCriteriaAreIndependent(t *testing.T) {
	items := Aggregate(alice, Signals{
		Reports7d:     1,
		Leads7d:       1,
		CoachCalls14d: 0,
		Reports3d:     1,
		Leads3d:       1,
	})
	require.Len(t, items, 1)
	require.Equal(t, TypeNoCoachCall14Days, items[0].Type)
	require.Equal(t, notification.PriorityMedium, items[0].Priority)
}

func TestAggregateStayFocusedRequiresBothQuiet(t *testing.T) {
	// a lead three days back keeps the stay-focused nudge away even though
	// reports are quiet
	items := Aggregate(alice, Signals{
		Reports7d:     1,
		Leads7d:       1,
		CoachCalls14d: 1,
		Reports3d:     0,
		Leads3d:       1,
	})
	require.Empty(t, items)

	items = Aggregate(alice, Signals{
		Reports7d:     1,
		Leads7d:       1,
		CoachCalls14d: 1,
		Reports3d:     0,
		Leads3d:       0,
	})
	require.Len(t, items, 1)
	require.Equal(t, TypeStayFocused, items[0].Type)
}

func TestAggregateStayFocusedIgnoresWeeklyCounts(t *testing.T) {
	// 3-day counts are evaluated on their own, not derived from the 7-day ones
	items := Aggregate(alice, Signals{
		Reports7d:     5,
		Leads7d:       5,
		CoachCalls14d: 1,
		Reports3d:     0,
		Leads3d:       0,
	})
	require.Len(t, items, 1)
	require.Equal(t, TypeStayFocused, items[0].Type)
}

func TestAggregateMessagesUseFirstName(t *testing.T) {
	for _, it := range Aggregate(alice, Signals{}) {
		require.Contains(t, it.Message, "Alice")
		require.NotEmpty(t, it.Title)
		require.NotEmpty(t, it.ActionLink)
	}
}
