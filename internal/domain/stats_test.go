package domain

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCurrentStreak(t *testing.T) {
	cases := []struct {
		name string
		days []time.Time
		want int
	}{
		{"no history", nil, 0},
		{"single day", []time.Time{day(2026, 3, 10)}, 1},
		{"three consecutive", []time.Time{day(2026, 3, 8), day(2026, 3, 9), day(2026, 3, 10)}, 3},
		{"gap resets", []time.Time{day(2026, 3, 1), day(2026, 3, 2), day(2026, 3, 3), day(2026, 3, 9), day(2026, 3, 10)}, 2},
		{"duplicates collapse", []time.Time{day(2026, 3, 9), day(2026, 3, 9), day(2026, 3, 10)}, 2},
		{"unsorted input", []time.Time{day(2026, 3, 10), day(2026, 3, 8), day(2026, 3, 9)}, 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CurrentStreak(tc.days); got != tc.want {
				t.Errorf("expected streak %d, got %d", tc.want, got)
			}
		})
	}
}

func TestLongestStreak(t *testing.T) {
	// Three-day run early, two-day run late: longest is 3, current is 2.
	days := []time.Time{
		day(2026, 3, 1), day(2026, 3, 2), day(2026, 3, 3),
		day(2026, 3, 9), day(2026, 3, 10),
	}
	if got := LongestStreak(days); got != 3 {
		t.Errorf("expected longest 3, got %d", got)
	}
	if got := CurrentStreak(days); got != 2 {
		t.Errorf("expected current 2, got %d", got)
	}
}

func TestLongestStreak_Empty(t *testing.T) {
	if got := LongestStreak(nil); got != 0 {
		t.Errorf("expected 0, got %d", got)
	}
}

func TestClassifyTrend(t *testing.T) {
	cases := []struct {
		name   string
		scores []int
		want   Trend
	}{
		{"no scores", nil, TrendStable},
		{"single score", []int{80}, TrendStable},
		{"improving", []int{60, 65, 85, 90}, TrendIncreasing},
		{"declining", []int{90, 85, 65, 60}, TrendDecreasing},
		{"flat", []int{80, 80, 80, 80}, TrendStable},
		{"within threshold", []int{80, 80, 80, 81}, TrendStable},
		{"odd count", []int{50, 90, 90}, TrendIncreasing},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyTrend(tc.scores); got != tc.want {
				t.Errorf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestStatsApply(t *testing.T) {
	stats := &ProductivityStats{UserID: "alice", Date: day(2026, 3, 10)}

	stats.Apply(StatsDelta{SessionsStarted: 1})
	stats.Apply(StatsDelta{SessionsCompleted: 1, FocusMinutes: 25})
	stats.Apply(StatsDelta{SessionsStarted: 1, SessionsCompleted: 1, BreakMinutes: 5})

	if stats.SessionsStarted != 2 || stats.SessionsCompleted != 2 {
		t.Errorf("expected 2/2 sessions, got %d/%d", stats.SessionsStarted, stats.SessionsCompleted)
	}
	if stats.TotalFocusMinutes != 25 || stats.TotalBreakMinutes != 5 {
		t.Errorf("expected 25m focus and 5m break, got %d/%d", stats.TotalFocusMinutes, stats.TotalBreakMinutes)
	}
	if want := 25.0 / 30.0; stats.FocusRatio != want {
		t.Errorf("expected focus ratio %.3f, got %.3f", want, stats.FocusRatio)
	}
}

func TestRecomputeFocusRatio_ZeroMinutes(t *testing.T) {
	stats := &ProductivityStats{FocusRatio: 0.5}
	stats.RecomputeFocusRatio()
	if stats.FocusRatio != 0 {
		t.Errorf("expected ratio 0 with no minutes, got %.3f", stats.FocusRatio)
	}
}

func TestDateOf(t *testing.T) {
	at := time.Date(2026, 3, 10, 23, 59, 59, 0, time.UTC)
	want := day(2026, 3, 10)
	if got := DateOf(at); !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}
