package domain

import (
	"sort"
	"time"
)

// ProductivityStats aggregates one user's completed sessions for one
// calendar day. Sessions are attributed to the day they started, even when
// they cross midnight.
type ProductivityStats struct {
	UserID            string    `json:"userId"`
	Date              time.Time `json:"date"`
	SessionsStarted   int       `json:"sessionsStarted"`
	SessionsCompleted int       `json:"sessionsCompleted"`
	TotalFocusMinutes int       `json:"totalFocusMinutes"`
	TotalBreakMinutes int       `json:"totalBreakMinutes"`
	FocusRatio        float64   `json:"focusRatio"`
}

// RecomputeFocusRatio refreshes the derived ratio after a mutation.
func (p *ProductivityStats) RecomputeFocusRatio() {
	total := p.TotalFocusMinutes + p.TotalBreakMinutes
	if total == 0 {
		p.FocusRatio = 0
		return
	}
	p.FocusRatio = float64(p.TotalFocusMinutes) / float64(total)
}

// StatsDelta is an incremental change applied to a (user, date) aggregate.
type StatsDelta struct {
	SessionsStarted   int
	SessionsCompleted int
	FocusMinutes      int
	BreakMinutes      int
}

// Apply folds the delta into the aggregate and recomputes the ratio.
func (p *ProductivityStats) Apply(d StatsDelta) {
	p.SessionsStarted += d.SessionsStarted
	p.SessionsCompleted += d.SessionsCompleted
	p.TotalFocusMinutes += d.FocusMinutes
	p.TotalBreakMinutes += d.BreakMinutes
	p.RecomputeFocusRatio()
}

// DateOf truncates a timestamp to its calendar day.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// StreakInfo summarises a user's run of consecutive active days.
type StreakInfo struct {
	CurrentStreak int   `json:"currentStreak"`
	LongestStreak int   `json:"longestStreak"`
	Trend         Trend `json:"trend"`
}

// CurrentStreak counts consecutive calendar days with at least one
// completed session, walking backward from the most recent such day.
// A user with no completed sessions has a streak of zero.
func CurrentStreak(completedDays []time.Time) int {
	days := normalizeDays(completedDays)
	if len(days) == 0 {
		return 0
	}
	streak := 1
	for i := len(days) - 1; i > 0; i-- {
		if days[i].Sub(days[i-1]) == 24*time.Hour {
			streak++
			continue
		}
		break
	}
	return streak
}

// LongestStreak scans the full history for the maximal consecutive-day run.
func LongestStreak(completedDays []time.Time) int {
	days := normalizeDays(completedDays)
	if len(days) == 0 {
		return 0
	}
	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i].Sub(days[i-1]) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

// normalizeDays deduplicates and sorts day-truncated dates ascending.
// Days are normalized to UTC so the consecutive-day arithmetic is not
// disturbed by DST boundaries.
func normalizeDays(dates []time.Time) []time.Time {
	seen := make(map[time.Time]struct{}, len(dates))
	days := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

// Trend classifies the direction of recent productivity scores.
type Trend string

const (
	TrendIncreasing Trend = "INCREASING"
	TrendDecreasing Trend = "DECREASING"
	TrendStable     Trend = "STABLE"
)

// ClassifyTrend splits the scores (chronological order) in half and
// compares the means. A difference of more than 0.5 in either direction
// is a trend; fewer than two rated sessions is always STABLE.
func ClassifyTrend(scores []int) Trend {
	if len(scores) < 2 {
		return TrendStable
	}
	half := len(scores) / 2
	var firstSum, secondSum float64
	for i, s := range scores {
		if i < half {
			firstSum += float64(s)
		} else {
			secondSum += float64(s)
		}
	}
	firstMean := firstSum / float64(half)
	secondMean := secondSum / float64(len(scores)-half)

	switch diff := secondMean - firstMean; {
	case diff > 0.5:
		return TrendIncreasing
	case diff < -0.5:
		return TrendDecreasing
	default:
		return TrendStable
	}
}
