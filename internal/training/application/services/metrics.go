package services

import (
	"iter"
	"math"
	"sort"
	"time"

	"github.com/felixgeelhaar/discipline/internal/training/domain"
)

const (
	// ScoreWindowDays is the trailing window used by the discipline score.
	ScoreWindowDays = 14
	// TrendSubWindowDays is the moving window behind each trend point.
	TrendSubWindowDays = 7
)

// TrendPoint is one day of the discipline trend.
type TrendPoint struct {
	Date  time.Time `json:"date"`
	Score int       `json:"score"`
}

// window is an inclusive range of calendar days.
type window struct {
	start time.Time
	end   time.Time
}

// trailingWindow covers exactly days calendar days ending with today.
func trailingWindow(now time.Time, days int) window {
	end := domain.StartOfDay(now)
	return window{start: domain.AddDays(end, -(days - 1)), end: end}
}

func (w window) contains(t time.Time) bool {
	day := domain.StartOfDay(t)
	return !day.Before(w.start) && !day.After(w.end)
}

// tally counts check-ins and completed check-ins inside the window.
func tally(checkIns []*domain.CheckIn, w window) (completed, total int) {
	for _, c := range checkIns {
		if c == nil || !w.contains(c.Date()) {
			continue
		}
		total++
		if c.CompletedTraining() {
			completed++
		}
	}
	return completed, total
}

// ratioScore converts a completed/total ratio to 0-100, rounding half up.
func ratioScore(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// DisciplineScore returns the share of completed check-ins over the last
// ScoreWindowDays, scaled to 0-100. Planned flags do not weight the result.
func DisciplineScore(checkIns []*domain.CheckIn, now time.Time) int {
	return ratioScore(tally(checkIns, trailingWindow(now, ScoreWindowDays)))
}

// CurrentStreak counts consecutive completed days ending at today.
// A missing day or an incomplete check-in ends the streak.
func CurrentStreak(checkIns []*domain.CheckIn, today time.Time) int {
	completed := completedDays(checkIns)

	streak := 0
	day := domain.StartOfDay(today)
	for completed[domain.DayKey(day)] {
		streak++
		day = domain.AddDays(day, -1)
	}
	return streak
}

// LongestStreak returns the longest run of consecutive completed days in the whole history.
func LongestStreak(checkIns []*domain.CheckIn) int {
	days := make([]time.Time, 0, len(checkIns))
	seen := make(map[string]bool, len(checkIns))
	for _, c := range checkIns {
		if c == nil || !c.CompletedTraining() {
			continue
		}
		key := domain.DayKey(c.Date())
		if seen[key] {
			continue
		}
		seen[key] = true
		days = append(days, domain.StartOfDay(c.Date()))
	}
	if len(days) == 0 {
		return 0
	}

	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if domain.SameDay(domain.AddDays(days[i-1], 1), days[i]) {
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

// CompletionRate returns the completed percentage (0-100) within the last lastDays.
func CompletionRate(checkIns []*domain.CheckIn, lastDays int, now time.Time) float64 {
	if lastDays <= 0 {
		return 0
	}
	completed, total := tally(checkIns, trailingWindow(now, lastDays))
	if total == 0 {
		return 0
	}
	return float64(completed) / float64(total) * 100
}

// TotalWorkouts counts completed check-ins within the last lastDays.
func TotalWorkouts(checkIns []*domain.CheckIn, lastDays int, now time.Time) int {
	if lastDays <= 0 {
		return 0
	}
	completed, _ := tally(checkIns, trailingWindow(now, lastDays))
	return completed
}

// AverageWorkoutsPerWeek normalizes TotalWorkouts to a seven day rate.
func AverageWorkoutsPerWeek(checkIns []*domain.CheckIn, lastDays int, now time.Time) float64 {
	if lastDays <= 0 {
		return 0
	}
	return float64(TotalWorkouts(checkIns, lastDays, now)) * 7 / float64(lastDays)
}

// DisciplineTrend yields one point per day for the last lastDays days, oldest first.
// Each score is the completion ratio of the TrendSubWindowDays ending at that day.
// The sequence is computed lazily and can be ranged over more than once.
func DisciplineTrend(checkIns []*domain.CheckIn, lastDays int, now time.Time) iter.Seq[TrendPoint] {
	snapshot := make([]*domain.CheckIn, len(checkIns))
	copy(snapshot, checkIns)
	today := domain.StartOfDay(now)

	return func(yield func(TrendPoint) bool) {
		for offset := lastDays - 1; offset >= 0; offset-- {
			day := domain.AddDays(today, -offset)
			sub := window{start: domain.AddDays(day, -(TrendSubWindowDays - 1)), end: day}
			point := TrendPoint{Date: day, Score: ratioScore(tally(snapshot, sub))}
			if !yield(point) {
				return
			}
		}
	}
}

func completedDays(checkIns []*domain.CheckIn) map[string]bool {
	days := make(map[string]bool, len(checkIns))
	for _, c := range checkIns {
		if c != nil && c.CompletedTraining() {
			days[domain.DayKey(c.Date())] = true
		}
	}
	return days
}
