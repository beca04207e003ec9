package services

import "fmt"

// InsightWindowDays is the window used for the completion rate behind insights.
const InsightWindowDays = 30

// InsightInput summarizes progress for the insight card.
type InsightInput struct {
	CheckInCount   int
	CompletionRate float64
	CurrentStreak  int
	LongestStreak  int
}

// Insight returns a single progress observation, or false when there is no history yet.
func Insight(in InsightInput) (string, bool) {
	if in.CheckInCount == 0 {
		return "", false
	}

	switch {
	case in.CurrentStreak >= 7:
		return "🎯 Seven days in a row! You're in a flow. Stay focused and keep delivering.", true
	case in.CompletionRate >= 80:
		return "💪 Fantastic consistency! Over 80% completion rate is impressive.", true
	case in.CompletionRate < 60:
		return "⚠️ You're skipping a lot of planned sessions. Consider a lower, more realistic target.", true
	case in.LongestStreak > in.CurrentStreak+3:
		return fmt.Sprintf("🔥 You've had longer streaks before (%d days). You know you can, come back!", in.LongestStreak), true
	default:
		return "📈 Keep logging daily. More data means better insight and coaching.", true
	}
}
