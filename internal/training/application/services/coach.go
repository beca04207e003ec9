package services

import "fmt"

// Score tier boundaries.
const (
	HighScoreThreshold = 70
	MidScoreThreshold  = 40
)

// WelcomeBackMessage is returned when nothing has been logged today.
const WelcomeBackMessage = "Welcome back! Ready for today's challenge?"

// CoachInput is everything the coach looks at.
type CoachInput struct {
	Score           int
	PlannedToday    bool
	CompletedToday  bool
	Streak          int
	HasCheckInToday bool
}

// Coach picks a coaching message from a fixed set of templates.
// It holds no state; the same input always yields the same message.
type Coach struct{}

// NewCoach creates a new Coach.
func NewCoach() *Coach {
	return &Coach{}
}

// Message selects the message for the given input.
func (c *Coach) Message(in CoachInput) string {
	if !in.HasCheckInToday {
		return WelcomeBackMessage
	}

	switch {
	case in.Score >= HighScoreThreshold:
		return highTierMessage(in)
	case in.Score >= MidScoreThreshold:
		return midTierMessage(in)
	default:
		return lowTierMessage(in)
	}
}

func highTierMessage(in CoachInput) string {
	switch {
	case in.CompletedToday && in.Streak >= 5:
		return fmt.Sprintf("🔥 %d days in a row! You're in the flow zone. This is what discipline looks like.", in.Streak)
	case in.CompletedToday && in.Streak >= 3:
		return fmt.Sprintf("Solid! %d days straight. Momentum is building, keep driving.", in.Streak)
	case in.CompletedToday:
		return "Great! You're keeping consistency high. This is how lasting habits are built."
	case in.PlannedToday:
		return "You're in good shape, but no training today. One day off track is fine. Just not two."
	default:
		return fmt.Sprintf("Rest is part of discipline. With a score of %d%% you can afford it.", in.Score)
	}
}

func midTierMessage(in CoachInput) string {
	switch {
	case in.CompletedToday && in.Streak >= 2:
		return fmt.Sprintf("There it is! %d in a row. You're climbing back up. Hold that rhythm.", in.Streak)
	case in.CompletedToday:
		return fmt.Sprintf("Good work! A completed session when your score is %d%% is exactly what we need.", in.Score)
	case in.PlannedToday:
		return fmt.Sprintf("You planned to train, but it didn't happen. A score of %d%% is a warning. Tomorrow we have to deliver.", in.Score)
	default:
		return fmt.Sprintf("Rest day at %d%%? Fair enough, but we need to turn the trend quickly. Tomorrow we show up.", in.Score)
	}
}

func lowTierMessage(in CoachInput) string {
	switch {
	case in.CompletedToday && in.Streak >= 2:
		return fmt.Sprintf("Finally! %d days straight. This is the turning point, keep going now.", in.Streak)
	case in.CompletedToday:
		return "Good! This is the first step back. One session at a time, no panic."
	case in.PlannedToday:
		return fmt.Sprintf("Score %d%% and training skipped today. This is when it counts. Tomorrow, no excuses.", in.Score)
	default:
		return fmt.Sprintf("Score of %d%%. Rest day or not, we need to get back on track soon. Let's set up a simple plan for tomorrow.", in.Score)
	}
}
