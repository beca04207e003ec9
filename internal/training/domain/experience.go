package domain

// Experience describes how long the athlete has been training.
type Experience string

const (
	ExperienceBeginner     Experience = "beginner"
	ExperienceIntermediate Experience = "intermediate"
	ExperienceAdvanced     Experience = "advanced"
)

// ValidExperiences returns all experience levels in display order.
func ValidExperiences() []Experience {
	return []Experience{ExperienceBeginner, ExperienceIntermediate, ExperienceAdvanced}
}

// IsValid checks if the experience level is known.
func (e Experience) IsValid() bool {
	switch e {
	case ExperienceBeginner, ExperienceIntermediate, ExperienceAdvanced:
		return true
	default:
		return false
	}
}

// DisplayName returns a human readable label.
func (e Experience) DisplayName() string {
	switch e {
	case ExperienceBeginner:
		return "Beginner"
	case ExperienceIntermediate:
		return "Trained a while"
	case ExperienceAdvanced:
		return "Experienced"
	default:
		return string(e)
	}
}
