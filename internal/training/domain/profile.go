package domain

import "strings"

// DefaultDisplayName is shown when the athlete left the name blank.
const DefaultDisplayName = "Athlete"

// Profile is captured once during onboarding and replaced wholesale afterwards.
// Empty fields are valid; fallbacks are a display concern.
type Profile struct {
	Name        string
	Goal        string
	DaysPerWeek int
	Experience  Experience
}

// DisplayName returns the name, or DefaultDisplayName when it is blank.
func (p Profile) DisplayName() string {
	if strings.TrimSpace(p.Name) == "" {
		return DefaultDisplayName
	}
	return p.Name
}
