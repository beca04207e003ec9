package domain

import "sort"

// Snapshot is the full persisted state, saved and loaded as one unit.
type Snapshot struct {
	Profile   *Profile
	CheckIns  []*CheckIn
	Onboarded bool
	Reminder  ReminderSettings
}

// EmptySnapshot returns the initial state.
func EmptySnapshot() *Snapshot {
	return &Snapshot{
		CheckIns: make([]*CheckIn, 0),
		Reminder: DefaultReminderSettings(),
	}
}

// Normalize enforces the one-check-in-per-day invariant on loaded data.
// When a day appears more than once the later entry wins. Result is ordered by date.
func (s *Snapshot) Normalize() {
	byDay := make(map[string]int, len(s.CheckIns))
	unique := make([]*CheckIn, 0, len(s.CheckIns))
	for _, c := range s.CheckIns {
		if c == nil {
			continue
		}
		key := DayKey(c.Date())
		if idx, ok := byDay[key]; ok {
			unique[idx] = c
			continue
		}
		byDay[key] = len(unique)
		unique = append(unique, c)
	}
	SortByDate(unique)
	s.CheckIns = unique
}

// SortByDate orders check-ins oldest first.
func SortByDate(checkIns []*CheckIn) {
	sort.SliceStable(checkIns, func(i, j int) bool {
		return checkIns[i].Date().Before(checkIns[j].Date())
	})
}
