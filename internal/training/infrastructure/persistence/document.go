package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/discipline/internal/training/domain"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for document formats other than JSON and YAML.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Format identifies a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// document is the serialized form of a snapshot.
type document struct {
	Profile   *profileDocument  `json:"profile,omitempty" yaml:"profile,omitempty"`
	CheckIns  []checkInDocument `json:"checkIns" yaml:"checkIns"`
	Onboarded bool              `json:"onboarded" yaml:"onboarded"`
	Reminder  *reminderDocument `json:"reminder,omitempty" yaml:"reminder,omitempty"`
}

type profileDocument struct {
	Name        string `json:"name" yaml:"name"`
	Goal        string `json:"goal" yaml:"goal"`
	DaysPerWeek int    `json:"daysPerWeek" yaml:"daysPerWeek"`
	Experience  string `json:"experience" yaml:"experience"`
}

type checkInDocument struct {
	ID                string  `json:"id" yaml:"id"`
	Date              string  `json:"date" yaml:"date"`
	PlannedToTrain    bool    `json:"plannedToTrain" yaml:"plannedToTrain"`
	CompletedTraining bool    `json:"completedTraining" yaml:"completedTraining"`
	Note              *string `json:"note,omitempty" yaml:"note,omitempty"`
}

type reminderDocument struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
	Hour    int  `json:"hour" yaml:"hour"`
	Minute  int  `json:"minute" yaml:"minute"`
}

func toDocument(s *domain.Snapshot) document {
	doc := document{
		CheckIns:  make([]checkInDocument, 0, len(s.CheckIns)),
		Onboarded: s.Onboarded,
		Reminder: &reminderDocument{
			Enabled: s.Reminder.Enabled,
			Hour:    s.Reminder.Hour,
			Minute:  s.Reminder.Minute,
		},
	}
	if s.Profile != nil {
		doc.Profile = &profileDocument{
			Name:        s.Profile.Name,
			Goal:        s.Profile.Goal,
			DaysPerWeek: s.Profile.DaysPerWeek,
			Experience:  string(s.Profile.Experience),
		}
	}
	for _, c := range s.CheckIns {
		if c == nil {
			continue
		}
		doc.CheckIns = append(doc.CheckIns, checkInDocument{
			ID:                c.ID().String(),
			Date:              c.Date().Format(time.RFC3339Nano),
			PlannedToTrain:    c.PlannedToTrain(),
			CompletedTraining: c.CompletedTraining(),
			Note:              c.Note(),
		})
	}
	return doc
}

func (d document) toSnapshot() (*domain.Snapshot, error) {
	snapshot := domain.EmptySnapshot()
	snapshot.Onboarded = d.Onboarded

	if d.Profile != nil {
		snapshot.Profile = &domain.Profile{
			Name:        d.Profile.Name,
			Goal:        d.Profile.Goal,
			DaysPerWeek: d.Profile.DaysPerWeek,
			Experience:  domain.Experience(d.Profile.Experience),
		}
	}
	if d.Reminder != nil {
		snapshot.Reminder = domain.ReminderSettings{
			Enabled: d.Reminder.Enabled,
			Hour:    d.Reminder.Hour,
			Minute:  d.Reminder.Minute,
		}
	}

	for i, c := range d.CheckIns {
		id, err := uuid.Parse(c.ID)
		if err != nil {
			return nil, fmt.Errorf("check-in %d: invalid id %q: %w", i, c.ID, err)
		}
		date, err := parseDate(c.Date)
		if err != nil {
			return nil, fmt.Errorf("check-in %d: invalid date %q: %w", i, c.Date, err)
		}
		snapshot.CheckIns = append(snapshot.CheckIns,
			domain.RehydrateCheckIn(id, date, c.PlannedToTrain, c.CompletedTraining, c.Note))
	}

	return snapshot, nil
}

// parseDate accepts an RFC 3339 timestamp or a bare local calendar date.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.Local(), nil
	}
	return time.ParseInLocation(time.DateOnly, value, time.Local)
}

// Encode serializes a snapshot in the given format.
func Encode(format Format, s *domain.Snapshot) ([]byte, error) {
	doc := toDocument(s)
	switch format {
	case FormatJSON:
		return json.MarshalIndent(doc, "", "  ")
	case FormatYAML:
		return yaml.Marshal(doc)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// Decode parses a snapshot in the given format.
func Decode(format Format, data []byte) (*domain.Snapshot, error) {
	var doc document
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &doc)
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s document: %w", format, err)
	}
	return doc.toSnapshot()
}
