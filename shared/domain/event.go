package domain

import (
	"fmt"
	"time"
)

const (
	LabelBirthday    Label = "birthday"
	LabelAnniversary Label = "anniversary"
)

// EventDate is a labelled date owned by exactly one identity.
type EventDate struct {
	Id     EventDateId `json:"id"`
	UserId UserId      `json:"user_id"`
	Label  Label       `json:"label"`
	Date   time.Time   `json:"date"`
}

type EventDateCreationData struct {
	Label Label
	Date  time.Time
}

type EventType string

const (
	EventBirthday    EventType = "birthday"
	EventAnniversary EventType = "anniversary"
	EventOthers      EventType = "others"
)

func (e EventType) IsValid() bool {
	switch e {
	case EventBirthday, EventAnniversary, EventOthers:
		return true
	default:
		return false
	}
}

func ParseEventType(s string) (EventType, error) {
	e := EventType(s)
	if !e.IsValid() {
		return "", fmt.Errorf("invalid event type %q, enter a valid event type (birthday, anniversary, others)", s)
	}
	return e, nil
}

// SameDay reports whether t falls on the same month and day as day, ignoring the year.
func SameDay(t, day time.Time) bool {
	return t.Month() == day.Month() && t.Day() == day.Day()
}
