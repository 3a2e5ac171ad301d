package domain

import (
	"time"
)

// ActivityStatus is derived from an activity's dates, never stored.
type ActivityStatus string

const (
	ActivityUpcoming ActivityStatus = "upcoming"
	ActivityOngoing  ActivityStatus = "ongoing"
	ActivityFinished ActivityStatus = "finished"
)

// Label returns the Indonesian label shown on the site.
func (s ActivityStatus) Label() string {
	switch s {
	case ActivityUpcoming:
		return "Akan Datang"
	case ActivityOngoing:
		return "Berlangsung"
	default:
		return "Selesai"
	}
}

// Activity is a mosque event ("kegiatan").
type Activity struct {
	ID          string
	Title       string
	Description string
	Location    string
	StartsAt    time.Time
	EndsAt      *time.Time
	ImagePath   string
}

// StatusAt derives the status from calendar days in loc. The start day
// counts as ongoing; without an end date the activity lasts one day.
func (a *Activity) StatusAt(now time.Time, loc *time.Location) ActivityStatus {
	today := dayOf(now, loc)
	start := dayOf(a.StartsAt, loc)

	end := start
	if a.EndsAt != nil && !a.EndsAt.IsZero() {
		end = dayOf(*a.EndsAt, loc)
	}

	switch {
	case today.Before(start):
		return ActivityUpcoming
	case today.After(end):
		return ActivityFinished
	default:
		return ActivityOngoing
	}
}

// ActivityInput is the payload for creating or updating an activity.
type ActivityInput struct {
	Title       string
	Description string
	Location    string
	StartsAt    time.Time
	EndsAt      *time.Time
	Image       *Upload
}

// Validate checks the input.
func (in *ActivityInput) Validate() error {
	if err := ValidateTitle(in.Title); err != nil {
		return &ValidationError{Field: "nama_kegiatan", Message: err.Error()}
	}
	if in.StartsAt.IsZero() {
		return &ValidationError{Field: "tanggal_mulai", Message: "start date is required"}
	}
	if in.EndsAt != nil && in.EndsAt.Before(in.StartsAt) {
		return &ValidationError{Field: "tanggal_selesai", Message: "end date is before start date"}
	}
	if in.Image != nil {
		return in.Image.Validate()
	}
	return nil
}

func dayOf(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
