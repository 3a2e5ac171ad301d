package domain

import (
	"fmt"
	"strings"
	"time"
)

// Prayer names in schedule order.
const (
	PrayerImsak   = "Imsak"
	PrayerFajr    = "Subuh"
	PrayerSunrise = "Terbit"
	PrayerDhuhr   = "Dzuhur"
	PrayerAsr     = "Ashar"
	PrayerMaghrib = "Maghrib"
	PrayerIsha    = "Isya"
)

// PrayerTime is one named time on a schedule.
type PrayerTime struct {
	Name string    `json:"name"`
	At   time.Time `json:"at"`
}

// PrayerSchedule is the set of prayer times for one day and city.
type PrayerSchedule struct {
	Date  time.Time    `json:"date"`
	City  string       `json:"city"`
	Times []PrayerTime `json:"times"`
}

// obligatory lists the five daily prayers used for "next prayer".
var obligatory = map[string]bool{
	PrayerFajr:    true,
	PrayerDhuhr:   true,
	PrayerAsr:     true,
	PrayerMaghrib: true,
	PrayerIsha:    true,
}

// Next returns the first obligatory prayer strictly after now, or false when
// the day's last prayer has passed.
func (s *PrayerSchedule) Next(now time.Time) (PrayerTime, bool) {
	for _, p := range s.Times {
		if obligatory[p.Name] && p.At.After(now) {
			return p, true
		}
	}
	return PrayerTime{}, false
}

// ParseClock turns "04:35" or "04:35 (WIB)" on day into a time in loc.
func ParseClock(day time.Time, clock string, loc *time.Location) (time.Time, error) {
	clock = strings.TrimSpace(clock)
	if i := strings.IndexByte(clock, ' '); i > 0 {
		clock = clock[:i]
	}

	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: prayer time %q", ErrMalformedPayload, clock)
	}

	d := day.In(loc)
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
}
