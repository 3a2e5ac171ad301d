package domain

import (
	"errors"
	"testing"
	"time"
)

func TestPrayerSchedule_Next(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("WIB", 7*3600)
	day := time.Date(2026, 4, 2, 0, 0, 0, 0, loc)
	at := func(clock string) time.Time {
		tm, err := ParseClock(day, clock, loc)
		if err != nil {
			t.Fatalf("ParseClock(%q): %v", clock, err)
		}
		return tm
	}

	s := &PrayerSchedule{Date: day, City: "Jakarta", Times: []PrayerTime{
		{PrayerImsak, at("04:25")},
		{PrayerFajr, at("04:35")},
		{PrayerSunrise, at("05:50")},
		{PrayerDhuhr, at("11:55 (WIB)")},
		{PrayerAsr, at("15:10")},
		{PrayerMaghrib, at("17:58")},
		{PrayerIsha, at("19:07")},
	}}

	next, ok := s.Next(at("04:30"))
	if !ok || next.Name != PrayerFajr {
		t.Fatalf("expected Subuh, got %+v", next)
	}

	next, ok = s.Next(at("05:00"))
	if !ok || next.Name != PrayerDhuhr {
		t.Fatalf("sunrise must be skipped, got %+v", next)
	}

	if _, ok := s.Next(at("20:00")); ok {
		t.Fatal("expected no prayer after Isya")
	}
}

func TestParseClock_Malformed(t *testing.T) {
	t.Parallel()

	if _, err := ParseClock(time.Now(), "25:99", time.UTC); !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("expected ErrMalformedPayload, got %v", err)
	}
}
