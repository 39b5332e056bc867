package workclock

import (
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	cases := []struct {
		input string
		want  TimeOfDay
		ok    bool
	}{
		{"09:00", TimeOfDay(9 * 60), true},
		{"00:00", TimeOfDay(0), true},
		{"23:59", TimeOfDay(23*60 + 59), true},
		{"24:00", 0, false},
		{"9:00am", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		got, err := Parse(c.input)
		if c.ok && (err != nil || got != c.want) {
			t.Errorf("Parse(%q) = %v, %v; want %v", c.input, got, err, c.want)
		}
		if !c.ok && err == nil {
			t.Errorf("Parse(%q) succeeded, want error", c.input)
		}
	}
}

func TestStringRoundTrip(t *testing.T) {
	for _, s := range []string{"00:05", "09:00", "17:30", "23:59"} {
		tod, err := Parse(s)
		if err != nil {
			t.Fatalf("Parse(%q): %v", s, err)
		}
		if tod.String() != s {
			t.Errorf("Parse(%q).String() = %q", s, tod.String())
		}
	}
}

func TestComparisons(t *testing.T) {
	start, _ := Parse("09:00")
	onTime, _ := Parse("09:00")
	late, _ := Parse("09:01")

	if onTime.After(start) {
		t.Error("09:00 must not be after 09:00")
	}
	if !late.After(start) {
		t.Error("09:01 must be after 09:00")
	}
	if late.Sub(start) != 1 {
		t.Errorf("Sub = %d, want 1", late.Sub(start))
	}
}

func TestOnAnchorsToDay(t *testing.T) {
	loc, err := time.LoadLocation("Africa/Cairo")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	day := time.Date(2025, 3, 10, 15, 22, 0, 0, loc)
	start, _ := Parse("09:00")

	anchored := start.On(day, loc)
	if anchored.Hour() != 9 || anchored.Minute() != 0 || anchored.Day() != 10 {
		t.Errorf("On() = %v", anchored)
	}
	if FromTime(anchored) != start {
		t.Errorf("FromTime(anchored) = %v, want %v", FromTime(anchored), start)
	}
}

func TestDateOf(t *testing.T) {
	loc, err := time.LoadLocation("Africa/Cairo")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	// 23:30 UTC is already the next day in Cairo (UTC+2).
	utc := time.Date(2025, 1, 15, 23, 30, 0, 0, time.UTC)
	if got := DateOf(utc, loc); got != "2025-01-16" {
		t.Errorf("DateOf = %q, want 2025-01-16", got)
	}
}
