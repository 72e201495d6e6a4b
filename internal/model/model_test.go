package model

import (
	"encoding/json"
	"testing"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in   string
		want Clock
		err  bool
	}{
		{"10:00", NewClock(10, 0, 0), false},
		{"23:59:59", NewClock(23, 59, 59), false},
		{"00:00", 0, false},
		{"24:00", 0, true},
		{"10", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseClock(tt.in)
			if tt.err {
				if err == nil {
					t.Fatalf("expected error for %q", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse %q: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClockString(t *testing.T) {
	if s := NewClock(9, 5, 0).String(); s != "09:05" {
		t.Errorf("got %s", s)
	}
	if s := NewClock(9, 5, 7).String(); s != "09:05:07" {
		t.Errorf("got %s", s)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-01")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d.String() != "2024-01-01" {
		t.Errorf("got %s", d)
	}
	if _, err := ParseDate("2024-13-01"); err == nil {
		t.Error("expected error for bad month")
	}
	if _, err := ParseDate("01/01/2024"); err == nil {
		t.Error("expected error for wrong layout")
	}
}

func TestOverlaps(t *testing.T) {
	a := &Appointment{StartTime: NewClock(10, 0, 0), EndTime: NewClock(11, 0, 0)}

	tests := []struct {
		name       string
		start, end Clock
		want       bool
	}{
		{"same", NewClock(10, 0, 0), NewClock(11, 0, 0), true},
		{"partial", NewClock(10, 30, 0), NewClock(11, 30, 0), true},
		{"inside", NewClock(10, 15, 0), NewClock(10, 45, 0), true},
		{"touching after", NewClock(11, 0, 0), NewClock(12, 0, 0), true},
		{"touching before", NewClock(9, 0, 0), NewClock(10, 0, 0), true},
		{"before", NewClock(8, 0, 0), NewClock(9, 59, 0), false},
		{"after", NewClock(11, 1, 0), NewClock(12, 0, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Overlaps(tt.start, tt.end); got != tt.want {
				t.Errorf("Overlaps(%s, %s) = %v, want %v", tt.start, tt.end, got, tt.want)
			}
		})
	}
}

func TestSummaryJSON(t *testing.T) {
	d, _ := ParseDate("2024-01-01")
	a := &Appointment{
		ID:        "a1",
		Date:      d,
		StartTime: NewClock(10, 0, 0),
		EndTime:   NewClock(11, 0, 0),
		Scheduled: true,
		User:      &User{Name: "Ann", Email: "ann@test.com", PasswordHash: "secret"},
	}
	b, err := json.Marshal(Summarize(a))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"id":"a1","date":"2024-01-01","startTime":"10:00","endTime":"11:00","scheduled":true,"user":{"name":"Ann","email":"ann@test.com"}}`
	if string(b) != want {
		t.Errorf("got %s", b)
	}

	free := Summarize(&Appointment{ID: "a2", Date: d})
	if free.User != nil {
		t.Error("expected nil owner for unscheduled slot")
	}
}

func TestUserHidesPassword(t *testing.T) {
	b, _ := json.Marshal(User{Email: "x@test.com", PasswordHash: "hash"})
	var m map[string]any
	json.Unmarshal(b, &m)
	if _, ok := m["PasswordHash"]; ok {
		t.Error("password hash serialized")
	}
}
