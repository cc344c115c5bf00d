package model

import (
	"testing"
	"time"
)

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd int
		want                       bool
	}{
		{"identical windows", 600, 630, 600, 630, true},
		{"contained window", 600, 660, 615, 630, true},
		{"partial overlap at start", 600, 630, 615, 645, true},
		{"partial overlap at end", 615, 645, 600, 630, true},
		{"touching end to start", 600, 630, 630, 660, false},
		{"touching start to end", 630, 660, 600, 630, false},
		{"disjoint", 600, 630, 700, 730, false},
		{"one minute overlap", 600, 631, 630, 660, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd); got != tt.want {
				t.Errorf("Overlaps(%d, %d, %d, %d) = %v, want %v",
					tt.aStart, tt.aEnd, tt.bStart, tt.bEnd, got, tt.want)
			}
		})
	}
}

func TestParseTimeOfDay(t *testing.T) {
	minutes, err := ParseTimeOfDay("10:30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if minutes != 630 {
		t.Errorf("expected 630 minutes, got %d", minutes)
	}

	for _, invalid := range []string{"", "25:00", "10:61", "1030", "abc"} {
		if _, err := ParseTimeOfDay(invalid); err == nil {
			t.Errorf("expected error for %q", invalid)
		}
	}
}

func TestFormatTimeOfDay(t *testing.T) {
	if got := FormatTimeOfDay(630); got != "10:30" {
		t.Errorf("expected 10:30, got %s", got)
	}
	if got := FormatTimeOfDay(0); got != "00:00" {
		t.Errorf("expected 00:00, got %s", got)
	}
	// End times past midnight clamp rather than wrap.
	if got := FormatTimeOfDay(24*60 + 15); got != "23:59" {
		t.Errorf("expected 23:59, got %s", got)
	}
}

func TestEndTime(t *testing.T) {
	appt := &Appointment{StartTime: "10:00", DurationMinutes: 30}
	if got := appt.EndTime(); got != "10:30" {
		t.Errorf("expected end time 10:30, got %s", got)
	}
	if got := appt.EndMinutes(); got != 630 {
		t.Errorf("expected 630 end minutes, got %d", got)
	}
}

func TestIsPastAndIsToday(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.Local)

	past := &Appointment{Date: "2025-03-10", StartTime: "11:59", DurationMinutes: 30}
	if !past.IsPast(now) {
		t.Error("expected 11:59 to be in the past at 12:00")
	}
	if !past.IsToday(now) {
		t.Error("expected 2025-03-10 to be today")
	}

	future := &Appointment{Date: "2025-03-10", StartTime: "12:01", DurationMinutes: 30}
	if future.IsPast(now) {
		t.Error("expected 12:01 to be in the future at 12:00")
	}

	tomorrow := &Appointment{Date: "2025-03-11", StartTime: "00:00", DurationMinutes: 30}
	if tomorrow.IsPast(now) {
		t.Error("expected tomorrow to be in the future")
	}
	if tomorrow.IsToday(now) {
		t.Error("expected tomorrow not to be today")
	}
}

func TestTerminalAndSlotBlocking(t *testing.T) {
	for _, status := range []string{StatusScheduled, StatusConfirmed, StatusInProgress, StatusNoShow} {
		appt := &Appointment{Status: status}
		if appt.IsTerminal() {
			t.Errorf("%s should not be terminal", status)
		}
	}
	for _, status := range []string{StatusCompleted, StatusCancelled} {
		appt := &Appointment{Status: status}
		if !appt.IsTerminal() {
			t.Errorf("%s should be terminal", status)
		}
	}

	for _, status := range []string{StatusCancelled, StatusNoShow} {
		appt := &Appointment{Status: status}
		if appt.BlocksSlot() {
			t.Errorf("%s should free the slot", status)
		}
	}
	for _, status := range []string{StatusScheduled, StatusConfirmed, StatusInProgress, StatusCompleted} {
		appt := &Appointment{Status: status}
		if !appt.BlocksSlot() {
			t.Errorf("%s should block the slot", status)
		}
	}
}

func TestTouchesSchedule(t *testing.T) {
	reason := "Updated reason"
	if (&AppointmentUpdate{Reason: &reason}).TouchesSchedule() {
		t.Error("reason-only patch should not touch the schedule")
	}

	duration := 45
	if !(&AppointmentUpdate{DurationMinutes: &duration}).TouchesSchedule() {
		t.Error("duration patch should touch the schedule")
	}

	vetID := int64(3)
	if !(&AppointmentUpdate{VeterinarianID: &vetID}).TouchesSchedule() {
		t.Error("veterinarian patch should touch the schedule")
	}
}
