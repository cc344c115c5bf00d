package model

import (
	"fmt"
	"time"
)

const (
	StatusScheduled  = "SCHEDULED"
	StatusConfirmed  = "CONFIRMED"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
	StatusCancelled  = "CANCELLED"
	StatusNoShow     = "NO_SHOW"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Appointment is a booking of a veterinarian's time for a patient. Date and
// StartTime are kept as ISO strings so that lexicographic order matches
// chronological order in store queries.
type Appointment struct {
	ID              string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	PatientID       int64     `json:"patient_id" bson:"patient_id" validate:"required,gt=0"`
	VeterinarianID  int64     `json:"veterinarian_id" bson:"veterinarian_id" validate:"required,gt=0"`
	Date            string    `json:"date" bson:"date" validate:"required,appointment_date"`
	StartTime       string    `json:"start_time" bson:"start_time" validate:"required,time_of_day"`
	DurationMinutes int       `json:"duration_minutes" bson:"duration_minutes" validate:"required,min=15,max=240"`
	Reason          string    `json:"reason" bson:"reason" validate:"required,min=5,max=500"`
	Notes           string    `json:"notes,omitempty" bson:"notes,omitempty" validate:"omitempty,max=1000"`
	Status          string    `json:"status" bson:"status" validate:"required,oneof=SCHEDULED CONFIRMED IN_PROGRESS COMPLETED CANCELLED NO_SHOW"`
	CreatedBy       string    `json:"created_by,omitempty" bson:"created_by,omitempty"`
	UpdatedBy       string    `json:"updated_by,omitempty" bson:"updated_by,omitempty"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" bson:"updated_at"`
}

// AppointmentUpdate is a merge-patch value object: only non-nil fields
// overwrite the stored appointment.
type AppointmentUpdate struct {
	VeterinarianID  *int64  `json:"veterinarian_id,omitempty" validate:"omitempty,gt=0"`
	Date            *string `json:"date,omitempty" validate:"omitempty,appointment_date"`
	StartTime       *string `json:"start_time,omitempty" validate:"omitempty,time_of_day"`
	DurationMinutes *int    `json:"duration_minutes,omitempty" validate:"omitempty,min=15,max=240"`
	Reason          *string `json:"reason,omitempty" validate:"omitempty,min=5,max=500"`
	Notes           *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
	Status          *string `json:"status,omitempty" validate:"omitempty,oneof=SCHEDULED CONFIRMED IN_PROGRESS COMPLETED CANCELLED NO_SHOW"`
}

// TouchesSchedule reports whether the patch changes any field that affects
// conflict detection.
func (u *AppointmentUpdate) TouchesSchedule() bool {
	return u.VeterinarianID != nil || u.Date != nil || u.StartTime != nil || u.DurationMinutes != nil
}

// EnrichedAppointment is the read projection returned to callers: the
// appointment plus best-effort display names fetched from the registries.
// Empty names are a normal outcome, not an error.
type EnrichedAppointment struct {
	Appointment
	EndTime          string `json:"end_time"`
	PatientName      string `json:"patient_name,omitempty"`
	VeterinarianName string `json:"veterinarian_name,omitempty"`
}

// ParseTimeOfDay converts an HH:MM string to minutes since midnight.
func ParseTimeOfDay(s string) (int, error) {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatTimeOfDay converts minutes since midnight to an HH:MM string.
// Minutes past the end of the day clamp to 23:59.
func FormatTimeOfDay(minutes int) string {
	if minutes > 23*60+59 {
		minutes = 23*60 + 59
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Overlaps reports whether two half-open [start, end) minute windows
// intersect. Touching endpoints do not conflict.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

func (a *Appointment) StartMinutes() int {
	m, _ := ParseTimeOfDay(a.StartTime)
	return m
}

func (a *Appointment) EndMinutes() int {
	return a.StartMinutes() + a.DurationMinutes
}

func (a *Appointment) EndTime() string {
	return FormatTimeOfDay(a.EndMinutes())
}

// StartDateTime combines Date and StartTime in the local time zone.
func (a *Appointment) StartDateTime() (time.Time, error) {
	return time.ParseInLocation(DateLayout+" "+TimeLayout, a.Date+" "+a.StartTime, time.Local)
}

func (a *Appointment) IsPast(now time.Time) bool {
	start, err := a.StartDateTime()
	if err != nil {
		return false
	}
	return start.Before(now)
}

func (a *Appointment) IsToday(now time.Time) bool {
	return a.Date == now.Format(DateLayout)
}

// IsTerminal reports whether the appointment rejects further mutation.
func (a *Appointment) IsTerminal() bool {
	return a.Status == StatusCompleted || a.Status == StatusCancelled
}

// BlocksSlot reports whether the appointment occupies its veterinarian's time
// window for conflict detection. Cancelled and no-show appointments free the slot.
func (a *Appointment) BlocksSlot() bool {
	return a.Status != StatusCancelled && a.Status != StatusNoShow
}

// Enriched wraps the appointment in its read projection with the derived end
// time filled in. Names are attached by the enricher.
func (a *Appointment) Enriched() *EnrichedAppointment {
	return &EnrichedAppointment{
		Appointment: *a,
		EndTime:     a.EndTime(),
	}
}
