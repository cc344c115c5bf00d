package validator

import (
	"io"
	"strings"
	"testing"

	"vetsched/pkg/logger"
	"vetsched/pkg/model"
)

func newTestValidator() *AppointmentValidator {
	log := logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT, Output: io.Discard})
	return NewAppointmentValidator(log)
}

func validAppointment() *model.Appointment {
	return &model.Appointment{
		PatientID:       7,
		VeterinarianID:  3,
		Date:            "2025-03-11",
		StartTime:       "10:00",
		DurationMinutes: 30,
		Reason:          "Annual checkup",
		Status:          model.StatusScheduled,
	}
}

func TestValidate_ValidAppointment(t *testing.T) {
	v := newTestValidator()

	if err := v.Validate(validAppointment()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_FieldErrors(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name      string
		mutate    func(*model.Appointment)
		wantField string
	}{
		{"missing patient id", func(a *model.Appointment) { a.PatientID = 0 }, "PatientID"},
		{"negative veterinarian id", func(a *model.Appointment) { a.VeterinarianID = -1 }, "VeterinarianID"},
		{"missing date", func(a *model.Appointment) { a.Date = "" }, "Date"},
		{"wrong date format", func(a *model.Appointment) { a.Date = "11-03-2025" }, "Date"},
		{"impossible date", func(a *model.Appointment) { a.Date = "2025-02-30" }, "Date"},
		{"wrong time format", func(a *model.Appointment) { a.StartTime = "10am" }, "StartTime"},
		{"hour out of range", func(a *model.Appointment) { a.StartTime = "25:00" }, "StartTime"},
		{"duration too short", func(a *model.Appointment) { a.DurationMinutes = 10 }, "DurationMinutes"},
		{"duration too long", func(a *model.Appointment) { a.DurationMinutes = 241 }, "DurationMinutes"},
		{"reason too short", func(a *model.Appointment) { a.Reason = "Hi" }, "Reason"},
		{"reason too long", func(a *model.Appointment) { a.Reason = strings.Repeat("a", 501) }, "Reason"},
		{"notes too long", func(a *model.Appointment) { a.Notes = strings.Repeat("a", 1001) }, "Notes"},
		{"unknown status", func(a *model.Appointment) { a.Status = "PENDING" }, "Status"},
		{"malformed id", func(a *model.Appointment) { a.ID = "not-an-object-id" }, "ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appt := validAppointment()
			tt.mutate(appt)

			err := v.Validate(appt)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}

			validationErrs, ok := err.(ValidationErrors)
			if !ok {
				t.Fatalf("expected ValidationErrors, got %T: %v", err, err)
			}
			found := false
			for _, ve := range validationErrs {
				if ve.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("expected an error on field %s, got %v", tt.wantField, validationErrs)
			}
		})
	}
}

func TestValidate_BoundaryValues(t *testing.T) {
	v := newTestValidator()

	appt := validAppointment()
	appt.DurationMinutes = 15
	if err := v.Validate(appt); err != nil {
		t.Errorf("expected 15 minute duration to pass: %v", err)
	}

	appt = validAppointment()
	appt.DurationMinutes = 240
	if err := v.Validate(appt); err != nil {
		t.Errorf("expected 240 minute duration to pass: %v", err)
	}

	appt = validAppointment()
	appt.StartTime = "00:00"
	if err := v.Validate(appt); err != nil {
		t.Errorf("expected midnight start to pass: %v", err)
	}

	appt = validAppointment()
	appt.StartTime = "23:59"
	if err := v.Validate(appt); err != nil {
		t.Errorf("expected 23:59 start to pass: %v", err)
	}
}

func TestValidateUpdate(t *testing.T) {
	v := newTestValidator()

	if err := v.ValidateUpdate(&model.AppointmentUpdate{}); err != nil {
		t.Errorf("expected empty patch to pass: %v", err)
	}

	reason := "Follow-up visit"
	if err := v.ValidateUpdate(&model.AppointmentUpdate{Reason: &reason}); err != nil {
		t.Errorf("expected valid patch to pass: %v", err)
	}

	duration := 500
	if err := v.ValidateUpdate(&model.AppointmentUpdate{DurationMinutes: &duration}); err == nil {
		t.Error("expected out-of-range duration patch to fail")
	}

	badTime := "25:00"
	if err := v.ValidateUpdate(&model.AppointmentUpdate{StartTime: &badTime}); err == nil {
		t.Error("expected malformed start time patch to fail")
	}

	badStatus := "PENDING"
	if err := v.ValidateUpdate(&model.AppointmentUpdate{Status: &badStatus}); err == nil {
		t.Error("expected unknown status patch to fail")
	}
}
