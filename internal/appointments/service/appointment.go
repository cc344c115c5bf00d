package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	appointmentserrors "vetsched/internal/appointments/errors"
	"vetsched/internal/appointments/registry"
	"vetsched/internal/appointments/repository"
	"vetsched/internal/appointments/validator"
	"vetsched/pkg/config"
	apperrors "vetsched/pkg/errors"
	"vetsched/pkg/model"
	"vetsched/pkg/sanitizer"
)

const (
	EventAppointmentCreated   = "appointment.created"
	EventAppointmentUpdated   = "appointment.updated"
	EventAppointmentCancelled = "appointment.cancelled"
)

// EventPublisher emits appointment lifecycle events. Publishing is
// best-effort; the engine logs failures and moves on.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, appt *model.Appointment) error
}

type AppointmentService interface {
	Create(ctx context.Context, appt *model.Appointment, actor, bearer string) (*model.EnrichedAppointment, error)
	GetByID(ctx context.Context, id, bearer string) (*model.EnrichedAppointment, error)
	Update(ctx context.Context, id string, patch *model.AppointmentUpdate, actor, bearer string) (*model.EnrichedAppointment, error)
	Cancel(ctx context.Context, id, actor, bearer string) (*model.EnrichedAppointment, error)
	ListByPatient(ctx context.Context, patientID int64, bearer string) ([]*model.EnrichedAppointment, error)
	ListByVeterinarian(ctx context.Context, veterinarianID int64, bearer string) ([]*model.EnrichedAppointment, error)
	ListByDate(ctx context.Context, date, bearer string) ([]*model.EnrichedAppointment, error)
	ListByDateRange(ctx context.Context, from, to, bearer string) ([]*model.EnrichedAppointment, error)
	ListToday(ctx context.Context, bearer string) ([]*model.EnrichedAppointment, error)
	ListUpcoming(ctx context.Context, bearer string) ([]*model.EnrichedAppointment, error)
}

type appointmentService struct {
	repo      repository.AppointmentRepository
	lockRepo  repository.SlotLockRepository
	gateway   registry.ValidationGateway
	enricher  registry.Enricher
	validator *validator.AppointmentValidator
	publisher EventPublisher
	cfg       *config.Config
	now       func() time.Time
}

func NewAppointmentService(
	repo repository.AppointmentRepository,
	lockRepo repository.SlotLockRepository,
	gateway registry.ValidationGateway,
	enricher registry.Enricher,
	apptValidator *validator.AppointmentValidator,
	publisher EventPublisher,
	cfg *config.Config,
) AppointmentService {
	return &appointmentService{
		repo:      repo,
		lockRepo:  lockRepo,
		gateway:   gateway,
		enricher:  enricher,
		validator: apptValidator,
		publisher: publisher,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *appointmentService) Create(ctx context.Context, appt *model.Appointment, actor, bearer string) (*model.EnrichedAppointment, error) {
	s.applyDefaults(appt)
	s.sanitize(appt)
	if err := s.validate(appt); err != nil {
		return nil, err
	}

	if err := s.validateReferences(ctx, appt.PatientID, appt.VeterinarianID, bearer); err != nil {
		return nil, err
	}

	if err := s.rejectPast(appt); err != nil {
		return nil, err
	}

	appt.Status = model.StatusScheduled
	appt.CreatedBy = actor
	appt.UpdatedBy = actor

	lockID, err := s.acquireSlotLock(ctx, appt.VeterinarianID, appt.Date, appt.StartTime)
	if err != nil {
		return nil, err
	}
	defer func() {
		if releaseErr := s.releaseSlotLock(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release slot lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.rejectConflicts(sessCtx, appt, ""); err != nil {
			return err
		}
		if err := s.repo.Create(sessCtx, appt); err != nil {
			return apperrors.Internal("Failed to create appointment", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create appointment", "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Appointment created successfully",
		"id", appt.ID,
		"veterinarian_id", appt.VeterinarianID,
		"patient_id", appt.PatientID,
		"date", appt.Date,
		"start_time", appt.StartTime,
	)
	s.publish(ctx, EventAppointmentCreated, appt)

	return s.enricher.EnrichOne(ctx, appt, bearer), nil
}

func (s *appointmentService) GetByID(ctx context.Context, id, bearer string) (*model.EnrichedAppointment, error) {
	appt, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.enricher.EnrichOne(ctx, appt, bearer), nil
}

func (s *appointmentService) Update(ctx context.Context, id string, patch *model.AppointmentUpdate, actor, bearer string) (*model.EnrichedAppointment, error) {
	existing, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if existing.IsTerminal() {
		return nil, apperrors.InvalidState(
			fmt.Sprintf("cannot modify a %s appointment", existing.Status))
	}

	if err := s.validator.ValidateUpdate(patch); err != nil {
		s.cfg.Log.Warn("Appointment update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := mergePatch(existing, patch)
	s.sanitize(merged)
	if err := s.validate(merged); err != nil {
		return nil, err
	}

	// A changed veterinarian is validated exactly like on create; a missing
	// or unreachable registry aborts the update.
	if patch.VeterinarianID != nil && *patch.VeterinarianID != existing.VeterinarianID {
		if err := s.gateway.VeterinarianExists(ctx, merged.VeterinarianID, bearer); err != nil {
			return nil, err
		}
	}

	merged.UpdatedBy = actor

	if patch.TouchesSchedule() {
		lockID, err := s.acquireSlotLock(ctx, merged.VeterinarianID, merged.Date, merged.StartTime)
		if err != nil {
			return nil, err
		}
		defer func() {
			if releaseErr := s.releaseSlotLock(ctx, lockID); releaseErr != nil {
				s.cfg.Log.Warn("Failed to release slot lock", "lock_id", lockID, "error", releaseErr)
			}
		}()

		err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
			if err := s.rejectConflicts(sessCtx, merged, id); err != nil {
				return err
			}
			if _, err := s.repo.Update(sessCtx, id, merged); err != nil {
				return apperrors.Internal("Failed to update appointment", err)
			}
			return nil
		})
		if err != nil {
			s.cfg.Log.Error("Failed to update appointment", "id", id, "error", err)
			return nil, err
		}
	} else {
		if _, err := s.repo.Update(ctx, id, merged); err != nil {
			s.cfg.Log.Error("Failed to update appointment", "id", id, "error", err)
			return nil, apperrors.Internal("Failed to update appointment", err)
		}
	}

	s.cfg.Log.Info("Appointment updated successfully", "id", id)
	s.publish(ctx, EventAppointmentUpdated, merged)

	return s.enricher.EnrichOne(ctx, merged, bearer), nil
}

func (s *appointmentService) Cancel(ctx context.Context, id, actor, bearer string) (*model.EnrichedAppointment, error) {
	appt, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	switch appt.Status {
	case model.StatusCompleted:
		return nil, apperrors.InvalidState("cannot cancel a completed appointment")
	case model.StatusCancelled:
		return nil, apperrors.InvalidState("appointment is already cancelled")
	}

	appt.Status = model.StatusCancelled
	appt.UpdatedBy = actor

	if _, err := s.repo.Update(ctx, id, appt); err != nil {
		s.cfg.Log.Error("Failed to cancel appointment", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to cancel appointment", err)
	}

	s.cfg.Log.Info("Appointment cancelled successfully", "id", id)
	s.publish(ctx, EventAppointmentCancelled, appt)

	return s.enricher.EnrichOne(ctx, appt, bearer), nil
}

func (s *appointmentService) ListByPatient(ctx context.Context, patientID int64, bearer string) ([]*model.EnrichedAppointment, error) {
	if patientID <= 0 {
		return nil, apperrors.InvalidInput("Patient ID must be positive")
	}
	appts, err := s.repo.FindByPatient(ctx, patientID)
	if err != nil {
		return nil, apperrors.Internal("Failed to list appointments by patient", err)
	}
	return s.enricher.EnrichAll(ctx, appts, bearer), nil
}

func (s *appointmentService) ListByVeterinarian(ctx context.Context, veterinarianID int64, bearer string) ([]*model.EnrichedAppointment, error) {
	if veterinarianID <= 0 {
		return nil, apperrors.InvalidInput("Veterinarian ID must be positive")
	}
	appts, err := s.repo.FindByVeterinarian(ctx, veterinarianID)
	if err != nil {
		return nil, apperrors.Internal("Failed to list appointments by veterinarian", err)
	}
	return s.enricher.EnrichAll(ctx, appts, bearer), nil
}

func (s *appointmentService) ListByDate(ctx context.Context, date, bearer string) ([]*model.EnrichedAppointment, error) {
	if _, err := time.Parse(model.DateLayout, date); err != nil {
		return nil, apperrors.InvalidInput("Date must be in YYYY-MM-DD format")
	}
	appts, err := s.repo.FindByDate(ctx, date)
	if err != nil {
		return nil, apperrors.Internal("Failed to list appointments by date", err)
	}
	return s.enricher.EnrichAll(ctx, appts, bearer), nil
}

func (s *appointmentService) ListByDateRange(ctx context.Context, from, to, bearer string) ([]*model.EnrichedAppointment, error) {
	if _, err := time.Parse(model.DateLayout, from); err != nil {
		return nil, apperrors.InvalidInput("From date must be in YYYY-MM-DD format")
	}
	if _, err := time.Parse(model.DateLayout, to); err != nil {
		return nil, apperrors.InvalidInput("To date must be in YYYY-MM-DD format")
	}
	if to < from {
		return nil, apperrors.InvalidInput("To date must not be before from date")
	}
	appts, err := s.repo.FindByDateRange(ctx, from, to)
	if err != nil {
		return nil, apperrors.Internal("Failed to list appointments by date range", err)
	}
	return s.enricher.EnrichAll(ctx, appts, bearer), nil
}

func (s *appointmentService) ListToday(ctx context.Context, bearer string) ([]*model.EnrichedAppointment, error) {
	today := s.now().Format(model.DateLayout)
	appts, err := s.repo.FindByDate(ctx, today)
	if err != nil {
		return nil, apperrors.Internal("Failed to list today's appointments", err)
	}
	return s.enricher.EnrichAll(ctx, appts, bearer), nil
}

func (s *appointmentService) ListUpcoming(ctx context.Context, bearer string) ([]*model.EnrichedAppointment, error) {
	now := s.now()
	appts, err := s.repo.FindUpcoming(ctx, now.Format(model.DateLayout), now.Format(model.TimeLayout))
	if err != nil {
		return nil, apperrors.Internal("Failed to list upcoming appointments", err)
	}
	return s.enricher.EnrichAll(ctx, appts, bearer), nil
}

// --- Helpers ---

func (s *appointmentService) load(ctx context.Context, id string) (*model.Appointment, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Appointment ID cannot be empty")
	}
	appt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Appointment", id)
		}
		if errors.Is(err, appointmentserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid appointment ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve appointment", err)
	}
	return appt, nil
}

func (s *appointmentService) applyDefaults(appt *model.Appointment) {
	if appt.DurationMinutes == 0 {
		appt.DurationMinutes = s.cfg.DefaultDurationMinutes
	}
	if appt.Status == "" {
		appt.Status = model.StatusScheduled
	}
}

func (s *appointmentService) sanitize(appt *model.Appointment) {
	appt.Reason = sanitizer.NormalizeReason(appt.Reason)
	appt.Notes = sanitizer.NormalizeNotes(appt.Notes)
}

func (s *appointmentService) validate(appt *model.Appointment) error {
	if err := s.validator.Validate(appt); err != nil {
		s.cfg.Log.Warn("Appointment validation failed", "error", err)
		return apperrors.Validation("Appointment validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

// validateReferences checks both remote entities concurrently. Both checks
// must finish before the engine proceeds; either failure aborts the booking.
func (s *appointmentService) validateReferences(ctx context.Context, patientID, veterinarianID int64, bearer string) error {
	var patientErr, vetErr error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		patientErr = s.gateway.PatientExists(ctx, patientID, bearer)
	}()

	go func() {
		defer wg.Done()
		vetErr = s.gateway.VeterinarianExists(ctx, veterinarianID, bearer)
	}()

	wg.Wait()

	if patientErr != nil {
		return patientErr
	}
	return vetErr
}

func (s *appointmentService) rejectPast(appt *model.Appointment) error {
	start, err := appt.StartDateTime()
	if err != nil {
		return apperrors.InvalidInput("Invalid appointment date or time")
	}
	if start.Before(s.now()) {
		return apperrors.PastDateTime(appt.Date, appt.StartTime)
	}
	return nil
}

// rejectConflicts is the authoritative availability check. It must run inside
// the same transaction as the write that follows it.
func (s *appointmentService) rejectConflicts(ctx context.Context, appt *model.Appointment, excludeID string) error {
	conflicts, err := s.repo.FindConflicting(ctx, appt.VeterinarianID, appt.Date, appt.StartMinutes(), appt.EndMinutes(), excludeID)
	if err != nil {
		return apperrors.Internal("Failed to check existing appointments", err)
	}
	if len(conflicts) == 0 {
		return nil
	}

	windows := make([]map[string]any, 0, len(conflicts))
	for _, c := range conflicts {
		windows = append(windows, map[string]any{
			"date":       c.Date,
			"start_time": c.StartTime,
			"end_time":   c.EndTime(),
		})
	}

	return apperrors.Conflict("Veterinarian is not available at the requested time").
		WithDetails(map[string]any{"conflicts": windows})
}

func mergePatch(existing *model.Appointment, patch *model.AppointmentUpdate) *model.Appointment {
	merged := *existing

	if patch.VeterinarianID != nil {
		merged.VeterinarianID = *patch.VeterinarianID
	}
	if patch.Date != nil {
		merged.Date = *patch.Date
	}
	if patch.StartTime != nil {
		merged.StartTime = *patch.StartTime
	}
	if patch.DurationMinutes != nil {
		merged.DurationMinutes = *patch.DurationMinutes
	}
	if patch.Reason != nil {
		merged.Reason = *patch.Reason
	}
	if patch.Notes != nil {
		merged.Notes = *patch.Notes
	}
	if patch.Status != nil {
		merged.Status = *patch.Status
	}

	return &merged
}

func (s *appointmentService) acquireSlotLock(ctx context.Context, veterinarianID int64, date, startTime string) (string, error) {
	lockID := fmt.Sprintf("slot_lock_%d_%s_%s", veterinarianID, date, startTime)

	lock := &model.SlotLock{
		ID:        lockID,
		ExpiresAt: time.Now().Add(10 * time.Second),
	}

	if _, err := s.lockRepo.Create(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Conflict("This time slot is currently being booked by another request. Please try again.")
		}
		return "", apperrors.Internal("Failed to acquire slot lock", err)
	}

	return lockID, nil
}

func (s *appointmentService) releaseSlotLock(ctx context.Context, lockID string) error {
	return s.lockRepo.Delete(ctx, lockID)
}

func (s *appointmentService) publish(ctx context.Context, eventType string, appt *model.Appointment) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, eventType, appt); err != nil {
		s.cfg.Log.Warn("Failed to publish appointment event",
			"event_type", eventType,
			"appointment_id", appt.ID,
			"error", err,
		)
	}
}
