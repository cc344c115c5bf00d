package registry

import (
	"context"
	"errors"
	"sync"

	"vetsched/pkg/client"
	apperrors "vetsched/pkg/errors"
	"vetsched/pkg/logger"
	"vetsched/pkg/model"
)

// ValidationGateway confirms that remote entities referenced by an appointment
// exist before anything is written. A clean 404 means the reference is bad; any
// other registry failure means the check could not be performed, which is a
// hard error rather than a pass.
type ValidationGateway interface {
	PatientExists(ctx context.Context, id int64, bearer string) error
	VeterinarianExists(ctx context.Context, id int64, bearer string) error
}

// Enricher decorates appointments with display names from the registries.
// Lookups are best-effort: a failed or slow registry leaves the name empty and
// never fails the caller.
type Enricher interface {
	EnrichOne(ctx context.Context, appt *model.Appointment, bearer string) *model.EnrichedAppointment
	EnrichAll(ctx context.Context, appts []*model.Appointment, bearer string) []*model.EnrichedAppointment
}

// Registry implements both faces over the patient and staff registry clients.
type Registry struct {
	patients *client.PatientClient
	staff    *client.StaffClient
	log      *logger.Logger
}

func NewRegistry(patients *client.PatientClient, staff *client.StaffClient, log *logger.Logger) *Registry {
	return &Registry{
		patients: patients,
		staff:    staff,
		log:      log,
	}
}

func (r *Registry) PatientExists(ctx context.Context, id int64, bearer string) error {
	_, err := r.patients.GetByID(ctx, id, bearer)
	return translateExistenceError(err, "patient", "patient registry", id)
}

func (r *Registry) VeterinarianExists(ctx context.Context, id int64, bearer string) error {
	_, err := r.staff.GetByID(ctx, id, bearer)
	return translateExistenceError(err, "veterinarian", "staff registry", id)
}

func translateExistenceError(err error, kind, service string, id int64) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, client.ErrRecordNotFound) {
		return apperrors.ReferenceNotFound(kind, id)
	}
	return apperrors.ValidationUnavailable(service, err)
}

// EnrichOne fetches both display names concurrently. Each lookup fails
// independently; a miss on one side still lets the other name through.
func (r *Registry) EnrichOne(ctx context.Context, appt *model.Appointment, bearer string) *model.EnrichedAppointment {
	enriched := appt.Enriched()

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		patient, err := r.patients.GetByID(ctx, appt.PatientID, bearer)
		if err != nil {
			r.log.Debug("Patient enrichment skipped",
				"appointment_id", appt.ID,
				"patient_id", appt.PatientID,
				"error", err,
			)
			return
		}
		enriched.PatientName = patient.Name
	}()

	go func() {
		defer wg.Done()
		vet, err := r.staff.GetByID(ctx, appt.VeterinarianID, bearer)
		if err != nil {
			r.log.Debug("Veterinarian enrichment skipped",
				"appointment_id", appt.ID,
				"veterinarian_id", appt.VeterinarianID,
				"error", err,
			)
			return
		}
		enriched.VeterinarianName = vet.DisplayName()
	}()

	wg.Wait()
	return enriched
}

// EnrichAll enriches each record independently; partial batch enrichment is
// expected and correct.
func (r *Registry) EnrichAll(ctx context.Context, appts []*model.Appointment, bearer string) []*model.EnrichedAppointment {
	enriched := make([]*model.EnrichedAppointment, 0, len(appts))
	for _, appt := range appts {
		enriched = append(enriched, r.EnrichOne(ctx, appt, bearer))
	}
	return enriched
}
