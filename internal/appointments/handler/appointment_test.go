package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"

	apperrors "vetsched/pkg/errors"
	"vetsched/pkg/logger"
	"vetsched/pkg/model"
)

type mockAppointmentService struct {
	createFn  func(ctx context.Context, appt *model.Appointment, actor, bearer string) (*model.EnrichedAppointment, error)
	getByIDFn func(ctx context.Context, id, bearer string) (*model.EnrichedAppointment, error)
	updateFn  func(ctx context.Context, id string, patch *model.AppointmentUpdate, actor, bearer string) (*model.EnrichedAppointment, error)
	cancelFn  func(ctx context.Context, id, actor, bearer string) (*model.EnrichedAppointment, error)
	listFn    func() ([]*model.EnrichedAppointment, error)
}

func (m *mockAppointmentService) Create(ctx context.Context, appt *model.Appointment, actor, bearer string) (*model.EnrichedAppointment, error) {
	return m.createFn(ctx, appt, actor, bearer)
}

func (m *mockAppointmentService) GetByID(ctx context.Context, id, bearer string) (*model.EnrichedAppointment, error) {
	return m.getByIDFn(ctx, id, bearer)
}

func (m *mockAppointmentService) Update(ctx context.Context, id string, patch *model.AppointmentUpdate, actor, bearer string) (*model.EnrichedAppointment, error) {
	return m.updateFn(ctx, id, patch, actor, bearer)
}

func (m *mockAppointmentService) Cancel(ctx context.Context, id, actor, bearer string) (*model.EnrichedAppointment, error) {
	return m.cancelFn(ctx, id, actor, bearer)
}

func (m *mockAppointmentService) ListByPatient(context.Context, int64, string) ([]*model.EnrichedAppointment, error) {
	return m.listFn()
}

func (m *mockAppointmentService) ListByVeterinarian(context.Context, int64, string) ([]*model.EnrichedAppointment, error) {
	return m.listFn()
}

func (m *mockAppointmentService) ListByDate(context.Context, string, string) ([]*model.EnrichedAppointment, error) {
	return m.listFn()
}

func (m *mockAppointmentService) ListByDateRange(context.Context, string, string, string) ([]*model.EnrichedAppointment, error) {
	return m.listFn()
}

func (m *mockAppointmentService) ListToday(context.Context, string) ([]*model.EnrichedAppointment, error) {
	return m.listFn()
}

func (m *mockAppointmentService) ListUpcoming(context.Context, string) ([]*model.EnrichedAppointment, error) {
	return m.listFn()
}

func newTestRouter(svc *mockAppointmentService) *httprouter.Router {
	log := logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT, Output: io.Discard})
	router := httprouter.New()
	NewAppointmentHandler(svc, log).RegisterRoutes(router)
	return router
}

func sampleEnriched() *model.EnrichedAppointment {
	return &model.EnrichedAppointment{
		Appointment: model.Appointment{
			ID:              "000000000000000000000001",
			PatientID:       7,
			VeterinarianID:  3,
			Date:            "2025-03-11",
			StartTime:       "10:00",
			DurationMinutes: 30,
			Reason:          "Annual checkup",
			Status:          model.StatusScheduled,
		},
		EndTime:          "10:30",
		PatientName:      "Rex",
		VeterinarianName: "Sarah Chen",
	}
}

func TestCreateHandler(t *testing.T) {
	var gotActor, gotBearer string
	svc := &mockAppointmentService{
		createFn: func(_ context.Context, appt *model.Appointment, actor, bearer string) (*model.EnrichedAppointment, error) {
			gotActor, gotBearer = actor, bearer
			enriched := appt.Enriched()
			enriched.ID = "000000000000000000000001"
			return enriched, nil
		},
	}
	router := newTestRouter(svc)

	body := `{"patient_id":7,"veterinarian_id":3,"date":"2025-03-11","start_time":"10:00","duration_minutes":30,"reason":"Annual checkup"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments", strings.NewReader(body))
	req.Header.Set("X-User-Id", "user-42")
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotActor != "user-42" {
		t.Errorf("expected actor from X-User-Id, got %q", gotActor)
	}
	if gotBearer != "Bearer token" {
		t.Errorf("expected bearer from Authorization, got %q", gotBearer)
	}

	var resp struct {
		Data model.EnrichedAppointment `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Data.ID != "000000000000000000000001" {
		t.Errorf("expected created appointment in response, got %+v", resp.Data)
	}
}

func TestCreateHandler_InvalidBody(t *testing.T) {
	svc := &mockAppointmentService{}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreateHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"conflict", apperrors.Conflict("slot taken"), http.StatusConflict, apperrors.CodeConflict},
		{"reference not found", apperrors.ReferenceNotFound("patient", 7), http.StatusUnprocessableEntity, apperrors.CodeReferenceNotFound},
		{"validation unavailable", apperrors.ValidationUnavailable("staff registry", nil), http.StatusServiceUnavailable, apperrors.CodeValidationUnavailable},
		{"past date time", apperrors.PastDateTime("2020-01-01", "10:00"), http.StatusUnprocessableEntity, apperrors.CodePastDateTime},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockAppointmentService{
				createFn: func(context.Context, *model.Appointment, string, string) (*model.EnrichedAppointment, error) {
					return nil, tt.err
				},
			}
			router := newTestRouter(svc)

			body := `{"patient_id":7,"veterinarian_id":3,"date":"2025-03-11","start_time":"10:00","duration_minutes":30,"reason":"Annual checkup"}`
			req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments", strings.NewReader(body))
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}

			var resp apperrors.ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode error response: %v", err)
			}
			if resp.Code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestGetByIDHandler(t *testing.T) {
	svc := &mockAppointmentService{
		getByIDFn: func(_ context.Context, id, _ string) (*model.EnrichedAppointment, error) {
			if id != "000000000000000000000001" {
				return nil, apperrors.NotFoundWithID("Appointment", id)
			}
			return sampleEnriched(), nil
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments/id/000000000000000000000001", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/appointments/id/000000000000000000000099", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestUpdateHandler(t *testing.T) {
	svc := &mockAppointmentService{
		updateFn: func(_ context.Context, id string, patch *model.AppointmentUpdate, actor, _ string) (*model.EnrichedAppointment, error) {
			if patch.Notes == nil || *patch.Notes != "Bring vaccination record" {
				t.Errorf("expected notes patch, got %+v", patch)
			}
			return sampleEnriched(), nil
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/appointments/id/000000000000000000000001",
		strings.NewReader(`{"notes":"Bring vaccination record"}`))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCancelHandler(t *testing.T) {
	svc := &mockAppointmentService{
		cancelFn: func(_ context.Context, id, actor, _ string) (*model.EnrichedAppointment, error) {
			enriched := sampleEnriched()
			enriched.Status = model.StatusCancelled
			return enriched, nil
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/appointments/id/000000000000000000000001/cancel", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Data model.EnrichedAppointment `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Data.Status != model.StatusCancelled {
		t.Errorf("expected CANCELLED, got %s", resp.Data.Status)
	}
}

func TestListHandlers(t *testing.T) {
	svc := &mockAppointmentService{
		listFn: func() ([]*model.EnrichedAppointment, error) {
			return []*model.EnrichedAppointment{sampleEnriched()}, nil
		},
	}
	router := newTestRouter(svc)

	paths := []string{
		"/api/v1/appointments/patient/7",
		"/api/v1/appointments/veterinarian/3",
		"/api/v1/appointments/date/2025-03-11",
		"/api/v1/appointments/range?from=2025-03-11&to=2025-03-12",
		"/api/v1/appointments/today",
		"/api/v1/appointments/upcoming",
	}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestListByPatientHandler_NonNumericID(t *testing.T) {
	svc := &mockAppointmentService{}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments/patient/abc", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
