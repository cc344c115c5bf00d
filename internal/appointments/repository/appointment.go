package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	appointmentserrors "vetsched/internal/appointments/errors"
	"vetsched/pkg/config"
	mongotx "vetsched/pkg/db/mongo"
	"vetsched/pkg/model"
)

const (
	CollectionName = "Appointments"
)

type AppointmentRepository interface {
	Create(ctx context.Context, appt *model.Appointment) error
	FindByID(ctx context.Context, id string) (*model.Appointment, error)
	Update(ctx context.Context, id string, appt *model.Appointment) (*mongo.UpdateResult, error)
	FindConflicting(ctx context.Context, veterinarianID int64, date string, startMinutes, endMinutes int, excludeID string) ([]*model.Appointment, error)
	FindByPatient(ctx context.Context, patientID int64) ([]*model.Appointment, error)
	FindByVeterinarian(ctx context.Context, veterinarianID int64) ([]*model.Appointment, error)
	FindByDate(ctx context.Context, date string) ([]*model.Appointment, error)
	FindByDateRange(ctx context.Context, from, to string) ([]*model.Appointment, error)
	FindUpcoming(ctx context.Context, today, timeOfDay string) ([]*model.Appointment, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoAppointmentRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoAppointmentRepository(cfg *config.Config) AppointmentRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoAppointmentRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout unless already inside a
// transaction; a SessionContext cannot be wrapped without breaking
// transaction semantics.
func (r *mongoAppointmentRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if hasDeadline {
		if remaining := time.Until(deadline); remaining < timeout {
			return context.WithTimeout(ctx, remaining)
		}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoAppointmentRepository) Create(ctx context.Context, appt *model.Appointment) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	appt.CreatedAt = now
	appt.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, appt)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		appt.ID = oid.Hex()
	}
	return nil
}

func (r *mongoAppointmentRepository) FindByID(ctx context.Context, id string) (*model.Appointment, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", appointmentserrors.ErrInvalidID, id)
	}

	var appt model.Appointment
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&appt)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, appointmentserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find appointment: %w", err)
	}

	return &appt, nil
}

func (r *mongoAppointmentRepository) Update(ctx context.Context, id string, appt *model.Appointment) (*mongo.UpdateResult, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", appointmentserrors.ErrInvalidID, id)
	}

	appt.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)

	update := bson.M{
		"$set": bson.M{
			"patient_id":       appt.PatientID,
			"veterinarian_id":  appt.VeterinarianID,
			"date":             appt.Date,
			"start_time":       appt.StartTime,
			"duration_minutes": appt.DurationMinutes,
			"reason":           appt.Reason,
			"notes":            appt.Notes,
			"status":           appt.Status,
			"updated_by":       appt.UpdatedBy,
			"updated_at":       appt.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}

	if result.MatchedCount == 0 {
		return nil, appointmentserrors.ErrNotFound
	}

	return result, nil
}

// FindConflicting returns the veterinarian's appointments on the given date
// whose [start, end) window intersects the candidate window. Cancelled and
// no-show appointments free the slot and are excluded by the query. The end
// time is derived from the stored duration, so the window intersection is
// applied in memory over the single day's worth of documents.
func (r *mongoAppointmentRepository) FindConflicting(
	ctx context.Context,
	veterinarianID int64,
	date string,
	startMinutes, endMinutes int,
	excludeID string,
) ([]*model.Appointment, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"veterinarian_id": veterinarianID,
		"date":            date,
		"status":          bson.M{"$nin": []string{model.StatusCancelled, model.StatusNoShow}},
	}
	if excludeID != "" {
		objectID, err := primitive.ObjectIDFromHex(excludeID)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", appointmentserrors.ErrInvalidID, excludeID)
		}
		filter["_id"] = bson.M{"$ne": objectID}
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find conflicting appointments: %w", err)
	}
	defer cursor.Close(ctx)

	var candidates []*model.Appointment
	if err = cursor.All(ctx, &candidates); err != nil {
		return nil, fmt.Errorf("failed to decode appointments: %w", err)
	}

	var conflicts []*model.Appointment
	for _, a := range candidates {
		if model.Overlaps(a.StartMinutes(), a.EndMinutes(), startMinutes, endMinutes) {
			conflicts = append(conflicts, a)
		}
	}
	return conflicts, nil
}

func (r *mongoAppointmentRepository) FindByPatient(ctx context.Context, patientID int64) ([]*model.Appointment, error) {
	return r.find(ctx, bson.M{"patient_id": patientID}, descending())
}

func (r *mongoAppointmentRepository) FindByVeterinarian(ctx context.Context, veterinarianID int64) ([]*model.Appointment, error) {
	return r.find(ctx, bson.M{"veterinarian_id": veterinarianID}, descending())
}

func (r *mongoAppointmentRepository) FindByDate(ctx context.Context, date string) ([]*model.Appointment, error) {
	return r.find(ctx, bson.M{"date": date}, ascending())
}

func (r *mongoAppointmentRepository) FindByDateRange(ctx context.Context, from, to string) ([]*model.Appointment, error) {
	filter := bson.M{"date": bson.M{"$gte": from, "$lte": to}}
	return r.find(ctx, filter, ascending())
}

// FindUpcoming relies on ISO date and HH:MM strings comparing
// lexicographically in chronological order.
func (r *mongoAppointmentRepository) FindUpcoming(ctx context.Context, today, timeOfDay string) ([]*model.Appointment, error) {
	filter := bson.M{
		"$or": []bson.M{
			{"date": bson.M{"$gt": today}},
			{"date": today, "start_time": bson.M{"$gt": timeOfDay}},
		},
	}
	return r.find(ctx, filter, ascending())
}

func (r *mongoAppointmentRepository) find(ctx context.Context, filter bson.M, sort bson.D) ([]*model.Appointment, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, fmt.Errorf("failed to find appointments: %w", err)
	}
	defer cursor.Close(ctx)

	var appts []*model.Appointment
	if err = cursor.All(ctx, &appts); err != nil {
		return nil, fmt.Errorf("failed to decode appointments: %w", err)
	}
	return appts, nil
}

func ascending() bson.D {
	return bson.D{{Key: "date", Value: 1}, {Key: "start_time", Value: 1}}
}

func descending() bson.D {
	return bson.D{{Key: "date", Value: -1}, {Key: "start_time", Value: -1}}
}

func (r *mongoAppointmentRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
