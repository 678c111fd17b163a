package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "dometriks/internal/bookings/errors"
	"dometriks/pkg/config"
	"dometriks/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Bookings"
)

type mongoBookingRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
}

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindAll(ctx context.Context, status model.BookingStatus, limit int, offset int64) ([]*model.Booking, error)
	Count(ctx context.Context, status model.BookingStatus) (int64, error)
	UpdateStatus(ctx context.Context, id string, status model.BookingStatus) (*model.Booking, error)

	FindNearby(ctx context.Context, center *model.GeoPoint, radiusMeters float64) ([]*model.Booking, error)
	Claim(ctx context.Context, bookingID, engineerID string) (*model.Booking, error)
	MarkSurveyDone(ctx context.Context, bookingID, engineerID string) (*model.Booking, error)
	Complete(ctx context.Context, bookingID, engineerID, documentFilename, documentOriginalName string) (*model.Booking, error)
	FindByAssignee(ctx context.Context, engineerID string, statuses []model.BookingStatus) ([]*model.Booking, error)
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
	}
}

// withTimeout wraps the context with a per-operation timeout unless the
// caller's deadline is already tighter.
func (r *mongoBookingRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	booking.CreatedAt = now
	booking.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	var booking model.Booking
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

func (r *mongoBookingRepository) FindAll(ctx context.Context, status model.BookingStatus, limit int, offset int64) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, nil
}

func (r *mongoBookingRepository) Count(ctx context.Context, status model.BookingStatus) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	return count, nil
}

// UpdateStatus is the administrative transition: it touches status only,
// never engineer_status or the assignee.
func (r *mongoBookingRepository) UpdateStatus(ctx context.Context, id string, status model.BookingStatus) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	update := bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now().UTC().Truncate(time.Millisecond),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var booking model.Booking
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, update, opts).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}

	return &booking, nil
}

// FindNearby returns claimable bookings within radiusMeters of center,
// newest first. $maxDistance is inclusive, so a booking at exactly the
// radius is returned. Claimability is read off engineer_status, not
// status: the administrative path mutates status independently.
func (r *mongoBookingRepository) FindNearby(ctx context.Context, center *model.GeoPoint, radiusMeters float64) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"engineer_status":      bson.M{"$in": model.ClaimableEngineerStatuses()},
		"assigned_engineer_id": nil,
		"coordinates": bson.M{
			"$nearSphere": bson.M{
				"$geometry":    center,
				"$maxDistance": radiusMeters,
			},
		},
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find nearby bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode nearby bookings: %w", err)
	}

	return bookings, nil
}

// Claim is the single atomic conditional update that decides claim
// races. The precondition (no assignee, assignment stage still
// claimable) is part of the filter, so of N concurrent claims exactly
// one matches the persisted state at write time; the rest see
// ErrNotClaimable and write nothing. A missing booking id surfaces the
// same way by design.
func (r *mongoBookingRepository) Claim(ctx context.Context, bookingID, engineerID string) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(bookingID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, bookingID)
	}

	filter := bson.M{
		"_id":                  objectID,
		"assigned_engineer_id": nil,
		"engineer_status":      bson.M{"$in": model.ClaimableEngineerStatuses()},
	}
	update := bson.M{"$set": bson.M{
		"assigned_engineer_id": engineerID,
		"engineer_status":      model.EngineerAssigned,
		"status":               model.StatusAssigned,
		"updated_at":           time.Now().UTC().Truncate(time.Millisecond),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var booking model.Booking
	err = r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotClaimable
		}
		return nil, fmt.Errorf("failed to claim booking: %w", err)
	}

	return &booking, nil
}

// MarkSurveyDone moves an assigned booking to Survey Done. The assignee
// is part of the filter: a mismatched engineer gets ErrNotFound,
// indistinguishable from a missing booking.
func (r *mongoBookingRepository) MarkSurveyDone(ctx context.Context, bookingID, engineerID string) (*model.Booking, error) {
	return r.updateByAssignee(ctx, bookingID, engineerID, bson.M{
		"status":          model.StatusSurveyDone,
		"engineer_status": model.EngineerSurveyDone,
	})
}

// Complete records the completion document and moves the booking to
// Completed, under the same ownership filter as MarkSurveyDone.
func (r *mongoBookingRepository) Complete(ctx context.Context, bookingID, engineerID, documentFilename, documentOriginalName string) (*model.Booking, error) {
	return r.updateByAssignee(ctx, bookingID, engineerID, bson.M{
		"status":                 model.StatusCompleted,
		"engineer_status":        model.EngineerCompleted,
		"document_filename":      documentFilename,
		"document_original_name": documentOriginalName,
	})
}

func (r *mongoBookingRepository) updateByAssignee(ctx context.Context, bookingID, engineerID string, set bson.M) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(bookingID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, bookingID)
	}

	set["updated_at"] = time.Now().UTC().Truncate(time.Millisecond)

	filter := bson.M{
		"_id":                  objectID,
		"assigned_engineer_id": engineerID,
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var booking model.Booking
	err = r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update assigned booking: %w", err)
	}

	return &booking, nil
}

func (r *mongoBookingRepository) FindByAssignee(ctx context.Context, engineerID string, statuses []model.BookingStatus) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"assigned_engineer_id": engineerID,
	}
	if len(statuses) > 0 {
		filter["status"] = bson.M{"$in": statuses}
	}

	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find assigned bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode assigned bookings: %w", err)
	}

	return bookings, nil
}
