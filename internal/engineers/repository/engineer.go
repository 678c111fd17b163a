package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	engineerserrors "dometriks/internal/engineers/errors"
	"dometriks/pkg/config"
	"dometriks/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Engineers"
)

type mongoEngineerRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
}

type EngineerRepository interface {
	FindByID(ctx context.Context, id string) (*model.Engineer, error)
	FindAll(ctx context.Context, status model.EngineerAccountStatus, limit int, offset int64) ([]*model.Engineer, error)
	Count(ctx context.Context, status model.EngineerAccountStatus) (int64, error)
	UpdateLocation(ctx context.Context, id string, update *model.LocationUpdate) (*model.Engineer, error)
	IncrementAccepted(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, id string, status model.EngineerAccountStatus) (*model.Engineer, error)
}

func NewMongoEngineerRepository(cfg *config.Config) EngineerRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoEngineerRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoEngineerRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
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

func (r *mongoEngineerRepository) FindByID(ctx context.Context, id string) (*model.Engineer, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", engineerserrors.ErrInvalidID, id)
	}

	var engineer model.Engineer
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&engineer)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, engineerserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find engineer: %w", err)
	}

	return &engineer, nil
}

func (r *mongoEngineerRepository) FindAll(ctx context.Context, status model.EngineerAccountStatus, limit int, offset int64) ([]*model.Engineer, error) {
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
		return nil, fmt.Errorf("failed to find engineers: %w", err)
	}
	defer cursor.Close(ctx)

	var engineers []*model.Engineer
	if err = cursor.All(ctx, &engineers); err != nil {
		return nil, fmt.Errorf("failed to decode engineers: %w", err)
	}

	return engineers, nil
}

func (r *mongoEngineerRepository) Count(ctx context.Context, status model.EngineerAccountStatus) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count engineers: %w", err)
	}

	return count, nil
}

// UpdateLocation applies a partial $set: only the fields the update
// carries are written, everything else is untouched. Coordinate ranges
// are not validated here, matching the field app's contract.
func (r *mongoEngineerRepository) UpdateLocation(ctx context.Context, id string, update *model.LocationUpdate) (*model.Engineer, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", engineerserrors.ErrInvalidID, id)
	}

	set := bson.M{
		"updated_at": time.Now().UTC().Truncate(time.Millisecond),
	}
	if update.HasPoint() {
		set["location"] = model.NewGeoPoint(*update.Longitude, *update.Latitude)
	}
	if update.IsOnline != nil {
		set["is_online"] = *update.IsOnline
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var engineer model.Engineer
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, bson.M{"$set": set}, opts).Decode(&engineer)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, engineerserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update engineer location: %w", err)
	}

	return &engineer, nil
}

// IncrementAccepted bumps the advisory accepted counter. Callers treat
// failure as non-fatal: the claim this follows is already committed.
func (r *mongoEngineerRepository) IncrementAccepted(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", engineerserrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$inc": bson.M{"accepted_count": 1},
		"$set": bson.M{"updated_at": time.Now().UTC().Truncate(time.Millisecond)},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to increment accepted count: %w", err)
	}
	if result.MatchedCount == 0 {
		return engineerserrors.ErrNotFound
	}

	return nil
}

func (r *mongoEngineerRepository) UpdateStatus(ctx context.Context, id string, status model.EngineerAccountStatus) (*model.Engineer, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", engineerserrors.ErrInvalidID, id)
	}

	update := bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now().UTC().Truncate(time.Millisecond),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var engineer model.Engineer
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, update, opts).Decode(&engineer)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, engineerserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update engineer status: %w", err)
	}

	return &engineer, nil
}
