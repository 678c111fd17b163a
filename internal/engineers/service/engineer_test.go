package service

import (
	"context"
	"testing"
	"time"

	engineerserrors "dometriks/internal/engineers/errors"
	"dometriks/internal/engineers/validator"
	"dometriks/pkg/config"
	apperrors "dometriks/pkg/errors"
	"dometriks/pkg/logger"
	"dometriks/pkg/model"
)

func newTestEngineerService(repo *mockEngineerRepository) EngineerService {
	log := logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
	cfg := &config.Config{
		Log:          log,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	return NewEngineerService(repo, validator.NewEngineerValidator(log), cfg)
}

func floatPtr(f float64) *float64 { return &f }
func boolPtr(b bool) *bool        { return &b }

// ────────────────────────────────────────────────
// Tests for UpdateLocation()
// ────────────────────────────────────────────────

func TestUpdateLocation_RejectsEmptyUpdate(t *testing.T) {
	repoCalled := false
	repo := &mockEngineerRepository{
		updateLocationFunc: func(ctx context.Context, id string, update *model.LocationUpdate) (*model.Engineer, error) {
			repoCalled = true
			return &model.Engineer{ID: id}, nil
		},
	}
	svc := newTestEngineerService(repo)

	_, err := svc.UpdateLocation(context.Background(), testEngineerID, &model.LocationUpdate{})
	if err == nil {
		t.Fatal("expected validation error for empty update")
	}
	if apperrors.AsAppError(err).StatusCode() != 422 {
		t.Errorf("expected 422, got %d", apperrors.AsAppError(err).StatusCode())
	}
	if repoCalled {
		t.Error("repository should not be called for an empty update")
	}
}

func TestUpdateLocation_RejectsHalfCoordinatePair(t *testing.T) {
	svc := newTestEngineerService(&mockEngineerRepository{})

	_, err := svc.UpdateLocation(context.Background(), testEngineerID, &model.LocationUpdate{
		Latitude: floatPtr(32.0853),
	})
	if err == nil {
		t.Fatal("expected validation error for latitude without longitude")
	}
}

func TestUpdateLocation_OnlineOnlyLeavesPointUntouched(t *testing.T) {
	var gotUpdate *model.LocationUpdate
	repo := &mockEngineerRepository{
		updateLocationFunc: func(ctx context.Context, id string, update *model.LocationUpdate) (*model.Engineer, error) {
			gotUpdate = update
			return &model.Engineer{ID: id, IsOnline: *update.IsOnline}, nil
		},
	}
	svc := newTestEngineerService(repo)

	engineer, err := svc.UpdateLocation(context.Background(), testEngineerID, &model.LocationUpdate{
		IsOnline: boolPtr(true),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotUpdate.HasPoint() {
		t.Error("update should not carry a point")
	}
	if !engineer.IsOnline {
		t.Error("expected engineer online")
	}
}

// Coordinate ranges are not validated on location reports; the field app
// has always been allowed to send raw GPS output.
func TestUpdateLocation_NoCoordinateRangeValidation(t *testing.T) {
	var gotUpdate *model.LocationUpdate
	repo := &mockEngineerRepository{
		updateLocationFunc: func(ctx context.Context, id string, update *model.LocationUpdate) (*model.Engineer, error) {
			gotUpdate = update
			return &model.Engineer{ID: id}, nil
		},
	}
	svc := newTestEngineerService(repo)

	_, err := svc.UpdateLocation(context.Background(), testEngineerID, &model.LocationUpdate{
		Latitude:  floatPtr(1234.5),
		Longitude: floatPtr(-999.0),
	})
	if err != nil {
		t.Fatalf("out-of-range coordinates must be accepted, got %v", err)
	}
	if !gotUpdate.HasPoint() {
		t.Error("expected the point to reach the repository")
	}
}

func TestUpdateLocation_UnknownEngineer(t *testing.T) {
	repo := &mockEngineerRepository{
		updateLocationFunc: func(ctx context.Context, id string, update *model.LocationUpdate) (*model.Engineer, error) {
			return nil, engineerserrors.ErrNotFound
		},
	}
	svc := newTestEngineerService(repo)

	_, err := svc.UpdateLocation(context.Background(), testEngineerID, &model.LocationUpdate{
		IsOnline: boolPtr(false),
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if apperrors.AsAppError(err).StatusCode() != 404 {
		t.Errorf("expected 404, got %d", apperrors.AsAppError(err).StatusCode())
	}
}

// ────────────────────────────────────────────────
// Tests for UpdateStatus() / Dashboard()
// ────────────────────────────────────────────────

func TestUpdateStatus_EnforcesAccountStatusList(t *testing.T) {
	repoCalled := false
	repo := &mockEngineerRepository{
		updateStatusFunc: func(ctx context.Context, id string, status model.EngineerAccountStatus) (*model.Engineer, error) {
			repoCalled = true
			return &model.Engineer{ID: id, Status: status}, nil
		},
	}
	svc := newTestEngineerService(repo)

	for _, status := range []model.EngineerAccountStatus{"Bogus", "", "Assigned"} {
		if _, err := svc.UpdateStatus(context.Background(), testEngineerID, status); err == nil {
			t.Errorf("status %q should be rejected", status)
		}
	}
	if repoCalled {
		t.Error("repository should not be called for rejected statuses")
	}

	for _, status := range model.AdminEngineerStatuses() {
		engineer, err := svc.UpdateStatus(context.Background(), testEngineerID, status)
		if err != nil {
			t.Errorf("status %q: unexpected error: %v", status, err)
			continue
		}
		if engineer.Status != status {
			t.Errorf("expected status %q, got %q", status, engineer.Status)
		}
	}
}

func TestDashboard(t *testing.T) {
	repo := &mockEngineerRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Engineer, error) {
			return &model.Engineer{
				ID:            id,
				Earnings:      1250.5,
				AcceptedCount: 7,
				RejectedCount: 2,
				IsOnline:      true,
			}, nil
		},
	}
	svc := newTestEngineerService(repo)

	dashboard, err := svc.Dashboard(context.Background(), testEngineerID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dashboard.Earnings != 1250.5 || dashboard.AcceptedCount != 7 || dashboard.RejectedCount != 2 || !dashboard.IsOnline {
		t.Errorf("unexpected dashboard: %+v", dashboard)
	}
}

func TestGetByID_InvalidIDMapping(t *testing.T) {
	repo := &mockEngineerRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Engineer, error) {
			return nil, engineerserrors.ErrInvalidID
		},
	}
	svc := newTestEngineerService(repo)

	_, err := svc.GetByID(context.Background(), "garbage")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if apperrors.AsAppError(err).StatusCode() != 400 {
		t.Errorf("expected 400, got %d", apperrors.AsAppError(err).StatusCode())
	}
}
