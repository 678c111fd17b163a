package service

import (
	"context"
	"sync"
	"testing"
	"time"

	bookingserrors "dometriks/internal/bookings/errors"
	"dometriks/internal/bookings/validator"
	"dometriks/internal/events"
	"dometriks/pkg/config"
	apperrors "dometriks/pkg/errors"
	"dometriks/pkg/logger"
	"dometriks/pkg/model"
)

// ────────────────────────────────────────────────
// Mock repository for testing
// ────────────────────────────────────────────────

type mockBookingRepository struct {
	createFunc       func(ctx context.Context, booking *model.Booking) error
	findByIDFunc     func(ctx context.Context, id string) (*model.Booking, error)
	findAllFunc      func(ctx context.Context, status model.BookingStatus, limit int, offset int64) ([]*model.Booking, error)
	countFunc        func(ctx context.Context, status model.BookingStatus) (int64, error)
	updateStatusFunc func(ctx context.Context, id string, status model.BookingStatus) (*model.Booking, error)
}

func (m *mockBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, booking)
	}
	booking.ID = "64f000000000000000000001"
	return nil
}

func (m *mockBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, bookingserrors.ErrNotFound
}

func (m *mockBookingRepository) FindAll(ctx context.Context, status model.BookingStatus, limit int, offset int64) ([]*model.Booking, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, status, limit, offset)
	}
	return []*model.Booking{}, nil
}

func (m *mockBookingRepository) Count(ctx context.Context, status model.BookingStatus) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx, status)
	}
	return 0, nil
}

func (m *mockBookingRepository) UpdateStatus(ctx context.Context, id string, status model.BookingStatus) (*model.Booking, error) {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, status)
	}
	return nil, bookingserrors.ErrNotFound
}

func (m *mockBookingRepository) FindNearby(ctx context.Context, center *model.GeoPoint, radiusMeters float64) ([]*model.Booking, error) {
	return nil, nil
}

func (m *mockBookingRepository) Claim(ctx context.Context, bookingID, engineerID string) (*model.Booking, error) {
	return nil, nil
}

func (m *mockBookingRepository) MarkSurveyDone(ctx context.Context, bookingID, engineerID string) (*model.Booking, error) {
	return nil, nil
}

func (m *mockBookingRepository) Complete(ctx context.Context, bookingID, engineerID, documentFilename, documentOriginalName string) (*model.Booking, error) {
	return nil, nil
}

func (m *mockBookingRepository) FindByAssignee(ctx context.Context, engineerID string, statuses []model.BookingStatus) ([]*model.Booking, error) {
	return nil, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(_ context.Context, eventType string, _ *model.Booking) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
}

func (p *recordingPublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

func newTestService(repo *mockBookingRepository, pub events.Publisher) BookingService {
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
	if pub == nil {
		pub = events.NewNoopPublisher()
	}
	return NewBookingService(repo, validator.NewBookingValidator(log), pub, cfg)
}

func validBooking() *model.Booking {
	return &model.Booking{
		Name:        "  Dana   Levi ",
		Email:       "Dana@Example.COM",
		Phone:       "+972501234567",
		Location:    "12 Herzl St, Tel Aviv",
		ServiceType: "Electrical Survey",
		Coordinates: model.NewGeoPoint(34.7818, 32.0853),
	}
}

// ────────────────────────────────────────────────
// Tests for Create()
// ────────────────────────────────────────────────

func TestCreate_ForcesUnassignedStage(t *testing.T) {
	var created *model.Booking
	mockRepo := &mockBookingRepository{
		createFunc: func(ctx context.Context, booking *model.Booking) error {
			created = booking
			booking.ID = "64f000000000000000000001"
			return nil
		},
	}
	svc := newTestService(mockRepo, nil)

	booking := validBooking()
	// A client trying to create a pre-claimed booking gets overridden.
	booking.Status = model.StatusAssigned
	booking.EngineerStatus = model.EngineerAssigned
	booking.AssignedEngineerID = "64f0000000000000000000aa"

	if err := svc.Create(context.Background(), booking); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created.Status != model.StatusUnassigned {
		t.Errorf("expected status %q, got %q", model.StatusUnassigned, created.Status)
	}
	if created.EngineerStatus != model.EngineerUnassigned {
		t.Errorf("expected engineer status %q, got %q", model.EngineerUnassigned, created.EngineerStatus)
	}
	if created.AssignedEngineerID != "" {
		t.Errorf("expected no assignee, got %q", created.AssignedEngineerID)
	}
	if !created.AssignmentConsistent() {
		t.Error("new booking should have consistent assignment state")
	}
}

func TestCreate_SanitizesInput(t *testing.T) {
	var created *model.Booking
	mockRepo := &mockBookingRepository{
		createFunc: func(ctx context.Context, booking *model.Booking) error {
			created = booking
			return nil
		},
	}
	svc := newTestService(mockRepo, nil)

	if err := svc.Create(context.Background(), validBooking()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created.Name != "Dana Levi" {
		t.Errorf("expected normalized name, got %q", created.Name)
	}
	if created.Email != "dana@example.com" {
		t.Errorf("expected lowercased email, got %q", created.Email)
	}
}

func TestCreate_ValidationFailure(t *testing.T) {
	svc := newTestService(&mockBookingRepository{}, nil)

	booking := validBooking()
	booking.Email = "not-an-email"

	err := svc.Create(context.Background(), booking)
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}

	appErr := apperrors.AsAppError(err)
	if appErr.StatusCode() != 422 {
		t.Errorf("expected status 422, got %d", appErr.StatusCode())
	}
}

func TestCreate_PublishesCreatedEvent(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newTestService(&mockBookingRepository{}, pub)

	if err := svc.Create(context.Background(), validBooking()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := pub.published()
	if len(got) != 1 || got[0] != events.TypeBookingCreated {
		t.Errorf("expected [%s], got %v", events.TypeBookingCreated, got)
	}
}

func TestCreate_NoEventOnRepositoryFailure(t *testing.T) {
	pub := &recordingPublisher{}
	mockRepo := &mockBookingRepository{
		createFunc: func(ctx context.Context, booking *model.Booking) error {
			return context.DeadlineExceeded
		},
	}
	svc := newTestService(mockRepo, pub)

	if err := svc.Create(context.Background(), validBooking()); err == nil {
		t.Fatal("expected error, got nil")
	}

	if got := pub.published(); len(got) != 0 {
		t.Errorf("expected no events on failed create, got %v", got)
	}
}

func TestCreate_BuildsGeoPointFromPair(t *testing.T) {
	var created *model.Booking
	mockRepo := &mockBookingRepository{
		createFunc: func(ctx context.Context, booking *model.Booking) error {
			created = booking
			return nil
		},
	}
	svc := newTestService(mockRepo, nil)

	lat, lng := 32.0853, 34.7818
	booking := validBooking()
	booking.Coordinates = nil
	booking.Latitude = &lat
	booking.Longitude = &lng

	if err := svc.Create(context.Background(), booking); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created.Coordinates == nil {
		t.Fatal("expected coordinates to be built from latitude/longitude")
	}
	if created.Coordinates.Longitude() != lng || created.Coordinates.Latitude() != lat {
		t.Errorf("expected point (%v, %v), got (%v, %v)",
			lng, lat, created.Coordinates.Longitude(), created.Coordinates.Latitude())
	}
}

func TestCreate_RejectsHalfCoordinatePair(t *testing.T) {
	svc := newTestService(&mockBookingRepository{}, nil)

	lat := 32.0853
	booking := validBooking()
	booking.Coordinates = nil
	booking.Latitude = &lat

	if err := svc.Create(context.Background(), booking); err == nil {
		t.Fatal("expected validation error for latitude without longitude")
	}
}

func TestCreate_ClearsScheduleSlotWhenImmediate(t *testing.T) {
	var created *model.Booking
	mockRepo := &mockBookingRepository{
		createFunc: func(ctx context.Context, booking *model.Booking) error {
			created = booking
			return nil
		},
	}
	svc := newTestService(mockRepo, nil)

	scheduleNow := true
	booking := validBooking()
	booking.ScheduleNow = &scheduleNow
	booking.ScheduleDate = "2026-09-15"
	booking.ScheduleTime = "14:00"

	if err := svc.Create(context.Background(), booking); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created.ScheduleDate != "" || created.ScheduleTime != "" {
		t.Errorf("expected schedule slot cleared, got date=%q time=%q",
			created.ScheduleDate, created.ScheduleTime)
	}
}

// ────────────────────────────────────────────────
// Tests for GetByID() / GetAll()
// ────────────────────────────────────────────────

func TestGetByID_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		id         string
		repoErr    error
		wantStatus int
	}{
		{"not found", "64f000000000000000000001", bookingserrors.ErrNotFound, 404},
		{"invalid id", "garbage", bookingserrors.ErrInvalidID, 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mockBookingRepository{
				findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
					return nil, tt.repoErr
				},
			}
			svc := newTestService(mockRepo, nil)

			_, err := svc.GetByID(context.Background(), tt.id)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			appErr := apperrors.AsAppError(err)
			if appErr.StatusCode() != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, appErr.StatusCode())
			}
		})
	}
}

func TestGetByID_EmptyID(t *testing.T) {
	svc := newTestService(&mockBookingRepository{}, nil)

	_, err := svc.GetByID(context.Background(), "")
	if err == nil {
		t.Fatal("expected error for empty ID")
	}
}

func TestGetAll_ConcurrentCountAndFind(t *testing.T) {
	mockRepo := &mockBookingRepository{
		countFunc: func(ctx context.Context, status model.BookingStatus) (int64, error) {
			time.Sleep(10 * time.Millisecond)
			return 42, nil
		},
		findAllFunc: func(ctx context.Context, status model.BookingStatus, limit int, offset int64) ([]*model.Booking, error) {
			time.Sleep(10 * time.Millisecond)
			return []*model.Booking{
				{ID: "64f000000000000000000001"},
				{ID: "64f000000000000000000002"},
			}, nil
		},
	}
	svc := newTestService(mockRepo, nil)

	bookings, count, err := svc.GetAll(context.Background(), "", 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 42 {
		t.Errorf("expected count 42, got %d", count)
	}
	if len(bookings) != 2 {
		t.Errorf("expected 2 bookings, got %d", len(bookings))
	}
}

func TestGetAll_StatusFilterPassedThrough(t *testing.T) {
	var gotStatus model.BookingStatus
	mockRepo := &mockBookingRepository{
		findAllFunc: func(ctx context.Context, status model.BookingStatus, limit int, offset int64) ([]*model.Booking, error) {
			gotStatus = status
			return []*model.Booking{}, nil
		},
	}
	svc := newTestService(mockRepo, nil)

	if _, _, err := svc.GetAll(context.Background(), model.StatusCompleted, 10, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotStatus != model.StatusCompleted {
		t.Errorf("expected status filter %q, got %q", model.StatusCompleted, gotStatus)
	}
}

// ────────────────────────────────────────────────
// Tests for UpdateStatus()
// ────────────────────────────────────────────────

func TestUpdateStatus_RejectsDispatchStages(t *testing.T) {
	repoCalled := false
	mockRepo := &mockBookingRepository{
		updateStatusFunc: func(ctx context.Context, id string, status model.BookingStatus) (*model.Booking, error) {
			repoCalled = true
			return &model.Booking{ID: id, Status: status}, nil
		},
	}
	svc := newTestService(mockRepo, nil)

	for _, status := range []model.BookingStatus{model.StatusAssigned, model.StatusSurveyDone, model.StatusUnassigned, "Bogus"} {
		_, err := svc.UpdateStatus(context.Background(), "64f000000000000000000001", status)
		if err == nil {
			t.Errorf("status %q should be rejected by the admin endpoint", status)
		}
	}
	if repoCalled {
		t.Error("repository should not be called for rejected statuses")
	}
}

func TestUpdateStatus_AllowsAdminStatuses(t *testing.T) {
	mockRepo := &mockBookingRepository{
		updateStatusFunc: func(ctx context.Context, id string, status model.BookingStatus) (*model.Booking, error) {
			return &model.Booking{ID: id, Status: status}, nil
		},
	}
	svc := newTestService(mockRepo, nil)

	for _, status := range model.AdminBookingStatuses() {
		booking, err := svc.UpdateStatus(context.Background(), "64f000000000000000000001", status)
		if err != nil {
			t.Errorf("status %q: unexpected error: %v", status, err)
			continue
		}
		if booking.Status != status {
			t.Errorf("expected status %q, got %q", status, booking.Status)
		}
	}
}

func TestUpdateStatus_NotFound(t *testing.T) {
	mockRepo := &mockBookingRepository{
		updateStatusFunc: func(ctx context.Context, id string, status model.BookingStatus) (*model.Booking, error) {
			return nil, bookingserrors.ErrNotFound
		},
	}
	svc := newTestService(mockRepo, nil)

	_, err := svc.UpdateStatus(context.Background(), "64f000000000000000000001", model.StatusCancelled)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.StatusCode() != 404 {
		t.Errorf("expected status 404, got %d", appErr.StatusCode())
	}
}
