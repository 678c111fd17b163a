package service

import (
	"context"
	"errors"
	"sync"

	bookingserrors "dometriks/internal/bookings/errors"
	"dometriks/internal/bookings/repository"
	"dometriks/internal/bookings/validator"
	"dometriks/internal/events"
	"dometriks/pkg/config"
	apperrors "dometriks/pkg/errors"
	"dometriks/pkg/model"
	"dometriks/pkg/sanitizer"
)

type BookingService interface {
	Create(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	GetAll(ctx context.Context, status model.BookingStatus, limit int, offset int64) ([]*model.Booking, int64, error)
	UpdateStatus(ctx context.Context, id string, status model.BookingStatus) (*model.Booking, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	validator *validator.BookingValidator
	publisher events.Publisher
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	validator *validator.BookingValidator,
	publisher events.Publisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
	}
}

// Create persists a new booking in the Unassigned stage on both status
// fields, regardless of what the caller submitted.
func (s *bookingService) Create(ctx context.Context, booking *model.Booking) error {
	s.sanitize(booking)
	s.applyDefaults(booking)
	if err := s.validate(booking); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		s.cfg.Log.Error("Failed to create booking", "error", err)
		return apperrors.Internal("Failed to create booking", err)
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"service_type", booking.ServiceType,
		"has_coordinates", booking.Coordinates != nil,
	)

	s.publisher.Publish(ctx, events.TypeBookingCreated, booking)
	return nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	return booking, nil
}

func (s *bookingService) GetAll(ctx context.Context, status model.BookingStatus, limit int, offset int64) ([]*model.Booking, int64, error) {
	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, status)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindAll(ctx, status, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

// UpdateStatus is the administrative transition. It writes status only
// and leaves engineer_status and the assignee untouched, so the dispatch
// flow stays authoritative for claims.
func (s *bookingService) UpdateStatus(ctx context.Context, id string, status model.BookingStatus) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	if err := s.validator.ValidateStatus(status); err != nil {
		s.cfg.Log.Warn("Booking status update rejected", "id", id, "status", status)
		return nil, apperrors.Validation("Invalid booking status", map[string]any{"error": err.Error()})
	}

	booking, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		s.cfg.Log.Error("Failed to update booking status", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to update booking status", err)
	}

	s.cfg.Log.Info("Booking status updated", "id", id, "status", status)
	return booking, nil
}

// --- Helpers ---

func (s *bookingService) sanitize(b *model.Booking) {
	b.Name = sanitizer.NormalizeName(b.Name)
	b.Email = sanitizer.NormalizeEmail(b.Email)
	b.Phone = sanitizer.NormalizePhone(b.Phone)
	b.Location = sanitizer.NormalizeLabel(b.Location)
	b.ServiceType = sanitizer.NormalizeLabel(b.ServiceType)
	b.Description = sanitizer.TrimAndNormalize(b.Description)
}

// applyDefaults forces the intake stage. Clients cannot create a booking
// pre-assigned to an engineer.
func (s *bookingService) applyDefaults(b *model.Booking) {
	b.ID = ""
	b.Status = model.StatusUnassigned
	b.EngineerStatus = model.EngineerUnassigned
	b.AssignedEngineerID = ""
	b.DocumentFilename = ""
	b.DocumentOriginalName = ""

	if b.ScheduleNow == nil {
		scheduleNow := true
		b.ScheduleNow = &scheduleNow
	}
	if *b.ScheduleNow {
		b.ScheduleDate = ""
		b.ScheduleTime = ""
	}

	if b.Latitude != nil && b.Longitude != nil {
		b.Coordinates = model.NewGeoPoint(*b.Longitude, *b.Latitude)
	}
}

func (s *bookingService) validate(booking *model.Booking) error {
	if err := s.validator.Validate(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}
