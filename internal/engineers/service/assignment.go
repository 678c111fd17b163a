package service

import (
	"context"
	"errors"

	bookingserrors "dometriks/internal/bookings/errors"
	bookingrepo "dometriks/internal/bookings/repository"
	engineerserrors "dometriks/internal/engineers/errors"
	"dometriks/internal/engineers/repository"
	"dometriks/internal/engineers/validator"
	"dometriks/internal/events"
	"dometriks/pkg/config"
	apperrors "dometriks/pkg/errors"
	"dometriks/pkg/model"
)

// AssignmentService is the dispatch flow seen from the engineer's side:
// find claimable work nearby, claim it, and move it through survey and
// completion.
type AssignmentService interface {
	NearbyBookings(ctx context.Context, engineerID string) ([]*model.Booking, error)
	Claim(ctx context.Context, engineerID, bookingID string) (*model.Booking, error)
	MarkSurveyDone(ctx context.Context, engineerID, bookingID string, target model.BookingStatus) (*model.Booking, error)
	Complete(ctx context.Context, engineerID, bookingID string, req *model.CompletionRequest) (*model.Booking, error)
	MyJobs(ctx context.Context, engineerID string) ([]*model.Booking, error)
}

type assignmentService struct {
	engineerRepo repository.EngineerRepository
	bookingRepo  bookingrepo.BookingRepository
	validator    *validator.EngineerValidator
	publisher    events.Publisher
	cfg          *config.Config
}

func NewAssignmentService(
	engineerRepo repository.EngineerRepository,
	bookingRepo bookingrepo.BookingRepository,
	validator *validator.EngineerValidator,
	publisher events.Publisher,
	cfg *config.Config,
) AssignmentService {
	return &assignmentService{
		engineerRepo: engineerRepo,
		bookingRepo:  bookingRepo,
		validator:    validator,
		publisher:    publisher,
		cfg:          cfg,
	}
}

// NearbyBookings runs the proximity match around the engineer's stored
// location. An engineer who has never reported a location gets an
// invalid-input error rather than an empty list, so the field app can
// tell "nothing nearby" from "you need to enable location".
func (s *assignmentService) NearbyBookings(ctx context.Context, engineerID string) ([]*model.Booking, error) {
	engineer, err := s.lookupEngineer(ctx, engineerID)
	if err != nil {
		return nil, err
	}

	if engineer.Location == nil {
		return nil, apperrors.InvalidInput("Engineer location is required for nearby search")
	}

	bookings, err := s.bookingRepo.FindNearby(ctx, engineer.Location, s.cfg.SearchRadiusMeters)
	if err != nil {
		s.cfg.Log.Error("Nearby booking search failed", "engineer_id", engineerID, "error", err)
		return nil, apperrors.Internal("Failed to search nearby bookings", err)
	}

	s.cfg.Log.Debug("Nearby booking search completed",
		"engineer_id", engineerID,
		"radius_meters", s.cfg.SearchRadiusMeters,
		"count", len(bookings),
	)
	return bookings, nil
}

// Claim races the engineer against everyone else for one booking. The
// store's conditional update is the only serialization point; losing is
// a 409, and the winner's accepted counter is bumped best-effort
// afterwards without ever rolling back the claim.
func (s *assignmentService) Claim(ctx context.Context, engineerID, bookingID string) (*model.Booking, error) {
	engineer, err := s.lookupEngineer(ctx, engineerID)
	if err != nil {
		return nil, err
	}

	booking, err := s.bookingRepo.Claim(ctx, bookingID, engineer.ID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotClaimable) {
			return nil, apperrors.Conflict("Booking already claimed or not available")
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		s.cfg.Log.Error("Claim failed", "engineer_id", engineerID, "booking_id", bookingID, "error", err)
		return nil, apperrors.Internal("Failed to claim booking", err)
	}

	if err := s.engineerRepo.IncrementAccepted(ctx, engineer.ID); err != nil {
		s.cfg.Log.Warn("Failed to increment accepted count after claim",
			"engineer_id", engineerID,
			"booking_id", bookingID,
			"error", err,
		)
	}

	s.cfg.Log.Info("Booking claimed",
		"engineer_id", engineerID,
		"booking_id", bookingID,
	)

	s.publisher.Publish(ctx, events.TypeBookingAssigned, booking)
	return booking, nil
}

// MarkSurveyDone accepts exactly one target status. Ownership is checked
// in the store; a mismatched engineer sees not-found, never a hint that
// the booking exists.
func (s *assignmentService) MarkSurveyDone(ctx context.Context, engineerID, bookingID string, target model.BookingStatus) (*model.Booking, error) {
	if engineerID == "" {
		return nil, apperrors.InvalidInput("Engineer ID cannot be empty")
	}
	if target != model.StatusSurveyDone {
		return nil, apperrors.InvalidInput("Only 'Survey Done' is accepted as a status update")
	}

	booking, err := s.bookingRepo.MarkSurveyDone(ctx, bookingID, engineerID)
	if err != nil {
		return nil, s.mapAssigneeError(err, bookingID)
	}

	s.cfg.Log.Info("Booking survey marked done",
		"engineer_id", engineerID,
		"booking_id", bookingID,
	)

	s.publisher.Publish(ctx, events.TypeBookingSurveyDone, booking)
	return booking, nil
}

func (s *assignmentService) Complete(ctx context.Context, engineerID, bookingID string, req *model.CompletionRequest) (*model.Booking, error) {
	if engineerID == "" {
		return nil, apperrors.InvalidInput("Engineer ID cannot be empty")
	}

	if err := s.validator.ValidateCompletion(req); err != nil {
		s.cfg.Log.Warn("Completion validation failed", "booking_id", bookingID, "error", err)
		return nil, apperrors.Validation("Completion document is required", map[string]any{"error": err.Error()})
	}

	originalName := req.DocumentOriginalName
	if originalName == "" {
		originalName = req.DocumentFilename
	}

	booking, err := s.bookingRepo.Complete(ctx, bookingID, engineerID, req.DocumentFilename, originalName)
	if err != nil {
		return nil, s.mapAssigneeError(err, bookingID)
	}

	s.cfg.Log.Info("Booking completed",
		"engineer_id", engineerID,
		"booking_id", bookingID,
		"document", req.DocumentFilename,
	)

	s.publisher.Publish(ctx, events.TypeBookingCompleted, booking)
	return booking, nil
}

// MyJobs lists the engineer's active work: claimed bookings that have
// not been completed yet.
func (s *assignmentService) MyJobs(ctx context.Context, engineerID string) ([]*model.Booking, error) {
	engineer, err := s.lookupEngineer(ctx, engineerID)
	if err != nil {
		return nil, err
	}

	bookings, err := s.bookingRepo.FindByAssignee(ctx, engineer.ID, []model.BookingStatus{
		model.StatusAssigned,
		model.StatusSurveyDone,
	})
	if err != nil {
		s.cfg.Log.Error("Failed to list assigned bookings", "engineer_id", engineerID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve assigned bookings", err)
	}

	return bookings, nil
}

func (s *assignmentService) lookupEngineer(ctx context.Context, engineerID string) (*model.Engineer, error) {
	if engineerID == "" {
		return nil, apperrors.InvalidInput("Engineer ID cannot be empty")
	}

	engineer, err := s.engineerRepo.FindByID(ctx, engineerID)
	if err != nil {
		if errors.Is(err, engineerserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Engineer", engineerID)
		}
		if errors.Is(err, engineerserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid engineer ID format")
		}
		s.cfg.Log.Error("Engineer lookup failed", "id", engineerID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve engineer", err)
	}

	return engineer, nil
}

func (s *assignmentService) mapAssigneeError(err error, bookingID string) error {
	if errors.Is(err, bookingserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Booking", bookingID)
	}
	if errors.Is(err, bookingserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid booking ID format")
	}
	s.cfg.Log.Error("Assigned booking update failed", "booking_id", bookingID, "error", err)
	return apperrors.Internal("Failed to update booking", err)
}
