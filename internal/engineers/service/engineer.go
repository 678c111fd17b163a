package service

import (
	"context"
	"errors"
	"sync"

	engineerserrors "dometriks/internal/engineers/errors"
	"dometriks/internal/engineers/repository"
	"dometriks/internal/engineers/validator"
	"dometriks/pkg/config"
	apperrors "dometriks/pkg/errors"
	"dometriks/pkg/model"
)

type EngineerService interface {
	GetByID(ctx context.Context, id string) (*model.Engineer, error)
	GetAll(ctx context.Context, status model.EngineerAccountStatus, limit int, offset int64) ([]*model.Engineer, int64, error)
	UpdateLocation(ctx context.Context, id string, update *model.LocationUpdate) (*model.Engineer, error)
	UpdateStatus(ctx context.Context, id string, status model.EngineerAccountStatus) (*model.Engineer, error)
	Dashboard(ctx context.Context, id string) (*model.Dashboard, error)
}

type engineerService struct {
	repo      repository.EngineerRepository
	validator *validator.EngineerValidator
	cfg       *config.Config
}

func NewEngineerService(
	repo repository.EngineerRepository,
	validator *validator.EngineerValidator,
	cfg *config.Config,
) EngineerService {
	return &engineerService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *engineerService) GetByID(ctx context.Context, id string) (*model.Engineer, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Engineer ID cannot be empty")
	}

	engineer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(err, id)
	}

	return engineer, nil
}

func (s *engineerService) GetAll(ctx context.Context, status model.EngineerAccountStatus, limit int, offset int64) ([]*model.Engineer, int64, error) {
	var count int64
	var engineers []*model.Engineer
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, status)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count engineers", "error", errCount)
			errCount = apperrors.Internal("Failed to count engineers", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		engineers, errFind = s.repo.FindAll(ctx, status, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list engineers", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve engineers", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return engineers, count, nil
}

func (s *engineerService) UpdateLocation(ctx context.Context, id string, update *model.LocationUpdate) (*model.Engineer, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Engineer ID cannot be empty")
	}

	if err := s.validator.ValidateLocationUpdate(update); err != nil {
		s.cfg.Log.Warn("Location update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Invalid location update", map[string]any{"error": err.Error()})
	}

	engineer, err := s.repo.UpdateLocation(ctx, id, update)
	if err != nil {
		return nil, s.mapLookupError(err, id)
	}

	s.cfg.Log.Info("Engineer location updated",
		"id", id,
		"has_point", update.HasPoint(),
		"is_online_changed", update.IsOnline != nil,
	)
	return engineer, nil
}

func (s *engineerService) UpdateStatus(ctx context.Context, id string, status model.EngineerAccountStatus) (*model.Engineer, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Engineer ID cannot be empty")
	}

	if err := s.validator.ValidateAccountStatus(status); err != nil {
		s.cfg.Log.Warn("Engineer status update rejected", "id", id, "status", status)
		return nil, apperrors.Validation("Invalid engineer status", map[string]any{"error": err.Error()})
	}

	engineer, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, s.mapLookupError(err, id)
	}

	s.cfg.Log.Info("Engineer status updated", "id", id, "status", status)
	return engineer, nil
}

func (s *engineerService) Dashboard(ctx context.Context, id string) (*model.Dashboard, error) {
	engineer, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return &model.Dashboard{
		Earnings:      engineer.Earnings,
		AcceptedCount: engineer.AcceptedCount,
		RejectedCount: engineer.RejectedCount,
		IsOnline:      engineer.IsOnline,
	}, nil
}

func (s *engineerService) mapLookupError(err error, id string) error {
	if errors.Is(err, engineerserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Engineer", id)
	}
	if errors.Is(err, engineerserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid engineer ID format")
	}
	s.cfg.Log.Error("Engineer lookup failed", "id", id, "error", err)
	return apperrors.Internal("Failed to retrieve engineer", err)
}
