package service

import (
	"context"
	"time"

	"github.com/garageops/dispatch-service/internal/config"
	"github.com/garageops/dispatch-service/internal/domain"
	"github.com/garageops/dispatch-service/internal/repository"
	apperrors "github.com/garageops/dispatch-service/pkg/util"
)

// TechnicianService manages technician profiles.
type TechnicianService struct {
	technicians repository.TechnicianRepository
	cfg         config.DispatchConfig
	now         Clock
}

// NewTechnicianService creates the service.
func NewTechnicianService(technicians repository.TechnicianRepository, cfg config.DispatchConfig, now Clock) *TechnicianService {
	if now == nil {
		now = time.Now
	}
	return &TechnicianService{technicians: technicians, cfg: cfg, now: now}
}

// CreateProfileInput describes a new technician profile.
type CreateProfileInput struct {
	UserID       string
	Location     domain.GeoPoint
	Skills       []string
	WorkHours    domain.WorkHours
	MaxDailyJobs int
	Rating       float64
}

// CreateProfile registers a technician profile with unset fields filled from
// the dispatch defaults.
func (s *TechnicianService) CreateProfile(ctx context.Context, input CreateProfileInput) (*domain.Technician, error) {
	if input.UserID == "" {
		return nil, apperrors.NewValidationError("user id required", nil)
	}
	if existing, err := s.technicians.GetByUserID(ctx, input.UserID); err == nil && existing != nil {
		return nil, apperrors.NewConflict("technician profile already exists", map[string]any{"user_id": input.UserID})
	}

	tech := &domain.Technician{
		UserID:       input.UserID,
		Location:     input.Location,
		Skills:       input.Skills,
		WorkHours:    input.WorkHours,
		MaxDailyJobs: input.MaxDailyJobs,
		Rating:       input.Rating,
		Active:       true,
	}
	s.applyDefaults(tech)

	if err := s.technicians.Create(ctx, tech); err != nil {
		return nil, err
	}
	return tech, nil
}

// GetOrCreateProfile returns the profile for a user, creating a default one
// on first use so scheduling never fails for a technician without setup.
func (s *TechnicianService) GetOrCreateProfile(ctx context.Context, userID string) (*domain.Technician, error) {
	tech, err := s.technicians.GetByUserID(ctx, userID)
	if err == nil {
		return tech, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	tech = &domain.Technician{
		UserID: userID,
		Active: true,
	}
	s.applyDefaults(tech)

	if err := s.technicians.Create(ctx, tech); err != nil {
		return nil, err
	}
	return tech, nil
}

// GetByID loads one technician.
func (s *TechnicianService) GetByID(ctx context.Context, id string) (*domain.Technician, error) {
	return s.technicians.GetByID(ctx, id)
}

// List returns technician profiles.
func (s *TechnicianService) List(ctx context.Context, limit, offset int64) ([]domain.Technician, error) {
	return s.technicians.List(ctx, limit, offset)
}

func (s *TechnicianService) applyDefaults(tech *domain.Technician) {
	if tech.MaxDailyJobs <= 0 {
		tech.MaxDailyJobs = s.cfg.DefaultMaxDailyJobs
	}
	if tech.Rating <= 0 {
		tech.Rating = 5
	}
	if tech.WorkHours.Start == "" {
		tech.WorkHours.Start = s.cfg.DefaultWorkStart
	}
	if tech.WorkHours.End == "" {
		tech.WorkHours.End = s.cfg.DefaultWorkEnd
	}
}
