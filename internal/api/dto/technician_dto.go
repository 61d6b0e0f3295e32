package dto

import (
	"github.com/garageops/dispatch-service/internal/domain"
)

// CreateTechnicianRequest payload.
type CreateTechnicianRequest struct {
	UserID       string           `json:"user_id"`
	Location     domain.GeoPoint  `json:"location"`
	Skills       []string         `json:"skills"`
	WorkHours    domain.WorkHours `json:"work_hours"`
	MaxDailyJobs int              `json:"max_daily_jobs"`
	Rating       float64          `json:"rating"`
}

// TechnicianResponse exposes the profile without the revision counter.
type TechnicianResponse struct {
	ID           string               `json:"id"`
	UserID       string               `json:"user_id"`
	Location     domain.GeoPoint      `json:"location"`
	Skills       []string             `json:"skills"`
	WorkHours    domain.WorkHours     `json:"work_hours"`
	CurrentJobs  int                  `json:"current_jobs"`
	MaxDailyJobs int                  `json:"max_daily_jobs"`
	Rating       float64              `json:"rating"`
	Active       bool                 `json:"active"`
	AssignedJobs []domain.AssignedJob `json:"assigned_jobs,omitempty"`
}

// NewTechnicianResponse maps the profile.
func NewTechnicianResponse(tech *domain.Technician) TechnicianResponse {
	return TechnicianResponse{
		ID:           tech.ID,
		UserID:       tech.UserID,
		Location:     tech.Location,
		Skills:       tech.Skills,
		WorkHours:    tech.WorkHours,
		CurrentJobs:  tech.CurrentJobs,
		MaxDailyJobs: tech.MaxDailyJobs,
		Rating:       tech.Rating,
		Active:       tech.Active,
		AssignedJobs: tech.AssignedJobs,
	}
}

// CreatePartRequest payload.
type CreatePartRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	Unit        string  `json:"unit"`
}
