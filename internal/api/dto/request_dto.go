package dto

import (
	"time"

	"github.com/garageops/dispatch-service/internal/domain"
)

// CreateServiceRequest payload.
type CreateServiceRequest struct {
	Yard                  domain.Yard        `json:"yard"`
	CarDetails            domain.CarDetails  `json:"car_details"`
	ServiceType           domain.ServiceType `json:"service_type"`
	Description           string             `json:"description"`
	PreferredWindow       *domain.TimeWindow `json:"preferred_window,omitempty"`
	EstimatedDurationMins int                `json:"estimated_duration_mins"`
	TravelBufferMins      int                `json:"travel_buffer_mins"`
}

// SubmitReportRequest payload.
type SubmitReportRequest struct {
	InspectionNotes string             `json:"inspection_notes"`
	PartsUsed       []domain.PartUsage `json:"parts_used"`
	LaborHours      float64            `json:"labor_hours"`
}

// ApproveQuoteRequest payload.
type ApproveQuoteRequest struct {
	Approved bool `json:"approved"`
}

// RequestListQuery captures query filters for listing endpoints.
type RequestListQuery struct {
	CustomerID         *string
	AssignedTechnician *string
	Statuses           []domain.RequestStatus
	Page               int
	PageSize           int
}

// ServiceRequestSummary response.
type ServiceRequestSummary struct {
	ID                 string               `json:"id"`
	CustomerID         string               `json:"customer_id"`
	ServiceType        domain.ServiceType   `json:"service_type"`
	Status             domain.RequestStatus `json:"status"`
	Priority           int                  `json:"priority"`
	AssignedTechnician string               `json:"assigned_technician,omitempty"`
	ScheduledStart     *time.Time           `json:"scheduled_start,omitempty"`
	CreatedAt          time.Time            `json:"created_at"`
	UpdatedAt          time.Time            `json:"updated_at"`
}

// ServiceRequestDetail provides full request info including the audit trail.
type ServiceRequestDetail struct {
	ID                 string                `json:"id"`
	CustomerID         string                `json:"customer_id"`
	Yard               domain.Yard           `json:"yard"`
	CarDetails         domain.CarDetails     `json:"car_details"`
	ServiceType        domain.ServiceType    `json:"service_type"`
	Description        string                `json:"description"`
	Status             domain.RequestStatus  `json:"status"`
	Priority           int                   `json:"priority"`
	AssignedTechnician string                `json:"assigned_technician,omitempty"`
	ScheduledStart     *time.Time            `json:"scheduled_start,omitempty"`
	ScheduledEnd       *time.Time            `json:"scheduled_end,omitempty"`
	InspectionNotes    string                `json:"inspection_notes,omitempty"`
	PartsUsed          []domain.PartUsage    `json:"parts_used,omitempty"`
	LaborHours         float64               `json:"labor_hours"`
	Quote              *domain.Quote         `json:"quote,omitempty"`
	History            []domain.HistoryEntry `json:"history"`
	CreatedAt          time.Time             `json:"created_at"`
	UpdatedAt          time.Time             `json:"updated_at"`
}

// NewRequestSummary maps the aggregate to its list representation.
func NewRequestSummary(r *domain.ServiceRequest) ServiceRequestSummary {
	return ServiceRequestSummary{
		ID:                 r.ID,
		CustomerID:         r.CustomerID,
		ServiceType:        r.ServiceType,
		Status:             r.Status,
		Priority:           r.Priority,
		AssignedTechnician: r.AssignedTechnician,
		ScheduledStart:     r.ScheduledStart,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

// NewRequestDetail maps the aggregate to its detail representation.
func NewRequestDetail(r *domain.ServiceRequest) ServiceRequestDetail {
	return ServiceRequestDetail{
		ID:                 r.ID,
		CustomerID:         r.CustomerID,
		Yard:               r.Yard,
		CarDetails:         r.CarDetails,
		ServiceType:        r.ServiceType,
		Description:        r.Description,
		Status:             r.Status,
		Priority:           r.Priority,
		AssignedTechnician: r.AssignedTechnician,
		ScheduledStart:     r.ScheduledStart,
		ScheduledEnd:       r.ScheduledEnd,
		InspectionNotes:    r.InspectionNotes,
		PartsUsed:          r.PartsUsed,
		LaborHours:         r.LaborHours,
		Quote:              r.Quote,
		History:            r.History,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}
