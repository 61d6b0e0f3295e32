package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/garageops/dispatch-service/internal/domain"
	"github.com/garageops/dispatch-service/internal/events"
	"github.com/garageops/dispatch-service/internal/repository"
	apperrors "github.com/garageops/dispatch-service/pkg/util"
)

// RequestService owns service request CRUD and the customer-facing
// transitions (report submission, cancellation).
type RequestService struct {
	requests   repository.RequestRepository
	dispatcher events.Dispatcher
	now        Clock
}

// NewRequestService creates the service.
func NewRequestService(requests repository.RequestRepository, dispatcher events.Dispatcher, now Clock) *RequestService {
	if now == nil {
		now = time.Now
	}
	return &RequestService{requests: requests, dispatcher: dispatcher, now: now}
}

// CreateRequestInput describes creation payload.
type CreateRequestInput struct {
	Yard                  domain.Yard
	CarDetails            domain.CarDetails
	ServiceType           domain.ServiceType
	Description           string
	PreferredWindow       *domain.TimeWindow
	EstimatedDurationMins int
	TravelBufferMins      int
}

// CreateRequest registers a new service request in pending state with a
// seeded audit trail.
func (s *RequestService) CreateRequest(ctx context.Context, customerID string, input CreateRequestInput) (*domain.ServiceRequest, error) {
	if strings.TrimSpace(input.Description) == "" {
		return nil, apperrors.NewValidationError("description required", nil)
	}
	if len(input.Yard.Location.Coordinates) != 2 {
		return nil, apperrors.NewValidationError("yard location required", nil)
	}

	request := &domain.ServiceRequest{
		CustomerID:            customerID,
		Yard:                  input.Yard,
		CarDetails:            input.CarDetails,
		ServiceType:           input.ServiceType,
		Description:           strings.TrimSpace(input.Description),
		PreferredWindow:       input.PreferredWindow,
		EstimatedDurationMins: input.EstimatedDurationMins,
		TravelBufferMins:      input.TravelBufferMins,
		Status:                domain.RequestStatusPending,
	}
	request.AppendHistory("Request created", customerID, s.now())

	if err := s.requests.Create(ctx, request); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventRequestCreated, request.ID, customerID, nil)
	return request, nil
}

// GetRequest loads one request.
func (s *RequestService) GetRequest(ctx context.Context, id string) (*domain.ServiceRequest, error) {
	return s.requests.GetByID(ctx, id)
}

// ListRequests returns requests matching the filter.
func (s *RequestService) ListRequests(ctx context.Context, filter repository.RequestFilter) ([]domain.ServiceRequest, error) {
	return s.requests.List(ctx, filter)
}

// ReportInput carries the field work report.
type ReportInput struct {
	InspectionNotes string
	PartsUsed       []domain.PartUsage
	LaborHours      float64
}

// SubmitReport records field findings and moves the request to
// report_submitted so quoting can run.
func (s *RequestService) SubmitReport(ctx context.Context, requestID, actorID string, input ReportInput) (*domain.ServiceRequest, error) {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(request.Status, domain.RequestStatusReportSubmitted) {
		return nil, apperrors.NewPreconditionFailed("work report requires a scheduled job", map[string]any{
			"request_id": requestID,
			"status":     request.Status,
		})
	}

	request.InspectionNotes = input.InspectionNotes
	request.PartsUsed = input.PartsUsed
	request.LaborHours = input.LaborHours
	request.Status = domain.RequestStatusReportSubmitted
	request.AppendHistory("Work report submitted", actorID, s.now())

	if err := s.requests.Update(ctx, request); err != nil {
		return nil, err
	}
	return request, nil
}

// CancelRequest cancels a request from any pre-completion state.
func (s *RequestService) CancelRequest(ctx context.Context, requestID, actorID string) (*domain.ServiceRequest, error) {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(request.Status, domain.RequestStatusCancelled) {
		return nil, apperrors.NewPreconditionFailed("request can no longer be cancelled", map[string]any{
			"request_id": requestID,
			"status":     request.Status,
		})
	}

	oldStatus := request.Status
	request.Status = domain.RequestStatusCancelled
	request.AppendHistory("Request cancelled", actorID, s.now())

	if err := s.requests.Update(ctx, request); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventRequestCancelled, request.ID, actorID, events.StatusChangedPayload{
		OldStatus: oldStatus,
		NewStatus: domain.RequestStatusCancelled,
	})
	return request, nil
}

// DeleteRequest removes a request outright.
func (s *RequestService) DeleteRequest(ctx context.Context, id string) error {
	return s.requests.Delete(ctx, id)
}

func (s *RequestService) publish(ctx context.Context, eventType events.EventType, requestID, actorID string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	if actorID == "" {
		actorID = domain.SystemActor
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		RequestID: requestID,
		Actor:     actorID,
		Timestamp: s.now(),
		Payload:   payload,
	})
}
