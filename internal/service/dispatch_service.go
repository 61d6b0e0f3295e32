package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/garageops/dispatch-service/internal/config"
	"github.com/garageops/dispatch-service/internal/dispatch"
	"github.com/garageops/dispatch-service/internal/domain"
	"github.com/garageops/dispatch-service/internal/events"
	"github.com/garageops/dispatch-service/internal/observability"
	"github.com/garageops/dispatch-service/internal/repository"
	apperrors "github.com/garageops/dispatch-service/pkg/util"
)

// Fallback labels recorded when the selector relaxes its filters.
const (
	fallbackSkillGeo  = "skill_geo"
	fallbackGeoOnly   = "geo_only"
	fallbackLeastBusy = "least_busy"
)

// DispatchService runs the triage, assignment and scheduling pipeline.
type DispatchService struct {
	requests    repository.RequestRepository
	technicians repository.TechnicianRepository
	tx          TxRunner
	lease       Lease
	dispatcher  events.Dispatcher
	metrics     *observability.Metrics
	logger      *zap.Logger
	cfg         config.DispatchConfig
	now         Clock
}

// DispatchDependencies bundles collaborators.
type DispatchDependencies struct {
	RequestRepo    repository.RequestRepository
	TechnicianRepo repository.TechnicianRepository
	Tx             TxRunner
	Lease          Lease
	Dispatcher     events.Dispatcher
	Metrics        *observability.Metrics
	Logger         *zap.Logger
	Now            Clock
}

// NewDispatchService creates the service.
func NewDispatchService(cfg config.DispatchConfig, deps DispatchDependencies) *DispatchService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DispatchService{
		requests:    deps.RequestRepo,
		technicians: deps.TechnicianRepo,
		tx:          deps.Tx,
		lease:       deps.Lease,
		dispatcher:  deps.Dispatcher,
		metrics:     deps.Metrics,
		logger:      logger,
		cfg:         cfg,
		now:         now,
	}
}

// TriageResult reports the computed priority.
type TriageResult struct {
	RequestID   string             `json:"request_id"`
	Priority    int                `json:"priority"`
	ServiceType domain.ServiceType `json:"service_type"`
	Description string             `json:"description"`
}

// TriageRequest recomputes a request's priority from its service type and
// description. Re-triage overwrites the previous value.
func (s *DispatchService) TriageRequest(ctx context.Context, requestID, actorID string) (*TriageResult, error) {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	priority := dispatch.TriagePriority(string(request.ServiceType), request.Description)
	request.Priority = priority
	request.AppendHistory(fmt.Sprintf("Triaged as priority %d/10", priority), actorID, s.now())

	if err := s.requests.Update(ctx, request); err != nil {
		return nil, err
	}

	s.metrics.RecordOperation("triage", "ok")
	s.publish(ctx, events.EventRequestTriaged, request.ID, actorID, events.RequestTriagedPayload{
		Priority:    priority,
		ServiceType: request.ServiceType,
	})

	return &TriageResult{
		RequestID:   request.ID,
		Priority:    priority,
		ServiceType: request.ServiceType,
		Description: request.Description,
	}, nil
}

// AssignJob selects the best technician for a request and binds the two
// inside one transaction. The candidate chain relaxes in order: skill plus
// radius, radius only, then the globally least-busy active technician.
func (s *DispatchService) AssignJob(ctx context.Context, requestID, actorID string) (*domain.ServiceRequest, error) {
	token, err := s.lease.Acquire(ctx, requestID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = s.lease.Release(ctx, requestID, token) }()

	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	tech, score, fallback, err := s.selectTechnician(ctx, request)
	if err != nil {
		s.metrics.RecordOperation("assign", "no_technician")
		return nil, err
	}

	request.AssignedTechnician = tech.ID
	request.Status = domain.RequestStatusAssigned
	request.AppendHistory(fmt.Sprintf("Assigned to technician %s", tech.ID), actorID, s.now())
	tech.CurrentJobs++

	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.requests.Update(txCtx, request); err != nil {
			return err
		}
		return s.technicians.Update(txCtx, tech)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordOperation("assign", "ok")
	s.logger.Info("technician assigned",
		zap.String("request_id", request.ID),
		zap.String("technician_id", tech.ID),
		zap.Float64("score", score),
		zap.String("fallback", fallback),
	)
	s.publish(ctx, events.EventTechnicianAssigned, request.ID, actorID, events.TechnicianAssignedPayload{
		TechnicianID: tech.ID,
		Score:        score,
		Fallback:     fallback,
	})

	return request, nil
}

// selectTechnician walks the fallback chain and returns the winner with its
// score and the chain stage that produced it.
func (s *DispatchService) selectTechnician(ctx context.Context, request *domain.ServiceRequest) (*domain.Technician, float64, string, error) {
	maxMeters := s.cfg.SearchRadiusKM * 1000
	skill := request.CarDetails.VehicleType

	stages := []struct {
		label string
		query repository.NearQuery
	}{
		{fallbackSkillGeo, repository.NearQuery{Location: request.Yard.Location, MaxMeters: maxMeters, Skill: &skill}},
		{fallbackGeoOnly, repository.NearQuery{Location: request.Yard.Location, MaxMeters: maxMeters}},
	}
	if skill == "" {
		stages = stages[1:]
	}

	weights := dispatch.Weights{
		Distance: s.cfg.DistanceWeight,
		Earliest: s.cfg.EarliestWeight,
		Workload: s.cfg.WorkloadWeight,
		Rating:   s.cfg.RatingWeight,
	}

	for _, stage := range stages {
		techs, err := s.technicians.FindNear(ctx, stage.query)
		if err != nil {
			return nil, 0, "", err
		}
		candidates := make([]dispatch.Candidate, 0, len(techs))
		for _, t := range techs {
			candidates = append(candidates, dispatch.NewCandidate(t, request.Yard.Location))
		}
		if best, score, ok := dispatch.PickBest(candidates, weights, s.cfg.SearchRadiusKM); ok {
			winner := best.Technician
			return &winner, score, stage.label, nil
		}
	}

	tech, err := s.technicians.FindLeastBusy(ctx)
	if err != nil {
		var de *apperrors.DomainError
		if errors.As(err, &de) && de.Code == "NOT_FOUND" {
			return nil, 0, "", apperrors.NewNoTechnicianAvailable(map[string]any{"request_id": request.ID})
		}
		return nil, 0, "", err
	}
	c := dispatch.NewCandidate(*tech, request.Yard.Location)
	return tech, dispatch.Score(c, weights, s.cfg.SearchRadiusKM), fallbackLeastBusy, nil
}

// ScheduleResult reports the computed slot.
type ScheduleResult struct {
	RequestID    string    `json:"request_id"`
	TechnicianID string    `json:"technician_id"`
	ScheduledAt  time.Time `json:"scheduled_at"`
	ScheduledEnd time.Time `json:"scheduled_end"`
	StartTime    string    `json:"start_time"`
	EndTime      string    `json:"end_time"`
}

// ScheduleJob computes the earliest feasible slot on the assigned
// technician's queue and commits both sides together.
func (s *DispatchService) ScheduleJob(ctx context.Context, requestID, actorID string) (*ScheduleResult, error) {
	token, err := s.lease.Acquire(ctx, requestID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = s.lease.Release(ctx, requestID, token) }()

	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.AssignedTechnician == "" {
		s.metrics.RecordOperation("schedule", "precondition_failed")
		return nil, apperrors.NewPreconditionFailed("no technician assigned to this request", map[string]any{"request_id": requestID})
	}

	tech, err := s.technicians.GetByID(ctx, request.AssignedTechnician)
	if err != nil {
		return nil, err
	}

	slot, err := dispatch.NextSlot(tech, s.now(), s.cfg.JobDurationMins, s.cfg.BreakMins)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	tech.AssignedJobs = append(tech.AssignedJobs, domain.AssignedJob{
		RequestID: request.ID,
		Date:      slot.Date,
		StartTime: slot.StartTime,
		EndTime:   slot.EndTime,
	})
	tech.CurrentJobs++

	request.ScheduledStart = &slot.StartAt
	request.ScheduledEnd = &slot.EndAt
	request.Status = domain.RequestStatusInProgress
	request.AppendHistory(fmt.Sprintf("Scheduled for %s", slot.StartAt.Format(time.RFC3339)), actorID, s.now())

	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.requests.Update(txCtx, request); err != nil {
			return err
		}
		return s.technicians.Update(txCtx, tech)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordOperation("schedule", "ok")
	s.publish(ctx, events.EventJobScheduled, request.ID, actorID, events.JobScheduledPayload{
		TechnicianID:   tech.ID,
		ScheduledStart: slot.StartAt,
		ScheduledEnd:   slot.EndAt,
	})

	return &ScheduleResult{
		RequestID:    request.ID,
		TechnicianID: tech.ID,
		ScheduledAt:  slot.StartAt,
		ScheduledEnd: slot.EndAt,
		StartTime:    slot.StartTime,
		EndTime:      slot.EndTime,
	}, nil
}

func (s *DispatchService) publish(ctx context.Context, eventType events.EventType, requestID, actorID string, payload interface{}) {
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
