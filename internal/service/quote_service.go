package service

import (
	"context"
	"errors"
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

// QuoteService prices reported work and drives the approval/close tail of the
// request lifecycle.
type QuoteService struct {
	requests   repository.RequestRepository
	parts      repository.PartRepository
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	cfg        config.DispatchConfig
	now        Clock
}

// QuoteDependencies bundles collaborators.
type QuoteDependencies struct {
	RequestRepo repository.RequestRepository
	PartRepo    repository.PartRepository
	Dispatcher  events.Dispatcher
	Metrics     *observability.Metrics
	Logger      *zap.Logger
	Now         Clock
}

// NewQuoteService creates the service.
func NewQuoteService(cfg config.DispatchConfig, deps QuoteDependencies) *QuoteService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuoteService{
		requests:   deps.RequestRepo,
		parts:      deps.PartRepo,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
		cfg:        cfg,
		now:        now,
	}
}

// GenerateQuote prices the reported parts and labor into a fresh quote,
// replacing any previous one. Parts missing from the catalog are skipped the
// way the pricing pipeline always has; the remaining lines still price.
func (s *QuoteService) GenerateQuote(ctx context.Context, requestID string) (*domain.ServiceRequest, error) {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	lines := make([]dispatch.PartLine, 0, len(request.PartsUsed))
	for _, used := range request.PartsUsed {
		part, err := s.parts.GetByID(ctx, used.PartID)
		if err != nil {
			var de *apperrors.DomainError
			if errors.As(err, &de) && de.Code == "NOT_FOUND" {
				s.logger.Warn("part missing from catalog, skipping quote line",
					zap.String("request_id", requestID),
					zap.String("part_id", used.PartID),
				)
				continue
			}
			return nil, err
		}
		lines = append(lines, dispatch.PartLine{Part: *part, Quantity: used.Quantity})
	}

	quote, _ := dispatch.BuildQuote(lines, request.LaborHours, s.cfg.LaborRatePerHour, s.cfg.Currency)
	request.Quote = &quote
	request.Status = domain.RequestStatusQuoted
	request.AppendHistory("Quote generated", domain.SystemActor, s.now())

	if err := s.requests.Update(ctx, request); err != nil {
		return nil, err
	}

	s.metrics.RecordOperation("quote", "ok")
	s.publish(ctx, events.EventQuoteGenerated, request.ID, domain.SystemActor, events.QuoteGeneratedPayload{
		Amount:   quote.Amount,
		Currency: quote.Currency,
	})

	return request, nil
}

// ApproveResult reports the approval outcome.
type ApproveResult struct {
	RequestID string `json:"request_id"`
	Approved  bool   `json:"approved"`
}

// ApproveQuote records the customer's decision. Approval moves the request to
// approved and stamps the quote; rejection keeps it quoted and leaves the
// approval timestamp unset.
func (s *QuoteService) ApproveQuote(ctx context.Context, requestID string, approved bool, actorID string) (*ApproveResult, error) {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.Quote == nil {
		return nil, apperrors.NewNoQuoteToApprove(requestID)
	}

	request.Quote.Approved = approved
	if approved {
		at := s.now()
		request.Quote.ApprovedAt = &at
		request.Status = domain.RequestStatusApproved
		request.AppendHistory("Quote approved", actorID, s.now())
	} else {
		request.Quote.ApprovedAt = nil
		request.Status = domain.RequestStatusQuoted
		request.AppendHistory("Quote rejected", actorID, s.now())
	}

	if err := s.requests.Update(ctx, request); err != nil {
		return nil, err
	}

	s.metrics.RecordOperation("approve_quote", "ok")
	s.publish(ctx, events.EventQuoteApproved, request.ID, actorID, events.QuoteApprovedPayload{Approved: approved})

	return &ApproveResult{RequestID: request.ID, Approved: approved}, nil
}

// CloseResult reports the close outcome.
type CloseResult struct {
	RequestID string               `json:"request_id"`
	Status    domain.RequestStatus `json:"status"`
}

// CloseJob marks the request completed regardless of its current state. The
// unconditioned transition is deliberate: closing is a management override
// and the permissive behavior is covered by tests.
func (s *QuoteService) CloseJob(ctx context.Context, requestID string) (*CloseResult, error) {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	oldStatus := request.Status
	request.Status = domain.RequestStatusCompleted
	request.AppendHistory("Job closed", domain.SystemActor, s.now())

	if err := s.requests.Update(ctx, request); err != nil {
		return nil, err
	}

	s.metrics.RecordOperation("close", "ok")
	s.publish(ctx, events.EventJobClosed, request.ID, domain.SystemActor, events.StatusChangedPayload{
		OldStatus: oldStatus,
		NewStatus: domain.RequestStatusCompleted,
	})

	return &CloseResult{RequestID: request.ID, Status: request.Status}, nil
}

func (s *QuoteService) publish(ctx context.Context, eventType events.EventType, requestID, actorID string, payload interface{}) {
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
