package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/garageops/dispatch-service/internal/domain"
	"github.com/garageops/dispatch-service/internal/events"
	"github.com/garageops/dispatch-service/internal/observability"
	apperrors "github.com/garageops/dispatch-service/pkg/util"
)

func newQuoteFixture(t *testing.T, parts ...domain.Part) (*QuoteService, *fakeRequestRepo) {
	t.Helper()
	requests := newFakeRequestRepo()
	svc := NewQuoteService(testDispatchConfig(), QuoteDependencies{
		RequestRepo: requests,
		PartRepo:    newFakePartRepo(parts...),
		Dispatcher:  events.NewInMemoryDispatcher(),
		Metrics:     observability.NewMetrics(),
		Now:         func() time.Time { return time.Date(2026, 3, 2, 16, 0, 0, 0, time.UTC) },
	})
	return svc, requests
}

func TestGenerateQuotePricesPartsAndLabor(t *testing.T) {
	svc, requests := newQuoteFixture(t,
		domain.Part{ID: "part-pads", Name: "Brake pads", Price: 4500},
		domain.Part{ID: "part-fluid", Name: "Brake fluid", Price: 650},
	)
	request := seedRequest(t, requests, func(r *domain.ServiceRequest) {
		r.Status = domain.RequestStatusReportSubmitted
		r.PartsUsed = []domain.PartUsage{
			{PartID: "part-pads", Quantity: 2},
			{PartID: "part-fluid", Quantity: 2},
		}
		r.LaborHours = 3
	})

	updated, err := svc.GenerateQuote(context.Background(), request.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.Quote)
	require.Equal(t, 13300.0, updated.Quote.Amount)
	require.Equal(t, "KES", updated.Quote.Currency)
	require.False(t, updated.Quote.Approved)
	require.Nil(t, updated.Quote.ApprovedAt)
	require.Equal(t, domain.RequestStatusQuoted, updated.Status)
	require.Len(t, updated.History, 1)
	require.Equal(t, "Quote generated", updated.History[0].Action)
}

func TestGenerateQuoteSkipsMissingParts(t *testing.T) {
	svc, requests := newQuoteFixture(t,
		domain.Part{ID: "part-pads", Name: "Brake pads", Price: 4500},
	)
	request := seedRequest(t, requests, func(r *domain.ServiceRequest) {
		r.Status = domain.RequestStatusReportSubmitted
		r.PartsUsed = []domain.PartUsage{
			{PartID: "part-pads", Quantity: 1},
			{PartID: "part-ghost", Quantity: 3},
		}
	})

	updated, err := svc.GenerateQuote(context.Background(), request.ID)
	require.NoError(t, err)
	require.Equal(t, 4500.0, updated.Quote.Amount)
}

func TestGenerateQuoteReplacesPreviousQuote(t *testing.T) {
	svc, requests := newQuoteFixture(t,
		domain.Part{ID: "part-pads", Name: "Brake pads", Price: 4500},
	)
	request := seedRequest(t, requests, func(r *domain.ServiceRequest) {
		r.Status = domain.RequestStatusQuoted
		r.PartsUsed = []domain.PartUsage{{PartID: "part-pads", Quantity: 1}}
		r.Quote = &domain.Quote{Amount: 99999, Currency: "KES"}
	})

	updated, err := svc.GenerateQuote(context.Background(), request.ID)
	require.NoError(t, err)
	require.Equal(t, 4500.0, updated.Quote.Amount)
}

func TestApproveQuote(t *testing.T) {
	svc, requests := newQuoteFixture(t)
	request := seedRequest(t, requests, func(r *domain.ServiceRequest) {
		r.Status = domain.RequestStatusQuoted
		r.Quote = &domain.Quote{Amount: 4500, Currency: "KES"}
	})

	result, err := svc.ApproveQuote(context.Background(), request.ID, true, "cust-1")
	require.NoError(t, err)
	require.True(t, result.Approved)

	stored, _ := requests.GetByID(context.Background(), request.ID)
	require.Equal(t, domain.RequestStatusApproved, stored.Status)
	require.True(t, stored.Quote.Approved)
	require.NotNil(t, stored.Quote.ApprovedAt)
	require.Equal(t, "Quote approved", stored.History[0].Action)
	require.Equal(t, "cust-1", stored.History[0].By)
}

func TestRejectQuoteKeepsRequestQuoted(t *testing.T) {
	svc, requests := newQuoteFixture(t)
	request := seedRequest(t, requests, func(r *domain.ServiceRequest) {
		r.Status = domain.RequestStatusQuoted
		r.Quote = &domain.Quote{Amount: 4500, Currency: "KES"}
	})

	result, err := svc.ApproveQuote(context.Background(), request.ID, false, "cust-1")
	require.NoError(t, err)
	require.False(t, result.Approved)

	stored, _ := requests.GetByID(context.Background(), request.ID)
	require.Equal(t, domain.RequestStatusQuoted, stored.Status)
	require.False(t, stored.Quote.Approved)
	require.Nil(t, stored.Quote.ApprovedAt)
	require.Equal(t, "Quote rejected", stored.History[0].Action)
}

func TestApproveQuoteWithoutQuote(t *testing.T) {
	svc, requests := newQuoteFixture(t)
	request := seedRequest(t, requests, nil)

	_, err := svc.ApproveQuote(context.Background(), request.ID, true, "cust-1")
	var de *apperrors.DomainError
	require.ErrorAs(t, err, &de)
	require.Equal(t, "NO_QUOTE_TO_APPROVE", de.Code)

	// The failed approval must not touch the stored request.
	stored, _ := requests.GetByID(context.Background(), request.ID)
	require.Equal(t, domain.RequestStatusPending, stored.Status)
	require.Empty(t, stored.History)
	require.Equal(t, int64(1), stored.Revision)
}

func TestCloseJobCompletesFromAnyStatus(t *testing.T) {
	for _, status := range []domain.RequestStatus{
		domain.RequestStatusPending,
		domain.RequestStatusAssigned,
		domain.RequestStatusApproved,
	} {
		svc, requests := newQuoteFixture(t)
		request := seedRequest(t, requests, func(r *domain.ServiceRequest) {
			r.Status = status
		})

		result, err := svc.CloseJob(context.Background(), request.ID)
		require.NoError(t, err)
		require.Equal(t, domain.RequestStatusCompleted, result.Status)

		stored, _ := requests.GetByID(context.Background(), request.ID)
		require.Equal(t, domain.RequestStatusCompleted, stored.Status)
		require.Equal(t, "Job closed", stored.History[0].Action)
		require.Equal(t, domain.SystemActor, stored.History[0].By)
	}
}
