package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/garageops/dispatch-service/internal/domain"
	"github.com/garageops/dispatch-service/internal/events"
	"github.com/garageops/dispatch-service/internal/repository"
	apperrors "github.com/garageops/dispatch-service/pkg/util"
)

func newRequestFixture(t *testing.T) (*RequestService, *fakeRequestRepo) {
	t.Helper()
	requests := newFakeRequestRepo()
	svc := NewRequestService(requests, events.NewInMemoryDispatcher(), func() time.Time {
		return time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	})
	return svc, requests
}

func TestCreateRequestSeedsHistory(t *testing.T) {
	svc, _ := newRequestFixture(t)

	request, err := svc.CreateRequest(context.Background(), "cust-1", CreateRequestInput{
		Yard:        testYard,
		CarDetails:  domain.CarDetails{Make: "Isuzu", Model: "FRR", VehicleType: "truck"},
		ServiceType: domain.ServiceTypeEngine,
		Description: "engine overheating under load",
	})
	require.NoError(t, err)
	require.Equal(t, domain.RequestStatusPending, request.Status)
	require.Len(t, request.History, 1)
	require.Equal(t, "Request created", request.History[0].Action)
	require.Equal(t, "cust-1", request.History[0].By)
}

func TestCreateRequestValidation(t *testing.T) {
	svc, _ := newRequestFixture(t)

	_, err := svc.CreateRequest(context.Background(), "cust-1", CreateRequestInput{
		Yard:        testYard,
		Description: "   ",
	})
	var de *apperrors.DomainError
	require.ErrorAs(t, err, &de)
	require.Equal(t, "VALIDATION_FAILED", de.Code)

	_, err = svc.CreateRequest(context.Background(), "cust-1", CreateRequestInput{
		Description: "no yard location",
	})
	require.ErrorAs(t, err, &de)
	require.Equal(t, "VALIDATION_FAILED", de.Code)
}

func TestSubmitReportMovesToReportSubmitted(t *testing.T) {
	svc, requests := newRequestFixture(t)
	request := seedRequest(t, requests, func(r *domain.ServiceRequest) {
		r.Status = domain.RequestStatusInProgress
	})

	updated, err := svc.SubmitReport(context.Background(), request.ID, "tech-1", ReportInput{
		InspectionNotes: "worn pads both axles",
		PartsUsed:       []domain.PartUsage{{PartID: "part-pads", Quantity: 2}},
		LaborHours:      2.5,
	})
	require.NoError(t, err)
	require.Equal(t, domain.RequestStatusReportSubmitted, updated.Status)
	require.Equal(t, 2.5, updated.LaborHours)
	require.Equal(t, "Work report submitted", updated.History[0].Action)
}

func TestSubmitReportRejectedBeforeScheduling(t *testing.T) {
	svc, requests := newRequestFixture(t)
	request := seedRequest(t, requests, nil)

	_, err := svc.SubmitReport(context.Background(), request.ID, "tech-1", ReportInput{})
	var de *apperrors.DomainError
	require.ErrorAs(t, err, &de)
	require.Equal(t, "PRECONDITION_FAILED", de.Code)
}

func TestCancelRequest(t *testing.T) {
	svc, requests := newRequestFixture(t)
	request := seedRequest(t, requests, func(r *domain.ServiceRequest) {
		r.Status = domain.RequestStatusQuoted
	})

	updated, err := svc.CancelRequest(context.Background(), request.ID, "cust-1")
	require.NoError(t, err)
	require.Equal(t, domain.RequestStatusCancelled, updated.Status)
}

func TestCancelCompletedRequestRejected(t *testing.T) {
	svc, requests := newRequestFixture(t)
	request := seedRequest(t, requests, func(r *domain.ServiceRequest) {
		r.Status = domain.RequestStatusCompleted
	})

	_, err := svc.CancelRequest(context.Background(), request.ID, "cust-1")
	var de *apperrors.DomainError
	require.ErrorAs(t, err, &de)
	require.Equal(t, "PRECONDITION_FAILED", de.Code)
}

func TestListRequestsFilters(t *testing.T) {
	svc, requests := newRequestFixture(t)
	seedRequest(t, requests, func(r *domain.ServiceRequest) {
		r.CustomerID = "cust-1"
		r.Status = domain.RequestStatusPending
	})
	seedRequest(t, requests, func(r *domain.ServiceRequest) {
		r.CustomerID = "cust-2"
		r.Status = domain.RequestStatusCompleted
	})

	customer := "cust-1"
	out, err := svc.ListRequests(context.Background(), repository.RequestFilter{CustomerID: &customer})
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "cust-1", out[0].CustomerID)

	out, err = svc.ListRequests(context.Background(), repository.RequestFilter{
		Statuses: []domain.RequestStatus{domain.RequestStatusCompleted},
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "cust-2", out[0].CustomerID)
}
