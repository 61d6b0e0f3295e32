package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/garageops/dispatch-service/internal/config"
	"github.com/garageops/dispatch-service/internal/domain"
	"github.com/garageops/dispatch-service/internal/events"
	"github.com/garageops/dispatch-service/internal/observability"
	apperrors "github.com/garageops/dispatch-service/pkg/util"
)

var testYard = domain.Yard{
	Name:     "Industrial Area Yard",
	Location: domain.NewGeoPoint(36.8219, -1.2921),
}

func testDispatchConfig() config.DispatchConfig {
	return config.DispatchConfig{
		SearchRadiusKM:      15,
		DistanceWeight:      0.3,
		EarliestWeight:      0.3,
		WorkloadWeight:      0.2,
		RatingWeight:        0.2,
		JobDurationMins:     180,
		BreakMins:           30,
		LaborRatePerHour:    1000,
		Currency:            "KES",
		DefaultMaxDailyJobs: 5,
		DefaultWorkStart:    "08:00",
		DefaultWorkEnd:      "17:00",
	}
}

func newDispatchFixture(t *testing.T) (*DispatchService, *fakeRequestRepo, *fakeTechnicianRepo, *fakeLease, *observability.Metrics) {
	t.Helper()
	requests := newFakeRequestRepo()
	technicians := newFakeTechnicianRepo()
	lease := newFakeLease()
	metrics := observability.NewMetrics()

	svc := NewDispatchService(testDispatchConfig(), DispatchDependencies{
		RequestRepo:    requests,
		TechnicianRepo: technicians,
		Tx:             fakeTx{},
		Lease:          lease,
		Dispatcher:     events.NewInMemoryDispatcher(),
		Metrics:        metrics,
		Now:            func() time.Time { return time.Date(2026, 3, 2, 7, 0, 0, 0, time.UTC) },
	})
	return svc, requests, technicians, lease, metrics
}

func seedRequest(t *testing.T, repo *fakeRequestRepo, mutate func(*domain.ServiceRequest)) *domain.ServiceRequest {
	t.Helper()
	request := &domain.ServiceRequest{
		CustomerID:  "cust-1",
		Yard:        testYard,
		CarDetails:  domain.CarDetails{Make: "Isuzu", Model: "FRR", VehicleType: "truck"},
		ServiceType: domain.ServiceTypeBrakes,
		Description: "brake fluid leak near the front axle",
		Status:      domain.RequestStatusPending,
	}
	if mutate != nil {
		mutate(request)
	}
	require.NoError(t, repo.Create(context.Background(), request))
	return request
}

func seedTechnician(t *testing.T, repo *fakeTechnicianRepo, mutate func(*domain.Technician)) *domain.Technician {
	t.Helper()
	tech := &domain.Technician{
		UserID:       "user-1",
		Location:     domain.NewGeoPoint(36.8219, -1.2921),
		Skills:       []string{"truck"},
		WorkHours:    domain.WorkHours{Start: "08:00", End: "17:00"},
		MaxDailyJobs: 5,
		Rating:       4,
		Active:       true,
	}
	if mutate != nil {
		mutate(tech)
	}
	require.NoError(t, repo.Create(context.Background(), tech))
	return tech
}

func TestTriageRequest(t *testing.T) {
	svc, requests, _, _, metrics := newDispatchFixture(t)
	request := seedRequest(t, requests, nil)

	result, err := svc.TriageRequest(context.Background(), request.ID, "mgr-1")
	require.NoError(t, err)
	require.Equal(t, 10, result.Priority)

	stored, err := requests.GetByID(context.Background(), request.ID)
	require.NoError(t, err)
	require.Equal(t, 10, stored.Priority)
	require.Len(t, stored.History, 1)
	require.Equal(t, "Triaged as priority 10/10", stored.History[0].Action)
	require.Equal(t, "mgr-1", stored.History[0].By)
	require.Equal(t, int64(1), metrics.OperationCount("triage", "ok"))
}

func TestTriageRequestRecomputesFromScratch(t *testing.T) {
	svc, requests, _, _, _ := newDispatchFixture(t)
	request := seedRequest(t, requests, func(r *domain.ServiceRequest) {
		r.Priority = 3
	})

	first, err := svc.TriageRequest(context.Background(), request.ID, "")
	require.NoError(t, err)
	second, err := svc.TriageRequest(context.Background(), request.ID, "")
	require.NoError(t, err)
	require.Equal(t, first.Priority, second.Priority)

	stored, _ := requests.GetByID(context.Background(), request.ID)
	require.Len(t, stored.History, 2)
	require.Equal(t, domain.SystemActor, stored.History[0].By)
}

func TestAssignJobPrefersSkillMatchInRadius(t *testing.T) {
	svc, requests, technicians, lease, _ := newDispatchFixture(t)
	request := seedRequest(t, requests, nil)

	skilled := seedTechnician(t, technicians, func(tech *domain.Technician) {
		tech.UserID = "skilled"
		tech.Location = domain.NewGeoPoint(36.9, -1.3)
	})
	seedTechnician(t, technicians, func(tech *domain.Technician) {
		tech.UserID = "unskilled-closer"
		tech.Skills = []string{"sedan"}
		tech.Location = testYard.Location
	})

	updated, err := svc.AssignJob(context.Background(), request.ID, "mgr-1")
	require.NoError(t, err)
	require.Equal(t, skilled.ID, updated.AssignedTechnician)
	require.Equal(t, domain.RequestStatusAssigned, updated.Status)
	require.Len(t, updated.History, 1)

	storedTech, err := technicians.GetByID(context.Background(), skilled.ID)
	require.NoError(t, err)
	require.Equal(t, 1, storedTech.CurrentJobs)

	require.Equal(t, lease.acquired, lease.released)
}

func TestAssignJobFallsBackToGeoOnly(t *testing.T) {
	svc, requests, technicians, _, _ := newDispatchFixture(t)
	request := seedRequest(t, requests, nil)

	unskilled := seedTechnician(t, technicians, func(tech *domain.Technician) {
		tech.UserID = "unskilled"
		tech.Skills = []string{"sedan"}
	})

	updated, err := svc.AssignJob(context.Background(), request.ID, "")
	require.NoError(t, err)
	require.Equal(t, unskilled.ID, updated.AssignedTechnician)
}

func TestAssignJobFallsBackToLeastBusy(t *testing.T) {
	svc, requests, technicians, _, _ := newDispatchFixture(t)
	request := seedRequest(t, requests, nil)

	// Both technicians are far outside the search radius.
	seedTechnician(t, technicians, func(tech *domain.Technician) {
		tech.UserID = "busy-far"
		tech.Location = domain.NewGeoPoint(39.66, -4.04)
		tech.CurrentJobs = 4
	})
	idle := seedTechnician(t, technicians, func(tech *domain.Technician) {
		tech.UserID = "idle-far"
		tech.Location = domain.NewGeoPoint(39.66, -4.04)
		tech.CurrentJobs = 0
	})

	updated, err := svc.AssignJob(context.Background(), request.ID, "")
	require.NoError(t, err)
	require.Equal(t, idle.ID, updated.AssignedTechnician)
}

func TestAssignJobNoTechnicianAvailable(t *testing.T) {
	svc, requests, _, lease, metrics := newDispatchFixture(t)
	request := seedRequest(t, requests, nil)

	_, err := svc.AssignJob(context.Background(), request.ID, "")
	require.Error(t, err)
	var de *apperrors.DomainError
	require.ErrorAs(t, err, &de)
	require.Equal(t, "NO_TECHNICIAN_AVAILABLE", de.Code)
	require.Equal(t, int64(1), metrics.OperationCount("assign", "no_technician"))

	// Failure path still releases the advisory lease.
	require.Equal(t, lease.acquired, lease.released)

	stored, _ := requests.GetByID(context.Background(), request.ID)
	require.Equal(t, domain.RequestStatusPending, stored.Status)
	require.Empty(t, stored.AssignedTechnician)
}

func TestAssignJobLeaseHeld(t *testing.T) {
	svc, requests, technicians, lease, _ := newDispatchFixture(t)
	request := seedRequest(t, requests, nil)
	seedTechnician(t, technicians, nil)

	_, err := lease.Acquire(context.Background(), request.ID)
	require.NoError(t, err)

	_, err = svc.AssignJob(context.Background(), request.ID, "")
	var de *apperrors.DomainError
	require.ErrorAs(t, err, &de)
	require.Equal(t, "CONCURRENCY_CONFLICT", de.Code)
}

func TestScheduleJobRequiresAssignment(t *testing.T) {
	svc, requests, _, _, _ := newDispatchFixture(t)
	request := seedRequest(t, requests, nil)

	_, err := svc.ScheduleJob(context.Background(), request.ID, "")
	var de *apperrors.DomainError
	require.ErrorAs(t, err, &de)
	require.Equal(t, "PRECONDITION_FAILED", de.Code)
}

func TestScheduleJobFirstSlotAtShiftStart(t *testing.T) {
	svc, requests, technicians, _, _ := newDispatchFixture(t)
	tech := seedTechnician(t, technicians, nil)
	request := seedRequest(t, requests, func(r *domain.ServiceRequest) {
		r.Status = domain.RequestStatusAssigned
		r.AssignedTechnician = tech.ID
	})

	result, err := svc.ScheduleJob(context.Background(), request.ID, "mgr-1")
	require.NoError(t, err)
	require.Equal(t, "08:00", result.StartTime)
	require.Equal(t, "11:00", result.EndTime)
	require.True(t, result.ScheduledEnd.After(result.ScheduledAt))

	stored, _ := requests.GetByID(context.Background(), request.ID)
	require.Equal(t, domain.RequestStatusInProgress, stored.Status)
	require.NotNil(t, stored.ScheduledStart)
	require.NotNil(t, stored.ScheduledEnd)

	storedTech, _ := technicians.GetByID(context.Background(), tech.ID)
	require.Len(t, storedTech.AssignedJobs, 1)
	require.Equal(t, request.ID, storedTech.AssignedJobs[0].RequestID)
	require.Equal(t, 1, storedTech.CurrentJobs)
}

func TestScheduleJobQueuesAfterLastJobWithBreak(t *testing.T) {
	svc, requests, technicians, _, _ := newDispatchFixture(t)
	tech := seedTechnician(t, technicians, func(tech *domain.Technician) {
		tech.AssignedJobs = []domain.AssignedJob{{
			RequestID: "req-earlier",
			Date:      time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
			StartTime: "08:00",
			EndTime:   "11:00",
		}}
	})
	request := seedRequest(t, requests, func(r *domain.ServiceRequest) {
		r.Status = domain.RequestStatusAssigned
		r.AssignedTechnician = tech.ID
	})

	result, err := svc.ScheduleJob(context.Background(), request.ID, "")
	require.NoError(t, err)
	require.Equal(t, "11:30", result.StartTime)
	require.Equal(t, "14:30", result.EndTime)
}
