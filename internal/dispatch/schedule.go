package dispatch

import (
	"time"

	"github.com/garageops/dispatch-service/internal/domain"
	"github.com/garageops/dispatch-service/internal/geo"
)

// Slot is a computed start/end allocation on a technician's queue.
type Slot struct {
	Date      time.Time
	StartTime string
	EndTime   string
	StartAt   time.Time
	EndAt     time.Time
}

// NextSlot computes the earliest feasible slot for a technician: the daily
// work-hours start on now's date when the queue is empty, otherwise breakMins
// after the end of the most recently queued job on that job's date. Jobs pack
// sequentially; there is no gap-filling, no multi-day rollover, and no check
// against the end of the working day.
func NextSlot(tech *domain.Technician, now time.Time, jobMins, breakMins int) (Slot, error) {
	date := now
	startTime := tech.WorkHours.Start

	if n := len(tech.AssignedJobs); n > 0 {
		last := tech.AssignedJobs[n-1]
		date = last.Date
		next, err := geo.AddMinutes(last.EndTime, breakMins)
		if err != nil {
			return Slot{}, err
		}
		startTime = next
	}

	endTime, err := geo.AddMinutes(startTime, jobMins)
	if err != nil {
		return Slot{}, err
	}

	startAt, err := geo.At(date, startTime)
	if err != nil {
		return Slot{}, err
	}
	endAt, err := geo.At(date, endTime)
	if err != nil {
		return Slot{}, err
	}
	// Clock arithmetic wraps at midnight; keep the end strictly after the start.
	if !endAt.After(startAt) {
		endAt = endAt.AddDate(0, 0, 1)
	}

	return Slot{
		Date:      date,
		StartTime: startTime,
		EndTime:   endTime,
		StartAt:   startAt,
		EndAt:     endAt,
	}, nil
}
