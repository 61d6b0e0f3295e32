package domain

import "time"

// WorkHours is a simple daily working window, times as "HH:MM".
type WorkHours struct {
	Start string `bson:"start" json:"start"`
	End   string `bson:"end" json:"end"`
}

// DayAvailability is a per-weekday working window. DayOfWeek follows
// time.Weekday numbering (0 = Sunday).
type DayAvailability struct {
	DayOfWeek int    `bson:"dayOfWeek" json:"dayOfWeek"`
	Start     string `bson:"start" json:"start"`
	End       string `bson:"end" json:"end"`
}

// AssignedJob is one slot in a technician's queue, ordered by insertion.
type AssignedJob struct {
	RequestID string    `bson:"requestId" json:"requestId"`
	Date      time.Time `bson:"date" json:"date"`
	StartTime string    `bson:"startTime" json:"startTime"`
	EndTime   string    `bson:"endTime" json:"endTime"`
}

// Technician is a service worker profile.
type Technician struct {
	ID                 string            `bson:"_id,omitempty" json:"id"`
	UserID             string            `bson:"userId" json:"userId"`
	Location           GeoPoint          `bson:"location" json:"location"`
	Skills             []string          `bson:"skills" json:"skills"`
	WorkHours          WorkHours         `bson:"workHours" json:"workHours"`
	WeeklyAvailability []DayAvailability `bson:"weeklyAvailability,omitempty" json:"weeklyAvailability,omitempty"`
	CurrentJobs        int               `bson:"currentJobs" json:"currentJobs"`
	MaxDailyJobs       int               `bson:"maxDailyJobs" json:"maxDailyJobs"`
	Rating             float64           `bson:"rating" json:"rating"`
	Active             bool              `bson:"active" json:"active"`
	AssignedJobs       []AssignedJob     `bson:"assignedJobs,omitempty" json:"assignedJobs,omitempty"`
	Revision           int64             `bson:"revision" json:"revision"`
	CreatedAt          time.Time         `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time         `bson:"updatedAt" json:"updatedAt"`
}

// HasSkill reports whether the technician carries the given capability tag.
func (t *Technician) HasSkill(tag string) bool {
	for _, s := range t.Skills {
		if s == tag {
			return true
		}
	}
	return false
}

// Workload returns the effective open-job count. The counter and the queue can
// drift because nothing decrements CurrentJobs on completion, so the larger of
// the two is taken as the workload signal.
func (t *Technician) Workload() int {
	if n := len(t.AssignedJobs); n > t.CurrentJobs {
		return n
	}
	return t.CurrentJobs
}
