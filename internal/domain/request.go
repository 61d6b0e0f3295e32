package domain

import "time"

// RequestStatus enumerates lifecycle states for service requests.
type RequestStatus string

const (
	RequestStatusPending         RequestStatus = "pending"
	RequestStatusAssigned        RequestStatus = "assigned"
	RequestStatusInProgress      RequestStatus = "in_progress"
	RequestStatusReportSubmitted RequestStatus = "report_submitted"
	RequestStatusQuoted          RequestStatus = "quoted"
	RequestStatusApproved        RequestStatus = "approved"
	RequestStatusCompleted       RequestStatus = "completed"
	RequestStatusCancelled       RequestStatus = "cancelled"
)

// ServiceType enumerates supported repair categories.
type ServiceType string

const (
	ServiceTypeEngine       ServiceType = "engine"
	ServiceTypeTransmission ServiceType = "transmission"
	ServiceTypeBrakes       ServiceType = "brakes"
	ServiceTypeSuspension   ServiceType = "suspension"
	ServiceTypeElectrical   ServiceType = "electrical"
	ServiceTypeDiagnostics  ServiceType = "diagnostics"
	ServiceTypeOilChange    ServiceType = "oil_change"
	ServiceTypeTyres        ServiceType = "tyres"
	ServiceTypeAC           ServiceType = "ac"
	ServiceTypeBodywork     ServiceType = "bodywork"
)

// SystemActor is the sentinel actor id recorded for unattended transitions.
const SystemActor = "system"

// GeoPoint is a GeoJSON point, coordinates ordered [lng, lat].
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
}

// NewGeoPoint builds a GeoJSON point from longitude and latitude.
func NewGeoPoint(lng, lat float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: []float64{lng, lat}}
}

// Lng returns the longitude component.
func (p GeoPoint) Lng() float64 {
	if len(p.Coordinates) < 2 {
		return 0
	}
	return p.Coordinates[0]
}

// Lat returns the latitude component.
func (p GeoPoint) Lat() float64 {
	if len(p.Coordinates) < 2 {
		return 0
	}
	return p.Coordinates[1]
}

// Yard is the customer-specified location where the vehicle awaits service.
type Yard struct {
	Name     string   `bson:"name" json:"name"`
	Location GeoPoint `bson:"location" json:"location"`
}

// CarDetails describes the vehicle under service. VehicleType doubles as the
// skill tag required of an assigned technician.
type CarDetails struct {
	Make         string `bson:"make" json:"make"`
	Model        string `bson:"model" json:"model"`
	Year         int    `bson:"year" json:"year"`
	Registration string `bson:"registration" json:"registration"`
	VehicleType  string `bson:"vehicleType" json:"vehicleType"`
}

// TimeWindow is the customer's advisory preferred start/end.
type TimeWindow struct {
	Start time.Time `bson:"start" json:"start"`
	End   time.Time `bson:"end" json:"end"`
}

// PartUsage records one part consumed by the job.
type PartUsage struct {
	PartID   string `bson:"partId" json:"partId"`
	Quantity int    `bson:"quantity" json:"quantity"`
}

// Quote is the itemized price estimate attached once work is reported.
type Quote struct {
	Amount     float64    `bson:"amount" json:"amount"`
	Currency   string     `bson:"currency" json:"currency"`
	Details    string     `bson:"details" json:"details"`
	Approved   bool       `bson:"approved" json:"approved"`
	ApprovedAt *time.Time `bson:"approvedAt,omitempty" json:"approvedAt,omitempty"`
}

// HistoryEntry is one line of the append-only audit trail. By holds a user id
// or the "system" sentinel.
type HistoryEntry struct {
	Action    string    `bson:"action" json:"action"`
	By        string    `bson:"by" json:"by"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
	Notes     string    `bson:"notes,omitempty" json:"notes,omitempty"`
}

// ServiceRequest is the aggregate for one customer-submitted job.
type ServiceRequest struct {
	ID                    string         `bson:"_id,omitempty" json:"id"`
	CustomerID            string         `bson:"customerId" json:"customerId"`
	Yard                  Yard           `bson:"yard" json:"yard"`
	CarDetails            CarDetails     `bson:"carDetails" json:"carDetails"`
	ServiceType           ServiceType    `bson:"serviceType" json:"serviceType"`
	Description           string         `bson:"description" json:"description"`
	PreferredWindow       *TimeWindow    `bson:"preferredWindow,omitempty" json:"preferredWindow,omitempty"`
	EstimatedDurationMins int            `bson:"estimatedDurationMins" json:"estimatedDurationMins"`
	TravelBufferMins      int            `bson:"travelBufferMins" json:"travelBufferMins"`
	Priority              int            `bson:"priority" json:"priority"`
	AssignedTechnician    string         `bson:"assignedTechnician,omitempty" json:"assignedTechnician,omitempty"`
	ScheduledStart        *time.Time     `bson:"scheduledStart,omitempty" json:"scheduledStart,omitempty"`
	ScheduledEnd          *time.Time     `bson:"scheduledEnd,omitempty" json:"scheduledEnd,omitempty"`
	InspectionNotes       string         `bson:"inspectionNotes,omitempty" json:"inspectionNotes,omitempty"`
	PartsUsed             []PartUsage    `bson:"partsUsed,omitempty" json:"partsUsed,omitempty"`
	LaborHours            float64        `bson:"laborHours" json:"laborHours"`
	Quote                 *Quote         `bson:"quote,omitempty" json:"quote,omitempty"`
	Status                RequestStatus  `bson:"status" json:"status"`
	History               []HistoryEntry `bson:"history" json:"history"`
	Revision              int64          `bson:"revision" json:"revision"`
	CreatedAt             time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt             time.Time      `bson:"updatedAt" json:"updatedAt"`
}

// AppendHistory adds an audit entry; entries are never removed or reordered.
func (r *ServiceRequest) AppendHistory(action, by string, at time.Time) {
	if by == "" {
		by = SystemActor
	}
	r.History = append(r.History, HistoryEntry{Action: action, By: by, Timestamp: at})
}
