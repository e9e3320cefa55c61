package models

import "time"

// ATM operational status.
const (
	AtmStatusOnline       = "ONLINE"
	AtmStatusOffline      = "OFFLINE"
	AtmStatusOutOfService = "OUT_OF_SERVICE"
)

// ATM network status.
const (
	NetworkConnected    = "CONNECTED"
	NetworkIntermittent = "INTERMITTENT"
	NetworkDisconnected = "DISCONNECTED"
)

// Ticket lifecycle. Transitions only move forward:
// open -> assigned -> in_progress -> closed.
const (
	TicketOpen       = "open"
	TicketAssigned   = "assigned"
	TicketInProgress = "in_progress"
	TicketClosed     = "closed"
)

// Ticket severity levels, totally ordered LOW < MEDIUM < HIGH < CRITICAL.
const (
	SeverityLow      = "LOW"
	SeverityMedium   = "MEDIUM"
	SeverityHigh     = "HIGH"
	SeverityCritical = "CRITICAL"
)

// Engineer specialization tags. Raw issue types collapse to one of these.
const (
	CategoryHardware = "HARDWARE"
	CategoryPower    = "POWER"
	CategoryNetwork  = "NETWORK"
	CategorySoftware = "SOFTWARE"
)

// User roles.
const (
	RoleAdmin    = "ADMIN"
	RoleEngineer = "ENGINEER"
	RoleCustomer = "CUSTOMER"
)

type Location struct {
	Address   string  `json:"address"`
	City      string  `json:"city"`
	Region    string  `json:"region"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type CashLevel struct {
	CurrentAmount    float64 `json:"currentAmount"`
	Capacity         float64 `json:"capacity"`
	LowCashThreshold float64 `json:"lowCashThreshold"`
}

type PowerStatus struct {
	Mains     bool     `json:"mains"`
	Generator bool     `json:"generator"`
	Inverter  bool     `json:"inverter"`
	FuelLevel *float64 `json:"fuelLevel,omitempty"`
}

type Diagnostics struct {
	TemperatureC *float64 `json:"temperatureC,omitempty"`
	ErrorCodes   []string `json:"errorCodes"`
}

type PredictiveScore struct {
	FailureRisk  float64   `json:"failureRisk"`
	LastComputed time.Time `json:"lastComputed"`
}

type UptimeMetrics struct {
	UptimePercentageLast7Days *float64 `json:"uptimePercentageLast7Days,omitempty"`
}

type ATM struct {
	ID                 string           `json:"id"`
	BankID             string           `json:"bank_id"`
	Location           Location         `json:"location"`
	Model              string           `json:"model"`
	Type               string           `json:"type"`
	Status             string           `json:"status"`
	NetworkStatus      string           `json:"network_status"`
	CashLevel          CashLevel        `json:"cash_level"`
	PowerStatus        PowerStatus      `json:"power_status"`
	Diagnostics        Diagnostics      `json:"diagnostics"`
	PredictiveScore    *PredictiveScore `json:"predictive_score,omitempty"`
	UptimeMetrics      *UptimeMetrics   `json:"uptime_metrics,omitempty"`
	AssignedEngineerID *string          `json:"assigned_engineer_id,omitempty"`
	LastUpdated        time.Time        `json:"last_updated"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// GeoPoint is an engineer's last known position. A nil GeoPoint means
// the position is unknown.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Performance struct {
	ReviewScore    float64 `json:"reviewScore"`
	ResolvedCount  int     `json:"resolvedCount"`
	AvgResolutionH float64 `json:"avgResolutionHours"`
}

type Engineer struct {
	ID                string      `json:"id"`
	Name              string      `json:"name"`
	EmployeeCode      string      `json:"employee_code"`
	Phone             string      `json:"phone"`
	Email             string      `json:"email"`
	Region            string      `json:"region"`
	Specialization    []string    `json:"specialization"`
	CurrentStatus     string      `json:"current_status"`
	Performance       Performance `json:"performance"`
	LastKnownLocation *GeoPoint   `json:"last_known_location,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

type Ticket struct {
	ID            string    `json:"id"`
	AtmID         string    `json:"atm_id"`
	EngineerID    *string   `json:"engineer_id,omitempty"`
	Status        string    `json:"status"`
	IssueType     string    `json:"issue_type"`
	Severity      string    `json:"severity"`
	Description   string    `json:"description"`
	ReportedBy    string    `json:"reported_by"`
	ProofPhotoURL *string   `json:"proof_photo_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Bank struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ShortCode string    `json:"short_code"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// KPIReport is the dashboard aggregate. AvgRepairTimeMinutes is nil when
// no ticket has ever been closed.
type KPIReport struct {
	UptimePercent        float64  `json:"uptimePercent"`
	AvgRepairTimeMinutes *float64 `json:"avgRepairTimeMinutes"`
	ActiveFaults         int      `json:"activeFaults"`
}

// TelemetryPacket is the lightweight per-ATM snapshot served to the
// monitoring frontend.
type TelemetryPacket struct {
	AtmID         string      `json:"atm_id"`
	Timestamp     time.Time   `json:"timestamp"`
	Status        string      `json:"status"`
	NetworkStatus string      `json:"network_status"`
	CashLevel     CashLevel   `json:"cash_level"`
	PowerStatus   PowerStatus `json:"power_status"`
	Diagnostics   Diagnostics `json:"diagnostics"`
}

// DispatchResult is the outcome of one auto-dispatch call.
type DispatchResult struct {
	TicketID   string  `json:"ticket_id"`
	AtmID      string  `json:"atm_id"`
	EngineerID *string `json:"engineer_id"`
	Status     string  `json:"status"`
	Message    string  `json:"message"`
	Fallback   bool    `json:"fallback"`
}
