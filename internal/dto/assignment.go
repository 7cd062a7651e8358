package dto

// ── assignment module ──

// TimeSlotDTO visit window "HH:MM"
type TimeSlotDTO struct {
	Start string `json:"start" binding:"required"`
	End   string `json:"end"   binding:"required"`
}

// CreateAssignmentRequest create assignment
type CreateAssignmentRequest struct {
	WorkerID       string                   `json:"worker_id"       binding:"required,uuid"`
	UserID         string                   `json:"user_id"         binding:"required,uuid"`
	AssignmentType string                   `json:"assignment_type" binding:"required,oneof=laborables festivos flexible"`
	StartDate      string                   `json:"start_date"      binding:"required"` // YYYY-MM-DD
	EndDate        string                   `json:"end_date"`                           // YYYY-MM-DD, optional
	Schedule       map[string][]TimeSlotDTO `json:"schedule"        binding:"required"`
	Notes          string                   `json:"notes"           binding:"omitempty,max=2000"`
}

// UpdateAssignmentRequest partial update; Version must match the stored row
type UpdateAssignmentRequest struct {
	WorkerID       *string                   `json:"worker_id"       binding:"omitempty,uuid"`
	UserID         *string                   `json:"user_id"         binding:"omitempty,uuid"`
	AssignmentType *string                   `json:"assignment_type" binding:"omitempty,oneof=laborables festivos flexible"`
	StartDate      *string                   `json:"start_date"`
	EndDate        *string                   `json:"end_date"` // "" clears the end date
	Schedule       *map[string][]TimeSlotDTO `json:"schedule"`
	Status         *string                   `json:"status"          binding:"omitempty,oneof=active paused cancelled completed"`
	Notes          *string                   `json:"notes"           binding:"omitempty,max=2000"`
	Version        int                       `json:"version"         binding:"required,min=1"`
}

// AssignmentListRequest list query
type AssignmentListRequest struct {
	PaginationRequest
	WorkerID string `form:"worker_id" binding:"omitempty,uuid"`
	UserID   string `form:"user_id"   binding:"omitempty,uuid"`
	Status   string `form:"status"    binding:"omitempty,oneof=active paused cancelled completed"`
}

// AssignmentResponse assignment
type AssignmentResponse struct {
	ID             string                   `json:"id"`
	WorkerID       string                   `json:"worker_id"`
	WorkerName     string                   `json:"worker_name,omitempty"`
	UserID         string                   `json:"user_id"`
	User           *ServiceUserBrief        `json:"user,omitempty"`
	AssignmentType string                   `json:"assignment_type"`
	StartDate      string                   `json:"start_date"`
	EndDate        string                   `json:"end_date,omitempty"`
	Schedule       map[string][]TimeSlotDTO `json:"schedule"`
	WeeklyHours    float64                  `json:"weekly_hours"`
	Status         string                   `json:"status"`
	Notes          string                   `json:"notes,omitempty"`
	Version        int                      `json:"version"`
	CreatedAt      string                   `json:"created_at"`
	UpdatedAt      string                   `json:"updated_at"`
}

// ── calendar views ──

// VisitResponse one visit of a worker's day
type VisitResponse struct {
	AssignmentID   string           `json:"assignment_id"`
	AssignmentType string           `json:"assignment_type"`
	Start          string           `json:"start"`
	End            string           `json:"end"`
	Minutes        int              `json:"minutes"`
	User           ServiceUserBrief `json:"user"`
}

// WorkerDayResponse the visits of a worker on a date
type WorkerDayResponse struct {
	WorkerID     string          `json:"worker_id"`
	Date         string          `json:"date"`
	Weekday      string          `json:"weekday"`
	IsHoliday    bool            `json:"is_holiday"`
	HolidayName  string          `json:"holiday_name,omitempty"`
	IsFestive    bool            `json:"is_festive"`
	Visits       []VisitResponse `json:"visits"`
	TotalMinutes int             `json:"total_minutes"`
}

// MonthlyHoursRequest year/month query
type MonthlyHoursRequest struct {
	Year  int `form:"year"  binding:"required,min=2000,max=2100"`
	Month int `form:"month" binding:"required,min=1,max=12"`
}

// AssignmentHours planned hours of one assignment in a month
type AssignmentHours struct {
	AssignmentID    string  `json:"assignment_id"`
	AssignmentType  string  `json:"assignment_type"`
	CounterpartID   string  `json:"counterpart_id"` // the user for a worker report, the worker for a user report
	CounterpartName string  `json:"counterpart_name,omitempty"`
	Days            int     `json:"days"`
	Visits          int     `json:"visits"`
	Hours           float64 `json:"hours"`
}

// MonthlyHoursResponse planned hours of a worker or user in a month
type MonthlyHoursResponse struct {
	SubjectType     string            `json:"subject_type"` // worker | user
	SubjectID       string            `json:"subject_id"`
	Year            int               `json:"year"`
	Month           int               `json:"month"`
	Assignments     []AssignmentHours `json:"assignments"`
	TotalHours      float64           `json:"total_hours"`
	LaborableHours  float64           `json:"laborable_hours"`
	FestiveHours    float64           `json:"festive_hours"`
	ContractedHours *float64          `json:"contracted_hours,omitempty"` // users only
	Balance         *float64          `json:"balance,omitempty"`          // contracted - planned, users only
}
