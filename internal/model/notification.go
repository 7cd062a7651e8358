package model

import "time"

// Notification types
const (
	NotificationNewUser          = "new_user"
	NotificationUserRemoved      = "user_removed"
	NotificationScheduleChange   = "schedule_change"
	NotificationAssignmentChange = "assignment_change"
	NotificationRouteUpdate      = "route_update"
	NotificationHolidayUpdate    = "holiday_update"
	NotificationSystemMessage    = "system_message"
	NotificationReminder         = "reminder"
	NotificationTest             = "test"
)

// Notification priorities
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// WorkerNotification in-app notification (table worker_notifications)
type WorkerNotification struct {
	NotificationID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"notification_id"`
	WorkerID       string     `gorm:"type:uuid;not null"                             json:"worker_id"`
	Type           string     `gorm:"type:varchar(30);not null"                      json:"type"`
	Title          string     `gorm:"type:varchar(200);not null"                     json:"title"`
	Body           string     `gorm:"type:text;not null"                             json:"body"`
	Priority       string     `gorm:"type:varchar(10);not null;default:'normal'"     json:"priority"`
	Data           JSONMap    `gorm:"type:jsonb;not null;default:'{}'"               json:"data,omitempty"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
	SentAt         *time.Time `json:"sent_at,omitempty"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	BaseModel
}

// TableName table name
func (WorkerNotification) TableName() string { return "worker_notifications" }

// WorkerDevice push-capable device of a worker (table worker_devices)
type WorkerDevice struct {
	DeviceID   string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"device_id"`
	WorkerID   string    `gorm:"type:uuid;not null"                             json:"worker_id"`
	PushToken  string    `gorm:"type:varchar(512);not null"                     json:"push_token"`
	Platform   string    `gorm:"type:varchar(10);not null"                      json:"platform"` // ios | android | web
	DeviceName string    `gorm:"type:varchar(100);not null;default:''"          json:"device_name,omitempty"`
	AppVersion string    `gorm:"type:varchar(30);not null;default:''"           json:"app_version,omitempty"`
	IsActive   bool      `gorm:"not null;default:true"                          json:"is_active"`
	LastSeenAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"last_seen_at"`
	BaseModel
}

// TableName table name
func (WorkerDevice) TableName() string { return "worker_devices" }

// WorkerNotificationSettings per-worker delivery preferences (table worker_notification_settings) (1:1 workers)
type WorkerNotificationSettings struct {
	WorkerID         string  `gorm:"type:uuid;primaryKey"  json:"worker_id"`
	PushEnabled      bool    `gorm:"not null;default:true" json:"push_enabled"`
	SoundEnabled     bool    `gorm:"not null;default:true" json:"sound_enabled"`
	VibrationEnabled bool    `gorm:"not null;default:true" json:"vibration_enabled"`
	QuietHoursStart  *string `gorm:"type:varchar(5)"       json:"quiet_hours_start,omitempty"`
	QuietHoursEnd    *string `gorm:"type:varchar(5)"       json:"quiet_hours_end,omitempty"`
	NewUser          bool    `gorm:"not null;default:true" json:"new_user"`
	UserRemoved      bool    `gorm:"not null;default:true" json:"user_removed"`
	ScheduleChange   bool    `gorm:"not null;default:true" json:"schedule_change"`
	AssignmentChange bool    `gorm:"not null;default:true" json:"assignment_change"`
	RouteUpdate      bool    `gorm:"not null;default:true" json:"route_update"`
	HolidayUpdate    bool    `gorm:"not null;default:true" json:"holiday_update"`
	SystemMessage    bool    `gorm:"not null;default:true" json:"system_message"`
	Reminders        bool    `gorm:"not null;default:true" json:"reminders"`
	BaseModel
}

// TableName table name
func (WorkerNotificationSettings) TableName() string { return "worker_notification_settings" }

// DefaultNotificationSettings settings used when a worker has no row yet.
func DefaultNotificationSettings(workerID string) *WorkerNotificationSettings {
	return &WorkerNotificationSettings{
		WorkerID:         workerID,
		PushEnabled:      true,
		SoundEnabled:     true,
		VibrationEnabled: true,
		NewUser:          true,
		UserRemoved:      true,
		ScheduleChange:   true,
		AssignmentChange: true,
		RouteUpdate:      true,
		HolidayUpdate:    true,
		SystemMessage:    true,
		Reminders:        true,
	}
}

// Allows reports whether the worker wants notifications of the given type.
// System messages and test notifications are always delivered.
func (s *WorkerNotificationSettings) Allows(notificationType string) bool {
	switch notificationType {
	case NotificationNewUser:
		return s.NewUser
	case NotificationUserRemoved:
		return s.UserRemoved
	case NotificationScheduleChange:
		return s.ScheduleChange
	case NotificationAssignmentChange:
		return s.AssignmentChange
	case NotificationRouteUpdate:
		return s.RouteUpdate
	case NotificationHolidayUpdate:
		return s.HolidayUpdate
	case NotificationReminder:
		return s.Reminders
	default:
		return true
	}
}
