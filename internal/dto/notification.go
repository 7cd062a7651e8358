package dto

// ── notification module ──

// NotificationListRequest worker feed query
type NotificationListRequest struct {
	PaginationRequest
	UnreadOnly bool `form:"unread_only"`
}

// SendNotificationRequest admin broadcast; All targets every active worker
type SendNotificationRequest struct {
	WorkerIDs []string               `json:"worker_ids" binding:"omitempty,dive,uuid"`
	All       bool                   `json:"all"`
	Type      string                 `json:"type"       binding:"omitempty,oneof=new_user user_removed schedule_change assignment_change route_update holiday_update system_message reminder"`
	Title     string                 `json:"title"      binding:"required,min=1,max=200"`
	Body      string                 `json:"body"       binding:"required,max=2000"`
	Priority  string                 `json:"priority"   binding:"omitempty,oneof=low normal high urgent"`
	Data      map[string]interface{} `json:"data"`
	ExpiresIn int                    `json:"expires_in" binding:"omitempty,min=60"` // seconds
}

// TestNotificationRequest sends a test notification; WorkerID defaults to the caller
type TestNotificationRequest struct {
	WorkerID string `json:"worker_id" binding:"omitempty,uuid"`
	Title    string `json:"title"     binding:"omitempty,max=200"`
	Body     string `json:"body"      binding:"omitempty,max=2000"`
}

// NotificationResponse in-app notification
type NotificationResponse struct {
	ID        string                 `json:"id"`
	WorkerID  string                 `json:"worker_id"`
	Type      string                 `json:"type"`
	Title     string                 `json:"title"`
	Body      string                 `json:"body"`
	Priority  string                 `json:"priority"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Read      bool                   `json:"read"`
	ReadAt    string                 `json:"read_at,omitempty"`
	SentAt    string                 `json:"sent_at,omitempty"`
	ExpiresAt string                 `json:"expires_at,omitempty"`
	CreatedAt string                 `json:"created_at"`
}

// UnreadCountResponse unread badge
type UnreadCountResponse struct {
	Unread int64 `json:"unread"`
}

// MarkAllReadResponse rows touched by read-all
type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}

// SendNotificationResponse delivery summary of a broadcast
type SendNotificationResponse struct {
	Targeted  int      `json:"targeted"`
	Created   int      `json:"created"`
	Skipped   int      `json:"skipped"` // disabled by the worker's settings
	Pushed    int      `json:"pushed"`
	Failed    int      `json:"failed"`
	WorkerIDs []string `json:"failed_worker_ids,omitempty"`
}

// ── devices ──

// RegisterDeviceRequest push token registration
type RegisterDeviceRequest struct {
	PushToken  string `json:"push_token"  binding:"required,max=512"`
	Platform   string `json:"platform"    binding:"required,oneof=ios android web"`
	DeviceName string `json:"device_name" binding:"omitempty,max=100"`
	AppVersion string `json:"app_version" binding:"omitempty,max=30"`
}

// DeviceResponse registered device
type DeviceResponse struct {
	ID         string `json:"id"`
	Platform   string `json:"platform"`
	DeviceName string `json:"device_name,omitempty"`
	AppVersion string `json:"app_version,omitempty"`
	IsActive   bool   `json:"is_active"`
	LastSeenAt string `json:"last_seen_at"`
	CreatedAt  string `json:"created_at"`
}

// ── settings ──

// UpdateNotificationSettingsRequest partial update; quiet hours "HH:MM", "" clears
type UpdateNotificationSettingsRequest struct {
	PushEnabled      *bool   `json:"push_enabled"`
	SoundEnabled     *bool   `json:"sound_enabled"`
	VibrationEnabled *bool   `json:"vibration_enabled"`
	QuietHoursStart  *string `json:"quiet_hours_start"`
	QuietHoursEnd    *string `json:"quiet_hours_end"`
	NewUser          *bool   `json:"new_user"`
	UserRemoved      *bool   `json:"user_removed"`
	ScheduleChange   *bool   `json:"schedule_change"`
	AssignmentChange *bool   `json:"assignment_change"`
	RouteUpdate      *bool   `json:"route_update"`
	HolidayUpdate    *bool   `json:"holiday_update"`
	SystemMessage    *bool   `json:"system_message"`
	Reminders        *bool   `json:"reminders"`
}

// NotificationSettingsResponse settings of a worker
type NotificationSettingsResponse struct {
	WorkerID         string `json:"worker_id"`
	PushEnabled      bool   `json:"push_enabled"`
	SoundEnabled     bool   `json:"sound_enabled"`
	VibrationEnabled bool   `json:"vibration_enabled"`
	QuietHoursStart  string `json:"quiet_hours_start,omitempty"`
	QuietHoursEnd    string `json:"quiet_hours_end,omitempty"`
	NewUser          bool   `json:"new_user"`
	UserRemoved      bool   `json:"user_removed"`
	ScheduleChange   bool   `json:"schedule_change"`
	AssignmentChange bool   `json:"assignment_change"`
	RouteUpdate      bool   `json:"route_update"`
	HolidayUpdate    bool   `json:"holiday_update"`
	SystemMessage    bool   `json:"system_message"`
	Reminders        bool   `json:"reminders"`
	IsDefault        bool   `json:"is_default"` // no row stored yet
}
