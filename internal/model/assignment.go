package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Assignment types
const (
	AssignmentTypeLaborables = "laborables" // working days only
	AssignmentTypeFestivos   = "festivos"   // weekends and holidays only
	AssignmentTypeFlexible   = "flexible"   // every day
)

// Assignment statuses
const (
	AssignmentStatusActive    = "active"
	AssignmentStatusPaused    = "paused"
	AssignmentStatusCancelled = "cancelled"
	AssignmentStatusCompleted = "completed"
)

// Weekday keys used in WeeklySchedule
var WeekdayKeys = [7]string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

// TimeSlot a visit window, "HH:MM" local time
type TimeSlot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// WeeklySchedule weekday key → visit windows; maps a JSONB column.
type WeeklySchedule map[string][]TimeSlot

// SlotsFor returns the windows scheduled on the given weekday.
func (s WeeklySchedule) SlotsFor(day time.Weekday) []TimeSlot {
	return s[WeekdayKeys[day]]
}

// Scan decodes the JSONB text returned by PostgreSQL.
func (s *WeeklySchedule) Scan(src interface{}) error {
	b, err := jsonBytes(src)
	if err != nil {
		return fmt.Errorf("WeeklySchedule.Scan: %w", err)
	}
	if b == nil {
		*s = nil
		return nil
	}
	out := WeeklySchedule{}
	if err := json.Unmarshal(b, &out); err != nil {
		return fmt.Errorf("WeeklySchedule.Scan: %w", err)
	}
	*s = out
	return nil
}

// Value encodes the schedule as JSON.
func (s WeeklySchedule) Value() (driver.Value, error) {
	if s == nil {
		return "{}", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Assignment a worker serving a user on a weekly schedule (table assignments)
type Assignment struct {
	AssignmentID   string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"assignment_id"`
	WorkerID       string         `gorm:"type:uuid;not null"                             json:"worker_id"`
	UserID         string         `gorm:"type:uuid;not null"                             json:"user_id"`
	AssignmentType string         `gorm:"type:varchar(20);not null"                      json:"assignment_type"`
	StartDate      time.Time      `gorm:"type:date;not null"                             json:"start_date"`
	EndDate        *time.Time     `gorm:"type:date"                                      json:"end_date,omitempty"`
	Schedule       WeeklySchedule `gorm:"type:jsonb;not null;default:'{}'"               json:"schedule"`
	Status         string         `gorm:"type:varchar(20);not null;default:'active'"     json:"status"`
	Notes          string         `gorm:"type:text;not null;default:''"                  json:"notes,omitempty"`
	VersionedModel

	Worker *Worker      `gorm:"foreignKey:WorkerID;references:WorkerID" json:"worker,omitempty"`
	User   *ServiceUser `gorm:"foreignKey:UserID;references:UserID"     json:"user,omitempty"`
}

// TableName table name
func (Assignment) TableName() string { return "assignments" }
