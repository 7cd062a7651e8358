package model

import "time"

// Holiday types
const (
	HolidayTypeNational = "national"
	HolidayTypeRegional = "regional"
	HolidayTypeLocal    = "local"
)

// Holiday public holiday (table holidays)
type Holiday struct {
	HolidayID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"holiday_id"`
	Date      time.Time `gorm:"type:date;not null"                             json:"date"`
	Name      string    `gorm:"type:varchar(200);not null"                     json:"name"`
	Type      string    `gorm:"type:varchar(20);not null;default:'national'"   json:"type"`
	Region    string    `gorm:"type:varchar(20);not null;default:''"           json:"region"`
	BaseModel
}

// TableName table name
func (Holiday) TableName() string { return "holidays" }
