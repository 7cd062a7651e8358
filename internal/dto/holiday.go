package dto

// ── holiday module ──

// CreateHolidayRequest create holiday
type CreateHolidayRequest struct {
	Date   string `json:"date"   binding:"required"` // YYYY-MM-DD
	Name   string `json:"name"   binding:"required,min=1,max=200"`
	Type   string `json:"type"   binding:"omitempty,oneof=national regional local"`
	Region string `json:"region" binding:"omitempty,max=20"`
}

// UpdateHolidayRequest partial update
type UpdateHolidayRequest struct {
	Date   *string `json:"date"`
	Name   *string `json:"name"   binding:"omitempty,min=1,max=200"`
	Type   *string `json:"type"   binding:"omitempty,oneof=national regional local"`
	Region *string `json:"region" binding:"omitempty,max=20"`
}

// HolidayListRequest list query; Month 0 means the whole year
type HolidayListRequest struct {
	Year   int    `form:"year"   binding:"omitempty,min=2000,max=2100"`
	Month  int    `form:"month"  binding:"omitempty,min=1,max=12"`
	Region string `form:"region" binding:"omitempty,max=20"`
}

// HolidayCheckRequest IsHoliday query
type HolidayCheckRequest struct {
	Date   string `form:"date"   binding:"required"`
	Region string `form:"region" binding:"omitempty,max=20"`
}

// ImportHolidaysRequest ICS import by URL; the multipart form variant sends a file instead
type ImportHolidaysRequest struct {
	URL    string `json:"url"    form:"url"`
	Region string `json:"region" form:"region" binding:"omitempty,max=20"`
	Type   string `json:"type"   form:"type"   binding:"omitempty,oneof=national regional local"`
}

// HolidayExportRequest ICS export query
type HolidayExportRequest struct {
	Year   int    `form:"year"   binding:"required,min=2000,max=2100"`
	Region string `form:"region" binding:"omitempty,max=20"`
}

// HolidayResponse holiday
type HolidayResponse struct {
	ID      string `json:"id"`
	Date    string `json:"date"`
	Weekday string `json:"weekday"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Region  string `json:"region,omitempty"`
}

// HolidayCheckResponse IsHoliday result
type HolidayCheckResponse struct {
	Date      string           `json:"date"`
	IsHoliday bool             `json:"is_holiday"`
	IsFestive bool             `json:"is_festive"` // holiday or weekend
	Holiday   *HolidayResponse `json:"holiday,omitempty"`
}

// ImportHolidaysResponse ICS import counters
type ImportHolidaysResponse struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}
