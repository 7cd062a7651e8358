package model

// ServiceUser person receiving home care (the "assigned user") (table users)
type ServiceUser struct {
	UserID       string   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	ClientCode   string   `gorm:"type:varchar(30);not null"                      json:"client_code"`
	Name         string   `gorm:"type:varchar(100);not null"                     json:"name"`
	Surname      string   `gorm:"type:varchar(150);not null;default:''"          json:"surname"`
	Phone        string   `gorm:"type:varchar(30);not null;default:''"           json:"phone"`
	Address      string   `gorm:"type:varchar(255);not null;default:''"          json:"address"`
	PostalCode   string   `gorm:"type:varchar(10);not null;default:''"           json:"postal_code"`
	City         string   `gorm:"type:varchar(100);not null;default:''"          json:"city"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	MonthlyHours float64  `gorm:"type:numeric(6,2);not null;default:0"          json:"monthly_hours"`
	MedicalNotes string   `gorm:"type:text;not null;default:''"                  json:"medical_notes,omitempty"`
	IsActive     bool     `gorm:"not null;default:true"                          json:"is_active"`
	SoftDeleteModel
}

// TableName table name
func (ServiceUser) TableName() string { return "users" }

// FullName name and surname joined
func (u *ServiceUser) FullName() string {
	if u.Surname == "" {
		return u.Name
	}
	return u.Name + " " + u.Surname
}

// HasLocation both coordinates are known
func (u *ServiceUser) HasLocation() bool {
	return u.Latitude != nil && u.Longitude != nil
}
