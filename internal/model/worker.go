package model

// Worker types
const (
	WorkerTypeLaborable = "laborable"
	WorkerTypeFestivo   = "festivo"
	WorkerTypeBoth      = "both"
)

// Worker home-care worker (table workers)
type Worker struct {
	WorkerID   string   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"worker_id"`
	AuthUserID *string  `gorm:"type:uuid"                                      json:"auth_user_id,omitempty"`
	Name       string   `gorm:"type:varchar(100);not null"                     json:"name"`
	Surname    string   `gorm:"type:varchar(150);not null;default:''"          json:"surname"`
	Email      string   `gorm:"type:varchar(255);not null"                     json:"email"`
	Phone      string   `gorm:"type:varchar(30);not null;default:''"           json:"phone"`
	DNI        string   `gorm:"column:dni;type:varchar(20);not null;default:''" json:"dni"`
	WorkerType string   `gorm:"type:varchar(20);not null;default:'both'"       json:"worker_type"`
	Address    string   `gorm:"type:varchar(255);not null;default:''"          json:"address"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
	IsActive   bool     `gorm:"not null;default:true"                          json:"is_active"`
	SoftDeleteModel

	AuthUser *AuthUser `gorm:"foreignKey:AuthUserID;references:ID" json:"auth_user,omitempty"`
}

// TableName table name
func (Worker) TableName() string { return "workers" }

// FullName name and surname joined
func (w *Worker) FullName() string {
	if w.Surname == "" {
		return w.Name
	}
	return w.Name + " " + w.Surname
}
