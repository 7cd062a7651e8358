package dto

// ── service user module ──

// CreateServiceUserRequest create assigned user
type CreateServiceUserRequest struct {
	ClientCode   string   `json:"client_code"   binding:"required,max=30"`
	Name         string   `json:"name"          binding:"required,min=1,max=100"`
	Surname      string   `json:"surname"       binding:"omitempty,max=150"`
	Phone        string   `json:"phone"         binding:"omitempty,max=30"`
	Address      string   `json:"address"       binding:"omitempty,max=255"`
	PostalCode   string   `json:"postal_code"   binding:"omitempty,max=10"`
	City         string   `json:"city"          binding:"omitempty,max=100"`
	Latitude     *float64 `json:"latitude"      binding:"omitempty,min=-90,max=90"`
	Longitude    *float64 `json:"longitude"     binding:"omitempty,min=-180,max=180"`
	MonthlyHours float64  `json:"monthly_hours" binding:"omitempty,min=0,max=744"`
	MedicalNotes string   `json:"medical_notes"`
}

// UpdateServiceUserRequest partial update
type UpdateServiceUserRequest struct {
	ClientCode   *string  `json:"client_code"   binding:"omitempty,max=30"`
	Name         *string  `json:"name"          binding:"omitempty,min=1,max=100"`
	Surname      *string  `json:"surname"       binding:"omitempty,max=150"`
	Phone        *string  `json:"phone"         binding:"omitempty,max=30"`
	Address      *string  `json:"address"       binding:"omitempty,max=255"`
	PostalCode   *string  `json:"postal_code"   binding:"omitempty,max=10"`
	City         *string  `json:"city"          binding:"omitempty,max=100"`
	Latitude     *float64 `json:"latitude"      binding:"omitempty,min=-90,max=90"`
	Longitude    *float64 `json:"longitude"     binding:"omitempty,min=-180,max=180"`
	MonthlyHours *float64 `json:"monthly_hours" binding:"omitempty,min=0,max=744"`
	MedicalNotes *string  `json:"medical_notes"`
	IsActive     *bool    `json:"is_active"`
}

// ServiceUserListRequest list query
type ServiceUserListRequest struct {
	PaginationRequest
	Search string `form:"search"`
	Active *bool  `form:"active"`
}

// ServiceUserResponse assigned user
type ServiceUserResponse struct {
	ID           string   `json:"id"`
	ClientCode   string   `json:"client_code"`
	Name         string   `json:"name"`
	Surname      string   `json:"surname"`
	FullName     string   `json:"full_name"`
	Phone        string   `json:"phone"`
	Address      string   `json:"address"`
	PostalCode   string   `json:"postal_code"`
	City         string   `json:"city"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	MonthlyHours float64  `json:"monthly_hours"`
	MedicalNotes string   `json:"medical_notes,omitempty"`
	IsActive     bool     `json:"is_active"`
	CreatedAt    string   `json:"created_at"`
	UpdatedAt    string   `json:"updated_at"`
}

// ServiceUserBrief user embedded in assignment and visit responses
type ServiceUserBrief struct {
	ID        string   `json:"id"`
	FullName  string   `json:"full_name"`
	Address   string   `json:"address,omitempty"`
	Phone     string   `json:"phone,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}
