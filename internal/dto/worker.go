package dto

// ── worker module ──

// CreateWorkerRequest create worker
type CreateWorkerRequest struct {
	Name       string   `json:"name"        binding:"required,min=1,max=100"`
	Surname    string   `json:"surname"     binding:"omitempty,max=150"`
	Email      string   `json:"email"       binding:"required,email"`
	Phone      string   `json:"phone"       binding:"omitempty,max=30"`
	DNI        string   `json:"dni"         binding:"omitempty,max=20"`
	WorkerType string   `json:"worker_type" binding:"omitempty,oneof=laborable festivo both"`
	Address    string   `json:"address"     binding:"omitempty,max=255"`
	Latitude   *float64 `json:"latitude"    binding:"omitempty,min=-90,max=90"`
	Longitude  *float64 `json:"longitude"   binding:"omitempty,min=-180,max=180"`
}

// UpdateWorkerRequest partial worker update
type UpdateWorkerRequest struct {
	Name       *string  `json:"name"        binding:"omitempty,min=1,max=100"`
	Surname    *string  `json:"surname"     binding:"omitempty,max=150"`
	Email      *string  `json:"email"       binding:"omitempty,email"`
	Phone      *string  `json:"phone"       binding:"omitempty,max=30"`
	DNI        *string  `json:"dni"         binding:"omitempty,max=20"`
	WorkerType *string  `json:"worker_type" binding:"omitempty,oneof=laborable festivo both"`
	Address    *string  `json:"address"     binding:"omitempty,max=255"`
	Latitude   *float64 `json:"latitude"    binding:"omitempty,min=-90,max=90"`
	Longitude  *float64 `json:"longitude"   binding:"omitempty,min=-180,max=180"`
	IsActive   *bool    `json:"is_active"`
}

// WorkerListRequest list query
type WorkerListRequest struct {
	PaginationRequest
	Search string `form:"search"`
	Active *bool  `form:"active"`
}

// WorkerResponse worker
type WorkerResponse struct {
	ID         string   `json:"id"`
	AuthUserID string   `json:"auth_user_id,omitempty"`
	Name       string   `json:"name"`
	Surname    string   `json:"surname"`
	FullName   string   `json:"full_name"`
	Email      string   `json:"email"`
	Phone      string   `json:"phone"`
	DNI        string   `json:"dni,omitempty"`
	WorkerType string   `json:"worker_type"`
	Address    string   `json:"address,omitempty"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
	IsActive   bool     `json:"is_active"`
	CreatedAt  string   `json:"created_at"`
	UpdatedAt  string   `json:"updated_at"`
}
