package dto

// ── auth requests ──

// LoginRequest login by email
type LoginRequest struct {
	Email      string `json:"email"    binding:"required,email"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"remember_me"`
}

// RefreshTokenRequest refresh token exchange
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ChangePasswordRequest password change of the caller
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=72"`
}

// CreateAuthUserRequest creates a login, optionally linked to a worker
type CreateAuthUserRequest struct {
	Email    string `json:"email"     binding:"required,email"`
	Password string `json:"password"  binding:"required,min=8,max=72"`
	Role     string `json:"role"      binding:"required,oneof=super_admin admin worker"`
	WorkerID string `json:"worker_id" binding:"omitempty,uuid"`
}

// ── auth responses ──

// TokenResponse token pair
type TokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"` // access token lifetime, seconds
	User         UserResponse `json:"user"`
}

// UserResponse login identity summary
type UserResponse struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	WorkerID     string `json:"worker_id,omitempty"`
	Name         string `json:"name,omitempty"`
	LastSignInAt string `json:"last_sign_in_at,omitempty"`
}
