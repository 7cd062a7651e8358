package jwt

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"sad/backend/config"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"

	issuer = "sad-backend"
)

// Claims custom JWT claims
type Claims struct {
	UserID     string `json:"user_id"` // auth_users.id
	Role       string `json:"role"`
	WorkerID   string `json:"worker_id,omitempty"` // set for the worker role
	TokenType  string `json:"token_type"`
	RememberMe bool   `json:"remember_me,omitempty"` // refresh tokens only
	jwtv5.RegisteredClaims
}

// Manager issues and verifies tokens.
type Manager struct {
	secret                  []byte
	accessTokenTTL          time.Duration
	refreshTokenTTL         time.Duration
	refreshTokenTTLRemember time.Duration
}

// NewManager creates a Manager from the auth settings.
func NewManager(cfg *config.AuthConfig) *Manager {
	return &Manager{
		secret:                  []byte(cfg.JWTSecret),
		accessTokenTTL:          cfg.AccessTokenTTL,
		refreshTokenTTL:         cfg.RefreshTokenTTL,
		refreshTokenTTLRemember: cfg.RefreshTokenTTLRemember,
	}
}

// AccessTokenTTL lifetime of access tokens
func (m *Manager) AccessTokenTTL() time.Duration { return m.accessTokenTTL }

// GenerateAccessToken issues an access token.
func (m *Manager) GenerateAccessToken(userID, role, workerID string) (string, error) {
	return m.sign(userID, role, workerID, TokenTypeAccess, false, m.accessTokenTTL)
}

// GenerateRefreshToken issues a refresh token; rememberMe selects the longer lifetime.
func (m *Manager) GenerateRefreshToken(userID, role, workerID string, rememberMe bool) (string, error) {
	ttl := m.refreshTokenTTL
	if rememberMe {
		ttl = m.refreshTokenTTLRemember
	}
	return m.sign(userID, role, workerID, TokenTypeRefresh, rememberMe, ttl)
}

func (m *Manager) sign(userID, role, workerID, tokenType string, rememberMe bool, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:     userID,
		Role:       role,
		WorkerID:   workerID,
		TokenType:  tokenType,
		RememberMe: rememberMe,
		RegisteredClaims: jwtv5.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   userID,
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(ttl)),
			Issuer:    issuer,
		},
	}

	token := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ParseToken verifies the signature and expiry and returns the claims.
func (m *Manager) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwtv5.ParseWithClaims(tokenString, &Claims{}, func(t *jwtv5.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtv5.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return m.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

// Decode reads the claims without verifying the signature or expiry.
// Only meant for debugging tokens from the command line.
func Decode(tokenString string) (*Claims, string, error) {
	claims := &Claims{}
	token, _, err := jwtv5.NewParser().ParseUnverified(tokenString, claims)
	if err != nil {
		return nil, "", ErrTokenInvalid
	}
	return claims, token.Method.Alg(), nil
}
