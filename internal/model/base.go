package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ── PostgreSQL JSONB helpers ──

// JSONMap maps a JSONB object column; implements the GORM Scanner/Valuer interfaces.
type JSONMap map[string]interface{}

// Scan decodes the JSONB text returned by PostgreSQL.
func (m *JSONMap) Scan(src interface{}) error {
	b, err := jsonBytes(src)
	if err != nil {
		return fmt.Errorf("JSONMap.Scan: %w", err)
	}
	if b == nil {
		*m = nil
		return nil
	}
	out := JSONMap{}
	if err := json.Unmarshal(b, &out); err != nil {
		return fmt.Errorf("JSONMap.Scan: %w", err)
	}
	*m = out
	return nil
}

// Value encodes the map as JSON; nil is stored as an empty object.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func jsonBytes(src interface{}) ([]byte, error) {
	switch v := src.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported type %T", src)
	}
}

// BaseModel audit columns embedded by every table
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	CreatedBy *string   `gorm:"type:uuid"                          json:"created_by,omitempty"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	UpdatedBy *string   `gorm:"type:uuid"                          json:"updated_by,omitempty"`
}

// SoftDeleteModel audit columns plus soft delete
type SoftDeleteModel struct {
	BaseModel
	DeletedAt gorm.DeletedAt `gorm:"index"     json:"deleted_at,omitempty"`
	DeletedBy *string        `gorm:"type:uuid" json:"deleted_by,omitempty"`
}

// VersionedModel soft-deletable row with an optimistic lock counter
type VersionedModel struct {
	SoftDeleteModel
	Version int `gorm:"not null;default:1" json:"version"`
}
