package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

const rlsMigrationFile = "migrations/000002_rls_policies.up.sql"

// RLSTables lists the worker-scoped tables that carry a row-level policy.
var RLSTables = []string{
	"workers",
	"assignments",
	"worker_notifications",
	"worker_devices",
	"worker_notification_settings",
}

// RLSPolicySQL returns the policy script. It is written to be re-runnable.
func RLSPolicySQL() (string, error) {
	b, err := migrationsFS.ReadFile(rlsMigrationFile)
	if err != nil {
		return "", fmt.Errorf("read rls policies: %w", err)
	}
	return string(b), nil
}

// Scope identifies the caller a row-level policy is evaluated for.
type Scope struct {
	Role     string
	WorkerID string
}

// WithScope runs fn in a transaction whose session settings carry the scope,
// so the policies in RLSPolicySQL filter every statement fn issues.
func WithScope(ctx context.Context, db *gorm.DB, scope Scope, fn func(tx *gorm.DB) error) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			"SELECT set_config('app.role', ?, true), set_config('app.worker_id', ?, true)",
			scope.Role, scope.WorkerID,
		).Error; err != nil {
			return fmt.Errorf("set rls scope: %w", err)
		}
		return fn(tx)
	})
}
