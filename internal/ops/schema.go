package ops

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"sad/backend/internal/model"
)

// ExpectedModels the tables the backend needs, in dependency order.
func ExpectedModels() []interface{} {
	return []interface{}{
		&model.AuthUser{},
		&model.Worker{},
		&model.ServiceUser{},
		&model.Assignment{},
		&model.Holiday{},
		&model.WorkerNotification{},
		&model.WorkerDevice{},
		&model.WorkerNotificationSettings{},
	}
}

// OrphanCount rows of Table whose worker_id matches no worker.
type OrphanCount struct {
	Table string `json:"table"`
	Count int64  `json:"count"`
}

// SchemaReport result of CheckSchema.
type SchemaReport struct {
	MissingTables  []string            `json:"missing_tables"`
	MissingColumns map[string][]string `json:"missing_columns"`
	Orphans        []OrphanCount       `json:"orphans"`
	Fixed          bool                `json:"fixed"`
}

// Healthy nothing missing and no orphans.
func (r *SchemaReport) Healthy() bool {
	if len(r.MissingTables) > 0 || len(r.MissingColumns) > 0 {
		return false
	}
	for _, o := range r.Orphans {
		if o.Count > 0 {
			return false
		}
	}
	return true
}

var orphanTables = []string{"assignments", "worker_notifications", "worker_devices"}

// CheckSchema compares the database against ExpectedModels. With fix set the
// missing tables and columns are created by AutoMigrate and the check runs again.
func CheckSchema(ctx context.Context, db *gorm.DB, fix bool, logger *zap.Logger) (*SchemaReport, error) {
	db = db.WithContext(ctx)

	report, err := inspectSchema(db)
	if err != nil {
		return nil, err
	}

	if fix && (len(report.MissingTables) > 0 || len(report.MissingColumns) > 0) {
		logger.Warn("repairing schema",
			zap.Strings("missing_tables", report.MissingTables),
			zap.Int("tables_with_missing_columns", len(report.MissingColumns)),
		)
		if err := db.Migrator().AutoMigrate(ExpectedModels()...); err != nil {
			logger.Error("auto migrate failed", zap.Error(err))
			return report, fmt.Errorf("auto migrate: %w", err)
		}
		if report, err = inspectSchema(db); err != nil {
			return nil, err
		}
		report.Fixed = true
	}

	missing := make(map[string]bool, len(report.MissingTables))
	for _, t := range report.MissingTables {
		missing[t] = true
	}
	for _, table := range orphanTables {
		if missing[table] || missing["workers"] {
			continue
		}
		var n int64
		err := db.Raw(fmt.Sprintf(
			`SELECT count(*) FROM %s t WHERE NOT EXISTS (SELECT 1 FROM workers w WHERE w.worker_id = t.worker_id)`,
			table,
		)).Scan(&n).Error
		if err != nil {
			return nil, fmt.Errorf("count orphans in %s: %w", table, err)
		}
		report.Orphans = append(report.Orphans, OrphanCount{Table: table, Count: n})
		if n > 0 {
			logger.Warn("orphaned rows", zap.String("table", table), zap.Int64("count", n))
		}
	}

	return report, nil
}

func inspectSchema(db *gorm.DB) (*SchemaReport, error) {
	report := &SchemaReport{MissingColumns: map[string][]string{}}
	m := db.Migrator()

	for _, mdl := range ExpectedModels() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(mdl); err != nil {
			return nil, fmt.Errorf("parse model %T: %w", mdl, err)
		}
		table := stmt.Schema.Table

		if !m.HasTable(mdl) {
			report.MissingTables = append(report.MissingTables, table)
			continue
		}
		for _, field := range stmt.Schema.Fields {
			if field.DBName == "" {
				continue
			}
			if !m.HasColumn(mdl, field.DBName) {
				report.MissingColumns[table] = append(report.MissingColumns[table], field.DBName)
			}
		}
	}
	return report, nil
}
