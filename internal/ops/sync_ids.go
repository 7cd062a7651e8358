package ops

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// workerChildTables tables keyed by workers.worker_id, rewritten before the parent row.
var workerChildTables = []string{
	"assignments",
	"worker_notifications",
	"worker_devices",
	"worker_notification_settings",
}

// IDMismatch a worker linked to a login whose IDs differ.
type IDMismatch struct {
	WorkerID   string `json:"worker_id"`
	AuthUserID string `json:"auth_user_id"`
	Email      string `json:"email"`
}

// SyncResult outcome for one worker.
type SyncResult struct {
	IDMismatch
	Rows  map[string]int64 `json:"rows,omitempty"`
	Error string           `json:"error,omitempty"`
}

// SyncSummary totals of a SyncWorkerIDs run.
type SyncSummary struct {
	DryRun  bool         `json:"dry_run"`
	Found   int          `json:"found"`
	Synced  int          `json:"synced"`
	Failed  int          `json:"failed"`
	Results []SyncResult `json:"results"`
}

// FindIDMismatches lists linked workers whose worker_id is not the auth user id.
func FindIDMismatches(ctx context.Context, db *gorm.DB) ([]IDMismatch, error) {
	var rows []IDMismatch
	err := db.WithContext(ctx).Raw(
		`SELECT w.worker_id::text AS worker_id, a.id::text AS auth_user_id, w.email
		   FROM workers w
		   JOIN auth_users a ON a.id = w.auth_user_id
		  WHERE w.worker_id <> a.id AND w.deleted_at IS NULL
		  ORDER BY w.email`,
	).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("find id mismatches: %w", err)
	}
	return rows, nil
}

// SyncWorkerIDs rewrites each mismatched worker to its auth user id, one
// transaction per worker. A failing worker is logged and the run continues.
func SyncWorkerIDs(ctx context.Context, db *gorm.DB, dryRun bool, logger *zap.Logger) (*SyncSummary, error) {
	mismatches, err := FindIDMismatches(ctx, db)
	if err != nil {
		return nil, err
	}

	summary := &SyncSummary{DryRun: dryRun, Found: len(mismatches), Results: []SyncResult{}}
	for _, mm := range mismatches {
		res := SyncResult{IDMismatch: mm}
		log := logger.With(
			zap.String("worker_id", mm.WorkerID),
			zap.String("auth_user_id", mm.AuthUserID),
			zap.String("email", mm.Email),
		)

		if dryRun {
			res.Rows, err = countWorkerRows(ctx, db, mm.WorkerID)
			if err != nil {
				res.Error = err.Error()
				summary.Failed++
				log.Warn("count rows failed", zap.Error(err))
			}
			summary.Results = append(summary.Results, res)
			continue
		}

		res.Rows, err = syncOne(ctx, db, mm)
		if err != nil {
			res.Error = err.Error()
			summary.Failed++
			log.Error("worker id sync failed", zap.Error(err))
		} else {
			summary.Synced++
			log.Info("worker id synced", zap.Any("rows", res.Rows))
		}
		summary.Results = append(summary.Results, res)
	}

	logger.Info("worker id sync finished",
		zap.Bool("dry_run", dryRun),
		zap.Int("found", summary.Found),
		zap.Int("synced", summary.Synced),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}

func countWorkerRows(ctx context.Context, db *gorm.DB, workerID string) (map[string]int64, error) {
	rows := make(map[string]int64, len(workerChildTables))
	for _, table := range workerChildTables {
		var n int64
		if err := db.WithContext(ctx).Table(table).Where("worker_id = ?", workerID).Count(&n).Error; err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		rows[table] = n
	}
	return rows, nil
}

func syncOne(ctx context.Context, db *gorm.DB, mm IDMismatch) (map[string]int64, error) {
	rows := make(map[string]int64, len(workerChildTables)+1)
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Table("workers").Where("worker_id = ?", mm.AuthUserID).Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return fmt.Errorf("worker %s already exists", mm.AuthUserID)
		}

		if err := tx.Exec("SET CONSTRAINTS ALL DEFERRED").Error; err != nil {
			return fmt.Errorf("defer constraints: %w", err)
		}
		for _, table := range workerChildTables {
			res := tx.Table(table).Where("worker_id = ?", mm.WorkerID).Update("worker_id", mm.AuthUserID)
			if res.Error != nil {
				return fmt.Errorf("update %s: %w", table, res.Error)
			}
			rows[table] = res.RowsAffected
		}
		res := tx.Table("workers").Where("worker_id = ?", mm.WorkerID).Update("worker_id", mm.AuthUserID)
		if res.Error != nil {
			return fmt.Errorf("update workers: %w", res.Error)
		}
		rows["workers"] = res.RowsAffected
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}
