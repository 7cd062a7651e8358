//go:build integration

package ops_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sad/backend/internal/model"
	"sad/backend/internal/ops"
	"sad/backend/pkg/database"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=sad password=sad_password dbname=sad_test sslmode=disable TimeZone=Europe/Madrid"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect test database: %v\n", err)
		os.Exit(1)
	}

	sqlDB, err := testDB.DB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "get sql.DB: %v\n", err)
		os.Exit(1)
	}
	if err := database.RunMigrations(sqlDB, zap.NewNop()); err != nil {
		fmt.Fprintf(os.Stderr, "run migrations: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

func unique(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

func mustCreate(t *testing.T, v interface{}) {
	t.Helper()
	if err := testDB.Create(v).Error; err != nil {
		t.Fatalf("create %T: %v", v, err)
	}
}

func countWhere(t *testing.T, table, workerID string) int64 {
	t.Helper()
	var n int64
	if err := testDB.Table(table).Where("worker_id = ?", workerID).Count(&n).Error; err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func resultFor(t *testing.T, s *ops.SyncSummary, email string) ops.SyncResult {
	t.Helper()
	for _, r := range s.Results {
		if r.Email == email {
			return r
		}
	}
	t.Fatalf("no result for %s", email)
	return ops.SyncResult{}
}

// syncFixture a linked worker with one row in every child table, plus a
// second linked worker whose target id is already held by another worker.
type syncFixture struct {
	login, blockedLogin    *model.AuthUser
	worker, blocked, squat *model.Worker
	user                   *model.ServiceUser
}

func seedSyncFixture(t *testing.T) (*syncFixture, func()) {
	t.Helper()
	f := &syncFixture{}

	f.login = &model.AuthUser{Email: unique("ana") + "@example.com", PasswordHash: "x", Role: model.RoleWorker, IsActive: true}
	f.blockedLogin = &model.AuthUser{Email: unique("joan") + "@example.com", PasswordHash: "x", Role: model.RoleWorker, IsActive: true}
	mustCreate(t, f.login)
	mustCreate(t, f.blockedLogin)

	f.worker = &model.Worker{Name: "Ana", Email: f.login.Email, AuthUserID: &f.login.ID, IsActive: true}
	f.blocked = &model.Worker{Name: "Joan", Email: f.blockedLogin.Email, AuthUserID: &f.blockedLogin.ID, IsActive: true}
	// holds the id the blocked worker would move to
	f.squat = &model.Worker{WorkerID: f.blockedLogin.ID, Name: "Old", Email: unique("old") + "@example.com", IsActive: true}
	mustCreate(t, f.worker)
	mustCreate(t, f.blocked)
	mustCreate(t, f.squat)

	f.user = &model.ServiceUser{ClientCode: unique("C"), Name: "Josep", IsActive: true}
	mustCreate(t, f.user)

	mustCreate(t, &model.Assignment{
		WorkerID:       f.worker.WorkerID,
		UserID:         f.user.UserID,
		AssignmentType: model.AssignmentTypeFlexible,
		StartDate:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Schedule:       model.WeeklySchedule{"monday": {{Start: "09:00", End: "10:00"}}},
		Status:         model.AssignmentStatusActive,
	})
	mustCreate(t, &model.WorkerNotification{WorkerID: f.worker.WorkerID, Type: model.NotificationTest, Title: "t", Body: "b"})
	mustCreate(t, &model.WorkerDevice{WorkerID: f.worker.WorkerID, PushToken: unique("tok"), Platform: "android"})
	mustCreate(t, model.DefaultNotificationSettings(f.worker.WorkerID))

	ids := []string{f.worker.WorkerID, f.login.ID, f.blocked.WorkerID, f.squat.WorkerID}
	cleanup := func() {
		for _, table := range []string{"assignments", "worker_notifications", "worker_devices", "worker_notification_settings"} {
			testDB.Exec(fmt.Sprintf("DELETE FROM %s WHERE worker_id IN ?", table), ids)
		}
		testDB.Exec("DELETE FROM workers WHERE worker_id IN ?", ids)
		testDB.Exec("DELETE FROM users WHERE user_id = ?", f.user.UserID)
		testDB.Exec("DELETE FROM auth_users WHERE id IN ?", []string{f.login.ID, f.blockedLogin.ID})
	}
	return f, cleanup
}

// ═══════════════════════════════════════════════════════════
// Test: workers sync-ids
// ═══════════════════════════════════════════════════════════

func TestSyncWorkerIDs_DryRunChangesNothing(t *testing.T) {
	f, cleanup := seedSyncFixture(t)
	defer cleanup()

	summary, err := ops.SyncWorkerIDs(context.Background(), testDB, true, zap.NewNop())
	if err != nil {
		t.Fatalf("SyncWorkerIDs: %v", err)
	}
	if !summary.DryRun || summary.Synced != 0 {
		t.Errorf("dry run must not sync anything: %+v", summary)
	}

	res := resultFor(t, summary, f.worker.Email)
	if res.AuthUserID != f.login.ID || res.WorkerID != f.worker.WorkerID {
		t.Errorf("unexpected mismatch %+v", res.IDMismatch)
	}
	for _, table := range []string{"assignments", "worker_notifications", "worker_devices", "worker_notification_settings"} {
		if res.Rows[table] != 1 {
			t.Errorf("%s: expected 1 row counted, got %d", table, res.Rows[table])
		}
	}

	if countWhere(t, "workers", f.worker.WorkerID) != 1 || countWhere(t, "assignments", f.login.ID) != 0 {
		t.Error("dry run rewrote ids")
	}
}

func TestSyncWorkerIDs_RewritesAndContinuesPastFailures(t *testing.T) {
	f, cleanup := seedSyncFixture(t)
	defer cleanup()

	summary, err := ops.SyncWorkerIDs(context.Background(), testDB, false, zap.NewNop())
	if err != nil {
		t.Fatalf("SyncWorkerIDs: %v", err)
	}

	synced := resultFor(t, summary, f.worker.Email)
	if synced.Error != "" {
		t.Fatalf("expected %s to sync, got %s", f.worker.Email, synced.Error)
	}
	if synced.Rows["workers"] != 1 || synced.Rows["assignments"] != 1 {
		t.Errorf("unexpected row counts %v", synced.Rows)
	}

	for _, table := range []string{"workers", "assignments", "worker_notifications", "worker_devices", "worker_notification_settings"} {
		if n := countWhere(t, table, f.worker.WorkerID); n != 0 {
			t.Errorf("%s: %d rows still on the old id", table, n)
		}
		if n := countWhere(t, table, f.login.ID); n != 1 {
			t.Errorf("%s: expected 1 row on the login id, got %d", table, n)
		}
	}

	// the taken target is reported and left alone, and the run went on
	blocked := resultFor(t, summary, f.blocked.Email)
	if blocked.Error == "" {
		t.Error("expected the blocked worker to fail")
	}
	if countWhere(t, "workers", f.blocked.WorkerID) != 1 {
		t.Error("blocked worker must keep its id")
	}
	if summary.Failed < 1 || summary.Synced < 1 {
		t.Errorf("expected at least one failure and one sync: %+v", summary)
	}

	// a second run finds nothing left for the synced worker
	again, err := ops.FindIDMismatches(context.Background(), testDB)
	if err != nil {
		t.Fatalf("FindIDMismatches: %v", err)
	}
	for _, mm := range again {
		if mm.Email == f.worker.Email {
			t.Error("synced worker still reported as mismatched")
		}
	}
}

// ═══════════════════════════════════════════════════════════
// Test: repair schema
// ═══════════════════════════════════════════════════════════

func TestCheckSchema_ReportsAndFixesMissingColumn(t *testing.T) {
	ctx := context.Background()

	report, err := ops.CheckSchema(ctx, testDB, false, zap.NewNop())
	if err != nil {
		t.Fatalf("CheckSchema: %v", err)
	}
	if len(report.MissingTables) != 0 || len(report.MissingColumns) != 0 {
		t.Fatalf("migrated schema should be complete: %+v", report)
	}

	if err := testDB.Exec("ALTER TABLE worker_devices DROP COLUMN app_version").Error; err != nil {
		t.Fatalf("drop column: %v", err)
	}
	defer testDB.Exec("ALTER TABLE worker_devices ADD COLUMN IF NOT EXISTS app_version varchar(30) NOT NULL DEFAULT ''")

	report, err = ops.CheckSchema(ctx, testDB, false, zap.NewNop())
	if err != nil {
		t.Fatalf("CheckSchema: %v", err)
	}
	if cols := report.MissingColumns["worker_devices"]; len(cols) != 1 || cols[0] != "app_version" {
		t.Fatalf("expected app_version reported missing, got %v", report.MissingColumns)
	}
	if report.Healthy() || report.Fixed {
		t.Error("report should be unhealthy and unfixed")
	}

	report, err = ops.CheckSchema(ctx, testDB, true, zap.NewNop())
	if err != nil {
		t.Fatalf("CheckSchema fix: %v", err)
	}
	if !report.Fixed || len(report.MissingColumns) != 0 {
		t.Errorf("fix should restore the column: %+v", report)
	}
	if len(report.Orphans) != 3 {
		t.Errorf("expected orphan counts for 3 tables, got %d", len(report.Orphans))
	}
}

// ═══════════════════════════════════════════════════════════
// Test: rls apply / status
// ═══════════════════════════════════════════════════════════

func TestApplyRLS_IdempotentAndEnforced(t *testing.T) {
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := ops.ApplyRLS(ctx, testDB, zap.NewNop()); err != nil {
			t.Fatalf("ApplyRLS run %d: %v", i+1, err)
		}
	}

	status, err := ops.RLSStatus(ctx, testDB)
	if err != nil {
		t.Fatalf("RLSStatus: %v", err)
	}
	if len(status) != len(database.RLSTables) {
		t.Fatalf("expected %d tables, got %d", len(database.RLSTables), len(status))
	}
	for _, st := range status {
		if !st.Complete() {
			t.Errorf("%s: incomplete rls %+v", st.Table, st)
		}
		if len(st.Policies) != 1 {
			t.Errorf("%s: re-applying must not duplicate policies: %v", st.Table, st.Policies)
		}
	}

	var bypass bool
	testDB.Raw("SELECT rolsuper OR rolbypassrls FROM pg_roles WHERE rolname = current_user").Scan(&bypass)
	if bypass {
		t.Skip("test role bypasses row-level security; policy filtering not observable")
	}

	f, cleanup := seedSyncFixture(t)
	defer cleanup()

	count := func(scope database.Scope) int64 {
		var n int64
		err := database.WithScope(ctx, testDB, scope, func(tx *gorm.DB) error {
			return tx.Table("worker_notifications").
				Where("worker_id IN ?", []string{f.worker.WorkerID, f.blocked.WorkerID}).
				Count(&n).Error
		})
		if err != nil {
			t.Fatalf("scoped count: %v", err)
		}
		return n
	}

	mustCreate(t, &model.WorkerNotification{WorkerID: f.blocked.WorkerID, Type: model.NotificationTest, Title: "t", Body: "b"})

	if n := count(database.Scope{Role: model.RoleWorker, WorkerID: f.worker.WorkerID}); n != 1 {
		t.Errorf("worker scope should see only its own row, got %d", n)
	}
	if n := count(database.Scope{Role: model.RoleAdmin}); n != 2 {
		t.Errorf("admin scope should see both rows, got %d", n)
	}
}
