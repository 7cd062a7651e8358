package ops

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"sad/backend/pkg/database"
)

// TableRLS row-level security state of one table.
type TableRLS struct {
	Table    string   `json:"table"`
	Exists   bool     `json:"exists"`
	Enabled  bool     `json:"enabled"`
	Forced   bool     `json:"forced"`
	Policies []string `json:"policies"`
}

// Complete reports whether the table has RLS enabled, forced and its scope policy.
func (t TableRLS) Complete() bool {
	if !t.Exists || !t.Enabled || !t.Forced {
		return false
	}
	for _, p := range t.Policies {
		if p == t.Table+"_scope" {
			return true
		}
	}
	return false
}

type rlsFlags struct {
	Relname             string
	Relrowsecurity      bool
	Relforcerowsecurity bool
}

type policyRow struct {
	Tablename  string
	Policyname string
}

// ApplyRLS runs the policy script in a single transaction. Running it twice is harmless.
func ApplyRLS(ctx context.Context, db *gorm.DB, logger *zap.Logger) error {
	script, err := database.RLSPolicySQL()
	if err != nil {
		return err
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Exec(script).Error
	})
	if err != nil {
		logger.Error("apply rls policies failed", zap.Error(err))
		return fmt.Errorf("apply rls policies: %w", err)
	}

	logger.Info("rls policies applied", zap.Strings("tables", database.RLSTables))
	return nil
}

// RLSStatus reads pg_class and pg_policies for every worker-scoped table.
func RLSStatus(ctx context.Context, db *gorm.DB) ([]TableRLS, error) {
	var flags []rlsFlags
	if err := db.WithContext(ctx).Raw(
		`SELECT c.relname, c.relrowsecurity, c.relforcerowsecurity
		   FROM pg_class c
		   JOIN pg_namespace n ON n.oid = c.relnamespace
		  WHERE n.nspname = current_schema() AND c.relkind = 'r' AND c.relname IN ?`,
		database.RLSTables,
	).Scan(&flags).Error; err != nil {
		return nil, fmt.Errorf("read table flags: %w", err)
	}

	var policies []policyRow
	if err := db.WithContext(ctx).Raw(
		`SELECT tablename, policyname FROM pg_policies
		  WHERE schemaname = current_schema() AND tablename IN ?`,
		database.RLSTables,
	).Scan(&policies).Error; err != nil {
		return nil, fmt.Errorf("read policies: %w", err)
	}

	return mergeRLSStatus(database.RLSTables, flags, policies), nil
}

func mergeRLSStatus(tables []string, flags []rlsFlags, policies []policyRow) []TableRLS {
	byTable := make(map[string]*TableRLS, len(tables))
	out := make([]TableRLS, len(tables))
	for i, t := range tables {
		out[i] = TableRLS{Table: t, Policies: []string{}}
		byTable[t] = &out[i]
	}
	for _, f := range flags {
		if st, ok := byTable[f.Relname]; ok {
			st.Exists = true
			st.Enabled = f.Relrowsecurity
			st.Forced = f.Relforcerowsecurity
		}
	}
	for _, p := range policies {
		if st, ok := byTable[p.Tablename]; ok {
			st.Policies = append(st.Policies, p.Policyname)
		}
	}
	for i := range out {
		sort.Strings(out[i].Policies)
	}
	return out
}
