package ops

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeRLSStatus(t *testing.T) {
	tables := []string{"workers", "assignments", "worker_devices"}
	flags := []rlsFlags{
		{Relname: "workers", Relrowsecurity: true, Relforcerowsecurity: true},
		{Relname: "assignments", Relrowsecurity: true},
		{Relname: "unrelated", Relrowsecurity: true},
	}
	policies := []policyRow{
		{Tablename: "workers", Policyname: "workers_scope"},
		{Tablename: "workers", Policyname: "legacy_read"},
		{Tablename: "assignments", Policyname: "assignments_scope"},
	}

	got := mergeRLSStatus(tables, flags, policies)
	require.Len(t, got, 3)

	assert.Equal(t, "workers", got[0].Table)
	assert.Equal(t, []string{"legacy_read", "workers_scope"}, got[0].Policies)
	assert.True(t, got[0].Complete())

	assert.True(t, got[1].Enabled)
	assert.False(t, got[1].Complete(), "not forced")

	assert.False(t, got[2].Exists)
	assert.Empty(t, got[2].Policies)
	assert.False(t, got[2].Complete())
}

func TestTableRLS_CompleteNeedsScopePolicy(t *testing.T) {
	st := TableRLS{Table: "worker_devices", Exists: true, Enabled: true, Forced: true, Policies: []string{"other"}}
	assert.False(t, st.Complete())

	st.Policies = append(st.Policies, "worker_devices_scope")
	assert.True(t, st.Complete())
}

func TestSchemaReport_Healthy(t *testing.T) {
	r := &SchemaReport{MissingColumns: map[string][]string{}, Orphans: []OrphanCount{{Table: "assignments"}}}
	assert.True(t, r.Healthy())

	r.Orphans[0].Count = 2
	assert.False(t, r.Healthy())

	r = &SchemaReport{MissingColumns: map[string][]string{"workers": {"dni"}}}
	assert.False(t, r.Healthy())
}

func TestExpectedModels_ParentsFirst(t *testing.T) {
	models := ExpectedModels()
	require.Len(t, models, 8)
	assert.Equal(t, "*model.AuthUser", fmt.Sprintf("%T", models[0]))
	assert.Equal(t, "*model.Worker", fmt.Sprintf("%T", models[1]))
}

func TestWorkerChildTables(t *testing.T) {
	assert.ElementsMatch(t,
		[]string{"assignments", "worker_notifications", "worker_devices", "worker_notification_settings"},
		workerChildTables,
	)
	assert.Subset(t, workerChildTables, orphanTables)
}
