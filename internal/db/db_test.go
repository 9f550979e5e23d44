package db

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/roomscan/internal/monitoring"
)

func TestMain(m *testing.M) {
	monitoring.SetLogger(nil)
	os.Exit(m.Run())
}

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func int32Ptr(v int32) *int32 { return &v }

func TestNewDB_AppliesMigrations(t *testing.T) {
	db := newTestDB(t)

	version, dirty, err := db.MigrateVersion(MigrationsFS())
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	var name string
	err = db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'scan_cycles'`).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "scan_cycles", name)
}

func TestNewDB_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	db, err := NewDB(path)
	require.NoError(t, err)
	require.NoError(t, db.RecordCycle(Cycle{ID: "c1", State: "resolved", Attempts: 1}))
	require.NoError(t, db.Close())

	db, err = NewDB(path)
	require.NoError(t, err)
	defer db.Close()
	cycles, err := db.RecentCycles(0)
	require.NoError(t, err)
	require.Len(t, cycles, 1)
	assert.Equal(t, "c1", cycles[0].ID)
}

func TestMigrateDown(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.MigrateDown(MigrationsFS()))

	version, _, err := db.MigrateVersion(MigrationsFS())
	require.NoError(t, err)
	assert.Zero(t, version)

	var n int
	err = db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE name = 'scan_cycles'`).Scan(&n)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, db.MigrateUp(MigrationsFS()))
}

func TestRecordCycle_RoundTrip(t *testing.T) {
	db := newTestDB(t)

	started := time.Date(2026, 3, 1, 12, 0, 0, 500, time.UTC)
	want := Cycle{
		ID:             "6f1c2d1e-0000-4000-8000-000000000001",
		Session:        7,
		StartedAt:      started,
		FinishedAt:     started.Add(1500 * time.Millisecond),
		Attempts:       2,
		State:          "failed",
		Supported:      true,
		ErrorCode:      int32Ptr(-1000113002),
		Error:          "xrRetrieveSpaceQueryResultsFB failed",
		Records:        0,
		FloorPresent:   false,
		CeilingPresent: false,
		WallCount:      0,
	}
	require.NoError(t, db.RecordCycle(want))

	got, err := db.RecentCycles(10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, want, got[0])
	assert.Equal(t, 1500*time.Millisecond, got[0].Duration())
}

func TestRecordCycle_Resolved(t *testing.T) {
	db := newTestDB(t)

	now := time.Now().UTC()
	require.NoError(t, db.RecordCycle(Cycle{
		ID:             "resolved-1",
		StartedAt:      now,
		FinishedAt:     now,
		Attempts:       1,
		State:          "resolved",
		Supported:      true,
		Records:        3,
		FloorPresent:   true,
		CeilingPresent: false,
		WallCount:      2,
	}))

	got, err := db.RecentCycles(1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].ErrorCode)
	assert.Empty(t, got[0].Error)
	assert.True(t, got[0].FloorPresent)
	assert.False(t, got[0].CeilingPresent)
	assert.Equal(t, 2, got[0].WallCount)
}

func TestRecordCycle_Errors(t *testing.T) {
	db := newTestDB(t)

	assert.Error(t, db.RecordCycle(Cycle{}), "missing id")

	c := Cycle{ID: "dup", State: "resolved"}
	require.NoError(t, db.RecordCycle(c))
	assert.Error(t, db.RecordCycle(c), "duplicate id")
}

func TestRecentCycles_OrderAndLimit(t *testing.T) {
	db := newTestDB(t)

	base := time.Unix(1_700_000_000, 0).UTC()
	for i, id := range []string{"a", "b", "c", "d"} {
		start := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, db.RecordCycle(Cycle{ID: id, StartedAt: start, FinishedAt: start, State: "resolved"}))
	}

	got, err := db.RecentCycles(2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "d", got[0].ID)
	assert.Equal(t, "c", got[1].ID)

	all, err := db.RecentCycles(0)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestRecentCycles_Empty(t *testing.T) {
	db := newTestDB(t)

	got, err := db.RecentCycles(5)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCountCyclesByState(t *testing.T) {
	db := newTestDB(t)

	for i, state := range []string{"resolved", "failed", "resolved", "unsupported"} {
		require.NoError(t, db.RecordCycle(Cycle{ID: string(rune('a' + i)), State: state}))
	}

	counts, err := db.CountCyclesByState()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"resolved": 2, "failed": 1, "unsupported": 1}, counts)
}

func TestAttachAdminRoutes(t *testing.T) {
	db := newTestDB(t)

	mux := http.NewServeMux()
	require.NoError(t, db.AttachAdminRoutes(mux))

	for _, path := range []string{"/debug/cycles", "/debug/tailsql/"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)
		// Non-loopback callers may be refused, but the route must exist.
		assert.NotEqual(t, http.StatusNotFound, w.Code, path)
	}
}

func TestHandleCycles(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.RecordCycle(Cycle{ID: "x", State: "resolved", WallCount: 4}))

	w := httptest.NewRecorder()
	db.handleCycles(w, httptest.NewRequest(http.MethodGet, "/debug/cycles?limit=5", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var cycles []Cycle
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cycles))
	require.Len(t, cycles, 1)
	assert.Equal(t, 4, cycles[0].WallCount)

	w = httptest.NewRecorder()
	db.handleCycles(w, httptest.NewRequest(http.MethodGet, "/debug/cycles?limit=nope", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleCycles_ClosedDB(t *testing.T) {
	db, err := NewDB(filepath.Join(t.TempDir(), "closed.db"))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	w := httptest.NewRecorder()
	db.handleCycles(w, httptest.NewRequest(http.MethodGet, "/debug/cycles", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to load cycles")
}
