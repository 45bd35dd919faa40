package journal

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/riskwatch/alert"
)

func newTestSQLite(t *testing.T) (*SQLiteJournal, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	j, err := NewSQLite(path)
	require.NoError(t, err)

	return j, path
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)
	assert.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table' AND name IN ('alerts','risk_snapshots')`)
	require.NoError(t, err)
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		found[name] = true
	}
	assert.True(t, found["alerts"])
	assert.True(t, found["risk_snapshots"])
}

func TestSQLiteRecordAndListAlerts(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	a := alert.Alert{
		ID:            "01TESTALERT",
		UserID:        "u1",
		Kind:          "margin",
		Scope:         "account",
		Severity:      alert.SeverityCritical,
		Message:       "margin status CRITICAL (level 80.0%)",
		CurrentValue:  80,
		Threshold:     100,
		ExceedancePct: 20,
		Status:        alert.StatusActive,
		CreatedAt:     time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, j.RecordAlert(a))

	// Re-recording after a lifecycle change updates in place.
	ts := a.CreatedAt.Add(time.Minute)
	a.Status = alert.StatusResolved
	a.ResolvedAt = &ts
	require.NoError(t, j.RecordAlert(a))

	got, err := j.ListAlerts("u1", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, alert.StatusResolved, got[0].Status)
	require.NotNil(t, got[0].ResolvedAt)
	assert.InDelta(t, 20.0, got[0].ExceedancePct, 1e-9)
}

func TestSQLiteRecordRisk(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)

	require.NoError(t, j.RecordRisk(RiskSnapshot{
		Time:        time.Now(),
		Equity:      10000,
		MarginUsed:  6000,
		FreeMargin:  4000,
		MarginLevel: 166.67,
		Status:      "SAFE",
	}))
	assert.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM risk_snapshots`).Scan(&count))
	assert.Equal(t, 1, count)
}
