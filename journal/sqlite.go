package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/riskwatch/alert"
)

type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordAlert(a alert.Alert) error {
	_, err := j.db.Exec(`
		INSERT INTO alerts
		(alert_id, user_id, kind, scope, severity, message, current_value, threshold, exceedance_pct, status, created_at, acknowledged_at, resolved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(alert_id) DO UPDATE SET
			status = excluded.status,
			acknowledged_at = excluded.acknowledged_at,
			resolved_at = excluded.resolved_at`,
		a.ID, a.UserID, a.Kind, a.Scope, string(a.Severity), a.Message,
		a.CurrentValue, a.Threshold, a.ExceedancePct, string(a.Status),
		a.CreatedAt, a.AcknowledgedAt, a.ResolvedAt,
	)
	return err
}

func (j *SQLiteJournal) RecordRisk(s RiskSnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO risk_snapshots
		(time, equity, margin_used, free_margin, margin_level, drawdown, daily_pl, total_exposure, var_estimate, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.Time, s.Equity, s.MarginUsed, s.FreeMargin, s.MarginLevel,
		s.Drawdown, s.DailyPL, s.TotalExposure, s.VaREstimate, s.Status,
	)
	return err
}

// ListAlerts returns the journaled alerts for a user, newest first.
func (j *SQLiteJournal) ListAlerts(userID string, limit int) ([]alert.Alert, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := j.db.Query(`
		SELECT alert_id, user_id, kind, scope, severity, message,
		       current_value, threshold, exceedance_pct, status,
		       created_at, acknowledged_at, resolved_at
		FROM alerts WHERE user_id = ?
		ORDER BY alert_id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []alert.Alert
	for rows.Next() {
		var a alert.Alert
		var severity, status string
		if err := rows.Scan(&a.ID, &a.UserID, &a.Kind, &a.Scope, &severity, &a.Message,
			&a.CurrentValue, &a.Threshold, &a.ExceedancePct, &status,
			&a.CreatedAt, &a.AcknowledgedAt, &a.ResolvedAt); err != nil {
			return nil, err
		}
		a.Severity = alert.Severity(severity)
		a.Status = alert.Status(status)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
