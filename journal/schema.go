// journal/schema.go
package journal

const Schema = `
CREATE TABLE IF NOT EXISTS alerts (
	alert_id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	kind TEXT NOT NULL,
	scope TEXT NOT NULL,
	severity TEXT NOT NULL,
	message TEXT NOT NULL,
	current_value REAL NOT NULL,
	threshold REAL NOT NULL,
	exceedance_pct REAL NOT NULL,
	status TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	acknowledged_at DATETIME,
	resolved_at DATETIME
);

CREATE TABLE IF NOT EXISTS risk_snapshots (
	time DATETIME NOT NULL,
	equity REAL NOT NULL,
	margin_used REAL NOT NULL,
	free_margin REAL NOT NULL,
	margin_level REAL NOT NULL,
	drawdown REAL NOT NULL,
	daily_pl REAL NOT NULL,
	total_exposure REAL NOT NULL,
	var_estimate REAL NOT NULL,
	status TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_alerts_user ON alerts(user_id, created_at);
CREATE INDEX IF NOT EXISTS idx_risk_time ON risk_snapshots(time);
`
