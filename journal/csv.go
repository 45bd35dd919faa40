// journal/csv.go
package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/rustyeddy/riskwatch/alert"
)

type CSVJournal struct {
	alerts *csv.Writer
	risks  *csv.Writer
	af, rf *os.File
}

func NewCSV(alertsPath, risksPath string) (*CSVJournal, error) {
	af, err := os.Create(alertsPath)
	if err != nil {
		return nil, err
	}
	rf, err := os.Create(risksPath)
	if err != nil {
		af.Close()
		return nil, err
	}

	aw := csv.NewWriter(af)
	rw := csv.NewWriter(rf)

	if err := aw.Write([]string{"alert_id", "user_id", "kind", "scope", "severity", "message", "current_value", "threshold", "exceedance_pct", "status", "created_at"}); err != nil {
		return nil, err
	}
	if err := rw.Write([]string{"time", "equity", "margin_used", "free_margin", "margin_level", "drawdown", "daily_pl", "total_exposure", "var_estimate", "status"}); err != nil {
		return nil, err
	}

	aw.Flush()
	if err := aw.Error(); err != nil {
		return nil, err
	}
	rw.Flush()
	if err := rw.Error(); err != nil {
		return nil, err
	}

	return &CSVJournal{aw, rw, af, rf}, nil
}

func (j *CSVJournal) RecordAlert(a alert.Alert) error {
	err := j.alerts.Write([]string{
		a.ID,
		a.UserID,
		a.Kind,
		a.Scope,
		string(a.Severity),
		a.Message,
		f(a.CurrentValue),
		f(a.Threshold),
		f(a.ExceedancePct),
		string(a.Status),
		a.CreatedAt.Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	j.alerts.Flush()
	return j.alerts.Error()
}

func (j *CSVJournal) RecordRisk(s RiskSnapshot) error {
	err := j.risks.Write([]string{
		s.Time.Format(time.RFC3339),
		f(s.Equity),
		f(s.MarginUsed),
		f(s.FreeMargin),
		f(s.MarginLevel),
		f(s.Drawdown),
		f(s.DailyPL),
		f(s.TotalExposure),
		f(s.VaREstimate),
		s.Status,
	})
	if err != nil {
		return err
	}
	j.risks.Flush()
	return j.risks.Error()
}

func (j *CSVJournal) Close() error {
	j.alerts.Flush()
	if err := j.alerts.Error(); err != nil {
		return err
	}
	j.risks.Flush()
	if err := j.risks.Error(); err != nil {
		return err
	}

	if err := j.af.Close(); err != nil {
		return err
	}
	return j.rf.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
