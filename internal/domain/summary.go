package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Selection is the client/date filter applied to an order table. Start and
// End are calendar days and both are inclusive.
type Selection struct {
	Clients []string  `json:"clients"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
}

// Includes reports whether the order passes every predicate of the selection.
func (s Selection) Includes(o Order) bool {
	if o.Status != StatusFaturado {
		return false
	}
	if !s.hasClient(o.Sigla) {
		return false
	}
	if o.Data == nil {
		return false
	}
	day := TruncateDay(*o.Data)
	return !day.Before(TruncateDay(s.Start)) && !day.After(TruncateDay(s.End))
}

func (s Selection) hasClient(sigla string) bool {
	for _, c := range s.Clients {
		if c == sigla {
			return true
		}
	}
	return false
}

type ClientSummary struct {
	Sigla      string          `json:"sigla"`
	ValorTotal decimal.Decimal `json:"valor_total"`
}

type Summary struct {
	Selection  Selection       `json:"selection"`
	Clients    []ClientSummary `json:"clients"`
	GrandTotal decimal.Decimal `json:"grand_total"`
	Orders     int             `json:"orders"`
}

// ReportArtifact bundles what the document renderer needs for one run.
type ReportArtifact struct {
	PeriodStart time.Time
	PeriodEnd   time.Time
	GrandTotal  decimal.Decimal
	Chart       []byte
	GeneratedAt time.Time
}

// TruncateDay drops the time of day, keeping the location.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
