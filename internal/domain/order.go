package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Canonical column names after normalization.
const (
	ColumnSigla      = "SIGLA"
	ColumnValorTotal = "VALOR TOTAL"
	ColumnStatus     = "STATUS"
	ColumnData       = "DATA"
)

// StatusFaturado is the only status reported on.
const StatusFaturado = "FATURADO"

// RequiredColumns lists the columns every order table must carry.
var RequiredColumns = []string{ColumnSigla, ColumnValorTotal, ColumnStatus, ColumnData}

// RawTable is a sheet as read from the workbook, before any normalization.
type RawTable struct {
	Sheet  string
	Header []string
	Rows   [][]string
}

type Order struct {
	Sigla      string          `json:"sigla"`
	ValorTotal decimal.Decimal `json:"valor_total"`
	Status     string          `json:"status"`
	Data       *time.Time      `json:"data,omitempty"`
}

// HasDate reports whether the order carries a parseable date.
func (o Order) HasDate() bool {
	return o.Data != nil
}

type OrderTable struct {
	Columns []string `json:"columns"`
	Orders  []Order  `json:"orders"`
}

// Clients returns the distinct non-empty client codes, sorted.
func (t *OrderTable) Clients() []string {
	seen := make(map[string]struct{})
	clients := make([]string, 0)

	for _, o := range t.Orders {
		if o.Sigla == "" {
			continue
		}
		if _, ok := seen[o.Sigla]; ok {
			continue
		}
		seen[o.Sigla] = struct{}{}
		clients = append(clients, o.Sigla)
	}

	sort.Strings(clients)
	return clients
}

// DateExtent returns the earliest and latest order dates. ok is false when
// no order has a date.
func (t *OrderTable) DateExtent() (min, max time.Time, ok bool) {
	for _, o := range t.Orders {
		if o.Data == nil {
			continue
		}
		if !ok {
			min, max, ok = *o.Data, *o.Data, true
			continue
		}
		if o.Data.Before(min) {
			min = *o.Data
		}
		if o.Data.After(max) {
			max = *o.Data
		}
	}
	return min, max, ok
}

// DatasetInfo describes a loaded table: what the client and date pickers
// are offered.
type DatasetInfo struct {
	Sheet     string     `json:"sheet"`
	Rows      int        `json:"rows"`
	Columns   []string   `json:"columns"`
	Clients   []string   `json:"clients"`
	FirstDate *time.Time `json:"first_date,omitempty"`
	LastDate  *time.Time `json:"last_date,omitempty"`
	Faturados int        `json:"faturados"`
	SemData   int        `json:"sem_data"`
}
