package service

import (
	"sort"
	"time"

	"github.com/jeovahfialho/faturamento-report/internal/domain"
	"github.com/jeovahfialho/faturamento-report/internal/ingestion"
	"github.com/jeovahfialho/faturamento-report/pkg/logger"
	"github.com/jeovahfialho/faturamento-report/pkg/metrics"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type AggregationService struct{}

func NewAggregationService() *AggregationService {
	return &AggregationService{}
}

// Summarize filters the table with sel and totals the matching orders per
// client. ErrEmptyResult means the table was valid but nothing matched.
func (s *AggregationService) Summarize(table *domain.OrderTable, sel domain.Selection) (*domain.Summary, error) {
	timer := metrics.NewTimer()
	defer timer.ObserveStage("aggregate")

	filtered := Filter(table, sel)

	metrics.RecordRows("matched", len(filtered))
	metrics.RecordRows("discarded", len(table.Orders)-len(filtered))

	if len(filtered) == 0 {
		return nil, domain.ErrEmptyResult
	}

	clients, total := Aggregate(filtered)

	logger.Debug("agregação concluída",
		zap.Int("pedidos", len(filtered)),
		zap.Int("clientes", len(clients)),
		zap.String("total", total.StringFixed(2)))

	return &domain.Summary{
		Selection:  sel,
		Clients:    clients,
		GrandTotal: total,
		Orders:     len(filtered),
	}, nil
}

// Filter keeps the FATURADO orders of the selected clients dated inside the
// selection, preserving table order.
func Filter(table *domain.OrderTable, sel domain.Selection) []domain.Order {
	filtered := make([]domain.Order, 0)
	for _, o := range table.Orders {
		if sel.Includes(o) {
			filtered = append(filtered, o)
		}
	}
	return filtered
}

// Aggregate sums ValorTotal per client. Rows come out by descending total;
// equal totals keep the order in which the clients first appear.
func Aggregate(orders []domain.Order) ([]domain.ClientSummary, decimal.Decimal) {
	index := make(map[string]int)
	clients := make([]domain.ClientSummary, 0)
	total := decimal.Zero

	for _, o := range orders {
		total = total.Add(o.ValorTotal)

		i, ok := index[o.Sigla]
		if !ok {
			i = len(clients)
			index[o.Sigla] = i
			clients = append(clients, domain.ClientSummary{Sigla: o.Sigla, ValorTotal: decimal.Zero})
		}
		clients[i].ValorTotal = clients[i].ValorTotal.Add(o.ValorTotal)
	}

	sort.SliceStable(clients, func(i, j int) bool {
		return clients[i].ValorTotal.GreaterThan(clients[j].ValorTotal)
	})

	return clients, total
}

// ReconcileSelection turns what the user picked into a valid selection:
// no clients means all of them; a missing or half-given range falls back
// to the data extent (today when no row has a date); a reversed range is
// swapped.
func ReconcileSelection(table *domain.OrderTable, clients []string, start, end *time.Time, today time.Time) domain.Selection {
	var sel domain.Selection

	if len(clients) == 0 {
		sel.Clients = table.Clients()
	} else {
		seen := make(map[string]struct{}, len(clients))
		for _, c := range clients {
			c = ingestion.NormalizeSigla(c)
			if c == "" {
				continue
			}
			if _, dup := seen[c]; dup {
				continue
			}
			seen[c] = struct{}{}
			sel.Clients = append(sel.Clients, c)
		}
	}

	if start != nil && end != nil {
		sel.Start, sel.End = *start, *end
	} else if min, max, ok := table.DateExtent(); ok {
		sel.Start, sel.End = min, max
	} else {
		sel.Start, sel.End = today, today
	}

	if sel.End.Before(sel.Start) {
		sel.Start, sel.End = sel.End, sel.Start
	}

	sel.Start = domain.TruncateDay(sel.Start)
	sel.End = domain.TruncateDay(sel.End)

	return sel
}
