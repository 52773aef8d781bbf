package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/jeovahfialho/faturamento-report/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func order(sigla string, valor int64, status string, data *time.Time) domain.Order {
	return domain.Order{
		Sigla:      sigla,
		ValorTotal: decimal.NewFromInt(valor),
		Status:     status,
		Data:       data,
	}
}

func sampleTable() *domain.OrderTable {
	return &domain.OrderTable{
		Columns: domain.RequiredColumns,
		Orders: []domain.Order{
			order("ACME", 1000, domain.StatusFaturado, day(2024, 1, 5)),
			order("ACME", 500, domain.StatusFaturado, day(2024, 1, 20)),
			order("BETA", 300, "PENDENTE", day(2024, 1, 10)),
		},
	}
}

func TestSummarize(t *testing.T) {
	svc := NewAggregationService()

	t.Run("faturados do período", func(t *testing.T) {
		sel := domain.Selection{
			Clients: []string{"ACME", "BETA"},
			Start:   *day(2024, 1, 1),
			End:     *day(2024, 1, 31),
		}

		summary, err := svc.Summarize(sampleTable(), sel)
		require.NoError(t, err)

		require.Len(t, summary.Clients, 1)
		assert.Equal(t, "ACME", summary.Clients[0].Sigla)
		assert.True(t, decimal.NewFromInt(1500).Equal(summary.Clients[0].ValorTotal))
		assert.True(t, decimal.NewFromInt(1500).Equal(summary.GrandTotal))
		assert.Equal(t, 2, summary.Orders)
	})

	t.Run("limites inclusivos", func(t *testing.T) {
		sel := domain.Selection{
			Clients: []string{"ACME"},
			Start:   *day(2024, 1, 5),
			End:     *day(2024, 1, 5),
		}

		summary, err := svc.Summarize(sampleTable(), sel)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(1000).Equal(summary.GrandTotal))
	})

	t.Run("nenhum pedido", func(t *testing.T) {
		sel := domain.Selection{
			Clients: []string{"BETA"},
			Start:   *day(2024, 1, 1),
			End:     *day(2024, 1, 31),
		}

		summary, err := svc.Summarize(sampleTable(), sel)
		assert.ErrorIs(t, err, domain.ErrEmptyResult)
		assert.Nil(t, summary)
	})

	t.Run("fora do período", func(t *testing.T) {
		sel := domain.Selection{
			Clients: []string{"ACME"},
			Start:   *day(2023, 1, 1),
			End:     *day(2023, 12, 31),
		}

		_, err := svc.Summarize(sampleTable(), sel)
		assert.ErrorIs(t, err, domain.ErrEmptyResult)
	})
}

func TestFilter_SkipsUndated(t *testing.T) {
	table := &domain.OrderTable{
		Orders: []domain.Order{
			order("ACME", 10, domain.StatusFaturado, nil),
			order("ACME", 20, domain.StatusFaturado, day(2024, 3, 1)),
		},
	}
	sel := domain.Selection{Clients: []string{"ACME"}, Start: *day(2024, 1, 1), End: *day(2024, 12, 31)}

	got := Filter(table, sel)
	require.Len(t, got, 1)
	assert.True(t, decimal.NewFromInt(20).Equal(got[0].ValorTotal))
}

func TestAggregate(t *testing.T) {
	orders := []domain.Order{
		order("C", 100, domain.StatusFaturado, day(2024, 1, 1)),
		order("A", 300, domain.StatusFaturado, day(2024, 1, 1)),
		order("B", 100, domain.StatusFaturado, day(2024, 1, 1)),
		order("C", 50, domain.StatusFaturado, day(2024, 1, 2)),
		order("D", 150, domain.StatusFaturado, day(2024, 1, 2)),
	}

	clients, total := Aggregate(orders)

	siglas := make([]string, len(clients))
	sum := decimal.Zero
	for i, c := range clients {
		siglas[i] = c.Sigla
		sum = sum.Add(c.ValorTotal)
	}

	// C and D tie at 150: C appeared first.
	assert.Equal(t, []string{"A", "C", "D", "B"}, siglas)
	assert.True(t, decimal.NewFromInt(700).Equal(total))
	assert.True(t, sum.Equal(total))

	for i := 1; i < len(clients); i++ {
		assert.False(t, clients[i].ValorTotal.GreaterThan(clients[i-1].ValorTotal))
	}
}

func TestAggregate_Decimals(t *testing.T) {
	orders := []domain.Order{
		{Sigla: "X", ValorTotal: decimal.RequireFromString("0.10"), Status: domain.StatusFaturado, Data: day(2024, 1, 1)},
		{Sigla: "X", ValorTotal: decimal.RequireFromString("0.20"), Status: domain.StatusFaturado, Data: day(2024, 1, 1)},
	}

	clients, total := Aggregate(orders)
	require.Len(t, clients, 1)
	assert.Equal(t, "0.30", total.StringFixed(2))
	assert.True(t, decimal.RequireFromString("0.3").Equal(clients[0].ValorTotal))
}

func TestReconcileSelection(t *testing.T) {
	today := time.Date(2024, 6, 15, 13, 45, 0, 0, time.UTC)
	table := sampleTable()

	t.Run("sem clientes usa todos", func(t *testing.T) {
		sel := ReconcileSelection(table, nil, day(2024, 1, 1), day(2024, 1, 31), today)
		assert.Equal(t, []string{"ACME", "BETA"}, sel.Clients)
	})

	t.Run("normaliza e remove duplicados", func(t *testing.T) {
		sel := ReconcileSelection(table, []string{" acme", "ACME", "", "beta "}, nil, nil, today)
		assert.Equal(t, []string{"ACME", "BETA"}, sel.Clients)
	})

	t.Run("sem datas usa extensão dos dados", func(t *testing.T) {
		sel := ReconcileSelection(table, nil, nil, nil, today)
		assert.Equal(t, *day(2024, 1, 5), sel.Start)
		assert.Equal(t, *day(2024, 1, 20), sel.End)
	})

	t.Run("data única usa extensão dos dados", func(t *testing.T) {
		sel := ReconcileSelection(table, nil, day(2024, 1, 10), nil, today)
		assert.Equal(t, *day(2024, 1, 5), sel.Start)
		assert.Equal(t, *day(2024, 1, 20), sel.End)
	})

	t.Run("intervalo invertido", func(t *testing.T) {
		sel := ReconcileSelection(table, nil, day(2024, 1, 31), day(2024, 1, 1), today)
		assert.Equal(t, *day(2024, 1, 1), sel.Start)
		assert.Equal(t, *day(2024, 1, 31), sel.End)
	})

	t.Run("tabela sem datas usa hoje", func(t *testing.T) {
		undated := &domain.OrderTable{Orders: []domain.Order{order("ACME", 1, domain.StatusFaturado, nil)}}

		sel := ReconcileSelection(undated, nil, nil, nil, today)
		assert.Equal(t, *day(2024, 6, 15), sel.Start)
		assert.Equal(t, *day(2024, 6, 15), sel.End)
	})
}

func BenchmarkAggregate(b *testing.B) {
	orders := make([]domain.Order, 10000)
	for i := range orders {
		orders[i] = order(fmt.Sprintf("CLI%02d", i%50), int64(i), domain.StatusFaturado, day(2024, 1, 1+i%28))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Aggregate(orders)
	}
}
