package report

import (
	"bytes"
	"fmt"

	"github.com/golang/freetype/truetype"
	"github.com/jeovahfialho/faturamento-report/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	ChartContentType = "image/png"
	ChartTitle       = "Pedidos FATURADOS"
	ChartXAxisName   = "Cliente (SIGLA)"
	ChartYAxisName   = "Valor Total (R$)"

	chartWidth    = 800
	chartHeight   = 500
	maxBarWidth   = 50
	minBarWidth   = 6
	minBarSpacing = 4
)

var steelBlue = drawing.Color{R: 70, G: 130, B: 180, A: 255}

// RenderChart draws one bar per client, in the order given, as a PNG.
// Nothing is displayed; the image only exists in the returned buffer.
func RenderChart(clients []domain.ClientSummary) ([]byte, error) {
	if len(clients) == 0 {
		return nil, domain.ErrEmptyResult
	}

	bars := make([]chart.Value, 0, len(clients))
	var min, max float64
	for _, c := range clients {
		v := c.ValorTotal.InexactFloat64()
		if v > max {
			max = v
		}
		if v < min {
			min = v
		}
		bars = append(bars, chart.Value{
			Label: c.Sigla,
			Value: v,
			Style: chart.Style{
				FillColor:   steelBlue,
				StrokeColor: steelBlue,
				StrokeWidth: 1,
			},
		})
	}
	if max <= 0 {
		max = 1
	}

	font, err := chart.GetDefaultFont()
	if err != nil {
		return nil, fmt.Errorf("erro ao carregar fonte do gráfico: %w", err)
	}

	width, barWidth, spacing := barLayout(len(bars))

	graph := chart.BarChart{
		Title:  ChartTitle,
		Width:  width,
		Height: chartHeight,
		Font:   font,
		Background: chart.Style{
			Padding: chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 30},
		},
		BarWidth:   barWidth,
		BarSpacing: spacing,
		XAxis: chart.Style{
			TextRotationDegrees: 45.0,
		},
		YAxis: chart.YAxis{
			Name: ChartYAxisName,
			Range: &chart.ContinuousRange{
				Min: min * 1.1,
				Max: max * 1.1,
			},
			ValueFormatter: axisFormatter,
		},
		Bars:     bars,
		Elements: []chart.Renderable{xAxisName(font, width)},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("erro ao gerar gráfico: %w", err)
	}

	return buf.Bytes(), nil
}

// barLayout narrows the bars as clients are added and only widens the
// image once bars hit their minimum width.
func barLayout(n int) (width, barWidth, spacing int) {
	usable := chartWidth - 120

	barWidth = usable / (n * 2)
	if barWidth > maxBarWidth {
		barWidth = maxBarWidth
	}
	if barWidth < minBarWidth {
		barWidth = minBarWidth
	}

	spacing = barWidth / 2
	if spacing < minBarSpacing {
		spacing = minBarSpacing
	}

	width = chartWidth
	if need := n*(barWidth+spacing) + 120; need > width {
		width = need
	}
	return width, barWidth, spacing
}

// xAxisName writes the category axis name centered in the bottom padding;
// BarChart only draws a name for the value axis.
func xAxisName(font *truetype.Font, width int) chart.Renderable {
	return func(r chart.Renderer, _ chart.Box, _ chart.Style) {
		r.SetFont(font)
		r.SetFontSize(10)
		r.SetFontColor(drawing.ColorBlack)

		tb := r.MeasureText(ChartXAxisName)
		r.Text(ChartXAxisName, (width-tb.Width())/2, chartHeight-10)
	}
}

func axisFormatter(v interface{}) string {
	f, ok := v.(float64)
	if !ok {
		return fmt.Sprint(v)
	}
	return FormatCurrency(decimal.NewFromFloat(f).Round(0))
}
