package ingestion

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jeovahfialho/faturamento-report/internal/domain"
	"github.com/jeovahfialho/faturamento-report/pkg/logger"
	"github.com/jeovahfialho/faturamento-report/pkg/metrics"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
	"2006/01/02",
}

// Excel serials outside this range are not dates: 1 is 1900-01-01 and
// 2958465 is 9999-12-31.
const (
	minExcelSerial = 1
	maxExcelSerial = 2958465
)

var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// integers written with thousands grouping only, e.g. 1.500 or 1,234,567
var (
	dotGrouped   = regexp.MustCompile(`^-?[1-9]\d{0,2}(\.\d{3})+$`)
	commaGrouped = regexp.MustCompile(`^-?[1-9]\d{0,2}(,\d{3})+$`)
)

// Normalize maps a raw sheet onto the order schema. Column names are matched
// ignoring case and surrounding whitespace; the four required columns must
// all be present or nothing is processed.
func Normalize(raw *domain.RawTable) (*domain.OrderTable, error) {
	timer := metrics.NewTimer()
	defer timer.ObserveStage("normalize")

	// a Caser keeps state, so one per call
	upper := cases.Upper(language.Und)

	columns := make([]string, len(raw.Header))
	index := make(map[string]int, len(raw.Header))
	for i, name := range raw.Header {
		normalized := upper.String(strings.TrimSpace(name))
		columns[i] = normalized
		if _, dup := index[normalized]; !dup {
			index[normalized] = i
		}
	}

	for _, required := range domain.RequiredColumns {
		if _, ok := index[required]; !ok {
			return nil, &domain.MissingColumnsError{
				Expected: append([]string(nil), domain.RequiredColumns...),
				Found:    columns,
			}
		}
	}

	var (
		siglaIdx  = index[domain.ColumnSigla]
		valorIdx  = index[domain.ColumnValorTotal]
		statusIdx = index[domain.ColumnStatus]
		dataIdx   = index[domain.ColumnData]

		invalidValues int
		missingDates  int
	)

	orders := make([]domain.Order, 0, len(raw.Rows))
	for _, row := range raw.Rows {
		if isBlankRow(row) {
			continue
		}

		valor, ok := ParseValor(cell(row, valorIdx))
		if !ok {
			invalidValues++
		}

		data := ParseDate(cell(row, dataIdx))
		if data == nil {
			missingDates++
		}

		orders = append(orders, domain.Order{
			Sigla:      upper.String(strings.TrimSpace(cell(row, siglaIdx))),
			ValorTotal: valor,
			Status:     upper.String(strings.TrimSpace(cell(row, statusIdx))),
			Data:       data,
		})
	}

	metrics.RecordRows("normalized", len(orders))
	if invalidValues > 0 || missingDates > 0 {
		logger.Debug("valores não convertidos na normalização",
			zap.Int("valor_total_invalido", invalidValues),
			zap.Int("data_invalida", missingDates))
	}

	return &domain.OrderTable{
		Columns: columns,
		Orders:  orders,
	}, nil
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

// ParseDate coerces a DATA cell. Unparseable values come back nil so range
// comparisons can never include them.
func ParseDate(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		if !(serial >= minExcelSerial && serial <= maxExcelSerial) {
			return nil
		}
		t := excelSerialToDate(serial)
		return &t
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return &t
		}
	}

	return nil
}

func excelSerialToDate(serial float64) time.Time {
	days := math.Floor(serial)
	seconds := math.Round((serial - days) * 24 * 60 * 60)
	return excelEpoch.AddDate(0, 0, int(days)).Add(time.Duration(seconds) * time.Second)
}

// ParseValor coerces a VALOR TOTAL cell. Besides plain numbers it accepts
// Brazilian formatted amounts ("R$ 1.500,50", "R$ 1.500"). A separator
// followed only by groups of three digits is read as thousands grouping, so
// "1.500" and "1,500" are both 1500 while "1500,5" is 1500.5. ok is false
// when the cell is empty or not a number; the value is then zero.
func ParseValor(value string) (decimal.Decimal, bool) {
	value = strings.TrimSpace(value)
	value = strings.TrimPrefix(value, "R$")
	value = strings.Map(func(r rune) rune {
		if r == ' ' || r == '\u00a0' {
			return -1
		}
		return r
	}, value)

	if value == "" {
		return decimal.Zero, false
	}

	lastComma := strings.LastIndex(value, ",")
	lastDot := strings.LastIndex(value, ".")

	switch {
	case dotGrouped.MatchString(value):
		value = strings.ReplaceAll(value, ".", "")
	case commaGrouped.MatchString(value):
		value = strings.ReplaceAll(value, ",", "")
	case lastComma >= 0 && lastDot >= 0 && lastComma > lastDot:
		value = strings.ReplaceAll(value, ".", "")
		value = strings.Replace(value, ",", ".", 1)
	case lastComma >= 0 && lastDot >= 0:
		value = strings.ReplaceAll(value, ",", "")
	case lastComma >= 0:
		value = strings.Replace(value, ",", ".", 1)
	}

	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// NormalizeSigla applies the client code normalization used on table rows,
// so user selections compare equal to them.
func NormalizeSigla(sigla string) string {
	return cases.Upper(language.Und).String(strings.TrimSpace(sigla))
}
