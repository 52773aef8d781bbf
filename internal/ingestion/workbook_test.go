package ingestion

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jeovahfialho/faturamento-report/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Format
	}{
		{"xlsx", []byte("PK\x03\x04rest"), FormatXLSX},
		{"xls", []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1, 0x00}, FormatXLS},
		{"html", []byte("<!DOCTYPE html>"), FormatUnknown},
		{"empty", nil, FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectFormat(tt.data))
		})
	}
}

func TestFormatFromFilename(t *testing.T) {
	f, err := FormatFromFilename("Controle_Pedidos.XLSX")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	f, err = FormatFromFilename("antigo.xls")
	require.NoError(t, err)
	assert.Equal(t, FormatXLS, f)

	_, err = FormatFromFilename("pedidos.csv")
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
	assert.ErrorIs(t, err, domain.ErrParse)
}

func TestReadSheet_XLSX(t *testing.T) {
	data := buildWorkbook(t, "data", pedidosRows())

	table, err := ReadSheet(data, "data")
	require.NoError(t, err)

	assert.Equal(t, "data", table.Sheet)
	assert.Equal(t, []string{" sigla ", "Valor Total", "status", "Data "}, table.Header)
	require.Len(t, table.Rows, 3)
	assert.Equal(t, "ACME", table.Rows[0][0])
	assert.Equal(t, "1000", table.Rows[0][1])
	assert.Equal(t, "PENDENTE", table.Rows[2][2])
}

func TestReadSheet_SheetNotFound(t *testing.T) {
	data := buildWorkbook(t, "Planilha1", pedidosRows())

	_, err := ReadSheet(data, "data")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSheetNotFound)
	assert.Contains(t, err.Error(), "Planilha1")
}

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return data
}

func TestReadSheet_XLS(t *testing.T) {
	data := readFixture(t, "pedidos.xls")
	require.Equal(t, FormatXLS, DetectFormat(data))

	table, err := ReadSheet(data, "data")
	require.NoError(t, err)

	assert.Equal(t, "data", table.Sheet)
	assert.Equal(t, []string{"SIGLA", "VALOR TOTAL", "STATUS", "DATA"}, table.Header)
	require.Len(t, table.Rows, 3)
	assert.Equal(t, []string{"ACME", "1500.5", "FATURADO", "45296"}, table.Rows[0])
	assert.Equal(t, "PENDENTE", table.Rows[1][2])

	orders, err := Normalize(table)
	require.NoError(t, err)
	require.Len(t, orders.Orders, 3)
	require.True(t, orders.Orders[0].HasDate())
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), *orders.Orders[0].Data)
}

func TestReadSheet_XLSSheetNotFound(t *testing.T) {
	data := readFixture(t, "pedidos.xls")

	_, err := ReadSheet(data, "Planilha1")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSheetNotFound)
	assert.Contains(t, err.Error(), "capa, data")
}

func TestReadSheet_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"html page", []byte("<html><body>login</body></html>")},
		{"broken zip", []byte("PK\x03\x04not really a workbook")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadSheet(tt.data, "data")
			assert.ErrorIs(t, err, domain.ErrParse)
		})
	}
}

func TestToRawTable_SkipsLeadingBlankRows(t *testing.T) {
	table := toRawTable("data", [][]string{
		{"", " "},
		{"SIGLA", "VALOR TOTAL"},
		{"ACME", "10"},
	})

	assert.Equal(t, []string{"SIGLA", "VALOR TOTAL"}, table.Header)
	assert.Equal(t, [][]string{{"ACME", "10"}}, table.Rows)
}
