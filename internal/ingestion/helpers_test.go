package ingestion

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(tb testing.TB, sheet string, rows [][]interface{}) []byte {
	tb.Helper()

	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		require.NoError(tb, f.SetSheetName("Sheet1", sheet))
	}

	for r, row := range rows {
		for c, value := range row {
			name, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(tb, err)
			require.NoError(tb, f.SetCellValue(sheet, name, value))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(tb, err)
	return buf.Bytes()
}

func pedidosRows() [][]interface{} {
	return [][]interface{}{
		{" sigla ", "Valor Total", "status", "Data "},
		{"ACME", 1000.0, "FATURADO", "2024-01-05"},
		{"ACME", 500.0, "faturado", "2024-01-10"},
		{"BETA", 300.0, "PENDENTE", "2024-01-07"},
	}
}
