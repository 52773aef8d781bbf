package report

import (
	"fmt"

	"github.com/jeovahfialho/faturamento-report/internal/domain"
	"github.com/xuri/excelize/v2"
)

const (
	SummarySheet           = "Resumo"
	SpreadsheetFilename    = "resumo.xlsx"
	SpreadsheetContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ExportSummary writes the per-client totals to a one-sheet workbook: a
// header row, then one row per client, no index column.
func ExportSummary(clients []domain.ClientSummary) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return nil, fmt.Errorf("erro ao criar aba %s: %w", SummarySheet, err)
	}

	header := []interface{}{domain.ColumnSigla, domain.ColumnValorTotal}
	if err := f.SetSheetRow(SummarySheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("erro ao escrever cabeçalho: %w", err)
	}

	for i, c := range clients {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}

		row := []interface{}{c.Sigla, c.ValorTotal.InexactFloat64()}
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return nil, fmt.Errorf("erro ao escrever linha %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("erro ao gerar planilha: %w", err)
	}

	return buf.Bytes(), nil
}
