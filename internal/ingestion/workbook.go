package ingestion

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jeovahfialho/faturamento-report/internal/domain"
	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"
)

type Format string

const (
	FormatUnknown Format = ""
	FormatXLSX    Format = "xlsx"
	FormatXLS     Format = "xls"
)

var (
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// DetectFormat sniffs the container: OOXML workbooks are zip archives,
// legacy .xls files are OLE2 compound documents.
func DetectFormat(data []byte) Format {
	switch {
	case bytes.HasPrefix(data, zipMagic):
		return FormatXLSX
	case bytes.HasPrefix(data, oleMagic):
		return FormatXLS
	default:
		return FormatUnknown
	}
}

// FormatFromFilename accepts only the extensions offered for upload.
func FormatFromFilename(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx":
		return FormatXLSX, nil
	case ".xls":
		return FormatXLS, nil
	default:
		return FormatUnknown, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, name)
	}
}

// ReadSheet parses the named sheet out of an in-memory workbook.
func ReadSheet(data []byte, sheet string) (*domain.RawTable, error) {
	switch DetectFormat(data) {
	case FormatXLSX:
		return readXLSX(data, sheet)
	case FormatXLS:
		return readXLS(data, sheet)
	default:
		return nil, fmt.Errorf("%w: conteúdo não reconhecido como .xlsx ou .xls", domain.ErrParse)
	}
}

func readXLSX(data []byte, sheet string) (*domain.RawTable, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrParse, err)
	}
	defer f.Close()

	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, sheetNotFound(sheet, f.GetSheetList())
	}

	// raw values keep date cells as serial numbers instead of the
	// workbook's display format
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: erro ao ler aba '%s': %w", domain.ErrParse, sheet, err)
	}

	return toRawTable(sheet, rows), nil
}

func readXLS(data []byte, sheet string) (*domain.RawTable, error) {
	workbook, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrParse, err)
	}

	var names []string
	for _, s := range workbook.GetSheets() {
		name := s.GetName()
		if name != sheet {
			names = append(names, name)
			continue
		}

		var rows [][]string
		for _, row := range s.GetRows() {
			var values []string
			for _, cell := range row.GetCols() {
				values = append(values, cell.GetString())
			}
			rows = append(rows, values)
		}
		return toRawTable(sheet, rows), nil
	}

	return nil, sheetNotFound(sheet, names)
}

func sheetNotFound(sheet string, available []string) error {
	return fmt.Errorf("%w: '%s' (abas disponíveis: %s)", domain.ErrSheetNotFound, sheet, strings.Join(available, ", "))
}

// toRawTable takes the first row as header. Leading blank rows are skipped.
func toRawTable(sheet string, rows [][]string) *domain.RawTable {
	table := &domain.RawTable{Sheet: sheet}

	for i, row := range rows {
		if isBlankRow(row) {
			continue
		}
		table.Header = row
		table.Rows = rows[i+1:]
		break
	}

	return table
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
