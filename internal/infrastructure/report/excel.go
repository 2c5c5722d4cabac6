package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/collabmatch/backend/internal/domain"
)

const sheetName = "Abgleich"

var headers = []string{"Name", "Zugewiesenes Produkt", "Status", "Score", "Bekannte Produkte", "Hinweis"}

// statusFills maps each verification outcome to a background color.
var statusFills = map[domain.VerificationStatus]string{
	domain.StatusVerified:   "C6EFCE",
	domain.StatusMismatch:   "FFC7CE",
	domain.StatusNoProducts: "FFEB9C",
	domain.StatusNoData:     "D9D9D9",
}

// WriteVerificationReport renders batch verification rows as a styled
// xlsx workbook and returns it ready to stream to the client.
func WriteVerificationReport(rows []domain.BatchRow, stats domain.BatchStats) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return nil, err
		}
	}
	lastHeaderCell, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheetName, "A1", lastHeaderCell, headerStyle); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}

	statusStyles := make(map[domain.VerificationStatus]int, len(statusFills))
	for status, color := range statusFills {
		style, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		})
		if err != nil {
			return nil, fmt.Errorf("create status style: %w", err)
		}
		statusStyles[status] = style
	}

	for i, row := range rows {
		rowNum := i + 2
		values := []interface{}{
			row.Name,
			row.AssignedProduct,
			string(row.Status),
			row.Score,
			strings.Join(row.Products, ", "),
			row.Message,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, rowNum)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return nil, err
			}
		}
		if style, ok := statusStyles[row.Status]; ok {
			statusCell, _ := excelize.CoordinatesToCellName(3, rowNum)
			if err := f.SetCellStyle(sheetName, statusCell, statusCell, style); err != nil {
				return nil, err
			}
		}
	}

	summaryRow := len(rows) + 3
	summary := fmt.Sprintf("Gesamt: %d | Bestätigt: %d | Abweichungen: %d | Ohne Daten: %d | Erstellt: %s",
		stats.Total, stats.Verified, stats.Mismatches, stats.NoData,
		time.Now().Format("02.01.2006 15:04"))
	summaryCell, _ := excelize.CoordinatesToCellName(1, summaryRow)
	if err := f.SetCellValue(sheetName, summaryCell, summary); err != nil {
		return nil, err
	}

	for col := range headers {
		name, _ := excelize.ColumnNumberToName(col + 1)
		width := 18.0
		if col == 4 || col == 5 {
			width = 40.0
		}
		if err := f.SetColWidth(sheetName, name, name, width); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf, nil
}
