package expense

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	exportSheet   = "Spese"
	lowConfidence = 70
)

var exportHeaders = []string{"Data", "Esercente", "Categoria", "Importo", "Membro", "Affidabilità", "Scontrino"}

// exportWorkbook writes one row per expense. Scanned rows below the confidence
// threshold are highlighted so they can be double checked.
func exportWorkbook(expenses []*Expense) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, fmt.Errorf("naming sheet: %w", err)
	}

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(exportSheet, cell, h)
	}

	money, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return nil, fmt.Errorf("creating money style: %w", err)
	}
	warning, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Color: "9A0511"}})
	if err != nil {
		return nil, fmt.Errorf("creating warning style: %w", err)
	}

	for i, e := range expenses {
		row := i + 2
		f.SetCellValue(exportSheet, fmt.Sprintf("A%d", row), e.Date.Format("2006-01-02"))
		f.SetCellValue(exportSheet, fmt.Sprintf("B%d", row), e.Merchant)
		f.SetCellValue(exportSheet, fmt.Sprintf("C%d", row), e.Category)
		f.SetCellValue(exportSheet, fmt.Sprintf("D%d", row), decimal.New(int64(e.Amount), -2).InexactFloat64())
		f.SetCellStyle(exportSheet, fmt.Sprintf("D%d", row), fmt.Sprintf("D%d", row), money)
		f.SetCellValue(exportSheet, fmt.Sprintf("E%d", row), e.DisplayName)
		f.SetCellValue(exportSheet, fmt.Sprintf("F%d", row), e.Confidence)
		f.SetCellValue(exportSheet, fmt.Sprintf("G%d", row), e.ReceiptFile)
		if e.RawText != "" && e.Confidence < lowConfidence {
			f.SetCellStyle(exportSheet, fmt.Sprintf("F%d", row), fmt.Sprintf("F%d", row), warning)
		}
	}

	if len(expenses) > 0 {
		total := len(expenses) + 2
		f.SetCellValue(exportSheet, fmt.Sprintf("C%d", total), "Totale")
		f.SetCellFormula(exportSheet, fmt.Sprintf("D%d", total), fmt.Sprintf("SUM(D2:D%d)", total-1))
		f.SetCellStyle(exportSheet, fmt.Sprintf("D%d", total), fmt.Sprintf("D%d", total), money)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}
