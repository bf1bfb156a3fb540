package services

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"landlord_docs_app_go/legal"
	"landlord_docs_app_go/models"

	"github.com/xuri/excelize/v2"
)

const arrearsSheet = "Arrears"

var arrearsHeaders = []string{"Period start", "Period end", "Due date", "Rent due (£)", "Paid (£)", "Balance (£)"}

// ArrearsScheduleXLSX builds the rent arrears schedule spreadsheet for a case
func ArrearsScheduleXLSX(c *models.Case) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", arrearsSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	facts := c.Facts
	f.SetCellValue(arrearsSheet, "A1", "Rent arrears schedule")
	f.SetCellValue(arrearsSheet, "A2", facts.Property.Address())
	f.SetCellValue(arrearsSheet, "A3", "Tenant(s): "+facts.TenantNames())
	f.SetCellValue(arrearsSheet, "A4", fmt.Sprintf("Rent: %s %s", legal.FormatGBP(facts.Tenancy.RentPence), rentUnit(facts.Tenancy.RentFrequency)))

	titleStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	f.SetCellStyle(arrearsSheet, "A1", "A1", titleStyle)

	const headerRow = 6
	for i, header := range arrearsHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, headerRow)
		f.SetCellValue(arrearsSheet, cell, header)
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	f.SetCellStyle(arrearsSheet, "A6", "F6", headerStyle)

	money, _ := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	row := headerRow + 1
	var balance int64
	for _, e := range facts.Arrears.Sorted() {
		balance += e.DuePence - e.PaidPence
		f.SetCellValue(arrearsSheet, fmt.Sprintf("A%d", row), e.PeriodStart.String())
		f.SetCellValue(arrearsSheet, fmt.Sprintf("B%d", row), e.PeriodEnd.String())
		f.SetCellValue(arrearsSheet, fmt.Sprintf("C%d", row), e.DueDate.String())
		f.SetCellValue(arrearsSheet, fmt.Sprintf("D%d", row), poundsValue(e.DuePence))
		f.SetCellValue(arrearsSheet, fmt.Sprintf("E%d", row), poundsValue(e.PaidPence))
		f.SetCellValue(arrearsSheet, fmt.Sprintf("F%d", row), poundsValue(balance))
		f.SetCellStyle(arrearsSheet, fmt.Sprintf("D%d", row), fmt.Sprintf("F%d", row), money)
		row++
	}

	f.SetCellValue(arrearsSheet, fmt.Sprintf("E%d", row), "Total")
	f.SetCellValue(arrearsSheet, fmt.Sprintf("F%d", row), poundsValue(facts.Arrears.TotalPence()))
	f.SetCellStyle(arrearsSheet, fmt.Sprintf("E%d", row), fmt.Sprintf("E%d", row), headerStyle)
	f.SetCellStyle(arrearsSheet, fmt.Sprintf("F%d", row), fmt.Sprintf("F%d", row), money)

	f.SetColWidth(arrearsSheet, "A", "C", 14)
	f.SetColWidth(arrearsSheet, "D", "F", 14)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write excel buffer: %w", err)
	}
	return buf, nil
}

func poundsValue(pence int64) float64 {
	return float64(pence) / 100
}

// ImportArrearsXLSX reads a schedule in the layout ArrearsScheduleXLSX writes. Rows
// before the header and the totals row are ignored.
func ImportArrearsXLSX(r io.Reader) ([]legal.ArrearsEntry, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	var entries []legal.ArrearsEntry
	inTable := false
	for i, row := range rows {
		if !inTable {
			inTable = len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), arrearsHeaders[0])
			continue
		}
		if len(row) < 4 || strings.TrimSpace(row[0]) == "" {
			continue
		}

		start, err := legal.ParseDate(row[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		end, err := legal.ParseDate(row[1])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		due := start
		if strings.TrimSpace(row[2]) != "" {
			if due, err = legal.ParseDate(row[2]); err != nil {
				return nil, fmt.Errorf("row %d: %w", i+1, err)
			}
		}
		duePence, err := parsePounds(row[3])
		if err != nil {
			return nil, fmt.Errorf("row %d: rent due: %w", i+1, err)
		}
		var paidPence int64
		if len(row) > 4 {
			if paidPence, err = parsePounds(row[4]); err != nil {
				return nil, fmt.Errorf("row %d: paid: %w", i+1, err)
			}
		}
		entries = append(entries, legal.ArrearsEntry{
			PeriodStart: start,
			PeriodEnd:   end,
			DueDate:     due,
			DuePence:    duePence,
			PaidPence:   paidPence,
		})
	}
	if !inTable {
		return nil, fmt.Errorf("no %q header row found", arrearsHeaders[0])
	}
	return entries, nil
}

func parsePounds(s string) (int64, error) {
	s = strings.NewReplacer("£", "", ",", "").Replace(strings.TrimSpace(s))
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	return int64(math.Round(v * 100)), nil
}
