package report

import (
	"io"

	"github.com/xuri/excelize/v2"
)

const _exportSheetColumnWidth = 20

// WriteSummaryXLSX writes the summary statistics as a spreadsheet.
func WriteSummaryXLSX(w io.Writer, summary []PersonStats) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	header := []interface{}{"Name", "Completed Orders", "Average Time", "Fastest Time", "Slowest Time"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	row := 2
	for _, stats := range summary {
		avg, min, max := "-", "-", "-"
		if stats.Count > 0 {
			avg = FormatDuration(stats.Average)
			min = FormatDuration(stats.Min)
			max = FormatDuration(stats.Max)
		}

		excelRow := []interface{}{stats.PersonName, stats.Count, avg, min, max}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &excelRow); err != nil {
			return err
		}
		row++
	}

	if err := setColumnWidths(f, sheet, len(header)); err != nil {
		return err
	}

	return f.Write(w)
}

// WriteDetailsXLSX writes the detail rows as a spreadsheet.
func WriteDetailsXLSX(w io.Writer, rows []DetailRow) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	header := []interface{}{"Name", "Note Number", "Stage", "Date", "Time Spent"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	rowIdx := 2
	for _, detail := range rows {
		excelRow := []interface{}{
			detail.PersonName,
			detail.Number,
			detail.Stage,
			detail.StartedAt.Format("2006-01-02"),
			FormatDuration(detail.Duration),
		}
		cell, err := excelize.CoordinatesToCellName(1, rowIdx)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &excelRow); err != nil {
			return err
		}
		rowIdx++
	}

	if err := setColumnWidths(f, sheet, len(header)); err != nil {
		return err
	}

	return f.Write(w)
}

func setColumnWidths(f *excelize.File, sheet string, columns int) error {
	last, err := excelize.ColumnNumberToName(columns)
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", last, _exportSheetColumnWidth)
}
