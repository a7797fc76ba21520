package service

import (
	"fmt"

	"github.com/haatos/casetrack/internal"
	"github.com/xuri/excelize/v2"
)

type ExcelServicer interface {
	RenderReport(report *TestCaseReport) ([]byte, error)
	RenderSnapshot(snapshot *RegressionSnapshot) ([]byte, error)
}

type ExcelService struct{}

func NewExcelService() *ExcelService {
	return &ExcelService{}
}

var reportHeaders = []string{
	"Test ID",
	"Category",
	"Title",
	"Scenario",
	"Status",
	"Priority",
	"Issue",
	"Notes",
	"Ready",
}

// RenderReport renders the current test case report, one run column per
// slot with the bound date in the header.
func (s *ExcelService) RenderReport(report *TestCaseReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Test Cases"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	headers := make([]string, 0, len(reportHeaders)+internal.RunSlotCount)
	headers = append(headers, reportHeaders...)
	for i := range internal.RunSlotCount {
		title := fmt.Sprintf("Run %d", i+1)
		if i < len(report.RunDates) && report.RunDates[i] != nil {
			title = *report.RunDates[i]
		}
		headers = append(headers, title)
	}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, err
		}
	}

	for rowIdx, tc := range report.TestCases {
		values := []any{
			tc.TestID,
			tc.Category,
			tc.ShortTitle,
			tc.Scenario,
			string(tc.GeneralStatus),
			deref(tc.Priority),
			deref(tc.IssueLink),
			deref(tc.Notes),
			tc.ReadyDate,
		}
		for _, status := range tc.RunStatuses() {
			values = append(values, deref(status))
		}
		if err := setRow(f, sheet, rowIdx+2, values); err != nil {
			return nil, err
		}
	}

	if err := applyColumnWidths(f, sheet, report.Columns); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderSnapshot renders a completed regression's frozen entries.
func (s *ExcelService) RenderSnapshot(snapshot *RegressionSnapshot) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Regression"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	meta := fmt.Sprintf(
		"%s (%s), completed %s",
		snapshot.ReleaseName, snapshot.RegressionDate, snapshot.CompletedOn,
	)
	if err := f.SetCellValue(sheet, "A1", meta); err != nil {
		return nil, err
	}

	headers := make([]string, 0, len(reportHeaders)+1)
	headers = append(headers, reportHeaders...)
	headers = append(headers, "Outcome")
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 2)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, err
		}
	}

	for rowIdx, entry := range snapshot.Entries {
		values := []any{
			entry.TestID,
			entry.Category,
			entry.ShortTitle,
			entry.Scenario,
			string(entry.GeneralStatus),
			deref(entry.Priority),
			deref(entry.IssueLink),
			deref(entry.Notes),
			entry.ReadyDate,
			string(entry.Outcome),
		}
		if err := setRow(f, sheet, rowIdx+3, values); err != nil {
			return nil, err
		}
	}

	if err := applyColumnWidths(f, sheet, internal.Columns); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	for i, value := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return err
		}
	}
	return nil
}

func applyColumnWidths(f *excelize.File, sheet string, columns *internal.ColumnConfig) error {
	if columns == nil {
		return nil
	}
	widths := []float64{
		columns.TestID,
		columns.Category,
		columns.ShortTitle,
		columns.Scenario,
		columns.Status,
		columns.Priority,
		columns.IssueLink,
		columns.Notes,
		columns.ReadyDate,
	}
	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return err
		}
	}
	first, err := excelize.ColumnNumberToName(len(widths) + 1)
	if err != nil {
		return err
	}
	last, err := excelize.ColumnNumberToName(len(widths) + internal.RunSlotCount)
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, first, last, columns.RunColumn)
}

func deref[T ~string](p *T) string {
	if p == nil {
		return ""
	}
	return string(*p)
}
