package exporter

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"telegram-ai-agent/internal/domain"
	"telegram-ai-agent/internal/ports"
)

// SummariesSheet - имя листа со сводками.
const SummariesSheet = "Summaries"

// ExcelExporter выгружает сводки в книгу xlsx.
type ExcelExporter struct {
	logger *slog.Logger
}

// NewExcelExporter создает новый экземпляр ExcelExporter.
func NewExcelExporter(logger *slog.Logger) ports.Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExcelExporter{logger: logger}
}

// ExportSummaries записывает книгу с одной строкой на сводку.
func (e *ExcelExporter) ExportSummaries(w io.Writer, summaries []domain.Summary) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			e.logger.Error("failed to close excel file", slog.String("error", err.Error()))
		}
	}()

	index, err := f.NewSheet(SummariesSheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to delete default sheet: %w", err)
	}

	headers := []any{"ID", "Group", "Start", "End", "Created", "Summary"}
	if err := f.SetSheetRow(SummariesSheet, "A1", &headers); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for i, s := range summaries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			s.ID,
			groupName(s),
			s.StartDate.Format(periodLayout),
			s.EndDate.Format(periodLayout),
			s.CreatedAt.Format("2006-01-02 15:04"),
			s.Content,
		}
		if err := f.SetSheetRow(SummariesSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write summary %d: %w", s.ID, err)
		}
	}

	if err := f.SetColWidth(SummariesSheet, "F", "F", 100); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write excel: %w", err)
	}
	return nil
}
