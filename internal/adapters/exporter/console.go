package exporter

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"telegram-ai-agent/internal/domain"
	"telegram-ai-agent/internal/ports"
)

const (
	periodLayout = "2006-01-02"
	// previewWidth - ширина колонки с началом сводки в табличном режиме.
	previewWidth = 60
)

// ConsoleExporter выводит сводки в терминал: полностью или таблицей с превью.
type ConsoleExporter struct {
	full bool
}

// NewConsoleExporter создает новый экземпляр ConsoleExporter.
// При full == false печатается таблица с первой строкой каждой сводки.
func NewConsoleExporter(full bool) ports.Exporter {
	return &ConsoleExporter{full: full}
}

// groupName возвращает имя группы сводки или ее id, если группа не вложена.
func groupName(s domain.Summary) string {
	if s.Group == nil {
		return "-"
	}
	if s.Group.Name != "" {
		return s.Group.Name
	}
	return strconv.FormatInt(s.Group.ID, 10)
}

// period форматирует окно сводки.
func period(s domain.Summary) string {
	return s.StartDate.Format(periodLayout) + " .. " + s.EndDate.Format(periodLayout)
}

// ExportSummaries выводит сводки в w.
func (e *ConsoleExporter) ExportSummaries(w io.Writer, summaries []domain.Summary) error {
	if len(summaries) == 0 {
		_, err := fmt.Fprintln(w, "No summaries found.")
		return err
	}

	if !e.full {
		rows := make([][]string, 0, len(summaries))
		for _, s := range summaries {
			preview, _, _ := strings.Cut(strings.TrimSpace(s.Content), "\n")
			rows = append(rows, []string{strconv.FormatInt(s.ID, 10), groupName(s), period(s), preview})
		}
		return WriteTable(w, []string{"ID", "Group", "Period", "Summary"}, rows, previewWidth)
	}

	for i, s := range summaries {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "--- Summary #%d: %s (%s) ---\n%s\n", s.ID, groupName(s), period(s), strings.TrimSpace(s.Content)); err != nil {
			return fmt.Errorf("failed to write summary %d: %w", s.ID, err)
		}
	}
	return nil
}
