package exporter

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"telegram-ai-agent/internal/domain"
)

func fixtureSummaries() []domain.Summary {
	end := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)
	return []domain.Summary{
		{
			ID:        2,
			Group:     &domain.TelegramGroup{ID: 5, Name: "Gophers"},
			StartDate: end.AddDate(0, 0, -7),
			EndDate:   end,
			Content:   "Summary of \"Gophers\"\nMessages: 7 from 4 participants",
			CreatedAt: end,
		},
		{
			ID:        1,
			StartDate: end.AddDate(0, 0, -14),
			EndDate:   end.AddDate(0, 0, -7),
			Content:   "older",
			CreatedAt: end.AddDate(0, 0, -7),
		},
	}
}

func TestConsoleExporter(t *testing.T) {
	t.Run("ПустойСписок", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewConsoleExporter(false).ExportSummaries(&buf, nil))
		assert.Equal(t, "No summaries found.\n", buf.String())
	})

	t.Run("Таблица", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewConsoleExporter(false).ExportSummaries(&buf, fixtureSummaries()))

		lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
		require.Len(t, lines, 4)
		assert.Equal(t, "ID | Group   | Period                   | Summary", lines[0])
		assert.Equal(t, `2  | Gophers | 2026-10-10 .. 2026-10-17 | Summary of "Gophers"`, lines[2])
		assert.Equal(t, "1  | -       | 2026-10-03 .. 2026-10-10 | older", lines[3])
	})

	t.Run("ПолныйТекст", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewConsoleExporter(true).ExportSummaries(&buf, fixtureSummaries()[:1]))
		assert.Equal(t,
			"--- Summary #2: Gophers (2026-10-10 .. 2026-10-17) ---\nSummary of \"Gophers\"\nMessages: 7 from 4 participants\n",
			buf.String())
	})
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	err := WriteTable(&buf, []string{"Name", "Note"}, [][]string{
		{"Алиса", "one two three"},
		{"小明", "x"},
	}, 8)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "Name  | Note", lines[0])
	assert.Equal(t, "Алиса | one two", lines[2])
	assert.Equal(t, "      | three", lines[3])
	assert.Equal(t, "小明   | x", lines[4], "для CJK добавляется один пробел")
}

func TestWrapString(t *testing.T) {
	tests := []struct {
		name  string
		input string
		width int
		want  []string
	}{
		{name: "fits", input: "short", width: 10, want: []string{"short"}},
		{name: "no wrap", input: "anything goes", width: 0, want: []string{"anything goes"}},
		{name: "words", input: "one two three", width: 7, want: []string{"one two", "three"}},
		{name: "long word", input: "abcdefghij", width: 4, want: []string{"abcd", "efgh", "ij"}},
		{name: "wide runes", input: "日本語テキスト", width: 6, want: []string{"日本語", "テキス", "ト"}},
		{name: "newlines", input: "a\nb", width: 10, want: []string{"a b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, wrapString(tt.input, tt.width))
		})
	}
}

func TestExcelExporter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewExcelExporter(nil).ExportSummaries(&buf, fixtureSummaries()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SummariesSheet}, f.GetSheetList())

	rows, err := f.GetRows(SummariesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"ID", "Group", "Start", "End", "Created", "Summary"}, rows[0])
	assert.Equal(t, "2", rows[1][0])
	assert.Equal(t, "Gophers", rows[1][1])
	assert.Equal(t, "2026-10-10", rows[1][2])
	assert.Equal(t, "older", rows[2][5])
}
