package exporter

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
)

// WriteTable выводит таблицу с выравниванием по ширине символов на экране.
// Ячейки шире maxColWidth переносятся по словам; maxColWidth <= 0 отключает перенос.
func WriteTable(w io.Writer, headers []string, rows [][]string, maxColWidth int) error {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}

	wrapped := make([][][]string, len(rows))
	for r, row := range rows {
		wrapped[r] = make([][]string, len(headers))
		for c := range headers {
			cell := ""
			if c < len(row) {
				cell = row[c]
			}
			lines := wrapString(cell, maxColWidth)
			wrapped[r][c] = lines
			for _, line := range lines {
				if lw := runewidth.StringWidth(line); lw > widths[c] {
					widths[c] = lw
				}
			}
		}
	}

	var sb strings.Builder
	writeLine := func(cells []string) {
		for c, cell := range cells {
			if c > 0 {
				sb.WriteString(" | ")
			}
			sb.WriteString(cell)
			if c < len(cells)-1 {
				sb.WriteString(generatePadding(cell, widths[c]))
			}
		}
		sb.WriteString("\n")
	}

	writeLine(headers)
	sep := make([]string, len(headers))
	for c, width := range widths {
		sep[c] = strings.Repeat("-", width)
	}
	writeLine(sep)

	for _, row := range wrapped {
		height := 0
		for _, lines := range row {
			if len(lines) > height {
				height = len(lines)
			}
		}
		for i := 0; i < height; i++ {
			cells := make([]string, len(row))
			for c, lines := range row {
				if i < len(lines) {
					cells[c] = lines[i]
				}
			}
			writeLine(cells)
		}
	}

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("failed to write table: %w", err)
	}
	return nil
}

func generatePadding(s string, colWidth int) string {
	paddingNeeded := colWidth - runewidth.StringWidth(s)

	// Некоторые терминалы рисуют CJK-символы шире, чем считает runewidth: добавляем один пробел.
	hasCJK := false
	for _, r := range s {
		if unicode.Is(unicode.Han, r) || unicode.Is(unicode.Hangul, r) || unicode.Is(unicode.Hiragana, r) || unicode.Is(unicode.Katakana, r) {
			hasCJK = true
			break
		}
	}

	if hasCJK && paddingNeeded >= 0 {
		paddingNeeded++
	}

	if paddingNeeded > 0 {
		return strings.Repeat(" ", paddingNeeded)
	}
	return ""
}

// splitByWidth режет строку на куски не шире width.
func splitByWidth(s string, width int) []string {
	var lines []string
	runes := []rune(s)
	for len(runes) > 0 {
		i := 0
		currentWidth := 0
		for i < len(runes) {
			rw := runewidth.RuneWidth(runes[i])
			if currentWidth+rw > width && i > 0 {
				break
			}
			currentWidth += rw
			i++
		}
		lines = append(lines, string(runes[:i]))
		runes = runes[i:]
	}
	return lines
}

// wrapString переносит строку по словам в пределах width. Слово длиннее width режется посередине.
func wrapString(s string, width int) []string {
	s = strings.ReplaceAll(s, "\n", " ")
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return []string{s}
	}

	words := strings.Fields(s)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	var currentLine strings.Builder
	for _, word := range words {
		wordWidth := runewidth.StringWidth(word)

		if wordWidth > width {
			if currentLine.Len() > 0 {
				lines = append(lines, currentLine.String())
				currentLine.Reset()
			}
			lines = append(lines, splitByWidth(word, width)...)
			continue
		}

		lineLen := runewidth.StringWidth(currentLine.String())
		if lineLen > 0 && lineLen+1+wordWidth > width {
			lines = append(lines, currentLine.String())
			currentLine.Reset()
		}

		if currentLine.Len() > 0 {
			currentLine.WriteString(" ")
		}
		currentLine.WriteString(word)
	}

	if currentLine.Len() > 0 {
		lines = append(lines, currentLine.String())
	}
	return lines
}
