package google

import (
	"fmt"
	"strconv"
	"strings"
)

// quoteSheet returns the sheet name in A1 notation form, quoting it when it
// contains anything besides letters, digits and underscores.
func quoteSheet(name string) string {
	plain := name != ""
	for _, r := range name {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			plain = false
			break
		}
	}
	if plain {
		return name
	}
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// columnName converts a 1-based column index to its letter form (1 -> A, 27 -> AA).
func columnName(n int) string {
	var out []byte
	for n > 0 {
		n--
		out = append([]byte{byte('A' + n%26)}, out...)
		n /= 26
	}
	return string(out)
}

// dataRange is the A1 range covering rows starting at A1.
func dataRange(sheet string, rows [][]string) string {
	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	if width == 0 || len(rows) == 0 {
		return quoteSheet(sheet) + "!A1"
	}
	return fmt.Sprintf("%s!A1:%s%d", quoteSheet(sheet), columnName(width), len(rows))
}

// toValues converts export rows to sheet cell values. Amount and id columns
// become numbers so the sheet can sum them.
func toValues(rows [][]string) [][]any {
	values := make([][]any, len(rows))
	for i, row := range rows {
		cells := make([]any, len(row))
		for j, cell := range row {
			cells[j] = cell
			if i == 0 || (j != 1 && j != 2) {
				continue
			}
			if f, err := strconv.ParseFloat(cell, 64); err == nil {
				cells[j] = f
			}
		}
		values[i] = cells
	}
	return values
}
