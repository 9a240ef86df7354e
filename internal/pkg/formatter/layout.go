package formatter

import "unicode/utf8"

const minColumnWeight = 10

// ColumnWidths splits contentWidth between the columns of rows. Each column is
// weighted by its longest cell, never below minColumnWeight characters. Widths
// stay at or above minWidth unless contentWidth/columns is smaller, and their
// sum never exceeds contentWidth.
func ColumnWidths(rows [][]string, contentWidth, minWidth int) []int {
	cols := 0
	for _, r := range rows {
		cols = max(cols, len(r))
	}
	if cols == 0 || contentWidth <= 0 {
		return nil
	}

	weights := make([]int, cols)
	total := 0
	for c := range weights {
		w := minColumnWeight
		for _, r := range rows {
			if c < len(r) {
				w = max(w, utf8.RuneCountInString(r[c]))
			}
		}
		weights[c] = w
		total += w
	}

	floor := min(max(minWidth, 0), contentWidth/cols)

	widths := make([]int, cols)
	sum := 0
	for c, w := range weights {
		widths[c] = max(contentWidth*w/total, floor)
		sum += widths[c]
	}

	for sum > contentWidth {
		widest := -1
		for c, w := range widths {
			if w > floor && (widest < 0 || w > widths[widest]) {
				widest = c
			}
		}
		if widest < 0 {
			break
		}
		shrink := min(sum-contentWidth, widths[widest]-floor)
		widths[widest] -= shrink
		sum -= shrink
	}

	return widths
}
