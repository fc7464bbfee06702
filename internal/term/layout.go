package term

import (
	"sort"

	"github.com/rivo/uniseg"
)

// lineStarts returns the offset of the first rune of every line.
func lineStarts(text []rune) []int {
	starts := []int{0}
	for i, r := range text {
		if r == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// locate returns the line and column (in runes) of offset.
func locate(starts []int, offset int) (line, col int) {
	line = max(sort.SearchInts(starts, offset+1)-1, 0)
	return line, offset - starts[line]
}

// lineEnd returns the offset just past the last rune of line, before any
// newline.
func lineEnd(starts []int, line, textLen int) int {
	if line+1 < len(starts) {
		return starts[line+1] - 1
	}
	return textLen
}

// runeWidth returns the display width of r, expanding tabs at column x.
func runeWidth(r rune, x, tabWidth int) int {
	if r == '\t' {
		return tabWidth - x%tabWidth
	}
	return uniseg.StringWidth(string(r))
}
