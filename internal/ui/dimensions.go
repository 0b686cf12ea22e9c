package ui

const (
	cellWidthRatio  = 0.6
	cellHeightRatio = 1.5

	minCols = 40
	minRows = 10

	defaultFontSize = 14
)

var defaultWindowSize = []int{1024, 768}

// Dimensions converts a window size in pixels and a font size in points to
// terminal cells. A cell is 0.6 font sizes wide and 1.5 font sizes tall.
// Invalid input falls back to a 1024x768 window with a 14pt font.
func Dimensions(windowSize []int, fontSize int) (cols, rows int) {
	if len(windowSize) != 2 || windowSize[0] <= 0 || windowSize[1] <= 0 {
		windowSize = defaultWindowSize
	}
	if fontSize <= 0 {
		fontSize = defaultFontSize
	}

	cols = int(float64(windowSize[0]) / (cellWidthRatio * float64(fontSize)))
	rows = int(float64(windowSize[1]) / (cellHeightRatio * float64(fontSize)))
	return max(cols, minCols), max(rows, minRows)
}
