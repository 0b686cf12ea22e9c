package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDimensions(t *testing.T) {
	tests := []struct {
		name       string
		windowSize []int
		fontSize   int
		wantCols   int
		wantRows   int
	}{
		{name: "defaults", windowSize: []int{1024, 768}, fontSize: 14, wantCols: 121, wantRows: 36},
		{name: "largerFont", windowSize: []int{800, 600}, fontSize: 18, wantCols: 74, wantRows: 22},
		{name: "clampedToMinimum", windowSize: []int{100, 100}, fontSize: 14, wantCols: 40, wantRows: 10},
		{name: "missingWindowSize", windowSize: nil, fontSize: 14, wantCols: 121, wantRows: 36},
		{name: "zeroFontSize", windowSize: []int{1024, 768}, fontSize: 0, wantCols: 121, wantRows: 36},
		{name: "negativeWidth", windowSize: []int{-1, 768}, fontSize: 14, wantCols: 121, wantRows: 36},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cols, rows := Dimensions(tt.windowSize, tt.fontSize)
			assert.Equal(t, tt.wantCols, cols)
			assert.Equal(t, tt.wantRows, rows)
		})
	}
}
