package cli

import (
	"math"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{12.5, "12.50"},
		{1234.567, "1,234.57"},
		{1234567.891, "1,234,567.89"},
		{-42.1, "-42.10"},
		{-0.001, "0.00"},
		{math.NaN(), "-"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatAmount(tt.in))
	}
}

func TestFormatCompact(t *testing.T) {
	assert.Equal(t, "999", FormatCompact(999))
	assert.Equal(t, "1.2K", FormatCompact(1234))
	assert.Equal(t, "1.2M", FormatCompact(1_234_567))
	assert.Equal(t, "-2.0K", FormatCompact(-2000))
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "0", FormatNumber(0))
	assert.Equal(t, "1,000", FormatNumber(1000))
	assert.Equal(t, "-1,234,567", FormatNumber(-1234567))
}

func TestFormatChange(t *testing.T) {
	assert.Equal(t, "+12%", FormatChange("increase", 12))
	assert.Equal(t, "-5%", FormatChange("decrease", 5))
	assert.Equal(t, "±0%", FormatChange("flat", 0))
	assert.Equal(t, "1 month", FormatMonths(1))
	assert.Equal(t, "6 months", FormatMonths(6))
	assert.Equal(t, "25.0%", FormatPercent(0.25))
}

func TestRenderSparkline(t *testing.T) {
	assert.Empty(t, RenderSparkline(nil))
	assert.Equal(t, "▁█", RenderSparkline([]float64{0, 10}))
	assert.Equal(t, "▁▁▁", RenderSparkline([]float64{0, 0, 0}))
}

func TestRenderTable_AlignsWideCells(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Category", "Amount"},
		Rows: [][]string{
			{"餐饮", "12.00"},
			{"Transport", "3.50"},
		},
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	widths := make(map[int]bool)
	for _, l := range lines {
		widths[lipgloss.Width(l)] = true
	}
	assert.Len(t, widths, 1, "every table line has the same display width")
	assert.Contains(t, out, "餐饮")
}

func TestRenderTable_Empty(t *testing.T) {
	assert.Empty(t, RenderTable(Table{}))
}
