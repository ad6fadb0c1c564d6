package analytics

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/tranvn/folio/internal/models"
)

// slice palette for the allocation donut, cycled when a portfolio has more
// categories than colors.
var slicePalette = []drawing.Color{
	drawing.ColorFromHex("2563eb"), // blue-600
	drawing.ColorFromHex("16a34a"), // green-600
	drawing.ColorFromHex("d97706"), // amber-600
	drawing.ColorFromHex("dc2626"), // red-600
	drawing.ColorFromHex("7c3aed"), // violet-600
	drawing.ColorFromHex("0891b2"), // cyan-600
}

// RenderAllocationChart renders the per-category portfolio weight as a PNG
// donut chart. Categories with zero current value are omitted. Returns raw
// PNG bytes.
func RenderAllocationChart(data models.ChartData) ([]byte, error) {
	values := make([]chart.Value, 0, len(data.Categories))
	for i, entry := range data.Categories {
		if entry.CurrentValue <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s %.1f%%", entry.Label, entry.CurrentValuePercentage),
			Value: entry.CurrentValue,
			Style: chart.Style{
				FillColor:   slicePalette[i%len(slicePalette)],
				StrokeColor: drawing.ColorWhite,
				StrokeWidth: 2,
			},
		})
	}

	if len(values) == 0 {
		return nil, ErrEmptyChart
	}

	graph := chart.DonutChart{
		Title:  "Portfolio Allocation",
		Width:  600,
		Height: 600,
		Values: values,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}
