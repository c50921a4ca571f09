// Package report renders monthly summaries as PNG images.
package report

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"

	"centavo/internal/core"
)

// ErrNoData means the month has no categorised expenses to draw.
var ErrNoData = errors.New("no expense data for chart")

const (
	chartWidth  = 800
	chartHeight = 800
)

var background = chart.Style{
	Padding: chart.Box{
		Top:    50,
		Left:   50,
		Right:  50,
		Bottom: 50,
	},
	FillColor: chart.ColorWhite,
}

// MonthChart draws the month's top expense categories. A single category
// renders as a bar since a one-slice pie carries no information.
func MonthChart(sum core.MonthSummary) ([]byte, error) {
	values := make([]chart.Value, 0, len(sum.TopCategories))
	var total int64
	for _, ca := range sum.TopCategories {
		if ca.Amount.Cents > 0 {
			total += ca.Amount.Cents
		}
	}
	if total == 0 {
		return nil, ErrNoData
	}

	for _, ca := range sum.TopCategories {
		if ca.Amount.Cents <= 0 {
			continue
		}
		pct := float64(ca.Amount.Cents) / float64(total) * 100
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s: %s (%.1f%%)", ca.Name, ca.Amount, pct),
			Value: ca.Amount.Float(),
			Style: chart.Style{
				FontSize:  12,
				FontColor: chart.ColorBlack,
			},
		})
	}

	title := "Expenses " + sum.Period
	buf := &bytes.Buffer{}
	if len(values) == 1 {
		bar := chart.BarChart{
			Title:      title,
			Width:      chartWidth,
			Height:     chartHeight / 2,
			BarWidth:   120,
			Background: background,
			Bars:       values,
			YAxis: chart.YAxis{
				// go-chart cannot infer a range from one bar.
				Range: &chart.ContinuousRange{Min: 0, Max: values[0].Value * 1.1},
				ValueFormatter: func(v any) string {
					return fmt.Sprintf("%.2f", v.(float64))
				},
			},
		}
		if err := bar.Render(chart.PNG, buf); err != nil {
			return nil, fmt.Errorf("render bar chart: %w", err)
		}
		return buf.Bytes(), nil
	}

	pie := chart.PieChart{
		Title:      title,
		Width:      chartWidth,
		Height:     chartHeight,
		Values:     values,
		Background: background,
	}
	if err := pie.Render(chart.PNG, buf); err != nil {
		return nil, fmt.Errorf("render pie chart: %w", err)
	}
	return buf.Bytes(), nil
}
