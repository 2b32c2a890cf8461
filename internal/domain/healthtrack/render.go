package healthtrack

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// ChartMetric selects which series RenderChart draws.
type ChartMetric string

const (
	ChartAll           ChartMetric = ""
	ChartBMI           ChartMetric = "bmi"
	ChartWeight        ChartMetric = "weight"
	ChartBloodPressure ChartMetric = "bloodPressure"
	ChartBloodSugar    ChartMetric = "bloodSugar"
	ChartSpO2          ChartMetric = "spo2"
)

// ParseChartMetric validates a metric query value.
func ParseChartMetric(s string) (ChartMetric, error) {
	switch m := ChartMetric(s); m {
	case ChartAll, ChartBMI, ChartWeight, ChartBloodPressure, ChartBloodSugar, ChartSpO2:
		return m, nil
	}
	return "", fmt.Errorf("invalid chart metric: %q", s)
}

type chartSeries struct {
	name string
	get  func(MetricReading) *float64
}

func seriesFor(m ChartMetric) []chartSeries {
	bmi := chartSeries{"BMI", func(r MetricReading) *float64 { return r.BMI }}
	weight := chartSeries{"Cân nặng", func(r MetricReading) *float64 { return r.Weight }}
	sys := chartSeries{"Tâm thu", func(r MetricReading) *float64 { return r.Systolic }}
	dia := chartSeries{"Tâm trương", func(r MetricReading) *float64 { return r.Diastolic }}
	sugar := chartSeries{"Đường huyết", func(r MetricReading) *float64 { return r.BloodSugar }}
	spo2 := chartSeries{"SpO2", func(r MetricReading) *float64 { return r.SpO2 }}

	switch m {
	case ChartBMI:
		return []chartSeries{bmi}
	case ChartWeight:
		return []chartSeries{weight}
	case ChartBloodPressure:
		return []chartSeries{sys, dia}
	case ChartBloodSugar:
		return []chartSeries{sugar}
	case ChartSpO2:
		return []chartSeries{spo2}
	default:
		return []chartSeries{bmi, weight, sys, dia, sugar, spo2}
	}
}

// RenderChart writes a self-contained HTML line chart of the readings. Null
// values become gaps in the line.
func RenderChart(w io.Writer, points []MetricReading, metric ChartMetric) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Chỉ số sức khỏe",
			Subtitle: fmt.Sprintf("%d lần đo", len(points)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
		}),
	)

	dates := make([]string, len(points))
	for i, p := range points {
		dates[i] = p.Date
	}
	line.SetXAxis(dates)

	for _, s := range seriesFor(metric) {
		data := make([]opts.LineData, len(points))
		for i, p := range points {
			data[i] = opts.LineData{Name: p.FullDate}
			if v := s.get(p); v != nil {
				data[i].Value = *v
			}
		}
		line.AddSeries(s.name, data, charts.WithLineChartOpts(opts.LineChart{
			ShowSymbol: opts.Bool(true),
		}))
	}

	return line.Render(w)
}
