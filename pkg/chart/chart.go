package chart

import (
	"bytes"
	"fmt"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/wardenhq/warden/pkg/types"
)

// ErrNotEnoughData is returned when the window holds fewer than two
// samples; a line chart needs at least two points.
var ErrNotEnoughData = fmt.Errorf("not enough samples to render a chart")

// Render draws the sample window as a PNG: CPU and memory percent on
// the primary axis, network Mbps on the secondary.
func Render(samples []types.Sample) ([]byte, error) {
	if len(samples) < 2 {
		return nil, ErrNotEnoughData
	}

	ts := make([]time.Time, len(samples))
	cpu := make([]float64, len(samples))
	mem := make([]float64, len(samples))
	inMbps := make([]float64, len(samples))
	outMbps := make([]float64, len(samples))

	for i, s := range samples {
		ts[i] = time.Unix(s.Timestamp, 0)
		cpu[i] = s.CPUPct
		mem[i] = s.MemPct
		inMbps[i] = s.NetInBps * 8 / 1e6
		outMbps[i] = s.NetOutBps * 8 / 1e6
	}

	graph := chart.Chart{
		Width:  1000,
		Height: 500,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("15:04"),
		},
		YAxis: chart.YAxis{
			Name:  "%",
			Range: &chart.ContinuousRange{Min: 0, Max: 100},
		},
		YAxisSecondary: chart.YAxis{
			Name: "Mbps",
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "CPU %",
				XValues: ts,
				YValues: cpu,
				Style:   chart.Style{StrokeColor: chart.ColorRed},
			},
			chart.TimeSeries{
				Name:    "MEM %",
				XValues: ts,
				YValues: mem,
				Style:   chart.Style{StrokeColor: chart.ColorOrange},
			},
			chart.TimeSeries{
				Name:    "NET IN Mbps",
				YAxis:   chart.YAxisSecondary,
				XValues: ts,
				YValues: inMbps,
				Style:   chart.Style{StrokeColor: chart.ColorBlue},
			},
			chart.TimeSeries{
				Name:    "NET OUT Mbps",
				YAxis:   chart.YAxisSecondary,
				XValues: ts,
				YValues: outMbps,
				Style:   chart.Style{StrokeColor: chart.ColorGreen},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	return buf.Bytes(), nil
}
