package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// WritePNG plots agent count and event count per invocation as two lines.
func WritePNG(s Summary, dir string) (string, error) {
	if len(s.Invocations) == 0 {
		return "", fmt.Errorf("report: no invocations to plot")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("report: create %s: %w", dir, err)
	}

	p := plot.New()
	p.Title.Text = "Invocation summary"
	p.X.Label.Text = "Invocation"
	p.Y.Label.Text = "Count"

	agentPts := make(plotter.XYs, len(s.Invocations))
	eventPts := make(plotter.XYs, len(s.Invocations))
	for i, inv := range s.Invocations {
		agentPts[i] = plotter.XY{X: float64(inv.Invocation), Y: float64(inv.AgentCount)}
		eventPts[i] = plotter.XY{X: float64(inv.Invocation), Y: float64(inv.EventCount)}
	}

	agentLine, err := plotter.NewLine(agentPts)
	if err != nil {
		return "", fmt.Errorf("report: agent count line: %w", err)
	}
	agentLine.Width = vg.Points(1.5)
	p.Add(agentLine)
	p.Legend.Add("agents", agentLine)

	eventLine, err := plotter.NewLine(eventPts)
	if err != nil {
		return "", fmt.Errorf("report: event count line: %w", err)
	}
	eventLine.Width = vg.Points(1.5)
	p.Add(eventLine)
	p.Legend.Add("events", eventLine)

	p.Legend.Top = true

	path := filepath.Join(dir, fmt.Sprintf("summary_%d.png", stamp().Unix()))
	if err := p.Save(10*vg.Inch, 5*vg.Inch, path); err != nil {
		return "", fmt.Errorf("report: save %s: %w", path, err)
	}
	return path, nil
}

// WriteHTML renders a bar chart of final agent counts per invocation.
func WriteHTML(s Summary, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("report: create %s: %w", dir, err)
	}

	x := make([]string, len(s.Invocations))
	y := make([]opts.BarData, len(s.Invocations))
	for i, inv := range s.Invocations {
		x[i] = fmt.Sprintf("%d", inv.Invocation)
		y[i] = opts.BarData{Value: inv.AgentCount}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: "Final agent count per invocation"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(x).AddSeries("agents", y, charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}))

	var buf bytes.Buffer
	if err := bar.Render(&buf); err != nil {
		return "", fmt.Errorf("report: render chart: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("summary_%d.html", stamp().Unix()))
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("report: write %s: %w", path, err)
	}
	return path, nil
}
