package util

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/ihtc/ihtp-ga/pkg/algorithms"
)

// TracePoint is the cost summary of one era.
type TracePoint struct {
	Era   int
	Best  int
	Mean  float64
	Worst int
}

// Trace collects the convergence of a search. It implements
// algorithms.Observer.
type Trace struct {
	mu     sync.Mutex
	points []TracePoint
}

var _ algorithms.Observer = &Trace{}

func (t *Trace) ObserveEra(_ context.Context, s algorithms.EraStats) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.points = append(t.points, TracePoint{Era: s.Era, Best: s.BestSoftCost, Mean: s.MeanSoftCost, Worst: s.WorstSoftCost})
	return nil
}

// Points returns a copy of the collected points.
func (t *Trace) Points() []TracePoint {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]TracePoint(nil), t.points...)
}

// RenderConvergence draws the best, mean and worst soft cost per era as a
// line chart.
func RenderConvergence(w io.Writer, points []TracePoint, instance, algorithmName string) error {
	if len(points) == 0 {
		return fmt.Errorf("no eras recorded for %s", instance)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s convergence on %s", algorithmName, instance),
			Subtitle: fmt.Sprintf("best soft cost %d after %d eras", points[len(points)-1].Best, len(points)),
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: types.ThemeWesteros,
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "era",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "soft cost",
			SplitLine: &opts.SplitLine{
				Show: opts.Bool(true),
			},
		}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}))

	eras := make([]string, len(points))
	best := make([]opts.LineData, len(points))
	mean := make([]opts.LineData, len(points))
	worst := make([]opts.LineData, len(points))
	for i, p := range points {
		eras[i] = strconv.Itoa(p.Era)
		best[i] = opts.LineData{Value: p.Best}
		mean[i] = opts.LineData{Value: p.Mean}
		worst[i] = opts.LineData{Value: p.Worst}
	}

	line.SetXAxis(eras).
		AddSeries("Best", best).
		AddSeries("Mean", mean).
		AddSeries("Worst", worst).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show: opts.Bool(false),
			}),
		)
	return line.Render(w)
}

// PlotConvergence writes the convergence chart to an HTML file. The file
// name defaults to <instance>_<algorithm>_convergence.html.
func PlotConvergence(points []TracePoint, instance, algorithmName string, outputPath ...string) error {
	filename := fmt.Sprintf("%s_%s_convergence.html", instance, algorithmName)
	if len(outputPath) > 0 && outputPath[0] != "" {
		filename = outputPath[0]
	}

	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	return RenderConvergence(f, points, instance, algorithmName)
}
