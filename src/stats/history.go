// Package stats collects the per-generation population of a universe.
package stats

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"lifeboard/src/universe"
)

// Sample is the population of one generation.
type Sample struct {
	Generation    int
	LiveCells     int
	IterationTime time.Duration
	Average       float64 // moving average of LiveCells up to this generation, set by Add
}

// History is a universe viewer recording one Sample per generation.
// A new history is started when the generation counter goes back (clear, random data).
type History struct {
	mu      sync.Mutex
	u       universe.Universe
	samples []Sample
}

func NewHistory() *History {
	return &History{}
}

func (h *History) Register(u universe.Universe) {
	h.u = u
}

func (h *History) Refresh() {
	st := h.u.Status()
	h.Add(Sample{Generation: st.IterationNum, LiveCells: st.LiveCells, IterationTime: st.IterationTime})
}

// Add records s, a sample of an already recorded generation replaces the recorded one.
func (h *History) Add(s Sample) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if n := len(h.samples); n > 0 {
		last := h.samples[n-1]
		switch {
		case s.Generation < last.Generation:
			h.samples = h.samples[:0]
		case s.Generation == last.Generation:
			h.samples = h.samples[:n-1]
		}
	}
	h.samples = append(h.samples, s)

	// exponential moving average
	n := len(h.samples)
	if n == 1 {
		h.samples[0].Average = float64(s.LiveCells)
	} else {
		h.samples[n-1].Average = h.samples[n-2].Average*0.9 + float64(s.LiveCells)*0.1
	}
}

// Samples returns a copy of the recorded samples.
func (h *History) Samples() []Sample {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Sample(nil), h.samples...)
}

// AveragePopulation is the moving average of live cells.
func (h *History) AveragePopulation() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.samples) == 0 {
		return 0
	}
	return h.samples[len(h.samples)-1].Average
}

// Render writes the population chart as PNG.
func (h *History) Render(w io.Writer, width int, height int) error {
	samples := h.Samples()
	if len(samples) < 2 {
		return errors.Errorf("not enough generations to draw: %v", len(samples))
	}
	xs := make([]float64, len(samples))
	ys := make([]float64, len(samples))
	avg := make([]float64, len(samples))
	for i, s := range samples {
		xs[i] = float64(s.Generation)
		ys[i] = float64(s.LiveCells)
		avg[i] = s.Average
	}

	graph := chart.Chart{
		Width:  width,
		Height: height,
		XAxis: chart.XAxis{
			Name:  "Generation",
			Style: chart.Style{FontSize: 10.0},
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%d", int(v.(float64)))
			},
		},
		YAxis: chart.YAxis{
			Name:  "Live cells",
			Style: chart.Style{FontSize: 10.0},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Population",
				XValues: xs,
				YValues: ys,
				Style:   chart.Style{StrokeColor: drawing.Color{R: 0, G: 160, B: 0, A: 255}, StrokeWidth: 2.0},
			},
			chart.ContinuousSeries{
				Name:    "Average",
				XValues: xs,
				YValues: avg,
				Style: chart.Style{
					StrokeColor:     drawing.Color{R: 200, G: 80, B: 0, A: 255},
					StrokeWidth:     1.5,
					StrokeDashArray: []float64{5.0, 3.0},
				},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return errors.Wrap(graph.Render(chart.PNG, w), "render chart")
}

// SaveChart renders the population chart to the PNG file.
func (h *History) SaveChart(path string, width int, height int) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %v", path)
	}
	if err = h.Render(f, width, height); err != nil {
		_ = f.Close()
		return err
	}
	return errors.Wrapf(f.Close(), "close %v", path)
}
