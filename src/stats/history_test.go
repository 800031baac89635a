package stats

import (
	"bytes"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"lifeboard/src/universe"
)

func TestHistoryAdd(t *testing.T) {
	h := NewHistory()
	h.Add(Sample{Generation: 0, LiveCells: 10})
	h.Add(Sample{Generation: 0, LiveCells: 12})
	h.Add(Sample{Generation: 1, LiveCells: 20})
	h.Add(Sample{Generation: 2, LiveCells: 30})

	s := h.Samples()
	if len(s) != 3 || s[0].LiveCells != 12 || s[2].Generation != 2 {
		t.Fatalf("samples: %+v", s)
	}
	expected := (12*0.9+20*0.1)*0.9 + 30*0.1
	if math.Abs(h.AveragePopulation()-expected) > 1e-9 {
		t.Fatalf("average %v, expected %v", h.AveragePopulation(), expected)
	}

	h.Add(Sample{Generation: 0, LiveCells: 5})
	if s := h.Samples(); len(s) != 1 || s[0].LiveCells != 5 || h.AveragePopulation() != 5 {
		t.Fatalf("history is not restarted: %+v", s)
	}
}

func TestAverageStartsWithFirstSample(t *testing.T) {
	tests := []struct {
		name     string
		live     []int
		expected float64
	}{
		{"empty first generation", []int{0, 10}, 1},
		{"extinction", []int{10, 0, 0}, 8.1},
		{"single", []int{7}, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHistory()
			for i, n := range tt.live {
				h.Add(Sample{Generation: i, LiveCells: n})
			}
			if avg := h.AveragePopulation(); math.Abs(avg-tt.expected) > 1e-9 {
				t.Fatalf("average %v, expected %v", avg, tt.expected)
			}
			s := h.Samples()
			if s[0].Average != float64(tt.live[0]) {
				t.Fatalf("first sample average %v", s[0].Average)
			}
		})
	}
	if avg := NewHistory().AveragePopulation(); avg != 0 {
		t.Fatalf("empty history average %v", avg)
	}
}

func TestRender(t *testing.T) {
	h := NewHistory()
	if err := h.Render(&bytes.Buffer{}, 400, 200); err == nil {
		t.Fatal("expected error on empty history")
	}
	for i := 0; i < 20; i++ {
		h.Add(Sample{Generation: i, LiveCells: 100 - i*3})
	}
	var buf bytes.Buffer
	if err := h.Render(&buf, 400, 200); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 400 || b.Dy() != 200 {
		t.Fatalf("image size %v", b)
	}
}

func TestHistoryAsViewer(t *testing.T) {
	o := universe.DefaultUniverseOptions
	o.Rows, o.Cols = 20, 20
	o.Interval = 0
	o.MaxSteps = 10
	o.Seed = 3
	stateCh := make(chan universe.Status, 100)
	u, err := universe.NewBaseUniverse(&o, stateCh)
	if err != nil {
		t.Fatal(err)
	}
	defer u.Close()

	h := NewHistory()
	u.RegisterViewer(h)
	u.SettleWithRandomData()
	u.Run()
	deadline := time.After(5 * time.Second)
	for finished := false; !finished; {
		select {
		case st := <-stateCh:
			finished = st.RunningMode == universe.RunningStateFinished
		case <-deadline:
			t.Fatal("simulation is not finished")
		}
	}

	s := h.Samples()
	if len(s) != 11 {
		t.Fatalf("got %v samples, expected generations 0..10", len(s))
	}
	for i, sample := range s {
		if sample.Generation != i {
			t.Fatalf("sample %v is generation %v", i, sample.Generation)
		}
	}
	if s[10].LiveCells != u.Grid().LiveCells() {
		t.Fatalf("last sample %v, grid has %v", s[10].LiveCells, u.Grid().LiveCells())
	}

	path := filepath.Join(t.TempDir(), "population.png")
	if err := h.SaveChart(path, 300, 150); err != nil {
		t.Fatal(err)
	}
	if fi, err := os.Stat(path); err != nil || fi.Size() == 0 {
		t.Fatalf("chart is not written: %v", err)
	}
}
