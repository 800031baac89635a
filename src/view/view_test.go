package view

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"lifeboard/src/grid"
	"lifeboard/src/universe"
)

type fixedAverage float64

func (a fixedAverage) AveragePopulation() float64 { return float64(a) }

var plainFillers = Fillers{Width: 2, Live: "##", Dead: "..", LiveOverlay: "#|", DeadOverlay: "_|"}

func TestRenderField(t *testing.T) {
	g, err := grid.Parse(".O.\nO..")
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name     string
		overlay  bool
		w, h     int
		expected string
	}{
		{"fits", false, 10, 10, "..##..\n##...."},
		{"overlay", true, 10, 10, "_|#|_|\n#|_|_|"},
		{"narrow", false, 4, 10, "..##\n##.."},
		{"odd width", false, 5, 10, "..##\n##.."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if s := RenderField(g, tt.overlay, plainFillers, tt.w, tt.h); s != tt.expected {
				t.Fatalf("got %q, expected %q", s, tt.expected)
			}
		})
	}
}

func TestRenderFieldCropsRows(t *testing.T) {
	s := RenderField(grid.Empty(10, 2), false, plainFillers, 20, 3)
	lines := strings.Split(s, "\n")
	if len(lines) != 3 {
		t.Fatalf("got %v lines: %q", len(lines), s)
	}
	if !strings.Contains(lines[2], "larger than the viewing area") {
		t.Fatalf("no crop warning: %q", lines[2])
	}
}

func TestFitFillers(t *testing.T) {
	narrow := Fillers{Width: 1, Live: "#", Dead: ".", LiveOverlay: "#", DeadOverlay: "_"}
	tests := []struct {
		name     string
		cols     int
		maxW     int
		expected Fillers
	}{
		{"fits", 70, 140, plainFillers},
		{"too wide", 70, 100, narrow},
		{"single cell", 1, 1, narrow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if f := FitFillers(tt.cols, tt.maxW, plainFillers, narrow); f != tt.expected {
				t.Fatalf("got %+v", f)
			}
		})
	}

	g, err := grid.Parse(".O.\nO..")
	if err != nil {
		t.Fatal(err)
	}
	f := FitFillers(g.Cols(), 4, plainFillers, narrow)
	if s := RenderField(g, false, f, 4, 10); s != ".#.\n#.." {
		t.Fatalf("the field is not drawn with one column cells: %q", s)
	}
}

func TestDefaultFillersWidth(t *testing.T) {
	if DefaultFillers.Width != 2 || NarrowFillers.Width != 1 {
		t.Fatalf("unexpected widths %v %v", DefaultFillers.Width, NarrowFillers.Width)
	}
}

func TestCenterText(t *testing.T) {
	tests := []struct {
		text     string
		width    int
		expected string
	}{
		{"life", 10, "   life"},
		{"life", 4, "life"},
		{"Conway's Game of Life", 6, "Conway"},
		{"life", 0, ""},
		{"life", -3, ""},
	}
	for _, tt := range tests {
		if s := centerText(tt.text, tt.width); s != tt.expected {
			t.Errorf("centerText(%q, %v) = %q, expected %q", tt.text, tt.width, s, tt.expected)
		}
	}
}

func TestConsoleOut(t *testing.T) {
	o := universe.DefaultUniverseOptions
	o.Rows, o.Cols = 10, 10
	o.Interval = 0
	o.MaxSteps = 4
	stateCh := make(chan universe.Status, 100)
	u, err := universe.NewBaseUniverse(&o, stateCh)
	if err != nil {
		t.Fatal(err)
	}
	defer u.Close()

	var buf bytes.Buffer
	c := NewConsoleOut(&buf, 2).ReportAverage(fixedAverage(3))
	u.RegisterViewer(c)
	c.Start()
	u.SettleTemplate("blinker")
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

	out := buf.String()
	for _, s := range []string{"Running configuration:", "10 x 10", "Iterations done: 2, live cells: 3", "Finished:", "Last iteration", "Live cells", "Average population", ": 3.0"} {
		if !strings.Contains(out, s) {
			t.Errorf("output has no %q:\n%v", s, out)
		}
	}
	if strings.Contains(out, "Iterations done: 3") {
		t.Errorf("odd iteration is printed:\n%v", out)
	}
}
