package record

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"lifeboard/src/grid"
	"lifeboard/src/universe"
)

func TestDraw(t *testing.T) {
	g, err := grid.Parse("O.\n.O")
	if err != nil {
		t.Fatal(err)
	}
	img := Draw(g, 4, false)
	if b := img.Bounds(); b.Dx() != 8 || b.Dy() != 8 {
		t.Fatalf("bounds %v", b)
	}
	if img.RGBAAt(1, 1) != LiveColor || img.RGBAAt(5, 5) != LiveColor {
		t.Fatal("live cells are not drawn")
	}
	if img.RGBAAt(5, 1) != DeadColor || img.RGBAAt(1, 5) != DeadColor {
		t.Fatal("dead cells are not drawn")
	}

	img = Draw(g, 4, true)
	if img.RGBAAt(4, 1) != LineColor || img.RGBAAt(1, 4) != LineColor {
		t.Fatal("grid lines are not drawn")
	}
	if img.RGBAAt(1, 1) != LiveColor {
		t.Fatal("live cell is covered by the grid")
	}
}

func TestRecorderOptions(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "a.avi"), 5, 5, Options{}); err == nil {
		t.Fatal("expected error on zero options")
	}
}

func TestRecorderWritesFrames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "life.avi")
	r, err := New(path, 5, 5, DefaultOptions)
	if err != nil {
		t.Fatal(err)
	}
	g := grid.Empty(5, 5)
	for i := 0; i < 3; i++ {
		g = grid.Toggle(g, i, i)
		if err := r.AddFrame(g, i%2 == 0); err != nil {
			t.Fatal(err)
		}
	}
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
	if err := r.Close(); err != nil {
		t.Fatal("second close must be a no-op")
	}
	if err := r.AddFrame(g, false); err == nil {
		t.Fatal("expected error after close")
	}
	if r.Frames() != 3 {
		t.Fatalf("frames: %v", r.Frames())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("RIFF")) || !bytes.Contains(data[:16], []byte("AVI ")) {
		t.Fatalf("not an AVI file: %q", data[:16])
	}
}

func TestRecorderAsViewer(t *testing.T) {
	o := universe.DefaultUniverseOptions
	o.Rows, o.Cols = 10, 10
	o.Interval = 0
	o.MaxSteps = 5
	stateCh := make(chan universe.Status, 100)
	u, err := universe.NewBaseUniverse(&o, stateCh)
	if err != nil {
		t.Fatal(err)
	}
	defer u.Close()

	r, err := New(filepath.Join(t.TempDir(), "life.avi"), o.Rows, o.Cols, DefaultOptions)
	if err != nil {
		t.Fatal(err)
	}
	u.RegisterViewer(r)
	u.SettleTemplate("glider")
	u.ToggleOverlay()
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

	//generations 0..5, the overlay switch leaves the grid as is and adds no frame
	if r.Frames() != 6 {
		t.Fatalf("frames: %v", r.Frames())
	}
	if err := r.Err(); err != nil {
		t.Fatal(err)
	}
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestRecorderFramesEveryGridChange(t *testing.T) {
	o := universe.DefaultUniverseOptions
	o.Rows, o.Cols = 10, 10
	o.Interval = time.Hour
	o.Seed = 5
	stateCh := make(chan universe.Status, 100)
	u, err := universe.NewBaseUniverse(&o, stateCh)
	if err != nil {
		t.Fatal(err)
	}
	defer u.Close()

	r, err := New(filepath.Join(t.TempDir(), "life.avi"), o.Rows, o.Cols, DefaultOptions)
	if err != nil {
		t.Fatal(err)
	}
	u.RegisterViewer(r)

	commands := []struct {
		name string
		run  func()
	}{
		{"template", func() { u.SettleTemplate("glider") }},
		{"random", u.SettleWithRandomData},
		{"toggle", func() { u.InverseCell(0, 0) }},
		{"clear", u.Clear},
		{"overlay", u.ToggleOverlay},
		{"out of field click", func() { u.InverseCell(-1, 0) }},
	}
	expected := []int{1, 2, 3, 4, 4, 4}
	for i, c := range commands {
		c.run()
		select {
		case <-stateCh:
		case <-time.After(5 * time.Second):
			t.Fatalf("%v: no status published", c.name)
		}
		if r.Frames() != expected[i] {
			t.Fatalf("after %v: %v frames, expected %v", c.name, r.Frames(), expected[i])
		}
	}
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
}
