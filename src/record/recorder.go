// Package record writes the generations of a universe into a Motion-JPEG AVI file.
package record

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"log"
	"sync"

	"github.com/icza/mjpeg"
	"github.com/pkg/errors"

	"lifeboard/src/grid"
	"lifeboard/src/universe"
)

var (
	LiveColor = color.RGBA{R: 0, G: 200, B: 0, A: 255}
	DeadColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	LineColor = color.RGBA{R: 190, G: 190, B: 190, A: 255}
)

// Options of the recording.
type Options struct {
	CellSize int // pixels per cell side
	FPS      int
	Quality  int // jpeg quality, 1..100
}

var DefaultOptions = Options{
	CellSize: 8,
	FPS:      10,
	Quality:  90,
}

// Recorder is a universe viewer adding a frame every time the grid changes.
type Recorder struct {
	mu     sync.Mutex
	u      universe.Universe
	o      Options
	aw     mjpeg.AviWriter
	last   int // Status.Version of the last frame
	frames int
	err    error
}

// New creates the AVI file for a rows x cols universe.
func New(path string, rows int, cols int, o Options) (*Recorder, error) {
	if o.CellSize <= 0 || o.FPS <= 0 {
		return nil, errors.Errorf("invalid recording options %+v", o)
	}
	aw, err := mjpeg.New(path, int32(cols*o.CellSize), int32(rows*o.CellSize), int32(o.FPS))
	if err != nil {
		return nil, errors.Wrapf(err, "create %v", path)
	}
	return &Recorder{o: o, aw: aw, last: -1}, nil
}

func (r *Recorder) Register(u universe.Universe) {
	r.u = u
}

// Refresh adds the current grid as a frame unless it is already recorded.
// Only the first error is kept, the recording stops after it.
func (r *Recorder) Refresh() {
	st := r.u.Status()
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil || r.aw == nil || st.Version == r.last {
		return
	}
	r.last = st.Version
	if err := r.add(r.u.Grid(), st.Overlay); err != nil {
		r.err = err
		log.Printf("recording stopped: %v", err)
	}
}

// AddFrame encodes g as the next frame.
func (r *Recorder) AddFrame(g grid.Grid, overlay bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.add(g, overlay)
}

func (r *Recorder) add(g grid.Grid, overlay bool) error {
	if r.aw == nil {
		return errors.New("recorder is closed")
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, Draw(g, r.o.CellSize, overlay), &jpeg.Options{Quality: r.o.Quality}); err != nil {
		return errors.Wrap(err, "encode frame")
	}
	if err := r.aw.AddFrame(buf.Bytes()); err != nil {
		return errors.Wrap(err, "add frame")
	}
	r.frames++
	return nil
}

// Frames returns the number of written frames.
func (r *Recorder) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

// Err returns the error which stopped the recording.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Close finalizes the AVI file.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.aw == nil {
		return nil
	}
	err := r.aw.Close()
	r.aw = nil
	return errors.Wrap(err, "close recording")
}

// Draw renders g with cell x cell pixel boxes, overlay draws the grid lines.
func Draw(g grid.Grid, cell int, overlay bool) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, g.Cols()*cell, g.Rows()*cell))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: DeadColor}, image.Point{}, draw.Src)
	live := &image.Uniform{C: LiveColor}
	for i := 0; i < g.Rows(); i++ {
		for j := 0; j < g.Cols(); j++ {
			if g.Alive(i, j) {
				draw.Draw(img, image.Rect(j*cell, i*cell, (j+1)*cell, (i+1)*cell), live, image.Point{}, draw.Src)
			}
		}
	}
	if overlay && cell > 2 {
		b := img.Bounds()
		for x := 0; x < b.Max.X; x += cell {
			for y := 0; y < b.Max.Y; y++ {
				img.SetRGBA(x, y, LineColor)
			}
		}
		for y := 0; y < b.Max.Y; y += cell {
			for x := 0; x < b.Max.X; x++ {
				img.SetRGBA(x, y, LineColor)
			}
		}
	}
	return img
}
