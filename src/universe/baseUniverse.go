package universe

import (
	"io"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"

	"lifeboard/src/grid"
)

//Options represents the Universe's configurable options
type Options struct {
	Rows           int           `json:"rows"`
	Cols           int           `json:"cols"`
	Interval       time.Duration `json:"interval"`
	MaxSteps       int           `json:"max_steps"`       //0 means unlimited
	Density        float64       `json:"density"`         //probability of a cell to be alive in a random grid
	Seed           int64         `json:"seed"`            //0 means unseeded
	Engine         string        `json:"engine"`          //one of Engines
	Workers        int           `json:"workers"`         //goroutines of the parallel engine, 0 means NumCPU
	StopWhenStable bool          `json:"stop_when_stable"` //finish when the grid stops changing
	Overlay        bool          `json:"overlay"`         //initial grid-line overlay state
	Logger         *log.Logger   `json:"-"`
}

//Status represents the status of the Universe at concrete moment
type Status struct {
	IterationNum  int
	RunningMode   RunningState
	LiveCells     int
	IterationTime time.Duration
	Overlay       bool
	Version       int //incremented every time the grid is replaced
}

//Viewer is the interface to any Viewer - the object who can display simulation data or control the engine
type Viewer interface {
	Refresh()
	Register(u Universe)
}

//Template represent the seeding template which can used to settle the universe with predefined data
type Template struct {
	Name        string   //template name
	Descr       string   //template descr
	Coordinates [][2]int //array of [row,col] coordinates relative to the template's top left corner
}

//Stepper calculates the next generation
type Stepper func(g grid.Grid) grid.Grid

//The universe running status at the concrete moment
type RunningState int

//default options
const (
	DefSimulationInterval = time.Millisecond * 100
	DefRows               = 70
	DefCols               = 70
	DefEngine             = "base"
)

const (
	RunningStateManual RunningState = iota
	RunningStateRun
	RunningStateFinished
)

var (
	ErrUnknownEngine = errors.New("unknown engine")

	//Engines are the available step implementations by name
	Engines = map[string]func(o Options) Stepper{
		"base": func(o Options) Stepper {
			return grid.Step
		},
		"parallel": func(o Options) Stepper {
			return func(g grid.Grid) grid.Grid {
				return grid.StepParallel(g, o.Workers)
			}
		},
	}
)

var DefaultUniverseOptions = Options{
	Rows:     DefRows,
	Cols:     DefCols,
	Interval: DefSimulationInterval,
	Density:  grid.DefaultDensity,
	Engine:   DefEngine,
}

func (s RunningState) String() string {
	switch s {
	case RunningStateManual:
		return "waiting"
	case RunningStateRun:
		return "running"
	case RunningStateFinished:
		return "finished"
	}
	return "unknown"
}

//EngineNames returns the sorted names of Engines
func EngineNames() []string {
	names := make([]string, 0, len(Engines))
	for k := range Engines {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

//BaseUniverse is the universe's engine, implements Universe interface
//the grid and the running flag are written by mainLoop only
type BaseUniverse struct {
	options Options
	state   struct {
		Status
		grid grid.Grid
		sync.Mutex
	}
	stepper   Stepper
	rnd       *rand.Rand
	log       *log.Logger
	stateCh   chan Status
	views     []Viewer
	templates map[string]Template
	controlCh chan func()
	closeCh   chan bool
	closeOnce sync.Once
	done      chan struct{}
	//stopRun is closed to stop the current run, nil when the universe isn't running
	stopRun chan struct{}
}

//NewBaseUniverse creates the BaseUniverse instance
//stateCh may be nil, otherwise the Status is written to it after every command and every simulation step
func NewBaseUniverse(o *Options, stateCh chan Status) (*BaseUniverse, error) {
	if o == nil {
		o = &DefaultUniverseOptions
	}
	if o.Rows <= 0 || o.Cols <= 0 {
		return nil, errors.Wrapf(grid.ErrInvalidDimensions, "%v x %v", o.Rows, o.Cols)
	}
	engine, ok := Engines[o.Engine]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownEngine, "%q", o.Engine)
	}

	u := BaseUniverse{
		options:   *o,
		stepper:   engine(*o),
		log:       o.Logger,
		controlCh: make(chan func(), 1),
		closeCh:   make(chan bool, 1),
		done:      make(chan struct{}),
		stateCh:   stateCh,
		templates: map[string]Template{},
	}
	if u.log == nil {
		u.log = log.New(io.Discard, "", 0)
	}
	if o.Seed != 0 {
		u.rnd = rand.New(rand.NewSource(uint64(o.Seed)))
	}
	for _, t := range DefaultTemplates {
		u.templates[t.Name] = t
	}
	u.state.grid = grid.Empty(o.Rows, o.Cols)
	u.state.Overlay = o.Overlay
	go u.mainLoop()
	return &u, nil
}

//AddTemplate adds the seeding template to the internal storage
//the universe can be populated with this template by call SettleTemplate
func (u *BaseUniverse) AddTemplate(tmpl Template) {
	u.exec(func() {
		u.templates[tmpl.Name] = tmpl
	})
}

//Templates returns the known templates sorted by name
func (u *BaseUniverse) Templates() []Template {
	res := make(chan []Template, 1)
	u.exec(func() {
		l := make([]Template, 0, len(u.templates))
		for _, t := range u.templates {
			l = append(l, t)
		}
		sort.Slice(l, func(i, j int) bool { return l[i].Name < l[j].Name })
		res <- l
	})
	select {
	case l := <-res:
		return l
	case <-u.done:
		return nil
	}
}

//Settle makes the cells at vc alive
//vc - array of row,col coordinates
func (u *BaseUniverse) Settle(vc [][2]int) {
	u.exec(func() {
		u.replaceGrid(grid.With(u.state.grid, vc, grid.Alive), false)
		u.changed()
	})
}

//SettleTemplate populates the universe with the seeding template placed in the middle of the grid
func (u *BaseUniverse) SettleTemplate(name string) {
	u.exec(func() {
		tmpl, ok := u.templates[name]
		if !ok {
			u.log.Printf("unknown template %q", name)
			u.changed()
			return
		}
		u.replaceGrid(grid.With(u.state.grid, tmpl.centered(u.options.Rows, u.options.Cols), grid.Alive), false)
		u.changed()
	})
}

//SettleWithRandomData replaces the grid with the random one
func (u *BaseUniverse) SettleWithRandomData() {
	u.exec(func() {
		u.replaceGrid(grid.RandomWithDensity(u.options.Rows, u.options.Cols, u.options.Density, u.rnd), true)
		u.changed()
	})
}

//Load replaces the grid with g, g must have the universe's dimensions
func (u *BaseUniverse) Load(g grid.Grid) {
	u.exec(func() {
		if g.Rows() != u.options.Rows || g.Cols() != u.options.Cols {
			u.log.Printf("can't load %v x %v grid into %v x %v universe", g.Rows(), g.Cols(), u.options.Rows, u.options.Cols)
		} else {
			u.replaceGrid(g, true)
		}
		u.changed()
	})
}

//InverseCell inverses the cell state at row, col
//ignored while the universe is running
func (u *BaseUniverse) InverseCell(row int, col int) {
	u.exec(func() {
		if u.stopRun == nil && u.state.grid.Contains(row, col) {
			u.replaceGrid(grid.Toggle(u.state.grid, row, col), false)
		}
		u.changed()
	})
}

//ToggleOverlay switches the grid-line overlay
func (u *BaseUniverse) ToggleOverlay() {
	u.exec(func() {
		u.state.Lock()
		u.state.Overlay = !u.state.Overlay
		u.state.Unlock()
		u.changed()
	})
}

//RegisterViewer registers the viewer - the universe will call the viewer when the state is changed
//the viewer is registered before RegisterViewer returns, refreshes start with the next command
func (u *BaseUniverse) RegisterViewer(v Viewer) {
	v.Register(u)
	u.exec(func() {
		u.views = append(u.views, v)
	})
}

//StateCh returns the channel with the universe's status updates
func (u *BaseUniverse) StateCh() chan Status {
	return u.stateCh
}

//Status returns current universe status represented by Status struct
func (u *BaseUniverse) Status() Status {
	u.state.Lock()
	defer u.state.Unlock()
	return u.state.Status
}

//Options returns current universe configuration represented by Options struct
func (u *BaseUniverse) Options() Options {
	return u.options
}

//Grid returns the current generation
func (u *BaseUniverse) Grid() grid.Grid {
	u.state.Lock()
	defer u.state.Unlock()
	return u.state.grid
}

//Run starts the universe simulation, returns immediately
func (u *BaseUniverse) Run() {
	u.exec(u.run)
}

//Stop stops the universe simulation, returns immediately
func (u *BaseUniverse) Stop() {
	u.exec(func() {
		u.halt(RunningStateManual)
		u.changed()
	})
}

//ToggleRun starts the stopped universe and stops the running one
func (u *BaseUniverse) ToggleRun() {
	u.exec(func() {
		if u.stopRun == nil {
			u.run()
			return
		}
		u.halt(RunningStateManual)
		u.changed()
	})
}

//Step does one simulation step, returns immediately
func (u *BaseUniverse) Step() {
	u.exec(u.step)
}

//Clear stops the simulation, kills all cells and resets all counters, returns immediately
func (u *BaseUniverse) Clear() {
	u.exec(u.clear)
}

//Close stops the main loop, returns immediately
//commands sent after Close are discarded
func (u *BaseUniverse) Close() {
	u.closeOnce.Do(func() {
		u.closeCh <- true
	})
}

//exec passes the command to the main loop
func (u *BaseUniverse) exec(cmd func()) {
	select {
	case u.controlCh <- cmd:
	case <-u.done:
	}
}

//mainLoop - the main cycle, should start as a goroutine
//waits for command and executes
func (u *BaseUniverse) mainLoop() {
	var c = false
	for !c {
		select {
		case cmd := <-u.controlCh:
			cmd()
		case c = <-u.closeCh:
		}
	}
	if u.stopRun != nil {
		close(u.stopRun)
		u.stopRun = nil
	}
	close(u.done)
}

//run starts the ticker, the first step is done immediately
func (u *BaseUniverse) run() {
	if u.stopRun == nil {
		stop := make(chan struct{})
		u.stopRun = stop
		u.setMode(RunningStateRun)
		u.log.Printf("simulation started at iteration %v", u.state.IterationNum)
		go u.tick(stop, u.options.Interval)
	}
	u.changed()
}

//tick schedules the steps of one run until stop is closed
//a tick received after the run was stopped is a no-op
func (u *BaseUniverse) tick(stop chan struct{}, interval time.Duration) {
	var c <-chan time.Time
	if interval > 0 {
		t := time.NewTicker(interval)
		defer t.Stop()
		c = t.C
	}
	cmd := func() {
		if u.stopRun == stop {
			u.step()
		}
	}
	for {
		select {
		case u.controlCh <- cmd:
		case <-stop:
			return
		case <-u.done:
			return
		}
		if c == nil {
			continue
		}
		select {
		case <-c:
		case <-stop:
			return
		case <-u.done:
			return
		}
	}
}

//halt stops the running cycle and switches the universe to mode
func (u *BaseUniverse) halt(mode RunningState) {
	if u.stopRun != nil {
		close(u.stopRun)
		u.stopRun = nil
		u.log.Printf("simulation stopped at iteration %v", u.state.IterationNum)
	}
	u.setMode(mode)
}

//step does the new one state calculation for entire universe
func (u *BaseUniverse) step() {
	maxIter := u.options.MaxSteps
	if maxIter != 0 && u.state.IterationNum >= maxIter {
		u.halt(RunningStateFinished)
		u.changed()
		return
	}

	start := time.Now()
	cur := u.state.grid
	next := u.stepper(cur)
	live := next.LiveCells()

	u.state.Lock()
	u.state.grid = next
	u.state.IterationNum++
	u.state.Version++
	u.state.LiveCells = live
	u.state.IterationTime = time.Since(start)
	iter := u.state.IterationNum
	u.state.Unlock()

	if (maxIter != 0 && iter >= maxIter) || (u.options.StopWhenStable && (live == 0 || next.Equal(cur))) {
		u.halt(RunningStateFinished)
		u.log.Printf("simulation finished at iteration %v, live cells: %v", iter, live)
	}
	u.changed()
}

//clear clears the universe data, reset all counters
func (u *BaseUniverse) clear() {
	u.halt(RunningStateManual)
	u.replaceGrid(grid.Empty(u.options.Rows, u.options.Cols), true)
	u.changed()
}

//replaceGrid stores g as the current generation
//reset starts the counting of iterations from zero
func (u *BaseUniverse) replaceGrid(g grid.Grid, reset bool) {
	live := g.LiveCells()
	u.state.Lock()
	u.state.grid = g
	u.state.LiveCells = live
	u.state.Version++
	if reset {
		u.state.IterationNum = 0
		u.state.IterationTime = 0
		if u.state.RunningMode == RunningStateFinished {
			u.state.RunningMode = RunningStateManual
		}
	}
	u.state.Unlock()
}

func (u *BaseUniverse) setMode(mode RunningState) {
	u.state.Lock()
	u.state.RunningMode = mode
	u.state.Unlock()
}

//changed refreshes the views and writes the new state to the stateCh
//the views are refreshed first, so a reader of the stateCh sees them up to date
func (u *BaseUniverse) changed() {
	for _, v := range u.views {
		v.Refresh()
	}
	st := u.Status()
	if u.stateCh != nil {
		select {
		case u.stateCh <- st:
		case <-u.closeCh:
			//Close was requested while nobody reads the states
			u.closeCh <- true
		}
	}
}

//centered shifts the template coordinates to the middle of rows x cols
func (t Template) centered(rows int, cols int) [][2]int {
	h, w := 0, 0
	for _, c := range t.Coordinates {
		h = max(h, c[0]+1)
		w = max(w, c[1]+1)
	}
	di, dj := max(0, (rows-h)/2), max(0, (cols-w)/2)
	res := make([][2]int, len(t.Coordinates))
	for i, c := range t.Coordinates {
		res[i] = [2]int{c[0] + di, c[1] + dj}
	}
	return res
}
