package view

import (
	"bytes"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jroimartin/gocui"
	"github.com/logrusorgru/aurora"

	"lifeboard/src/grid"
	"lifeboard/src/universe"
)

type keyBindings struct {
	key      interface{}
	name     string
	descr    string
	handler  func(v *gocui.View) error
	viewName string
}

//Fillers are the strings drawing one cell, each of them takes Width terminal columns
type Fillers struct {
	Width       int
	Live        string
	Dead        string
	LiveOverlay string
	DeadOverlay string
}

//DefaultFillers draws the cells as coloured boxes, the overlay adds the grid lines
var DefaultFillers = Fillers{
	Width:       2,
	Live:        aurora.Green("██").BgBrightGreen().String(),
	Dead:        "  ",
	LiveOverlay: aurora.Green("█▏").BgBrightGreen().String(),
	DeadOverlay: aurora.Blue("_▏").String(),
}

//NarrowFillers are used when the field doesn't fit the view with DefaultFillers
var NarrowFillers = Fillers{
	Width:       1,
	Live:        aurora.Green("█").BgBrightGreen().String(),
	Dead:        " ",
	LiveOverlay: aurora.Green("▌").BgBrightGreen().String(),
	DeadOverlay: aurora.Blue("·").String(),
}

//FitFillers returns wide if cols cells fit into maxW columns, narrow otherwise
func FitFillers(cols int, maxW int, wide Fillers, narrow Fillers) Fillers {
	if cols*wide.width() <= maxW {
		return wide
	}
	return narrow
}

func (f Fillers) width() int {
	return max(f.Width, 1)
}

type ConsoleUI struct {
	u       universe.Universe
	g       *gocui.Gui
	k       []keyBindings
	fillers Fillers
	narrow  Fillers
	//the fillers of the last drawn field, the mouse clicks are mapped with them
	drawn   Fillers
}

var (
	runningStateDescr = map[universe.RunningState]string{
		universe.RunningStateManual:   aurora.Colorize("waiting", aurora.BlueFg).String(),
		universe.RunningStateRun:      aurora.Colorize("running", aurora.CyanFg).String(),
		universe.RunningStateFinished: aurora.Colorize("finished", aurora.RedFg).String(),
	}
)

func NewViewTerminal() *ConsoleUI {

	var err error
	t := ConsoleUI{
		fillers: DefaultFillers,
		narrow:  NarrowFillers,
		drawn:   DefaultFillers,
	}

	t.g, err = gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		log.Panicln(err)
	}

	t.g.Mouse = true
	t.k = []keyBindings{
		{gocui.KeyCtrlC,
			"^C",
			"Exit",
			t.cmdQuit,
			""},
		{gocui.KeySpace,
			"SPACE",
			"Start/Stop",
			t.cmdToggleRun,
			""},
		{'n',
			"N",
			"Next step",
			t.cmdNextRound,
			""},
		{'c',
			"C",
			"Clear",
			t.cmdClear,
			""},
		{'w',
			"W",
			"Random",
			t.cmdSettleWithRandom,
			""},
		{'g',
			"G",
			"Grid",
			t.cmdToggleOverlay,
			""},
		{gocui.MouseLeft,
			"MOUSE",
			"Toggle the cell",
			t.cmdMouseClick,
			"battlefield"},
	}
	t.g.SetManagerFunc(t.layout)

	t.initKeyBindings(t.k)

	return &t
}

func (t *ConsoleUI) initKeyBindings(k []keyBindings) {
	for _, kb := range k {
		h := kb.handler
		if err := t.g.SetKeybinding(kb.viewName, kb.key, gocui.ModNone, func(gui *gocui.Gui, view *gocui.View) error { return h(view) }); err != nil {
			log.Panicln(err)
		}
	}
}

func (t *ConsoleUI) Register(u universe.Universe) {
	t.u = u
}

//Start runs the terminal main loop until the user quits
func (t *ConsoleUI) Start() {
	if err := t.g.MainLoop(); err != nil && err != gocui.ErrQuit {
		log.Panicln(err)
	}
	t.g.Close()
}

func (t *ConsoleUI) Refresh() {
	t.renderField()
	t.renderConfiguration()
	t.renderStatus()
}

func (t *ConsoleUI) renderField() {

	t.g.Update(func(g *gocui.Gui) error {
		v, e := g.View("battlefield")
		if e != nil {
			return e
		}
		t.drawField(v)
		return nil
	})
}

//drawField must be called from the gui main loop
func (t *ConsoleUI) drawField(v *gocui.View) {
	//the entire field is redrawing at once
	v.Clear()
	maxW, maxH := v.Size()
	a := t.u.Grid()
	t.drawn = FitFillers(a.Cols(), maxW, t.fillers, t.narrow)
	_, _ = fmt.Fprint(v, RenderField(a, t.u.Status().Overlay, t.drawn, maxW, maxH))
}

//RenderField draws the grid into maxW x maxH terminal cells
//the rows and columns outside the area are cropped with a warning on the last line
func RenderField(a grid.Grid, overlay bool, f Fillers, maxW int, maxH int) string {
	live, dead := f.Live, f.Dead
	if overlay {
		live, dead = f.LiveOverlay, f.DeadOverlay
	}

	w := f.width()
	crop := a.Cols()*w > maxW || a.Rows() > maxH

	var b bytes.Buffer
	for i := 0; i < a.Rows(); i++ {
		//discard the data outside the view area
		if i >= maxH {
			break
		}
		//line feed char
		if i != 0 {
			b.WriteByte(10)
		}
		if crop && i == (maxH-1) {
			b.WriteString(aurora.Red("The field size is larger than the viewing area").BgBlack().String())
			break
		}
		for j := 0; j < a.Cols(); j++ {
			if (j+1)*w > maxW {
				break
			}
			if a.Alive(i, j) {
				b.WriteString(live)
			} else {
				b.WriteString(dead)
			}
		}
	}
	return b.String()
}

func (t *ConsoleUI) renderStatus() {
	s := t.u.Status()
	t.g.Update(func(g *gocui.Gui) error {
		if v, e := t.g.View("status"); e == nil {
			v.Clear()
			_, _ = fmt.Fprintln(v, renderProp("Step", "%v", s.IterationNum))
			_, _ = fmt.Fprintln(v, renderProp("Live Cells", "%v", s.LiveCells))
			_, _ = fmt.Fprintln(v, renderProp("Evaluation time", "%v", s.IterationTime.Round(time.Microsecond)))
			_, _ = fmt.Fprintln(v, renderProp("Mode", "%v", runningStateDescr[s.RunningMode]))
			_, _ = fmt.Fprintln(v, renderProp("Grid", "%v", onOff(s.Overlay)))
		}
		return nil
	})
}

func (t *ConsoleUI) renderConfiguration() {
	//it needs to call Update when calls from goroutine
	t.g.Update(func(g *gocui.Gui) error {
		c := t.u.Options()
		if v, e := g.View("configuration"); e == nil {
			v.Clear()
			_, _ = fmt.Fprintln(v, renderProp("Dimension", "%v x %v", c.Rows, c.Cols))
			_, _ = fmt.Fprintln(v, renderProp("Interval", "%v", c.Interval))
			_, _ = fmt.Fprintln(v, renderProp("Engine", "%v", c.Engine))
			if c.MaxSteps > 0 {
				_, _ = fmt.Fprintln(v, renderProp("Iterations", "%v steps", c.MaxSteps))
			}
		}
		return nil
	})
}

func renderProp(name string, valueformat string, values ...interface{}) string {
	return fmt.Sprintf(" "+aurora.Colorize(name, aurora.GreenFg).String()+": "+valueformat, values...)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (t *ConsoleUI) layout(g *gocui.Gui) error {

	maxX, maxY := g.Size()
	leftColumnWidth := 28
	minWindowHeight := 20

	if maxY < minWindowHeight {
		if _, err := t.headerLayout(g, maxY, "Terminal height too small"); err != nil {
			if err != gocui.ErrUnknownView {
				return err
			}
		}
		_ = g.DeleteView("configuration")
		_ = g.DeleteView("status")
		_ = g.DeleteView("battlefield")
		return nil

	} else {
		if _, err := t.headerLayout(g, 3, "Conway's Game of Life"); err != nil {
			if err != gocui.ErrUnknownView {
				return err
			}
		}
	}

	if v, err := g.SetView("configuration", 0, 3, leftColumnWidth, 3+(maxY-5-3)/2); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Title = "Configuration"
		v.Frame = true
		t.renderConfiguration()
	}

	if v, err := g.SetView("status", 0, 3+(maxY-5-3)/2+1, leftColumnWidth, maxY-5); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Title = "Status"
		v.Frame = true
		t.renderStatus()
	}

	if v, err := g.SetView("battlefield", leftColumnWidth+1, 3, maxX-1, maxY-5); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Title = "Field"
		v.Frame = true
		t.drawField(v)
	}

	if v, err := g.SetView("help", -1, maxY-5, maxX, maxY-3); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Frame = false
		_, _ = fmt.Fprintln(v, helpLine(t.k))
	}

	return nil
}

func helpLine(k []keyBindings) string {
	b := bytes.Buffer{}
	b.WriteString("KEYBINDINGS: ")
	for i, kb := range k {
		if i != 0 {
			b.WriteString(", ")
		}
		b.WriteString(aurora.Green(kb.name).String())
		b.WriteString(": ")
		b.WriteString(kb.descr)
	}
	return b.String()
}

func (t *ConsoleUI) headerLayout(g *gocui.Gui, height int, text string) (v *gocui.View, err error) {
	maxX, _ := g.Size()
	if v, err = g.SetView("header", -1, -1, maxX+1, height); err != nil {
		if err == gocui.ErrUnknownView && v != nil {
			v.Frame = false
			v.BgColor = gocui.ColorCyan
			v.FgColor = gocui.ColorBlack
		}
	}
	if v != nil {
		v.Clear()
		_, _ = fmt.Fprintln(v, strings.Repeat("\n", height/2+1)+centerText(text, maxX))
	}
	return
}

//centerText pads text to the middle of width columns, the text wider than width is cut
func centerText(text string, width int) string {
	r := []rune(text)
	if width <= 0 {
		return ""
	}
	if len(r) > width {
		return string(r[:width])
	}
	return strings.Repeat(" ", (width-len(r))/2) + text
}

func (t *ConsoleUI) cmdQuit(_ *gocui.View) error {
	return gocui.ErrQuit
}

func (t *ConsoleUI) cmdNextRound(_ *gocui.View) error {
	t.u.Step()
	return nil
}

func (t *ConsoleUI) cmdToggleRun(_ *gocui.View) error {
	t.u.ToggleRun()
	return nil
}

func (t *ConsoleUI) cmdClear(_ *gocui.View) error {
	t.u.Clear()
	return nil
}

func (t *ConsoleUI) cmdSettleWithRandom(_ *gocui.View) error {
	t.u.SettleWithRandomData()
	return nil
}

func (t *ConsoleUI) cmdToggleOverlay(_ *gocui.View) error {
	t.u.ToggleOverlay()
	return nil
}

func (t *ConsoleUI) cmdMouseClick(v *gocui.View) error {
	cx, cy := v.Cursor()
	t.u.InverseCell(cy, cx/t.drawn.width())
	return nil
}
