package universe

import "lifeboard/src/grid"

//Universe is the board controller: it owns the current grid and the running state
//all the commands return immediately, they are executed in order by the universe's own goroutine
type Universe interface {
	Status() Status
	Options() Options
	Grid() grid.Grid
	StateCh() chan Status
	AddTemplate(tmpl Template)
	Templates() []Template
	SettleTemplate(name string)
	SettleWithRandomData()
	Settle(vc [][2]int)
	Load(g grid.Grid)
	InverseCell(row int, col int)
	ToggleOverlay()
	RegisterViewer(v Viewer)
	Run()
	Stop()
	ToggleRun()
	Step()
	Clear()
	Close()
}
