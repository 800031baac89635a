package view

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/logrusorgru/aurora"

	"lifeboard/src/universe"
)

//Averager provides the average population for the final report
type Averager interface {
	AveragePopulation() float64
}

//ConsoleOut prints the simulation progress, used in the non-interactive mode
type ConsoleOut struct {
	u         universe.Universe
	w         io.Writer
	every     int
	startTime time.Time
	last      universe.Status
	avg       Averager
}

//NewConsoleOut creates the ConsoleOut writing to w, the progress line is printed every n iterations
func NewConsoleOut(w io.Writer, every int) *ConsoleOut {
	if every <= 0 {
		every = 10
	}
	return &ConsoleOut{w: w, every: every}
}

func (c *ConsoleOut) Refresh() {
	st := c.u.Status()
	defer func() { c.last = st }()
	if st.RunningMode == universe.RunningStateFinished && c.last.RunningMode != universe.RunningStateFinished {
		totalTime := time.Since(c.startTime).Round(time.Millisecond)
		resultData := map[string]interface{}{
			"Last iteration": st.IterationNum,
			"Total time":     totalTime,
			"Live cells":     st.LiveCells,
		}
		if c.avg != nil {
			resultData["Average population"] = fmt.Sprintf("%.1f", c.avg.AveragePopulation())
		}
		_, _ = fmt.Fprintln(c.w, aurora.Red("\nFinished:"))
		c.printHashData(resultData)
	} else if st.RunningMode == universe.RunningStateRun && st.IterationNum != c.last.IterationNum {
		if st.IterationNum%c.every == 0 {
			_, _ = fmt.Fprintf(c.w, "  Iterations done: %v, live cells: %v\n", st.IterationNum, st.LiveCells)
		}
	}
}

func (c *ConsoleOut) Register(u universe.Universe) {
	c.u = u
	o := c.u.Options()
	_, _ = fmt.Fprintln(c.w, "Running configuration:")
	c.printHashData(map[string]interface{}{
		"Dimension":      fmt.Sprintf("%v x %v", o.Rows, o.Cols),
		"Interval":       o.Interval,
		"Max iterations": o.MaxSteps,
		"Engine":         o.Engine,
	})
}

//ReportAverage adds the average population of a to the final report.
//a must be registered in the universe before c to see the last generation.
func (c *ConsoleOut) ReportAverage(a Averager) *ConsoleOut {
	c.avg = a
	return c
}

//Start marks the simulation start
func (c *ConsoleOut) Start() {
	c.startTime = time.Now()
	_, _ = fmt.Fprintln(c.w, aurora.Cyan("\nSimulation started..."))
}

func (c *ConsoleOut) printHashData(d map[string]interface{}) {
	propNames := make([]string, 0, len(d))
	for k := range d {
		propNames = append(propNames, k)
	}
	sort.Strings(propNames)
	for _, propName := range propNames {
		_, _ = fmt.Fprintf(c.w, "  %s: %v\n", aurora.Green(propName), d[propName])
	}
}
