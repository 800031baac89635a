package main

import (
	"log"
	"os"

	"github.com/pkg/errors"

	"lifeboard/src/config"
	"lifeboard/src/grid"
	"lifeboard/src/record"
	"lifeboard/src/stats"
	"lifeboard/src/universe"
	"lifeboard/src/view"
)

func main() {
	c, err := config.Parse(os.Args[1:])
	if err != nil {
		log.Fatalf("configuration: %v", err)
	}

	var stateCh chan universe.Status

	if !c.Interactive {
		stateCh = make(chan universe.Status, 10) //the buffered channel to getting the universe status
	}

	u, err := universe.NewBaseUniverse(&c.Universe, stateCh)
	if err != nil {
		log.Fatalf("universe: %v", err)
	}

	history := stats.NewHistory()
	u.RegisterViewer(history)

	var rec *record.Recorder
	if c.Record != "" {
		if rec, err = record.New(c.Record, c.Universe.Rows, c.Universe.Cols, record.DefaultOptions); err != nil {
			log.Fatalf("record: %v", err)
		}
		u.RegisterViewer(rec)
	}

	if err = settle(u, c); err != nil {
		log.Fatalf("settle: %v", err)
	}

	if c.Interactive {
		v := view.NewViewTerminal()
		u.RegisterViewer(v)
		v.Start()
	} else {
		runHeadless(u, stateCh, history)
	}
	u.Close()

	if rec != nil {
		if err := rec.Close(); err != nil {
			log.Printf("record: %v", err)
		}
	}
	if c.Chart != "" {
		if err := history.SaveChart(c.Chart, c.ChartWidth, c.ChartHeight); err != nil {
			log.Printf("chart: %v", err)
		}
	}
}

//settle seeds the universe according to the configuration
func settle(u universe.Universe, c config.Config) error {
	switch {
	case c.Pattern != "":
		data, err := os.ReadFile(c.Pattern)
		if err != nil {
			return errors.Wrap(err, "read pattern")
		}
		p, err := grid.Parse(string(data))
		if err != nil {
			return errors.Wrapf(err, "parse %v", c.Pattern)
		}
		if p.Rows() > c.Universe.Rows || p.Cols() > c.Universe.Cols {
			return errors.Errorf("pattern %v x %v doesn't fit the field", p.Rows(), p.Cols())
		}
		u.AddTemplate(universe.Template{Name: c.Pattern, Descr: "pattern file", Coordinates: liveCoordinates(p)})
		u.SettleTemplate(c.Pattern)
	case c.Template != "":
		u.SettleTemplate(c.Template)
	case c.RandomData:
		u.SettleWithRandomData()
	case !c.Interactive:
		u.SettleTemplate("sample")
	}
	return nil
}

func liveCoordinates(g grid.Grid) [][2]int {
	var res [][2]int
	for i := 0; i < g.Rows(); i++ {
		for j := 0; j < g.Cols(); j++ {
			if g.Alive(i, j) {
				res = append(res, [2]int{i, j})
			}
		}
	}
	return res
}

func runHeadless(u universe.Universe, stateCh chan universe.Status, avg view.Averager) {
	out := view.NewConsoleOut(os.Stdout, 10).ReportAverage(avg)
	u.RegisterViewer(out)
	out.Start()
	u.Run()
	for st := range stateCh {
		if st.RunningMode == universe.RunningStateFinished {
			break
		}
	}
}
