// Package config assembles the run configuration: defaults, an optional JSON file, then the command line flags.
package config

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/integrii/flaggy"
	"github.com/pkg/errors"

	"lifeboard/src/universe"
)

// Config holds the universe options and the environment options of one run
type Config struct {
	Universe    universe.Options `json:"universe"`
	Interactive bool             `json:"interactive"`
	RandomData  bool             `json:"random"`
	Template    string           `json:"template"`
	Pattern     string           `json:"pattern"`
	Record      string           `json:"record"`
	Chart       string           `json:"chart"`
	ChartWidth  int              `json:"chart_width"`
	ChartHeight int              `json:"chart_height"`
}

// Default returns the interactive 70 x 70 board
func Default() Config {
	o := universe.DefaultUniverseOptions
	return Config{
		Universe:    o,
		ChartWidth:  800,
		ChartHeight: 400,
	}
}

// Load overlays the JSON file on top of the defaults
func Load(filename string) (Config, error) {
	config := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, errors.Wrapf(err, "[Load] failed to read file: %+v", filename)
	}

	if err = json.Unmarshal(data, &config); err != nil {
		return config, errors.Wrapf(err, "[Load] failed to unmarshal data from file: %+v", filename)
	}

	return config, nil
}

// Validate checks the values the universe can't run with
func (c Config) Validate() error {
	o := c.Universe
	if o.Rows <= 0 || o.Cols <= 0 {
		return errors.Errorf("invalid dimension %v x %v", o.Rows, o.Cols)
	}
	if o.Density < 0 || o.Density > 1 {
		return errors.Errorf("density %v is out of [0, 1]", o.Density)
	}
	if o.Interval < 0 {
		return errors.Errorf("negative interval %v", o.Interval)
	}
	if o.MaxSteps < 0 {
		return errors.Errorf("negative max steps %v", o.MaxSteps)
	}
	if _, ok := universe.Engines[o.Engine]; !ok {
		return errors.Errorf("unknown engine %q, expected one of [%v]", o.Engine, strings.Join(universe.EngineNames(), "|"))
	}
	if !c.Interactive && o.MaxSteps == 0 && !o.StopWhenStable {
		return errors.New("non-interactive run needs maxSteps or stopWhenStable")
	}
	if c.Template != "" && c.Pattern != "" {
		return errors.New("template and pattern are mutually exclusive")
	}
	if c.Template != "" && !knownTemplate(c.Template) {
		return errors.Errorf("unknown template %q", c.Template)
	}
	return nil
}

// Parse builds the configuration from args (without the program name)
// the file given by -c is loaded first, the rest of the flags override it
func Parse(args []string) (Config, error) {
	path := configPath(args)
	c := Default()
	if path != "" {
		var err error
		if c, err = Load(path); err != nil {
			return c, err
		}
	}

	p := flaggy.NewParser("lifeboard")
	p.Description = "Conway's Game of Life board"
	p.ShowHelpOnUnexpected = true
	bind(p, &c, &path)
	if err := p.ParseArgs(args); err != nil {
		return c, errors.Wrap(err, "parse arguments")
	}
	if !c.Interactive && c.Universe.MaxSteps == 0 && !c.Universe.StopWhenStable {
		c.Universe.MaxSteps = DefHeadlessMaxSteps
	}
	return c, c.Validate()
}

// DefHeadlessMaxSteps limits the non-interactive run when neither limit is configured
const DefHeadlessMaxSteps = 1000

func bind(p *flaggy.Parser, c *Config, path *string) {
	o := &c.Universe
	p.String(path, "c", "config", "JSON configuration file, the flags override its values")
	p.Int(&o.Cols, "x", "cols", "Width of a simulation field")
	p.Int(&o.Rows, "y", "rows", "Height of a simulation field")
	p.Duration(&o.Interval, "i", "interval", "Simulation speed (interval between the steps) in format the number with 'ms' suffix, for example 150ms")
	p.Int(&o.MaxSteps, "s", "maxSteps", "Limit the simulation to maxSteps, 0 is unlimited")
	p.Float64(&o.Density, "d", "density", "Probability of a cell to be alive in random data")
	p.Int64(&o.Seed, "", "seed", "Seed of random data, 0 is unseeded")
	p.String(&o.Engine, "e", "engine", "Engine to use ["+strings.Join(universe.EngineNames(), "|")+"]")
	p.Int(&o.Workers, "w", "workers", "Goroutines of the parallel engine, 0 is the number of CPUs")
	p.Bool(&o.StopWhenStable, "", "stopWhenStable", "Finish when the field stops changing")
	p.Bool(&o.Overlay, "g", "grid", "Show the grid lines")
	p.Bool(&c.Interactive, "n", "interactive", "Start interactive mode")
	p.Bool(&c.RandomData, "r", "random", "Settle with random data")
	p.String(&c.Template, "t", "template", "Settle with the named template")
	p.String(&c.Pattern, "p", "pattern", "Settle with the plaintext pattern file")
	p.String(&c.Record, "", "record", "Record the generations into the AVI file")
	p.String(&c.Chart, "", "chart", "Write the population chart into the PNG file")
}

// configPath finds the -c/--config value before the flags are parsed
func configPath(args []string) string {
	for i, a := range args {
		for _, f := range []string{"-c", "--c", "-config", "--config"} {
			if a == f && i+1 < len(args) {
				return args[i+1]
			}
			if strings.HasPrefix(a, f+"=") {
				return strings.TrimPrefix(a, f+"=")
			}
		}
	}
	return ""
}

func knownTemplate(name string) bool {
	for _, t := range universe.DefaultTemplates {
		if t.Name == name {
			return true
		}
	}
	return false
}
