package grid

import (
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
)

//Cell is the state of one grid position
type Cell uint8

const (
	Dead  Cell = 0
	Alive Cell = 1
)

//DefaultDensity is the probability of a cell to be alive in a random grid
const DefaultDensity = 0.3

var (
	ErrInvalidDimensions = errors.New("grid dimensions must be positive")
	ErrJaggedRows        = errors.New("grid rows have different lengths")
)

//Grid is an immutable rows x cols field of cells
//every operation producing a different field returns a new Grid value
type Grid struct {
	rows  int
	cols  int
	cells [][]Cell
}

//Empty returns the grid with all cells dead
//panics if the dimensions are not positive
func Empty(rows int, cols int) Grid {
	if rows <= 0 || cols <= 0 {
		panic(errors.Wrapf(ErrInvalidDimensions, "%v x %v", rows, cols))
	}
	return alloc(rows, cols)
}

//Random returns the grid where each cell is alive with DefaultDensity probability
//r may be nil, the shared unseeded source is used in that case
func Random(rows int, cols int, r *rand.Rand) Grid {
	return RandomWithDensity(rows, cols, DefaultDensity, r)
}

//RandomWithDensity is Random with the explicit probability of a cell to be alive
func RandomWithDensity(rows int, cols int, density float64, r *rand.Rand) Grid {
	g := Empty(rows, cols)
	float := rand.Float64
	if r != nil {
		float = r.Float64
	}
	for i := range g.cells {
		for j := range g.cells[i] {
			if float() < density {
				g.cells[i][j] = Alive
			}
		}
	}
	return g
}

//FromRows builds the grid from the caller's data, the data is copied
func FromRows(data [][]Cell) (Grid, error) {
	if len(data) == 0 || len(data[0]) == 0 {
		return Grid{}, errors.Wrap(ErrInvalidDimensions, "empty data")
	}
	cols := len(data[0])
	for i, row := range data {
		if len(row) != cols {
			return Grid{}, errors.Wrapf(ErrJaggedRows, "row %v has %v cells, expected %v", i, len(row), cols)
		}
	}
	g := alloc(len(data), cols)
	for i := range data {
		for j, c := range data[i] {
			if c != Dead {
				g.cells[i][j] = Alive
			}
		}
	}
	return g, nil
}

//Parse reads the plaintext pattern
//'O', '*', '1' are alive cells, '.', '0', ' ' are dead ones, lines starting with '!' are comments
//short lines are padded with dead cells up to the longest line
func Parse(text string) (Grid, error) {
	var lines []string
	cols := 0
	for _, l := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if strings.HasPrefix(l, "!") {
			continue
		}
		l = strings.TrimRight(l, " \t")
		lines = append(lines, l)
		if len(l) > cols {
			cols = len(l)
		}
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 || cols == 0 {
		return Grid{}, errors.Wrap(ErrInvalidDimensions, "empty pattern")
	}

	g := alloc(len(lines), cols)
	for i, l := range lines {
		for j, ch := range []byte(l) {
			switch ch {
			case 'O', '*', '1':
				g.cells[i][j] = Alive
			case '.', '0', ' ':
			default:
				return Grid{}, errors.Errorf("unexpected character %q at line %v, column %v", ch, i+1, j+1)
			}
		}
	}
	return g, nil
}

//Rows returns the number of rows
func (g Grid) Rows() int {
	return g.rows
}

//Cols returns the number of columns
func (g Grid) Cols() int {
	return g.cols
}

//At returns the cell state at row i, column j
func (g Grid) At(i int, j int) Cell {
	return g.cells[i][j]
}

//Alive reports whether the cell at row i, column j is alive
func (g Grid) Alive(i int, j int) bool {
	return g.cells[i][j] == Alive
}

//Contains reports whether i, j addresses a cell of the grid
func (g Grid) Contains(i int, j int) bool {
	return i >= 0 && j >= 0 && i < g.rows && j < g.cols
}

//LiveCells calculates the count of live cells
func (g Grid) LiveCells() int {
	n := 0
	g.walk(func(i int, j int, c Cell) {
		n += int(c)
	})
	return n
}

//Equal reports whether both grids have the same dimensions and cells
func (g Grid) Equal(o Grid) bool {
	if g.rows != o.rows || g.cols != o.cols {
		return false
	}
	for i := range g.cells {
		for j := range g.cells[i] {
			if g.cells[i][j] != o.cells[i][j] {
				return false
			}
		}
	}
	return true
}

//Cells returns a copy of the cells
func (g Grid) Cells() [][]Cell {
	return g.clone().cells
}

func (g Grid) String() string {
	var b strings.Builder
	b.Grow(g.rows * (g.cols + 1))
	for i := range g.cells {
		for _, c := range g.cells[i] {
			if c == Alive {
				b.WriteByte('O')
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

//walk walks the entire grid and calls the cb function for each cell
func (g Grid) walk(cb func(i int, j int, c Cell)) {
	for i := range g.cells {
		for j := range g.cells[i] {
			cb(i, j, g.cells[i][j])
		}
	}
}

func (g Grid) clone() Grid {
	n := alloc(g.rows, g.cols)
	for i := range g.cells {
		copy(n.cells[i], g.cells[i])
	}
	return n
}

//alloc allocates rows over one backing array, rows can't be appended to
func alloc(rows int, cols int) Grid {
	g := Grid{rows: rows, cols: cols, cells: make([][]Cell, rows)}
	b := make([]Cell, rows*cols)
	for i := range g.cells {
		start := cols * i
		g.cells[i] = b[start : start+cols : start+cols]
	}
	return g
}
