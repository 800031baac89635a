package grid

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

//neighbours are the relative offsets of the Moore neighbourhood
var neighbours = [8][2]int{
	{0, 1},
	{0, -1},
	{1, -1},
	{-1, 1},
	{1, 1},
	{-1, -1},
	{1, 0},
	{-1, 0},
}

//Step calculates the next generation
//every cell is evaluated against g, which is left unmodified
func Step(g Grid) Grid {
	next := alloc(g.rows, g.cols)
	g.stepRows(next, 0, g.rows)
	return next
}

//StepParallel calculates the same generation as Step
//the rows are split into bands, each band is computed by its own goroutine
//workers <= 0 means runtime.NumCPU()
func StepParallel(g Grid, workers int) Grid {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	next := alloc(g.rows, g.cols)
	rowsPerWorker := (g.rows + workers - 1) / workers

	var eg errgroup.Group
	for start := 0; start < g.rows; start += rowsPerWorker {
		start, end := start, min(start+rowsPerWorker, g.rows)
		eg.Go(func() error {
			g.stepRows(next, start, end)
			return nil
		})
	}
	//bands never fail
	_ = eg.Wait()
	return next
}

//LiveNeighbours counts the live cells around i, j
//positions outside the grid count as dead
func (g Grid) LiveNeighbours(i int, j int) int {
	n := 0
	for _, o := range neighbours {
		ni, nj := i+o[0], j+o[1]
		if ni < 0 || nj < 0 || ni >= g.rows || nj >= g.cols {
			continue
		}
		n += int(g.cells[ni][nj])
	}
	return n
}

//NextState applies the rules to a cell with n live neighbours
func NextState(c Cell, n int) Cell {
	if n < 2 || n > 3 {
		return Dead
	}
	if c == Dead && n == 3 {
		return Alive
	}
	return c
}

//stepRows writes the next state of rows [from, to) into next
func (g Grid) stepRows(next Grid, from int, to int) {
	for i := from; i < to; i++ {
		for j := range g.cells[i] {
			next.cells[i][j] = NextState(g.cells[i][j], g.LiveNeighbours(i, j))
		}
	}
}

//Toggle returns the copy of g with the cell at i, j flipped
func Toggle(g Grid, i int, j int) Grid {
	n := g.clone()
	n.cells[i][j] ^= Alive
	return n
}

//With returns the copy of g with the cells at coords set to state
//coords are [row, col] pairs, the ones outside the grid are skipped
func With(g Grid, coords [][2]int, state Cell) Grid {
	n := g.clone()
	for _, c := range coords {
		if !g.Contains(c[0], c[1]) {
			continue
		}
		n.cells[c[0]][c[1]] = state
	}
	return n
}
