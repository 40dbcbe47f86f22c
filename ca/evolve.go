// evolve.go implements the Moore-neighborhood evolution rule and its
// tile-parallel executor. Workers partition the grid into row-bands and
// synchronize on a per-step sync.WaitGroup barrier, following the same
// split-batches / wait-for-workers shape as the original design's
// consensus.ParallelAggregator (parallel_bls.go) generalized from
// aggregating attestation batches to stepping disjoint tile bands —
// writes within a step are only ever read in the next step, so the two
// execution modes are required to (and do) produce bitwise-identical
// grids, fixed by (y, x) ascending write order.
package ca

import (
	"runtime"
	"sync"
)

// EvolveConfig controls the tile-parallel evolution executor.
type EvolveConfig struct {
	Workers int // 0 selects runtime.NumCPU()
}

// DefaultEvolveConfig returns the default worker pool sizing.
func DefaultEvolveConfig() EvolveConfig {
	return EvolveConfig{Workers: runtime.NumCPU()}
}

// nextCellState computes the t+1 energy of a single cell given its current
// energy and live-neighbor count, per survival/birth/death rule.
func nextCellState(alive bool, energy uint8, liveNeighbors int, neighborEnergySum int) uint8 {
	if alive {
		switch liveNeighbors {
		case 2:
			return energy // DeltaS(2) = 0
		case 3:
			return saturatingAddU8(energy, 1) // DeltaS(3) = +1
		default:
			return 0
		}
	}
	if liveNeighbors == 3 {
		avg := neighborEnergySum / liveNeighbors // floor division
		if avg > 255 {
			avg = 255
		}
		return uint8(avg)
	}
	return 0
}

func saturatingAddU8(a uint8, b uint8) uint8 {
	sum := uint16(a) + uint16(b)
	if sum > 255 {
		return 255
	}
	return uint8(sum)
}

// Step evolves g by one step, writing into a freshly-allocated grid.
// Tile-parallel when cfg.Workers > 1.
func Step(g *Grid, cfg EvolveConfig) *Grid {
	next := NewGrid(g.size)
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	if workers == 1 || g.size < workers {
		evolveRows(g, next, 0, g.size)
		return next
	}

	rowsPerWorker := (g.size + workers - 1) / workers
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		startY := w * rowsPerWorker
		endY := startY + rowsPerWorker
		if startY >= g.size {
			break
		}
		if endY > g.size {
			endY = g.size
		}
		wg.Add(1)
		go func(y0, y1 int) {
			defer wg.Done()
			evolveRows(g, next, y0, y1)
		}(startY, endY)
	}
	wg.Wait()
	return next
}

// evolveRows evolves rows [y0, y1) of g into next, visiting cells in
// (y, x) ascending order.
func evolveRows(g, next *Grid, y0, y1 int) {
	for y := y0; y < y1; y++ {
		for x := 0; x < g.size; x++ {
			liveNeighbors := 0
			energySum := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					e := g.Get(x+dx, y+dy)
					if e > 0 {
						liveNeighbors++
						energySum += int(e)
					}
				}
			}
			alive := g.IsAlive(x, y)
			next.Set(x, y, nextCellState(alive, g.Get(x, y), liveNeighbors, energySum))
		}
	}
}

// RunSteps runs n evolution steps starting from g, returning the final
// grid and, for each step, the per-cell delta grid (|next - prev| as a
// uint8, see deltaGrid) needed for MII/TED scoring.
func RunSteps(g *Grid, n int, cfg EvolveConfig) (*Grid, []*Grid) {
	deltas := make([]*Grid, 0, n)
	current := g
	for i := 0; i < n; i++ {
		next := Step(current, cfg)
		deltas = append(deltas, deltaGrid(current, next))
		current = next
	}
	return current, deltas
}

// deltaGrid computes, for every cell, next.energy - prev.energy, stored as
// a uint8 grid holding the absolute value; sign is reconstructible from
// comparing prev/next directly where needed (MII only needs the squared
// magnitude, which is sign-independent).
func deltaGrid(prev, next *Grid) *Grid {
	d := NewGrid(prev.size)
	for i := range prev.cells {
		pv, nv := int(prev.cells[i]), int(next.cells[i])
		diff := nv - pv
		if diff < 0 {
			diff = -diff
		}
		d.cells[i] = uint8(diff)
	}
	return d
}
