// Package ca implements the deterministic cellular-automaton battle engine
// that decides block-production rights: a Moore-neighborhood energy
// automaton run for a fixed number of steps over a toroidal grid, scored by
// a four-stage tie-breaker cascade.
package ca

import (
	"github.com/glider-chain/glider/crypto"
)

// DefaultGridSize is the edge length of the production grid; battles run at
// params.GridSize unless the chain's genesis allows the reduced test
// configuration (params.TestGridSize).
const DefaultGridSize = 1024

// Grid is a toroidal square array of 8-bit energy cells.
type Grid struct {
	size  int
	cells []uint8
}

// NewGrid allocates an empty (all-dead) grid of the given edge length.
func NewGrid(size int) *Grid {
	return &Grid{size: size, cells: make([]uint8, size*size)}
}

// Size returns the grid's edge length.
func (g *Grid) Size() int { return g.size }

// wrap reduces a coordinate into [0, size) toroidally.
func (g *Grid) wrap(v int) int {
	m := v % g.size
	if m < 0 {
		m += g.size
	}
	return m
}

// Get returns the energy at (x, y), coordinates taken mod size.
func (g *Grid) Get(x, y int) uint8 {
	return g.cells[g.wrap(y)*g.size+g.wrap(x)]
}

// Set writes the energy at (x, y), coordinates taken mod size.
func (g *Grid) Set(x, y int, energy uint8) {
	g.cells[g.wrap(y)*g.size+g.wrap(x)] = energy
}

// IsAlive reports whether the cell at (x, y) has nonzero energy.
func (g *Grid) IsAlive(x, y int) bool {
	return g.Get(x, y) > 0
}

// CountLive returns the total number of live (energy > 0) cells.
func (g *Grid) CountLive() uint64 {
	var n uint64
	for _, e := range g.cells {
		if e > 0 {
			n++
		}
	}
	return n
}

// Rect is an axis-aligned bounding box in grid coordinates, inclusive of
// Min and exclusive of Max, with no toroidal wraparound — used for pattern
// placement and scoring-region definitions.
type Rect struct {
	MinX, MinY, MaxX, MaxY int
}

// Overlaps reports whether two rectangles share any cell.
func (r Rect) Overlaps(o Rect) bool {
	return r.MinX < o.MaxX && o.MinX < r.MaxX && r.MinY < o.MaxY && o.MinY < r.MaxY
}

// Contains reports whether (x, y) lies within the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.MinX && x < r.MaxX && y >= r.MinY && y < r.MaxY
}

// SerializeRegion returns H_b over the row-major energy bytes of the
// region, used to bind a region's observable state into a proof's public
// inputs without exposing the whole grid.
func (g *Grid) SerializeRegion(r Rect) [32]byte {
	buf := make([]byte, 0, (r.MaxY-r.MinY)*(r.MaxX-r.MinX))
	for y := r.MinY; y < r.MaxY; y++ {
		for x := r.MinX; x < r.MaxX; x++ {
			buf = append(buf, g.Get(x, y))
		}
	}
	var out [32]byte
	copy(out[:], crypto.Keccak256(buf))
	return out
}

// RegionEnergy returns the sum of cell energies within the region.
func (g *Grid) RegionEnergy(r Rect) uint64 {
	var total uint64
	for y := r.MinY; y < r.MaxY; y++ {
		for x := r.MinX; x < r.MaxX; x++ {
			total += uint64(g.Get(x, y))
		}
	}
	return total
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	out := &Grid{size: g.size, cells: make([]uint8, len(g.cells))}
	copy(out.cells, g.cells)
	return out
}

// LeftHalf and RightHalf partition the grid into the two disjoint scoring
// regions used by battle execution; which one belongs to which player is
// decided by the tournament seed's low bit (battle.go).
func (g *Grid) LeftHalf() Rect {
	return Rect{MinX: 0, MinY: 0, MaxX: g.size / 2, MaxY: g.size}
}

func (g *Grid) RightHalf() Rect {
	return Rect{MinX: g.size / 2, MinY: 0, MaxX: g.size, MaxY: g.size}
}
