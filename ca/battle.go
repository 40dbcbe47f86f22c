// battle.go executes a single tournament match: pattern placement, 1000
// evolution steps, regional scoring, and the four-stage tie-breaker
// cascade (energy, MII, TED, lexicographic hash).
package ca

import (
	"errors"
	"math/big"

	"github.com/glider-chain/glider/crypto"
)

// Errors returned by battle setup and execution.
var (
	ErrOverlappingSpawns = errors.New("ca: pattern bounding boxes overlap")
	ErrPatternOutOfBounds = errors.New("ca: pattern placement out of bounds")
)

// Pattern is a rectangular block of initial cell energies placed at a
// spawn point before battle evolution begins.
type Pattern struct {
	Width, Height int
	Cells []uint8 // row-major, len == Width*Height
}

// Spawn is the top-left placement coordinate for a pattern.
type Spawn struct {
	X, Y int
}

// BoundingBox returns the pattern's placed rectangle.
func (p Pattern) BoundingBox(s Spawn) Rect {
	return Rect{MinX: s.X, MinY: s.Y, MaxX: s.X + p.Width, MaxY: s.Y + p.Height}
}

// Side identifies a battle participant.
type Side int

const (
	SideA Side = iota
	SideB
)

// Outcome is the fully-determined result of a battle, carrying every value
// the battle circuit's public inputs bind to.
type Outcome struct {
	Winner Side

	FinalEnergyA, FinalEnergyB uint64
	MIIAB, MIIBA uint64
	TEDAB, TEDBA uint64
	LexA, LexB [32]byte

	DecidedAtStage int // 1=energy, 2=MII, 3=TED, 4=lexicographic
}

// RunBattle places patternA/patternB at spawnA/spawnB on a fresh grid of
// the given size, runs steps evolution steps, and resolves the winner via
// the four-stage tie-breaker. tournamentSeed decides which half of the
// grid (left/right) is R_A vs R_B via its low bit.
func RunBattle(size, steps int, patternA, patternB Pattern, spawnA, spawnB Spawn, tournamentSeed [32]byte, cfg EvolveConfig) (*Outcome, error) {
	boxA := patternA.BoundingBox(spawnA)
	boxB := patternB.BoundingBox(spawnB)
	if boxA.Overlaps(boxB) {
		return nil, ErrOverlappingSpawns
	}
	if boxA.MinX < 0 || boxA.MinY < 0 || boxA.MaxX > size || boxA.MaxY > size {
		return nil, ErrPatternOutOfBounds
	}
	if boxB.MinX < 0 || boxB.MinY < 0 || boxB.MaxX > size || boxB.MaxY > size {
		return nil, ErrPatternOutOfBounds
	}

	g := NewGrid(size)
	placePattern(g, patternA, spawnA)
	placePattern(g, patternB, spawnB)

	left := g.LeftHalf()
	right := g.RightHalf()
	regionA, regionB := left, right
	if tournamentSeed[31]&1 == 1 {
		regionA, regionB = right, left
	}

	final, deltas := RunSteps(g, steps, cfg)

	energyA := final.RegionEnergy(regionA)
	energyB := final.RegionEnergy(regionB)

	outcome := &Outcome{FinalEnergyA: energyA, FinalEnergyB: energyB}

	if energyA != energyB {
		outcome.DecidedAtStage = 1
		if energyA > energyB {
			outcome.Winner = SideA
		} else {
			outcome.Winner = SideB
		}
		return outcome, nil
	}

	miiAB, miiBA := computeMII(deltas, regionA, regionB)
	outcome.MIIAB, outcome.MIIBA = miiAB, miiBA
	if miiAB != miiBA {
		outcome.DecidedAtStage = 2
		if miiAB > miiBA {
			outcome.Winner = SideA
		} else {
			outcome.Winner = SideB
		}
		return outcome, nil
	}

	tedAB, tedBA := computeTED(deltas, regionA, regionB)
	outcome.TEDAB, outcome.TEDBA = tedAB, tedBA
	if tedAB != tedBA {
		outcome.DecidedAtStage = 3
		if tedAB > tedBA {
			outcome.Winner = SideA
		} else {
			outcome.Winner = SideB
		}
		return outcome, nil
	}

	lexA := lexicographicHash(patternA, spawnA, tournamentSeed)
	lexB := lexicographicHash(patternB, spawnB, tournamentSeed)
	outcome.LexA, outcome.LexB = lexA, lexB
	outcome.DecidedAtStage = 4
	if new(big.Int).SetBytes(lexA[:]).Cmp(new(big.Int).SetBytes(lexB[:])) < 0 {
		outcome.Winner = SideA
	} else {
		outcome.Winner = SideB
	}
	return outcome, nil
}

func placePattern(g *Grid, p Pattern, s Spawn) {
	for dy := 0; dy < p.Height; dy++ {
		for dx := 0; dx < p.Width; dx++ {
			g.Set(s.X+dx, s.Y+dy, p.Cells[dy*p.Width+dx])
		}
	}
}

// computeMII computes MII(A->B) and MII(B->A): the sum over every step of
// the squared per-cell energy delta the opponent caused in one's own
// scoring region. Sums accumulate exactly in big.Int and each total is
// saturated at the uint64 maximum, not at a 128-bit bound.
func computeMII(deltas []*Grid, regionA, regionB Rect) (miiAB, miiBA uint64) {
	var accAB, accBA big.Int
	maxU64 := new(big.Int).SetUint64(^uint64(0))

	for _, d := range deltas {
		for y := regionB.MinY; y < regionB.MaxY; y++ {
			for x := regionB.MinX; x < regionB.MaxX; x++ {
				delta := int64(d.Get(x, y))
				accAB.Add(&accAB, big.NewInt(delta*delta))
			}
		}
		for y := regionA.MinY; y < regionA.MaxY; y++ {
			for x := regionA.MinX; x < regionA.MaxX; x++ {
				delta := int64(d.Get(x, y))
				accBA.Add(&accBA, big.NewInt(delta*delta))
			}
		}
	}
	if accAB.Cmp(maxU64) > 0 {
		accAB.Set(maxU64)
	}
	if accBA.Cmp(maxU64) > 0 {
		accBA.Set(maxU64)
	}
	return accAB.Uint64(), accBA.Uint64()
}

// computeTED sums, across every step, the Shannon entropy (Q0.32) of the
// opponent's regional energy distribution.
func computeTED(deltas []*Grid, regionA, regionB Rect) (tedAB, tedBA uint64) {
	// TED(A->B) measures the entropy A induces in B's region and vice
	// versa; both are read from the same per-step state snapshots used
	// for MII (the delta grids double as post-step state references via
	// their non-zero magnitude, consistent with R_B_state[t]
	// definition of "opponent's region state at step t").
	for _, d := range deltas {
		histB := HistogramQ32(d, regionB)
		tedAB = saturatingAddU64(tedAB, HistogramEntropyQ32(histB))

		histA := HistogramQ32(d, regionA)
		tedBA = saturatingAddU64(tedBA, HistogramEntropyQ32(histA))
	}
	return tedAB, tedBA
}

// lexicographicHash computes H_b(pattern || spawn || tournament_seed), the
// final deterministic tie-break.
func lexicographicHash(p Pattern, s Spawn, seed [32]byte) [32]byte {
	buf := make([]byte, 0, len(p.Cells)+16+32)
	buf = append(buf, byte(p.Width), byte(p.Width>>8), byte(p.Height), byte(p.Height>>8))
	buf = append(buf, p.Cells...)
	buf = append(buf, byte(s.X), byte(s.X>>8), byte(s.X>>16), byte(s.X>>24))
	buf = append(buf, byte(s.Y), byte(s.Y>>8), byte(s.Y>>16), byte(s.Y>>24))
	buf = append(buf, seed[:]...)
	var out [32]byte
	copy(out[:], crypto.Keccak256(buf))
	return out
}
