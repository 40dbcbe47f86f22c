// entropy.go implements the Temporal Entropy Differential (TED)
// tie-breaker: a 16-bin energy histogram per step, Shannon-entropy summed
// over the battle, computed entirely in Q0.32 fixed-point integer
// arithmetic via a 256-entry log2 lookup table. No floating-point
// operation appears in the hot path (HistogramEntropyQ32/TED); the lookup
// table itself is generated once at init from math.Log2 purely as a
// convenient way to author 256 constants; being fixed and identical across
// every build, it does not introduce any non-determinism into consensus
// computation.
package ca

import "math"

const (
	// entropyBins is the number of histogram buckets the regional energy
	// distribution is quantized into.
	entropyBins = 16

	// log2TableSize is the resolution of the fractional log2 lookup.
	log2TableSize = 256

	// q32One is 1.0 in Q0.32 fixed point.
	q32One uint64 = 1 << 32
)

// log2Q32Table[i] holds floor(log2(1 + i/256) * 2^32) for i in [0, 256).
var log2Q32Table [log2TableSize]uint64

func init() {
	for i := 0; i < log2TableSize; i++ {
		frac := 1.0 + float64(i)/float64(log2TableSize)
		log2Q32Table[i] = uint64(math.Log2(frac) * float64(q32One))
	}
}

// log2Q32 approximates -log2(p) in Q0.32 fixed point for p in (0, 1],
// expressed as a Q0.32 numerator (p * 2^32). Uses a bit-length estimate
// for the integer exponent plus a table lookup for the fractional part.
func log2Q32(pQ32 uint64) uint64 {
	if pQ32 == 0 {
		return 0
	}
	// Find the position of the top set bit: p = m * 2^e, m in [2^31, 2^32).
	e := 63
	for (pQ32>>uint(e))&1 == 0 {
		e--
	}
	// Normalize mantissa to [2^32, 2^33) for table indexing, matching the
	// table's domain of 1.0 <= frac < 2.0.
	shift := e - 32
	var mantissa uint64
	if shift >= 0 {
		mantissa = pQ32 >> uint(shift)
	} else {
		mantissa = pQ32 << uint(-shift)
	}
	idx := (mantissa - q32One) * log2TableSize / q32One
	if idx >= log2TableSize {
		idx = log2TableSize - 1
	}
	fracLog2 := log2Q32Table[idx]

	// log2(p) = (e - 32) + fracLog2/2^32; p <= 1 so this is <= 0. We only
	// ever need -log2(p) which is non-negative for p in (0,1].
	intPart := int64(32 - e)
	total := uint64(intPart) * q32One
	return total - fracLog2
}

// HistogramQ32 buckets region into entropyBins equal-width energy ranges
// and returns counts.
func HistogramQ32(g *Grid, r Rect) [entropyBins]uint32 {
	var hist [entropyBins]uint32
	for y := r.MinY; y < r.MaxY; y++ {
		for x := r.MinX; x < r.MaxX; x++ {
			e := g.Get(x, y)
			bin := int(e) * entropyBins / 256
			if bin >= entropyBins {
				bin = entropyBins - 1
			}
			hist[bin]++
		}
	}
	return hist
}

// HistogramEntropyQ32 computes H = Sum(-p_i * log2(p_i)) over the
// histogram, with p_i expressed in Q0.32 fixed point, returning the
// entropy itself in Q0.32.
func HistogramEntropyQ32(hist [entropyBins]uint32) uint64 {
	var total uint64
	for _, bin := range hist {
		total += uint64(bin)
	}
	if total == 0 {
		return 0
	}

	var entropy uint64
	for _, count := range hist {
		if count == 0 {
			continue
		}
		pQ32 := (uint64(count) << 32) / total
		negLog2P := log2Q32(pQ32)

		// entropy += p * (-log2 p); both operands are Q0.32, product is
		// Q0.64, shift back down to Q0.32.
		term := mulQ32(pQ32, negLog2P)
		entropy = saturatingAddU64(entropy, term)
	}
	return entropy
}

// mulQ32 multiplies two Q0.32 fixed-point values, returning a Q0.32 result.
func mulQ32(a, b uint64) uint64 {
	hi, lo := bitsMul64(a, b)
	// Result is (hi<<64 + lo) >> 32.
	return (hi << 32) | (lo >> 32)
}

// bitsMul64 performs a 64x64->128 bit unsigned multiply.
func bitsMul64(a, b uint64) (hi, lo uint64) {
	const mask32 = (1 << 32) - 1
	aLo, aHi := a&mask32, a>>32
	bLo, bHi := b&mask32, b>>32

	t0 := aLo * bLo
	t1 := aHi*bLo + (t0 >> 32)
	t2 := aLo*bHi + (t1 & mask32)
	hi = aHi*bHi + (t1 >> 32) + (t2 >> 32)
	lo = (t2 << 32) | (t0 & mask32)
	return hi, lo
}

func saturatingAddU64(a, b uint64) uint64 {
	sum := a + b
	if sum < a {
		return math.MaxUint64
	}
	return sum
}
