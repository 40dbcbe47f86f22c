// pairing.go builds the single-elimination bracket: the accepted-commitment
// list, in canonical acceptance order, is Fisher-Yates shuffled by a stream
// of bytes deterministically expanded from the round's VRF seed, then
// paired off two at a time. Adapted from committee_selection.go
// seeded-shuffle discipline (ComputeShuffledIndex's canonical-sort-then-seed
// approach), swapping the beacon chain's swap-or-not shuffle for a plain
// Fisher-Yates driven by a Keccak256 counter-mode byte stream, which is the
// algorithm names directly.
package tournament

import "github.com/glider-chain/glider/crypto"

// seedStream deterministically expands seed into an infinite byte stream
// via Keccak256(seed || counter), generated 32 bytes at a time and
// consumed 8 bytes per draw.
type seedStream struct {
	seed [32]byte
	counter uint64
	buf []byte
}

func newSeedStream(seed [32]byte) *seedStream {
	return &seedStream{seed: seed}
}

func (s *seedStream) nextUint64(bound uint64) uint64 {
	if bound == 0 {
		return 0
	}
	for len(s.buf) < 8 {
		var counterBuf [8]byte
		for i := 0; i < 8; i++ {
			counterBuf[i] = byte(s.counter >> (8 * i))
		}
		s.counter++
		h := crypto.Keccak256(s.seed[:], counterBuf[:])
		s.buf = append(s.buf, h...)
	}
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(s.buf[i]) << (8 * i)
	}
	s.buf = s.buf[8:]
	return v % bound
}

// ShuffleCommits returns a Fisher-Yates permutation of commits seeded by
// seed. The input slice is not mutated.
func ShuffleCommits(commits []CommitMessage, seed [32]byte) []CommitMessage {
	out := make([]CommitMessage, len(commits))
	copy(out, commits)

	stream := newSeedStream(seed)
	for i := len(out) - 1; i > 0; i-- {
		j := stream.nextUint64(uint64(i) + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Pair builds the single-elimination bracket from a shuffled commitment
// list: (c_0,c_1), (c_2,c_3), .... An odd participant count leaves the
// last entry with a bye (Pairing.B == nil).
func Pair(shuffled []CommitMessage) []Pairing {
	pairings := make([]Pairing, 0, (len(shuffled)+1)/2)
	for i := 0; i < len(shuffled); i += 2 {
		a := shuffled[i]
		p := Pairing{A: &a}
		if i+1 < len(shuffled) {
			b := shuffled[i+1]
			p.B = &b
		}
		pairings = append(pairings, p)
	}
	return pairings
}

// BuildBracket shuffles commits by seed and pairs them in one step.
func BuildBracket(commits []CommitMessage, seed [32]byte) []Pairing {
	return Pair(ShuffleCommits(commits, seed))
}
