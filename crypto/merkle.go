// merkle.go implements the depth-32 state tree used for account and bond
// commitments (state.md root). Unlike commitment_tree.go's append-only
// accumulator, leaves here are updated in place as account balances and
// bonds change, so every node along a changed path is cached and
// recomputed rather than derived incrementally.
//
// All hashing uses H_f (poseidon.go) so that a state-transition circuit can
// open tree paths natively inside BN254 scalar-field arithmetic.
package crypto

import (
	"sync"

	"github.com/glider-chain/glider/core/types"
)

// StateTreeDepth bounds the tree to 2^32 leaf slots, addressed by account
// index.
const StateTreeDepth = 32

// stateEmptyHashes[i] is the H_f hash of an empty subtree at depth i.
var stateEmptyHashes [StateTreeDepth + 1][32]byte

func init() {
	stateEmptyHashes[0] = PoseidonHashSingle(0, [32]byte{})
	for i := 1; i <= StateTreeDepth; i++ {
		stateEmptyHashes[i] = PoseidonHashBytes(stateEmptyHashes[i-1], stateEmptyHashes[i-1])
	}
}

// StateTreeProof is an inclusion proof for the leaf at Index.
type StateTreeProof struct {
	Index    uint64
	Leaf     [32]byte
	Siblings [StateTreeDepth][32]byte
}

// StateTree is a fixed-depth, sparsely-populated Merkle tree over account
// leaf hashes, keyed by dense account index.
type StateTree struct {
	mu    sync.RWMutex
	nodes [StateTreeDepth + 1]map[uint64][32]byte
	root  [32]byte
}

// NewStateTree creates an empty state tree.
func NewStateTree() *StateTree {
	st := &StateTree{root: stateEmptyHashes[StateTreeDepth]}
	for i := range st.nodes {
		st.nodes[i] = make(map[uint64][32]byte)
	}
	return st
}

// Root returns the current state root.
func (st *StateTree) Root() types.Hash {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return types.Hash(st.root)
}

// nodeAt returns the cached hash at (level, index), falling back to the
// precomputed empty-subtree hash. Caller must hold st.mu.
func (st *StateTree) nodeAt(level int, index uint64) [32]byte {
	if h, ok := st.nodes[level][index]; ok {
		return h
	}
	return stateEmptyHashes[level]
}

// Update sets the leaf at index to leaf and returns the new root.
func (st *StateTree) Update(index uint64, leaf [32]byte) types.Hash {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.nodes[0][index] = leaf
	current := leaf
	idx := index
	for level := 0; level < StateTreeDepth; level++ {
		var parent [32]byte
		if idx%2 == 0 {
			sibling := st.nodeAt(level, idx+1)
			parent = PoseidonHashBytes(current, sibling)
		} else {
			sibling := st.nodeAt(level, idx-1)
			parent = PoseidonHashBytes(sibling, current)
		}
		idx /= 2
		st.nodes[level+1][idx] = parent
		current = parent
	}
	st.root = current
	return types.Hash(st.root)
}

// MerkleProof builds an inclusion proof for the given leaf index.
func (st *StateTree) MerkleProof(index uint64) *StateTreeProof {
	st.mu.RLock()
	defer st.mu.RUnlock()

	proof := &StateTreeProof{Index: index, Leaf: st.nodeAt(0, index)}
	idx := index
	for level := 0; level < StateTreeDepth; level++ {
		if idx%2 == 0 {
			proof.Siblings[level] = st.nodeAt(level, idx+1)
		} else {
			proof.Siblings[level] = st.nodeAt(level, idx-1)
		}
		idx /= 2
	}
	return proof
}

// VerifyStateTreeProof recomputes the root implied by proof and compares it
// against root.
func VerifyStateTreeProof(proof *StateTreeProof, root types.Hash) bool {
	if proof == nil {
		return false
	}
	current := proof.Leaf
	idx := proof.Index
	for level := 0; level < StateTreeDepth; level++ {
		sibling := proof.Siblings[level]
		if idx%2 == 0 {
			current = PoseidonHashBytes(current, sibling)
		} else {
			current = PoseidonHashBytes(sibling, current)
		}
		idx /= 2
	}
	return types.Hash(current) == root
}
