// fork_choice.go selects the canonical chain tip: the leaf with the
// greatest cumulative Σ Work(h) from genesis, ties broken by the lower
// block hash. Adapted from consensus/fork_choice_lmd.go
// block-tree bookkeeping (LMDBlockNode/children map, tie-break-by-hash,
// Prune/collectDescs subtree removal), replacing LMD-GHOST's per-block
// attestation-weight accumulation with this chain's simpler total-work
// chain rule: there is no separate vote stream to aggregate, only the
// work each block itself proves it did. The finalized checkpoint from the
// finality gadget (finality/gadget.go) bounds reorgs: OnBlock rejects any
// block at or below the finalized height or not descending from it.
package chain

import (
	"errors"
	"sync"

	"github.com/glider-chain/glider/core/types"
	"github.com/glider-chain/glider/metrics"
	"github.com/glider-chain/glider/params"
)

// Fork-choice errors.
var (
	ErrForkUnknownParent = errors.New("chain: fork choice has no record of the parent block")
	ErrForkBelowFinalized = errors.New("chain: block height is at or below the finalized checkpoint")
	ErrForkNotDescendant = errors.New("chain: block does not descend from the finalized checkpoint")
	ErrForkUnknownBlock = errors.New("chain: fork choice has no record of this block")
)

type blockNode struct {
	hash types.Hash
	parentHash types.Hash
	height uint64
	work uint64 // cumulative Sigma Work(h) from genesis through this block
	children []types.Hash
}

// ForkChoice tracks every known block's cumulative work and answers
// GetHead with the canonical tip.
type ForkChoice struct {
	mu sync.RWMutex

	nodes map[types.Hash]*blockNode

	finalizedHash types.Hash
	finalizedHeight uint64

	head types.Hash
}

// NewForkChoice seeds the tree with the genesis block at zero cumulative
// work.
func NewForkChoice(genesisHash types.Hash) *ForkChoice {
	root := &blockNode{hash: genesisHash}
	return &ForkChoice{
		nodes: map[types.Hash]*blockNode{genesisHash: root},
		finalizedHash: genesisHash,
		finalizedHeight: 0,
		head: genesisHash,
	}
}

// Work computes a block's own work contribution: the CA steps actually
// executed across every non-bye pairing in its bracket, weighted by
// params.GridCost. Bye and single-forfeit pairings contribute no work,
// since no battle ran.
func Work(block *Block, genesis *params.Genesis) uint64 {
	gridSize := uint64(params.GridSize)
	steps := uint64(params.BattleSteps)
	if genesis.AllowTestGridConfig {
		gridSize = uint64(params.TestGridSize)
		steps = uint64(params.TestBattleSteps)
	}

	var fought uint64
	for _, entry := range block.BattleProofs {
		if !entry.IsBye && entry.Proof != nil {
			fought++
		}
	}
	return fought * steps * gridSize * params.GridCost
}

// OnBlock records a new block's own work contribution against its
// already-known parent and updates the head if this extends the
// heaviest chain.
func (fc *ForkChoice) OnBlock(hash, parentHash types.Hash, height, ownWork uint64) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	if _, exists := fc.nodes[hash]; exists {
		return nil
	}
	parent, ok := fc.nodes[parentHash]
	if !ok {
		return ErrForkUnknownParent
	}
	if height <= fc.finalizedHeight {
		return ErrForkBelowFinalized
	}
	if !fc.descendsFromFinalized(parentHash) {
		return ErrForkNotDescendant
	}

	node := &blockNode{hash: hash, parentHash: parentHash, height: height, work: parent.work + ownWork}
	fc.nodes[hash] = node
	parent.children = append(parent.children, hash)

	fc.maybeUpdateHead(node)
	return nil
}

func (fc *ForkChoice) maybeUpdateHead(candidate *blockNode) {
	current := fc.nodes[fc.head]
	if current == nil || candidate.work > current.work ||
		(candidate.work == current.work && hashLess(candidate.hash, current.hash)) {
		if current != nil && candidate.parentHash != fc.head {
			metrics.ForkChoiceReorgs.Inc()
		}
		fc.head = candidate.hash
	}
}

// GetHead returns the current canonical tip.
func (fc *ForkChoice) GetHead() types.Hash {
	fc.mu.RLock()
	defer fc.mu.RUnlock()
	return fc.head
}

// CumulativeWork returns the total work accumulated through hash.
func (fc *ForkChoice) CumulativeWork(hash types.Hash) (uint64, error) {
	fc.mu.RLock()
	defer fc.mu.RUnlock()
	node, ok := fc.nodes[hash]
	if !ok {
		return 0, ErrForkUnknownBlock
	}
	return node.work, nil
}

// SetFinalized advances the finalized checkpoint and prunes every branch
// that does not descend from it, matching the finality gadget's guarantee
// that a finalized prefix is never reorganized across.
func (fc *ForkChoice) SetFinalized(hash types.Hash, height uint64) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	if _, ok := fc.nodes[hash]; !ok {
		return ErrForkUnknownBlock
	}
	fc.finalizedHash = hash
	fc.finalizedHeight = height
	fc.prune(hash)
	return nil
}

// descendsFromFinalized walks parent pointers from hash back to the
// finalized checkpoint. Callers hold fc.mu.
func (fc *ForkChoice) descendsFromFinalized(hash types.Hash) bool {
	for {
		if hash == fc.finalizedHash {
			return true
		}
		node, ok := fc.nodes[hash]
		if !ok || node.parentHash == (types.Hash{}) && hash != fc.finalizedHash {
			return false
		}
		if node.height <= fc.finalizedHeight {
			return false
		}
		hash = node.parentHash
	}
}

// prune removes every node not reachable from root, freeing dead forks
// once a checkpoint finalizes. Callers hold fc.mu.
func (fc *ForkChoice) prune(root types.Hash) {
	keep := map[types.Hash]bool{root: true}
	var walk func(types.Hash)
	walk = func(h types.Hash) {
		node, ok := fc.nodes[h]
		if !ok {
			return
		}
		for _, c := range node.children {
			if !keep[c] {
				keep[c] = true
				walk(c)
			}
		}
	}
	walk(root)

	for h := range fc.nodes {
		if !keep[h] {
			delete(fc.nodes, h)
		}
	}
	if node, ok := fc.nodes[root]; ok {
		node.parentHash = types.Hash{}
	}
}

func hashLess(a, b types.Hash) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
