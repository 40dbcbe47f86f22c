// blockchain.go ties the validator, fork choice, and reward hook into a
// single insertion path. Adapted from core/blockchain.go
// Blockchain (mutex-guarded block/canonical caches, InsertBlock validating
// then executing then updating the head), generalized from the original design's
// always-append-if-higher-number canonical rule to this chain's Σ
// Work(h)-weighted fork choice, and with a reward hook invoked exactly
// once per accepted block in place of EVM state processor.
package chain

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/glider-chain/glider/core/types"
	"github.com/glider-chain/glider/finality"
	"github.com/glider-chain/glider/log"
	"github.com/glider-chain/glider/metrics"
	"github.com/glider-chain/glider/params"
	"github.com/glider-chain/glider/proofs"
	"github.com/glider-chain/glider/state"
)

var logger = log.Default().Module("chain")

// Blockchain errors.
var (
	ErrNoGenesis = errors.New("chain: genesis block not provided")
	ErrBlockNotFound = errors.New("chain: block not found")
	ErrParentNotFound = errors.New("chain: parent block not found")
	ErrAlreadyKnown = errors.New("chain: block already known")
)

// Blockchain manages the canonical set of accepted blocks, re-deriving
// state for re-execution on demand rather than maintaining a live state
// per fork.
type Blockchain struct {
	mu sync.RWMutex

	genesisConf  *params.Genesis
	validator    *Validator
	forkChoice   *ForkChoice
	rewardHook   EconomicsHook
	storage      StorageBackend
	egress       TransportEgress

	blocks       map[types.Hash]*Block
	genesisBlock *Block
	genesisState *state.State
}

// NewBlockchain creates a chain rooted at genesis, with genesisState as
// the pre-funded starting account/bond set. hook may be nil, in which
// case DefaultRewardHook is used.
func NewBlockchain(genesisConf *params.Genesis, keys *proofs.VerifyingKeySet, genesis *Block, genesisState *state.State, hook EconomicsHook) (*Blockchain, error) {
	if genesis == nil {
		return nil, ErrNoGenesis
	}
	if hook == nil {
		hook = RewardHookFunc(DefaultRewardHook)
	}

	hash := genesis.Hash()
	return &Blockchain{
		genesisConf:  genesisConf,
		validator:    NewValidator(genesisConf, keys),
		forkChoice:   NewForkChoice(hash),
		rewardHook:   hook,
		blocks:       map[types.Hash]*Block{hash: genesis},
		genesisBlock: genesis,
		genesisState: genesisState,
	}, nil
}

// SetStorageBackend attaches the external persistence collaborator that
// Finalize checkpoints finalized blocks and state diffs to. Nil (the
// zero value) disables persistence, matching optional
// pattern for external collaborators that have no in-process default.
func (bc *Blockchain) SetStorageBackend(storage StorageBackend) {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	bc.storage = storage
}

// SetTransportEgress attaches the external broadcaster that accepted
// blocks are fanned out through. Nil disables broadcast.
func (bc *Blockchain) SetTransportEgress(egress TransportEgress) {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	bc.egress = egress
}

// InsertBlock validates block against its parent and pre-state, applies
// its reward diff exactly once, and updates fork choice. It never mutates
// state in place: a fresh state is re-derived from genesis along the
// block's ancestor chain, matching stateAt re-execution
// strategy rather than keeping one mutable head state that a failed
// validation would need to roll back.
func (bc *Blockchain) InsertBlock(block *Block) error {
	timer := metrics.NewTimer(metrics.BlockInsertTime)
	defer timer.Stop()

	bc.mu.Lock()
	defer bc.mu.Unlock()

	hash := block.Hash()
	if _, ok := bc.blocks[hash]; ok {
		return nil
	}

	parent, ok := bc.blocks[block.Header.ParentHash]
	if !ok {
		return ErrParentNotFound
	}

	preState, err := bc.stateAt(parent)
	if err != nil {
		return fmt.Errorf("state at parent %x: %w", parent.Hash(), err)
	}

	if err := bc.validator.ValidateBlock(block, parent.Header, block.Header.Timestamp, preState); err != nil {
		return err
	}

	participants := bracketParticipants(block)
	diff, err := bc.rewardHook.Reward(RewardInput{
		Winner: block.Header.Proposer,
		Participants: participants,
		FeePool: feePoolAmount(block),
	})
	if err != nil {
		return fmt.Errorf("reward hook: %w", err)
	}
	if err := ApplyStateDiff(preState.Credit, diff); err != nil {
		return fmt.Errorf("apply reward diff: %w", err)
	}
	if preState.StateRoot() != block.Header.StateRoot {
		return ErrStateRootMismatch
	}

	bc.blocks[hash] = block
	work := Work(block, bc.genesisConf)
	if err := bc.forkChoice.OnBlock(hash, block.Header.ParentHash, block.Header.Height, work); err != nil {
		return err
	}
	metrics.BlocksInserted.Inc()
	metrics.ChainHeight.Set(int64(block.Header.Height))
	logger.Info("block inserted", "height", block.Header.Height, "hash", hash.Hex(), "proposer", block.Header.Proposer.Hex())
	if bc.egress != nil {
		bc.egress.BroadcastBlock(block)
	}
	return nil
}

// GetBlock returns a block by hash, or nil if unknown.
func (bc *Blockchain) GetBlock(hash types.Hash) *Block {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return bc.blocks[hash]
}

// Head returns the current canonical tip's hash per Σ Work(h) fork
// choice.
func (bc *Blockchain) Head() types.Hash {
	return bc.forkChoice.GetHead()
}

// Finalize advances the finalized checkpoint, pruning forks that cannot
// reorg across it. It is invoked by the finality gadget once a round
// reaches quorum, never by block insertion itself.
func (bc *Blockchain) Finalize(hash types.Hash, height uint64) error {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	if err := bc.forkChoice.SetFinalized(hash, height); err != nil {
		return err
	}
	if bc.storage == nil {
		return nil
	}
	block, ok := bc.blocks[hash]
	if !ok {
		return fmt.Errorf("%w: finalized block %x", ErrBlockNotFound, hash)
	}
	diff, err := bc.rewardHook.Reward(RewardInput{
		Winner: block.Header.Proposer,
		Participants: bracketParticipants(block),
		FeePool: feePoolAmount(block),
	})
	if err != nil {
		return fmt.Errorf("reward hook: %w", err)
	}
	return bc.storage.PersistFinalized(block, diff)
}

// AdvanceFinality asks gadget whether height has reached Precommit
// supermajority and, if so, applies it as this chain's finalized
// checkpoint. Returns false, nil if height has not finalized yet.
func (bc *Blockchain) AdvanceFinality(gadget *finality.Gadget, height uint64) (bool, error) {
	hash, done := gadget.FinalizedAt(height)
	if !done {
		return false, nil
	}
	if err := bc.Finalize(hash, height); err != nil {
		return false, err
	}
	return true, nil
}

// stateAt re-derives state after applying every ancestor of block, genesis
// included, by walking parent hashes back to genesis and replaying
// forward. There is no EVM execution here, only reward-hook application
// per block, so this is cheap relative to full transaction
// re-execution.
func (bc *Blockchain) stateAt(block *Block) (*state.State, error) {
	if block.Hash() == bc.genesisBlock.Hash() {
		return bc.genesisState.Clone(), nil
	}

	var chain []*Block
	current := block
	for current.Hash() != bc.genesisBlock.Hash() {
		chain = append(chain, current)
		parent, ok := bc.blocks[current.Header.ParentHash]
		if !ok {
			return nil, fmt.Errorf("%w: missing ancestor %x", ErrBlockNotFound, current.Header.ParentHash)
		}
		current = parent
	}

	st := bc.genesisState.Clone()
	for i := len(chain) - 1; i >= 0; i-- {
		b := chain[i]
		for j := range b.Transactions {
			if err := applyTransaction(st, &b.Transactions[j]); err != nil {
				return nil, fmt.Errorf("re-apply tx in block %x: %w", b.Hash(), err)
			}
		}
		diff, err := bc.rewardHook.Reward(RewardInput{
			Winner: b.Header.Proposer,
			Participants: bracketParticipants(b),
			FeePool: feePoolAmount(b),
		})
		if err != nil {
			return nil, fmt.Errorf("re-apply reward in block %x: %w", b.Hash(), err)
		}
		if err := ApplyStateDiff(st.Credit, diff); err != nil {
			return nil, fmt.Errorf("re-apply reward diff in block %x: %w", b.Hash(), err)
		}
	}
	return st, nil
}

// bracketParticipants collects every miner who reached this block's
// bracket, in canonical acceptance order, winner included.
func bracketParticipants(block *Block) []types.Address {
	out := make([]types.Address, 0, len(block.AcceptedCommitments))
	for _, c := range block.AcceptedCommitments {
		out = append(out, c.Miner)
	}
	return out
}

// feePoolAmount returns the block's fee pool. This chain charges no
// separate gas fee market; transactions move value directly, so it always
// returns nil (an empty fee pool).
func feePoolAmount(block *Block) *big.Int {
	return nil
}
