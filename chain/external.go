// external.go declares this chain's external collaborator contracts:
// the peer-to-peer transport it is fed by and broadcasts through, the
// durable storage it checkpoints finalized state to, and the economics
// engine that computes block rewards. Every contract here is a pure
// behavioral interface with no concrete transport/storage/RPC
// implementation: transport, storage, and economics all stay external
// collaborators, not concrete subsystems of this package.
package chain

import (
	"github.com/glider-chain/glider/core/types"
	"github.com/glider-chain/glider/state"
)

// TransportIngress is the inbound half of this chain's peer-to-peer
// contract: block submission from the network.
type TransportIngress interface {
	SubmitBlock(b *Block) (accepted bool, err error)
}

// TransportEgress is the outbound half: blocks this node accepts are
// broadcast, fire-and-forget, idempotent at the receiving peer.
type TransportEgress interface {
	BroadcastBlock(b *Block)
}

// StorageBackend is the external persistence contract. PersistFinalized
// is all-or-nothing: either both the block and its state diff land, or
// neither does.
type StorageBackend interface {
	PersistFinalized(b *Block, diff *StateDiff) error
	LoadStateAt(root types.Hash) (*state.State, error)
	LoadChainHead() (hash types.Hash, height uint64, root types.Hash, err error)
}

// EconomicsHook computes a block's reward state diff from economics
// external to consensus. It must be pure: every validating node
// re-executes it from the same (winner, participants, fee_pool) tuple
// and must derive the same diff.
type EconomicsHook interface {
	Reward(in RewardInput) (*StateDiff, error)
}

// RewardHookFunc adapts a plain reward function to EconomicsHook,
// mirroring the standard library's http.HandlerFunc pattern.
type RewardHookFunc func(in RewardInput) (*StateDiff, error)

// Reward calls f.
func (f RewardHookFunc) Reward(in RewardInput) (*StateDiff, error) { return f(in) }

var _ TransportIngress = (*Blockchain)(nil)

// SubmitBlock implements TransportIngress by delegating straight to
// InsertBlock: this chain has no separate validation-queue stage, so
// accepting a block from the network is exactly inserting it.
func (bc *Blockchain) SubmitBlock(b *Block) (accepted bool, err error) {
	if err := bc.InsertBlock(b); err != nil {
		return false, err
	}
	return true, nil
}
