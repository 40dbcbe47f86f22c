// reward_hook.go implements the external reward contract: a pure function
// of (winner, participants, fee_pool) re-executed by every validating node,
// never trusted from the block itself. Adapted from the original design's
// consensus/block_rewards.go BlockRewardEngine (a stateless engine over a
// single ComputeBlockRewards entry point returning a typed breakdown),
// narrowed from the beacon chain's five-weight Altair formula down to a
// flat split: the champion keeps the fee pool plus a fixed issuance, every
// other participant earns nothing extra from this hook (their EBSL
// evidence is the reward for playing, per battle_dispatch.go).
package chain

import (
	"errors"
	"math/big"
	"sort"

	"github.com/glider-chain/glider/core/types"
)

// ErrRewardNoWinner is returned when RewardInput has no winner to credit.
var ErrRewardNoWinner = errors.New("chain: reward hook called with no winner")

// BlockIssuance is the fixed per-block issuance credited to the champion
// in addition to the collected fee pool.
var BlockIssuance = big.NewInt(2_000_000_000) // 2 * 10^9 base units

// RewardInput is exactly what the reward hook is allowed to see: it may
// not reach into full block or state contents, only this fixed tuple, so
// that re-executing it during validation is guaranteed deterministic and
// side-effect free.
type RewardInput struct {
	Winner       types.Address
	Participants []types.Address // every miner that reached the bracket this height, winner included
	FeePool      *big.Int
}

// StateDiff is the reward hook's output: a set of balance deltas to apply
// to state.State, applied by the caller (never by the hook itself).
type StateDiff struct {
	Credits map[types.Address]*big.Int
}

// DefaultRewardHook is the default reward rule: the champion receives the
// full fee pool plus fixed block issuance. Non-winning participants earn
// no balance credit here; their standing is carried entirely by EBSL
// evidence recorded during battle_dispatch.go.
func DefaultRewardHook(in RewardInput) (*StateDiff, error) {
	if in.Winner == (types.Address{}) {
		return nil, ErrRewardNoWinner
	}
	fees := in.FeePool
	if fees == nil {
		fees = new(big.Int)
	}
	total := new(big.Int).Add(fees, BlockIssuance)

	return &StateDiff{Credits: map[types.Address]*big.Int{in.Winner: total}}, nil
}

// ApplyStateDiff credits every balance delta in diff to the target
// account via a zero-sender mint (consensus-level issuance has no
// debited sender). Non-winner participants with no entry in diff.Credits
// are left untouched.
func ApplyStateDiff(creditFn func(addr types.Address, amount *big.Int) error, diff *StateDiff) error {
	addrs := make([]types.Address, 0, len(diff.Credits))
	for a := range diff.Credits {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool { return lessAddress(addrs[i], addrs[j]) })

	for _, a := range addrs {
		if err := creditFn(a, diff.Credits[a]); err != nil {
			return err
		}
	}
	return nil
}

func lessAddress(a, b types.Address) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
