// bond.go implements bond lifecycle management: a validator locks an
// active bond to become tournament-eligible, may begin unbonding (subject
// to a cooldown before funds are released), and can have an active or
// unbonding bond slashed. Adapted from deposit/withdrawal
// queue lifecycle (core/types/deposit.go, withdrawal.go), generalized from
// epoch-batched deposit/withdrawal processing to this chain's
// immediate-effect create_bond/begin_unbond/finalize_unbond operations.
package state

import (
	"errors"
	"math/big"
	"sync"

	"github.com/glider-chain/glider/core/types"
	"github.com/glider-chain/glider/params"
	"github.com/glider-chain/glider/trust"
)

// BondStatus is the lifecycle stage of a bond.
type BondStatus int

const (
	BondActive BondStatus = iota
	BondUnbonding
	BondSlashed
)

// Errors returned by bond operations.
var (
	ErrBondNotFound = errors.New("state: bond not found")
	ErrBondBelowMinimum = errors.New("state: bond amount below minimum")
	ErrBondNotActive = errors.New("state: bond is not active")
	ErrBondNotUnbonding = errors.New("state: bond is not unbonding")
	ErrBondCooldownActive = errors.New("state: unbond cooldown has not elapsed")
)

// Bond is a miner's locked stake backing tournament eligibility.
type Bond struct {
	Miner types.Address
	Amount *big.Int
	Status BondStatus
	UnbondAtHeight uint64 // height at which begin_unbond was called
}

// Clone returns a deep copy of the bond.
func (b Bond) Clone() Bond {
	return Bond{Miner: b.Miner, Amount: new(big.Int).Set(b.Amount), Status: b.Status, UnbondAtHeight: b.UnbondAtHeight}
}

type bondStore struct {
	mu sync.RWMutex
	bonds map[types.Address]*Bond
}

func newBondStore() *bondStore {
	return &bondStore{bonds: make(map[types.Address]*Bond)}
}

// Clone returns a deep copy of the bond store.
func (s *bondStore) Clone() *bondStore {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := newBondStore()
	for addr, b := range s.bonds {
		cp := b.Clone()
		out.bonds[addr] = &cp
	}
	return out
}

// GetBond returns a snapshot of the bond for miner, if any.
func (s *bondStore) GetBond(miner types.Address) (Bond, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bonds[miner]
	if !ok {
		return Bond{}, false
	}
	return b.Clone(), true
}

// CreateBond locks amount as an active bond for miner. amount must meet
// params.BondMin.
func (s *bondStore) CreateBond(miner types.Address, amount *big.Int) error {
	if amount.Cmp(new(big.Int).SetUint64(params.BondMin)) < 0 {
		return ErrBondBelowMinimum
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bonds[miner] = &Bond{Miner: miner, Amount: new(big.Int).Set(amount), Status: BondActive}
	return nil
}

// BeginUnbond transitions an active bond into the unbonding state,
// recording the height the cooldown starts from.
func (s *bondStore) BeginUnbond(miner types.Address, height uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bonds[miner]
	if !ok {
		return ErrBondNotFound
	}
	if b.Status != BondActive {
		return ErrBondNotActive
	}
	b.Status = BondUnbonding
	b.UnbondAtHeight = height
	return nil
}

// FinalizeUnbond releases an unbonding bond once params.UnbondPeriod blocks
// have elapsed since BeginUnbond.
func (s *bondStore) FinalizeUnbond(miner types.Address, height uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bonds[miner]
	if !ok {
		return ErrBondNotFound
	}
	if b.Status != BondUnbonding {
		return ErrBondNotUnbonding
	}
	if height < b.UnbondAtHeight+params.UnbondPeriod {
		return ErrBondCooldownActive
	}
	delete(s.bonds, miner)
	return nil
}

// Stake returns the bonded amount backing miner if its bond is active,
// or zero otherwise — an unbonding or slashed bond carries no voting
// weight in the finality gadget.
func (s *bondStore) Stake(miner types.Address) *big.Int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bonds[miner]
	if !ok || b.Status != BondActive {
		return big.NewInt(0)
	}
	return new(big.Int).Set(b.Amount)
}

// TotalStake returns the sum of every active bond.
func (s *bondStore) TotalStake() *big.Int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := big.NewInt(0)
	for _, b := range s.bonds {
		if b.Status == BondActive {
			total.Add(total, b.Amount)
		}
	}
	return total
}

// ApplySlash burns the slash action's fraction (or the whole bond, for
// Full/FullAndBan) from the miner's bond, permanently banning the miner in
// the trust engine for FullAndBan.
func (s *bondStore) ApplySlash(miner types.Address, action trust.SlashAction, trustEngine *trust.Engine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bonds[miner]
	if !ok {
		return ErrBondNotFound
	}

	switch action.Kind {
	case trust.ActionNone:
		return nil
	case trust.ActionPartial:
		burn := new(big.Int).Mul(b.Amount, big.NewInt(int64(action.Fraction*1e6)))
		burn.Div(burn, big.NewInt(1e6))
		b.Amount.Sub(b.Amount, burn)
	case trust.ActionFull:
		b.Amount.SetInt64(0)
		b.Status = BondSlashed
	case trust.ActionFullAndBan:
		b.Amount.SetInt64(0)
		b.Status = BondSlashed
		if trustEngine != nil {
			trustEngine.Ban(miner)
		}
	}
	return nil
}
