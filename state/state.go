// state.go composes the account store, bond store, nullifier set, and
// key-image registry into a single state root: an H_f Merkle tree over
// the four canonically-ordered sub-roots, matching the original design's
// unified_beacon_state.go pattern of folding sub-state roots into one
// state root rather than hashing every leaf into a single flat tree.
package state

import (
	"math/big"
	"sort"
	"sync"

	"github.com/glider-chain/glider/core/types"
	"github.com/glider-chain/glider/crypto"
	"github.com/glider-chain/glider/metrics"
	"github.com/glider-chain/glider/trust"
)

// State is the full consensus state at a given block height.
type State struct {
	mu sync.Mutex // serializes every mutation; reads take the sub-store RWMutexes

	accounts *accountStore
	bonds *bondStore
	nullifiers *crypto.SparseMerkleTree
	keyImages *KeyImageRegistry
	trust *trust.Engine
}

// New creates an empty state.
func New() *State {
	return &State{
		accounts: newAccountStore(),
		bonds: newBondStore(),
		nullifiers: crypto.NewSparseMerkleTree(),
		keyImages: NewKeyImageRegistry(),
		trust: trust.NewEngine(),
	}
}

// Clone returns a deep copy of the full state, letting the chain layer
// fork execution across competing blocks without the original's future
// mutations leaking across (mirrors MemoryStateDB.Copy).
func (s *State) Clone() *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &State{
		accounts: s.accounts.Clone(),
		bonds: s.bonds.Clone(),
		nullifiers: s.nullifiers.Clone(),
		keyImages: s.keyImages.Clone(),
		trust: s.trust.Clone(),
	}
}

// Trust exposes the underlying EBSL engine for read/decay access by the
// tournament and chain layers.
func (s *State) Trust() *trust.Engine { return s.trust }

// GetAccount returns the account at addr.
func (s *State) GetAccount(addr types.Address) Account {
	return s.accounts.GetAccount(addr)
}

// Transfer applies a balance transfer, serialized behind the state's
// single mutation mutex.
func (s *State) Transfer(from, to types.Address, amount *big.Int, nonce uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accounts.Transfer(from, to, amount, nonce)
}

// Credit mints amount into addr's balance, used for consensus-level
// issuance (block rewards) rather than a debited transfer.
func (s *State) Credit(addr types.Address, amount *big.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accounts.Credit(addr, amount)
}

// CreateBond locks a new active bond for miner.
func (s *State) CreateBond(miner types.Address, amount *big.Int) error {
	if err := s.createBond(miner, amount); err != nil {
		return err
	}
	metrics.BondsCreated.Inc()
	return nil
}

func (s *State) createBond(miner types.Address, amount *big.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bonds.CreateBond(miner, amount)
}

// BeginUnbond starts a bond's cooldown.
func (s *State) BeginUnbond(miner types.Address, height uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bonds.BeginUnbond(miner, height)
}

// FinalizeUnbond releases a bond once its cooldown has elapsed.
func (s *State) FinalizeUnbond(miner types.Address, height uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bonds.FinalizeUnbond(miner, height)
}

// GetBond returns the bond for miner, if any.
func (s *State) GetBond(miner types.Address) (Bond, bool) {
	return s.bonds.GetBond(miner)
}

// Stake returns miner's active bonded stake, satisfying
// finality.StakeWeigher.
func (s *State) Stake(miner types.Address) *big.Int {
	return s.bonds.Stake(miner)
}

// TotalStake returns the sum of every active bond, satisfying
// finality.StakeWeigher.
func (s *State) TotalStake() *big.Int {
	return s.bonds.TotalStake()
}

// ApplySlash applies a slash action to miner's bond and, for FullAndBan,
// the trust engine.
func (s *State) ApplySlash(miner types.Address, action trust.SlashAction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.bonds.ApplySlash(miner, action, s.trust); err != nil {
		return err
	}
	if action.Kind != trust.ActionNone {
		metrics.BondsSlashed.Inc()
	}
	return nil
}

// InsertKeyImage records a new key image at height, rejecting duplicates.
func (s *State) InsertKeyImage(image types.Hash, height uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keyImages.Insert(image, height)
}

// KeyImages exposes the registry for rollback/finalize calls from the
// chain layer's reorg handling.
func (s *State) KeyImages() *KeyImageRegistry { return s.keyImages }

// InsertNullifier records a spent nullifier, returning the new nullifier
// set root.
func (s *State) InsertNullifier(nullifier types.Hash) types.Hash {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nullifiers.Insert(nullifier)
}

// NullifierSeen reports whether a nullifier has already been spent.
func (s *State) NullifierSeen(nullifier types.Hash) bool {
	return s.nullifiers.Contains(nullifier)
}

// StateRoot computes H_f over the four canonically-ordered sub-roots:
// accounts, bonds, nullifier-set root, key-image accumulator.
func (s *State) StateRoot() types.Hash {
	s.mu.Lock()
	defer s.mu.Unlock()

	accountsRoot := s.accountsSubRoot()
	bondsRoot := s.bondsSubRoot()
	nullifierRoot := s.nullifiers.Root()
	keyImageRoot := s.keyImageSubRoot()

	h := crypto.PoseidonHashBytes(accountsRoot, bondsRoot)
	h = crypto.PoseidonHashBytes(h, [32]byte(nullifierRoot))
	h = crypto.PoseidonHashBytes(h, keyImageRoot)
	return types.Hash(h)
}

// accountsSubRoot hashes every account's (address, nonce, balance) in
// address-sorted order into a single H_f digest.
func (s *State) accountsSubRoot() [32]byte {
	s.accounts.mu.RLock()
	defer s.accounts.mu.RUnlock()

	addrs := make([]types.Address, 0, len(s.accounts.accounts))
	for a := range s.accounts.accounts {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool { return lessAddress(addrs[i], addrs[j]) })

	acc := [32]byte{}
	for _, addr := range addrs {
		account := s.accounts.accounts[addr]
		leaf := hashAccountLeaf(addr, account)
		acc = crypto.PoseidonHashBytes(acc, leaf)
	}
	return acc
}

func (s *State) bondsSubRoot() [32]byte {
	s.bonds.mu.RLock()
	defer s.bonds.mu.RUnlock()

	addrs := make([]types.Address, 0, len(s.bonds.bonds))
	for a := range s.bonds.bonds {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool { return lessAddress(addrs[i], addrs[j]) })

	acc := [32]byte{}
	for _, addr := range addrs {
		bond := s.bonds.bonds[addr]
		leaf := hashBondLeaf(bond)
		acc = crypto.PoseidonHashBytes(acc, leaf)
	}
	return acc
}

func (s *State) keyImageSubRoot() [32]byte {
	s.keyImages.mu.RLock()
	defer s.keyImages.mu.RUnlock()

	images := make([]types.Hash, 0, len(s.keyImages.images))
	for img := range s.keyImages.images {
		images = append(images, img)
	}
	sort.Slice(images, func(i, j int) bool { return lessHash(images[i], images[j]) })

	acc := [32]byte{}
	for _, img := range images {
		acc = crypto.PoseidonHashBytes(acc, [32]byte(img))
	}
	return acc
}

func hashAccountLeaf(addr types.Address, acc *Account) [32]byte {
	var addrBuf [32]byte
	copy(addrBuf[12:], addr[:])
	h := crypto.PoseidonHashBytes(addrBuf, balanceBytes(acc.Balance))
	return crypto.PoseidonHashSingle(acc.Nonce, h)
}

func hashBondLeaf(b *Bond) [32]byte {
	var addrBuf [32]byte
	copy(addrBuf[12:], b.Miner[:])
	h := crypto.PoseidonHashBytes(addrBuf, balanceBytes(b.Amount))
	return crypto.PoseidonHashSingle(uint64(b.Status), h)
}

func balanceBytes(v *big.Int) [32]byte {
	var out [32]byte
	if v == nil {
		return out
	}
	b := v.Bytes()
	copy(out[32-len(b):], b)
	return out
}

func lessAddress(a, b types.Address) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func lessHash(a, b types.Hash) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
