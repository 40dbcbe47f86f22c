// Package state implements the consensus state model: accounts, bonds,
// the key-image registry, the nullifier set, and the composed state root.
// Mutation is serialized behind a single mutex, matching the original design's
// core/block_executor.go sequential state-mutation pipeline generalized
// from EVM state transitions to this chain's simpler account/bond model.
package state

import (
	"errors"
	"math/big"
	"sync"

	"github.com/glider-chain/glider/core/types"
)

// Errors returned by account operations.
var (
	ErrBadNonce = errors.New("state: bad nonce")
	ErrInsufficient = errors.New("state: insufficient balance")
	ErrOverflow = errors.New("state: balance overflow")
)

// Account mirrors core/types.Account's shape but without EVM storage/code
// fields, which have no meaning in this chain.
type Account struct {
	Nonce uint64
	Balance *big.Int
}

// Clone returns a deep copy of the account.
func (a Account) Clone() Account {
	return Account{Nonce: a.Nonce, Balance: new(big.Int).Set(a.Balance)}
}

// accountStore holds every known account, keyed by address. Unknown
// addresses are treated as a fresh, zero-balance account.
type accountStore struct {
	mu sync.RWMutex
	accounts map[types.Address]*Account
}

func newAccountStore() *accountStore {
	return &accountStore{accounts: make(map[types.Address]*Account)}
}

// GetAccount returns a snapshot of the account at addr.
func (s *accountStore) GetAccount(addr types.Address) Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if acc, ok := s.accounts[addr]; ok {
		return acc.Clone()
	}
	return Account{Balance: new(big.Int)}
}

func (s *accountStore) getOrCreate(addr types.Address) *Account {
	acc, ok := s.accounts[addr]
	if !ok {
		acc = &Account{Balance: new(big.Int)}
		s.accounts[addr] = acc
	}
	return acc
}

// Clone returns a deep copy of the account store.
func (s *accountStore) Clone() *accountStore {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := newAccountStore()
	for addr, acc := range s.accounts {
		cp := acc.Clone()
		out.accounts[addr] = &cp
	}
	return out
}

// Transfer moves amount from from to to, enforcing the caller-supplied
// nonce and balance sufficiency. It is applied atomically: no partial
// effect is visible on failure.
func (s *accountStore) Transfer(from, to types.Address, amount *big.Int, nonce uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sender := s.getOrCreate(from)
	if sender.Nonce != nonce {
		return ErrBadNonce
	}
	if sender.Balance.Cmp(amount) < 0 {
		return ErrInsufficient
	}

	receiver := s.getOrCreate(to)
	newReceiverBalance := new(big.Int).Add(receiver.Balance, amount)
	if newReceiverBalance.BitLen() > 256 {
		return ErrOverflow
	}

	sender.Balance.Sub(sender.Balance, amount)
	sender.Nonce++
	receiver.Balance.Set(newReceiverBalance)
	return nil
}

// Credit mints amount into addr's balance with no debited sender, used
// for consensus-level issuance (block rewards) rather than transfers.
func (s *accountStore) Credit(addr types.Address, amount *big.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc := s.getOrCreate(addr)
	newBalance := new(big.Int).Add(acc.Balance, amount)
	if newBalance.BitLen() > 256 {
		return ErrOverflow
	}
	acc.Balance.Set(newBalance)
	return nil
}
