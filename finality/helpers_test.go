package finality

import (
	"crypto/ecdsa"
	"math/big"
	"testing"

	"github.com/glider-chain/glider/core/types"
	"github.com/glider-chain/glider/crypto"
	"github.com/glider-chain/glider/trust"
)

type testVoter struct {
	key     *ecdsa.PrivateKey
	addr    types.Address
	compPub []byte
}

func newTestVoter(t *testing.T) testVoter {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	addr := crypto.PubkeyToAddress(key.PublicKey)
	return testVoter{key: key, addr: addr, compPub: crypto.CompressPubkey(&key.PublicKey)}
}

func (v testVoter) vote(t *testing.T, kind Kind, height, round uint64, blockHash types.Hash) *Vote {
	t.Helper()
	vt := &Vote{
		Kind:      kind,
		Height:    height,
		Round:     round,
		BlockHash: blockHash,
		Voter:     v.addr,
		VoterKey:  v.compPub,
	}
	sigHash := vt.SigningHash()
	sig, err := crypto.Sign(sigHash[:], v.key)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	vt.Signature = sig
	return vt
}

// equalWeigher reports the same stake for every voter, for tests that
// only care about crossing the 2/3 threshold.
type equalWeigher struct {
	perVoter *big.Int
	total    *big.Int
}

func (w equalWeigher) Stake(types.Address) *big.Int { return w.perVoter }
func (w equalWeigher) TotalStake() *big.Int         { return w.total }

type fakeSlasher struct {
	banned []types.Address
}

func (s *fakeSlasher) ApplySlash(miner types.Address, action trust.SlashAction) error {
	s.banned = append(s.banned, miner)
	return nil
}

type fakeClock uint64

func (c fakeClock) Now() uint64 { return uint64(c) }
