// vote.go defines the two-phase BFT vote message and its signing/
// verification, adapted from consensus/ssf_round_engine.go
// SSFRoundVote shape, narrowed from its four-phase SSF round (Propose,
// Attest, Aggregate, Finalize) to this chain's two-phase Prevote/Precommit
// gadget ().
package finality

import (
	"errors"

	"github.com/glider-chain/glider/core/types"
	"github.com/glider-chain/glider/crypto"
)

// Kind distinguishes a Prevote from a Precommit. The two kinds are tallied
// separately: a block whose Prevote weight reaches the bonded-stake
// supermajority is prevoted, and a height finalizes when one block's
// Precommit weight reaches it; the tracker does not require the Prevote
// supermajority first.
type Kind uint8

const (
	Prevote Kind = iota
	Precommit
)

func (k Kind) String() string {
	if k == Precommit {
		return "Precommit"
	}
	return "Prevote"
}

var (
	ErrVoteNilVoter = errors.New("finality: vote has zero voter address")
	ErrVoteBadSignature = errors.New("finality: vote signature does not recover to voter")
)

// Vote is a single validator's signed ballot for a block at a given
// height and round.
type Vote struct {
	Kind Kind
	Height uint64
	Round uint64
	BlockHash types.Hash
	Voter types.Address
	VoterKey []byte // compressed secp256k1 pubkey, as in chain.Header.ProposerPubKey
	Signature []byte // 65-byte recoverable signature over SigningHash()
}

// SigningHash is the domain-separated digest a validator signs: every
// field but Signature itself, matching chain.Header.SigningHash's
// everything-but-the-signature convention.
func (v *Vote) SigningHash() types.Hash {
	return crypto.Keccak256Hash(
		[]byte{byte(v.Kind)},
		uint64Bytes(v.Height),
		uint64Bytes(v.Round),
		v.BlockHash[:],
		v.Voter[:],
	)
}

func uint64Bytes(x uint64) []byte {
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(x >> (8 * (7 - i)))
	}
	return b
}

// Verify checks that Signature recovers to VoterKey and that VoterKey
// hashes to Voter.
func (v *Vote) Verify() error {
	if v.Voter == (types.Address{}) {
		return ErrVoteNilVoter
	}
	pub, err := crypto.DecompressPubkey(v.VoterKey)
	if err != nil {
		return err
	}
	if crypto.PubkeyToAddress(*pub) != v.Voter {
		return ErrVoteBadSignature
	}
	sigHash := v.SigningHash()
	if len(v.Signature) < 64 || !crypto.ValidateSignature(crypto.FromECDSAPub(pub), sigHash[:], v.Signature[:64]) {
		return ErrVoteBadSignature
	}
	return nil
}
