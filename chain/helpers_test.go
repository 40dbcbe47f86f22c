package chain

import (
	"crypto/ecdsa"
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254"

	"github.com/glider-chain/glider/core/types"
	"github.com/glider-chain/glider/crypto"
	"github.com/glider-chain/glider/params"
	"github.com/glider-chain/glider/proofs"
	"github.com/glider-chain/glider/state"
	"github.com/glider-chain/glider/tournament"
)

// signer bundles a generated keypair with its derived address and
// compressed public key, used throughout the package's tests to stand in
// for a miner or proposer.
type signer struct {
	key     *ecdsa.PrivateKey
	addr    types.Address
	compPub []byte
}

func newSigner(t *testing.T) signer {
	t.Helper()
	priv, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	return signer{
		key:     priv,
		addr:    crypto.PubkeyToAddress(priv.PublicKey),
		compPub: crypto.CompressPubkey(&priv.PublicKey),
	}
}

// universalVerifyingKeySet builds a VerifyingKeySet whose two verifying
// keys accept any public input vector, by the same construction the
// proofs package's own tests use for a trivial zero-input proof
// (trivialValidProof in proofs/groth16_test.go): choose A = alpha, B =
// beta, C = identity, and set every IC entry to the identity element. A
// scalar multiple of the identity is always the identity, so vk_x is the
// identity regardless of the public input values, and the pairing
// equation e(A,B) = e(alpha,beta)*e(vk_x,gamma)*e(C,delta) holds
// unconditionally. This stands in for a real trusted-setup artifact,
// which this tree has no circuit compiler to produce.
func universalVerifyingKeySet(t *testing.T, genesis *params.Genesis, battleInputs, stateInputs int) *proofs.VerifyingKeySet {
	t.Helper()
	_, _, g1Gen, g2Gen := bn254.Generators()

	var alphaScalar, betaScalar, deltaScalar big.Int
	alphaScalar.SetInt64(7)
	betaScalar.SetInt64(11)
	deltaScalar.SetInt64(13)

	var alpha bn254.G1Affine
	alpha.ScalarMultiplication(&g1Gen, &alphaScalar)
	var beta bn254.G2Affine
	beta.ScalarMultiplication(&g2Gen, &betaScalar)
	var delta bn254.G2Affine
	delta.ScalarMultiplication(&g2Gen, &deltaScalar)
	var gamma bn254.G2Affine
	gamma.ScalarMultiplication(&g2Gen, big.NewInt(1))

	var identity bn254.G1Affine

	newKey := func(n int) *proofs.VerifyingKey {
		ic := make([]bn254.G1Affine, n+1)
		for i := range ic {
			ic[i] = identity
		}
		return &proofs.VerifyingKey{Alpha: alpha, Beta: beta, Gamma: gamma, Delta: delta, IC: ic}
	}

	battleVK := newKey(battleInputs)
	stateVK := newKey(stateInputs)
	genesis.BattleCircuitVKHash = battleVK.Hash()
	genesis.StateTransitionCircuitVKHash = stateVK.Hash()

	set := proofs.NewVerifyingKeySet(genesis)
	if err := set.SetKey(proofs.BattleCircuit, battleVK); err != nil {
		t.Fatalf("SetKey battle: %v", err)
	}
	if err := set.SetKey(proofs.StateTransitionCircuit, stateVK); err != nil {
		t.Fatalf("SetKey state transition: %v", err)
	}
	return set
}

// universalProof returns a proof that verifies against the corresponding
// universalVerifyingKeySet key, for any public inputs.
func universalProof() *proofs.Proof {
	_, _, g1Gen, g2Gen := bn254.Generators()
	var alphaScalar, betaScalar big.Int
	alphaScalar.SetInt64(7)
	betaScalar.SetInt64(11)
	var alpha bn254.G1Affine
	alpha.ScalarMultiplication(&g1Gen, &alphaScalar)
	var beta bn254.G2Affine
	beta.ScalarMultiplication(&g2Gen, &betaScalar)
	var identity bn254.G1Affine
	return &proofs.Proof{A: alpha, B: beta, C: identity}
}

// signHeader signs h's SigningHash with signer s and installs the
// signature, returning the signed header for convenience.
func signHeader(t *testing.T, h *Header, s signer) *Header {
	t.Helper()
	sigHash := h.SigningHash()
	sig, err := crypto.Sign(sigHash[:], s.key)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	h.Signature = sig
	return h
}

// newGenesisBlock builds a minimal, self-consistent genesis header: no
// parent, height 0, proposed and signed by gen so its VRF key can seed
// height 1's pairing.
func newGenesisBlock(t *testing.T, gen signer) *Block {
	t.Helper()
	return NewGenesisBlock(gen.key, stateForTest())
}

// stateForTest returns a fresh, empty state, standing in for a genesis
// allocation this package's tests don't otherwise need to vary.
func stateForTest() *state.State {
	return state.New()
}

// singleMinerBlock builds height 1 atop genesis with exactly one accepted
// commitment, which BuildBracket resolves as a lone bye-advance champion,
// needing no battle proof. The reward credited to the champion is the
// block's only state mutation.
func singleMinerBlock(t *testing.T, genBlock *Block, gen signer, miner signer, keys *proofs.VerifyingKeySet, genesisState *state.State) *Block {
	t.Helper()

	seed, seedProof, err := tournament.DeriveSeed(gen.key, genBlock.Hash(), 1)
	if err != nil {
		t.Fatalf("DeriveSeed: %v", err)
	}

	commits := []tournament.CommitMessage{{Miner: miner.addr, Commitment: types.HexToHash("0x01")}}
	bracket := tournament.BuildBracket(commits, seed)
	if len(bracket) != 1 || bracket[0].B != nil {
		t.Fatalf("expected a single bye pairing, got %+v", bracket)
	}

	preRoot := genesisState.StateRoot()
	rewarded := genesisState.Clone()
	if err := rewarded.Credit(miner.addr, BlockIssuance); err != nil {
		t.Fatalf("Credit: %v", err)
	}
	newRoot := rewarded.StateRoot()

	h := &Header{
		ParentHash:      genBlock.Hash(),
		Height:          1,
		Timestamp:       genBlock.Header.Timestamp + 1,
		Proposer:        miner.addr,
		ProposerPubKey:  miner.compPub,
		SeedProof:       seedProof,
		CommitmentsRoot: CommitmentsRoot(commits),
		StateRoot:       newRoot,
		TxRoot:          TxRoot(nil),
	}

	stateInputs := proofs.StateTransitionPublicInputs{OldRoot: preRoot, NewRoot: newRoot}
	h.AggregationCommitment = recomputeAggregation(t, h, nil, stateInputs)
	signHeader(t, h, miner)

	return &Block{
		Header:                h,
		AcceptedCommitments:   commits,
		BattleProofs:          []BattleProofEntry{{Winner: miner.addr, IsBye: true}},
		StateTransitionProof:  universalProof(),
		StateTransitionInputs: stateInputs,
	}
}

// recomputeAggregation mirrors verifyAggregation's own computation, used
// by test fixtures to compute the AggregationCommitment a proposer would
// have published for a given header and proof set.
func recomputeAggregation(t *testing.T, h *Header, battles []BattleProofEntry, stateIn proofs.StateTransitionPublicInputs) types.Hash {
	t.Helper()
	agg := proofs.NewSimpleAggregator()
	submitted := make([]proofs.SubmittedProof, 0, len(battles)+1)
	blockHash := h.PreCommitmentHash()
	for _, entry := range battles {
		if entry.Proof == nil {
			continue
		}
		submitted = append(submitted, proofs.SubmittedProof{
			Kind:      proofs.BattleCircuit,
			BlockHash: blockHash,
			Data:      entry.Proof.Bytes(),
			PublicIn:  battlePublicInputBytes(entry.Inputs),
		})
	}
	submitted = append(submitted, proofs.SubmittedProof{
		Kind:      proofs.StateTransitionCircuit,
		BlockHash: blockHash,
		Data:      universalProof().Bytes(),
		PublicIn:  stateTransitionInputBytes(stateIn),
	})
	aggregated, err := agg.Aggregate(submitted)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	return aggregated.AggregateRoot
}
