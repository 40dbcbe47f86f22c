// validator.go implements the eight-step deterministic block validation
// pipeline: every accepting node runs the same checks in the same order
// and either accepts the block or rejects it with a typed, wrapped
// sentinel error, mirroring core/block_validator.go
// ValidateHeader/ValidateBody structure (ordered checks, one sentinel per
// failure mode) generalized from EIP-1559/4844 gas-accounting checks to
// this chain's champion/proof/state pipeline.
package chain

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/glider-chain/glider/core/types"
	"github.com/glider-chain/glider/crypto"
	"github.com/glider-chain/glider/params"
	"github.com/glider-chain/glider/proofs"
	"github.com/glider-chain/glider/state"
	"github.com/glider-chain/glider/tournament"
)

// Validation step errors, one per pipeline stage.
var (
	ErrHeaderParentMismatch = errors.New("chain: header parent hash does not match parent block")
	ErrHeaderBadHeight = errors.New("chain: header height is not parent height + 1")
	ErrHeaderBadTimestamp = errors.New("chain: header timestamp does not strictly increase")
	ErrHeaderClockSkew = errors.New("chain: header timestamp too far in the future")
	ErrHeaderProposerKey = errors.New("chain: proposer public key does not derive proposer address")
	ErrProposerNotChampion = errors.New("chain: block proposer does not match the elected champion")
	ErrSeedProofMissing = errors.New("chain: block is missing the tournament seed proof")
	ErrCommitmentsRootBad = errors.New("chain: accepted-commitments root does not match header")
	ErrBattleProofCount = errors.New("chain: battle proof count does not match bracket size")
	ErrBattleProofInvalid = errors.New("chain: battle proof failed verification")
	ErrBattleWinnerMismatch = errors.New("chain: battle proof winner does not match a bracket participant")
	ErrBattleCommitUnknown = errors.New("chain: battle proof references a commitment not accepted this height")
	ErrBracketNoChampion = errors.New("chain: bracket does not resolve to a unique champion")
	ErrStateRootMismatch = errors.New("chain: state-transition proof does not chain from parent root")
	ErrStateProofInvalid = errors.New("chain: state-transition proof failed verification")
	ErrAggregationMismatch = errors.New("chain: aggregation commitment does not match recomputed digest")
	ErrTxRootMismatch = errors.New("chain: transaction root does not match header")
	ErrTxApplyFailed = errors.New("chain: transaction failed to apply against pre-state")
	ErrHeaderSignatureBad = errors.New("chain: proposer signature does not verify")
)

// Validator runs the full eight-step pipeline for one block against its
// parent and the chain's pinned verifying keys.
type Validator struct {
	Genesis *params.Genesis
	Keys *proofs.VerifyingKeySet
}

// NewValidator builds a Validator pinned to genesis's circuit verifying
// keys.
func NewValidator(genesis *params.Genesis, keys *proofs.VerifyingKeySet) *Validator {
	return &Validator{Genesis: genesis, Keys: keys}
}

// ValidateHeader runs step 1: header well-formedness independent of any
// proof or state content.
func (v *Validator) ValidateHeader(header, parent *Header, now uint64) error {
	if header.ParentHash != parent.Hash() {
		return fmt.Errorf("%w: want %x got %x", ErrHeaderParentMismatch, parent.Hash(), header.ParentHash)
	}
	if header.Height != parent.Height+1 {
		return fmt.Errorf("%w: parent %d header %d", ErrHeaderBadHeight, parent.Height, header.Height)
	}
	if header.Timestamp <= parent.Timestamp {
		return fmt.Errorf("%w: parent %d header %d", ErrHeaderBadTimestamp, parent.Timestamp, header.Timestamp)
	}
	if !tournament.ClockSkewTolerant(header.Timestamp, time.Unix(int64(now), 0), params.ClockSkewSeconds) {
		return fmt.Errorf("%w: %d", ErrHeaderClockSkew, header.Timestamp)
	}
	pub, err := crypto.DecompressPubkey(header.ProposerPubKey)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrHeaderProposerKey, err)
	}
	if crypto.PubkeyToAddress(*pub) != header.Proposer {
		return ErrHeaderProposerKey
	}
	return nil
}

// ValidateBlock runs step 1 via ValidateHeader and then the remaining
// seven steps: seed-proof verification, champion election, battle-proof
// verification, state-transition verification, aggregation, transaction
// application, and the header signature. preState must be the
// state after applying every block up to and including parent.
func (v *Validator) ValidateBlock(block *Block, parent *Header, now uint64, preState *state.State) error {
	if err := v.ValidateHeader(block.Header, parent, now); err != nil {
		return err
	}

	// Step 2/3: recompute this height's pairing seed from the parent
	// proposer's published proof and rebuild the bracket it seeded.
	if block.Header.SeedProof == nil {
		return ErrSeedProofMissing
	}
	parentPub, err := crypto.DecompressPubkey(parent.ProposerPubKey)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrHeaderProposerKey, err)
	}
	seed, err := tournament.VerifySeed(parentPub, parent.Hash(), block.Header.Height, block.Header.SeedProof)
	if err != nil {
		return err
	}

	if got := CommitmentsRoot(block.AcceptedCommitments); got != block.Header.CommitmentsRoot {
		return fmt.Errorf("%w: want %x got %x", ErrCommitmentsRootBad, block.Header.CommitmentsRoot, got)
	}

	bracket := tournament.BuildBracket(block.AcceptedCommitments, seed)
	if err := v.verifyBracket(block, bracket, seed); err != nil {
		return err
	}

	// Step 5: state-transition proof chains parent.StateRoot to this
	// block's claimed new root.
	in := block.StateTransitionInputs
	if types.Hash(in.OldRoot) != preState.StateRoot() {
		return fmt.Errorf("%w: old root", ErrStateRootMismatch)
	}
	if types.Hash(in.NewRoot) != block.Header.StateRoot {
		return fmt.Errorf("%w: new root", ErrStateRootMismatch)
	}
	ok, err := v.Keys.VerifyStateTransitionProof(block.StateTransitionProof, in)
	if err != nil {
		return err
	}
	if !ok {
		return ErrStateProofInvalid
	}

	// Step 6: the aggregation commitment folds every proof in the block.
	if err := v.verifyAggregation(block); err != nil {
		return err
	}

	// Step 7: transactions apply cleanly against pre-state.
	if got := TxRoot(block.Transactions); got != block.Header.TxRoot {
		return fmt.Errorf("%w: want %x got %x", ErrTxRootMismatch, block.Header.TxRoot, got)
	}
	for i := range block.Transactions {
		tx := &block.Transactions[i]
		if err := applyTransaction(preState, tx); err != nil {
			return fmt.Errorf("%w: tx %d: %v", ErrTxApplyFailed, i, err)
		}
	}

	// Step 8: the proposer's signature over the header.
	pub, err := crypto.DecompressPubkey(block.Header.ProposerPubKey)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrHeaderProposerKey, err)
	}
	sigHash := block.Header.SigningHash()
	if len(block.Header.Signature) != 65 {
		return ErrHeaderSignatureBad
	}
	if !crypto.ValidateSignature(crypto.FromECDSAPub(pub), sigHash[:], block.Header.Signature[:64]) {
		return ErrHeaderSignatureBad
	}

	return nil
}

// verifyBracket checks every non-bye battle proof, confirms its referenced
// commitments were accepted this height, and resolves a unique champion
// matching block.Header.Proposer.
func (v *Validator) verifyBracket(block *Block, bracket []tournament.Pairing, seed [32]byte) error {
	if len(block.BattleProofs) != len(bracket) {
		return fmt.Errorf("%w: want %d got %d", ErrBattleProofCount, len(bracket), len(block.BattleProofs))
	}

	accepted := make(map[types.Hash]bool, len(block.AcceptedCommitments))
	for _, c := range block.AcceptedCommitments {
		accepted[c.Commitment] = true
	}

	results := make([]tournament.MatchResult, len(bracket))
	for i, pairing := range bracket {
		entry := block.BattleProofs[i]
		results[i] = tournament.MatchResult{Pairing: pairing, Winner: entry.Winner, ByeAdvance: entry.IsBye}

		if pairing.B == nil {
			if !entry.IsBye || entry.Winner != pairing.A.Miner {
				return fmt.Errorf("%w: bye at bracket position %d", ErrBattleWinnerMismatch, i)
			}
			continue
		}
		if !accepted[pairing.A.Commitment] || !accepted[pairing.B.Commitment] {
			return fmt.Errorf("%w: bracket position %d", ErrBattleCommitUnknown, i)
		}
		if entry.IsBye {
			continue // single-sided forfeit: winner already recorded, no proof to check
		}
		if entry.Proof == nil {
			return fmt.Errorf("%w: bracket position %d", ErrBattleProofInvalid, i)
		}
		if types.Hash(entry.Inputs.CommitmentA) != pairing.A.Commitment || types.Hash(entry.Inputs.CommitmentB) != pairing.B.Commitment {
			return fmt.Errorf("%w: commitment mismatch at position %d", ErrBattleCommitUnknown, i)
		}
		if entry.Inputs.TournamentSeed != seed {
			return fmt.Errorf("%w: seed mismatch at position %d", ErrBattleProofInvalid, i)
		}
		if !bytes.Equal(entry.Inputs.WinnerID[:], addressToField(entry.Winner)[:]) {
			return fmt.Errorf("%w: winner id mismatch at position %d", ErrBattleWinnerMismatch, i)
		}
		if entry.Winner != pairing.A.Miner && entry.Winner != pairing.B.Miner {
			return fmt.Errorf("%w: position %d", ErrBattleWinnerMismatch, i)
		}
		ok, err := v.Keys.VerifyBattleProof(entry.Proof, entry.Inputs)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: position %d", ErrBattleProofInvalid, i)
		}
	}

	champion, ok := tournament.Champion(results)
	if !ok {
		return ErrBracketNoChampion
	}
	if champion != block.Header.Proposer {
		return ErrProposerNotChampion
	}
	return nil
}

// verifyAggregation recomputes the proofs.SimpleAggregator digest over
// every proof carried by the block (battle proofs in bracket order,
// followed by the state-transition proof) and compares it against the
// header's claimed commitment.
func (v *Validator) verifyAggregation(block *Block) error {
	agg := proofs.NewSimpleAggregator()
	submitted := make([]proofs.SubmittedProof, 0, len(block.BattleProofs)+1)
	blockHash := block.Header.PreCommitmentHash()

	for _, entry := range block.BattleProofs {
		if entry.Proof == nil {
			continue
		}
		submitted = append(submitted, proofs.SubmittedProof{
			Kind: proofs.BattleCircuit,
			BlockHash: blockHash,
			Data: entry.Proof.Bytes(),
			PublicIn: battlePublicInputBytes(entry.Inputs),
		})
	}
	submitted = append(submitted, proofs.SubmittedProof{
		Kind: proofs.StateTransitionCircuit,
		BlockHash: blockHash,
		Data: block.StateTransitionProof.Bytes(),
		PublicIn: stateTransitionInputBytes(block.StateTransitionInputs),
	})

	aggregated, err := agg.Aggregate(submitted)
	if err != nil {
		return err
	}
	if aggregated.AggregateRoot != block.Header.AggregationCommitment {
		return fmt.Errorf("%w: want %x got %x", ErrAggregationMismatch, block.Header.AggregationCommitment, aggregated.AggregateRoot)
	}
	return nil
}

func battlePublicInputBytes(in proofs.BattlePublicInputs) []byte {
	buf := make([]byte, 0, 11*32)
	fields := [][32]byte{
		in.CommitmentA, in.CommitmentB, in.TournamentSeed, in.WinnerID,
		in.FinalEnergyA, in.FinalEnergyB, in.MIIAB, in.MIIBA,
		in.TEDAB, in.TEDBA, in.SeedHash,
	}
	for _, f := range fields {
		buf = append(buf, f[:]...)
	}
	return buf
}

func stateTransitionInputBytes(in proofs.StateTransitionPublicInputs) []byte {
	buf := make([]byte, 0, 4*32)
	fields := [][32]byte{in.OldRoot, in.NewRoot, in.Nullifier, in.Commitment}
	for _, f := range fields {
		buf = append(buf, f[:]...)
	}
	return buf
}

// addressToField zero-extends an address into a 32-byte field element,
// matching state.go's hashAccountLeaf address encoding.
func addressToField(a types.Address) (out [32]byte) {
	copy(out[12:], a[:])
	return out
}

func applyTransaction(s *state.State, tx *Transaction) error {
	sigHash := tx.SigningHash()
	pub, err := crypto.SigToPub(sigHash[:], tx.Signature)
	if err != nil {
		return err
	}
	if crypto.PubkeyToAddress(*pub) != tx.From {
		return errors.New("chain: transaction signature does not match sender")
	}
	return s.Transfer(tx.From, tx.To, tx.Amount, tx.Nonce)
}
