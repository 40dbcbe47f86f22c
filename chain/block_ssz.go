// block_ssz.go implements SSZ encoding for Header, BattleProofEntry,
// Transaction, and Block, mirroring block_ssz.go's own per-type pattern:
// a SizeSSZ/MarshalSSZ/UnmarshalSSZ trio built from ssz's generic
// container and list helpers.
package chain

import (
	"math/big"

	"github.com/glider-chain/glider/core/types"
	"github.com/glider-chain/glider/crypto"
	"github.com/glider-chain/glider/proofs"
	"github.com/glider-chain/glider/ssz"
	"github.com/glider-chain/glider/tournament"
)

const vrfProofByteLen = 128
const battlePublicInputsByteLen = 11 * 32
const stateTransitionPublicInputsByteLen = 4 * 32
const proofByteLen = 128

// headerFixedSizes lists ParentHash, Height, Timestamp, Proposer,
// SeedProof, NextSeedProof, CommitmentsRoot, AggregationCommitment,
// StateRoot, TxRoot, in that order, with 0 marking the three trailing
// variable fields (ProposerPubKey, Extra, Signature).
var headerFixedSizes = []int{
	types.HashLength, 8, 8, types.AddressLength,
	vrfProofByteLen, vrfProofByteLen,
	types.HashLength, types.HashLength, types.HashLength, types.HashLength,
	0, 0, 0,
}

// SizeSSZ returns the encoded size of h, satisfying ssz.Marshaler.
func (h *Header) SizeSSZ() int {
	fixed := 0
	for _, s := range headerFixedSizes {
		if s == 0 {
			fixed += ssz.BytesPerLengthOffset
		} else {
			fixed += s
		}
	}
	return fixed + len(h.ProposerPubKey) + len(h.Extra) + len(h.Signature)
}

// MarshalSSZ encodes a Header.
func (h *Header) MarshalSSZ() ([]byte, error) {
	fixed := [][]byte{
		ssz.MarshalByteVector(h.ParentHash[:]),
		ssz.MarshalUint64(h.Height),
		ssz.MarshalUint64(h.Timestamp),
		ssz.MarshalByteVector(h.Proposer[:]),
		vrfProofBytes(h.SeedProof),
		vrfProofBytes(h.NextSeedProof),
		ssz.MarshalByteVector(h.CommitmentsRoot[:]),
		ssz.MarshalByteVector(h.AggregationCommitment[:]),
		ssz.MarshalByteVector(h.StateRoot[:]),
		ssz.MarshalByteVector(h.TxRoot[:]),
		nil,
		nil,
		nil,
	}
	variable := [][]byte{h.ProposerPubKey, h.Extra, h.Signature}
	return ssz.MarshalVariableContainer(fixed, variable, []int{10, 11, 12}), nil
}

// UnmarshalSSZ decodes a Header encoded by MarshalSSZ.
func (h *Header) UnmarshalSSZ(data []byte) error {
	fields, err := ssz.UnmarshalVariableContainer(data, len(headerFixedSizes), headerFixedSizes)
	if err != nil {
		return err
	}
	height, err := ssz.UnmarshalUint64(fields[1])
	if err != nil {
		return err
	}
	timestamp, err := ssz.UnmarshalUint64(fields[2])
	if err != nil {
		return err
	}

	h.ParentHash = types.BytesToHash(fields[0])
	h.Height = height
	h.Timestamp = timestamp
	h.Proposer = types.BytesToAddress(fields[3])
	h.SeedProof = vrfProofFromBytes(fields[4])
	h.NextSeedProof = vrfProofFromBytes(fields[5])
	h.CommitmentsRoot = types.BytesToHash(fields[6])
	h.AggregationCommitment = types.BytesToHash(fields[7])
	h.StateRoot = types.BytesToHash(fields[8])
	h.TxRoot = types.BytesToHash(fields[9])
	h.ProposerPubKey = fields[10]
	h.Extra = fields[11]
	h.Signature = fields[12]
	return nil
}

// vrfProofFromBytes reverses vrfProofBytes: 128 zero bytes decode to a
// nil proof, matching the pre-genesis case where no next-seed proof has
// been published yet.
func vrfProofFromBytes(buf []byte) *crypto.VRFProof {
	zero := true
	for _, b := range buf {
		if b != 0 {
			zero = false
			break
		}
	}
	if zero {
		return nil
	}
	return &crypto.VRFProof{
		GammaX: new(big.Int).SetBytes(buf[0:32]),
		GammaY: new(big.Int).SetBytes(buf[32:64]),
		C:      new(big.Int).SetBytes(buf[64:96]),
		S:      new(big.Int).SetBytes(buf[96:128]),
	}
}

// battlePublicInputsBytes concatenates BattlePublicInputs' eleven fixed
// 32-byte fields in schema order.
func battlePublicInputsBytes(in proofs.BattlePublicInputs) []byte {
	out := make([]byte, 0, battlePublicInputsByteLen)
	for _, f := range [][32]byte{
		in.CommitmentA, in.CommitmentB, in.TournamentSeed, in.WinnerID,
		in.FinalEnergyA, in.FinalEnergyB, in.MIIAB, in.MIIBA,
		in.TEDAB, in.TEDBA, in.SeedHash,
	} {
		out = append(out, f[:]...)
	}
	return out
}

func battlePublicInputsFromBytes(buf []byte) proofs.BattlePublicInputs {
	var in proofs.BattlePublicInputs
	fields := []*[32]byte{
		&in.CommitmentA, &in.CommitmentB, &in.TournamentSeed, &in.WinnerID,
		&in.FinalEnergyA, &in.FinalEnergyB, &in.MIIAB, &in.MIIBA,
		&in.TEDAB, &in.TEDBA, &in.SeedHash,
	}
	for i, f := range fields {
		copy(f[:], buf[i*32:(i+1)*32])
	}
	return in
}

// proofBytes serializes a Groth16 proof, or 128 zero bytes for nil (the
// bye-pairing case, where BattleProofEntry.IsBye carries no proof).
func proofBytes(p *proofs.Proof) []byte {
	if p == nil {
		return make([]byte, proofByteLen)
	}
	return p.Bytes()
}

func proofFromBytes(buf []byte) (*proofs.Proof, error) {
	zero := true
	for _, b := range buf {
		if b != 0 {
			zero = false
			break
		}
	}
	if zero {
		return nil, nil
	}
	return proofs.ProofFromBytes(buf)
}

// battleProofEntryByteLen is BattleProofEntry's fixed encoded size:
// Winner, the proof, its public inputs, and the IsBye flag are all
// fixed-size, so BattleProofEntry needs no offset table.
const battleProofEntryByteLen = types.AddressLength + proofByteLen + battlePublicInputsByteLen + 1

// marshalBattleProofEntry encodes one bracket pairing's outcome.
func marshalBattleProofEntry(e BattleProofEntry) []byte {
	out := make([]byte, 0, battleProofEntryByteLen)
	out = append(out, e.Winner[:]...)
	out = append(out, proofBytes(e.Proof)...)
	out = append(out, battlePublicInputsBytes(e.Inputs)...)
	if e.IsBye {
		out = append(out, 1)
	} else {
		out = append(out, 0)
	}
	return out
}

func unmarshalBattleProofEntry(buf []byte) (BattleProofEntry, error) {
	if len(buf) != battleProofEntryByteLen {
		return BattleProofEntry{}, ssz.ErrSize
	}
	var e BattleProofEntry
	pos := 0
	e.Winner = types.BytesToAddress(buf[pos : pos+types.AddressLength])
	pos += types.AddressLength
	proof, err := proofFromBytes(buf[pos : pos+proofByteLen])
	if err != nil {
		return BattleProofEntry{}, err
	}
	e.Proof = proof
	pos += proofByteLen
	e.Inputs = battlePublicInputsFromBytes(buf[pos : pos+battlePublicInputsByteLen])
	pos += battlePublicInputsByteLen
	e.IsBye = buf[pos] == 1
	return e, nil
}

// transactionFixedSizes lists From, To, Amount, Nonce, with 0 marking
// the trailing variable Signature field.
var transactionFixedSizes = []int{types.AddressLength, types.AddressLength, 32, 8, 0}

// SizeSSZ returns the encoded size of tx, satisfying ssz.Marshaler.
func (tx *Transaction) SizeSSZ() int {
	return types.AddressLength*2 + 32 + 8 + ssz.BytesPerLengthOffset + len(tx.Signature)
}

// MarshalSSZ encodes a Transaction.
func (tx *Transaction) MarshalSSZ() ([]byte, error) {
	var amountBuf [32]byte
	if tx.Amount != nil {
		b := tx.Amount.Bytes()
		copy(amountBuf[32-len(b):], b)
	}
	fixed := [][]byte{
		ssz.MarshalByteVector(tx.From[:]),
		ssz.MarshalByteVector(tx.To[:]),
		ssz.MarshalByteVector(amountBuf[:]),
		ssz.MarshalUint64(tx.Nonce),
		nil,
	}
	return ssz.MarshalVariableContainer(fixed, [][]byte{tx.Signature}, []int{4}), nil
}

// UnmarshalSSZ decodes a Transaction encoded by MarshalSSZ.
func (tx *Transaction) UnmarshalSSZ(data []byte) error {
	fields, err := ssz.UnmarshalVariableContainer(data, len(transactionFixedSizes), transactionFixedSizes)
	if err != nil {
		return err
	}
	nonce, err := ssz.UnmarshalUint64(fields[3])
	if err != nil {
		return err
	}
	tx.From = types.BytesToAddress(fields[0])
	tx.To = types.BytesToAddress(fields[1])
	tx.Amount = new(big.Int).SetBytes(fields[2])
	tx.Nonce = nonce
	tx.Signature = fields[4]
	return nil
}

// blockFixedSizes marks the header, commitments, battle proofs, and
// transactions variable-size: the header carries variable subfields,
// commitments and transactions are lists of variable-size items, and
// battle proofs is a list whose own byte length (not element count) must
// travel via offset even though its elements are fixed-size. The
// state-transition proof and its public inputs are fixed-size slots.
var blockFixedSizes = []int{0, 0, 0, proofByteLen, stateTransitionPublicInputsByteLen, 0}

// SizeSSZ returns the encoded size of b, satisfying ssz.Marshaler.
func (b *Block) SizeSSZ() int {
	data, _ := b.MarshalSSZ()
	return len(data)
}

// MarshalSSZ encodes a Block for network transport and persistence.
func (b *Block) MarshalSSZ() ([]byte, error) {
	headerBytes, err := b.Header.MarshalSSZ()
	if err != nil {
		return nil, err
	}

	commitElems := make([][]byte, len(b.AcceptedCommitments))
	for i := range b.AcceptedCommitments {
		cb, err := b.AcceptedCommitments[i].MarshalSSZ()
		if err != nil {
			return nil, err
		}
		commitElems[i] = cb
	}
	commitBytes := ssz.MarshalVariableList(commitElems)

	battleElems := make([][]byte, len(b.BattleProofs))
	for i, e := range b.BattleProofs {
		battleElems[i] = marshalBattleProofEntry(e)
	}
	battleBytes := ssz.MarshalList(battleElems)

	txElems := make([][]byte, len(b.Transactions))
	for i := range b.Transactions {
		tb, err := b.Transactions[i].MarshalSSZ()
		if err != nil {
			return nil, err
		}
		txElems[i] = tb
	}
	txBytes := ssz.MarshalVariableList(txElems)

	fixed := [][]byte{
		nil,
		nil,
		nil,
		proofBytes(b.StateTransitionProof),
		battlePublicInputsBytesST(b.StateTransitionInputs),
		nil,
	}
	variable := [][]byte{headerBytes, commitBytes, battleBytes, txBytes}
	return ssz.MarshalVariableContainer(fixed, variable, []int{0, 1, 2, 5}), nil
}

// UnmarshalSSZ decodes a Block encoded by MarshalSSZ.
func (b *Block) UnmarshalSSZ(data []byte) error {
	fields, err := ssz.UnmarshalVariableContainer(data, len(blockFixedSizes), blockFixedSizes)
	if err != nil {
		return err
	}

	header := &Header{}
	if err := header.UnmarshalSSZ(fields[0]); err != nil {
		return err
	}
	b.Header = header

	commitElems, err := ssz.UnmarshalVariableList(fields[1])
	if err != nil {
		return err
	}
	commits := make([]tournament.CommitMessage, len(commitElems))
	for i, ce := range commitElems {
		if err := commits[i].UnmarshalSSZ(ce); err != nil {
			return err
		}
	}
	b.AcceptedCommitments = commits

	battleElems, err := ssz.UnmarshalList(fields[2], battleProofEntryByteLen)
	if err != nil {
		return err
	}
	battles := make([]BattleProofEntry, len(battleElems))
	for i, be := range battleElems {
		entry, err := unmarshalBattleProofEntry(be)
		if err != nil {
			return err
		}
		battles[i] = entry
	}
	b.BattleProofs = battles

	proof, err := proofFromBytes(fields[3])
	if err != nil {
		return err
	}
	b.StateTransitionProof = proof
	b.StateTransitionInputs = stateTransitionPublicInputsFromBytes(fields[4])

	txElems, err := ssz.UnmarshalVariableList(fields[5])
	if err != nil {
		return err
	}
	txs := make([]Transaction, len(txElems))
	for i, te := range txElems {
		if err := txs[i].UnmarshalSSZ(te); err != nil {
			return err
		}
	}
	b.Transactions = txs
	return nil
}

func battlePublicInputsBytesST(in proofs.StateTransitionPublicInputs) []byte {
	out := make([]byte, 0, stateTransitionPublicInputsByteLen)
	out = append(out, in.OldRoot[:]...)
	out = append(out, in.NewRoot[:]...)
	out = append(out, in.Nullifier[:]...)
	out = append(out, in.Commitment[:]...)
	return out
}

func stateTransitionPublicInputsFromBytes(buf []byte) proofs.StateTransitionPublicInputs {
	var in proofs.StateTransitionPublicInputs
	copy(in.OldRoot[:], buf[0:32])
	copy(in.NewRoot[:], buf[32:64])
	copy(in.Nullifier[:], buf[64:96])
	copy(in.Commitment[:], buf[96:128])
	return in
}
