// Package proofs implements the chain's ZK verification contract: Groth16
// proof verification over BN254 for the two fixed circuits (battle outcome,
// state transition), batch verification across many proofs at once, and the
// genesis-pinned trusted setup that backs verify_block_proofs.
package proofs

import "github.com/glider-chain/glider/core/types"

// SubmittedProof is a single proof as it arrives off the wire, before
// decoding into a Proof + typed public inputs for verification.
type SubmittedProof struct {
	Kind      CircuitKind
	BlockHash types.Hash
	Data      []byte // fixed-size compressed Groth16 proof (see Proof.Bytes)
	PublicIn  []byte // public input vector, 32 bytes per field element
}

// AggregatedProof bundles an ordered sequence of submitted proofs with the
// H_b commitment digest over them.
type AggregatedProof struct {
	Proofs        []SubmittedProof
	AggregateRoot types.Hash
	Valid         bool
}
