// seed.go derives and verifies the tournament pairing seed: the previous
// block's proposer publishes an ECVRF proof over parent_hash||h once the
// commit window closes, and every node re-derives the same seed from it.
// Adapted near-verbatim from vrf_election.go
// ComputeVRFElectionInput/VRFProve/VRFVerify flow (crypto/vrf.go carries
// the actual ECVRF construction this file was originally paired with),
// retargeted from electing a block proposer directly to deriving the
// pairing seed that the tournament itself uses to elect its champion.
package tournament

import (
	"crypto/ecdsa"
	"encoding/binary"
	"errors"

	"github.com/glider-chain/glider/core/types"
	"github.com/glider-chain/glider/crypto"
)

// ErrSeedVerifyFailed is returned when a published VRF proof does not
// verify against the claimed input.
var ErrSeedVerifyFailed = errors.New("tournament: vrf seed proof failed verification")

// VRFInput builds the ECVRF alpha string parent_hash || h.
func VRFInput(parentHash types.Hash, height uint64) []byte {
	var heightBuf [8]byte
	binary.BigEndian.PutUint64(heightBuf[:], height)
	buf := make([]byte, 0, 40)
	buf = append(buf, parentHash[:]...)
	buf = append(buf, heightBuf[:]...)
	return buf
}

// DeriveSeed is run by the previous block's proposer: it produces the
// VRF proof and output for this height's pairing seed.
func DeriveSeed(proposerKey *ecdsa.PrivateKey, parentHash types.Hash, height uint64) (seed [32]byte, proof *crypto.VRFProof, err error) {
	alpha := VRFInput(parentHash, height)
	p, output, err := crypto.VRFProve(proposerKey, alpha)
	if err != nil {
		return seed, nil, err
	}
	copy(seed[:], output)
	return seed, p, nil
}

// VerifySeed re-derives the seed from a published VRF proof, checking it
// against the proposer's public key and the expected input.
func VerifySeed(proposerPub *ecdsa.PublicKey, parentHash types.Hash, height uint64, proof *crypto.VRFProof) (seed [32]byte, err error) {
	alpha := VRFInput(parentHash, height)
	output, err := crypto.VRFVerify(proposerPub, alpha, proof)
	if err != nil {
		return seed, ErrSeedVerifyFailed
	}
	copy(seed[:], output)
	return seed, nil
}
