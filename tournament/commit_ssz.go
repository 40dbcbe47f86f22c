package tournament

import (
	"github.com/glider-chain/glider/core/types"
	"github.com/glider-chain/glider/crypto"
	"github.com/glider-chain/glider/ssz"
)

// SizeSSZ returns the encoded size of m, satisfying ssz.Marshaler.
func (m *CommitMessage) SizeSSZ() int {
	ringBytes := len(m.Ring) * types.AddressLength
	ringSigBytes := 0
	if m.RingSig != nil {
		ringSigBytes = len(m.RingSig.Bytes())
	}
	return types.AddressLength + types.HashLength + types.HashLength +
		2*ssz.BytesPerLengthOffset + ringBytes + ringSigBytes
}

// MarshalSSZ encodes a CommitMessage for network transport and
// persistence. Ring is a variable-length list of fixed-size addresses;
// RingSig is an opaque variable-length blob (crypto.RingSignature has
// no fixed size, since ring membership is itself variable).
func (m *CommitMessage) MarshalSSZ() ([]byte, error) {
	ringElems := make([][]byte, len(m.Ring))
	for i, addr := range m.Ring {
		ringElems[i] = ssz.MarshalByteVector(addr[:])
	}
	ringBytes := ssz.MarshalList(ringElems)

	var ringSigBytes []byte
	if m.RingSig != nil {
		ringSigBytes = m.RingSig.Bytes()
	}

	fixed := [][]byte{
		ssz.MarshalByteVector(m.Miner[:]),
		ssz.MarshalByteVector(m.Commitment[:]),
		ssz.MarshalByteVector(m.KeyImage[:]),
		nil,
		nil,
	}
	variable := [][]byte{ringBytes, ringSigBytes}
	return ssz.MarshalVariableContainer(fixed, variable, []int{3, 4}), nil
}

// UnmarshalSSZ decodes a CommitMessage encoded by MarshalSSZ.
func (m *CommitMessage) UnmarshalSSZ(data []byte) error {
	fields, err := ssz.UnmarshalVariableContainer(data, 5, []int{types.AddressLength, types.HashLength, types.HashLength, 0, 0})
	if err != nil {
		return err
	}
	m.Miner = types.BytesToAddress(fields[0])
	m.Commitment = types.BytesToHash(fields[1])
	m.KeyImage = types.BytesToHash(fields[2])

	ringElems, err := ssz.UnmarshalList(fields[3], types.AddressLength)
	if err != nil {
		return err
	}
	ring := make([]types.Address, len(ringElems))
	for i, e := range ringElems {
		ring[i] = types.BytesToAddress(e)
	}
	m.Ring = ring

	if len(fields[4]) == 0 {
		m.RingSig = nil
		return nil
	}
	sig, err := crypto.RingSignatureFromBytes(fields[4])
	if err != nil {
		return err
	}
	m.RingSig = sig
	return nil
}
