package finality

import (
	"github.com/glider-chain/glider/core/types"
	"github.com/glider-chain/glider/ssz"
)

// SizeSSZ returns the encoded size of v, satisfying ssz.Marshaler.
func (v *Vote) SizeSSZ() int {
	return 1 + 8 + 8 + types.HashLength + types.AddressLength +
		2*ssz.BytesPerLengthOffset + len(v.VoterKey) + len(v.Signature)
}

// MarshalSSZ encodes a Vote for network transport and storage, keeping
// VoterKey and Signature as variable-length trailing fields since their
// length depends on the key/curve in use.
func (v *Vote) MarshalSSZ() ([]byte, error) {
	fixed := [][]byte{
		ssz.MarshalUint8(uint8(v.Kind)),
		ssz.MarshalUint64(v.Height),
		ssz.MarshalUint64(v.Round),
		ssz.MarshalByteVector(v.BlockHash[:]),
		ssz.MarshalByteVector(v.Voter[:]),
		nil,
		nil,
	}
	variable := [][]byte{v.VoterKey, v.Signature}
	return ssz.MarshalVariableContainer(fixed, variable, []int{5, 6}), nil
}

// UnmarshalSSZ decodes a Vote encoded by MarshalSSZ.
func (v *Vote) UnmarshalSSZ(data []byte) error {
	fields, err := ssz.UnmarshalVariableContainer(data, 7, []int{1, 8, 8, types.HashLength, types.AddressLength, 0, 0})
	if err != nil {
		return err
	}
	kind, err := ssz.UnmarshalUint8(fields[0])
	if err != nil {
		return err
	}
	height, err := ssz.UnmarshalUint64(fields[1])
	if err != nil {
		return err
	}
	round, err := ssz.UnmarshalUint64(fields[2])
	if err != nil {
		return err
	}
	v.Kind = Kind(kind)
	v.Height = height
	v.Round = round
	v.BlockHash = types.BytesToHash(fields[3])
	v.Voter = types.BytesToAddress(fields[4])
	v.VoterKey = fields[5]
	v.Signature = fields[6]
	return nil
}
