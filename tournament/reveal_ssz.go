package tournament

import (
	"github.com/glider-chain/glider/core/types"
	"github.com/glider-chain/glider/ssz"
)

// SizeSSZ returns the encoded size of r, satisfying ssz.Marshaler.
func (r *RevealMessage) SizeSSZ() int {
	return types.AddressLength + 8 + 8 + 8 + 8 + len(r.Nonce) + ssz.BytesPerLengthOffset + len(r.Pattern.Cells)
}

// MarshalSSZ encodes a RevealMessage. Pattern.Cells is the only
// variable-length field; Width, Height, X, and Y are carried as fixed
// 8-byte fields alongside it.
func (r *RevealMessage) MarshalSSZ() ([]byte, error) {
	fixed := [][]byte{
		ssz.MarshalByteVector(r.Miner[:]),
		ssz.MarshalUint64(uint64(int64(r.Pattern.Width))),
		ssz.MarshalUint64(uint64(int64(r.Pattern.Height))),
		ssz.MarshalUint64(uint64(int64(r.Spawn.X))),
		ssz.MarshalUint64(uint64(int64(r.Spawn.Y))),
		ssz.MarshalByteVector(r.Nonce[:]),
		nil,
	}
	variable := [][]byte{ssz.MarshalByteList(r.Pattern.Cells)}
	return ssz.MarshalVariableContainer(fixed, variable, []int{6}), nil
}

// UnmarshalSSZ decodes a RevealMessage encoded by MarshalSSZ.
func (r *RevealMessage) UnmarshalSSZ(data []byte) error {
	fields, err := ssz.UnmarshalVariableContainer(data, 7, []int{types.AddressLength, 8, 8, 8, 8, 32, 0})
	if err != nil {
		return err
	}
	width, err := ssz.UnmarshalUint64(fields[1])
	if err != nil {
		return err
	}
	height, err := ssz.UnmarshalUint64(fields[2])
	if err != nil {
		return err
	}
	x, err := ssz.UnmarshalUint64(fields[3])
	if err != nil {
		return err
	}
	y, err := ssz.UnmarshalUint64(fields[4])
	if err != nil {
		return err
	}

	r.Miner = types.BytesToAddress(fields[0])
	r.Pattern.Width = int(int64(width))
	r.Pattern.Height = int(int64(height))
	r.Spawn.X = int(int64(x))
	r.Spawn.Y = int(int64(y))
	copy(r.Nonce[:], fields[5])
	r.Pattern.Cells = fields[6]
	return nil
}
