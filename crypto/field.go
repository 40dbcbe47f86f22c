package crypto

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// FieldElement is a value in the BN254 scalar field, the field in which
// every ZK-friendly hash (H_f) and circuit public input is expressed.
type FieldElement = fr.Element

// FieldFromBytes reduces a big-endian byte string into the scalar field.
func FieldFromBytes(b []byte) FieldElement {
	var e FieldElement
	e.SetBytes(b)
	return e
}

// FieldFromUint64 lifts a uint64 into the scalar field.
func FieldFromUint64(v uint64) FieldElement {
	var e FieldElement
	e.SetUint64(v)
	return e
}

// FieldBytes returns the canonical 32-byte big-endian encoding of e.
func FieldBytes(e FieldElement) [32]byte {
	return e.Bytes()
}

// FieldEqual reports whether two field elements represent the same value.
func FieldEqual(a, b FieldElement) bool {
	return a.Equal(&b)
}
