package tournament

import (
	"testing"

	"github.com/glider-chain/glider/core/types"
	"github.com/glider-chain/glider/crypto"
)

func TestDeriveAndVerifySeedRoundTrip(t *testing.T) {
	priv, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	parent := types.HexToHash("0xaa")

	seed, proof, err := DeriveSeed(priv, parent, 7)
	if err != nil {
		t.Fatalf("DeriveSeed: %v", err)
	}

	verified, err := VerifySeed(&priv.PublicKey, parent, 7, proof)
	if err != nil {
		t.Fatalf("VerifySeed: %v", err)
	}
	if verified != seed {
		t.Errorf("verified seed %x != derived seed %x", verified, seed)
	}
}

func TestVerifySeedRejectsWrongHeight(t *testing.T) {
	priv, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	parent := types.HexToHash("0xbb")

	_, proof, err := DeriveSeed(priv, parent, 7)
	if err != nil {
		t.Fatalf("DeriveSeed: %v", err)
	}

	if _, err := VerifySeed(&priv.PublicKey, parent, 8, proof); err == nil {
		t.Error("expected verification failure for mismatched height")
	}
}

func TestVerifySeedRejectsWrongKey(t *testing.T) {
	priv, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	other, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	parent := types.HexToHash("0xcc")

	_, proof, err := DeriveSeed(priv, parent, 3)
	if err != nil {
		t.Fatalf("DeriveSeed: %v", err)
	}

	if _, err := VerifySeed(&other.PublicKey, parent, 3, proof); err == nil {
		t.Error("expected verification failure for wrong public key")
	}
}

func TestVRFInputEncodesParentAndHeight(t *testing.T) {
	parent := types.HexToHash("0x01")
	a := VRFInput(parent, 1)
	b := VRFInput(parent, 2)
	if len(a) != 40 || len(b) != 40 {
		t.Fatalf("expected 40-byte VRF input, got %d and %d", len(a), len(b))
	}
	if string(a) == string(b) {
		t.Error("VRFInput should differ across heights")
	}
}
