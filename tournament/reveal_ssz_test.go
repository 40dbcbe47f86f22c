package tournament

import (
	"bytes"
	"testing"

	"github.com/glider-chain/glider/ca"
)

func TestRevealMessageSSZRoundTrip(t *testing.T) {
	reveal := RevealMessage{
		Miner:   addrN(1),
		Pattern: testPattern(),
		Spawn:   ca.Spawn{X: 4, Y: 4},
		Nonce:   [32]byte{0x01, 0x02, 0x03},
	}

	data, err := reveal.MarshalSSZ()
	if err != nil {
		t.Fatalf("MarshalSSZ: %v", err)
	}
	if len(data) != reveal.SizeSSZ() {
		t.Fatalf("SizeSSZ mismatch: got %d, encoded %d", reveal.SizeSSZ(), len(data))
	}

	var decoded RevealMessage
	if err := decoded.UnmarshalSSZ(data); err != nil {
		t.Fatalf("UnmarshalSSZ: %v", err)
	}

	if decoded.Miner != reveal.Miner || decoded.Spawn != reveal.Spawn || decoded.Nonce != reveal.Nonce {
		t.Fatalf("decoded fields mismatch: got %+v, want %+v", decoded, reveal)
	}
	if decoded.Pattern.Width != reveal.Pattern.Width || decoded.Pattern.Height != reveal.Pattern.Height {
		t.Fatalf("decoded pattern dims mismatch: got %+v, want %+v", decoded.Pattern, reveal.Pattern)
	}
	if !bytes.Equal(decoded.Pattern.Cells, reveal.Pattern.Cells) {
		t.Errorf("Cells mismatch: got %v, want %v", decoded.Pattern.Cells, reveal.Pattern.Cells)
	}
	if decoded.CommitmentHash() != reveal.CommitmentHash() {
		t.Error("decoded reveal's commitment hash should match the original")
	}
}
