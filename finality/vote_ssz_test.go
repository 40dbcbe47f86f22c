package finality

import (
	"bytes"
	"testing"

	"github.com/glider-chain/glider/core/types"
)

func TestVoteSSZRoundTrip(t *testing.T) {
	v := newTestVoter(t)
	vote := v.vote(t, Precommit, 42, 3, types.HexToHash("0x01"))

	data, err := vote.MarshalSSZ()
	if err != nil {
		t.Fatalf("MarshalSSZ: %v", err)
	}
	if len(data) != vote.SizeSSZ() {
		t.Fatalf("SizeSSZ mismatch: got %d, encoded %d", vote.SizeSSZ(), len(data))
	}

	var decoded Vote
	if err := decoded.UnmarshalSSZ(data); err != nil {
		t.Fatalf("UnmarshalSSZ: %v", err)
	}

	if decoded.Kind != vote.Kind || decoded.Height != vote.Height || decoded.Round != vote.Round {
		t.Fatalf("decoded fields mismatch: got %+v, want %+v", decoded, vote)
	}
	if decoded.BlockHash != vote.BlockHash || decoded.Voter != vote.Voter {
		t.Fatalf("decoded hash/voter mismatch: got %+v, want %+v", decoded, vote)
	}
	if !bytes.Equal(decoded.VoterKey, vote.VoterKey) {
		t.Errorf("VoterKey mismatch: got %x, want %x", decoded.VoterKey, vote.VoterKey)
	}
	if !bytes.Equal(decoded.Signature, vote.Signature) {
		t.Errorf("Signature mismatch: got %x, want %x", decoded.Signature, vote.Signature)
	}
	if err := decoded.Verify(); err != nil {
		t.Errorf("decoded vote failed to verify: %v", err)
	}
}
