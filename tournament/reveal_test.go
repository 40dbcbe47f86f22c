package tournament

import (
	"testing"

	"github.com/glider-chain/glider/ca"
	"github.com/glider-chain/glider/params"
)

func testPattern() ca.Pattern {
	return ca.Pattern{Width: 2, Height: 2, Cells: []uint8{1, 0, 0, 1}}
}

func TestRevealLedgerAcceptsMatchingReveal(t *testing.T) {
	commit := CommitMessage{Miner: addrN(1)}
	reveal := RevealMessage{Miner: addrN(1), Pattern: testPattern(), Spawn: ca.Spawn{X: 4, Y: 4}}
	commit.Commitment = reveal.CommitmentHash()

	ledger := NewRevealLedger(params.TestGridSize)
	if err := ledger.Submit(commit, reveal); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	got, ok := ledger.Get(addrN(1))
	if !ok {
		t.Fatal("expected reveal to be recorded")
	}
	if got.Spawn != reveal.Spawn {
		t.Errorf("recorded spawn mismatch: %v vs %v", got.Spawn, reveal.Spawn)
	}
}

func TestRevealLedgerRejectsMismatchedCommitment(t *testing.T) {
	commit := CommitMessage{Miner: addrN(1), Commitment: [32]byte{0xff}}
	reveal := RevealMessage{Miner: addrN(1), Pattern: testPattern(), Spawn: ca.Spawn{X: 1, Y: 1}}

	ledger := NewRevealLedger(params.TestGridSize)
	if err := ledger.Submit(commit, reveal); err != ErrRevealCommitmentMismatch {
		t.Fatalf("expected ErrRevealCommitmentMismatch, got %v", err)
	}
}

func TestRevealLedgerRejectsOutOfBoundsSpawn(t *testing.T) {
	reveal := RevealMessage{Miner: addrN(1), Pattern: testPattern(), Spawn: ca.Spawn{X: params.TestGridSize, Y: params.TestGridSize}}
	commit := CommitMessage{Miner: addrN(1), Commitment: reveal.CommitmentHash()}

	ledger := NewRevealLedger(params.TestGridSize)
	if err := ledger.Submit(commit, reveal); err != ca.ErrPatternOutOfBounds {
		t.Fatalf("expected ca.ErrPatternOutOfBounds, got %v", err)
	}
}

func TestRevealLedgerRejectsMalformedDimensions(t *testing.T) {
	pattern := ca.Pattern{Width: 2, Height: 2, Cells: []uint8{1, 0, 0}} // too few cells
	reveal := RevealMessage{Miner: addrN(1), Pattern: pattern, Spawn: ca.Spawn{X: 1, Y: 1}}
	commit := CommitMessage{Miner: addrN(1), Commitment: reveal.CommitmentHash()}

	ledger := NewRevealLedger(params.TestGridSize)
	if err := ledger.Submit(commit, reveal); err != ErrRevealBadPattern {
		t.Fatalf("expected ErrRevealBadPattern, got %v", err)
	}
}

func TestForfeitedReturnsNonRevealedParticipants(t *testing.T) {
	revealed := addrN(1)
	notRevealed := addrN(2)

	commit1 := CommitMessage{Miner: revealed}
	reveal := RevealMessage{Miner: revealed, Pattern: testPattern(), Spawn: ca.Spawn{X: 1, Y: 1}}
	commit1.Commitment = reveal.CommitmentHash()

	commit2 := CommitMessage{Miner: notRevealed, Commitment: [32]byte{0x02}}

	ledger := NewRevealLedger(params.TestGridSize)
	if err := ledger.Submit(commit1, reveal); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	forfeited := Forfeited([]CommitMessage{commit1, commit2}, ledger)
	if len(forfeited) != 1 || forfeited[0] != notRevealed {
		t.Fatalf("expected only %x forfeited, got %v", notRevealed, forfeited)
	}
}
