package tournament

import (
	"testing"

	"github.com/glider-chain/glider/ca"
	"github.com/glider-chain/glider/core/types"
	"github.com/glider-chain/glider/params"
	"github.com/glider-chain/glider/trust"
)

func TestDispatchPairingByeAdvancesWithoutBattle(t *testing.T) {
	a := CommitMessage{Miner: addrN(1)}
	pairing := Pairing{A: &a}

	revealLedger := NewRevealLedger(params.TestGridSize)
	trustEngine := trust.NewEngine()

	result := DispatchPairing(pairing, revealLedger, params.TestGridSize, params.TestBattleSteps, [32]byte{1}, ca.DefaultEvolveConfig(), trustEngine)
	if !result.ByeAdvance || result.Winner != a.Miner {
		t.Fatalf("expected bye advance for sole participant, got %+v", result)
	}
	if result.Outcome != nil {
		t.Error("bye should not run a battle")
	}
}

func TestDispatchPairingDoubleForfeitProducesNoWinner(t *testing.T) {
	a := CommitMessage{Miner: addrN(1)}
	b := CommitMessage{Miner: addrN(2)}
	pairing := Pairing{A: &a, B: &b}

	revealLedger := NewRevealLedger(params.TestGridSize) // neither side revealed
	trustEngine := trust.NewEngine()

	result := DispatchPairing(pairing, revealLedger, params.TestGridSize, params.TestBattleSteps, [32]byte{1}, ca.DefaultEvolveConfig(), trustEngine)
	if result.Winner != (types.Address{}) {
		t.Fatalf("expected no winner on double forfeit, got %v", result.Winner)
	}
}

func TestDispatchPairingSingleForfeitAdvancesReveal(t *testing.T) {
	a := CommitMessage{Miner: addrN(1)}
	b := CommitMessage{Miner: addrN(2)}
	pairing := Pairing{A: &a, B: &b}

	revealLedger := NewRevealLedger(params.TestGridSize)
	revealA := RevealMessage{Miner: a.Miner, Pattern: testPattern(), Spawn: ca.Spawn{X: 1, Y: 1}}
	a.Commitment = revealA.CommitmentHash()
	if err := revealLedger.Submit(a, revealA); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	trustEngine := trust.NewEngine()
	result := DispatchPairing(pairing, revealLedger, params.TestGridSize, params.TestBattleSteps, [32]byte{1}, ca.DefaultEvolveConfig(), trustEngine)
	if result.Winner != a.Miner {
		t.Fatalf("expected the sole revealer to advance, got %v", result.Winner)
	}
}

func TestChampionRequiresUniqueWinner(t *testing.T) {
	w := addrN(1)
	results := []MatchResult{{Winner: w}, {}}
	champ, ok := Champion(results)
	if !ok || champ != w {
		t.Fatalf("expected unique champion %v, got %v ok=%v", w, champ, ok)
	}
}

func TestChampionRejectsMultipleWinners(t *testing.T) {
	results := []MatchResult{{Winner: addrN(1)}, {Winner: addrN(2)}}
	if _, ok := Champion(results); ok {
		t.Error("expected no unique champion when multiple winners are present")
	}
}
