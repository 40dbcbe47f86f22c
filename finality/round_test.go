package finality

import "testing"

func TestRoundDeadlineAdvancesWithRound(t *testing.T) {
	parent := uint64(1000)
	d0 := RoundDeadline(parent, 0)
	d1 := RoundDeadline(parent, 1)
	if d1 <= d0 {
		t.Fatalf("expected round 1's deadline %d to be later than round 0's %d", d1, d0)
	}
	if d1-d0 != 60 {
		t.Errorf("expected each round to add RoundTimeoutSeconds, got delta %d", d1-d0)
	}
}

func TestExpiredComparesAgainstDeadline(t *testing.T) {
	if Expired(100, 200) {
		t.Error("expected now=100 not to have expired a deadline of 200")
	}
	if !Expired(201, 200) {
		t.Error("expected now=201 to have expired a deadline of 200")
	}
}
