// round.go derives a finality round's timeout deadline from the parent
// block's timestamp, mirroring tournament.PhaseDeadline's genesis-relative
// deadline derivation (itself adapted from phase_timer.go).
package finality

import "github.com/glider-chain/glider/params"

// RoundDeadline computes the wall-clock timestamp by which some block
// must reach Precommit supermajority at the given round, counting from
// parentTimestamp. Each round after the first adds another full
// params.RoundTimeoutSeconds budget.
func RoundDeadline(parentTimestamp uint64, round uint64) uint64 {
	return parentTimestamp + (round+1)*params.RoundTimeoutSeconds
}

// Expired reports whether now has passed the round's deadline, meaning
// the round should advance without any block having reached Precommit.
func Expired(now, deadline uint64) bool {
	return now > deadline
}
