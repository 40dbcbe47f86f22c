// slash.go classifies evidence into a bond-slashing action. Adapted from
// proposer_slashing.go / attester_slashing.go penalty-
// quotient pattern (effective_balance / quotient), generalized from one
// fixed quotient to the spec's named evidence kinds, each a genesis
// constant rather than an inline literal so a deployment can retune
// penalty fractions without a code change.
package trust

import "github.com/glider-chain/glider/params"

// EvidenceKind names the kind of fault being classified.
type EvidenceKind int

const (
	// EvidenceNone carries no slashable fault.
	EvidenceNone EvidenceKind = iota
	// EvidenceMissedReveal is a committed-but-never-revealed commitment.
	EvidenceMissedReveal
	// EvidenceInvalidProof is a battle or state-transition proof that
	// failed verification.
	EvidenceInvalidProof
	// EvidenceEquivocation is a double-commit or double-vote using the
	// same key image / validator key.
	EvidenceEquivocation
	// EvidenceGenericFault covers any other fully-slashable fault that
	// does not also carry a permanent ban.
	EvidenceGenericFault
)

// SlashActionKind distinguishes the magnitude of a slash action.
type SlashActionKind int

const (
	ActionNone SlashActionKind = iota
	ActionPartial
	ActionFull
	ActionFullAndBan
)

// SlashAction is the classifier's output: an action kind plus, for
// Partial, the fraction of the active bond to burn.
type SlashAction struct {
	Kind SlashActionKind
	Fraction float64 // only meaningful when Kind == ActionPartial
}

// SlashClassify maps an evidence kind to its slash action. Pure and total:
// every EvidenceKind maps to exactly one action.
func SlashClassify(kind EvidenceKind) SlashAction {
	switch kind {
	case EvidenceMissedReveal:
		return SlashAction{Kind: ActionPartial, Fraction: params.SlashMissedRevealFraction}
	case EvidenceInvalidProof:
		return SlashAction{Kind: ActionPartial, Fraction: params.SlashInvalidProofFraction}
	case EvidenceEquivocation:
		return SlashAction{Kind: ActionFullAndBan}
	case EvidenceGenericFault:
		return SlashAction{Kind: ActionFull}
	default:
		return SlashAction{Kind: ActionNone}
	}
}
