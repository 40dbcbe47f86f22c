// external.go declares this package's external collaborator contracts:
// the peer-to-peer transport a running round is fed commit/reveal
// messages from and broadcasts its own traffic through. Every contract
// here is a pure behavioral interface with no concrete transport
// implementation.
package tournament

// TransportIngress is the inbound half of the tournament's peer-to-peer
// contract: commit and reveal submission from the network, handed
// straight to the running Orchestrator for the current height.
type TransportIngress interface {
	SubmitCommit(msg CommitMessage) error
	SubmitReveal(msg RevealMessage) error
}

// TransportEgress is the outbound half: commit and reveal messages this
// node originates or re-broadcasts, fire-and-forget, idempotent at the
// receiving peer.
type TransportEgress interface {
	BroadcastCommit(msg CommitMessage)
	BroadcastReveal(msg RevealMessage)
}

// Orchestrator already exposes SubmitCommit/SubmitReveal with exactly
// this signature (see orchestrator.go), so it satisfies TransportIngress
// without any adapter.
var _ TransportIngress = (*Orchestrator)(nil)
