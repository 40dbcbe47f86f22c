// orchestrator.go drives one height's tournament from Commit through
// Complete on a single goroutine, serializing every inbound commit/reveal
// submission over a bounded command channel so phase state never needs a
// mutex. Adapted from dist_coordinator.go round lifecycle
// (registration window -> deadline -> finalize), generalized from
// mutex-guarded round state to channel-serialized actor state per
// concurrency model, and from committee_selection.go's
// deterministic-shuffle discipline (see pairing.go) for the Pair phase.
package tournament

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"time"

	"github.com/glider-chain/glider/ca"
	"github.com/glider-chain/glider/core/types"
	"github.com/glider-chain/glider/crypto"
	"github.com/glider-chain/glider/log"
	"github.com/glider-chain/glider/metrics"
	"github.com/glider-chain/glider/params"
	"github.com/glider-chain/glider/trust"
)

var logger = log.Default().Module("tournament")

// Orchestrator errors.
var (
	ErrOrchestratorWrongPhase = errors.New("tournament: command not valid in current phase")
	ErrOrchestratorNoCommits = errors.New("tournament: no eligible commitments accepted this height")
	ErrOrchestratorNoChampion = errors.New("tournament: no unique champion, chain stalls at this height")
	ErrOrchestratorMinerUnknown = errors.New("tournament: reveal from miner with no accepted commitment")
)

// Config bundles everything one height's tournament run needs.
type Config struct {
	Height uint64
	ParentHash types.Hash
	ParentTimestamp uint64
	Candidates []types.Address
	Bonds BondLookup
	Trust *trust.Engine
	Genesis *params.Genesis
	GridSize int
	BattleSteps int
	EvolveConfig ca.EvolveConfig
	// ProposerPub verifies the VRF seed proof published by the previous
	// block's proposer.
	ProposerPub *ecdsa.PublicKey
	// Now returns the current wall-clock time; overridable for tests.
	// Defaults to time.Now.
	Now func() time.Time
}

// Result is the terminal outcome of a tournament run at one height:
// either a champion was elected, or the height aborted with no valid
// block to produce, per "chain stalls rather than producing
// an invalid block" rule.
type Result struct {
	Height uint64
	Phase Phase
	Champion types.Address
	Ok bool
	Matches []MatchResult
	Forfeited []types.Address
	Err error
}

type cmdKind uint8

const (
	cmdSubmitCommit cmdKind = iota
	cmdSubmitSeed
	cmdSubmitReveal
)

type command struct {
	kind cmdKind
	reply chan error
	commit CommitMessage

	seedProof *crypto.VRFProof

	reveal RevealMessage
}

// Orchestrator runs exactly one height's tournament. It is single-use:
// call Run once, from one goroutine; SubmitCommit/SubmitSeed/SubmitReveal
// may be called concurrently from any goroutine up until Run returns.
type Orchestrator struct {
	cfg    Config
	cmds   chan *command
	egress TransportEgress
}

// SetTransportEgress attaches the external broadcaster that accepted
// commit and reveal messages are fanned out through. Nil (the zero
// value) disables broadcast.
func (o *Orchestrator) SetTransportEgress(egress TransportEgress) {
	o.egress = egress
}

// NewOrchestrator prepares an orchestrator for cfg.Height. Call Run to
// drive it; it does nothing until Run is called.
func NewOrchestrator(cfg Config) *Orchestrator {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Orchestrator{cfg: cfg, cmds: make(chan *command, 256)}
}

// SubmitCommit delivers a Commit-phase message to the running orchestrator
// and blocks until it has been accepted or rejected.
func (o *Orchestrator) SubmitCommit(msg CommitMessage) error {
	return o.send(&command{kind: cmdSubmitCommit, commit: msg})
}

// SubmitSeed delivers the previous proposer's published VRF seed proof.
func (o *Orchestrator) SubmitSeed(proof *crypto.VRFProof) error {
	return o.send(&command{kind: cmdSubmitSeed, seedProof: proof})
}

// SubmitReveal delivers a Reveal-phase message.
func (o *Orchestrator) SubmitReveal(msg RevealMessage) error {
	return o.send(&command{kind: cmdSubmitReveal, reveal: msg})
}

func (o *Orchestrator) send(cmd *command) error {
	cmd.reply = make(chan error, 1)
	o.cmds <- cmd
	return <-cmd.reply
}

// Run executes the full Snapshot -> Commit -> Seed -> Pair -> Reveal ->
// Battle -> Complete pipeline for cfg.Height and returns its terminal
// Result. It never returns early on a single bad submission: only a
// context cancellation or a phase deadline aborts the whole height.
func (o *Orchestrator) Run(ctx context.Context) Result {
	metrics.TournamentHeightsRun.Inc()
	timer := metrics.NewTimer(metrics.TournamentRunTime)
	defer func() {
		timer.Stop()
	}()

	eligible := Snapshot(o.cfg.Candidates, o.cfg.Bonds, o.cfg.Trust)
	ledger := NewCommitLedger(eligible, o.cfg.Trust)

	commitDeadline := PhaseDeadline(o.cfg.ParentTimestamp, PhaseCommit, o.cfg.Genesis.CommitBlocks, o.cfg.Genesis.RevealBlocks)
	revealDeadline := PhaseDeadline(o.cfg.ParentTimestamp, PhaseReveal, o.cfg.Genesis.CommitBlocks, o.cfg.Genesis.RevealBlocks)

	var seed [32]byte
	seedSet := false

	if abort, res := o.runWindow(ctx, PhaseCommit, commitDeadline, func(cmd *command) error {
		switch cmd.kind {
		case cmdSubmitCommit:
			if err := ledger.Accept(cmd.commit); err != nil {
				return err
			}
			metrics.TournamentCommitsAccepted.Inc()
			if o.egress != nil {
				o.egress.BroadcastCommit(cmd.commit)
			}
			return nil
		case cmdSubmitSeed:
			s, err := VerifySeed(o.cfg.ProposerPub, o.cfg.ParentHash, o.cfg.Height, cmd.seedProof)
			if err != nil {
				return err
			}
			seed, seedSet = s, true
			return nil
		default:
			return ErrOrchestratorWrongPhase
		}
	}); abort {
		return res
	}

	if !seedSet {
		return o.abort(PhaseSeed, ErrSeedVerifyFailed)
	}

	accepted := ledger.Accepted()
	if len(accepted) == 0 {
		return o.abort(PhaseCommit, ErrOrchestratorNoCommits)
	}

	bracket := BuildBracket(accepted, seed)
	revealLedger := NewRevealLedger(o.cfg.GridSize)

	if abort, res := o.runWindow(ctx, PhaseReveal, revealDeadline, func(cmd *command) error {
		if cmd.kind != cmdSubmitReveal {
			return ErrOrchestratorWrongPhase
		}
		for _, c := range accepted {
			if c.Miner == cmd.reveal.Miner {
				if err := revealLedger.Submit(c, cmd.reveal); err != nil {
					return err
				}
				if o.egress != nil {
					o.egress.BroadcastReveal(cmd.reveal)
				}
				return nil
			}
		}
		return ErrOrchestratorMinerUnknown
	}); abort {
		return res
	}

	forfeited := Forfeited(accepted, revealLedger)
	for _, m := range forfeited {
		o.cfg.Trust.RecordNegative(m, 1)
	}
	metrics.TournamentRevealsForfeited.Add(int64(len(forfeited)))

	results := DispatchBracket(bracket, revealLedger, o.cfg.GridSize, o.cfg.BattleSteps, seed, o.cfg.EvolveConfig, o.cfg.Trust)
	metrics.TournamentBattlesDispatched.Add(int64(len(results)))
	champ, ok := Champion(results)
	if !ok {
		metrics.TournamentStalls.Inc()
		logger.Warn("tournament stalled, no unique champion", "height", o.cfg.Height, "matches", len(results))
		return Result{Height: o.cfg.Height, Phase: PhaseBattle, Matches: results, Forfeited: forfeited, Err: ErrOrchestratorNoChampion}
	}

	metrics.TournamentChampionsElected.Inc()
	logger.Info("tournament champion elected", "height", o.cfg.Height, "champion", champ.Hex())
	return Result{Height: o.cfg.Height, Phase: PhaseComplete, Champion: champ, Ok: true, Matches: results, Forfeited: forfeited}
}

// phaseWindowPollInterval bounds how late a phase may close past its
// deadline in wall-clock terms. It is deliberately small relative to the
// multi-second phase windows it polls, and lets cfg.Now be swapped for a
// deterministic clock in tests without the orchestrator busy-looping.
const phaseWindowPollInterval = 20 * time.Millisecond

// runWindow processes commands against handle until ctx is cancelled or
// deadline (a unix-seconds timestamp, read through cfg.Now) elapses. It
// reports abort=true with a populated Result when the height must stop
// here.
func (o *Orchestrator) runWindow(ctx context.Context, phase Phase, deadline uint64, handle func(*command) error) (abort bool, res Result) {
	if Expired(uint64(o.cfg.Now().Unix()), deadline) {
		return false, Result{}
	}

	ticker := time.NewTicker(phaseWindowPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return true, o.abort(phase, ctx.Err())
		case <-ticker.C:
			if Expired(uint64(o.cfg.Now().Unix()), deadline) {
				return false, Result{}
			}
		case cmd := <-o.cmds:
			cmd.reply <- handle(cmd)
		}
	}
}

func (o *Orchestrator) abort(phase Phase, err error) Result {
	metrics.TournamentStalls.Inc()
	return Result{Height: o.cfg.Height, Phase: phase, Err: err}
}
