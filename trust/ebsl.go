// Package trust implements the Evidence-Based Subjective Logic (EBSL)
// reputation engine that gates tournament eligibility and drives bond
// slashing. Every miner carries two saturating evidence counters
// (positive r, negative s); the subjective-logic opinion triple (b, d, u)
// and the scalar trust score are derived readouts, never stored directly.
package trust

import (
	"sync"

	"github.com/glider-chain/glider/core/types"
	"github.com/glider-chain/glider/params"
)

// Opinion is the subjective-logic belief/disbelief/uncertainty triple;
// b + d + u always sums to 1.0.
type Opinion struct {
	Belief float64
	Disbelief float64
	Uncertainty float64
}

// EvidenceCounters holds the raw positive/negative evidence weights for one
// miner, saturating at u64 max and never reset except by decay.
type EvidenceCounters struct {
	Positive uint64 // r
	Negative uint64 // s
}

// minerRecord holds a miner's evidence counters and ban flag. banned
// marks a miner as permanently ineligible regardless of any future
// evidence or bond, set by FullAndBan slashing or by trust collapsing to
// TrustKill.
type minerRecord struct {
	counters EvidenceCounters
	banned bool
}

// Engine tracks evidence counters for every known miner. All operations
// are total: EBSL arithmetic never errors ( failure model).
type Engine struct {
	mu sync.RWMutex
	records map[types.Address]*minerRecord
}

// NewEngine creates an empty trust engine.
func NewEngine() *Engine {
	return &Engine{records: make(map[types.Address]*minerRecord)}
}

func (e *Engine) recordFor(miner types.Address) *minerRecord {
	rec, ok := e.records[miner]
	if !ok {
		rec = &minerRecord{}
		e.records[miner] = rec
	}
	return rec
}

// RecordPositive adds weight to a miner's positive evidence counter,
// saturating at u64::MAX.
func (e *Engine) RecordPositive(miner types.Address, weight uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	rec := e.recordFor(miner)
	rec.counters.Positive = saturatingAdd(rec.counters.Positive, weight)
}

// RecordNegative adds weight to a miner's negative evidence counter,
// saturating at u64::MAX.
func (e *Engine) RecordNegative(miner types.Address, weight uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	rec := e.recordFor(miner)
	rec.counters.Negative = saturatingAdd(rec.counters.Negative, weight)
}

// opinion computes the subjective-logic triple for raw counters with
// K = params.EBSLK.
func opinion(c EvidenceCounters) Opinion {
	r, s := float64(c.Positive), float64(c.Negative)
	denom := r + s + params.EBSLK
	return Opinion{
		Belief: r / denom,
		Disbelief: s / denom,
		Uncertainty: params.EBSLK / denom,
	}
}

// Trust returns the scalar trust score for a miner: T = b + alpha*u.
// Unknown miners have zero evidence, giving b=0, u=1, T=alpha.
func (e *Engine) Trust(miner types.Address) float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	rec, ok := e.records[miner]
	if !ok {
		op := opinion(EvidenceCounters{})
		return op.Belief + params.EBSLAlpha*op.Uncertainty
	}
	op := opinion(rec.counters)
	return op.Belief + params.EBSLAlpha*op.Uncertainty
}

// Eligible reports whether a miner currently clears the tournament
// eligibility gate: never banned, and Trust >= params.TrustMin.
func (e *Engine) Eligible(miner types.Address) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	rec, ok := e.records[miner]
	if ok && rec.banned {
		return false
	}
	var trust float64
	if !ok {
		op := opinion(EvidenceCounters{})
		trust = op.Belief + params.EBSLAlpha*op.Uncertainty
	} else {
		op := opinion(rec.counters)
		trust = op.Belief + params.EBSLAlpha*op.Uncertainty
	}
	return trust >= params.TrustMin
}

// Clone returns a deep copy of the engine's evidence records.
func (e *Engine) Clone() *Engine {
	e.mu.RLock()
	defer e.mu.RUnlock()
	records := make(map[types.Address]*minerRecord, len(e.records))
	for addr, rec := range e.records {
		cp := *rec
		records[addr] = &cp
	}
	return &Engine{records: records}
}

// Banned reports whether a miner is permanently ineligible.
func (e *Engine) Banned(miner types.Address) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	rec, ok := e.records[miner]
	return ok && rec.banned
}

// Ban permanently revokes a miner's eligibility, regardless of future
// evidence or bond postings.
func (e *Engine) Ban(miner types.Address) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.recordFor(miner).banned = true
}

// DecayEpoch applies the asymmetric per-epoch decay to every tracked
// miner: positive evidence decays roughly 10x faster than negative.
// Trust at or below TrustKill after decay triggers a permanent ban.
func (e *Engine) DecayEpoch() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, rec := range e.records {
		rec.counters.Positive = rec.counters.Positive * params.PositiveDecayNum / params.PositiveDecayDen
		rec.counters.Negative = rec.counters.Negative * params.NegativeDecayNum / params.NegativeDecayDen

		op := opinion(rec.counters)
		trust := op.Belief + params.EBSLAlpha*op.Uncertainty
		if trust <= params.TrustKill {
			rec.banned = true
		}
	}
}

// saturatingAdd adds b to a, clamping at u64::MAX instead of wrapping.
func saturatingAdd(a, b uint64) uint64 {
	sum := a + b
	if sum < a {
		return ^uint64(0)
	}
	return sum
}
