// snapshot.go computes M_h, the set of tournament-eligible miners at
// height h. Adapted from validator_set.go active-set
// filtering (ActiveIndicesAt), generalized from a single stake-threshold
// gate to the spec's triple gate: active bond, bond >= BOND_MIN, and
// EBSL eligibility (itself folding in the permanent-ban check).
package tournament

import (
	"math/big"
	"sort"

	"github.com/glider-chain/glider/core/types"
	"github.com/glider-chain/glider/params"
	"github.com/glider-chain/glider/state"
	"github.com/glider-chain/glider/trust"
)

// BondLookup is the read-only view snapshot.go needs into the bond store.
type BondLookup interface {
	GetBond(miner types.Address) (state.Bond, bool)
}

// Snapshot computes M_h: miners with an active bond of at least
// params.BondMin that are EBSL-eligible and not permanently banned.
// candidates is every address known to have ever bonded; the result is
// canonically ordered by address.
func Snapshot(candidates []types.Address, bonds BondLookup, trustEngine *trust.Engine) []types.Address {
	min := new(big.Int).SetUint64(params.BondMin)

	eligible := make([]types.Address, 0, len(candidates))
	for _, m := range candidates {
		bond, ok := bonds.GetBond(m)
		if !ok {
			continue
		}
		if bond.Status != state.BondActive {
			continue
		}
		if bond.Amount.Cmp(min) < 0 {
			continue
		}
		if !trustEngine.Eligible(m) {
			continue
		}
		eligible = append(eligible, m)
	}

	sort.Slice(eligible, func(i, j int) bool { return lessAddress(eligible[i], eligible[j]) })
	return eligible
}

func lessAddress(a, b types.Address) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// Contains reports whether addr is a member of the canonically-ordered
// eligible set m.
func Contains(m []types.Address, addr types.Address) bool {
	i := sort.Search(len(m), func(i int) bool { return !lessAddress(m[i], addr) })
	return i < len(m) && m[i] == addr
}
