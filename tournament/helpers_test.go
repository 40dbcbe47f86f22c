package tournament

import "github.com/glider-chain/glider/core/types"

// addrN builds a deterministic, distinct test address from a small integer.
func addrN(n byte) types.Address {
	var a types.Address
	a[len(a)-1] = n
	return a
}
