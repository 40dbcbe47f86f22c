package chain

import (
	"crypto/ecdsa"

	"github.com/glider-chain/glider/crypto"
	"github.com/glider-chain/glider/state"
)

// NewGenesisBlock builds height 0: no parent, no commitments, signed by
// proposerKey so its VRF public key can seed height 1's tournament
// pairing. genesisState is credited before StateRoot is taken, so every
// node deriving genesis from the same allocation reaches the same root.
func NewGenesisBlock(proposerKey *ecdsa.PrivateKey, genesisState *state.State) *Block {
	proposer := crypto.PubkeyToAddress(proposerKey.PublicKey)
	h := &Header{
		Height:          0,
		Timestamp:       0,
		Proposer:        proposer,
		ProposerPubKey:  crypto.CompressPubkey(&proposerKey.PublicKey),
		CommitmentsRoot: CommitmentsRoot(nil),
		TxRoot:          TxRoot(nil),
		StateRoot:       genesisState.StateRoot(),
	}
	sigHash := h.SigningHash()
	sig, err := crypto.Sign(sigHash[:], proposerKey)
	if err != nil {
		// Genesis construction happens once at startup with a freshly
		// generated or config-loaded key; a signing failure here means
		// the key itself is malformed, which callers must fix before
		// a chain can exist at all.
		panic("chain: genesis signature: " + err.Error())
	}
	h.Signature = sig
	return &Block{Header: h}
}
