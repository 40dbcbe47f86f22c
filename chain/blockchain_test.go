package chain

import (
	"testing"

	"github.com/glider-chain/glider/params"
)

func TestNewBlockchainRejectsNilGenesis(t *testing.T) {
	_, err := NewBlockchain(params.DevGenesis(), nil, nil, stateForTest(), nil)
	if err != ErrNoGenesis {
		t.Errorf("expected ErrNoGenesis, got %v", err)
	}
}

func TestInsertBlockAcceptsWellFormedChild(t *testing.T) {
	genesisConf := params.DevGenesis()
	gen := newSigner(t)
	miner := newSigner(t)
	genBlock := newGenesisBlock(t, gen)
	genesisState := stateForTest()

	keys := universalVerifyingKeySet(t, genesisConf, 11, 4)
	bc, err := NewBlockchain(genesisConf, keys, genBlock, genesisState, nil)
	if err != nil {
		t.Fatalf("NewBlockchain: %v", err)
	}

	block := singleMinerBlock(t, genBlock, gen, miner, keys, genesisState)
	if err := bc.InsertBlock(block); err != nil {
		t.Fatalf("InsertBlock: %v", err)
	}

	if bc.Head() != block.Hash() {
		t.Errorf("expected head to advance to the inserted block")
	}
	if got := bc.GetBlock(block.Hash()); got == nil {
		t.Error("expected GetBlock to find the inserted block")
	}
}

func TestInsertBlockIsIdempotent(t *testing.T) {
	genesisConf := params.DevGenesis()
	gen := newSigner(t)
	miner := newSigner(t)
	genBlock := newGenesisBlock(t, gen)
	genesisState := stateForTest()

	keys := universalVerifyingKeySet(t, genesisConf, 11, 4)
	bc, err := NewBlockchain(genesisConf, keys, genBlock, genesisState, nil)
	if err != nil {
		t.Fatalf("NewBlockchain: %v", err)
	}

	block := singleMinerBlock(t, genBlock, gen, miner, keys, genesisState)
	if err := bc.InsertBlock(block); err != nil {
		t.Fatalf("first InsertBlock: %v", err)
	}
	if err := bc.InsertBlock(block); err != nil {
		t.Fatalf("second InsertBlock of the same block should be a no-op, got %v", err)
	}
}

func TestInsertBlockRejectsUnknownParent(t *testing.T) {
	genesisConf := params.DevGenesis()
	gen := newSigner(t)
	miner := newSigner(t)
	genBlock := newGenesisBlock(t, gen)
	genesisState := stateForTest()

	keys := universalVerifyingKeySet(t, genesisConf, 11, 4)
	bc, err := NewBlockchain(genesisConf, keys, genBlock, genesisState, nil)
	if err != nil {
		t.Fatalf("NewBlockchain: %v", err)
	}

	orphanParent := newGenesisBlock(t, newSigner(t))
	block := singleMinerBlock(t, orphanParent, gen, miner, keys, genesisState)
	if err := bc.InsertBlock(block); err != ErrParentNotFound {
		t.Errorf("expected ErrParentNotFound, got %v", err)
	}
}

func TestStateAtReDerivesCreditedBalance(t *testing.T) {
	genesisConf := params.DevGenesis()
	gen := newSigner(t)
	miner := newSigner(t)
	genBlock := newGenesisBlock(t, gen)
	genesisState := stateForTest()

	keys := universalVerifyingKeySet(t, genesisConf, 11, 4)
	bc, err := NewBlockchain(genesisConf, keys, genBlock, genesisState, nil)
	if err != nil {
		t.Fatalf("NewBlockchain: %v", err)
	}

	block := singleMinerBlock(t, genBlock, gen, miner, keys, genesisState)
	if err := bc.InsertBlock(block); err != nil {
		t.Fatalf("InsertBlock: %v", err)
	}

	derived, err := bc.stateAt(block)
	if err != nil {
		t.Fatalf("stateAt: %v", err)
	}
	acc := derived.GetAccount(miner.addr)
	if acc.Balance.Cmp(BlockIssuance) != 0 {
		t.Errorf("expected re-derived state to credit the champion BlockIssuance, got %s", acc.Balance)
	}
}
