// Command gliderd is the entry point for a Glider node: it derives a
// genesis block and validator set from configuration, wires the
// blockchain, finality gadget, and tournament orchestrator together, and
// idles until asked to shut down. It does not itself speak any wire
// protocol; TransportIngress/TransportEgress/StorageBackend are left
// unattached for a concrete transport to plug in.
//
// Usage:
//
//	gliderd [flags]
//
// Flags:
//
//	--datadir      Data directory path (default: ~/.glider)
//	--network      Genesis profile: dev, main (default: dev)
//	--networkid    Network ID (default: 1337)
//	--validators   Number of local validator keys to generate (default: 1)
//	--alloc        Genesis balance credited to each validator (default: 1e12)
//	--verbosity    Log level 0-5 (default: 3)
//	--metrics      Enable metrics collection (default: false)
//	--version      Print version and exit
package main

import (
	"crypto/ecdsa"
	"fmt"
	"log/slog"
	"math/big"
	"os"
	"os/signal"
	"syscall"

	"github.com/glider-chain/glider/ca"
	"github.com/glider-chain/glider/chain"
	"github.com/glider-chain/glider/core/types"
	"github.com/glider-chain/glider/crypto"
	"github.com/glider-chain/glider/finality"
	glog "github.com/glider-chain/glider/log"
	"github.com/glider-chain/glider/params"
	"github.com/glider-chain/glider/state"
	"github.com/glider-chain/glider/tournament"
)

// Build-time version info, overridable with ldflags:
//
//	go build -ldflags "-X main.version=v0.2.0 -X main.commit=abc1234"
var (
	version = "v0.1.0-dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run is the actual entry point, returning an exit code. Accepts CLI
// arguments (without the program name) so it can be tested in isolation.
func run(args []string) int {
	cfg, exit, code := parseFlags(args)
	if exit {
		return code
	}

	cfg.LogLevel = VerbosityToLogLevel(cfg.Verbosity)
	glog.SetDefault(glog.New(slogLevel(cfg.LogLevel)))
	logger := glog.Default().Module("gliderd")

	logger.Info("gliderd starting", "version", version, "commit", commit)
	logger.Info("config",
		"name", cfg.Name,
		"datadir", cfg.DataDir,
		"network", cfg.Network,
		"network_id", cfg.NetworkID,
		"validators", cfg.Validators,
		"verbosity", cfg.Verbosity,
		"metrics", cfg.Metrics,
	)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "err", err)
		return 1
	}
	if err := cfg.InitDataDir(); err != nil {
		logger.Error("failed to initialize datadir", "err", err)
		return 1
	}
	logger.Info("data directory initialized", "path", cfg.DataDir)

	genesisConf := cfg.Genesis()

	validatorKeys := make([]*ecdsa.PrivateKey, cfg.Validators)
	validatorAddrs := make([]types.Address, cfg.Validators)
	for i := range validatorKeys {
		key, err := crypto.GenerateKey()
		if err != nil {
			logger.Error("failed to generate validator key", "index", i, "err", err)
			return 1
		}
		validatorKeys[i] = key
		validatorAddrs[i] = crypto.PubkeyToAddress(key.PublicKey)
	}

	genesisState := state.New()
	for _, addr := range validatorAddrs {
		if err := genesisState.Credit(addr, uint64ToBigInt(cfg.GenesisAllocation)); err != nil {
			logger.Error("failed to credit genesis allocation", "addr", addr.Hex(), "err", err)
			return 1
		}
		if err := genesisState.CreateBond(addr, uint64ToBigInt(params.BondMin)); err != nil {
			logger.Error("failed to create genesis bond", "addr", addr.Hex(), "err", err)
			return 1
		}
	}

	proposerKey := validatorKeys[0]
	genesisBlock := chain.NewGenesisBlock(proposerKey, genesisState)
	logger.Info("genesis block derived",
		"hash", genesisBlock.Hash().Hex(),
		"proposer", crypto.PubkeyToAddress(proposerKey.PublicKey).Hex(),
		"state_root", genesisState.StateRoot().Hex(),
	)

	// keys is left nil: verifying a non-genesis block's ZK proofs needs a
	// VerifyingKeySet pinned from a real trusted setup, which this tree
	// has no circuit compiler to produce (see universalVerifyingKeySet in
	// chain's own tests for the substitute used there).
	bc, err := chain.NewBlockchain(genesisConf, nil, genesisBlock, genesisState, nil)
	if err != nil {
		logger.Error("failed to construct blockchain", "err", err)
		return 1
	}
	logger.Info("blockchain constructed", "head", bc.Head().Hex(), "height", genesisBlock.Header.Height)

	finality.NewGadget(nil)
	logger.Info("finality gadget constructed")

	gridSize, battleSteps := params.GridSize, params.BattleSteps
	if genesisConf.AllowTestGridConfig {
		gridSize, battleSteps = params.TestGridSize, params.TestBattleSteps
	}

	candidates := validatorAddrs
	orchCfg := tournament.Config{
		Height:          genesisBlock.Header.Height + 1,
		ParentHash:      genesisBlock.Hash(),
		ParentTimestamp: genesisBlock.Header.Timestamp,
		Candidates:      candidates,
		Bonds:           genesisState,
		Trust:           genesisState.Trust(),
		Genesis:         genesisConf,
		GridSize:        gridSize,
		BattleSteps:     battleSteps,
		EvolveConfig:    ca.DefaultEvolveConfig(),
		ProposerPub:     &proposerKey.PublicKey,
	}
	tournament.NewOrchestrator(orchCfg)
	logger.Info("tournament orchestrator constructed",
		"height", orchCfg.Height,
		"candidates", len(candidates),
		"grid_size", gridSize,
		"battle_steps", battleSteps,
	)
	logger.Info("ready: attach a TransportIngress/TransportEgress/StorageBackend to drive consensus")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("received signal, shutting down", "signal", sig.String())

	return 0
}

// parseFlags parses CLI arguments into a Config. Returns the config, whether
// the caller should exit immediately, and the exit code.
func parseFlags(args []string) (Config, bool, int) {
	cfg := DefaultConfig()
	fs := newFlagSet(&cfg)

	showVersion := fs.Bool("version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cfg, true, 2
	}

	if *showVersion {
		fmt.Printf("gliderd %s (commit %s)\n", version, commit)
		return cfg, true, 0
	}

	return cfg, false, 0
}

// newFlagSet creates a flag.FlagSet that binds all CLI flags to the given
// Config. The FlagSet uses ContinueOnError so callers control the error
// handling behavior.
func newFlagSet(cfg *Config) *flagSet {
	fs := newCustomFlagSet("gliderd")
	fs.StringVar(&cfg.DataDir, "datadir", cfg.DataDir, "data directory path")
	fs.StringVar(&cfg.Network, "network", cfg.Network, "genesis profile (dev, main)")
	fs.Uint64Var(&cfg.NetworkID, "networkid", cfg.NetworkID, "network identifier")
	fs.IntVar(&cfg.Validators, "validators", cfg.Validators, "number of local validator keys to generate")
	fs.Uint64Var(&cfg.GenesisAllocation, "alloc", cfg.GenesisAllocation, "genesis balance credited to each validator")
	fs.IntVar(&cfg.Verbosity, "verbosity", cfg.Verbosity, "log level 0-5 (0=silent, 5=trace)")
	fs.BoolVar(&cfg.Metrics, "metrics", cfg.Metrics, "enable metrics collection")
	return fs
}

// uint64ToBigInt widens a uint64 config value to the big.Int the state
// package's balance and bond APIs take.
func uint64ToBigInt(v uint64) *big.Int {
	return new(big.Int).SetUint64(v)
}

// slogLevel maps the resolved log-level string to a slog.Level, matching
// the log package's own level set.
func slogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
