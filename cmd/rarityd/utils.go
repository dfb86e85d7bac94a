// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/rarity-staking/builtin/staking/raffle"
	"github.com/vechain/rarity-staking/ledger"
	"github.com/vechain/rarity-staking/log"
	"github.com/vechain/rarity-staking/logdb"
	"github.com/vechain/rarity-staking/lvldb"
	"github.com/vechain/rarity-staking/thor"
)

func initLogger(ctx *cli.Context) {
	fd := os.Stderr.Fd()
	useColor := (isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)) && os.Getenv("TERM") != "dumb"
	log.Setup(os.Stderr, ctx.Int(verbosityFlag.Name), ctx.Bool(jsonLogsFlag.Name), useColor)
}

// handleExitSignal returns a context cancelled on SIGINT or SIGTERM.
func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		logger.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}

func makeConfig(ctx *cli.Context) (ledger.Config, error) {
	cfg := ledger.DefaultConfig()
	if path := ctx.String(configFlag.Name); path != "" {
		fc, err := loadFileConfig(path)
		if err != nil {
			return cfg, errors.WithMessagef(err, "config [%v]", path)
		}
		if err := fc.apply(&cfg); err != nil {
			return cfg, errors.WithMessagef(err, "config [%v]", path)
		}
	}
	if err := setAddress(&cfg.Admin, ctx.String(adminFlag.Name), adminFlag.Name); err != nil {
		return cfg, err
	}
	if err := setAddress(&cfg.Signer, ctx.String(signerFlag.Name), signerFlag.Name); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadRaffleSource(ctx *cli.Context) (raffle.Source, error) {
	path := ctx.String(vrfKeyFlag.Name)
	if path == "" {
		return nil, nil
	}
	key, err := crypto.LoadECDSA(path)
	if err != nil {
		return nil, errors.WithMessagef(err, "load VRF key [%v]", path)
	}
	return raffle.NewVRFSource(key), nil
}

func defaultDataDir() string {
	if home := homeDir(); home != "" {
		return filepath.Join(home, ".org.vechain.rarity")
	}
	return ""
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

func makeDataDir(ctx *cli.Context) (string, error) {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		return "", errors.Errorf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name)
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return "", errors.Wrapf(err, "create data dir [%v]", dataDir)
	}
	return dataDir, nil
}

type databases struct {
	state *lvldb.LevelDB
	logs  *logdb.LogDB
}

func (d *databases) Close() {
	logger.Info("closing log database...")
	if err := d.logs.Close(); err != nil {
		logger.Warn("failed to close log database", "err", err)
	}
	logger.Info("closing state database...")
	if err := d.state.Close(); err != nil {
		logger.Warn("failed to close state database", "err", err)
	}
}

func openDatabases(ctx *cli.Context, dataDir string) (*databases, error) {
	cacheMB := ctx.Int(cacheFlag.Name)
	dir := filepath.Join(dataDir, "state.db")
	state, err := lvldb.New(dir, lvldb.Options{CacheSize: cacheMB})
	if err != nil {
		return nil, errors.WithMessagef(err, "open state database [%v]", dir)
	}
	path := filepath.Join(dataDir, "events.db")
	logs, err := logdb.New(path)
	if err != nil {
		state.Close()
		return nil, errors.WithMessagef(err, "open log database [%v]", path)
	}
	return &databases{state, logs}, nil
}

func openMemDatabases() (*databases, error) {
	state, err := lvldb.NewMem()
	if err != nil {
		return nil, errors.WithMessage(err, "open state database")
	}
	logs, err := logdb.NewMem()
	if err != nil {
		state.Close()
		return nil, errors.WithMessage(err, "open log database")
	}
	return &databases{state, logs}, nil
}

type devAccount struct {
	Address    thor.Address
	PrivateKey *ecdsa.PrivateKey
}

// devAccounts are fixed keys for local use. The first is the admin, the second the rarity signer.
func devAccounts() []*devAccount {
	names := []string{"admin", "signer", "alice", "bob"}
	accounts := make([]*devAccount, 0, len(names))
	for _, name := range names {
		seed := thor.Keccak256([]byte("rarity-dev-account"), []byte(name))
		key, err := crypto.ToECDSA(seed.Bytes())
		if err != nil {
			panic(err)
		}
		accounts = append(accounts, &devAccount{
			Address:    thor.Address(crypto.PubkeyToAddress(key.PublicKey)),
			PrivateKey: key,
		})
	}
	return accounts
}

func printStartupMessage(cfg ledger.Config, dataDir, apiURL, metricsURL string, vrf bool, accounts []*devAccount) {
	draws := "hash"
	if vrf {
		draws = "vrf"
	}
	info := fmt.Sprintf(`Starting rarityd %v
    Staking     [ %v ]
    NFT         [ %v ]
    Token       [ %v ]
    Admin       [ %v ]
    Signer      [ %v ]
    Draws       [ %v %v ]
    Data dir    [ %v ]
    API portal  [ %v ]
    Metrics     [ %v ]
`,
		fullVersion(),
		cfg.Staking, cfg.NFT, cfg.Token,
		cfg.Admin, cfg.Signer,
		cfg.Raffle.Kind, draws,
		dataDir, apiURL, metricsURL)

	if len(accounts) > 0 {
		sep := strings.Repeat("─", 44)
		info += "┌" + sep + "┬" + strings.Repeat("─", 68) + "┐\n"
		for _, a := range accounts {
			info += fmt.Sprintf("│ %v │ %v │\n", a.Address, thor.BytesToBytes32(crypto.FromECDSA(a.PrivateKey)))
		}
		info += "└" + sep + "┴" + strings.Repeat("─", 68) + "┘\n"
	}
	fmt.Print(info)
}
