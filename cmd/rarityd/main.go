// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/rarity-staking/api"
	"github.com/vechain/rarity-staking/ledger"
	"github.com/vechain/rarity-staking/log"
	"github.com/vechain/rarity-staking/metrics"
)

var (
	version   string
	gitCommit string
	gitTag    string
	logger    = log.WithContext("pkg", "rarityd")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "rarityd",
		Usage:     "Rarity-weighted NFT staking ledger",
		Copyright: "2025 VeChain Foundation <https://vechain.org/>",
		Flags: []cli.Flag{
			configFlag,
			dataDirFlag,
			devFlag,
			persistFlag,
			adminFlag,
			signerFlag,
			vrfKeyFlag,
			cacheFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiTimeoutFlag,
			apiEventsLimitFlag,
			apiMaxBatchFlag,
			apiPprofFlag,
			enableAPILogsFlag,
			enableMetricsFlag,
			metricsAddrFlag,
			ntpServerFlag,
			verbosityFlag,
			jsonLogsFlag,
		},
		Action: defaultAction,
		Commands: []cli.Command{
			{
				Name:   "keygen",
				Usage:  "generate a secp256k1 key for an admin, signer, holder or VRF",
				Flags:  []cli.Flag{outFlag},
				Action: keygenAction,
			},
			{
				Name:   "sign",
				Usage:  "sign tokenId,score lines and print the batch for POST /rarity",
				Flags:  []cli.Flag{keyFileFlag, inputFlag},
				Action: signAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	exitCtx := handleExitSignal()
	defer func() { logger.Info("exited") }()

	initLogger(ctx)
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	isDev := ctx.Bool(devFlag.Name)
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	var accounts []*devAccount
	if isDev {
		accounts = devAccounts()
		if cfg.Admin.IsZero() {
			cfg.Admin = accounts[0].Address
		}
		if cfg.Signer.IsZero() {
			cfg.Signer = accounts[1].Address
		}
	}

	source, err := loadRaffleSource(ctx)
	if err != nil {
		return err
	}

	dataDir := "Memory"
	var dbs *databases
	if !isDev || ctx.Bool(persistFlag.Name) {
		if dataDir, err = makeDataDir(ctx); err != nil {
			return err
		}
		dbs, err = openDatabases(ctx, dataDir)
	} else {
		dbs, err = openMemDatabases()
	}
	if err != nil {
		return err
	}
	defer dbs.Close()

	l, err := ledger.New(dbs.state, dbs.logs, ledger.SystemClock{}, cfg, source)
	if err != nil {
		return err
	}

	handler, closeSubs := api.New(l, api.Options{
		AllowedOrigins:  ctx.String(apiCorsFlag.Name),
		EventsLimit:     ctx.Uint64(apiEventsLimitFlag.Name),
		MaxBatch:        ctx.Int(apiMaxBatchFlag.Name),
		PprofOn:         ctx.Bool(apiPprofFlag.Name),
		EnableReqLogger: ctx.Bool(enableAPILogsFlag.Name),
		EnableMetrics:   ctx.Bool(enableMetricsFlag.Name),
		DevMode:         isDev,
	})
	defer func() {
		logger.Info("closing subscriptions...")
		closeSubs()
	}()

	group, groupCtx := errgroup.WithContext(exitCtx)
	if host := ctx.String(ntpServerFlag.Name); host != "" {
		go ledger.WatchClockOffset(groupCtx, ledger.NTPOffset(host), maxClockOffset, time.Hour)
	}
	apiURL, err := startAPIServer(groupCtx, group, ctx.String(apiAddrFlag.Name), handler,
		time.Duration(ctx.Uint64(apiTimeoutFlag.Name))*time.Millisecond)
	if err != nil {
		return err
	}
	metricsURL := "disabled"
	if ctx.Bool(enableMetricsFlag.Name) {
		if metricsURL, err = startMetricsServer(groupCtx, group, ctx.String(metricsAddrFlag.Name)); err != nil {
			return err
		}
	}

	printStartupMessage(l.Config(), dataDir, apiURL, metricsURL, source != nil, accounts)

	return group.Wait()
}
