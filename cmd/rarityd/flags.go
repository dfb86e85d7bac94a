// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"
)

var (
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "path to a YAML deployment file",
	}
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for the state and event databases",
	}
	devFlag = cli.BoolFlag{
		Name:  "dev",
		Usage: "in-memory databases, dev accounts and the /dev API routes",
	}
	persistFlag = cli.BoolFlag{
		Name:  "persist",
		Usage: "with --dev, keep the databases under --data-dir",
	}
	adminFlag = cli.StringFlag{
		Name:  "admin",
		Usage: "address allowed to change the reward parameters (overrides the config file)",
	}
	signerFlag = cli.StringFlag{
		Name:  "signer",
		Usage: "address of the rarity attestation signer (overrides the config file)",
	}
	vrfKeyFlag = cli.StringFlag{
		Name:  "vrf-key",
		Usage: "private key file; when set, raffle draws are VRF outputs under this key",
	}
	cacheFlag = cli.IntFlag{
		Name:  "cache",
		Value: 64,
		Usage: "state database cache size (MB)",
	}
	apiAddrFlag = cli.StringFlag{
		Name:  "api-addr",
		Value: "localhost:8680",
		Usage: "API service listening address",
	}
	apiCorsFlag = cli.StringFlag{
		Name:  "api-cors",
		Value: "",
		Usage: "comma separated list of domains from which to accept cross origin requests to API",
	}
	apiTimeoutFlag = cli.Uint64Flag{
		Name:  "api-timeout",
		Value: 10000,
		Usage: "API request timeout value in milliseconds",
	}
	apiEventsLimitFlag = cli.Uint64Flag{
		Name:  "api-events-limit",
		Value: 1000,
		Usage: "limit the number of events returned by /events API",
	}
	apiMaxBatchFlag = cli.IntFlag{
		Name:  "api-max-batch",
		Value: 256,
		Usage: "maximum number of tokens in one call",
	}
	apiPprofFlag = cli.BoolFlag{
		Name:  "api-pprof",
		Usage: "serve pprof under /debug/pprof",
	}
	enableAPILogsFlag = cli.BoolFlag{
		Name:  "enable-api-logs",
		Usage: "enables API requests logging",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "enables metrics collection",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics-addr",
		Value: "localhost:2112",
		Usage: "metrics service listening address",
	}
	ntpServerFlag = cli.StringFlag{
		Name:  "ntp-server",
		Value: "pool.ntp.org",
		Usage: "NTP server to check the local clock against, empty to disable",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Value: 3,
		Usage: "log verbosity (0-5)",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:  "json-logs",
		Usage: "output logs in JSON format",
	}

	// keygen & sign
	keyFileFlag = cli.StringFlag{
		Name:  "key",
		Usage: "private key file (hex)",
	}
	outFlag = cli.StringFlag{
		Name:  "out",
		Usage: "write the private key to this file instead of stdout",
	}
	inputFlag = cli.StringFlag{
		Name:  "input",
		Usage: "file of tokenId,score lines (stdin if omitted)",
	}
)
