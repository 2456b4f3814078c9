// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// txledger replays a CSV stream of client transactions through the
// concurrent ledger pipeline and prints the final per-client report to
// standard output.
package main

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/luxfi/geth/log"
	"github.com/luxfi/txledger/dispatch"
	"github.com/luxfi/txledger/internal/metrics"
	"github.com/luxfi/txledger/pipeline"
	"github.com/luxfi/txledger/report"
	"github.com/luxfi/txledger/shardworker"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"
)

const clientIdentifier = "txledger"

var (
	workersFlag = &cli.IntFlag{
		Name:  "workers",
		Usage: "number of concurrent block-parsing workers (default: GOMAXPROCS)",
	}
	shardsFlag = &cli.IntFlag{
		Name:  "shards",
		Usage: "number of client shards (default: GOMAXPROCS)",
	}
	blockSizeFlag = &cli.IntFlag{
		Name:  "block-size",
		Usage: "approximate block size, in bytes, read from the input before line-alignment",
		Value: pipeline.DefaultBlockSize,
	}

	app = &cli.App{
		Name:      clientIdentifier,
		Usage:     "replay a transaction CSV and print the resulting account report",
		Version:   "1.0.0",
		ArgsUsage: "<input-file>",
	}
)

func init() {
	app.Action = run
	app.Flags = []cli.Flag{workersFlag, shardsFlag, blockSizeFlag}
	app.Before = func(ctx *cli.Context) error {
		useColor := isatty.IsTerminal(os.Stderr.Fd())
		log.SetDefault(log.NewLogger(log.NewTerminalHandlerWithLevel(os.Stderr, log.LevelInfo, useColor)))
		return nil
	}
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.Exit("exactly one input file argument is required", 2)
	}
	path := ctx.Args().Get(0)

	f, err := os.Open(path)
	if err != nil {
		return cli.Exit(fmt.Sprintf("opening input: %v", err), 1)
	}
	defer f.Close()

	shardCount := ctx.Int("shards")
	if shardCount <= 0 {
		shardCount = runtime.GOMAXPROCS(0)
	}

	cfg := pipeline.Config{
		BlockSize: ctx.Int("block-size"),
		Workers:   ctx.Int("workers"),
	}

	background := context.Background()
	records, _, err := pipeline.Run(background, f, cfg)
	if err != nil {
		return cli.Exit(fmt.Sprintf("starting pipeline: %v", err), 1)
	}

	shards := dispatch.NewShards(shardCount, 1024)
	go dispatch.Run(background, records, shards)

	accounts := shardworker.Collect(shards)

	if err := report.Write(os.Stdout, accounts); err != nil {
		return cli.Exit(fmt.Sprintf("writing report: %v", err), 1)
	}

	summary := metrics.Snapshot()
	log.Info("txledger run complete",
		"rowsParsed", summary.RowsParsed,
		"rowsDropped", summary.RowsDropped,
		"semanticErrors", summary.SemanticErrors,
		"partitionsLost", summary.PartitionsLost,
	)
	return nil
}
