// Copyright (c) 2025 BVK Chaitanya

package main

import (
	"context"
	"log"
	"os"

	"github.com/bvk/tradinhood/subcmds"
	"github.com/bvk/tradinhood/subcmds/dataset"
	"github.com/visvasity/cli"
)

func main() {
	datasetCmds := []cli.Command{
		new(dataset.Fetch),
		new(dataset.Show),
		new(dataset.List),
		new(dataset.Delete),
		new(dataset.Export),
		new(dataset.Import),
	}

	cmds := []cli.Command{
		new(subcmds.Quote),
		new(subcmds.Research),
		new(subcmds.Tag),
		new(subcmds.Portfolio),
		new(subcmds.Holdings),
		new(subcmds.Orders),
		new(subcmds.Wait),
		new(subcmds.Buy),
		new(subcmds.Sell),
		new(subcmds.PnL),
		new(subcmds.Backtest),
		new(subcmds.Live),
		new(subcmds.State),
		new(subcmds.Steps),
		new(subcmds.Algorithms),
		new(subcmds.RefIDs),
		cli.NewGroup("dataset", "Fetch, save and export historical candles", datasetCmds...),
	}
	if err := cli.Run(context.Background(), cmds, os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}
