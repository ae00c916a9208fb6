// Copyright (c) 2025 BVK Chaitanya

package subcmds

import (
	"context"
	"flag"
	"fmt"

	"github.com/bvk/tradinhood/algo"
	"github.com/visvasity/cli"
)

type Algorithms struct{}

func (c *Algorithms) Purpose() string {
	return "Prints the names of the trading algorithms"
}

func (c *Algorithms) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("algorithms", flag.ContinueOnError)
	return "algorithms", fset, cli.CmdFunc(c.run)
}

func (c *Algorithms) run(ctx context.Context, args []string) error {
	for _, name := range algo.Names() {
		fmt.Println(name)
	}
	return nil
}
