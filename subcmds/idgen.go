// Copyright (c) 2023 BVK Chaitanya

package subcmds

import (
	"context"
	"flag"
	"fmt"

	"github.com/bvk/tradinhood/idgen"
	"github.com/visvasity/cli"
)

type RefIDs struct {
	from  uint64
	count int
}

func (c *RefIDs) run(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("this command takes one (live run name) argument")
	}
	gen := idgen.New(args[0], c.from)
	for i := 0; i < c.count; i++ {
		offset, id := gen.Offset(), gen.NextID()
		fmt.Printf("%d: %s\n", offset, id)
	}
	return nil
}

func (c *RefIDs) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("refids", flag.ContinueOnError)
	fset.Uint64Var(&c.from, "from", 0, "initial id offset")
	fset.IntVar(&c.count, "count", 10, "number of ids")
	return "refids", fset, cli.CmdFunc(c.run)
}

func (c *RefIDs) Purpose() string {
	return "Prints the order reference ids used by a live run"
}
