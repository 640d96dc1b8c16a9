package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/budgera/zenassist/cmd"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))

	sub := map[string]*complete.Command{}
	for _, c := range cmd.Commands {
		commander.Register(c, "")
		sub[c.Name()] = &complete.Command{}
	}

	// Shell completion; a no-op unless invoked by the completion machinery.
	(&complete.Command{Sub: sub}).Complete(path.Base(os.Args[0]))

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
