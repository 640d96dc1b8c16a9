package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/budgera/zenassist"
	"github.com/google/subcommands"
)

type callCmd struct {
	list     bool
	describe string
}

func (*callCmd) Name() string { return "call" }
func (*callCmd) Synopsis() string {
	return "run a single named operation with JSON arguments"
}
func (*callCmd) Usage() string {
	return `zen call [-list] [-describe <operation>] <operation> ['{json arguments}']

  Runs one operation by name and prints its result as JSON. This is the same
  registry the assistant calls into, so anything the assistant can do is
  scriptable here.

Usage Examples:
# list the operation names
$ zen call -list

# show an operation's parameters
$ zen call -describe get_transactions

# run one
$ zen call get_transactions '{"start_date": "2026-03-01"}'
`
}

func (c *callCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.list, "list", false, "List the available operation names.")
	f.StringVar(&c.describe, "describe", "", "Describe the named operation instead of running one.")
}

func (c *callCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.list {
		for _, name := range zenassist.OperationNames() {
			fmt.Println(name)
		}
		return subcommands.ExitSuccess
	}
	if c.describe != "" {
		op, ok := zenassist.FindOp(c.describe)
		if !ok {
			fmt.Fprintf(os.Stderr, "Unknown operation %q, try -list\n", c.describe)
			return subcommands.ExitFailure
		}
		return printJSON(map[string]any{
			"name":        op.Name,
			"description": op.Description,
			"params":      op.Params,
		})
	}

	if f.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: an operation name is required, try -list")
		return subcommands.ExitUsageError
	}
	name := f.Arg(0)
	args := zenassist.Args{}
	if f.NArg() > 1 {
		if err := json.Unmarshal([]byte(f.Arg(1)), &args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: arguments must be a JSON object: %v\n", err)
			return subcommands.ExitUsageError
		}
	}

	s, err := NewService()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	result, err := s.Call(ctx, name, args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running %s: %v\n", name, err)
		return subcommands.ExitFailure
	}
	return printJSON(result)
}
