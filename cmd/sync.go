package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/budgera/zenassist"
	"github.com/google/subcommands"
)

type syncCmd struct {
	rebuild bool
}

func (*syncCmd) Name() string { return "sync" }
func (*syncCmd) Synopsis() string {
	return "pull the latest server changes into the local mirror"
}
func (*syncCmd) Usage() string {
	return `zen sync [-rebuild=false]

  Sends the saved cursor to the server, merges the returned diff into the
  local mirror and persists it. By default the reference indexes are rebuilt
  afterwards so reports see the new accounts and categories.
`
}

func (c *syncCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.rebuild, "rebuild", true, "Rebuild the reference indexes after the sync.")
}

func (c *syncCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := NewService()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	if err := s.SyncStore(ctx); err != nil {
		if errors.Is(err, zenassist.ErrTokenExpired) {
			fmt.Fprintln(os.Stderr, "Token expired. Get a new token from https://budgera.com/settings/export")
			return subcommands.ExitFailure
		}
		fmt.Fprintln(os.Stderr, "Sync failed:", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Synced: %d accounts, %d transactions, %d reminders, %d budgets\n",
		len(s.Store.Accounts()), len(s.Store.Transactions()), len(s.Store.Reminders()), len(s.Store.Budgets()))

	if c.rebuild {
		summary, err := s.Rebuild()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Rebuilding references failed:", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("References: %s; %s\n", summary.Accounts, summary.Categories)
	}
	return subcommands.ExitSuccess
}
