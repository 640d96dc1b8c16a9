// Package cmd implements the CLI application over the budget assistant.
package cmd

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/budgera/zenassist"
	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
)

// Commands lists the subcommands a main package registers.
var Commands = []subcommands.Command{
	&syncCmd{},
	&callCmd{},
	&reportCmd{},
	&topicCmd{},
	&assistCmd{},
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var cacheFile = flag.String("cache-file", "entities_cache.json", "Path to the local mirror snapshot")
var configFile = flag.String("config-file", "config.json", "Path to the configuration file")
var refsDir = flag.String("refs-dir", "references", "Directory holding the rebuilt reference indexes")

// NewService assembles the service from the app-level paths. A missing cache
// or missing reference indexes yield an empty (but working) service; only a
// broken configuration file is an error.
func NewService() (*zenassist.Service, error) {
	cfg, err := zenassist.LoadConfig(*configFile)
	if err != nil {
		return nil, err
	}
	return &zenassist.Service{
		Store:     zenassist.LoadStore(*cacheFile),
		Refs:      zenassist.LoadReferences(*refsDir),
		Config:    cfg,
		Client:    zenassist.NewClient(cfg.Token),
		StorePath: *cacheFile,
		RefsDir:   *refsDir,
	}, nil
}

// printMarkdown renders markdown for the terminal, falling back to the raw
// text when the renderer is unavailable.
func printMarkdown(text string) {
	renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err == nil {
		if out, err := renderer.Render(text); err == nil {
			fmt.Print(out)
			return
		}
	}
	fmt.Println(text)
}

// printJSON writes an operation result to stdout, indented.
func printJSON(v any) subcommands.ExitStatus {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding result: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
