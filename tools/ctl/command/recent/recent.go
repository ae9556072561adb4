// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package recent

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/google/pypindex/pkg/cli"
	"github.com/google/pypindex/pkg/journal"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// Config holds all configuration for the recent command.
type Config struct {
	Journal string
	Project string
	Limit   int
}

// Validate ensures the configuration is valid.
func (c Config) Validate() error {
	if c.Journal == "" {
		return errors.New("journal is required")
	}
	return nil
}

// Deps holds dependencies for the command.
type Deps struct {
	IO cli.IO
}

func (d *Deps) SetIO(cio cli.IO) { d.IO = cio }

// InitDeps initializes Deps.
func InitDeps(context.Context) (*Deps, error) {
	return &Deps{}, nil
}

// Handler prints the most recent uploads recorded in the journal.
func Handler(ctx context.Context, cfg Config, deps *Deps) (*cli.NoOutput, error) {
	client, err := journal.FromURL(ctx, cfg.Journal)
	if err != nil {
		return nil, errors.Wrap(err, "initializing journal")
	}
	entries, err := client.Recent(ctx, cfg.Project, cfg.Limit)
	if err != nil {
		return nil, errors.Wrap(err, "reading journal")
	}
	for _, e := range entries {
		fmt.Fprintf(deps.IO.Out, "%s  %s %s  %s\n", e.Time.Format(time.RFC3339), e.Project, e.Version, e.Key)
	}
	return &cli.NoOutput{}, nil
}

// Command creates a new recent command instance.
func Command() *cobra.Command {
	cfg := Config{}
	cmd := &cobra.Command{
		Use:   "recent --journal=<url> [--project=<name>] [-n=<count>]",
		Short: "List recently uploaded distributions",
		Args:  cobra.NoArgs,
		RunE: cli.RunE(
			&cfg,
			cli.SkipArgs[Config],
			InitDeps,
			Handler,
		),
	}
	cmd.Flags().AddGoFlagSet(flagSet(cmd.Name(), &cfg))
	return cmd
}

// flagSet returns the command-line flags for the Config struct.
func flagSet(name string, cfg *Config) *flag.FlagSet {
	set := flag.NewFlagSet(name, flag.ContinueOnError)
	set.StringVar(&cfg.Journal, "journal", "", "journal URL: file:///path or firestore://project[/collection]")
	set.StringVar(&cfg.Project, "project", "", "only list uploads for this project")
	set.IntVar(&cfg.Limit, "n", 20, "max entries to list (0 for all)")
	return set
}
