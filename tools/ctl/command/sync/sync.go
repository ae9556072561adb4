// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package sync

import (
	"context"
	"flag"
	"fmt"

	"github.com/cheggaaa/pb"
	"github.com/google/pypindex/pkg/cli"
	"github.com/google/pypindex/pkg/storage"
	"github.com/pkg/errors"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"
)

// Config holds all configuration for the sync command.
type Config struct {
	From        string
	To          string
	Prefix      string
	Concurrency int
}

// Validate ensures the configuration is valid.
func (c Config) Validate() error {
	if c.From == "" {
		return errors.New("from is required")
	}
	if c.To == "" {
		return errors.New("to is required")
	}
	if c.Concurrency < 1 {
		return errors.New("concurrency must be positive")
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

// Handler copies every key under the prefix from one store to another.
func Handler(ctx context.Context, cfg Config, deps *Deps) (*cli.NoOutput, error) {
	src, err := storage.FromURL(ctx, cfg.From)
	if err != nil {
		return nil, errors.Wrap(err, "initializing source storage")
	}
	dst, err := storage.FromURL(ctx, cfg.To)
	if err != nil {
		return nil, errors.Wrap(err, "initializing destination storage")
	}
	keys, err := src.List(ctx, cfg.Prefix)
	if err != nil {
		return nil, errors.Wrapf(err, "listing %s", cfg.Prefix)
	}
	if len(keys) == 0 {
		fmt.Fprintln(deps.IO.Out, "Nothing to sync")
		return &cli.NoOutput{}, nil
	}
	bar := pb.New(len(keys))
	bar.Output = deps.IO.Err
	bar.Start()
	p := pool.New().WithMaxGoroutines(cfg.Concurrency).WithContext(ctx).WithCancelOnError()
	for _, key := range keys {
		p.Go(func(ctx context.Context) error {
			defer bar.Increment()
			return storage.Copy(ctx, dst, src, key)
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}
	bar.Finish()
	fmt.Fprintf(deps.IO.Out, "Synced %d keys\n", len(keys))
	return &cli.NoOutput{}, nil
}

// Command creates a new sync command instance.
func Command() *cobra.Command {
	cfg := Config{}
	cmd := &cobra.Command{
		Use:   "sync --from=<url> --to=<url> [--prefix=<prefix>] [--concurrency=<n>]",
		Short: "Copy stored distributions between storage backends",
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
	set.StringVar(&cfg.From, "from", "", "source storage URL")
	set.StringVar(&cfg.To, "to", "", "destination storage URL")
	set.StringVar(&cfg.Prefix, "prefix", "", "only sync keys under this prefix")
	set.IntVar(&cfg.Concurrency, "concurrency", 4, "number of concurrent copies")
	return set
}
