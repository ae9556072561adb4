// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package cli wires validated configs, dependency containers, and handlers
// into cobra commands.
package cli

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// Config is a command configuration that can validate itself.
type Config interface {
	Validate() error
}

// Deps is a dependency container that receives the command's IO streams.
type Deps interface {
	SetIO(IO)
}

// InitDeps builds the dependency container for one command invocation.
type InitDeps[D Deps] func(context.Context) (D, error)

// Handler runs the command once its config and dependencies are ready.
type Handler[C Config, O any, D Deps] func(context.Context, C, D) (*O, error)

// ParseArgs populates cfg from positional arguments.
type ParseArgs[C Config] func(cfg *C, args []string) error

// SkipArgs is a ParseArgs for commands without positional arguments.
func SkipArgs[C Config](*C, []string) error { return nil }

// NoOutput is the output type for handlers that only have side effects.
type NoOutput struct{}

// RunE adapts a handler into a cobra.Command.RunE. Positional arguments are
// parsed into cfg, the config is validated, dependencies are built and given
// the command's IO streams, and then the handler runs.
func RunE[C Config, O any, D Deps](
	cfg *C,
	parseArgs ParseArgs[C],
	initDeps InitDeps[D],
	handler Handler[C, O, D],
) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := parseArgs(cfg, args); err != nil {
			return err
		}
		if err := (*cfg).Validate(); err != nil {
			return err
		}
		deps, err := initDeps(cmd.Context())
		if err != nil {
			return errors.Wrap(err, "initializing dependencies")
		}
		deps.SetIO(IO{In: cmd.InOrStdin(), Out: cmd.OutOrStdout(), Err: cmd.ErrOrStderr()})
		_, err = handler(cmd.Context(), *cfg, deps)
		return err
	}
}
