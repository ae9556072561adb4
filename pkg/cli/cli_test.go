// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type greetConfig struct {
	Name string
}

func (c greetConfig) Validate() error {
	if c.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

type greetDeps struct {
	IO IO
}

func (d *greetDeps) SetIO(cio IO) { d.IO = cio }

func greetInit(context.Context) (*greetDeps, error) { return &greetDeps{}, nil }

func greet(ctx context.Context, cfg greetConfig, deps *greetDeps) (*NoOutput, error) {
	fmt.Fprintf(deps.IO.Out, "hello %s", cfg.Name)
	return &NoOutput{}, nil
}

func parseGreetArgs(cfg *greetConfig, args []string) error {
	if len(args) != 1 {
		return errors.New("expected exactly 1 argument")
	}
	cfg.Name = args[0]
	return nil
}

func TestRunE(t *testing.T) {
	cfg := greetConfig{}
	cmd := &cobra.Command{
		Use: "greet",
		RunE: RunE(
			&cfg,
			parseGreetArgs,
			greetInit,
			greet,
		),
	}
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"world"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got, want := out.String(), "hello world"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestRunEValidation(t *testing.T) {
	cfg := greetConfig{}
	cmd := &cobra.Command{
		Use:  "greet",
		RunE: RunE(&cfg, SkipArgs[greetConfig], greetInit, greet),
	}
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "name is required") {
		t.Errorf("Execute() error = %v, want validation failure", err)
	}
}
