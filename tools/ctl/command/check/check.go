// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package check

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/google/pypindex/pkg/archive"
	"github.com/google/pypindex/pkg/cli"
	"github.com/google/pypindex/pkg/ini"
	"github.com/google/pypindex/pkg/pypi"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
)

// Config holds all configuration for the check command.
type Config struct {
	BuildConfig bool
	Files       []string
}

// Validate ensures the configuration is valid.
func (c Config) Validate() error {
	if len(c.Files) == 0 {
		return errors.New("expected at least 1 file to check")
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

func parseArgs(cfg *Config, args []string) error {
	if len(args) == 0 {
		return errors.New("expected at least 1 file to check")
	}
	cfg.Files = args
	return nil
}

type projectMetadata struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

type toolMetadata struct {
	Poetry projectMetadata `toml:"poetry"`
}

type pyProject struct {
	Project projectMetadata `toml:"project"`
	Tool    toolMetadata    `toml:"tool"`
}

// readDeclared returns the name and version an sdist declares in its build
// configuration: pyproject.toml's [project] or [tool.poetry] table, falling
// back to setup.cfg's [metadata] section. An sdist carrying neither returns
// empty values.
func readDeclared(f archive.Format, r io.Reader) (projectMetadata, error) {
	tr, err := archive.NewTarReader(f, r)
	if err != nil {
		return projectMetadata{}, errors.Wrap(err, "opening archive")
	}
	var fromToml, fromCfg projectMetadata
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return projectMetadata{}, errors.Wrap(err, "reading archive")
		}
		if ok, _ := path.Match("*/pyproject.toml", hdr.Name); ok {
			contents, err := io.ReadAll(tr)
			if err != nil {
				return projectMetadata{}, errors.Wrap(err, "reading pyproject.toml")
			}
			var p pyProject
			if err := toml.Unmarshal(contents, &p); err != nil {
				return projectMetadata{}, errors.Wrap(err, "decoding pyproject.toml")
			}
			if p.Project.Name != "" {
				fromToml = p.Project
			} else {
				fromToml = p.Tool.Poetry
			}
		} else if ok, _ := path.Match("*/setup.cfg", hdr.Name); ok {
			cfg, err := ini.Parse(tr)
			if err != nil {
				return projectMetadata{}, errors.Wrap(err, "decoding setup.cfg")
			}
			fromCfg.Name, _ = cfg.Get("metadata", "name")
			fromCfg.Version, _ = cfg.Get("metadata", "version")
		}
	}
	if fromToml.Name != "" {
		return fromToml, nil
	}
	return fromCfg, nil
}

func checkFile(cfg Config, out io.Writer, file string) error {
	filename := filepath.Base(file)
	f, err := os.Open(file)
	if err != nil {
		return errors.Wrap(err, "opening file")
	}
	defer f.Close()
	info, err := pypi.ReadDistribution(filename, f)
	if err != nil {
		return errors.Wrap(err, "reading metadata")
	}
	if !pypi.ValidFilename(info, filename) {
		return errors.Errorf("filename does not match metadata (%s %s)", info.Name, info.Version)
	}
	format := archive.FormatFor(filename)
	if cfg.BuildConfig && format != archive.ZipFormat {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return errors.Wrap(err, "rewinding file")
		}
		declared, err := readDeclared(format, f)
		if err != nil {
			return err
		}
		if declared.Name != "" && pypi.Normalize(declared.Name) != pypi.Normalize(info.Name) {
			return errors.Errorf("build config names %s, metadata names %s", declared.Name, info.Name)
		}
		if declared.Version != "" && declared.Version != info.Version {
			fmt.Fprintf(out, "%s %s: build config declares version %s, metadata %s\n", yellow("WARN"), filename, declared.Version, info.Version)
		}
	}
	fmt.Fprintf(out, "%s %s (%s %s)\n", green("OK"), filename, info.Name, info.Version)
	return nil
}

// Handler validates each file the way the index's upload path would.
func Handler(ctx context.Context, cfg Config, deps *Deps) (*cli.NoOutput, error) {
	var failures int
	for _, file := range cfg.Files {
		if err := checkFile(cfg, deps.IO.Out, file); err != nil {
			failures++
			fmt.Fprintf(deps.IO.Out, "%s %s: %v\n", red("FAIL"), filepath.Base(file), err)
		}
	}
	if failures > 0 {
		return nil, errors.Errorf("%d file(s) failed validation", failures)
	}
	return &cli.NoOutput{}, nil
}

// Command creates a new check command instance.
func Command() *cobra.Command {
	cfg := Config{}
	cmd := &cobra.Command{
		Use:   "check [--build-config] <file> ...",
		Short: "Validate distribution files without uploading them",
		Args:  cobra.MinimumNArgs(1),
		RunE: cli.RunE(
			&cfg,
			parseArgs,
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
	set.BoolVar(&cfg.BuildConfig, "build-config", false, "cross-check sdist metadata against its pyproject.toml or setup.cfg")
	return set
}
