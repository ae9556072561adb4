// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package upload

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/cheggaaa/pb"
	"github.com/google/pypindex/internal/httpx"
	"github.com/google/pypindex/pkg/cli"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// Config holds all configuration for the upload command.
type Config struct {
	Index string
	Path  string
	QPS   int
	Files []string
}

// Validate ensures the configuration is valid.
func (c Config) Validate() error {
	if c.Index == "" {
		return errors.New("index is required")
	}
	if _, err := url.Parse(c.Index); err != nil {
		return errors.Wrap(err, "parsing index URL")
	}
	if c.QPS < 0 {
		return errors.New("qps must be non-negative")
	}
	if len(c.Files) == 0 {
		return errors.New("expected at least 1 file to upload")
	}
	return nil
}

// Deps holds dependencies for the command.
type Deps struct {
	IO     cli.IO
	Client httpx.BasicClient
}

func (d *Deps) SetIO(cio cli.IO) { d.IO = cio }

// InitDeps initializes Deps.
func InitDeps(context.Context) (*Deps, error) {
	return &Deps{Client: &httpx.UserAgentClient{BasicClient: http.DefaultClient, Agent: "pypindex-ctl"}}, nil
}

func parseArgs(cfg *Config, args []string) error {
	if len(args) == 0 {
		return errors.New("expected at least 1 file to upload")
	}
	cfg.Files = args
	return nil
}

func uploadFile(ctx context.Context, client httpx.BasicClient, target, file string) error {
	f, err := os.Open(file)
	if err != nil {
		return errors.Wrap(err, "opening file")
	}
	defer f.Close()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("content", filepath.Base(file))
	if err != nil {
		return errors.Wrap(err, "creating form file")
	}
	if _, err := io.Copy(fw, f); err != nil {
		return errors.Wrap(err, "reading file")
	}
	if err := mw.Close(); err != nil {
		return errors.Wrap(err, "finalizing form")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, &body)
	if err != nil {
		return errors.Wrap(err, "creating request")
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := client.Do(req)
	if err != nil {
		return errors.Wrap(err, "sending request")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(resp.Body)
		return errors.Errorf("index returned %s: %s", resp.Status, bytes.TrimSpace(msg))
	}
	return nil
}

// Handler uploads each file to the index in turn.
func Handler(ctx context.Context, cfg Config, deps *Deps) (*cli.NoOutput, error) {
	client := deps.Client
	if cfg.QPS > 0 {
		tc := httpx.NewThrottled(client, cfg.QPS)
		defer tc.Stop()
		client = tc
	}
	base, err := url.Parse(cfg.Index)
	if err != nil {
		return nil, errors.Wrap(err, "parsing index URL")
	}
	target := base.JoinPath(cfg.Path).String()
	bar := pb.New(len(cfg.Files))
	bar.Output = deps.IO.Err
	bar.Start()
	var failures int
	for _, file := range cfg.Files {
		if err := uploadFile(ctx, client, target, file); err != nil {
			failures++
			fmt.Fprintf(deps.IO.Err, "%s: %v\n", file, err)
		}
		bar.Increment()
	}
	bar.Finish()
	fmt.Fprintf(deps.IO.Out, "Uploaded %d/%d files\n", len(cfg.Files)-failures, len(cfg.Files))
	if failures > 0 {
		return nil, errors.Errorf("%d upload(s) failed", failures)
	}
	return &cli.NoOutput{}, nil
}

// Command creates a new upload command instance.
func Command() *cobra.Command {
	cfg := Config{}
	cmd := &cobra.Command{
		Use:   "upload [--index=<url>] [--path=<prefix>] [--qps=<n>] <file> ...",
		Short: "Upload distribution files to the index",
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
	set.StringVar(&cfg.Index, "index", "http://localhost:8080", "base URL of the index")
	set.StringVar(&cfg.Path, "path", "", "path prefix under which to upload")
	set.IntVar(&cfg.QPS, "qps", 0, "max uploads per second (0 for unlimited)")
	return set
}
