// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package search

import (
	"context"
	"encoding/xml"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/fatih/color"
	"github.com/google/pypindex/internal/httpx"
	"github.com/google/pypindex/pkg/cli"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	yellow = color.New(color.FgYellow).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	white  = color.New(color.FgWhite).SprintFunc()
)

// Config holds all configuration for the search command.
type Config struct {
	Index string
	Term  string
}

// Validate ensures the configuration is valid.
func (c Config) Validate() error {
	if c.Index == "" {
		return errors.New("index is required")
	}
	if c.Term == "" {
		return errors.New("search term is required")
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
	if len(args) != 1 {
		return errors.New("expected exactly 1 argument: the search term")
	}
	cfg.Term = args[0]
	return nil
}

// methodCall is the query document the legacy XML-RPC search endpoint
// expects, shaped the way pip sends it.
func methodCall(term string) string {
	return strings.Join([]string{
		"<?xml version='1.0'?>",
		"<methodCall>",
		"<methodName>search</methodName>",
		"<params>",
		"<param>",
		"<value><struct>",
		"<member>",
		"<name>name</name>",
		"<value><array><data>",
		fmt.Sprintf("<value><string>%s</string></value>", term),
		"</data></array></value>",
		"</member>",
		"</struct></value>",
		"</param>",
		"<param>",
		"<value><string>or</string></value>",
		"</param>",
		"</params>",
		"</methodCall>",
	}, "\n")
}

type methodResponse struct {
	Results []struct {
		Members []struct {
			Name   string `xml:"name"`
			String string `xml:"value>string"`
		} `xml:"member"`
	} `xml:"params>param>value>array>data>value>struct"`
}

// Handler queries the index and prints each result.
func Handler(ctx context.Context, cfg Config, deps *Deps) (*cli.NoOutput, error) {
	base, err := url.Parse(cfg.Index)
	if err != nil {
		return nil, errors.Wrap(err, "parsing index URL")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base.String(), strings.NewReader(methodCall(cfg.Term)))
	if err != nil {
		return nil, errors.Wrap(err, "creating request")
	}
	req.Header.Set("Content-Type", "text/xml")
	resp, err := deps.Client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "sending request")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("index returned %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "reading response")
	}
	var mr methodResponse
	if err := xml.Unmarshal(body, &mr); err != nil {
		return nil, errors.Wrap(err, "parsing response")
	}
	if len(mr.Results) == 0 {
		fmt.Fprintf(deps.IO.Out, "No results for %q\n", cfg.Term)
		return &cli.NoOutput{}, nil
	}
	for _, result := range mr.Results {
		fields := make(map[string]string)
		for _, m := range result.Members {
			fields[m.Name] = m.String
		}
		fmt.Fprintln(deps.IO.Out, strings.Join([]string{
			green(fields["name"]),
			yellow(fields["version"]),
			white(fields["summary"]),
		}, " "))
	}
	return &cli.NoOutput{}, nil
}

// Command creates a new search command instance.
func Command() *cobra.Command {
	cfg := Config{}
	cmd := &cobra.Command{
		Use:   "search [--index=<url>] <term>",
		Short: "Search the index for a project",
		Args:  cobra.ExactArgs(1),
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
	return set
}
