// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// The pypindex binary serves the package index HTTP handler on a local port.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/google/pypindex/internal/web"
	"github.com/google/pypindex/pkg/journal"
	"github.com/google/pypindex/pkg/storage"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var (
	port       = flag.Int("port", 8080, "port on which to serve")
	storeURL   = flag.String("storage", "mem://", "storage URL: mem://, file:///path, or gs://bucket/prefix")
	journalURL = flag.String("journal", "", "journal URL: file:///path or firestore://project[/collection]; empty disables upload journaling")
	configPath = flag.String("config", "", "optional YAML config file; explicitly set flags take precedence")
)

type config struct {
	Port    int    `yaml:"port"`
	Storage string `yaml:"storage"`
	Journal string `yaml:"journal"`
}

func loadConfig() config {
	cfg := config{Port: *port, Storage: *storeURL, Journal: *journalURL}
	if *configPath == "" {
		return cfg
	}
	f, err := os.Open(*configPath)
	if err != nil {
		log.Fatal(errors.Wrap(err, "opening config file"))
	}
	defer f.Close()
	var fromFile config
	if err := yaml.NewDecoder(f).Decode(&fromFile); err != nil {
		log.Fatal(errors.Wrap(err, "reading config file"))
	}
	if fromFile.Port != 0 {
		cfg.Port = fromFile.Port
	}
	if fromFile.Storage != "" {
		cfg.Storage = fromFile.Storage
	}
	if fromFile.Journal != "" {
		cfg.Journal = fromFile.Journal
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Port = *port
		case "storage":
			cfg.Storage = *storeURL
		case "journal":
			cfg.Journal = *journalURL
		}
	})
	return cfg
}

func main() {
	flag.Parse()
	ctx := context.Background()
	cfg := loadConfig()
	store, err := storage.FromURL(ctx, cfg.Storage)
	if err != nil {
		log.Fatal(errors.Wrap(err, "initializing storage"))
	}
	var j journal.Writer
	if cfg.Journal != "" {
		client, err := journal.FromURL(ctx, cfg.Journal)
		if err != nil {
			log.Fatal(errors.Wrap(err, "initializing journal"))
		}
		j = client
	}
	log.Printf("Server listening on port %d", cfg.Port)
	if err := http.ListenAndServe(fmt.Sprintf(":%d", cfg.Port), web.NewHandler(store, j)); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
