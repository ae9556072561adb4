// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package pypi implements the naming, metadata, and filename rules shared by
// the index's upload, listing, and search paths.
package pypi

import (
	"regexp"
	"strings"
)

// PackageInfo holds the fields read from a distribution's metadata entry.
type PackageInfo struct {
	Name    string
	Version string
	Summary string
}

var separatorRuns = regexp.MustCompile(`[-_.]+`)

// Normalize canonicalizes a project name per PEP 503: lower-cased with every
// run of dashes, underscores, and dots collapsed to a single dash. Reads and
// writes must apply the same form for lookups to agree.
func Normalize(name string) string {
	return strings.ToLower(separatorRuns.ReplaceAllString(name, "-"))
}
