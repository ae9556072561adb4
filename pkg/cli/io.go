// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package cli

import "io"

// IO carries the standard streams for one command invocation.
type IO struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}
