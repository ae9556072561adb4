// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package httpxtest provides a scripted httpx.BasicClient for tests.
package httpxtest

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// Call is one scripted exchange. When URL is set, the incoming request must
// match it; when Method is also set, both are checked together.
type Call struct {
	Method   string
	URL      string
	Response *http.Response
	Error    error
}

// MockClient replays scripted calls in order, failing the test on an
// unexpected or mismatched request.
type MockClient struct {
	t      *testing.T
	calls  []Call
	served int
}

// NewMockClient creates a client that serves the given calls in order.
func NewMockClient(t *testing.T, calls ...Call) *MockClient {
	return &MockClient{t: t, calls: calls}
}

func (m *MockClient) Do(req *http.Request) (*http.Response, error) {
	m.t.Helper()
	if m.served >= len(m.calls) {
		m.t.Fatalf("unexpected call: %s %s", req.Method, req.URL)
	}
	call := m.calls[m.served]
	m.served++
	if call.URL != "" {
		want, got := call.URL, req.URL.String()
		if call.Method != "" {
			want, got = call.Method+" "+want, req.Method+" "+got
		}
		if diff := cmp.Diff(want, got); diff != "" {
			m.t.Fatalf("call %d mismatch (-want +got):\n%s", m.served, diff)
		}
	}
	return call.Response, call.Error
}

// CallCount returns the number of calls served so far.
func (m *MockClient) CallCount() int {
	return m.served
}

// Body wraps a string as a response body.
func Body(s string) io.ReadCloser {
	return io.NopCloser(strings.NewReader(s))
}
