// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package httpx provides small composable wrappers over http.Client.
package httpx

import (
	"net/http"
	"time"
)

// BasicClient is the part of http.Client needed to send one request.
type BasicClient interface {
	Do(*http.Request) (*http.Response, error)
}

var _ BasicClient = http.DefaultClient

// UserAgentClient stamps a fixed User-Agent on each request before sending.
type UserAgentClient struct {
	BasicClient
	Agent string
}

var _ BasicClient = &UserAgentClient{}

func (c *UserAgentClient) Do(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", c.Agent)
	return c.BasicClient.Do(req)
}

// ThrottledClient spaces requests out at a fixed rate. Stop releases its
// timer once the client is no longer needed.
type ThrottledClient struct {
	BasicClient
	ticker *time.Ticker
}

var _ BasicClient = &ThrottledClient{}

// NewThrottled wraps client so that at most qps requests are sent per second.
func NewThrottled(client BasicClient, qps int) *ThrottledClient {
	return &ThrottledClient{client, time.NewTicker(time.Second / time.Duration(qps))}
}

func (c *ThrottledClient) Do(req *http.Request) (*http.Response, error) {
	select {
	case <-c.ticker.C:
	case <-req.Context().Done():
		return nil, req.Context().Err()
	}
	return c.BasicClient.Do(req)
}

func (c *ThrottledClient) Stop() {
	c.ticker.Stop()
}
