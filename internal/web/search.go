// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package web

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log"
	"net/http"
	"path"
	"strings"

	"github.com/google/pypindex/pkg/pypi"
	"github.com/pkg/errors"
)

// handleSearch serves the legacy XML-RPC search call: the most recent
// distribution of the named project, or a fixed empty document.
func (h *Handler) handleSearch(rw http.ResponseWriter, r *http.Request) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return errors.Wrap(err, "reading request body")
	}
	term, err := queryTerm(body)
	if err != nil {
		return errors.Wrap(err, "extracting query term")
	}
	project := pypi.Normalize(term)
	keys, err := h.Store.List(r.Context(), project)
	if err != nil {
		return errors.Wrapf(err, "listing %s", project)
	}
	doc := emptySearchResult
	if len(keys) > 0 {
		// List is sorted so the last key is the most recent release.
		key := keys[len(keys)-1]
		info, err := h.metadata(r.Context(), key)
		if err != nil {
			return errors.Wrapf(err, "reading metadata for %s", key)
		}
		doc = foundSearchResult(info)
	}
	rw.Header().Set("Content-Type", "text/xml")
	rw.Header().Set("Content-Length", fmt.Sprintf("%d", len(doc)))
	if _, err := io.WriteString(rw, doc); err != nil {
		log.Printf("error: %+v", errors.Wrap(err, "writing search response"))
	}
	return nil
}

// metadata reads the distribution metadata stored at key, caching per key.
func (h *Handler) metadata(ctx context.Context, key string) (pypi.PackageInfo, error) {
	return h.meta.GetOrSet(key, func() (pypi.PackageInfo, error) {
		value, err := h.Store.Value(ctx, key)
		if err != nil {
			return pypi.PackageInfo{}, errors.Wrapf(err, "reading %s", key)
		}
		defer value.Close()
		return pypi.ReadDistribution(path.Base(key), value)
	})
}

type methodCall struct {
	Params []struct {
		Members []queryMember `xml:"value>struct>member"`
	} `xml:"params>param"`
}

type queryMember struct {
	Name    string   `xml:"name"`
	Strings []string `xml:"value>array>data>value>string"`
}

// queryTerm extracts the project name from a methodCall document: the first
// string of the first "name" member holding a non-empty string array.
func queryTerm(body []byte) (string, error) {
	var call methodCall
	if err := xml.Unmarshal(body, &call); err != nil {
		return "", errors.Wrap(err, "parsing method call")
	}
	for _, p := range call.Params {
		for _, m := range p.Members {
			if m.Name != "name" {
				continue
			}
			for _, s := range m.Strings {
				if s != "" {
					return s, nil
				}
			}
		}
	}
	return "", errors.New("project name not found in query")
}

const emptySearchResult = `<methodResponse>
<params>
<param>
<value><array><data>
</data></array></value>
</param>
</params>
</methodResponse>`

func foundSearchResult(info pypi.PackageInfo) string {
	return strings.Join([]string{
		"<?xml version='1.0'?>",
		"<methodResponse>",
		"<params>",
		"<param>",
		"<value><array><data>",
		"<value><struct>",
		"<member>",
		"<name>name</name>",
		fmt.Sprintf("<value><string>%s</string></value>", info.Name),
		"</member>",
		"<member>",
		"<name>summary</name>",
		fmt.Sprintf("<value><string>%s</string></value>", info.Summary),
		"</member>",
		"<member>",
		"<name>version</name>",
		fmt.Sprintf("<value><string>%s</string></value>", info.Version),
		"</member>",
		"<member>",
		"<name>_pypi_ordering</name>",
		"<value><boolean>0</boolean></value>",
		"</member>",
		"</struct></value>",
		"</data></array></value>",
		"</param>",
		"</params>",
		"</methodResponse>",
	}, "\n")
}
