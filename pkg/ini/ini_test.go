// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package ini

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    File
		wantErr bool
	}{
		{
			name: "simple key-value pairs",
			input: `key1 = value1
key2 = value2`,
			want: File{
				"": {"key1": "value1", "key2": "value2"},
			},
		},
		{
			name: "section with key-value pairs",
			input: `[section1]
key1 = value1
key2 = value2`,
			want: File{
				"section1": {"key1": "value1", "key2": "value2"},
			},
		},
		{
			name: "multiple sections",
			input: `[section1]
key1 = value1

[section2]
key2 = value2`,
			want: File{
				"section1": {"key1": "value1"},
				"section2": {"key2": "value2"},
			},
		},
		{
			name: "multiline values",
			input: `[section]
description = This is a long
    description that spans
    multiple lines`,
			want: File{
				"section": {"description": "This is a long\ndescription that spans\nmultiple lines"},
			},
		},
		{
			name: "comments",
			input: `# This is a comment
; This is also a comment
[section]
key1 = value1  # inline comment
key2 = value2  ; another inline comment`,
			want: File{
				"section": {"key1": "value1", "key2": "value2"},
			},
		},
		{
			name: "colon separator",
			input: `[section]
key1: value1
key2: value2`,
			want: File{
				"section": {"key1": "value1", "key2": "value2"},
			},
		},
		{
			name: "empty values",
			input: `[section]
key1 =
key2 = value2`,
			want: File{
				"section": {"key1": "", "key2": "value2"},
			},
		},
		{
			name: "values with special characters",
			input: `[section]
url = https://example.com/path?query=value
email = user@example.com`,
			want: File{
				"section": {
					"url":   "https://example.com/path?query=value",
					"email": "user@example.com",
				},
			},
		},
		{
			name: "section names with dots",
			input: `[options.extras_require]
dev = pytest`,
			want: File{
				"options.extras_require": {"dev": "pytest"},
			},
		},
		{
			name: "whitespace handling",
			input: `
[section]

key1 = value1

key2 = value2

`,
			want: File{
				"section": {"key1": "value1", "key2": "value2"},
			},
		},
		{
			name: "default section before explicit sections",
			input: `default_key = default_value

[section1]
key1 = value1`,
			want: File{
				"":         {"default_key": "default_value"},
				"section1": {"key1": "value1"},
			},
		},
		{
			name:  "inline comment marker without leading whitespace is kept",
			input: `key = value# more value`,
			want: File{
				"": {"key": "value# more value"},
			},
		},
		{
			name: "keys are lowercased",
			input: `[metadata]
Name = part
VERSION = 1.0`,
			want: File{
				"metadata": {"name": "part", "version": "1.0"},
			},
		},
		{
			name: "section with separator is key-value (python compat)",
			input: `[key1=value1
`,
			want: File{
				"": {"[key1": "value1"},
			},
		},
		{
			name:    "unclosed section header",
			input:   `[section`,
			wantErr: true,
		},
		{
			name:    "no separator",
			input:   `key without separator`,
			wantErr: true,
		},
		{
			name:    "empty key",
			input:   `= value`,
			wantErr: true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(strings.NewReader(tc.input))
			if (err != nil) != tc.wantErr {
				t.Errorf("Parse() error = %v, wantErr %v", err, tc.wantErr)
				return
			}
			if tc.wantErr {
				return
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGet(t *testing.T) {
	input := `default = default_value

[section1]
key1 = value1`
	f, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	for _, tc := range []struct {
		section, key string
		want         string
		wantOK       bool
	}{
		{"", "default", "default_value", true},
		{"section1", "key1", "value1", true},
		{"section1", "missing", "", false},
		{"missing", "key1", "", false},
	} {
		got, ok := f.Get(tc.section, tc.key)
		if got != tc.want || ok != tc.wantOK {
			t.Errorf("Get(%q, %q) = (%q, %v), want (%q, %v)", tc.section, tc.key, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestParse_PythonSetupCfgExample(t *testing.T) {
	// Representative Python setup.cfg
	input := `[metadata]
name = my-package
version = 1.2.3
author = John Doe
long_description = This is a package that
    does amazing things
    across multiple lines

[options]
packages = find:
python_requires = >=3.6
install_requires =
    numpy>=1.19.0
    scipy>=1.5.0
    pandas>=1.1.0
    matplotlib

[options.extras_require]
dev =
    pytest>=6.0
    black
test =
    pytest>=6.0
    coverage`
	want := File{
		"metadata": {
			"name":             "my-package",
			"version":          "1.2.3",
			"author":           "John Doe",
			"long_description": "This is a package that\ndoes amazing things\nacross multiple lines",
		},
		"options": {
			"packages":         "find:",
			"python_requires":  ">=3.6",
			"install_requires": "\nnumpy>=1.19.0\nscipy>=1.5.0\npandas>=1.1.0\nmatplotlib",
		},
		"options.extras_require": {
			"dev":  "\npytest>=6.0\nblack",
			"test": "\npytest>=6.0\ncoverage",
		},
	}
	got, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}
