// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package ini reads the INI dialect of setup.cfg files, following Python's
// configparser with inline comments enabled: = or : separators, # and ;
// comments, lowercased keys, and indented continuation lines. It is laxer
// than configparser about structure: keys before the first section header
// land in the "" section, and duplicate keys and sections merge rather than
// error.
package ini

import (
	"bufio"
	"io"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// File maps section names to their key-value pairs. Keys appearing before
// any section header land in the "" section.
type File map[string]map[string]string

// Get returns the value for a key in a section and whether it was present.
func (f File) Get(section, key string) (string, bool) {
	v, ok := f[section][key]
	return v, ok
}

// Parse reads an INI document from r. Duplicate section headers merge,
// continuation lines must be indented deeper than their key, and blank lines
// inside a value are kept only when more continuation follows.
func Parse(r io.Reader) (File, error) {
	p := parser{file: File{}}
	scanner := bufio.NewScanner(r)
	var n int
	for scanner.Scan() {
		n++
		if err := p.line(scanner.Text()); err != nil {
			return nil, errors.Wrapf(err, "line %d", n)
		}
	}
	p.flush()
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading input")
	}
	return p.file, nil
}

type parser struct {
	file    File
	section map[string]string
	key     string
	value   strings.Builder
	indent  int
	open    bool
	blanks  int
}

func (p *parser) line(raw string) error {
	trimmed := strings.TrimLeftFunc(raw, unicode.IsSpace)
	indent := len(raw) - len(trimmed)
	comment := len(trimmed) > 0 && (trimmed[0] == '#' || trimmed[0] == ';')
	if p.open {
		switch {
		case comment:
			// Comments do not break a value block.
			return nil
		case len(trimmed) == 0:
			p.blanks++
			return nil
		case indent > p.indent:
			if i := inlineComment(trimmed); i != -1 {
				trimmed = trimmed[:i]
			}
			for ; p.blanks > 0; p.blanks-- {
				p.value.WriteByte('\n')
			}
			p.value.WriteByte('\n')
			p.value.WriteString(strings.TrimSpace(trimmed))
			return nil
		default:
			p.flush()
		}
	}
	if len(trimmed) == 0 || comment {
		return nil
	}
	line := trimmed
	if i := inlineComment(line); i != -1 {
		line = strings.TrimSpace(line[:i])
		if line == "" {
			return nil
		}
	}
	if line[0] == '[' {
		end := strings.LastIndexByte(line, ']')
		if end > 1 {
			p.enter(line[1:end])
			return nil
		}
		// configparser reads a malformed header that still carries a
		// separator as a key-value line.
		if !strings.ContainsAny(line, "=:") {
			if end == -1 {
				return errors.New("unclosed section header")
			}
			return errors.New("empty section name")
		}
	}
	sep := strings.IndexAny(line, "=:")
	if sep == -1 {
		return errors.New("no key-value separator found")
	}
	key := strings.TrimSpace(line[:sep])
	if key == "" {
		return errors.New("empty key name")
	}
	p.flush()
	p.key = strings.ToLower(key)
	p.indent = indent
	p.open = true
	p.value.WriteString(strings.TrimSpace(line[sep+1:]))
	return nil
}

func (p *parser) enter(name string) {
	if _, ok := p.file[name]; !ok {
		p.file[name] = map[string]string{}
	}
	p.section = p.file[name]
}

func (p *parser) flush() {
	p.open = false
	p.blanks = 0
	if p.key == "" {
		return
	}
	if p.section == nil {
		p.enter("")
	}
	p.section[p.key] = p.value.String()
	p.value.Reset()
	p.key = ""
}

// inlineComment returns the byte index of the first # or ; preceded by
// whitespace, or -1.
func inlineComment(s string) int {
	prev := rune(-1)
	for i, r := range s {
		if (r == '#' || r == ';') && prev != -1 && unicode.IsSpace(prev) {
			return i
		}
		prev = r
	}
	return -1
}
