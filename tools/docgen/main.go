// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	md2man "github.com/cpuguy83/go-md2man/v2/md2man"
)

// docgen turns docs/commands/<cmd>.md into
//   - docs/man/share/man1/nutrictl-<cmd>.1 (the whole page, via md2man)
//   - docs/tldr/nutrictl-<cmd>.md (the summary plus the Examples block)
//
// The tldr pages are what `nutrictl <cmd> --tldr` shows.

const project = "nutrictl"

func main() {
	var (
		repoRoot      string
		onlyIfChanged bool
	)

	flag.StringVar(&repoRoot, "root", ".", "repo root")
	flag.BoolVar(&onlyIfChanged, "only-if-changed", true, "only write files if content changed")
	flag.Parse()

	n, err := generate(repoRoot, onlyIfChanged)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if n == 0 {
		fmt.Fprintf(os.Stderr, "no command markdown found under %s\n", filepath.Join(repoRoot, "docs", "commands"))
		os.Exit(1)
	}
}

func generate(repoRoot string, onlyIfChanged bool) (int, error) {
	commandsDir := filepath.Join(repoRoot, "docs", "commands")
	manDir := filepath.Join(repoRoot, "docs", "man", "share", "man1")
	tldrDir := filepath.Join(repoRoot, "docs", "tldr")

	for _, dir := range []string{manDir, tldrDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	entries, err := os.ReadDir(commandsDir)
	if err != nil {
		return 0, fmt.Errorf("reading commands dir: %w", err)
	}

	var processed int
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		cmd := strings.TrimSuffix(e.Name(), ".md")
		raw, err := os.ReadFile(filepath.Join(commandsDir, e.Name()))
		if err != nil {
			return processed, err
		}

		manPath := filepath.Join(manDir, fmt.Sprintf("%s-%s.1", project, cmd))
		if err := writeFileIfChanged(manPath, md2man.Render(raw), onlyIfChanged); err != nil {
			return processed, fmt.Errorf("writing man page for %s: %w", cmd, err)
		}

		tldrPath := filepath.Join(tldrDir, fmt.Sprintf("%s-%s.md", project, cmd))
		if err := writeFileIfChanged(tldrPath, []byte(buildTLDR(cmd, string(raw))), onlyIfChanged); err != nil {
			return processed, fmt.Errorf("writing tldr page for %s: %w", cmd, err)
		}

		processed++
	}
	return processed, nil
}

func writeFileIfChanged(path string, data []byte, onlyIfChanged bool) error {
	if onlyIfChanged {
		old, err := os.ReadFile(path)
		if err == nil && bytes.Equal(bytes.TrimSpace(old), bytes.TrimSpace(data)) {
			return nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

var (
	h1Re      = regexp.MustCompile(`(?m)^#\s+(.+)$`)
	summaryRe = regexp.MustCompile(`(?ms)^##\s+Summary\s*\n+(.+?)\n\s*\n`)
)

// summary is the first paragraph under "## Summary", or the title.
func summary(md string) string {
	if m := summaryRe.FindStringSubmatch(md); m != nil {
		return strings.Join(strings.Fields(m[1]), " ")
	}
	if m := h1Re.FindStringSubmatch(md); m != nil {
		return strings.TrimSpace(m[1]) + "."
	}
	return ""
}

type example struct {
	Desc string
	Cmd  string
}

// examples reads the first fenced block under "## Examples". Each command
// line is described by the "# ..." comment above it.
func examples(md string) []example {
	idx := strings.Index(strings.ToLower(md), "## examples")
	if idx < 0 {
		return nil
	}
	rest := md[idx:]
	start := strings.Index(rest, "```")
	if start < 0 {
		return nil
	}
	rest = rest[start+3:]
	// Drop a language tag on the opening fence.
	if nl := strings.Index(rest, "\n"); nl >= 0 {
		rest = rest[nl+1:]
	}
	end := strings.Index(rest, "```")
	if end < 0 {
		return nil
	}

	var (
		exs  []example
		desc string
	)
	for _, ln := range strings.Split(rest[:end], "\n") {
		s := strings.TrimSpace(ln)
		switch {
		case s == "":
		case strings.HasPrefix(s, "#"):
			desc = strings.TrimSpace(strings.TrimPrefix(s, "#"))
		default:
			if desc == "" {
				desc = "Example"
			}
			exs = append(exs, example{Desc: desc, Cmd: strings.Join(strings.Fields(s), " ")})
			desc = ""
		}
	}
	return exs
}

func buildTLDR(cmd, md string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s-%s\n\n", project, cmd)

	short := summary(md)
	if short == "" {
		short = project + " " + cmd
	}
	fmt.Fprintf(&b, "> %s\n", short)
	fmt.Fprintf(&b, "> More information: https://github.com/staranto/%s.\n\n", project)

	exs := examples(md)
	if len(exs) == 0 {
		exs = []example{{Desc: "Show help for the command", Cmd: fmt.Sprintf("%s %s --help", project, cmd)}}
	}
	for i, ex := range exs {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "- %s:\n\n`%s`\n", ex.Desc, ex.Cmd)
	}
	return b.String()
}
