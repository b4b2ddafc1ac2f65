// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = "# nutrictl suggest\n\n" +
	"## Summary\n\nList food names\ncontaining a fragment.\n\n" +
	"## Examples\n\n```sh\n# Names containing soppa\nnutrictl  suggest soppa\n\nnutrictl suggest -o json mjölk\n```\n"

func TestBuildTLDR(t *testing.T) {
	want := "# nutrictl-suggest\n\n" +
		"> List food names containing a fragment.\n" +
		"> More information: https://github.com/staranto/nutrictl.\n\n" +
		"- Names containing soppa:\n\n`nutrictl suggest soppa`\n\n" +
		"- Example:\n\n`nutrictl suggest -o json mjölk`\n"
	assert.Equal(t, want, buildTLDR("suggest", page))
}

func TestBuildTLDR_Fallbacks(t *testing.T) {
	got := buildTLDR("cache", "# nutrictl cache\n")
	assert.Contains(t, got, "> nutrictl cache.\n")
	assert.Contains(t, got, "`nutrictl cache --help`")
}

func TestGenerate(t *testing.T) {
	root := t.TempDir()
	commands := filepath.Join(root, "docs", "commands")
	require.NoError(t, os.MkdirAll(commands, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(commands, "suggest.md"), []byte(page), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(commands, "notes.txt"), []byte("skip"), 0o644))

	n, err := generate(root, true)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	man, err := os.ReadFile(filepath.Join(root, "docs", "man", "share", "man1", "nutrictl-suggest.1"))
	require.NoError(t, err)
	assert.Contains(t, string(man), "soppa")

	tldr, err := os.ReadFile(filepath.Join(root, "docs", "tldr", "nutrictl-suggest.md"))
	require.NoError(t, err)
	assert.Equal(t, buildTLDR("suggest", page), string(tldr))

	_, err = generate(filepath.Join(root, "missing"), true)
	assert.Error(t, err)
}
