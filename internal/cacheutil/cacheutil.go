// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cacheutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/apex/log"
)

// Artifact is one file in the data directory.
type Artifact struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
}

// Dir resolves the data directory.
// Precedence:
//  1. NUTRICTL_DATA_DIR, if set and non-empty
//  2. $XDG_DATA_HOME/nutrictl
//  3. os.UserCacheDir()/nutrictl
//
// Returns ("", false) if a directory cannot be resolved.
func Dir() (string, bool) {
	if d, ok := os.LookupEnv("NUTRICTL_DATA_DIR"); ok && d != "" {
		return d, true
	}
	if d := os.Getenv("XDG_DATA_HOME"); d != "" {
		return filepath.Join(d, "nutrictl"), true
	}
	if d, err := os.UserCacheDir(); err == nil && d != "" {
		return filepath.Join(d, "nutrictl"), true
	}
	return "", false
}

// EnsureDir creates dir, and its parents, if needed.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:mnd
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}

// ArtifactName builds the deterministic file name for a cache artifact.
// Empty parts are skipped, so ArtifactName(".db", "slv", "", "v1") is
// "slv_v1.db".
func ArtifactName(ext string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "_") + ext
}

// Exists reports whether path names a regular file.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// WriteAtomic writes data to path through a temporary file in the same
// directory that is synced and renamed into place. A crash mid-write leaves
// at most a stray temporary file, never a truncated artifact at path.
func WriteAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := EnsureDir(dir); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("failed to sync %s: %w", path, err)
	}
	if err := tmp.Chmod(0o644); err != nil { //nolint:mnd
		cleanup()
		return fmt.Errorf("failed to chmod %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename %s: %w", path, err)
	}

	log.Debugf("wrote %s (%d bytes)", path, len(data))
	return nil
}

// List returns the regular files in dir sorted by name. A missing dir is
// an empty list.
func List(dir string) ([]Artifact, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read data directory: %w", err)
	}

	artifacts := make([]Artifact, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		artifacts = append(artifacts, Artifact{
			Name:    e.Name(),
			Path:    filepath.Join(dir, e.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(artifacts, func(i, j int) bool {
		return artifacts[i].Name < artifacts[j].Name
	})
	return artifacts, nil
}

// Clean removes every artifact in dir for which keep returns false and
// returns the ones removed. Failures to remove a single file are logged and
// skipped.
func Clean(dir string, keep func(Artifact) bool) ([]Artifact, error) {
	artifacts, err := List(dir)
	if err != nil {
		return nil, err
	}

	var removed []Artifact
	for _, a := range artifacts {
		if keep(a) {
			continue
		}
		if err := os.Remove(a.Path); err != nil {
			log.WithError(err).Warnf("failed to remove cache file %s", a.Path)
			continue
		}
		log.Debugf("removed cache file %s", a.Path)
		removed = append(removed, a)
	}
	return removed, nil
}
