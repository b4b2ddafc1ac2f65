// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package provider

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/staranto/nutrictl/internal/cacheutil"
	"github.com/staranto/nutrictl/internal/nutrition"
	"github.com/staranto/nutrictl/internal/registry"
	"github.com/staranto/nutrictl/internal/store"
)

const (
	// Livsmedelsdatabasen is the identifier of the Livsmedelsverket provider.
	Livsmedelsdatabasen = "livsmedelsdatabasen"

	DefaultBaseURL    = "http://www7.slv.se/apilivsmedel/LivsmedelService.svc/Livsmedel/"
	DefaultAPIVersion = "20190101"

	lockRetry = 100 * time.Millisecond
)

// Feed is one registry sub-API.
type Feed struct {
	Name   string
	Suffix string
}

// Feeds are downloaded before every build. Only FactsFeed is parsed; the
// classification feed is kept alongside it as part of the generation.
var (
	FactsFeed          = Feed{Name: "naringsvarde", Suffix: "Naringsvarde/"}
	ClassificationFeed = Feed{Name: "klassificering", Suffix: "Klassificering/"}
	Feeds              = []Feed{FactsFeed, ClassificationFeed}
)

// State is where a cache generation is in its build.
type State int

const (
	StateAbsent State = iota
	StateFetching
	StateParsing
	StateReady
)

func (s State) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StateFetching:
		return "fetching"
	case StateParsing:
		return "parsing"
	case StateReady:
		return "ready"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Manager is the Livsmedelsverket provider. It owns one cache generation,
// keyed by API version, and builds it at most once: feeds are downloaded if
// they are not on disk, parsed, and bulk loaded into a store that only
// becomes visible once it is complete.
//
// A Manager is safe for concurrent use. Builds are also serialized across
// processes by a lock file in the data directory.
type Manager struct {
	dir          string
	version      string
	baseURL      string
	client       *http.Client
	suggestLimit int

	mu    sync.Mutex
	state State
	store *store.Store
}

var (
	_ Provider = (*Manager)(nil)
	_ Searcher = (*Manager)(nil)
	_ Cache    = (*Manager)(nil)
)

// NewLivsmedelsdatabasen builds the provider. Nothing is touched on disk or
// on the network until the first call that needs data.
func NewLivsmedelsdatabasen(o Options) (*Manager, error) {
	m := &Manager{
		dir:          o.DataDir,
		version:      o.APIVersion,
		baseURL:      o.BaseURL,
		client:       o.Client,
		suggestLimit: o.SuggestLimit,
	}

	if m.dir == "" {
		dir, ok := cacheutil.Dir()
		if !ok {
			return nil, errors.New("unable to resolve a data directory, set NUTRICTL_DATA_DIR")
		}
		m.dir = dir
	}
	if m.version == "" {
		m.version = DefaultAPIVersion
	}
	if m.baseURL == "" {
		m.baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(m.baseURL, "/") {
		m.baseURL += "/"
	}
	if m.client == nil {
		m.client = &http.Client{}
	}
	if m.suggestLimit <= 0 {
		m.suggestLimit = DefaultSuggestLimit
	}

	return m, nil
}

// Dir is the data directory.
func (m *Manager) Dir() string { return m.dir }

// Version is the API version, and so the cache generation, in use.
func (m *Manager) Version() string { return m.version }

// State reports the build state of the generation.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// FeedURL is where feed is downloaded from.
func (m *Manager) FeedURL(feed Feed) string {
	return m.baseURL + feed.Suffix + m.version
}

// FeedPath is where feed's raw payload is kept.
func (m *Manager) FeedPath(feed Feed) string {
	return filepath.Join(m.dir, cacheutil.ArtifactName(".xml", Livsmedelsdatabasen, feed.Name, m.version))
}

// StorePath is the table artifact. Its existence means the generation is
// built.
func (m *Manager) StorePath() string {
	return filepath.Join(m.dir, cacheutil.ArtifactName(".db", Livsmedelsdatabasen, m.version))
}

func (m *Manager) lockPath() string {
	return filepath.Join(m.dir, cacheutil.ArtifactName(".lock", Livsmedelsdatabasen, m.version))
}

func (m *Manager) buildPath() string {
	return m.StorePath() + ".tmp"
}

// EnsureReady walks the generation to StateReady. The first call may
// download and build; once Ready, calls return immediately. On error the
// state is back at StateAbsent and no store is left in place, so a later
// call starts over, reusing whatever feeds were already saved.
func (m *Manager) EnsureReady(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateReady {
		return nil
	}

	if err := cacheutil.EnsureDir(m.dir); err != nil {
		return err
	}

	lock := flock.New(m.lockPath())
	locked, err := lock.TryLockContext(ctx, lockRetry)
	if err != nil {
		return fmt.Errorf("failed to lock cache: %w", err)
	}
	if !locked {
		return fmt.Errorf("failed to lock cache %s", m.lockPath())
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			log.WithError(err).Warn("failed to unlock cache")
		}
	}()

	if !cacheutil.Exists(m.StorePath()) {
		if err := m.build(ctx); err != nil {
			m.state = StateAbsent
			return err
		}
	}

	s, err := store.Open(m.StorePath())
	if err != nil {
		m.state = StateAbsent
		return err
	}

	m.store = s
	m.transition(StateReady)
	return nil
}

func (m *Manager) transition(to State) {
	log.WithFields(log.Fields{
		"version": m.version,
		"from":    m.state,
		"to":      to,
	}).Debug("cache state")
	m.state = to
}

func (m *Manager) build(ctx context.Context) error {
	m.transition(StateFetching)
	if err := m.fetch(ctx); err != nil {
		return err
	}

	m.transition(StateParsing)
	return m.load(ctx)
}

// fetch downloads, in parallel, every feed that is not saved yet. The first
// failure cancels the other downloads.
func (m *Manager) fetch(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	for _, feed := range Feeds {
		path := m.FeedPath(feed)
		if cacheutil.Exists(path) {
			log.Debugf("feed %s already saved at %s", feed.Name, path)
			continue
		}

		g.Go(func() error {
			body, err := download(gctx, m.client, feed.Name, m.FeedURL(feed))
			if err != nil {
				return err
			}
			return cacheutil.WriteAtomic(path, body)
		})
	}

	return g.Wait()
}

// load parses the facts feed into a store built under a temporary name and
// renames it into place once the insert has committed.
func (m *Manager) load(ctx context.Context) error {
	tmp := m.buildPath()
	removeBuild := func() {
		for _, p := range []string{tmp, tmp + "-journal", tmp + "-wal", tmp + "-shm"} {
			if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
				log.WithError(err).Warnf("failed to remove %s", p)
			}
		}
	}

	// A build interrupted by a crash leaves its file behind.
	removeBuild()

	s, err := store.Create(tmp)
	if err != nil {
		return err
	}

	n, err := s.InsertAll(ctx, m.foods())
	if cerr := s.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("failed to close store: %w", cerr)
	}
	if err != nil {
		removeBuild()
		return err
	}

	if err := os.Rename(tmp, m.StorePath()); err != nil {
		removeBuild()
		return fmt.Errorf("failed to publish store: %w", err)
	}

	log.WithFields(log.Fields{"foods": n, "path": m.StorePath()}).Info("built cache")
	return nil
}

// foods streams store rows out of the facts feed. Foods missing an
// identifying field are skipped; any other error ends the sequence.
func (m *Manager) foods() iter.Seq2[store.Food, error] {
	return func(yield func(store.Food, error) bool) {
		for rec, err := range registry.ParseFile(m.FeedPath(FactsFeed)) {
			if err != nil {
				var missing *registry.MissingFieldError
				if errors.As(err, &missing) {
					log.WithError(err).Warn("skipping food")
					continue
				}
				yield(store.Food{}, err)
				return
			}

			food, err := store.FoodFromRecord(rec)
			if !yield(food, err) || err != nil {
				return
			}
		}
	}
}

func (m *Manager) ready(ctx context.Context) (*store.Store, error) {
	if err := m.EnsureReady(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.store == nil {
		return nil, errors.New("provider is closed")
	}
	return m.store, nil
}

// Lookup implements Provider.
func (m *Manager) Lookup(ctx context.Context, name string) (nutrition.Facts, bool, error) {
	s, err := m.ready(ctx)
	if err != nil {
		return nutrition.Facts{}, false, err
	}

	food, ok, err := s.FindExact(ctx, name)
	if err != nil || !ok {
		return nutrition.Facts{}, false, err
	}
	return food.Facts(), true, nil
}

// SuggestNames implements Provider. Names are distinct, in Swedish
// alphabetical order, and at most the configured limit.
func (m *Manager) SuggestNames(ctx context.Context, name string) ([]string, error) {
	s, err := m.ready(ctx)
	if err != nil {
		return nil, err
	}

	matches, err := s.FindLike(ctx, name)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(matches))
	names := make([]string, 0, len(matches))
	for _, n := range matches {
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}

	collate.New(language.Swedish).SortStrings(names)

	if len(names) > m.suggestLimit {
		names = names[:m.suggestLimit]
	}
	return names, nil
}

// Search implements Searcher.
func (m *Manager) Search(ctx context.Context, fragment string, limit int) ([]store.Food, error) {
	s, err := m.ready(ctx)
	if err != nil {
		return nil, err
	}
	return s.Search(ctx, fragment, limit)
}

// Artifacts implements Cache.
func (m *Manager) Artifacts() ([]Artifact, error) {
	files, err := cacheutil.List(m.dir)
	if err != nil {
		return nil, err
	}

	artifacts := make([]Artifact, 0, len(files))
	for _, f := range files {
		artifacts = append(artifacts, Artifact{Artifact: f, Current: m.isCurrent(f)})
	}
	return artifacts, nil
}

// Clean implements Cache. The open store, if any, is closed first. Every
// generation's lock is taken before its files go; a generation whose lock is
// held elsewhere is being built and is left alone. Lock files themselves are
// never removed, since another process may be waiting on one.
func (m *Manager) Clean(all bool) ([]cacheutil.Artifact, error) {
	if all {
		if err := m.Close(); err != nil {
			return nil, err
		}
	}

	files, err := cacheutil.List(m.dir)
	if err != nil {
		return nil, err
	}

	busy := map[string]bool{}
	for _, f := range files {
		version, ok := lockVersion(f.Name)
		if !ok {
			continue
		}
		lock := flock.New(f.Path)
		locked, err := lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("failed to lock %s: %w", f.Name, err)
		}
		if !locked {
			log.Warnf("cache generation %s is being built, leaving it alone", version)
			busy[version] = true
			continue
		}
		defer func() {
			if err := lock.Unlock(); err != nil {
				log.WithError(err).Warnf("failed to unlock %s", f.Name)
			}
		}()
	}

	return cacheutil.Clean(m.dir, func(a cacheutil.Artifact) bool {
		if !strings.HasPrefix(a.Name, Livsmedelsdatabasen+"_") {
			return true
		}
		if _, ok := lockVersion(a.Name); ok {
			return true
		}
		for version := range busy {
			if inGeneration(a.Name, version) {
				return true
			}
		}
		return !all && m.isCurrent(a)
	})
}

func (m *Manager) isCurrent(a cacheutil.Artifact) bool {
	return inGeneration(a.Name, m.version)
}

// inGeneration reports whether name is one of version's artifacts, counting
// an unfinished build and its SQLite side files.
func inGeneration(name, version string) bool {
	db := cacheutil.ArtifactName(".db", Livsmedelsdatabasen, version)
	if name == db || strings.HasPrefix(name, db+".tmp") {
		return true
	}
	if name == cacheutil.ArtifactName(".lock", Livsmedelsdatabasen, version) {
		return true
	}
	for _, feed := range Feeds {
		if name == cacheutil.ArtifactName(".xml", Livsmedelsdatabasen, feed.Name, version) {
			return true
		}
	}
	return false
}

// lockVersion returns the generation a lock file name belongs to.
func lockVersion(name string) (string, bool) {
	rest, ok := strings.CutPrefix(name, Livsmedelsdatabasen+"_")
	if !ok {
		return "", false
	}
	version, ok := strings.CutSuffix(rest, ".lock")
	if !ok || version == "" {
		return "", false
	}
	return version, true
}

// Close releases the store. A later call that needs data reopens it without
// rebuilding.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.store == nil {
		return nil
	}
	err := m.store.Close()
	m.store = nil
	m.state = StateAbsent
	return err
}
