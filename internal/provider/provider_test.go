// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package provider

import (
	"context"
	"embed"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/nutrictl/internal/nutrition"
	"github.com/staranto/nutrictl/internal/registry"
	"github.com/staranto/nutrictl/internal/store"
)

//go:embed testdata/*.xml
var fixtures embed.FS

// registryServer fakes the registry API. Each feed suffix is served from the
// named fixture; status overrides answer with an HTML error page instead.
type registryServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests map[string]int
	facts    string
	status   map[string]int
}

func newRegistryServer(t *testing.T) *registryServer {
	t.Helper()
	rs := &registryServer{
		requests: map[string]int{},
		facts:    "naringsvarde.xml",
		status:   map[string]int{},
	}
	rs.Server = httptest.NewServer(http.HandlerFunc(rs.serve))
	t.Cleanup(rs.Close)
	return rs
}

func (rs *registryServer) serve(w http.ResponseWriter, r *http.Request) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	feed := strings.Split(strings.TrimPrefix(r.URL.Path, "/"), "/")[0]
	rs.requests[feed]++

	if code, ok := rs.status[feed]; ok {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(code)
		_, _ = w.Write([]byte(`<html><head><title>Error</title><style>p{}</style></head>` +
			`<body><h1>Request Error</h1><p>The server encountered   an error.</p></body></html>`))
		return
	}

	name := "klassificering.xml"
	if feed == "Naringsvarde" {
		name = rs.facts
	}
	data, err := fixtures.ReadFile("testdata/" + name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	_, _ = w.Write(data)
}

func (rs *registryServer) count(feed string) int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.requests[feed]
}

func (rs *registryServer) clearStatus(feed string) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	delete(rs.status, feed)
}

func (rs *registryServer) total() int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	n := 0
	for _, c := range rs.requests {
		n += c
	}
	return n
}

func newManager(t *testing.T, rs *registryServer, dir string, opts ...Option) *Manager {
	t.Helper()
	o := Options{DataDir: dir, BaseURL: rs.URL, Client: rs.Client()}
	for _, opt := range opts {
		opt(&o)
	}
	m, err := NewLivsmedelsdatabasen(o)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestNew_UnknownProvider(t *testing.T) {
	rs := newRegistryServer(t)
	dir := filepath.Join(t.TempDir(), "data")

	_, err := New("openfoodfacts", WithDataDir(dir), WithBaseURL(rs.URL))
	var unknown *UnknownProviderError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "openfoodfacts", unknown.Name)
	assert.Contains(t, unknown.Known, Livsmedelsdatabasen)

	assert.Zero(t, rs.total())
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err), "no cache activity for an unknown provider")
}

func TestNew_Livsmedelsdatabasen(t *testing.T) {
	p, err := New(Livsmedelsdatabasen, WithDataDir(t.TempDir()))
	require.NoError(t, err)
	defer p.Close()

	m, ok := p.(*Manager)
	require.True(t, ok)
	assert.Equal(t, DefaultAPIVersion, m.Version())
	assert.Equal(t,
		DefaultBaseURL+"Naringsvarde/"+DefaultAPIVersion,
		m.FeedURL(FactsFeed))
	assert.Equal(t, StateAbsent, m.State())
}

func TestArtifactLayout(t *testing.T) {
	rs := newRegistryServer(t)
	dir := t.TempDir()
	m := newManager(t, rs, dir, WithAPIVersion("20240101"))

	assert.Equal(t, filepath.Join(dir, "livsmedelsdatabasen_naringsvarde_20240101.xml"), m.FeedPath(FactsFeed))
	assert.Equal(t, filepath.Join(dir, "livsmedelsdatabasen_klassificering_20240101.xml"), m.FeedPath(ClassificationFeed))
	assert.Equal(t, filepath.Join(dir, "livsmedelsdatabasen_20240101.db"), m.StorePath())
	assert.Equal(t, rs.URL+"/Klassificering/20240101", m.FeedURL(ClassificationFeed))
}

func TestLookup_Found(t *testing.T) {
	ctx := context.Background()
	rs := newRegistryServer(t)
	m := newManager(t, rs, t.TempDir())

	facts, ok, err := m.Lookup(ctx, "Apple")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Apple", facts.Name())
	assert.Equal(t, 100, facts.Number(), "first food in registry order")
	assert.Equal(t, 1, facts.Len())

	fat, ok := facts.Get(nutrition.Fat)
	require.True(t, ok)
	q, err := fat.Canonical()
	require.NoError(t, err)
	assert.InDelta(t, 0.2, q.Magnitude, 1e-9)
	assert.Equal(t, nutrition.Gram, q.Unit)

	facts, ok, err = m.Lookup(ctx, "Ärtsoppa")
	require.NoError(t, err)
	require.True(t, ok)
	energy, ok := facts.Get(nutrition.Energy)
	require.True(t, ok)
	assert.Equal(t, 1020.0, energy.Magnitude)
}

func TestLookup_MissAndSuggest(t *testing.T) {
	ctx := context.Background()
	rs := newRegistryServer(t)
	m := newManager(t, rs, t.TempDir())

	_, ok, err := m.Lookup(ctx, "Nonexistent")
	require.NoError(t, err)
	assert.False(t, ok)

	names, err := m.SuggestNames(ctx, "Appl")
	require.NoError(t, err)
	assert.Equal(t, []string{"Apple"}, names, "duplicates are collapsed")
}

func TestSuggestNames_SwedishOrder(t *testing.T) {
	ctx := context.Background()
	rs := newRegistryServer(t)
	m := newManager(t, rs, t.TempDir())

	names, err := m.SuggestNames(ctx, "soppa")
	require.NoError(t, err)
	// Å sorts before Ä in Swedish, the reverse of code point order. The
	// nameless soup was skipped at build time.
	assert.Equal(t, []string{"Åkerbärssoppa", "Ärtsoppa"}, names)
}

func TestSuggestNames_Limit(t *testing.T) {
	ctx := context.Background()
	rs := newRegistryServer(t)
	m := newManager(t, rs, t.TempDir(), WithSuggestLimit(1))

	names, err := m.SuggestNames(ctx, "soppa")
	require.NoError(t, err)
	assert.Equal(t, []string{"Åkerbärssoppa"}, names)
}

func TestEnsureReady_Idempotent(t *testing.T) {
	ctx := context.Background()
	rs := newRegistryServer(t)
	dir := t.TempDir()
	m := newManager(t, rs, dir)

	require.NoError(t, m.EnsureReady(ctx))
	assert.Equal(t, StateReady, m.State())
	assert.Equal(t, len(Feeds), rs.total())

	count := func() int64 {
		s, err := store.Open(m.StorePath())
		require.NoError(t, err)
		defer s.Close()
		n, err := s.Count(ctx)
		require.NoError(t, err)
		return n
	}
	rows := count()
	assert.EqualValues(t, 4, rows)

	require.NoError(t, m.EnsureReady(ctx))
	assert.Equal(t, len(Feeds), rs.total(), "no network on the second call")
	assert.Equal(t, rows, count())

	// A new process finds the store and goes straight to Ready.
	again := newManager(t, rs, dir)
	_, ok, err := again.Lookup(ctx, "Apple")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, len(Feeds), rs.total())
	assert.Equal(t, rows, count())
}

func TestEnsureReady_UsesSavedFeeds(t *testing.T) {
	ctx := context.Background()
	rs := newRegistryServer(t)
	dir := t.TempDir()
	m := newManager(t, rs, dir)

	for _, feed := range Feeds {
		name := "klassificering.xml"
		if feed == FactsFeed {
			name = "naringsvarde.xml"
		}
		data, err := fixtures.ReadFile("testdata/" + name)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(m.FeedPath(feed), data, 0o600))
	}

	require.NoError(t, m.EnsureReady(ctx))
	assert.Zero(t, rs.total())
}

func TestEnsureReady_UpstreamError(t *testing.T) {
	ctx := context.Background()
	rs := newRegistryServer(t)
	rs.status["Naringsvarde"] = http.StatusInternalServerError
	dir := t.TempDir()
	m := newManager(t, rs, dir)

	err := m.EnsureReady(ctx)
	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream), "got %v", err)
	assert.Equal(t, http.StatusInternalServerError, upstream.StatusCode)
	assert.Equal(t, FactsFeed.Name, upstream.Feed)
	assert.Equal(t, "Request Error The server encountered an error.", upstream.Detail)

	assert.Equal(t, StateAbsent, m.State())
	assert.NoFileExists(t, m.StorePath())
	assert.NoFileExists(t, m.FeedPath(FactsFeed))

	_, _, err = m.Lookup(ctx, "Apple")
	require.Error(t, err, "a failed build is never observed as ready")

	// Once upstream recovers, only the missing feed is fetched again.
	rs.clearStatus("Naringsvarde")
	before := rs.count("Naringsvarde")
	require.NoError(t, m.EnsureReady(ctx))
	assert.Equal(t, before+1, rs.count("Naringsvarde"))
	assert.FileExists(t, m.StorePath())
}

func TestEnsureReady_MalformedValueAbortsBuild(t *testing.T) {
	ctx := context.Background()
	rs := newRegistryServer(t)
	rs.facts = "malformed.xml"
	m := newManager(t, rs, t.TempDir())

	err := m.EnsureReady(ctx)
	var malformed *registry.MalformedValueError
	require.True(t, errors.As(err, &malformed), "got %v", err)
	assert.Equal(t, "Broken", malformed.Food)

	assert.Equal(t, StateAbsent, m.State())
	assert.NoFileExists(t, m.StorePath())
	assert.NoFileExists(t, m.StorePath()+".tmp")
}

func TestEnsureReady_RemovesInterruptedBuild(t *testing.T) {
	ctx := context.Background()
	rs := newRegistryServer(t)
	m := newManager(t, rs, t.TempDir())

	require.NoError(t, os.WriteFile(m.StorePath()+".tmp", []byte("half a database"), 0o600))

	require.NoError(t, m.EnsureReady(ctx))
	assert.NoFileExists(t, m.StorePath()+".tmp")

	_, ok, err := m.Lookup(ctx, "Apple")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEnsureReady_Canceled(t *testing.T) {
	rs := newRegistryServer(t)
	m := newManager(t, rs, t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.Error(t, m.EnsureReady(ctx))
	assert.NoFileExists(t, m.StorePath())
}

func TestEnsureReady_Concurrent(t *testing.T) {
	ctx := context.Background()
	rs := newRegistryServer(t)
	m := newManager(t, rs, t.TempDir())

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, errs[i] = m.Lookup(ctx, "Apple")
		}()
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, len(Feeds), rs.total())
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	rs := newRegistryServer(t)
	m := newManager(t, rs, t.TempDir())

	foods, err := m.Search(ctx, "soppa", 0)
	require.NoError(t, err)
	require.Len(t, foods, 2)
	assert.Equal(t, "Ärtsoppa", foods[0].Name, "registry order")
}

func TestCacheArtifactsAndClean(t *testing.T) {
	ctx := context.Background()
	rs := newRegistryServer(t)
	dir := t.TempDir()

	old := newManager(t, rs, dir, WithAPIVersion("20180101"))
	require.NoError(t, old.EnsureReady(ctx))
	require.NoError(t, old.Close())

	m := newManager(t, rs, dir)
	require.NoError(t, m.EnsureReady(ctx))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0o600))

	artifacts, err := m.Artifacts()
	require.NoError(t, err)
	current := 0
	for _, a := range artifacts {
		if a.Current {
			current++
		}
	}
	// Two feeds, the store and the lock file.
	assert.Equal(t, 4, current)

	removed, err := m.Clean(false)
	require.NoError(t, err)
	for _, a := range removed {
		assert.Contains(t, a.Name, "20180101")
	}
	assert.NoFileExists(t, old.StorePath())
	assert.FileExists(t, m.StorePath())

	// The store survives a partial clean and stays usable.
	_, ok, err := m.Lookup(ctx, "Apple")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = m.Clean(true)
	require.NoError(t, err)
	assert.NoFileExists(t, m.StorePath())
	assert.FileExists(t, filepath.Join(dir, "notes.txt"), "foreign files are left alone")
	assert.Equal(t, StateAbsent, m.State())
}

func TestClean_LeavesGenerationBeingBuilt(t *testing.T) {
	ctx := context.Background()
	rs := newRegistryServer(t)
	dir := t.TempDir()

	old := newManager(t, rs, dir, WithAPIVersion("20180101"))
	require.NoError(t, old.EnsureReady(ctx))
	require.NoError(t, old.Close())

	m := newManager(t, rs, dir)
	require.NoError(t, m.EnsureReady(ctx))
	require.NoError(t, m.Close())

	// Another process is mid-build on both generations.
	oldTmp := old.StorePath() + ".tmp"
	currentTmp := m.StorePath() + ".tmp"
	require.NoError(t, os.WriteFile(oldTmp, []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(currentTmp, []byte("x"), 0o600))
	oldLock := flock.New(old.lockPath())
	currentLock := flock.New(m.lockPath())
	for _, l := range []*flock.Flock{oldLock, currentLock} {
		locked, err := l.TryLock()
		require.NoError(t, err)
		require.True(t, locked)
	}

	removed, err := m.Clean(false)
	require.NoError(t, err)
	assert.Empty(t, removed)
	assert.FileExists(t, oldTmp)
	assert.FileExists(t, old.StorePath())
	assert.FileExists(t, currentTmp)

	removed, err = m.Clean(true)
	require.NoError(t, err)
	assert.Empty(t, removed)
	assert.FileExists(t, m.StorePath())

	require.NoError(t, oldLock.Unlock())
	require.NoError(t, currentLock.Unlock())

	_, err = m.Clean(true)
	require.NoError(t, err)
	for _, p := range []string{oldTmp, old.StorePath(), currentTmp, m.StorePath()} {
		assert.NoFileExists(t, p)
	}
	assert.FileExists(t, old.lockPath(), "lock files stay")
	assert.FileExists(t, m.lockPath(), "lock files stay")
}

func TestInGeneration(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{name: "livsmedelsdatabasen_2019.01.db", want: true},
		{name: "livsmedelsdatabasen_2019.01.db.tmp", want: true},
		{name: "livsmedelsdatabasen_2019.01.db.tmp-journal", want: true},
		{name: "livsmedelsdatabasen_2019.01.lock", want: true},
		{name: "livsmedelsdatabasen_naringsvarde_2019.01.xml", want: true},
		{name: "livsmedelsdatabasen_2019.01.1.db", want: false},
		{name: "livsmedelsdatabasen_naringsvarde_2018.xml", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, inGeneration(tt.name, "2019.01"))
		})
	}

	version, ok := lockVersion("livsmedelsdatabasen_2019.01.lock")
	assert.True(t, ok)
	assert.Equal(t, "2019.01", version)
	_, ok = lockVersion("livsmedelsdatabasen_2019.01.db")
	assert.False(t, ok)
}

func TestBodyText(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "html", body: "<html><body><p>Bad  request</p><script>x()</script></body></html>", want: "Bad request"},
		{name: "plain", body: "  service\nunavailable ", want: "service unavailable"},
		{name: "empty", body: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, bodyText([]byte(tt.body)))
		})
	}

	long := bodyText([]byte(strings.Repeat("ö", maxDetail)))
	assert.True(t, strings.HasSuffix(long, "..."))
	assert.LessOrEqual(t, len(long), maxDetail+3)
}
