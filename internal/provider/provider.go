// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package provider defines what a nutrition data source must offer and
// implements the Livsmedelsverket food registry as one.
package provider

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/staranto/nutrictl/internal/cacheutil"
	"github.com/staranto/nutrictl/internal/nutrition"
	"github.com/staranto/nutrictl/internal/store"
)

// DefaultSuggestLimit is how many "did you mean" names SuggestNames returns
// when no limit is configured.
const DefaultSuggestLimit = 10

// Provider answers nutrition questions about named foods.
type Provider interface {
	// Lookup returns the facts for the food called name. A food that is not
	// in the registry is reported with ok == false and a nil error.
	Lookup(ctx context.Context, name string) (facts nutrition.Facts, ok bool, err error)
	// SuggestNames returns names resembling name. It is meant for the case
	// where Lookup found nothing.
	SuggestNames(ctx context.Context, name string) ([]string, error)
	Close() error
}

// Searcher is implemented by providers that can list their foods.
type Searcher interface {
	Search(ctx context.Context, fragment string, limit int) ([]store.Food, error)
}

// Cache is implemented by providers that keep local artifacts.
type Cache interface {
	Dir() string
	Artifacts() ([]Artifact, error)
	// Clean removes artifacts of other generations, or every artifact when
	// all is set.
	Clean(all bool) ([]cacheutil.Artifact, error)
}

// Artifact is a file in the provider's data directory.
type Artifact struct {
	cacheutil.Artifact
	// Current is set for artifacts of the configured generation.
	Current bool
}

// Options configure a provider. The zero value of each field selects the
// provider's default.
type Options struct {
	DataDir      string
	APIVersion   string
	BaseURL      string
	Client       *http.Client
	SuggestLimit int
}

// Option sets one of the Options.
type Option func(*Options)

// WithDataDir sets the directory holding cache artifacts.
func WithDataDir(dir string) Option {
	return func(o *Options) { o.DataDir = dir }
}

// WithAPIVersion selects the registry snapshot, and with it the cache
// generation.
func WithAPIVersion(version string) Option {
	return func(o *Options) { o.APIVersion = version }
}

// WithBaseURL overrides the registry API root.
func WithBaseURL(url string) Option {
	return func(o *Options) { o.BaseURL = url }
}

// WithHTTPClient sets the client used for feed downloads.
func WithHTTPClient(c *http.Client) Option {
	return func(o *Options) { o.Client = c }
}

// WithSuggestLimit caps the number of suggestions. Zero or less means
// DefaultSuggestLimit.
func WithSuggestLimit(n int) Option {
	return func(o *Options) { o.SuggestLimit = n }
}

type factory func(Options) (Provider, error)

var factories = map[string]factory{
	Livsmedelsdatabasen: func(o Options) (Provider, error) {
		return NewLivsmedelsdatabasen(o)
	},
}

// Names lists the known provider identifiers.
func Names() []string {
	names := make([]string, 0, len(factories))
	for n := range factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// New builds the provider called name. It does no network or file system
// work, so an unknown name fails before anything else happens.
func New(name string, opts ...Option) (Provider, error) {
	f, ok := factories[name]
	if !ok {
		return nil, &UnknownProviderError{Name: name, Known: Names()}
	}

	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	return f(o)
}

// UnknownProviderError is returned by New for an identifier no provider
// answers to.
type UnknownProviderError struct {
	Name  string
	Known []string
}

func (e *UnknownProviderError) Error() string {
	return fmt.Sprintf("unknown provider %q (known: %s)", e.Name, strings.Join(e.Known, ", "))
}
