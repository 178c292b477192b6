// Package engine answers routing queries over the stargate graph.
//
// Every query resolves its tokens, runs one graph algorithm and returns a
// tagged result. Nothing here formats text; rendering is left to callers.
package engine

import (
	"errors"
	"fmt"

	"jumpbot/internal/graph"
	"jumpbot/internal/resolve"
)

const (
	// DefaultMaxStops caps the tokens accepted by MultiStop.
	DefaultMaxStops = 24
	// DefaultNearestCount is the number of hits a nearest-feature search returns.
	DefaultNearestCount = 3
)

// ErrTooManyStops is returned by MultiStop before any work is done.
var ErrTooManyStops = errors.New("too many stops")

// Options tunes an Engine.
type Options struct {
	PopularSystems []string
	NearestCount   int
	MaxStops       int
}

// Engine combines the immutable universe with a name resolver. It is safe for
// concurrent queries; the only mutable state is the resolver cache.
type Engine struct {
	u       *graph.Universe
	r       *resolve.Resolver
	opts    Options
	popular []string
}

// New builds an Engine. Popular systems must be canonical catalog names.
func New(u *graph.Universe, r *resolve.Resolver, opts Options) (*Engine, error) {
	if u == nil || r == nil {
		return nil, errors.New("engine: universe and resolver are required")
	}
	if opts.NearestCount <= 0 {
		opts.NearestCount = DefaultNearestCount
	}
	if opts.MaxStops <= 0 {
		opts.MaxStops = DefaultMaxStops
	}
	e := &Engine{u: u, r: r, opts: opts}
	for _, name := range opts.PopularSystems {
		canonical, ok := r.Canonical(name)
		if !ok {
			return nil, fmt.Errorf("popular system %q: %w", name, graph.ErrUnknownSystem)
		}
		e.popular = append(e.popular, canonical)
	}
	return e, nil
}

// Universe returns the catalog the engine routes over.
func (e *Engine) Universe() *graph.Universe { return e.u }

// Resolver returns the engine's name resolver.
func (e *Engine) Resolver() *resolve.Resolver { return e.r }

// Popular returns the canonical popular systems.
func (e *Engine) PopularSystems() []string { return append([]string(nil), e.popular...) }

// IsPopular reports whether name is one of the popular systems.
func (e *Engine) IsPopular(name string) bool {
	for _, p := range e.popular {
		if p == name {
			return true
		}
	}
	return false
}

// MaxStops returns the multi-stop token cap.
func (e *Engine) MaxStops() int { return e.opts.MaxStops }

// Resolve resolves a single token.
func (e *Engine) Resolve(token string) resolve.Resolution { return e.r.Resolve(token) }

// ShortestPath computes a route between canonical names on the strategy graph.
func (e *Engine) ShortestPath(start, end string, st graph.Strategy) (graph.Path, error) {
	return e.u.ShortestPath(start, end, st)
}

// SecurityTally counts the tiers of every system on p except the start.
func (e *Engine) SecurityTally(p graph.Path) graph.Tally { return e.u.Tally(p) }

func (e *Engine) endpoint(name string) *Endpoint {
	sys, _ := e.u.System(name)
	sec, _ := e.u.Security(name)
	return &Endpoint{
		Name:          name,
		Region:        sys.Region,
		Constellation: sys.Constellation,
		Security:      sec,
		Class:         sec.Class(),
	}
}

func (e *Engine) hop(i int, name string) Hop {
	sec, _ := e.u.Security(name)
	return Hop{
		Index:    i,
		System:   name,
		Region:   e.u.Region(name),
		Security: sec,
		Class:    sec.Class(),
		Stations: e.u.Stations(name),
		TradeHub: e.u.IsTradeHub(name),
	}
}

func (e *Engine) hops(names []string) []Hop {
	out := make([]Hop, len(names))
	for i, name := range names {
		out[i] = e.hop(i, name)
	}
	return out
}
