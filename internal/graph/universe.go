package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownSystem is returned when a canonical name is not in the catalog.
	ErrUnknownSystem = errors.New("unknown system")
	// ErrBadCatalog wraps every structural problem found while building a Universe.
	ErrBadCatalog = errors.New("invalid catalog")
)

// System is one solar system as supplied by the catalog loader.
type System struct {
	Name          string   `json:"name"`
	Region        string   `json:"region"`
	Constellation string   `json:"constellation"`
	TrueSec       string   `json:"true_sec"` // exact decimal text, e.g. "0.45231"
	Neighbors     []string `json:"neighbors"`
}

// TradeHub marks a system with an interstellar trade center.
type TradeHub struct {
	System  string `json:"system"`
	Planet  string `json:"planet,omitempty"`
	Moon    string `json:"moon,omitempty"`
	Station string `json:"station,omitempty"`
}

// Universe holds the stargate adjacency of New Eden, per-system metadata and the
// point-of-interest tables. It is immutable once NewUniverse returns and safe for
// concurrent readers.
type Universe struct {
	names    []string // catalog order
	systems  map[string]*System
	security map[string]Security
	// Adj maps system -> neighbors in catalog order.
	Adj map[string][]string

	hubs     map[string]TradeHub
	hubOrder []string
	stations map[string]int

	graphs [strategyCount]*WeightedGraph
}

// NewUniverse validates the catalog and builds the three weighted graphs.
// Missing neighbors, self-loops, one-way links, duplicate names, malformed
// true-security and points of interest in unknown systems are all fatal.
func NewUniverse(systems []System, hubs []TradeHub, stations map[string]int) (*Universe, error) {
	u := &Universe{
		names:    make([]string, 0, len(systems)),
		systems:  make(map[string]*System, len(systems)),
		security: make(map[string]Security, len(systems)),
		Adj:      make(map[string][]string, len(systems)),
		hubs:     make(map[string]TradeHub, len(hubs)),
		stations: make(map[string]int, len(stations)),
	}

	for i := range systems {
		sys := systems[i]
		if sys.Name == "" {
			return nil, fmt.Errorf("%w: system #%d has no name", ErrBadCatalog, i)
		}
		if _, dup := u.systems[sys.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate system %q", ErrBadCatalog, sys.Name)
		}
		sec, err := ParseSecurity(sys.TrueSec)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrBadCatalog, sys.Name, err)
		}
		sys.Neighbors = append([]string(nil), sys.Neighbors...)
		u.systems[sys.Name] = &sys
		u.security[sys.Name] = sec
		u.names = append(u.names, sys.Name)
	}

	for _, name := range u.names {
		sys := u.systems[name]
		seen := make(map[string]bool, len(sys.Neighbors))
		for _, nb := range sys.Neighbors {
			if nb == name {
				return nil, fmt.Errorf("%w: %s links to itself", ErrBadCatalog, name)
			}
			other, ok := u.systems[nb]
			if !ok {
				return nil, fmt.Errorf("%w: %s links to missing system %q", ErrBadCatalog, name, nb)
			}
			if !contains(other.Neighbors, name) {
				return nil, fmt.Errorf("%w: link %s -> %s has no return link", ErrBadCatalog, name, nb)
			}
			if seen[nb] {
				continue
			}
			seen[nb] = true
			u.Adj[name] = append(u.Adj[name], nb)
		}
	}

	for _, h := range hubs {
		if _, ok := u.systems[h.System]; !ok {
			return nil, fmt.Errorf("%w: trade hub in missing system %q", ErrBadCatalog, h.System)
		}
		if _, dup := u.hubs[h.System]; !dup {
			u.hubOrder = append(u.hubOrder, h.System)
		}
		u.hubs[h.System] = h
	}
	for name, count := range stations {
		if _, ok := u.systems[name]; !ok {
			return nil, fmt.Errorf("%w: stations in missing system %q", ErrBadCatalog, name)
		}
		if count > 0 {
			u.stations[name] = count
		}
	}

	for st := Strategy(0); st < strategyCount; st++ {
		u.graphs[st] = buildWeighted(u, st)
	}
	return u, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Names returns every canonical system name in catalog order.
// The slice is shared; callers must not modify it.
func (u *Universe) Names() []string { return u.names }

// Len returns the number of systems.
func (u *Universe) Len() int { return len(u.names) }

// Has reports whether name is a canonical system name.
func (u *Universe) Has(name string) bool {
	_, ok := u.systems[name]
	return ok
}

// System returns the catalog entry for name.
func (u *Universe) System(name string) (System, bool) {
	sys, ok := u.systems[name]
	if !ok {
		return System{}, false
	}
	return *sys, true
}

// Region returns the region of name, or "" for unknown systems.
func (u *Universe) Region(name string) string {
	if sys, ok := u.systems[name]; ok {
		return sys.Region
	}
	return ""
}

// Security returns the rounded security of name.
func (u *Universe) Security(name string) (Security, bool) {
	sec, ok := u.security[name]
	return sec, ok
}

// Class returns the security tier of name. Unknown systems classify as nullsec.
func (u *Universe) Class(name string) Class {
	sec, ok := u.security[name]
	if !ok {
		return Nullsec
	}
	return sec.Class()
}

// TradeHub returns the trade hub entry for name.
func (u *Universe) TradeHub(name string) (TradeHub, bool) {
	h, ok := u.hubs[name]
	return h, ok
}

// TradeHubs returns every trade hub in load order.
func (u *Universe) TradeHubs() []TradeHub {
	out := make([]TradeHub, 0, len(u.hubOrder))
	for _, name := range u.hubOrder {
		out = append(out, u.hubs[name])
	}
	return out
}

// Stations returns the NPC station count of name (0 when none).
func (u *Universe) Stations(name string) int { return u.stations[name] }

// StationSystems returns the number of systems with at least one station.
func (u *Universe) StationSystems() int { return len(u.stations) }

// Graph returns the weighted graph consulted for strategy.
func (u *Universe) Graph(st Strategy) *WeightedGraph {
	if st < 0 || st >= strategyCount {
		return u.graphs[Shortest]
	}
	return u.graphs[st]
}

// GateCount returns the number of undirected stargate links.
func (u *Universe) GateCount() int {
	n := 0
	for _, nbs := range u.Adj {
		n += len(nbs)
	}
	return n / 2
}
