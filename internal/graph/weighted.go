package graph

import (
	"fmt"
	"strings"
)

// HazardPenalty is the cost of an unwanted jump in the AvoidNull and LowsecOnly
// graphs. It must stay far above the longest useful route in New Eden (well
// under 200 jumps); re-derive it against the graph diameter if the map grows.
const HazardPenalty = 10000

// Strategy picks which weighted graph a route is computed on.
type Strategy int

const (
	// Shortest minimises jump count.
	Shortest Strategy = iota
	// AvoidNull penalises every jump into nullsec.
	AvoidNull
	// LowsecOnly penalises every jump into a system that is not lowsec.
	LowsecOnly

	strategyCount
)

func (s Strategy) String() string {
	switch s {
	case Shortest:
		return "shortest"
	case AvoidNull:
		return "safe"
	case LowsecOnly:
		return "lowsec"
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

// MarshalText serializes the strategy by name.
func (s Strategy) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText accepts the names produced by String plus a few aliases.
func (s *Strategy) UnmarshalText(b []byte) error {
	st, err := ParseStrategy(string(b))
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// ParseStrategy maps a strategy name to its value. The empty string is Shortest.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "shortest", "plain":
		return Shortest, nil
	case "safe", "safer", "avoid_null", "avoidnull":
		return AvoidNull, nil
	case "lowsec", "lowsec_only":
		return LowsecOnly, nil
	}
	return Shortest, fmt.Errorf("unknown strategy %q", name)
}

// Arc is one directed, weighted edge.
type Arc struct {
	To   string
	Cost int
}

// WeightedGraph is an immutable directed view of the stargate network with a
// positive cost per jump. Arcs keep the catalog adjacency order.
type WeightedGraph struct {
	Strategy Strategy
	arcs     map[string][]Arc
}

func buildWeighted(u *Universe, st Strategy) *WeightedGraph {
	g := &WeightedGraph{Strategy: st, arcs: make(map[string][]Arc, len(u.names))}
	for _, from := range u.names {
		nbs := u.Adj[from]
		arcs := make([]Arc, 0, len(nbs))
		for _, to := range nbs {
			arcs = append(arcs, Arc{To: to, Cost: jumpCost(st, u.Class(to))})
		}
		g.arcs[from] = arcs
	}
	return g
}

// jumpCost is the price of entering a system of class c under st.
func jumpCost(st Strategy, c Class) int {
	switch st {
	case AvoidNull:
		if c == Nullsec {
			return HazardPenalty
		}
	case LowsecOnly:
		if c != Lowsec {
			return HazardPenalty
		}
	}
	return 1
}

// Arcs returns the outgoing arcs of from. The slice is shared.
func (g *WeightedGraph) Arcs(from string) []Arc { return g.arcs[from] }
