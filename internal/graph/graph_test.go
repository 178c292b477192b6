package graph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func arcCost(g *WeightedGraph, from, to string) (int, bool) {
	for _, a := range g.Arcs(from) {
		if a.To == to {
			return a.Cost, true
		}
	}
	return 0, false
}

// link builds a symmetric adjacency from an edge list, keeping first-seen order.
func link(secs map[string]string, order []string, edges [][2]string) []System {
	adj := make(map[string][]string)
	for _, e := range edges {
		adj[e[0]] = append(adj[e[0]], e[1])
		adj[e[1]] = append(adj[e[1]], e[0])
	}
	out := make([]System, 0, len(order))
	for _, name := range order {
		out = append(out, System{
			Name:          name,
			Region:        "Region " + name[:1],
			Constellation: "Const",
			TrueSec:       secs[name],
			Neighbors:     adj[name],
		})
	}
	return out
}

// chainUniverse is A-B-C-D with a B-E branch: A lowsec, B nullsec, C/D/E hisec.
func chainUniverse(t *testing.T) *Universe {
	t.Helper()
	secs := map[string]string{"A": "0.30000", "B": "-0.20000", "C": "0.80000", "D": "0.90000", "E": "0.70000"}
	systems := link(secs, []string{"A", "B", "C", "D", "E"}, [][2]string{{"A", "B"}, {"B", "C"}, {"C", "D"}, {"B", "E"}})
	u, err := NewUniverse(systems, []TradeHub{{System: "D"}}, map[string]int{"C": 2, "A": 1})
	require.NoError(t, err)
	return u
}

// detourUniverse offers a 2-jump route through nullsec N and a 3-jump hisec detour.
func detourUniverse(t *testing.T) *Universe {
	t.Helper()
	secs := map[string]string{
		"X": "0.50000", "N": "-0.30000", "Y": "0.50000", "H1": "0.60000", "H2": "0.60000",
		"L1": "0.20000", "L2": "0.30000", "L3": "0.10000",
	}
	systems := link(secs, []string{"X", "N", "Y", "H1", "H2", "L1", "L2", "L3"}, [][2]string{
		{"X", "N"}, {"N", "Y"}, {"X", "H1"}, {"H1", "H2"}, {"H2", "Y"},
		{"L1", "L2"}, {"L2", "L3"}, {"L1", "N"}, {"N", "L3"},
	})
	u, err := NewUniverse(systems, nil, nil)
	require.NoError(t, err)
	return u
}

func TestNewUniverse_RejectsBadCatalogs(t *testing.T) {
	tests := []struct {
		name    string
		systems []System
	}{
		{"missing neighbor", []System{{Name: "A", TrueSec: "0.5", Neighbors: []string{"Z"}}}},
		{"self loop", []System{{Name: "A", TrueSec: "0.5", Neighbors: []string{"A"}}}},
		{"one way", []System{
			{Name: "A", TrueSec: "0.5", Neighbors: []string{"B"}},
			{Name: "B", TrueSec: "0.5"},
		}},
		{"duplicate", []System{{Name: "A", TrueSec: "0.5"}, {Name: "A", TrueSec: "0.5"}}},
		{"bad truesec", []System{{Name: "A", TrueSec: "high"}}},
		{"empty name", []System{{TrueSec: "0.5"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewUniverse(tt.systems, nil, nil)
			assert.ErrorIs(t, err, ErrBadCatalog)
		})
	}
}

func TestNewUniverse_RejectsPOIInUnknownSystem(t *testing.T) {
	systems := []System{{Name: "A", TrueSec: "0.5"}}
	_, err := NewUniverse(systems, []TradeHub{{System: "Nowhere"}}, nil)
	assert.ErrorIs(t, err, ErrBadCatalog)
	_, err = NewUniverse(systems, nil, map[string]int{"Nowhere": 1})
	assert.ErrorIs(t, err, ErrBadCatalog)
}

func TestUniverse_Accessors(t *testing.T) {
	u := chainUniverse(t)
	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, u.Names())
	assert.Equal(t, 5, u.Len())
	assert.Equal(t, 4, u.GateCount())
	assert.Equal(t, []string{"A", "C", "E"}, u.Adj["B"])
	assert.Equal(t, "Region A", u.Region("A"))
	assert.Equal(t, "", u.Region("Q"))
	assert.Equal(t, 2, u.Stations("C"))
	assert.Equal(t, 0, u.Stations("B"))
	assert.Equal(t, 2, u.StationSystems())
	hub, ok := u.TradeHub("D")
	assert.True(t, ok)
	assert.Equal(t, "D", hub.System)
	assert.Len(t, u.TradeHubs(), 1)

	sec, ok := u.Security("B")
	require.True(t, ok)
	assert.Equal(t, "-0.2", sec.String())
	assert.Equal(t, Nullsec, u.Class("B"))
	assert.Equal(t, Nullsec, u.Class("unknown"))
}

func TestWeightedGraphs_Costs(t *testing.T) {
	u := chainUniverse(t)
	tests := []struct {
		st       Strategy
		from, to string
		want     int
	}{
		{Shortest, "A", "B", 1},
		{AvoidNull, "A", "B", HazardPenalty}, // into nullsec
		{AvoidNull, "B", "A", 1},             // into lowsec
		{AvoidNull, "B", "C", 1},
		{LowsecOnly, "B", "A", 1},
		{LowsecOnly, "A", "B", HazardPenalty},
		{LowsecOnly, "B", "C", HazardPenalty},
	}
	for _, tt := range tests {
		got, ok := arcCost(u.Graph(tt.st), tt.from, tt.to)
		require.True(t, ok, "%s %s->%s", tt.st, tt.from, tt.to)
		assert.Equal(t, tt.want, got, "%s %s->%s", tt.st, tt.from, tt.to)
	}
	_, ok := arcCost(u.Graph(Shortest), "A", "D")
	assert.False(t, ok)
}

func TestShortestPath_ChainScenario(t *testing.T) {
	u := chainUniverse(t)

	plain, err := u.ShortestPath("A", "D", Shortest)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C", "D"}, plain.Systems)
	assert.Equal(t, 3, plain.Cost)
	assert.Equal(t, 3, plain.Jumps())

	safe, err := u.ShortestPath("A", "D", AvoidNull)
	require.NoError(t, err)
	assert.Equal(t, plain.Systems, safe.Systems, "B is the only way out of A")
	assert.Equal(t, u.Tally(plain).Nullsec, u.Tally(safe).Nullsec)
	assert.Equal(t, Tally{Hisec: 2, Nullsec: 1}, u.Tally(plain))
}

func TestShortestPath_AvoidNullTakesDetour(t *testing.T) {
	u := detourUniverse(t)

	plain, err := u.ShortestPath("X", "Y", Shortest)
	require.NoError(t, err)
	assert.Equal(t, []string{"X", "N", "Y"}, plain.Systems)

	safe, err := u.ShortestPath("X", "Y", AvoidNull)
	require.NoError(t, err)
	assert.Equal(t, []string{"X", "H1", "H2", "Y"}, safe.Systems)
	assert.Equal(t, 3, safe.Cost)
	assert.Less(t, u.Tally(safe).Nullsec, u.Tally(plain).Nullsec)
}

func TestShortestPath_LowsecOnly(t *testing.T) {
	u := detourUniverse(t)

	p, err := u.ShortestPath("L1", "L3", LowsecOnly)
	require.NoError(t, err)
	assert.Equal(t, []string{"L1", "L2", "L3"}, p.Systems)
	assert.True(t, u.AllOfClass(p, Lowsec))

	// Only a penalised path exists; the search still answers, validation must reject it.
	p, err = u.ShortestPath("L1", "Y", LowsecOnly)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, p.Cost, HazardPenalty)
	assert.False(t, u.AllOfClass(p, Lowsec))
}

func TestShortestPath_TiesFollowAdjacencyOrder(t *testing.T) {
	secs := map[string]string{"S": "0.5", "P": "0.5", "Q": "0.5", "T": "0.5"}
	forward := link(secs, []string{"S", "P", "Q", "T"}, [][2]string{{"S", "P"}, {"S", "Q"}, {"P", "T"}, {"Q", "T"}})
	u, err := NewUniverse(forward, nil, nil)
	require.NoError(t, err)
	p, err := u.ShortestPath("S", "T", Shortest)
	require.NoError(t, err)
	assert.Equal(t, []string{"S", "P", "T"}, p.Systems)

	reversed := link(secs, []string{"S", "P", "Q", "T"}, [][2]string{{"S", "Q"}, {"S", "P"}, {"Q", "T"}, {"P", "T"}})
	u, err = NewUniverse(reversed, nil, nil)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		p, err = u.ShortestPath("S", "T", Shortest)
		require.NoError(t, err)
		assert.Equal(t, []string{"S", "Q", "T"}, p.Systems)
	}
}

func TestShortestPath_Errors(t *testing.T) {
	secs := map[string]string{"A": "0.5", "B": "0.5", "Z": "0.5"}
	u, err := NewUniverse(link(secs, []string{"A", "B", "Z"}, [][2]string{{"A", "B"}}), nil, nil)
	require.NoError(t, err)

	_, err = u.ShortestPath("A", "Z", Shortest)
	assert.True(t, errors.Is(err, ErrNoRoute))
	_, err = u.ShortestPath("A", "nope", Shortest)
	assert.True(t, errors.Is(err, ErrUnknownSystem))
	assert.NotContains(t, u.SystemsWithinRadius("A", u.Len()), "Z")

	p, err := u.ShortestPath("A", "A", Shortest)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Jumps())
}

// Plain Dijkstra cost must equal BFS hop distance for every reachable pair.
func TestShortestPath_PlainMatchesBFS(t *testing.T) {
	for _, u := range []*Universe{chainUniverse(t), detourUniverse(t)} {
		for _, a := range u.Names() {
			radius := u.SystemsWithinRadius(a, u.Len())
			for _, b := range u.Names() {
				hops, reachable := radius[b]
				p, err := u.ShortestPath(a, b, Shortest)
				if !reachable {
					assert.ErrorIs(t, err, ErrNoRoute)
					continue
				}
				require.NoError(t, err)
				assert.Equal(t, hops, p.Cost, "%s->%s", a, b)

				safe, err := u.ShortestPath(a, b, AvoidNull)
				require.NoError(t, err)
				assert.LessOrEqual(t, u.Tally(safe).Nullsec, u.Tally(p).Nullsec, "%s->%s", a, b)
			}
		}
	}
}

func TestNearest_ChainScenario(t *testing.T) {
	u := chainUniverse(t)

	hits := u.Nearest("A", u.NotNullsec, 1)
	assert.Equal(t, []Hit{{System: "C", Jumps: 2}}, hits)

	hits = u.Nearest("A", u.NotNullsec, 3)
	assert.Equal(t, []Hit{{System: "C", Jumps: 2}, {System: "E", Jumps: 2}, {System: "D", Jumps: 3}}, hits)

	hits = u.Nearest("A", u.NotNullsec, 10)
	assert.Len(t, hits, 3, "component exhausted")

	assert.Equal(t, []Hit{{System: "D", Jumps: 3}}, u.Nearest("A", u.IsTradeHub, 3))
	assert.Equal(t, []Hit{{System: "A", Jumps: 2}}, u.Nearest("C", u.HasStations, 3), "start never reported")
	assert.Nil(t, u.Nearest("nope", u.NotNullsec, 3))
	assert.Nil(t, u.Nearest("A", u.NotNullsec, 0))
}

func TestNearest_TruncatesToCount(t *testing.T) {
	// Hub H has four hisec neighbours; asking for two must return exactly two in adjacency order.
	secs := map[string]string{"H": "-0.5", "a": "0.5", "b": "0.5", "c": "0.5", "d": "0.5"}
	u, err := NewUniverse(link(secs, []string{"H", "a", "b", "c", "d"},
		[][2]string{{"H", "c"}, {"H", "a"}, {"H", "d"}, {"H", "b"}}), nil, nil)
	require.NoError(t, err)
	hits := u.Nearest("H", u.NotNullsec, 2)
	assert.Equal(t, []Hit{{System: "c", Jumps: 1}, {System: "a", Jumps: 1}}, hits)
}

func TestSystemsWithinRadius(t *testing.T) {
	u := chainUniverse(t)
	got := u.SystemsWithinRadius("A", 2)
	assert.Equal(t, map[string]int{"A": 0, "B": 1, "C": 2, "E": 2}, got)
	assert.Empty(t, u.SystemsWithinRadius("nope", 2))
}

func TestParseStrategy(t *testing.T) {
	tests := map[string]Strategy{"": Shortest, "shortest": Shortest, "SAFE": AvoidNull, "avoid_null": AvoidNull, "lowsec": LowsecOnly}
	for in, want := range tests {
		got, err := ParseStrategy(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseStrategy("scenic")
	assert.Error(t, err)

	var st Strategy
	require.NoError(t, st.UnmarshalText([]byte("lowsec")))
	assert.Equal(t, LowsecOnly, st)
	b, _ := AvoidNull.MarshalText()
	assert.Equal(t, "safe", string(b))
}
