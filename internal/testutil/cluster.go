// Package testutil builds a small, fully known star cluster for tests.
package testutil

import (
	"testing"

	"jumpbot/internal/engine"
	"jumpbot/internal/graph"
	"jumpbot/internal/resolve"
	"jumpbot/internal/sde"
)

// Catalog returns the cluster:
//
//	Jita - Perimeter - Urlen - Amarr        (hisec detour, 3 jumps)
//	Jita - Ostingele - Amarr                (nullsec shortcut, 2 jumps)
//	Jita - Tama - Amamake - Rancer - Ostingele
//	Urlen - Taisy, Ostingele - J0VE-A - 1DQ1-A - 9-VO0Q - T5ZI-S - PR-8CA
//	Polaris has no gates.
//
// Tama, Amamake and Rancer are lowsec. Ostingele and the chain behind J0VE-A
// are nullsec; PR-8CA is six jumps from Jita.
func Catalog() *sde.Data {
	type star struct{ name, region, sec string }
	stars := []star{
		{"Jita", "The Forge", "0.94592"},
		{"Perimeter", "The Forge", "0.95000"},
		{"Urlen", "The Forge", "0.96000"},
		{"Amarr", "Domain", "1.00000"},
		{"Ostingele", "Lonetrek", "-0.05000"},
		{"Tama", "The Citadel", "0.31000"},
		{"Amamake", "Heimatar", "0.42000"},
		{"Rancer", "Sinq Laison", "0.38000"},
		{"J0VE-A", "Delve", "-0.30000"},
		{"Taisy", "Domain", "0.70000"},
		{"Polaris", "Unknown", "-1.00000"},
		{"1DQ1-A", "Delve", "-0.38000"},
		{"9-VO0Q", "Delve", "-0.41000"},
		{"T5ZI-S", "Delve", "-0.46000"},
		{"PR-8CA", "Delve", "-0.52000"},
	}
	edges := [][2]string{
		{"Jita", "Perimeter"}, {"Jita", "Ostingele"}, {"Jita", "Tama"},
		{"Perimeter", "Urlen"}, {"Urlen", "Amarr"}, {"Urlen", "Taisy"},
		{"Amarr", "Ostingele"}, {"Ostingele", "Rancer"}, {"Ostingele", "J0VE-A"},
		{"Tama", "Amamake"}, {"Amamake", "Rancer"},
		{"J0VE-A", "1DQ1-A"}, {"1DQ1-A", "9-VO0Q"}, {"9-VO0Q", "T5ZI-S"}, {"T5ZI-S", "PR-8CA"},
	}
	adj := make(map[string][]string)
	for _, e := range edges {
		adj[e[0]] = append(adj[e[0]], e[1])
		adj[e[1]] = append(adj[e[1]], e[0])
	}
	data := &sde.Data{Source: "test", Stations: map[string]int{"Jita": 5, "Perimeter": 2, "Amarr": 4, "Amamake": 1}}
	for _, s := range stars {
		data.Systems = append(data.Systems, graph.System{
			Name: s.name, Region: s.region, Constellation: s.region + " I",
			TrueSec: s.sec, Neighbors: adj[s.name],
		})
	}
	data.TradeHubs = []graph.TradeHub{
		{System: "Jita", Planet: "IV", Moon: "4", Station: "Caldari Navy Assembly Plant"},
		{System: "Amarr", Planet: "VIII", Station: "Emperor Family Academy"},
	}
	return data
}

// Universe builds the cluster's universe.
func Universe(t testing.TB) *graph.Universe {
	t.Helper()
	u, err := Catalog().Universe()
	if err != nil {
		t.Fatalf("build test universe: %v", err)
	}
	return u
}

// Engine builds an engine over the cluster with the given popular systems.
func Engine(t testing.TB, popular ...string) *engine.Engine {
	t.Helper()
	u := Universe(t)
	e, err := engine.New(u, resolve.New(u, nil), engine.Options{PopularSystems: popular})
	if err != nil {
		t.Fatalf("build test engine: %v", err)
	}
	return e
}
