package engine

import (
	"fmt"
	"strings"

	"jumpbot/internal/graph"
)

// Feature selects what a nearest search looks for.
type Feature string

const (
	FeatureEvac     Feature = "evac"      // any system outside nullsec
	FeatureTradeHub Feature = "trade_hub" // configured trade hubs
	FeatureStation  Feature = "station"   // systems with NPC stations
)

// ParseFeature accepts the feature names and their common aliases.
func ParseFeature(s string) (Feature, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "evac", "escape", "evacuate":
		return FeatureEvac, nil
	case "trade_hub", "trade", "itc", "market", "hub":
		return FeatureTradeHub, nil
	case "station", "stations":
		return FeatureStation, nil
	}
	return "", fmt.Errorf("unknown feature %q", s)
}

func (e *Engine) predicate(f Feature) func(string) bool {
	switch f {
	case FeatureTradeHub:
		return e.u.IsTradeHub
	case FeatureStation:
		return e.u.HasStations
	default:
		return e.u.NotNullsec
	}
}

// Nearest finds the closest systems with a feature by gate jumps. The origin
// itself is never a hit.
func (e *Engine) Nearest(q NearestQuery) NearestResult {
	res := NearestResult{Feature: q.Feature, Hits: []NearestHit{}}
	r := e.r.Resolve(q.From)
	res.Warnings = r.Warnings
	if !r.OK() {
		res.Outcome = OutcomeUnresolved
		return res
	}
	origin := r.Canonical
	res.Origin = e.endpoint(origin)
	if q.Feature == FeatureStation {
		res.OriginStations = e.u.Stations(origin)
	}

	count := q.Count
	if count <= 0 {
		count = e.opts.NearestCount
	}
	for _, h := range e.u.Nearest(origin, e.predicate(q.Feature), count) {
		sec, _ := e.u.Security(h.System)
		hit := NearestHit{
			System:   h.System,
			Region:   e.u.Region(h.System),
			Jumps:    h.Jumps,
			Security: sec,
			Class:    sec.Class(),
			Stations: e.u.Stations(h.System),
		}
		if hub, ok := e.u.TradeHub(h.System); ok {
			hit.TradeHub = &hub
		}
		res.Hits = append(res.Hits, hit)
	}
	if len(res.Hits) == 0 {
		res.Outcome = OutcomeNoRoute
		return res
	}

	res.Outcome = OutcomeOK
	if q.WithPath {
		if p, err := e.u.ShortestPath(origin, res.Hits[0].System, graph.Shortest); err == nil {
			res.Hops = e.hops(p.Systems)
		}
	}
	return res
}
