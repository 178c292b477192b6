package engine

import (
	"fmt"

	"jumpbot/internal/graph"
	"jumpbot/internal/logger"
	"jumpbot/internal/resolve"
)

// Pair answers a route query between two typed names.
func (e *Engine) Pair(q PairQuery) PairResult {
	res := PairResult{Strategy: q.Strategy}

	from := e.r.Resolve(q.From)
	to := e.r.Resolve(q.To)
	var ws []resolve.Warning
	ws = append(ws, from.Warnings...)
	ws = append(ws, to.Warnings...)
	if len(ws) > 0 {
		res.Warnings = resolve.DedupWarnings(ws)
	}
	if !from.OK() || !to.OK() {
		res.Outcome = OutcomeUnresolved
		return res
	}

	res.From = e.endpoint(from.Canonical)
	res.To = e.endpoint(to.Canonical)
	res.SameRegion = res.From.Region == res.To.Region
	if from.Canonical == to.Canonical {
		res.Outcome = OutcomeDegenerate
		return res
	}

	leg, _ := e.leg(from.Canonical, to.Canonical, q.Strategy, q.WithPath)
	res.Outcome = leg.Outcome
	res.Route = leg.Route
	res.Comparison = leg.Comparison
	return res
}

// leg routes between two canonical names and returns the raw path alongside
// the summary. The path is empty unless the outcome is OutcomeOK.
func (e *Engine) leg(start, end string, st graph.Strategy, withPath bool) (Leg, graph.Path) {
	l := Leg{From: *e.endpoint(start), To: *e.endpoint(end)}

	p, err := e.u.ShortestPath(start, end, st)
	if err != nil {
		l.Outcome = OutcomeNoRoute
		return l, graph.Path{}
	}
	// A finite penalty cannot forbid leaving lowsec, so check the result.
	if st == graph.LowsecOnly && !e.u.AllOfClass(p, graph.Lowsec) {
		l.Outcome = OutcomeNoLowsecPath
		return l, graph.Path{}
	}

	l.Outcome = OutcomeOK
	l.Route = e.route(p, withPath)
	if st != graph.Shortest {
		if plain, err := e.u.ShortestPath(start, end, graph.Shortest); err == nil {
			l.Comparison = e.compare(st, p, plain)
		}
	}
	return l, p
}

func (e *Engine) route(p graph.Path, withPath bool) *Route {
	r := &Route{Jumps: p.Jumps(), Cost: p.Cost, Tally: e.u.Tally(p)}
	if withPath {
		r.Hops = e.hops(p.Systems)
	}
	return r
}

// compare reports how a safe or lowsec route trades jumps for security.
func (e *Engine) compare(st graph.Strategy, chosen, plain graph.Path) *Comparison {
	ct := e.u.Tally(chosen)
	pt := e.u.Tally(plain)
	c := &Comparison{
		ShortestJumps:   plain.Jumps(),
		ShortestNullsec: pt.Nullsec,
		NullsecAvoided:  pt.Nullsec - ct.Nullsec,
		ExtraJumps:      chosen.Jumps() - plain.Jumps(),
	}
	switch st {
	case graph.AvoidNull:
		c.AlreadyOptimal = c.NullsecAvoided == 0
		if c.NullsecAvoided < 0 {
			c.Anomaly = true
			logger.Warn("Engine", fmt.Sprintf("safe route %s -> %s crosses %d nullsec systems, shortest crosses %d",
				chosen.Systems[0], chosen.Systems[len(chosen.Systems)-1], ct.Nullsec, pt.Nullsec))
		}
	case graph.LowsecOnly:
		c.AlreadyOptimal = c.ExtraJumps == 0
	}
	return c
}
