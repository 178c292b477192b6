package engine

import (
	"fmt"

	"jumpbot/internal/resolve"
)

// MultiStop routes through every resolvable stop in order. Unresolvable stops
// are skipped and reported as warnings. Too many tokens is the only error.
func (e *Engine) MultiStop(q MultiQuery) (MultiResult, error) {
	if len(q.Stops) > e.opts.MaxStops {
		return MultiResult{}, fmt.Errorf("%d stops, limit %d: %w", len(q.Stops), e.opts.MaxStops, ErrTooManyStops)
	}

	res := MultiResult{Strategy: q.Strategy, Stops: []string{}, Legs: []Leg{}}
	var ws []resolve.Warning
	for _, token := range q.Stops {
		r := e.r.Resolve(token)
		ws = append(ws, r.Warnings...)
		if r.OK() {
			res.Stops = append(res.Stops, r.Canonical)
		}
	}
	if len(ws) > 0 {
		res.Warnings = resolve.DedupWarnings(ws)
	}

	var full []string
	var stopAt []int // indexes into full where an intermediate stop sits
	blocked := false
	for i := 0; i+1 < len(res.Stops); i++ {
		from, to := res.Stops[i], res.Stops[i+1]
		if from == to {
			continue
		}
		leg, p := e.leg(from, to, q.Strategy, false)
		res.Legs = append(res.Legs, leg)
		if leg.Outcome != OutcomeOK {
			blocked = true
			continue
		}
		res.TotalJumps += leg.Route.Jumps
		res.TotalNullsec += leg.Route.Tally.Nullsec
		res.Tally = res.Tally.Add(leg.Route.Tally)

		if blocked {
			continue
		}
		if len(full) == 0 {
			full = append(full, p.Systems...)
		} else {
			stopAt = append(stopAt, len(full)-1)
			full = append(full, p.Systems[1:]...)
		}
	}

	switch {
	case len(res.Legs) == 0:
		res.Outcome = OutcomeNoRoute
		return res, nil
	case blocked:
		// A gap in the chain makes the concatenated path meaningless.
		res.Outcome = worstOutcome(res.Legs)
		return res, nil
	}

	res.Outcome = OutcomeOK
	if q.WithPath {
		res.Hops = e.hops(full)
		for _, i := range stopAt {
			res.Hops[i].Stop = true
		}
	}
	return res, nil
}

// worstOutcome picks the failure to report for a route with blocked legs.
// A missing lowsec path wins over a missing route, matching the strategy asked.
func worstOutcome(legs []Leg) Outcome {
	out := OutcomeOK
	for _, l := range legs {
		switch l.Outcome {
		case OutcomeNoLowsecPath:
			return OutcomeNoLowsecPath
		case OutcomeNoRoute:
			out = OutcomeNoRoute
		}
	}
	return out
}
