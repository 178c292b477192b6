package engine

import "jumpbot/internal/graph"

// Popular routes from every popular system to the system token names.
// Popular systems equal to the target are skipped.
func (e *Engine) Popular(token string) PopularResult {
	r := e.r.Resolve(token)
	res := PopularResult{Resolution: r, Warnings: r.Warnings, Routes: []PairResult{}}
	if !r.OK() {
		res.Outcome = OutcomeUnresolved
		return res
	}
	res.Target = e.endpoint(r.Canonical)

	for _, src := range e.popular {
		if src == r.Canonical {
			continue
		}
		pr := PairResult{
			Strategy:   graph.Shortest,
			From:       e.endpoint(src),
			To:         res.Target,
			SameRegion: e.u.Region(src) == res.Target.Region,
		}
		leg, _ := e.leg(src, r.Canonical, graph.Shortest, false)
		pr.Outcome = leg.Outcome
		pr.Route = leg.Route
		res.Routes = append(res.Routes, pr)
	}

	res.Outcome = OutcomeOK
	if len(res.Routes) == 0 {
		res.Outcome = OutcomeDegenerate
	}
	return res
}
