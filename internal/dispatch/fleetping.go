package dispatch

import (
	"strings"

	"jumpbot/internal/engine"
	"jumpbot/internal/graph"
)

// FleetPing scans a broadcast for nullsec systems outside the popular set and
// returns the popular-system distances to each, once per system, in
// first-mention order.
//
// Every word is tried as an exact (or O/0-corrected) name. Words longer than
// three characters that are not on the deny-list may also match as a unique
// prefix, but a prefix match within FleetPingMinJumps of a popular system
// silences the whole ping: short English words hit too many system names.
func (d *Dispatcher) FleetPing(text string) []engine.PopularResult {
	r := d.eng.Resolver()
	u := d.eng.Universe()

	var out []engine.PopularResult
	seen := make(map[string]bool)
	reported := make(map[string]bool)
	var near map[string]int
	for _, line := range strings.Split(text, "\n") {
		for _, word := range strings.Split(line, " ") {
			word = stripPunctuation(word)
			if word == "" || seen[word] {
				continue
			}
			seen[word] = true

			if name, ok := r.Canonical(word); ok {
				if !reported[name] && !d.eng.IsPopular(name) && u.Class(name) == graph.Nullsec {
					reported[name] = true
					out = append(out, d.eng.Popular(word))
				}
				continue
			}

			if len(word) <= 3 || d.denylist[strings.ToLower(word)] {
				continue
			}
			candidates := r.Candidates(word)
			if len(candidates) != 1 {
				continue
			}
			name := candidates[0]
			if reported[name] || d.eng.IsPopular(name) || u.Class(name) != graph.Nullsec {
				continue
			}
			if near == nil {
				near = d.nearPopular()
			}
			if _, ok := near[name]; ok {
				return nil
			}
			reported[name] = true
			out = append(out, d.eng.Popular(word))
		}
	}
	return out
}

// nearPopular maps every system closer than FleetPingMinJumps to some popular
// system onto its smallest distance.
func (d *Dispatcher) nearPopular() map[string]int {
	u := d.eng.Universe()
	near := make(map[string]int)
	for _, p := range d.eng.PopularSystems() {
		for name, j := range u.SystemsWithinRadius(p, d.opts.FleetPingMinJumps-1) {
			if cur, ok := near[name]; !ok || j < cur {
				near[name] = j
			}
		}
	}
	return near
}
