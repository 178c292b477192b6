package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"jumpbot/internal/db"
	"jumpbot/internal/dispatch"
	"jumpbot/internal/engine"
	"jumpbot/internal/graph"
	"jumpbot/internal/resolve"
)

// maxReplyLen keeps a rendered reply within a chat message.
const maxReplyLen = 1975

func jumpWord(n int) string {
	if n == 1 {
		return "jump"
	}
	return "jumps"
}

func secTag(sec graph.Security) string {
	return fmt.Sprintf("%s %s", sec, sec.Class())
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// truncate cuts an over-long reply and says so.
func truncate(s string) string {
	if len(s) <= maxReplyLen {
		return s
	}
	cut := maxReplyLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "\nToo long! Truncating..."
}

func writeJSONOut(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderWarnings(b *strings.Builder, ws []resolve.Warning) {
	for _, w := range ws {
		switch w.Kind {
		case resolve.WarnUnknownSystem:
			fmt.Fprintf(b, "? Unknown system '%s'\n", w.Token)
		case resolve.WarnAmbiguousSystem:
			fmt.Fprintf(b, "? '%s' could be: %s\n", w.Token, strings.Join(w.Candidates, ", "))
		case resolve.WarnMixup:
			fmt.Fprintf(b, "! O/0 mixup: you said %s, you meant %s\n", w.Token, w.Canonical)
		}
	}
}

func renderRegions(b *strings.Builder, from, to *engine.Endpoint) {
	if from == nil || to == nil {
		return
	}
	if from.Region == to.Region {
		fmt.Fprintf(b, "%s and %s are both in %s\n", from.Name, to.Name, from.Region)
		return
	}
	fmt.Fprintf(b, "%s is in %s, %s is in %s\n", from.Name, from.Region, to.Name, to.Region)
}

func renderHops(b *strings.Builder, hops []engine.Hop) {
	for _, h := range hops {
		marker := "   "
		if h.Stop {
			marker = "## "
		}
		extra := ""
		if h.Stations > 0 {
			extra = " " + plural(h.Stations, "station")
		}
		if h.TradeHub {
			extra += " [trade hub]"
		}
		fmt.Fprintf(b, "%3d) %s%s (%s)%s\n", h.Index, marker, h.System, secTag(h.Security), extra)
	}
}

func renderComparison(b *strings.Builder, st graph.Strategy, c *engine.Comparison) {
	if c == nil {
		return
	}
	switch st {
	case graph.AvoidNull:
		if c.AlreadyOptimal {
			b.WriteString("The shortest path is already the safest\n")
			return
		}
		fmt.Fprintf(b, "%d fewer nullsec hops at the cost of %d additional %s\n", c.NullsecAvoided, c.ExtraJumps, jumpWord(c.ExtraJumps))
	case graph.LowsecOnly:
		if c.AlreadyOptimal {
			b.WriteString("The lowsec-only path is also the shortest\n")
			return
		}
		fmt.Fprintf(b, "The lowsec-only path is %d extra %s\n", c.ExtraJumps, jumpWord(c.ExtraJumps))
	}
}

func renderPair(b *strings.Builder, r engine.PairResult, extras bool) {
	if extras {
		renderWarnings(b, r.Warnings)
		renderRegions(b, r.From, r.To)
	}
	switch r.Outcome {
	case engine.OutcomeUnresolved:
		return
	case engine.OutcomeDegenerate:
		fmt.Fprintf(b, "%s is where you already are\n", r.From.Name)
		return
	case engine.OutcomeNoLowsecPath:
		fmt.Fprintf(b, "There is no lowsec-only path between %s and %s!\n", r.From.Name, r.To.Name)
		return
	case engine.OutcomeNoRoute:
		fmt.Fprintf(b, "No stargate route between %s and %s\n", r.From.Name, r.To.Name)
		return
	}
	fmt.Fprintf(b, "%s (%s) to %s (%s): %d %s (%d nullsec)\n",
		r.From.Name, secTag(r.From.Security), r.To.Name, secTag(r.To.Security),
		r.Route.Jumps, jumpWord(r.Route.Jumps), r.Route.Tally.Nullsec)
	renderHops(b, r.Route.Hops)
	renderComparison(b, r.Strategy, r.Comparison)
}

func renderMulti(b *strings.Builder, r engine.MultiResult) {
	renderWarnings(b, r.Warnings)
	if len(r.Stops) < 2 || len(r.Legs) == 0 {
		b.WriteString("Need at least two different known systems for a route\n")
		return
	}
	first, last := r.Legs[0].From, r.Legs[len(r.Legs)-1].To
	renderRegions(b, &first, &last)
	for _, l := range r.Legs {
		switch l.Outcome {
		case engine.OutcomeOK:
			fmt.Fprintf(b, "%s to %s: %d %s (%d nullsec)\n", l.From.Name, l.To.Name, l.Route.Jumps, jumpWord(l.Route.Jumps), l.Route.Tally.Nullsec)
		case engine.OutcomeNoLowsecPath:
			fmt.Fprintf(b, "%s to %s: no lowsec-only path\n", l.From.Name, l.To.Name)
		default:
			fmt.Fprintf(b, "%s to %s: no route\n", l.From.Name, l.To.Name)
		}
	}
	fmt.Fprintf(b, "%d %s total (%d nullsec)\n", r.TotalJumps, jumpWord(r.TotalJumps), r.TotalNullsec)
	renderHops(b, r.Hops)
}

func renderPopular(b *strings.Builder, r engine.PopularResult) {
	renderWarnings(b, r.Warnings)
	if r.Target == nil {
		return
	}
	if r.Outcome == engine.OutcomeDegenerate {
		fmt.Fprintf(b, "%s is the only popular system\n", r.Target.Name)
		return
	}
	fmt.Fprintf(b, "%s is in %s\n", r.Target.Name, r.Target.Region)
	for _, pr := range r.Routes {
		renderPair(b, pr, false)
	}
}

func renderNearest(b *strings.Builder, r engine.NearestResult) {
	renderWarnings(b, r.Warnings)
	if r.Origin == nil {
		return
	}
	what := map[engine.Feature]string{
		engine.FeatureEvac:     "non-nullsec system",
		engine.FeatureTradeHub: "trade hub",
		engine.FeatureStation:  "station system",
	}[r.Feature]
	if r.Feature == engine.FeatureStation && r.OriginStations > 0 {
		fmt.Fprintf(b, "%s itself has %s\n", r.Origin.Name, plural(r.OriginStations, "station"))
	}
	if len(r.Hits) == 0 {
		fmt.Fprintf(b, "No %s reachable from %s\n", what, r.Origin.Name)
		return
	}
	fmt.Fprintf(b, "The closest %s to %s:\n", plural(len(r.Hits), what), r.Origin.Name)
	for _, h := range r.Hits {
		extra := ""
		switch {
		case h.TradeHub != nil:
			extra = " " + h.TradeHub.Station
		case h.Stations > 0 && r.Feature == engine.FeatureStation:
			extra = " " + plural(h.Stations, "station")
		}
		fmt.Fprintf(b, "  %s (%s): %d %s, in %s%s\n", h.System, secTag(h.Security), h.Jumps, jumpWord(h.Jumps), h.Region, extra)
	}
	renderHops(b, r.Hops)
}

// renderReply formats a dispatcher reply as chat text.
func renderReply(r dispatch.Reply) string {
	var b strings.Builder
	switch {
	case r.Failure == dispatch.FailureTooManyStops:
		b.WriteString("Too many stops, try a shorter route\n")
	case r.Failure != "":
		fmt.Fprintf(&b, "Could not run that: %s\n", r.Message)
	case r.Help != "":
		b.WriteString(r.Help + "\n")
	case r.Pair != nil:
		renderPair(&b, *r.Pair, true)
	case r.Multi != nil:
		renderMulti(&b, *r.Multi)
	case r.Popular != nil:
		renderPopular(&b, *r.Popular)
	case r.Nearest != nil:
		renderNearest(&b, *r.Nearest)
	}
	if r.Hint != "" {
		fmt.Fprintf(&b, "(%s)\n", r.Hint)
	}
	return truncate(b.String())
}

func renderResolution(r resolve.Resolution) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", r.Token, r.Status)
	if r.Canonical != "" {
		fmt.Fprintf(&b, " -> %s", r.Canonical)
	}
	if len(r.Candidates) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(r.Candidates, ", "))
	}
	b.WriteString("\n")
	return b.String()
}

func renderHistory(records []db.QueryRecord) string {
	if len(records) == 0 {
		return "No queries recorded\n"
	}
	var b strings.Builder
	for _, r := range records {
		fmt.Fprintf(&b, "%s  %-9s %-15s %4dms  %s\n", r.Timestamp, r.Kind, r.Outcome, r.DurationMs, r.Input)
	}
	return b.String()
}
