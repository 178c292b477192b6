package engine

import (
	"jumpbot/internal/graph"
	"jumpbot/internal/resolve"
)

// Outcome tags every query result. Anything other than OutcomeOK is an
// expected, user-facing condition, never a process failure.
type Outcome string

const (
	OutcomeOK Outcome = "ok"
	// OutcomeUnresolved: a token was unknown or ambiguous; see Warnings.
	OutcomeUnresolved Outcome = "unresolved"
	// OutcomeDegenerate: both endpoints are the same system. Not an error.
	OutcomeDegenerate Outcome = "degenerate"
	// OutcomeNoLowsecPath: the lowsec-only search found only a path leaving lowsec.
	OutcomeNoLowsecPath Outcome = "no_lowsec_path"
	// OutcomeNoRoute: no gates connect the systems, or too few stops resolved.
	OutcomeNoRoute Outcome = "no_route"
)

// Endpoint describes a resolved system.
type Endpoint struct {
	Name          string         `json:"name"`
	Region        string         `json:"region"`
	Constellation string         `json:"constellation"`
	Security      graph.Security `json:"security"`
	Class         graph.Class    `json:"class"`
}

// Hop is one system on a rendered route.
type Hop struct {
	Index    int            `json:"index"`
	System   string         `json:"system"`
	Region   string         `json:"region"`
	Security graph.Security `json:"security"`
	Class    graph.Class    `json:"class"`
	Stations int            `json:"stations,omitempty"`
	TradeHub bool           `json:"trade_hub,omitempty"`
	// Stop marks an intermediate stop of a multi-stop route.
	Stop bool `json:"stop,omitempty"`
}

// Route is a computed path with its summary.
type Route struct {
	Jumps int         `json:"jumps"`
	Cost  int         `json:"cost"`
	Tally graph.Tally `json:"tally"`
	Hops  []Hop       `json:"hops,omitempty"`
}

// Comparison sets a safe or lowsec route against the plain shortest route.
type Comparison struct {
	ShortestJumps   int `json:"shortest_jumps"`
	ShortestNullsec int `json:"shortest_nullsec"`
	NullsecAvoided  int `json:"nullsec_avoided"`
	ExtraJumps      int `json:"extra_jumps"`
	// AlreadyOptimal: the safe route has as many nullsec jumps as the shortest
	// one, or the lowsec route is as short as the shortest one.
	AlreadyOptimal bool `json:"already_optimal"`
	// Anomaly: the safe route has more nullsec jumps than the shortest route.
	// The penalty weights make this impossible on a consistent catalog.
	Anomaly bool `json:"anomaly,omitempty"`
}

// PairQuery asks for a route between two typed system names.
type PairQuery struct {
	From     string         `json:"from"`
	To       string         `json:"to"`
	Strategy graph.Strategy `json:"strategy"`
	WithPath bool           `json:"with_path"`
}

// PairResult answers a PairQuery.
type PairResult struct {
	Outcome    Outcome           `json:"outcome"`
	Strategy   graph.Strategy    `json:"strategy"`
	From       *Endpoint         `json:"from,omitempty"`
	To         *Endpoint         `json:"to,omitempty"`
	SameRegion bool              `json:"same_region"`
	Warnings   []resolve.Warning `json:"warnings,omitempty"`
	Route      *Route            `json:"route,omitempty"`
	Comparison *Comparison       `json:"comparison,omitempty"`
}

// MultiQuery asks for a route visiting several stops in order.
type MultiQuery struct {
	Stops    []string       `json:"stops"`
	Strategy graph.Strategy `json:"strategy"`
	WithPath bool           `json:"with_path"`
}

// Leg is one segment between consecutive resolved stops.
type Leg struct {
	From       Endpoint    `json:"from"`
	To         Endpoint    `json:"to"`
	Outcome    Outcome     `json:"outcome"`
	Route      *Route      `json:"route,omitempty"`
	Comparison *Comparison `json:"comparison,omitempty"`
}

// MultiResult answers a MultiQuery.
type MultiResult struct {
	Outcome  Outcome           `json:"outcome"`
	Strategy graph.Strategy    `json:"strategy"`
	Stops    []string          `json:"stops"` // resolved canonical names
	Warnings []resolve.Warning `json:"warnings,omitempty"`
	Legs     []Leg             `json:"legs"`
	// Totals cover legs with OutcomeOK.
	TotalJumps   int         `json:"total_jumps"`
	TotalNullsec int         `json:"total_nullsec"`
	Tally        graph.Tally `json:"tally"`
	Hops         []Hop       `json:"hops,omitempty"`
}

// PopularResult answers a popularity query: routes from every configured
// popular system to one target.
type PopularResult struct {
	Outcome    Outcome            `json:"outcome"`
	Resolution resolve.Resolution `json:"resolution"`
	Target     *Endpoint          `json:"target,omitempty"`
	Warnings   []resolve.Warning  `json:"warnings,omitempty"`
	Routes     []PairResult       `json:"routes"`
}

// NearestQuery asks for the closest systems with a feature.
type NearestQuery struct {
	From     string  `json:"from"`
	Feature  Feature `json:"feature"`
	Count    int     `json:"count,omitempty"` // 0 uses the engine default
	WithPath bool    `json:"with_path"`
}

// NearestHit is one system found by a nearest-feature search.
type NearestHit struct {
	System   string          `json:"system"`
	Region   string          `json:"region"`
	Jumps    int             `json:"jumps"`
	Security graph.Security  `json:"security"`
	Class    graph.Class     `json:"class"`
	Stations int             `json:"stations,omitempty"`
	TradeHub *graph.TradeHub `json:"trade_hub,omitempty"`
}

// NearestResult answers a NearestQuery.
type NearestResult struct {
	Outcome  Outcome           `json:"outcome"`
	Feature  Feature           `json:"feature"`
	Origin   *Endpoint         `json:"origin,omitempty"`
	Warnings []resolve.Warning `json:"warnings,omitempty"`
	// OriginStations is set for station searches.
	OriginStations int          `json:"origin_stations,omitempty"`
	Hits           []NearestHit `json:"hits"`
	// Hops is the path to the first hit, when requested.
	Hops []Hop `json:"hops,omitempty"`
}
