// Package sde loads the star catalog: systems, stargates, trade hubs and NPC
// station counts. Two sources are supported: the jumpbot CSV data directory
// and CCP's static data export (JSONL).
package sde

import (
	"fmt"

	"jumpbot/internal/graph"
	"jumpbot/internal/logger"
)

// Catalog sources.
const (
	SourceCSV = "csv"
	SourceSDE = "sde"
	SourceDB  = "db"
)

// Data is a fully parsed catalog, ready to become a graph.Universe.
type Data struct {
	Source    string
	Systems   []graph.System // catalog order
	TradeHubs []graph.TradeHub
	Stations  map[string]int // system name -> NPC station count
}

// Universe validates the catalog and builds the routing graphs.
func (d *Data) Universe() (*graph.Universe, error) {
	u, err := graph.NewUniverse(d.Systems, d.TradeHubs, d.Stations)
	if err != nil {
		return nil, fmt.Errorf("build universe from %s catalog: %w", d.Source, err)
	}
	return u, nil
}

// LogStats prints a summary of the catalog.
func (d *Data) LogStats() {
	gates := 0
	for _, s := range d.Systems {
		gates += len(s.Neighbors)
	}
	logger.Section("Catalog Statistics")
	logger.Stats("Source", d.Source)
	logger.Stats("Systems", len(d.Systems))
	logger.Stats("Gate links", gates/2)
	logger.Stats("Trade hubs", len(d.TradeHubs))
	logger.Stats("Station systems", len(d.Stations))
}

// filterStations drops counts for systems outside the catalog. NPC station
// dumps cover every space type, the gate catalog may not.
func filterStations(systems []graph.System, counts map[string]int) map[string]int {
	known := make(map[string]bool, len(systems))
	for _, s := range systems {
		known[s.Name] = true
	}
	out := make(map[string]int, len(counts))
	dropped := 0
	for name, n := range counts {
		if !known[name] {
			dropped++
			continue
		}
		out[name] = n
	}
	if dropped > 0 {
		logger.Warn("SDE", fmt.Sprintf("Ignored station counts for %d systems outside the catalog", dropped))
	}
	return out
}
