package graph

// Hit is a system found by Nearest together with its BFS jump distance.
type Hit struct {
	System string `json:"system"`
	Jumps  int    `json:"jumps"`
}

// Nearest walks outward from start breadth-first and returns up to count
// systems that satisfy pred, closest first. Systems at equal distance come
// back in adjacency order. A system counts as found when it is first
// discovered, not when it is expanded; start itself is never reported.
// Once count hits are collected no further system is expanded, though the
// neighbors of the current one are still inspected, and the result is cut to
// count. Fewer hits are returned when the reachable component runs out.
func (u *Universe) Nearest(start string, pred func(name string) bool, count int) []Hit {
	if count <= 0 || !u.Has(start) {
		return nil
	}

	depth := map[string]int{start: 0}
	queue := []string{start}
	var hits []Hit

	for len(queue) > 0 && len(hits) < count {
		current := queue[0]
		queue = queue[1:]
		d := depth[current]
		for _, neighbor := range u.Adj[current] {
			if _, discovered := depth[neighbor]; discovered {
				continue
			}
			depth[neighbor] = d + 1
			queue = append(queue, neighbor)
			if pred(neighbor) {
				hits = append(hits, Hit{System: neighbor, Jumps: d + 1})
			}
		}
	}

	if len(hits) > count {
		hits = hits[:count]
	}
	return hits
}

// SystemsWithinRadius returns all systems reachable from origin within maxJumps,
// mapped to their distance in jumps.
func (u *Universe) SystemsWithinRadius(origin string, maxJumps int) map[string]int {
	result := make(map[string]int)
	if !u.Has(origin) {
		return result
	}
	result[origin] = 0

	queue := []string{origin}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		dist := result[current]
		if dist >= maxJumps {
			continue
		}
		for _, neighbor := range u.Adj[current] {
			if _, visited := result[neighbor]; !visited {
				result[neighbor] = dist + 1
				queue = append(queue, neighbor)
			}
		}
	}
	return result
}

// Predicates used by the nearest-feature searches.

// NotNullsec matches any hisec or lowsec system.
func (u *Universe) NotNullsec(name string) bool { return u.Class(name) != Nullsec }

// IsTradeHub matches systems with a trade hub.
func (u *Universe) IsTradeHub(name string) bool {
	_, ok := u.hubs[name]
	return ok
}

// HasStations matches systems with at least one NPC station.
func (u *Universe) HasStations(name string) bool { return u.stations[name] > 0 }
