package graph

import (
	"container/heap"
	"errors"
	"fmt"
)

// ErrNoRoute is returned when no chain of stargates connects two systems.
var ErrNoRoute = errors.New("no route")

// Path is an ordered list of systems from origin to destination.
type Path struct {
	Systems []string `json:"systems"`
	// Cost is the summed arc weight on the strategy graph; equal to Jumps()
	// on the Shortest graph.
	Cost int `json:"cost"`
}

// Jumps is the number of gates taken.
func (p Path) Jumps() int {
	if len(p.Systems) == 0 {
		return 0
	}
	return len(p.Systems) - 1
}

// Tally counts the security tiers along a path.
type Tally struct {
	Hisec   int `json:"hisec"`
	Lowsec  int `json:"lowsec"`
	Nullsec int `json:"nullsec"`
}

// Add returns the sum of two tallies.
func (t Tally) Add(o Tally) Tally {
	return Tally{Hisec: t.Hisec + o.Hisec, Lowsec: t.Lowsec + o.Lowsec, Nullsec: t.Nullsec + o.Nullsec}
}

// Tally classifies every system on p except the origin.
func (u *Universe) Tally(p Path) Tally {
	var t Tally
	if len(p.Systems) < 2 {
		return t
	}
	for _, name := range p.Systems[1:] {
		switch u.Class(name) {
		case Nullsec:
			t.Nullsec++
		case Lowsec:
			t.Lowsec++
		default:
			t.Hisec++
		}
	}
	return t
}

// AllOfClass reports whether every system on p, origin included, is of class c.
func (u *Universe) AllOfClass(p Path, c Class) bool {
	for _, name := range p.Systems {
		if u.Class(name) != c {
			return false
		}
	}
	return true
}

// ShortestPath runs Dijkstra from origin to dest on the graph for st.
// Frontier entries with equal distance leave the queue in the order they were
// pushed, and a node's predecessor only changes on a strictly shorter distance,
// so equal-cost alternatives resolve by adjacency order.
func (u *Universe) ShortestPath(origin, dest string, st Strategy) (Path, error) {
	if !u.Has(origin) {
		return Path{}, fmt.Errorf("%w: %q", ErrUnknownSystem, origin)
	}
	if !u.Has(dest) {
		return Path{}, fmt.Errorf("%w: %q", ErrUnknownSystem, dest)
	}
	if origin == dest {
		return Path{Systems: []string{origin}}, nil
	}

	g := u.Graph(st)
	dist := map[string]int{origin: 0}
	prev := make(map[string]string)
	done := make(map[string]bool)

	var seq int
	pq := &priorityQueue{{system: origin, dist: 0, seq: seq}}
	heap.Init(pq)

	for pq.Len() > 0 {
		item := heap.Pop(pq).(pqItem)
		if done[item.system] {
			continue
		}
		done[item.system] = true
		if item.system == dest {
			return Path{Systems: walkBack(prev, origin, dest), Cost: item.dist}, nil
		}
		for _, arc := range g.Arcs(item.system) {
			if done[arc.To] {
				continue
			}
			nd := item.dist + arc.Cost
			if d, ok := dist[arc.To]; !ok || nd < d {
				dist[arc.To] = nd
				prev[arc.To] = item.system
				seq++
				heap.Push(pq, pqItem{system: arc.To, dist: nd, seq: seq})
			}
		}
	}
	return Path{}, fmt.Errorf("%w: %s -> %s", ErrNoRoute, origin, dest)
}

func walkBack(prev map[string]string, origin, dest string) []string {
	var rev []string
	for at := dest; ; at = prev[at] {
		rev = append(rev, at)
		if at == origin {
			break
		}
	}
	out := make([]string, len(rev))
	for i, name := range rev {
		out[len(rev)-1-i] = name
	}
	return out
}

// Priority queue for Dijkstra
type pqItem struct {
	system string
	dist   int
	seq    int
}

type priorityQueue []pqItem

func (pq priorityQueue) Len() int { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].dist != pq[j].dist {
		return pq[i].dist < pq[j].dist
	}
	return pq[i].seq < pq[j].seq
}
func (pq priorityQueue) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x interface{}) { *pq = append(*pq, x.(pqItem)) }
func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}
