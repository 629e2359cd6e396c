package kinds

import (
	"sort"

	"github.com/streamspace/automationd/internal/apperrors"
)

// Resolve computes a dependency-respecting construction order over the
// given plugin Kinds: a Kind only appears after every Kind matching one of
// its Requires Predicates. It is the Go equivalent of the original's
// add_graph_dependencies (building the class_graph from depends_on) plus
// topo_sort (graphlib.TopologicalSorter.static_order()), folded into a
// single pass using Kahn's algorithm so a DependencyCycle can be reported
// with the offending Kind IDs rather than left to a library panic.
//
// Kinds are sorted by ID before traversal so that, absent any dependency
// constraints, the output order is deterministic and stable across runs —
// needed for reproducible startup logs and tests.
func Resolve(plugins []*Kind) ([]*Kind, error) {
	byID := make(map[string]*Kind, len(plugins))
	ordered := make([]*Kind, len(plugins))
	copy(ordered, plugins)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID() < ordered[j].ID() })
	for _, k := range ordered {
		byID[k.ID()] = k
	}

	// edges[x] = set of IDs that must precede x
	edges := make(map[string][]string, len(ordered))
	indegree := make(map[string]int, len(ordered))
	for _, k := range ordered {
		indegree[k.ID()] = 0
	}
	for _, k := range ordered {
		for _, pred := range k.Requires {
			for _, dep := range ordered {
				if dep.ID() == k.ID() {
					continue
				}
				if pred.Matches(dep) {
					edges[dep.ID()] = append(edges[dep.ID()], k.ID())
					indegree[k.ID()]++
				}
			}
		}
	}

	var ready []string
	for _, k := range ordered {
		if indegree[k.ID()] == 0 {
			ready = append(ready, k.ID())
		}
	}
	sort.Strings(ready)

	var result []*Kind
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		result = append(result, byID[id])

		var unlocked []string
		for _, next := range edges[id] {
			indegree[next]--
			if indegree[next] == 0 {
				unlocked = append(unlocked, next)
			}
		}
		sort.Strings(unlocked)
		ready = append(ready, unlocked...)
		sort.Strings(ready)
	}

	if len(result) != len(ordered) {
		var stuck []string
		for id, deg := range indegree {
			if deg > 0 {
				stuck = append(stuck, id)
			}
		}
		sort.Strings(stuck)
		return nil, apperrors.DependencyCycle("kinds.Resolve", "cycle among: "+joinIDs(stuck))
	}

	return result, nil
}

func joinIDs(ids []string) string {
	out := ""
	for i, id := range ids {
		if i > 0 {
			out += ", "
		}
		out += id
	}
	return out
}
