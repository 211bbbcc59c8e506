package scheduler

import (
	"sort"
	"time"

	"github.com/pdcamargo/atlas-engine/diag"
)

// edgeSet is an adjacency list keyed by SystemID, de-duplicated so repeated
// before/after declarations are idempotent (spec.md §4.4 "Duplicate edges
// are idempotent").
type edgeSet map[SystemID]map[SystemID]bool

func (e edgeSet) add(from, to SystemID) {
	if e[from] == nil {
		e[from] = make(map[SystemID]bool)
	}
	e[from][to] = true
}

// buildGraph constructs the "before" edge set for one phase's systems,
// applying the four precedence tiers of spec.md §4.4 in order: direct
// before/after, set-level before_set/after_set, per-set constraints (phase
// table then wildcard table), and label-level before_label/after_label.
// An edge from→to means "from must run before to".
func buildGraph(systems []*Descriptor, setConstraints []SetConstraint) edgeSet {
	edges := make(edgeSet)

	byID := make(map[SystemID]*Descriptor, len(systems))
	bySet := make(map[Set][]*Descriptor)
	byLabel := make(map[Label][]*Descriptor)
	for _, s := range systems {
		byID[s.ID] = s
		for _, set := range s.Sets {
			bySet[set] = append(bySet[set], s)
		}
		for _, l := range s.Labels {
			byLabel[l] = append(byLabel[l], s)
		}
	}

	// Tier 1: direct before/after.
	for _, s := range systems {
		for _, other := range s.Before {
			if byID[other] != nil {
				edges.add(s.ID, other)
			}
		}
		for _, other := range s.After {
			if byID[other] != nil {
				edges.add(other, s.ID)
			}
		}
	}

	// Tier 2: before_set/after_set expanded to current set members.
	for _, s := range systems {
		for _, set := range s.BeforeSet {
			for _, member := range bySet[set] {
				if member.ID != s.ID {
					edges.add(s.ID, member.ID)
				}
			}
		}
		for _, set := range s.AfterSet {
			for _, member := range bySet[set] {
				if member.ID != s.ID {
					edges.add(member.ID, s.ID)
				}
			}
		}
	}

	// Tier 3: per-set constraints, phase-specific table then wildcard
	// table, applied to every current member of the constrained set.
	applySetConstraints := func(sc SetConstraint) {
		for _, member := range bySet[sc.Set] {
			for _, set := range sc.BeforeSet {
				for _, other := range bySet[set] {
					if other.ID != member.ID {
						edges.add(member.ID, other.ID)
					}
				}
			}
			for _, set := range sc.AfterSet {
				for _, other := range bySet[set] {
					if other.ID != member.ID {
						edges.add(other.ID, member.ID)
					}
				}
			}
			for _, label := range sc.BeforeLabel {
				for _, other := range byLabel[label] {
					if other.ID != member.ID {
						edges.add(member.ID, other.ID)
					}
				}
			}
			for _, label := range sc.AfterLabel {
				for _, other := range byLabel[label] {
					if other.ID != member.ID {
						edges.add(other.ID, member.ID)
					}
				}
			}
		}
	}
	phaseOf := systems[0].Phase
	for _, sc := range setConstraints {
		if sc.Phase == phaseOf {
			applySetConstraints(sc)
		}
	}
	for _, sc := range setConstraints {
		if sc.Phase == "" {
			applySetConstraints(sc)
		}
	}

	// Tier 4: label-level before_label/after_label.
	for _, s := range systems {
		for _, label := range s.BeforeLabel {
			for _, other := range byLabel[label] {
				if other.ID != s.ID {
					edges.add(s.ID, other.ID)
				}
			}
		}
		for _, label := range s.AfterLabel {
			for _, other := range byLabel[label] {
				if other.ID != s.ID {
					edges.add(other.ID, s.ID)
				}
			}
		}
	}

	return edges
}

// topoSort runs Kahn's algorithm over systems and edges, breaking ties by
// insertion order (Descriptor.order). On cycle detection it records a
// SchedulerCycle diagnostic and falls back to plain insertion order rather
// than deadlocking (spec.md §4.4).
func topoSort(systems []*Descriptor, edges edgeSet, phase Phase, sink diag.Sink) []*Descriptor {
	insertionOrder := append([]*Descriptor(nil), systems...)
	sort.SliceStable(insertionOrder, func(i, j int) bool {
		return insertionOrder[i].order < insertionOrder[j].order
	})

	indegree := make(map[SystemID]int, len(systems))
	for _, s := range systems {
		indegree[s.ID] = 0
	}
	for _, to := range edges {
		for target := range to {
			indegree[target]++
		}
	}

	byID := make(map[SystemID]*Descriptor, len(systems))
	for _, s := range systems {
		byID[s.ID] = s
	}

	ready := make([]*Descriptor, 0, len(systems))
	for _, s := range insertionOrder {
		if indegree[s.ID] == 0 {
			ready = append(ready, s)
		}
	}

	var out []*Descriptor
	for len(ready) > 0 {
		sort.SliceStable(ready, func(i, j int) bool { return ready[i].order < ready[j].order })
		next := ready[0]
		ready = ready[1:]
		out = append(out, next)

		for target := range edges[next.ID] {
			indegree[target]--
			if indegree[target] == 0 {
				ready = append(ready, byID[target])
			}
		}
	}

	if len(out) != len(systems) {
		if sink != nil {
			sink.Record(diag.Diagnostic{
				Kind:    diag.SchedulerCycle,
				Subject: string(phase),
				Message: "ordering constraints form a cycle; falling back to insertion order",
				At:      time.Now(),
			})
		}
		return insertionOrder
	}
	return out
}
