// Package seed replays a legacy snapshot into the target schema as
// idempotent upserts ordered by foreign-key dependencies.
package seed

import (
	"fmt"
	"sort"
	"strings"
)

// ForeignKey is a column that must reference an existing row of another table.
type ForeignKey struct {
	Column     string
	References string
}

// DependsOn lists the distinct tables a table references, excluding itself.
func (t Table) DependsOn() []string {
	seen := map[string]bool{}
	var deps []string
	for _, fk := range t.ForeignKeys {
		if fk.References == t.Name || seen[fk.References] {
			continue
		}
		seen[fk.References] = true
		deps = append(deps, fk.References)
	}
	return deps
}

// Order sorts tables so every table comes after the tables it references.
// Among tables whose dependencies are satisfied the earliest declared wins,
// so the result is deterministic.
func Order(tables []Table) ([]Table, error) {
	index := make(map[string]int, len(tables))
	for i, t := range tables {
		if _, dup := index[t.Name]; dup {
			return nil, fmt.Errorf("table %s declared twice", t.Name)
		}
		index[t.Name] = i
	}

	remaining := make([]int, len(tables))
	dependents := make(map[string][]int)
	for i, t := range tables {
		for _, dep := range t.DependsOn() {
			if _, ok := index[dep]; !ok {
				return nil, fmt.Errorf("table %s references unknown table %s", t.Name, dep)
			}
			remaining[i]++
			dependents[dep] = append(dependents[dep], i)
		}
	}

	var ready []int
	for i := range tables {
		if remaining[i] == 0 {
			ready = append(ready, i)
		}
	}

	ordered := make([]Table, 0, len(tables))
	for len(ready) > 0 {
		sort.Ints(ready)
		next := ready[0]
		ready = ready[1:]
		ordered = append(ordered, tables[next])

		for _, d := range dependents[tables[next].Name] {
			remaining[d]--
			if remaining[d] == 0 {
				ready = append(ready, d)
			}
		}
	}

	if len(ordered) != len(tables) {
		var stuck []string
		for i, t := range tables {
			if remaining[i] > 0 {
				stuck = append(stuck, t.Name)
			}
		}
		return nil, fmt.Errorf("circular dependency between tables: %s", strings.Join(stuck, ", "))
	}
	return ordered, nil
}

// Names returns the table names in slice order.
func Names(tables []Table) []string {
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.Name
	}
	return names
}
