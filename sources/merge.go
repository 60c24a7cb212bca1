package sources

import (
	"sort"
	"strings"

	"github.com/penwyp/rewindcat/models"
)

// ParseMergeSpec parses a --merge-sources value: comma-separated
// "source=target" pairs.
func ParseMergeSpec(spec string) ([]models.MergeDirective, error) {
	var directives []models.MergeDirective
	for _, pair := range strings.Split(spec, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		src, target, found := strings.Cut(pair, "=")
		src = strings.TrimSpace(src)
		target = strings.TrimSpace(target)
		if !found || src == "" || target == "" {
			return nil, models.NewConfigError("merge-sources", "invalid directive %q, expected source=target", pair)
		}
		directives = append(directives, models.MergeDirective{Source: src, Target: target})
	}
	return directives, nil
}

// unionFind resolves transitive merge groups over source names. Using a
// disjoint-set rather than pairwise folding makes the result independent
// of directive order: A=B,B=C and B=C,A=B land in the same group with the
// same representative.
type unionFind struct {
	parent map[string]string
}

func newUnionFind(names []string) *unionFind {
	parent := make(map[string]string, len(names))
	for _, name := range names {
		parent[name] = name
	}
	return &unionFind{parent: parent}
}

func (u *unionFind) find(name string) string {
	root := name
	for u.parent[root] != root {
		root = u.parent[root]
	}
	// Path compression
	for u.parent[name] != root {
		name, u.parent[name] = u.parent[name], root
	}
	return root
}

// union folds source's group into target's group. The target side stays
// the representative so directives read the way they resolve.
func (u *unionFind) union(source, target string) {
	rootSource := u.find(source)
	rootTarget := u.find(target)
	if rootSource != rootTarget {
		u.parent[rootSource] = rootTarget
	}
}

// Merge applies the merge directives to the collected sources and returns
// the final reportable source list. A directive naming an unknown source
// or target is a configuration error, not a silent no-op. Events of a
// merged group are re-deduplicated: overlapping roots (a backup of the
// same machine, say) must not double-count an exchange.
func Merge(sources []models.Source, directives []models.MergeDirective) ([]models.Source, error) {
	names := make([]string, 0, len(sources))
	byName := make(map[string]bool, len(sources))
	for _, s := range sources {
		names = append(names, s.Name)
		byName[s.Name] = true
	}

	for _, d := range directives {
		if !byName[d.Source] {
			return nil, models.NewConfigError("merge-sources", "unknown source %q in directive %s=%s", d.Source, d.Source, d.Target)
		}
		if !byName[d.Target] {
			return nil, models.NewConfigError("merge-sources", "unknown target %q in directive %s=%s", d.Target, d.Source, d.Target)
		}
		if d.Source == d.Target {
			return nil, models.NewConfigError("merge-sources", "directive %s=%s merges a source into itself", d.Source, d.Target)
		}
	}

	uf := newUnionFind(names)
	for _, d := range directives {
		uf.union(d.Source, d.Target)
	}

	// Group events by representative, keeping first-appearance order of
	// the representatives for stable output.
	grouped := make(map[string]*models.Source)
	var order []string
	for _, s := range sources {
		rep := uf.find(s.Name)
		group, ok := grouped[rep]
		if !ok {
			group = &models.Source{Name: rep}
			grouped[rep] = group
			order = append(order, rep)
		}
		if s.Name == rep {
			group.Root = s.Root
		}
		group.Events = append(group.Events, s.Events...)
	}

	merged := make([]models.Source, 0, len(order))
	for _, rep := range order {
		group := grouped[rep]
		group.Events = dedupEvents(group.Events)
		sort.Slice(group.Events, func(i, j int) bool {
			return group.Events[i].Timestamp.Before(group.Events[j].Timestamp)
		})
		merged = append(merged, *group)
	}
	return merged, nil
}

// dedupEvents drops events whose identity key was already seen. Events
// without a stable identity pass through untouched.
func dedupEvents(events []models.UsageEvent) []models.UsageEvent {
	seen := make(map[string]bool)
	out := events[:0]
	for _, event := range events {
		if key := event.DedupKey(); key != "" {
			if seen[key] {
				continue
			}
			seen[key] = true
		}
		out = append(out, event)
	}
	return out
}
