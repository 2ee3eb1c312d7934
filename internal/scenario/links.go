package scenario

import (
	"fmt"
	"slices"
	"strings"
)

// linkDirection says which side of a relation record is the prerequisite.
type linkDirection int

const (
	// linkInformational relations never constrain ordering.
	linkInformational linkDirection = iota
	// linkSourceFirst: the item holding the record must finish first.
	linkSourceFirst
	// linkTargetFirst: the referenced item must finish first.
	linkTargetFirst
)

// relationTable is the single place relation direction is resolved. Keys are
// normalized with normalizeRelation.
var relationTable = map[string]linkDirection{
	"blocks":          linkSourceFirst,
	"is blocking":     linkSourceFirst,
	"is blocked by":   linkTargetFirst,
	"blocked by":      linkTargetFirst,
	"depends on":      linkTargetFirst,
	"is dependent on": linkTargetFirst,

	"relates to":        linkInformational,
	"duplicates":        linkInformational,
	"is duplicated by":  linkInformational,
	"clones":            linkInformational,
	"is cloned by":      linkInformational,
	"split to":          linkInformational,
	"split from":        linkInformational,
	"causes":            linkInformational,
	"is caused by":      linkInformational,
	"is parent of":      linkInformational,
	"is child of":       linkInformational,
	"implements":        linkInformational,
	"is implemented by": linkInformational,
}

// normalizeRelation lowercases a relation name and folds '_', '-' and runs
// of whitespace into single spaces.
func normalizeRelation(name string) string {
	name = strings.ToLower(name)
	name = strings.NewReplacer("_", " ", "-", " ").Replace(name)
	return strings.Join(strings.Fields(name), " ")
}

// IsRecognizedRelation reports whether the relation type appears in the
// mapping table, as an ordering or an informational relation.
func IsRecognizedRelation(name string) bool {
	_, ok := relationTable[normalizeRelation(name)]
	return ok
}

// NormalizeLinks converts the raw relation records of every item into
// canonical, de-duplicated precedence edges sorted by (prerequisite,
// dependent). Records that cannot be resolved are dropped and reported as
// warnings. Links touching excluded items are ignored.
func NormalizeLinks(items []WorkItem) ([]Edge, []Anomaly) {
	known := make(map[string]bool, len(items))
	for _, item := range items {
		if item.Key == "" {
			continue
		}
		if _, seen := known[item.Key]; !seen {
			known[item.Key] = item.Excluded
		}
	}

	seen := make(map[Edge]struct{})
	var edges []Edge
	var anomalies []Anomaly

	for _, item := range items {
		if item.Key == "" {
			continue
		}
		for _, link := range item.Links {
			edge, anomaly, ok := resolveLink(item, link, known)
			if anomaly != nil {
				anomalies = append(anomalies, *anomaly)
			}
			if !ok {
				continue
			}
			if _, dup := seen[edge]; dup {
				continue
			}
			seen[edge] = struct{}{}
			edges = append(edges, edge)
		}
	}

	SortEdges(edges)
	return edges, anomalies
}

// resolveLink maps one record to an edge. ok is false when the record yields
// no edge; anomaly is set only when the drop deserves a warning.
func resolveLink(item WorkItem, link RawLink, excluded map[string]bool) (Edge, *Anomaly, bool) {
	target := strings.TrimSpace(link.Key)
	relation := normalizeRelation(link.Type)

	if relation == "" || target == "" {
		return Edge{}, &Anomaly{
			Kind:     AnomalyMalformedLink,
			Severity: SeverityWarning,
			Items:    []string{item.Key},
			Message:  fmt.Sprintf("%s: link record missing type or key (type=%q key=%q)", item.Key, link.Type, link.Key),
		}, false
	}

	direction, known := relationTable[relation]
	if !known {
		return Edge{}, &Anomaly{
			Kind:     AnomalyUnknownType,
			Severity: SeverityWarning,
			Items:    []string{item.Key, target},
			Message:  fmt.Sprintf("%s: unknown link type %q to %s", item.Key, link.Type, target),
		}, false
	}
	if direction == linkInformational {
		return Edge{}, nil, false
	}

	targetExcluded, inSet := excluded[target]
	if !inSet {
		return Edge{}, &Anomaly{
			Kind:     AnomalyUnknownItem,
			Severity: SeverityWarning,
			Items:    []string{item.Key},
			Message:  fmt.Sprintf("%s: %s link to %s, which is not in the snapshot", item.Key, relation, target),
		}, false
	}
	if target == item.Key {
		return Edge{}, &Anomaly{
			Kind:     AnomalySelfLink,
			Severity: SeverityWarning,
			Items:    []string{item.Key},
			Message:  fmt.Sprintf("%s: %s link to itself", item.Key, relation),
		}, false
	}
	if item.Excluded || targetExcluded {
		return Edge{}, nil, false
	}

	if direction == linkSourceFirst {
		return Edge{Prerequisite: item.Key, Dependent: target}, nil, true
	}
	return Edge{Prerequisite: target, Dependent: item.Key}, nil, true
}

// SortEdges orders edges by prerequisite, then dependent.
func SortEdges(edges []Edge) {
	slices.SortFunc(edges, compareEdges)
}

func compareEdges(a, b Edge) int {
	if c := strings.Compare(a.Prerequisite, b.Prerequisite); c != 0 {
		return c
	}
	return strings.Compare(a.Dependent, b.Dependent)
}
