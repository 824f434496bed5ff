package analysis

import (
	"sort"
	"strings"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/vanderheijden86/casedesk/pkg/model"
)

// Links connects cases that share a caller number or a related entity, and
// matches cases against watchlist phone numbers. Clusters of linked cases
// point at repeated callers or coordinated schemes.
type Links struct {
	nodeOf   map[string]int64
	idOf     map[int64]string
	g        *simple.UndirectedGraph
	clusters [][]string
	watch    map[string][]model.WatchlistEntry
}

// LinkCases builds the case link graph.
func LinkCases(cases []model.Case, watchlist []model.WatchlistEntry) *Links {
	l := &Links{
		nodeOf: make(map[string]int64, len(cases)),
		idOf:   make(map[int64]string, len(cases)),
		g:      simple.NewUndirectedGraph(),
		watch:  make(map[string][]model.WatchlistEntry),
	}
	for _, c := range cases {
		if _, dup := l.nodeOf[c.ID]; dup {
			continue
		}
		n := l.g.NewNode()
		l.g.AddNode(n)
		l.nodeOf[c.ID] = n.ID()
		l.idOf[n.ID()] = c.ID
	}

	// Cases sharing a key are chained to the first case that had it, which
	// yields the same components as a full clique.
	firstByKey := make(map[string]int64)
	for _, c := range cases {
		id := l.nodeOf[c.ID]
		for _, key := range linkKeys(c) {
			first, ok := firstByKey[key]
			if !ok {
				firstByKey[key] = id
				continue
			}
			if first != id && !l.g.HasEdgeBetween(first, id) {
				l.g.SetEdge(l.g.NewEdge(l.g.Node(first), l.g.Node(id)))
			}
		}
	}

	byPhone := make(map[string][]model.WatchlistEntry)
	for _, w := range watchlist {
		if p := normalizePhone(w.PhoneNumber); p != "" {
			byPhone[p] = append(byPhone[p], w)
		}
	}
	for _, c := range cases {
		seen := make(map[string]bool)
		for _, key := range append([]string{c.Source}, c.RelatedEntities...) {
			for _, w := range byPhone[normalizePhone(key)] {
				if !seen[w.ID] {
					seen[w.ID] = true
					l.watch[c.ID] = append(l.watch[c.ID], w)
				}
			}
		}
	}

	for _, comp := range topo.ConnectedComponents(l.g) {
		if len(comp) < 2 {
			continue
		}
		ids := make([]string, 0, len(comp))
		for _, n := range comp {
			ids = append(ids, l.idOf[n.ID()])
		}
		sort.Strings(ids)
		l.clusters = append(l.clusters, ids)
	}
	sort.Slice(l.clusters, func(i, j int) bool {
		if len(l.clusters[i]) != len(l.clusters[j]) {
			return len(l.clusters[i]) > len(l.clusters[j])
		}
		return l.clusters[i][0] < l.clusters[j][0]
	})
	return l
}

func linkKeys(c model.Case) []string {
	var keys []string
	if p := normalizePhone(c.Source); p != "" {
		keys = append(keys, "phone:"+p)
	}
	for _, e := range c.RelatedEntities {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			keys = append(keys, "entity:"+e)
		}
	}
	return keys
}

// normalizePhone keeps digits and a leading plus, so "+1 (555) 0100" and
// "+15550100" compare equal.
func normalizePhone(s string) string {
	var b strings.Builder
	for i, r := range strings.TrimSpace(s) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	if b.Len() < 4 {
		return ""
	}
	return b.String()
}

// Linked returns the IDs of every case in the same cluster as id, excluding
// id itself, sorted.
func (l *Links) Linked(id string) []string {
	for _, c := range l.clusters {
		i := sort.SearchStrings(c, id)
		if i < len(c) && c[i] == id {
			out := make([]string, 0, len(c)-1)
			out = append(out, c[:i]...)
			return append(out, c[i+1:]...)
		}
	}
	return nil
}

// Neighbors returns the cases directly linked to id.
func (l *Links) Neighbors(id string) []string {
	n, ok := l.nodeOf[id]
	if !ok {
		return nil
	}
	var out []string
	it := l.g.From(n)
	for it.Next() {
		out = append(out, l.idOf[it.Node().ID()])
	}
	sort.Strings(out)
	return out
}

// Clusters returns every group of two or more linked cases, largest first.
func (l *Links) Clusters() [][]string { return l.clusters }

// WatchlistHits returns the watchlist entries whose phone number appears as
// the caller or a related entity of case id.
func (l *Links) WatchlistHits(id string) []model.WatchlistEntry { return l.watch[id] }
