package analysis

import (
	"reflect"
	"testing"

	"github.com/vanderheijden86/casedesk/pkg/model"
)

func TestLinkCases_SharedSourceAndEntity(t *testing.T) {
	cases := []model.Case{
		{ID: "c1", Source: "+1 (555) 0100"},
		{ID: "c2", Source: "+15550100"},
		{ID: "c3", Source: "+15550999", RelatedEntities: []string{"Acme Holdings"}},
		{ID: "c4", Source: "+15550888", RelatedEntities: []string{" acme holdings "}},
		{ID: "c5", Source: "+15550777", RelatedEntities: []string{"ACME HOLDINGS"}},
		{ID: "c6", Source: "+15550666"},
	}
	l := LinkCases(cases, nil)

	want := [][]string{{"c3", "c4", "c5"}, {"c1", "c2"}}
	if got := l.Clusters(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Clusters() = %v, want %v", got, want)
	}
	if got := l.Linked("c4"); !reflect.DeepEqual(got, []string{"c3", "c5"}) {
		t.Errorf("Linked(c4) = %v", got)
	}
	if got := l.Linked("c6"); got != nil {
		t.Errorf("unlinked case should have no links, got %v", got)
	}
	if got := l.Linked("missing"); got != nil {
		t.Errorf("unknown case should have no links, got %v", got)
	}
}

func TestLinkCases_NeighborsChainToFirst(t *testing.T) {
	cases := []model.Case{
		{ID: "a", Source: "5550100"},
		{ID: "b", Source: "5550100"},
		{ID: "c", Source: "5550100"},
	}
	l := LinkCases(cases, nil)
	if got := l.Neighbors("a"); !reflect.DeepEqual(got, []string{"b", "c"}) {
		t.Errorf("Neighbors(a) = %v", got)
	}
	if got := l.Neighbors("b"); !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("Neighbors(b) = %v", got)
	}
	if got := l.Neighbors("nope"); got != nil {
		t.Errorf("Neighbors(nope) = %v", got)
	}
}

func TestLinkCases_ShortNumbersIgnored(t *testing.T) {
	cases := []model.Case{
		{ID: "a", Source: "911"},
		{ID: "b", Source: "911"},
	}
	if got := LinkCases(cases, nil).Clusters(); len(got) != 0 {
		t.Errorf("short numbers should not link cases: %v", got)
	}
}

func TestLinkCases_DuplicateIDs(t *testing.T) {
	cases := []model.Case{
		{ID: "a", Source: "+15550100"},
		{ID: "a", Source: "+15550100"},
	}
	if got := LinkCases(cases, nil).Clusters(); len(got) != 0 {
		t.Errorf("a case should not link to itself: %v", got)
	}
}

func TestLinkCases_WatchlistHits(t *testing.T) {
	cases := []model.Case{
		{ID: "a", Source: "+1 555 0100", RelatedEntities: []string{"+15550100"}},
		{ID: "b", Source: "+15550200", RelatedEntities: []string{"+1-555-0300"}},
		{ID: "c", Source: "+15550400"},
	}
	watchlist := []model.WatchlistEntry{
		{ID: "w1", Name: "Ann", PhoneNumber: "+15550100"},
		{ID: "w2", Name: "Bob", PhoneNumber: "+1 555 0300"},
	}
	l := LinkCases(cases, watchlist)

	if hits := l.WatchlistHits("a"); len(hits) != 1 || hits[0].ID != "w1" {
		t.Errorf("WatchlistHits(a) = %v", hits)
	}
	if hits := l.WatchlistHits("b"); len(hits) != 1 || hits[0].ID != "w2" {
		t.Errorf("WatchlistHits(b) = %v", hits)
	}
	if hits := l.WatchlistHits("c"); len(hits) != 0 {
		t.Errorf("WatchlistHits(c) = %v", hits)
	}
}
