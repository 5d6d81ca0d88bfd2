package catalog

import (
	"fmt"
	"net/url"
	"testing"

	"github.com/galaxykit/holocron/internal/schema"
)

func TestParseQueryDefaults(t *testing.T) {
	q := ParseQuery(schema.People, url.Values{})

	if q.Search != "" {
		t.Errorf("expected empty search, got %q", q.Search)
	}
	if len(q.Filters) != 0 {
		t.Errorf("expected no filters, got %v", q.Filters)
	}
	if q.SortBy != "id" || q.SortDesc {
		t.Errorf("expected default sort id asc, got %s desc=%v", q.SortBy, q.SortDesc)
	}
	if q.Page != 1 || q.Limit != 10 {
		t.Errorf("expected page 1 limit 10, got %d/%d", q.Page, q.Limit)
	}
}

func TestParseQueryWhitelists(t *testing.T) {
	params := url.Values{
		"name":       {"luke"},
		"gender":     {"male"},
		"homeworld":  {"Tatooine"}, // not in the filter whitelist
		"bogus":      {"x"},
		"sortBy":     {"height"},
		"sortOrder":  {"DESC"},
		"page":       {"3"},
		"limit":      {"25"},
		"irrelevant": {"y"},
	}

	q := ParseQuery(schema.People, params)

	if q.Search != "luke" {
		t.Errorf("search mismatch: %q", q.Search)
	}
	if len(q.Filters) != 1 || q.Filters[0] != (Filter{Field: "gender", Value: "male"}) {
		t.Errorf("filters mismatch: %v", q.Filters)
	}
	if q.SortBy != "height" || !q.SortDesc {
		t.Errorf("sort mismatch: %s desc=%v", q.SortBy, q.SortDesc)
	}
	if q.Page != 3 || q.Limit != 25 {
		t.Errorf("pagination mismatch: %d/%d", q.Page, q.Limit)
	}
	if q.Offset() != 50 {
		t.Errorf("offset mismatch: %d", q.Offset())
	}
}

func TestParseQueryDegradesToDefaults(t *testing.T) {
	cases := []struct {
		name   string
		params url.Values
	}{
		{"unlisted sort field", url.Values{"sortBy": {"films"}}},
		{"injection attempt", url.Values{"sortBy": {"id; DROP TABLE people"}}},
		{"bad sort order", url.Values{"sortOrder": {"sideways"}}},
		{"zero page", url.Values{"page": {"0"}}},
		{"negative limit", url.Values{"limit": {"-5"}}},
		{"non-numeric page", url.Values{"page": {"abc"}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := ParseQuery(schema.People, tc.params)
			if q.SortBy != "id" || q.SortDesc {
				t.Errorf("expected default sort, got %s desc=%v", q.SortBy, q.SortDesc)
			}
			if q.Page != 1 || q.Limit != 10 {
				t.Errorf("expected default pagination, got %d/%d", q.Page, q.Limit)
			}
		})
	}
}

func seedPeople(t *testing.T, cat *Catalog, names ...string) {
	t.Helper()
	for i, name := range names {
		_, err := cat.Create(map[string]any{
			"name":   name,
			"height": fmt.Sprintf("%d", 150+i),
			"gender": []string{"male", "female"}[i%2],
		})
		if err != nil {
			t.Fatalf("seed %s: %v", name, err)
		}
	}
}

func TestListFreeTextCaseInsensitive(t *testing.T) {
	store := newTestStore(t)
	cat := store.Catalog(schema.People)
	seedPeople(t, cat, "Luke Skywalker", "Leia Organa", "Han Solo")

	rows, total, err := cat.List(Query{Search: "luke", SortBy: "id", Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("expected 1 match, got %d rows total=%d", len(rows), total)
	}
	if rows[0].Values["name"] != "Luke Skywalker" {
		t.Errorf("wrong match: %v", rows[0].Values["name"])
	}

	// Empty search matches everything.
	_, total, err = cat.List(Query{SortBy: "id", Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 3 {
		t.Errorf("empty search should match all, got %d", total)
	}
}

func TestListFiltersAreConjunctive(t *testing.T) {
	store := newTestStore(t)
	cat := store.Catalog(schema.People)
	seedPeople(t, cat, "Luke Skywalker", "Leia Organa", "Lando Calrissian", "Han Solo")

	rows, total, err := cat.List(Query{
		Search:  "l",
		Filters: []Filter{{Field: "gender", Value: "male"}},
		SortBy:  "id",
		Page:    1,
		Limit:   10,
	})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	// "l" matches all four names; gender=male keeps Luke and Lando.
	if total != 2 {
		t.Errorf("expected 3 conjunctive matches, got %d", total)
	}
	for _, r := range rows {
		if r.Values["gender"] != "male" {
			t.Errorf("filter leaked: %v", r.Values)
		}
	}
}

func TestListPaginationBounds(t *testing.T) {
	store := newTestStore(t)
	cat := store.Catalog(schema.People)
	seedPeople(t, cat, "A", "B", "C", "D", "E", "F", "G")

	rows, total, err := cat.List(Query{SortBy: "name", Page: 2, Limit: 3})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 7 {
		t.Errorf("total mismatch: %d", total)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows on page 2, got %d", len(rows))
	}
	if rows[0].Values["name"] != "D" {
		t.Errorf("page 2 should start at D, got %v", rows[0].Values["name"])
	}

	// Last partial page.
	rows, _, err = cat.List(Query{SortBy: "name", Page: 3, Limit: 3})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(rows) != 1 || rows[0].Values["name"] != "G" {
		t.Errorf("page 3 mismatch: %v", rows)
	}

	// Out-of-range page: empty rows, correct total, no error.
	rows, total, err = cat.List(Query{SortBy: "name", Page: 50, Limit: 3})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected empty out-of-range page, got %d rows", len(rows))
	}
	if total != 7 {
		t.Errorf("out-of-range page lost the total: %d", total)
	}
}

func TestListSortDirection(t *testing.T) {
	store := newTestStore(t)
	cat := store.Catalog(schema.People)
	seedPeople(t, cat, "B", "A", "C")

	rows, _, err := cat.List(Query{SortBy: "name", SortDesc: true, Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if rows[0].Values["name"] != "C" || rows[2].Values["name"] != "A" {
		t.Errorf("descending sort mismatch: %v %v", rows[0].Values["name"], rows[2].Values["name"])
	}
}

func TestListUnlistedSortFallsBack(t *testing.T) {
	store := newTestStore(t)
	cat := store.Catalog(schema.People)
	seedPeople(t, cat, "B", "A")

	// A hand-built query with a non-whitelisted sort column must not error.
	rows, _, err := cat.List(Query{SortBy: "films", Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Values["name"] != "B" {
		t.Errorf("fallback sort should be id asc (insertion order), got %v", rows[0].Values["name"])
	}
}

func TestListNumberFilter(t *testing.T) {
	store := newTestStore(t)
	cat := store.Catalog(schema.Films)

	for i, title := range []string{"A New Hope", "The Empire Strikes Back"} {
		if _, err := cat.Create(map[string]any{"title": title, "episode_id": float64(4 + i)}); err != nil {
			t.Fatalf("seed film: %v", err)
		}
	}

	rows, total, err := cat.List(Query{
		Filters: []Filter{{Field: "episode_id", Value: "5"}},
		SortBy:  "id",
		Page:    1,
		Limit:   10,
	})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 1 || rows[0].Values["title"] != "The Empire Strikes Back" {
		t.Errorf("number filter mismatch: total=%d rows=%v", total, rows)
	}
}
