package schema

import "testing"

func TestLookupByRoute(t *testing.T) {
	cases := []struct {
		route string
		name  string
	}{
		{"films", "film"},
		{"people", "person"},
		{"planets", "planet"},
		{"species", "species"},
		{"starships", "starship"},
		{"vehicles", "vehicle"},
	}
	for _, tc := range cases {
		sc, ok := Lookup(tc.route)
		if !ok {
			t.Fatalf("Lookup(%q) not found", tc.route)
		}
		if sc.Name != tc.name {
			t.Errorf("Lookup(%q).Name = %q, want %q", tc.route, sc.Name, tc.name)
		}
	}

	if _, ok := Lookup("droids"); ok {
		t.Error("Lookup of unregistered route should fail")
	}
}

func TestAllRegistered(t *testing.T) {
	schemas := All()
	if len(schemas) != 6 {
		t.Fatalf("expected 6 schemas, got %d", len(schemas))
	}
	for _, sc := range schemas {
		if sc.NaturalKey == "" || sc.SearchField == "" || sc.UpstreamPath == "" {
			t.Errorf("%s: incomplete descriptor: %+v", sc.Route, sc)
		}
		if _, ok := sc.Field(sc.NaturalKey); !ok {
			t.Errorf("%s: natural key %q is not a declared field", sc.Route, sc.NaturalKey)
		}
		if _, ok := sc.Field(sc.SearchField); !ok {
			t.Errorf("%s: search field %q is not a declared field", sc.Route, sc.SearchField)
		}
		for _, f := range sc.FilterFields {
			if _, ok := sc.Field(f); !ok {
				t.Errorf("%s: filter field %q is not a declared field", sc.Route, f)
			}
		}
	}
}

func TestSortWhitelist(t *testing.T) {
	sc, _ := Lookup("people")

	for _, field := range []string{"id", "name", "height", "created", "edited"} {
		if !sc.CanSort(field) {
			t.Errorf("expected %q to be sortable", field)
		}
	}
	// Relation fields are never sortable.
	if sc.CanSort("films") {
		t.Error("relation field must not be sortable")
	}
	if sc.CanSort("name; DROP TABLE people") {
		t.Error("arbitrary input must not be sortable")
	}
}

func TestFilterWhitelist(t *testing.T) {
	sc, _ := Lookup("starships")

	for _, field := range []string{"model", "starship_class", "manufacturer"} {
		if !sc.CanFilter(field) {
			t.Errorf("expected %q to be filterable", field)
		}
	}
	if sc.CanFilter("name") {
		t.Error("free-text field is not in the exact-match whitelist")
	}
	if sc.CanFilter("crew") {
		t.Error("unlisted field must not be filterable")
	}
}

func TestRelations(t *testing.T) {
	sc, _ := Lookup("films")
	for _, rel := range []string{"species", "starships", "vehicles", "characters", "planets"} {
		if !sc.HasRelation(rel) {
			t.Errorf("expected relation %q", rel)
		}
	}
	if sc.HasRelation("director") {
		t.Error("scalar field must not be a relation")
	}
}
