// Package schema declares the entity descriptors that drive the generic
// catalog store and query builder. A Schema is pure data: the store derives
// its DDL from it, the query builder derives its whitelists from it, and the
// sync engine derives its field mapping from it.
package schema

// FieldType is the semantic type of a scalar field.
type FieldType string

const (
	TypeString FieldType = "string"
	TypeNumber FieldType = "number"
	TypeDate   FieldType = "date"
)

// Field describes one scalar field of an entity.
type Field struct {
	Name string
	Type FieldType
}

// Schema describes one entity: its fields, natural key, and the whitelists
// that bound filtering and sorting.
type Schema struct {
	// Name is the singular entity name used in messages ("person not found").
	Name string
	// Route is the plural route segment and table name ("people").
	Route string
	// Fields are the scalar fields, in declaration order.
	Fields []Field
	// Relations are arrays of opaque reference strings, stored verbatim and
	// never dereferenced.
	Relations []string
	// NaturalKey is the field used for upsert matching across sync runs.
	NaturalKey string
	// SearchField is the free-text field matched as a case-insensitive
	// substring.
	SearchField string
	// FilterFields are the fields usable for exact-match filtering.
	FilterFields []string
	// SortFields are the fields usable for sorting.
	SortFields []string
	// UpstreamPath is the collection path on the upstream API ("/people/").
	UpstreamPath string
}

// Field returns the scalar field with the given name.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// HasRelation reports whether name is a relation field of this entity.
func (s Schema) HasRelation(name string) bool {
	for _, r := range s.Relations {
		if r == name {
			return true
		}
	}
	return false
}

// CanFilter reports whether name is in the exact-match filter whitelist.
func (s Schema) CanFilter(name string) bool {
	for _, f := range s.FilterFields {
		if f == name {
			return true
		}
	}
	return false
}

// CanSort reports whether name is in the sort whitelist.
func (s Schema) CanSort(name string) bool {
	for _, f := range s.SortFields {
		if f == name {
			return true
		}
	}
	return false
}

// Table returns the table name backing this entity.
func (s Schema) Table() string {
	return s.Route
}

// sortFields builds the default sort whitelist: the surrogate id, every
// scalar field, and the provenance timestamps.
func sortFields(fields []Field) []string {
	out := make([]string, 0, len(fields)+3)
	out = append(out, "id")
	for _, f := range fields {
		out = append(out, f.Name)
	}
	out = append(out, "created", "edited")
	return out
}
