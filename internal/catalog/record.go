package catalog

import (
	"encoding/json"
	"fmt"

	"github.com/galaxykit/holocron/internal/schema"
)

// Record is one row of an entity table. Values holds the scalar fields by
// name; Relations holds the opaque reference arrays. SourceURL, Created and
// Edited are provenance fields copied verbatim from upstream when the record
// was sync-created.
type Record struct {
	ID        int64
	Values    map[string]any
	Relations map[string][]string
	SourceURL string
	Created   string
	Edited    string

	sc schema.Schema
}

// MarshalJSON flattens the record: surrogate id, every schema field, and the
// provenance fields all appear at the top level, matching the row shape
// served by the API.
func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.sc.Fields)+len(r.sc.Relations)+4)
	out["id"] = r.ID
	for _, f := range r.sc.Fields {
		if v, ok := r.Values[f.Name]; ok {
			out[f.Name] = v
		} else {
			out[f.Name] = nil
		}
	}
	for _, rel := range r.sc.Relations {
		if v, ok := r.Relations[rel]; ok {
			out[rel] = v
		} else {
			out[rel] = []string{}
		}
	}
	out["url"] = r.SourceURL
	out["created"] = r.Created
	out["edited"] = r.Edited
	return json.Marshal(out)
}

// fields is the schema-filtered form of a raw record mapping, ready to bind
// into an INSERT or UPDATE.
type fields struct {
	values    map[string]any
	relations map[string]string // marshaled JSON arrays
	sourceURL *string
	created   *string
	edited    *string
}

// extractFields filters a raw mapping down to the schema's fields. Unknown
// keys are ignored. Scalars keep their decoded value (string or float64);
// relation arrays are normalized to string slices and marshaled for storage.
// Only keys present in raw appear in the result, so partial updates touch
// only the supplied fields.
func extractFields(sc schema.Schema, raw map[string]any) (fields, error) {
	f := fields{
		values:    make(map[string]any),
		relations: make(map[string]string),
	}
	for name, v := range raw {
		switch {
		case name == "url":
			s, ok := v.(string)
			if !ok {
				return f, fmt.Errorf("field url: expected string: %w", ErrInvalidField)
			}
			f.sourceURL = &s
		case name == "created" || name == "edited":
			s, ok := v.(string)
			if !ok {
				return f, fmt.Errorf("field %s: expected string: %w", name, ErrInvalidField)
			}
			if name == "created" {
				f.created = &s
			} else {
				f.edited = &s
			}
		case sc.HasRelation(name):
			refs, err := toStringSlice(v)
			if err != nil {
				return f, fmt.Errorf("field %s: %w: %w", name, ErrInvalidField, err)
			}
			data, err := json.Marshal(refs)
			if err != nil {
				return f, fmt.Errorf("field %s: %w", name, err)
			}
			f.relations[name] = string(data)
		default:
			fd, ok := sc.Field(name)
			if !ok {
				continue
			}
			if v == nil {
				f.values[name] = nil
				continue
			}
			switch fd.Type {
			case schema.TypeNumber:
				switch n := v.(type) {
				case float64:
					f.values[name] = n
				case int64:
					f.values[name] = n
				case int:
					f.values[name] = int64(n)
				default:
					return f, fmt.Errorf("field %s: expected number: %w", name, ErrInvalidField)
				}
			default:
				s, ok := v.(string)
				if !ok {
					return f, fmt.Errorf("field %s: expected string: %w", name, ErrInvalidField)
				}
				f.values[name] = s
			}
		}
	}
	return f, nil
}

// toStringSlice normalizes a decoded JSON array into a string slice.
func toStringSlice(v any) ([]string, error) {
	switch arr := v.(type) {
	case nil:
		return []string{}, nil
	case []string:
		return arr, nil
	case []any:
		out := make([]string, 0, len(arr))
		for _, item := range arr {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected array of strings")
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected array of strings")
	}
}
