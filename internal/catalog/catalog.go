package catalog

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/galaxykit/holocron/internal/schema"
)

// Catalog is the store bound to one entity schema. All mutating operations
// are atomic with respect to a single record; the catalog never validates
// that referenced identifiers in relation fields exist.
type Catalog struct {
	store *Store
	sc    schema.Schema
}

// Schema returns the entity schema this catalog serves.
func (c *Catalog) Schema() schema.Schema {
	return c.sc
}

// columns returns every non-id column in table order.
func (c *Catalog) columns() []string {
	cols := make([]string, 0, len(c.sc.Fields)+len(c.sc.Relations)+3)
	for _, f := range c.sc.Fields {
		cols = append(cols, f.Name)
	}
	cols = append(cols, c.sc.Relations...)
	cols = append(cols, "source_url", "created", "edited")
	return cols
}

// scanRecord scans one row (id plus every column from columns()) into a Record.
func (c *Catalog) scanRecord(scan func(dest ...any) error) (*Record, error) {
	cols := c.columns()
	dest := make([]any, 0, len(cols)+1)

	var id int64
	dest = append(dest, &id)

	numbers := make(map[string]*sql.NullFloat64)
	strs := make(map[string]*sql.NullString)
	for _, f := range c.sc.Fields {
		if f.Type == schema.TypeNumber {
			v := new(sql.NullFloat64)
			numbers[f.Name] = v
			dest = append(dest, v)
		} else {
			v := new(sql.NullString)
			strs[f.Name] = v
			dest = append(dest, v)
		}
	}
	rels := make(map[string]*sql.NullString)
	for _, r := range c.sc.Relations {
		v := new(sql.NullString)
		rels[r] = v
		dest = append(dest, v)
	}
	var sourceURL, created, edited sql.NullString
	dest = append(dest, &sourceURL, &created, &edited)

	if err := scan(dest...); err != nil {
		return nil, err
	}

	rec := &Record{
		ID:        id,
		Values:    make(map[string]any),
		Relations: make(map[string][]string),
		SourceURL: sourceURL.String,
		Created:   created.String,
		Edited:    edited.String,
		sc:        c.sc,
	}
	for name, v := range numbers {
		if v.Valid {
			rec.Values[name] = v.Float64
		}
	}
	for name, v := range strs {
		if v.Valid {
			rec.Values[name] = v.String
		}
	}
	for name, v := range rels {
		if !v.Valid || v.String == "" {
			continue
		}
		var refs []string
		if err := json.Unmarshal([]byte(v.String), &refs); err != nil {
			return nil, fmt.Errorf("decode relation %s: %w", name, err)
		}
		rec.Relations[name] = refs
	}
	return rec, nil
}

// Get returns the record with the given surrogate id.
func (c *Catalog) Get(id int64) (*Record, error) {
	query := fmt.Sprintf("SELECT id, %s FROM %s WHERE id = ?",
		strings.Join(c.columns(), ", "), c.sc.Table())
	rec, err := c.scanRecord(c.store.conn.QueryRow(query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s %d: %w", c.sc.Name, id, err)
	}
	return rec, nil
}

// Create inserts a new record from a raw field mapping. The natural-key field
// must be present and non-empty; a duplicate natural key fails with
// ErrConflict. Missing provenance timestamps default to now.
func (c *Catalog) Create(raw map[string]any) (*Record, error) {
	f, err := extractFields(c.sc, raw)
	if err != nil {
		return nil, err
	}
	key, ok := f.values[c.sc.NaturalKey].(string)
	if !ok || key == "" {
		return nil, ErrMissingNaturalKey
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if f.created == nil {
		f.created = &now
	}
	if f.edited == nil {
		f.edited = &now
	}

	cols := c.columns()
	args := c.insertArgs(f)
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		c.sc.Table(), strings.Join(cols, ", "), placeholders(len(cols)))

	res, err := c.store.conn.Exec(query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("create %s: %w", c.sc.Name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", c.sc.Name, err)
	}
	return c.Get(id)
}

// Upsert inserts or replaces the record with the given natural-key value.
// On replace, every non-key field is overwritten and the surrogate id is
// preserved.
func (c *Catalog) Upsert(key string, raw map[string]any) (*Record, error) {
	tx, err := c.store.Begin()
	if err != nil {
		return nil, fmt.Errorf("upsert %s: %w", c.sc.Name, err)
	}
	if err := c.UpsertTx(tx, key, raw); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("upsert %s: %w", c.sc.Name, err)
	}
	return c.GetByNaturalKey(key)
}

// UpsertTx performs a natural-key upsert inside an existing transaction. The
// sync engine uses it to apply a full reconciliation batch atomically.
func (c *Catalog) UpsertTx(tx *sql.Tx, key string, raw map[string]any) error {
	f, err := extractFields(c.sc, raw)
	if err != nil {
		return fmt.Errorf("upsert %s %q: %w", c.sc.Name, key, err)
	}
	f.values[c.sc.NaturalKey] = key

	cols := c.columns()
	sets := make([]string, 0, len(cols))
	for _, col := range cols {
		if col == c.sc.NaturalKey {
			continue
		}
		sets = append(sets, fmt.Sprintf("%s = excluded.%s", col, col))
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT(%s) DO UPDATE SET %s",
		c.sc.Table(), strings.Join(cols, ", "), placeholders(len(cols)),
		c.sc.NaturalKey, strings.Join(sets, ", "))

	if _, err := tx.Exec(query, c.insertArgs(f)...); err != nil {
		return fmt.Errorf("upsert %s %q: %w", c.sc.Name, key, err)
	}
	return nil
}

// GetByNaturalKey returns the record with the given natural-key value.
func (c *Catalog) GetByNaturalKey(key string) (*Record, error) {
	query := fmt.Sprintf("SELECT id, %s FROM %s WHERE %s = ?",
		strings.Join(c.columns(), ", "), c.sc.Table(), c.sc.NaturalKey)
	rec, err := c.scanRecord(c.store.conn.QueryRow(query, key).Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s %q: %w", c.sc.Name, key, err)
	}
	return rec, nil
}

// Update merges the supplied fields into the record with the given id.
// Fields absent from raw are left unchanged. The edited timestamp is bumped
// unless the caller supplies one.
func (c *Catalog) Update(id int64, raw map[string]any) (*Record, error) {
	f, err := extractFields(c.sc, raw)
	if err != nil {
		return nil, err
	}

	var sets []string
	var args []any
	for _, fd := range c.sc.Fields {
		if v, ok := f.values[fd.Name]; ok {
			sets = append(sets, fd.Name+" = ?")
			args = append(args, v)
		}
	}
	for _, rel := range c.sc.Relations {
		if v, ok := f.relations[rel]; ok {
			sets = append(sets, rel+" = ?")
			args = append(args, v)
		}
	}
	if f.sourceURL != nil {
		sets = append(sets, "source_url = ?")
		args = append(args, *f.sourceURL)
	}
	if f.created != nil {
		sets = append(sets, "created = ?")
		args = append(args, *f.created)
	}
	if f.edited == nil {
		now := time.Now().UTC().Format(time.RFC3339)
		f.edited = &now
	}
	sets = append(sets, "edited = ?")
	args = append(args, *f.edited)
	args = append(args, id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?",
		c.sc.Table(), strings.Join(sets, ", "))
	res, err := c.store.conn.Exec(query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("update %s %d: %w", c.sc.Name, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update %s %d: %w", c.sc.Name, id, err)
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return c.Get(id)
}

// Delete removes the record with the given id. Surrogate ids are never
// reused, so a deleted id stays gone until sync recreates the natural key
// under a fresh id.
func (c *Catalog) Delete(id int64) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", c.sc.Table())
	res, err := c.store.conn.Exec(query, id)
	if err != nil {
		return fmt.Errorf("delete %s %d: %w", c.sc.Name, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s %d: %w", c.sc.Name, id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of records in the catalog.
func (c *Catalog) Count() (int, error) {
	var n int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", c.sc.Table())
	if err := c.store.conn.QueryRow(query).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", c.sc.Name, err)
	}
	return n, nil
}

// insertArgs binds field values in columns() order, NULL for anything the
// mapping did not supply.
func (c *Catalog) insertArgs(f fields) []any {
	args := make([]any, 0, len(c.sc.Fields)+len(c.sc.Relations)+3)
	for _, fd := range c.sc.Fields {
		if v, ok := f.values[fd.Name]; ok {
			args = append(args, v)
		} else {
			args = append(args, nil)
		}
	}
	for _, rel := range c.sc.Relations {
		if v, ok := f.relations[rel]; ok {
			args = append(args, v)
		} else {
			args = append(args, nil)
		}
	}
	args = append(args, deref(f.sourceURL), deref(f.created), deref(f.edited))
	return args
}

func deref(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// isUniqueViolation reports whether err is a sqlite unique constraint
// failure. The modernc driver exposes no typed error for this.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
