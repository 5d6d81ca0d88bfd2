package catalog

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/galaxykit/holocron/internal/schema"
)

// Default pagination when the caller supplies nothing usable.
const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// Filter is one exact-match condition on a whitelisted field.
type Filter struct {
	Field string
	Value string
}

// Query is a validated filter/sort/page request against one catalog. It can
// only be built from a schema's whitelists, so every field name it carries is
// safe to splice into SQL; values are always bound as parameters.
type Query struct {
	// Search is the case-insensitive substring matched against the schema's
	// free-text field. Empty matches everything.
	Search string
	// Filters are exact-match conditions, AND-ed together and with Search.
	Filters []Filter
	// SortBy is a whitelisted field name; SortDesc selects direction.
	SortBy   string
	SortDesc bool
	// Page and Limit are both >= 1.
	Page  int
	Limit int
}

// Offset returns the number of rows skipped before the requested page.
func (q Query) Offset() int {
	return (q.Page - 1) * q.Limit
}

// ParseQuery builds a Query from request parameters, validated against the
// schema's whitelists. Unknown parameter names are ignored; malformed values
// degrade to defaults rather than failing.
func ParseQuery(sc schema.Schema, params url.Values) Query {
	q := Query{
		Search: params.Get(sc.SearchField),
		SortBy: "id",
		Page:   DefaultPage,
		Limit:  DefaultLimit,
	}

	for _, field := range sc.FilterFields {
		if field == sc.SearchField {
			continue
		}
		if v := params.Get(field); v != "" {
			q.Filters = append(q.Filters, Filter{Field: field, Value: v})
		}
	}

	if by := params.Get("sortBy"); by != "" && sc.CanSort(by) {
		q.SortBy = by
	}
	if strings.EqualFold(params.Get("sortOrder"), "desc") {
		q.SortDesc = true
	}

	if n, err := strconv.Atoi(params.Get("page")); err == nil && n >= 1 {
		q.Page = n
	}
	if n, err := strconv.Atoi(params.Get("limit")); err == nil && n >= 1 {
		q.Limit = n
	}

	return q
}

// List returns the page of records matching the query, plus the total count
// matching its filters before pagination.
func (c *Catalog) List(q Query) ([]Record, int, error) {
	where, args := c.buildWhere(q)

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", c.sc.Table(), where)
	if err := c.store.conn.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", c.sc.Name, err)
	}

	dir := "ASC"
	if q.SortDesc {
		dir = "DESC"
	}
	sortBy := q.SortBy
	if sortBy == "" || !c.canOrderBy(sortBy) {
		// A Query built by ParseQuery is already whitelisted; this guards
		// hand-constructed queries.
		sortBy = "id"
	}

	query := fmt.Sprintf("SELECT id, %s FROM %s%s ORDER BY %s %s LIMIT ? OFFSET ?",
		strings.Join(c.columns(), ", "), c.sc.Table(), where, sortBy, dir)
	rows, err := c.store.conn.Query(query, append(args, q.Limit, q.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", c.sc.Name, err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := c.scanRecord(rows.Scan)
		if err != nil {
			return nil, 0, fmt.Errorf("list %s: %w", c.sc.Name, err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", c.sc.Name, err)
	}

	return records, total, nil
}

// buildWhere renders the conjunctive predicate for a query. Field names come
// from the schema whitelists; every value is bound as a parameter.
func (c *Catalog) buildWhere(q Query) (string, []any) {
	var conds []string
	var args []any

	if q.Search != "" {
		// instr+lower keeps substring matching case-insensitive regardless
		// of the column's collation.
		conds = append(conds, fmt.Sprintf("instr(lower(%s), lower(?)) > 0", c.sc.SearchField))
		args = append(args, q.Search)
	}
	for _, f := range q.Filters {
		if !c.sc.CanFilter(f.Field) {
			continue
		}
		conds = append(conds, f.Field+" = ?")
		args = append(args, f.Value)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// canOrderBy reports whether col is a legal ORDER BY target.
func (c *Catalog) canOrderBy(col string) bool {
	return col == "id" || c.sc.CanSort(col)
}
