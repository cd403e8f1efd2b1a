package record

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Ramsey-B/poppy/pkg/database"
	"github.com/Ramsey-B/poppy/pkg/models"
	"github.com/Ramsey-B/poppy/pkg/schema"
)

// ErrNoFields is returned when an update body has no updatable columns
// left after normalization and primary-key stripping.
var ErrNoFields = errors.New("no updatable fields")

// InvalidColumnError is returned when a request-body key is not a legal
// SQL identifier. Column names are interpolated into the statement text,
// so anything that fails the identifier rule is rejected outright.
type InvalidColumnError struct {
	Column string
}

func (e *InvalidColumnError) Error() string {
	return fmt.Sprintf("invalid column name %q", e.Column)
}

// Normalize returns a copy of body with empty strings replaced by nulls.
// Clients submit form values verbatim, so an empty input means "no value".
func Normalize(body models.Row) models.Row {
	out := make(models.Row, len(body))
	for k, v := range body {
		if s, ok := v.(string); ok && s == "" {
			out[k] = nil
			continue
		}
		out[k] = v
	}
	return out
}

// columns returns the body's keys in sorted order, validating each one.
func columns(body models.Row) ([]string, error) {
	cols := make([]string, 0, len(body))
	for k := range body {
		if !schema.ValidColumnName(k) {
			return nil, &InvalidColumnError{Column: k}
		}
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols, nil
}

// BuildList composes SELECT * over a managed table. No parameters.
func BuildList(table schema.Table) (string, []any) {
	sb := database.NewSelectBuilder()
	sb.Select("*")
	sb.From(table.Name)
	return sb.Build()
}

// BuildInsert composes a parameterized INSERT ... RETURNING * from the
// normalized body. An empty body composes a DEFAULT VALUES insert; the
// database decides whether the table's constraints allow it.
func BuildInsert(table schema.Table, body models.Row) (string, []any, error) {
	body = Normalize(body)

	cols, err := columns(body)
	if err != nil {
		return "", nil, err
	}

	if len(cols) == 0 {
		return fmt.Sprintf("INSERT INTO %s DEFAULT VALUES RETURNING *", table.Name), []any{}, nil
	}

	vals := make([]any, 0, len(cols))
	for _, col := range cols {
		vals = append(vals, body[col])
	}

	ib := database.NewInsertBuilder().
		InsertInto(table.Name).
		Cols(cols...).
		Values(vals...).
		Returning("*")

	query, args := ib.Build()
	return query, args, nil
}

// BuildUpdate composes a parameterized UPDATE ... RETURNING * addressed by
// primary key. The primary-key column is silently dropped from the SET
// list; it is only ever an address, never an updatable field.
func BuildUpdate(table schema.Table, id string, body models.Row) (string, []any, error) {
	body = Normalize(body)
	delete(body, table.PrimaryKey)

	cols, err := columns(body)
	if err != nil {
		return "", nil, err
	}
	if len(cols) == 0 {
		return "", nil, ErrNoFields
	}

	ub := database.NewUpdateBuilder()
	ub.Update(table.Name)

	assignments := make([]string, 0, len(cols))
	for _, col := range cols {
		assignments = append(assignments, ub.Assign(col, body[col]))
	}
	ub.Set(assignments...)
	ub.Where(ub.Equal(table.PrimaryKey, id))
	ub.Returning("*")

	query, args := ub.Build()
	return query, args, nil
}

// BuildDelete composes a parameterized DELETE ... RETURNING * addressed by
// primary key.
func BuildDelete(table schema.Table, id string) (string, []any) {
	db := database.NewDeleteBuilder()
	db.DeleteFrom(table.Name)
	db.Where(db.Equal(table.PrimaryKey, id))
	db.Returning("*")
	return db.Build()
}

// BuildCount composes SELECT COUNT(*) over a managed table. The result is
// a single row with one column named count.
func BuildCount(table schema.Table) (string, []any) {
	sb := database.NewSelectBuilder()
	sb.Select("COUNT(*) AS count")
	sb.From(table.Name)
	return sb.Build()
}
