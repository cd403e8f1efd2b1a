// Package schema is the registry of tables managed by the generic CRUD
// layer. The set is closed: a request naming any other table is rejected
// before SQL is ever composed.
package schema

import (
	"regexp"
	"strings"
)

// Table describes one managed table.
type Table struct {
	// Name is the table identifier as it appears in the database and in
	// request paths. Never user-supplied.
	Name string

	// PrimaryKey is the column used to address rows on UPDATE and DELETE.
	PrimaryKey string
}

// tables holds the twelve managed tables in route registration order.
var tables = []Table{
	{Name: "blood_donation_campaigns", PrimaryKey: "campaign_id"},
	{Name: "blood_inventory", PrimaryKey: "inventory_id"},
	{Name: "blood_tests", PrimaryKey: "test_id"},
	{Name: "bloodbanks", PrimaryKey: "bloodbank_id"},
	{Name: "donations", PrimaryKey: "donation_id"},
	{Name: "donor_eligibility", PrimaryKey: "eligibility_id"},
	{Name: "donors", PrimaryKey: "donor_id"},
	{Name: "emergency_requests", PrimaryKey: "request_id"},
	{Name: "hospitals", PrimaryKey: "hospital_id"},
	{Name: "request_fulfillments", PrimaryKey: "fulfillment_id"},
	{Name: "staff", PrimaryKey: "staff_id"},
	{Name: "users", PrimaryKey: "user_id"},
}

var byName = func() map[string]Table {
	m := make(map[string]Table, len(tables))
	for _, t := range tables {
		m[t.Name] = t
	}
	return m
}()

// Tables returns the managed tables in a stable order.
func Tables() []Table {
	out := make([]Table, len(tables))
	copy(out, tables)
	return out
}

// Resolve looks up a managed table by name.
func Resolve(name string) (Table, bool) {
	t, ok := byName[name]
	return t, ok
}

// IsManaged reports whether name is one of the managed tables.
func IsManaged(name string) bool {
	_, ok := byName[name]
	return ok
}

// PrimaryKeyOf returns the primary key column for a table. For names
// without a registered descriptor it falls back to stripping a trailing
// "s" and appending "_id".
func PrimaryKeyOf(name string) string {
	if t, ok := byName[name]; ok {
		return t.PrimaryKey
	}
	return strings.TrimSuffix(name, "s") + "_id"
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidColumnName reports whether s is safe to interpolate into SQL as a
// column identifier. Request-body keys must pass this check before the
// query builder will touch them.
func ValidColumnName(s string) bool {
	return identifierPattern.MatchString(s)
}
