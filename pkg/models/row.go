package models

// Row is a single database row as returned to (and accepted from) API
// clients: a mapping from column name to a nullable scalar value. The
// generic CRUD path never inspects the values beyond null handling, so
// whatever the driver hands back is passed through as-is.
type Row map[string]any

// DeletedResponse is the envelope returned by a successful DELETE.
type DeletedResponse struct {
	Message string `json:"message"`
	Deleted Row    `json:"deleted"`
}
