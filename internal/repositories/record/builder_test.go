package record

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/poppy/pkg/models"
	"github.com/Ramsey-B/poppy/pkg/schema"
)

var donors = schema.Table{Name: "donors", PrimaryKey: "donor_id"}

func TestNormalize(t *testing.T) {
	body := models.Row{
		"donor_name": "Jane",
		"address":    "",
		"quantity":   float64(2),
		"notes":      nil,
	}

	out := Normalize(body)

	assert.Equal(t, "Jane", out["donor_name"])
	assert.Nil(t, out["address"])
	assert.Equal(t, float64(2), out["quantity"])
	assert.Nil(t, out["notes"])

	t.Run("input is not mutated", func(t *testing.T) {
		assert.Equal(t, "", body["address"])
	})
}

func TestBuildList(t *testing.T) {
	query, args := BuildList(donors)
	assert.Equal(t, "SELECT * FROM donors", query)
	assert.Empty(t, args)
}

func TestBuildInsert(t *testing.T) {
	t.Run("values travel as parameters in sorted column order", func(t *testing.T) {
		query, args, err := BuildInsert(donors, models.Row{
			"donor_name": "Jane",
			"blood_type": "O-",
		})
		require.NoError(t, err)

		assert.Contains(t, query, "INSERT INTO donors")
		assert.Contains(t, query, "(blood_type, donor_name)")
		assert.Contains(t, query, "$1")
		assert.Contains(t, query, "$2")
		assert.Contains(t, query, "RETURNING *")
		assert.NotContains(t, query, "Jane")
		assert.NotContains(t, query, "O-")
		assert.Equal(t, []any{"O-", "Jane"}, args)
	})

	t.Run("empty strings become nulls", func(t *testing.T) {
		_, args, err := BuildInsert(donors, models.Row{"address": ""})
		require.NoError(t, err)
		assert.Equal(t, []any{nil}, args)
	})

	t.Run("empty body inserts defaults", func(t *testing.T) {
		query, args, err := BuildInsert(donors, models.Row{})
		require.NoError(t, err)
		assert.Equal(t, "INSERT INTO donors DEFAULT VALUES RETURNING *", query)
		assert.Empty(t, args)
	})

	t.Run("illegal column name is rejected", func(t *testing.T) {
		_, _, err := BuildInsert(donors, models.Row{"bad;col": "x"})
		var invalid *InvalidColumnError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "bad;col", invalid.Column)
	})
}

func TestBuildUpdate(t *testing.T) {
	t.Run("primary key is dropped from the SET list", func(t *testing.T) {
		query, args, err := BuildUpdate(donors, "7", models.Row{
			"donor_id":   "7",
			"donor_name": "Jane",
		})
		require.NoError(t, err)

		assert.Contains(t, query, "UPDATE donors SET donor_name = $1")
		assert.Contains(t, query, "WHERE donor_id = $2")
		assert.Contains(t, query, "RETURNING *")
		assert.Equal(t, []any{"Jane", "7"}, args)
	})

	t.Run("body of only the primary key has nothing to update", func(t *testing.T) {
		_, _, err := BuildUpdate(donors, "7", models.Row{"donor_id": "7"})
		assert.True(t, errors.Is(err, ErrNoFields))
	})

	t.Run("empty body has nothing to update", func(t *testing.T) {
		_, _, err := BuildUpdate(donors, "7", models.Row{})
		assert.True(t, errors.Is(err, ErrNoFields))
	})

	t.Run("columns are set in sorted order", func(t *testing.T) {
		query, args, err := BuildUpdate(donors, "7", models.Row{
			"donor_name": "Jane",
			"address":    "12 Elm St",
			"blood_type": "",
		})
		require.NoError(t, err)

		assert.Contains(t, query, "address = $1")
		assert.Contains(t, query, "blood_type = $2")
		assert.Contains(t, query, "donor_name = $3")
		assert.Equal(t, []any{"12 Elm St", nil, "Jane", "7"}, args)
	})

	t.Run("illegal column name is rejected", func(t *testing.T) {
		_, _, err := BuildUpdate(donors, "7", models.Row{`a"b`: "x"})
		var invalid *InvalidColumnError
		assert.ErrorAs(t, err, &invalid)
	})
}

func TestBuildDelete(t *testing.T) {
	query, args := BuildDelete(donors, "7")

	assert.Contains(t, query, "DELETE FROM donors")
	assert.Contains(t, query, "WHERE donor_id = $1")
	assert.Contains(t, query, "RETURNING *")
	assert.Equal(t, []any{"7"}, args)
}

func TestBuildCount(t *testing.T) {
	query, args := BuildCount(donors)
	assert.Equal(t, "SELECT COUNT(*) AS count FROM donors", query)
	assert.Empty(t, args)
}
