package database

import (
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Ramsey-B/poppy/pkg/models"
)

// CollectRows drains a result set into generic rows. Driver []byte values
// are converted to strings so JSON encoding doesn't base64 them.
func CollectRows(rows *sqlx.Rows) ([]models.Row, error) {
	defer rows.Close()

	out := make([]models.Row, 0)
	for rows.Next() {
		row := models.Row{}
		if err := rows.MapScan(row); err != nil {
			return nil, err
		}
		for k, v := range row {
			row[k] = normalizeValue(v)
		}
		out = append(out, row)
	}

	return out, rows.Err()
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case []byte:
		return string(val)
	case time.Time:
		return val
	default:
		return v
	}
}
