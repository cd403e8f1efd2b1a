// Package report holds the fixed cross-table read queries: the three
// aggregation endpoints the admin UI charts are built on.
package report

import (
	"context"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/poppy/pkg/database"
	"github.com/Ramsey-B/poppy/pkg/metrics"
	"github.com/Ramsey-B/poppy/pkg/models"
	"github.com/Ramsey-B/poppy/pkg/tracing"
)

// The aggregations are deliberately hand-written SQL. They join across
// fixed tables and never take user input, so there is nothing to compose.
const (
	// donorDetailsQuery groups by the donors PK; selecting d.* on top of
	// that is legal in Postgres through functional dependency.
	donorDetailsQuery = `
		SELECT d.*, de.eligibility_status, de.test_results,
		       COUNT(dn.donation_id) AS total_donations
		FROM donors d
		LEFT JOIN donor_eligibility de ON d.donor_id = de.donor_id
		LEFT JOIN donations dn ON d.donor_id = dn.donor_id
		GROUP BY d.donor_id, de.eligibility_id`

	bloodInventoryStatusQuery = `
		SELECT b.blood_type, b.quantity, bb.bloodbank_name, bb.location
		FROM blood_inventory b
		JOIN bloodbanks bb ON b.bloodbank_id = bb.bloodbank_id
		ORDER BY b.blood_type, bb.bloodbank_name`

	emergencyRequestStatusQuery = `
		SELECT er.*, h.hospital_name,
		       rf.fulfillment_status, rf.bloodbank_id,
		       bb.bloodbank_name
		FROM emergency_requests er
		JOIN hospitals h ON er.hospital_id = h.hospital_id
		LEFT JOIN request_fulfillments rf ON er.request_id = rf.request_id
		LEFT JOIN bloodbanks bb ON rf.bloodbank_id = bb.bloodbank_id`
)

// ReportRepository serves the fixed aggregation queries.
type ReportRepository interface {
	DonorDetails(ctx context.Context) ([]models.Row, error)
	BloodInventoryStatus(ctx context.Context) ([]models.Row, error)
	EmergencyRequestStatus(ctx context.Context) ([]models.Row, error)
}

// Repository implements ReportRepository against the shared pool.
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new report repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// DonorDetails returns every donor with eligibility status, test results
// and a total donation count.
func (r *Repository) DonorDetails(ctx context.Context) ([]models.Row, error) {
	ctx, span := tracing.StartSpan(ctx, "ReportRepository.DonorDetails")
	defer span.End()

	return r.queryRows(ctx, "donor_details", donorDetailsQuery)
}

// BloodInventoryStatus returns inventory quantities per blood bank,
// ordered by blood type then bank name.
func (r *Repository) BloodInventoryStatus(ctx context.Context) ([]models.Row, error) {
	ctx, span := tracing.StartSpan(ctx, "ReportRepository.BloodInventoryStatus")
	defer span.End()

	return r.queryRows(ctx, "blood_inventory_status", bloodInventoryStatusQuery)
}

// EmergencyRequestStatus returns every emergency request with its hospital
// and, when present, the fulfillment and the fulfilling blood bank.
func (r *Repository) EmergencyRequestStatus(ctx context.Context) ([]models.Row, error) {
	ctx, span := tracing.StartSpan(ctx, "ReportRepository.EmergencyRequestStatus")
	defer span.End()

	return r.queryRows(ctx, "emergency_request_status", emergencyRequestStatusQuery)
}

func (r *Repository) queryRows(ctx context.Context, name, query string) ([]models.Row, error) {
	start := time.Now()
	rows, err := r.db.QueryxContext(ctx, query)
	metrics.ObserveQuery(name, "aggregate", time.Since(start).Seconds(), err)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("report", name).Error("Failed to execute aggregation query")
		return nil, err
	}

	return database.CollectRows(rows)
}
