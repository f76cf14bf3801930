package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"github.com/ministryofjustice/delius-api/internal/apierror"
	"github.com/ministryofjustice/delius-api/model"
)

func (d Datasource) CreateOffender(ctx context.Context, o model.Offender) (model.Offender, error) {
	o.CreatedAt = time.Now()

	err := d.Conn.QueryRowContext(ctx, `
		INSERT INTO delius.offenders (crn, first_name, surname, date_of_birth, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING offender_id
	`, o.Crn, o.FirstName, o.Surname, o.DateOfBirth, o.CreatedAt).Scan(&o.OffenderID)

	if err != nil {
		pqErr, ok := err.(*pq.Error)
		if ok {
			switch pqErr.Code.Name() {
			case "unique_violation":
				return model.Offender{}, apierror.NewAPIError(apierror.ErrConflict, "Offender with this CRN already exists", err)
			default:
				return model.Offender{}, apierror.NewAPIError(apierror.ErrInternalServer, "Database error occurred", err)
			}
		}
		return model.Offender{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create offender", err)
	}

	return o, nil
}

// GetOffenderIDByCrn resolves a CRN to the internal offender id. Returns nil
// without error when the CRN is unknown; the caller decides whether that is
// a 404.
func (d Datasource) GetOffenderIDByCrn(ctx context.Context, crn string) (*int64, error) {
	var offenderID int64
	err := d.Conn.QueryRowContext(ctx, `
		SELECT offender_id FROM delius.offenders WHERE crn = $1
	`, crn).Scan(&offenderID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to resolve offender CRN", err)
	}
	return &offenderID, nil
}

func (d Datasource) GetOffenderByCrn(ctx context.Context, crn string) (*model.Offender, error) {
	o := model.Offender{}

	err := d.Conn.QueryRowContext(ctx, `
		SELECT offender_id, crn, first_name, surname, date_of_birth, created_at
		FROM delius.offenders
		WHERE crn = $1
	`, crn).Scan(&o.OffenderID, &o.Crn, &o.FirstName, &o.Surname, &o.DateOfBirth, &o.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, "Offender not found", err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve offender", err)
	}

	return &o, nil
}
