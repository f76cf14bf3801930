package database

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/ministryofjustice/delius-api/internal/apierror"
	"github.com/ministryofjustice/delius-api/model"
)

// GetNsisByCodes returns every NSI for the offender and conviction whose type
// code is one of typeCodes, with the full manager assignment history attached.
func (d Datasource) GetNsisByCodes(ctx context.Context, offenderID, convictionID int64, typeCodes []string) ([]model.Nsi, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT n.nsi_id, n.type_code, n.sub_type_code, n.referral_date, n.status_code, n.requirement_id, n.intended_provider_code,
		       m.staff_code, m.team_code, m.provider_code
		FROM delius.nsis n
		LEFT JOIN delius.nsi_managers m ON m.nsi_id = n.nsi_id
		WHERE n.offender_id = $1 AND n.event_id = $2 AND n.type_code = ANY($3)
		ORDER BY n.nsi_id, m.nsi_manager_id
	`, offenderID, convictionID, pq.Array(typeCodes))
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve NSIs", err)
	}
	defer rows.Close()

	nsis := []model.Nsi{}
	byID := map[int64]int{}

	for rows.Next() {
		var n model.Nsi
		var subType sql.NullString
		var requirementID sql.NullInt64
		var staffCode, teamCode, providerCode sql.NullString

		err = rows.Scan(
			&n.NsiID,
			&n.TypeCode,
			&subType,
			&n.ReferralDate,
			&n.StatusCode,
			&requirementID,
			&n.IntendedProviderCode,
			&staffCode,
			&teamCode,
			&providerCode,
		)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan NSI", err)
		}

		idx, seen := byID[n.NsiID]
		if !seen {
			if subType.Valid {
				n.SubTypeCode = &subType.String
			}
			if requirementID.Valid {
				n.RequirementID = &requirementID.Int64
			}
			nsis = append(nsis, n)
			idx = len(nsis) - 1
			byID[n.NsiID] = idx
		}

		if staffCode.Valid || teamCode.Valid || providerCode.Valid {
			nsis[idx].Managers = append(nsis[idx].Managers, model.NsiManager{
				StaffCode:    staffCode.String,
				TeamCode:     teamCode.String,
				ProviderCode: providerCode.String,
			})
		}
	}

	if err = rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error occurred while iterating over NSIs", err)
	}

	return nsis, nil
}
