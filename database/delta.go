package database

import (
	"context"
	"database/sql"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/ministryofjustice/delius-api/internal/apierror"
	"github.com/ministryofjustice/delius-api/model"
)

var tracer trace.Tracer = otel.Tracer("delius.deltas")

const deltaColumns = `offender_delta_id, offender_id, date_changed, action, source_table, source_record_id, status, created_datetime, last_updated_datetime`

func scanDelta(row interface {
	Scan(dest ...interface{}) error
}) (*model.OffenderDelta, error) {
	var d model.OffenderDelta
	var sourceTable sql.NullString
	var sourceRecordID sql.NullInt64
	err := row.Scan(
		&d.OffenderDeltaID,
		&d.OffenderID,
		&d.DateChanged,
		&d.Action,
		&sourceTable,
		&sourceRecordID,
		&d.Status,
		&d.CreatedDateTime,
		&d.LastUpdatedDateTime,
	)
	if err != nil {
		return nil, err
	}
	d.SourceTable = sourceTable.String
	d.SourceRecordID = sourceRecordID.Int64
	return &d, nil
}

// CreateDelta records a new offender-changed delta. In production the Delius
// database trigger writes these rows; this path backs tests and backfills.
func (d Datasource) CreateDelta(ctx context.Context, delta *model.OffenderDelta) (*model.OffenderDelta, error) {
	now := time.Now()
	if delta.Status == "" {
		delta.Status = model.DeltaStatusCreated
	}
	delta.CreatedDateTime = now
	delta.LastUpdatedDateTime = now

	err := d.Conn.QueryRowContext(ctx, `
		INSERT INTO delius.offender_delta (offender_id, date_changed, action, source_table, source_record_id, status, created_datetime, last_updated_datetime)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING offender_delta_id
	`, delta.OffenderID, delta.DateChanged, delta.Action, delta.SourceTable, delta.SourceRecordID, delta.Status, delta.CreatedDateTime, delta.LastUpdatedDateTime).Scan(&delta.OffenderDeltaID)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create offender delta", err)
	}
	return delta, nil
}

// ListDeltas returns up to 1000 deltas in storage order. Diagnostic use only,
// not a draining mechanism.
func (d Datasource) ListDeltas(ctx context.Context) ([]model.OffenderDelta, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT `+deltaColumns+`
		FROM delius.offender_delta
		LIMIT 1000
	`)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve offender deltas", err)
	}
	defer rows.Close()

	deltas := []model.OffenderDelta{}
	for rows.Next() {
		delta, err := scanDelta(rows)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan offender delta", err)
		}
		deltas = append(deltas, *delta)
	}

	if err = rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error occurred while iterating over offender deltas", err)
	}

	return deltas, nil
}

// DeleteDeltasBefore removes every delta whose change timestamp is strictly
// before the cutoff. Used by the retention sweep.
func (d Datasource) DeleteDeltasBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := d.Conn.ExecContext(ctx, `
		DELETE FROM delius.offender_delta WHERE date_changed < $1
	`, cutoff)
	if err != nil {
		return 0, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to delete offender deltas", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to get rows affected", err)
	}
	return deleted, nil
}

// LockNextDelta leases the oldest delta with the given status whose heartbeat
// is at or before the cutoff. Lookup, duplicate compaction and the status
// transition all happen inside one transaction; FOR UPDATE SKIP LOCKED keeps
// concurrent pollers off the same row.
func (d Datasource) LockNextDelta(ctx context.Context, status string, cutoff time.Time, compactDuplicates bool) (*model.OffenderDelta, error) {
	ctx, span := tracer.Start(ctx, "Lock next offender delta")
	defer span.End()

	tx, err := d.Conn.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelDefault})
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to begin transaction", err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	row := tx.QueryRowContext(ctx, `
		SELECT `+deltaColumns+`
		FROM delius.offender_delta
		WHERE status = $1 AND last_updated_datetime <= $2
		ORDER BY created_datetime ASC
		LIMIT 1
		FOR UPDATE SKIP LOCKED
	`, status, cutoff)

	delta, err := scanDelta(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to find next offender delta", err)
	}

	if compactDuplicates {
		// every delta for the same offender represents the same net change,
		// so only the claimed one needs to survive
		_, err = tx.ExecContext(ctx, `
			DELETE FROM delius.offender_delta
			WHERE offender_id = $1 AND offender_delta_id <> $2
		`, delta.OffenderID, delta.OffenderDeltaID)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to compact duplicate deltas", err)
		}
	}

	now := time.Now()
	_, err = tx.ExecContext(ctx, `
		UPDATE delius.offender_delta
		SET status = $1, last_updated_datetime = $2
		WHERE offender_delta_id = $3
	`, model.DeltaStatusInProgress, now, delta.OffenderDeltaID)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to lock offender delta", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to commit transaction", err)
	}

	delta.Status = model.DeltaStatusInProgress
	delta.LastUpdatedDateTime = now
	return delta, nil
}

// DeleteDelta removes a processed delta. Deleting an already-absent delta is
// success, so workers can retry completion reports safely.
func (d Datasource) DeleteDelta(ctx context.Context, offenderDeltaID int64) error {
	_, err := d.Conn.ExecContext(ctx, `
		DELETE FROM delius.offender_delta WHERE offender_delta_id = $1
	`, offenderDeltaID)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to delete offender delta", err)
	}
	return nil
}

// MarkDeltaAsFailed moves a delta to the terminal FAILED status, taking it
// out of every future lease scan.
func (d Datasource) MarkDeltaAsFailed(ctx context.Context, offenderDeltaID int64) error {
	result, err := d.Conn.ExecContext(ctx, `
		UPDATE delius.offender_delta
		SET status = $1, last_updated_datetime = NOW()
		WHERE offender_delta_id = $2
	`, model.DeltaStatusFailed, offenderDeltaID)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to mark offender delta as failed", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, "Offender delta not found", nil)
	}
	return nil
}
