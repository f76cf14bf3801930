/*
Copyright 2024 Delius API Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package database

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/ministryofjustice/delius-api/internal/apierror"
	"github.com/ministryofjustice/delius-api/model"
	"github.com/stretchr/testify/assert"
)

var deltaTestColumns = []string{
	"offender_delta_id", "offender_id", "date_changed", "action",
	"source_table", "source_record_id", "status", "created_datetime", "last_updated_datetime",
}

func TestCreateDelta_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	delta := &model.OffenderDelta{
		OffenderID:     123,
		DateChanged:    time.Now(),
		Action:         "UPSERT",
		SourceTable:    "OFFENDER",
		SourceRecordID: 456,
	}

	mock.ExpectQuery("INSERT INTO delius.offender_delta").
		WithArgs(delta.OffenderID, delta.DateChanged, delta.Action, delta.SourceTable, delta.SourceRecordID,
			model.DeltaStatusCreated, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"offender_delta_id"}).AddRow(int64(99)))

	created, err := ds.CreateDelta(context.Background(), delta)
	assert.NoError(t, err)
	assert.Equal(t, int64(99), created.OffenderDeltaID)
	assert.Equal(t, model.DeltaStatusCreated, created.Status)
	assert.WithinDuration(t, time.Now(), created.LastUpdatedDateTime, time.Second)
}

func TestListDeltas_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	now := time.Now()
	rows := sqlmock.NewRows(deltaTestColumns).
		AddRow(int64(1), int64(123), now, "UPSERT", "OFFENDER", int64(456), model.DeltaStatusCreated, now, now).
		AddRow(int64(2), int64(124), now, "DELETE", "ALIAS", int64(457), model.DeltaStatusCreated, now, now)

	mock.ExpectQuery("SELECT (.+) FROM delius.offender_delta LIMIT 1000").
		WillReturnRows(rows)

	deltas, err := ds.ListDeltas(context.Background())
	assert.NoError(t, err)
	assert.Len(t, deltas, 2)
	assert.Equal(t, int64(123), deltas[0].OffenderID)
	assert.Equal(t, "ALIAS", deltas[1].SourceTable)
}

func TestDeleteDeltasBefore(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	cutoff := time.Now().AddDate(0, 0, -30)
	mock.ExpectExec("DELETE FROM delius.offender_delta WHERE date_changed").
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 7))

	deleted, err := ds.DeleteDeltasBefore(context.Background(), cutoff)
	assert.NoError(t, err)
	assert.Equal(t, int64(7), deleted)
}

func TestLockNextDelta_LeasesInsideOneTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	now := time.Now()
	cutoff := now.Add(-2 * time.Second)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE SKIP LOCKED").
		WithArgs(model.DeltaStatusCreated, cutoff).
		WillReturnRows(sqlmock.NewRows(deltaTestColumns).
			AddRow(int64(99), int64(123), now, "UPSERT", "OFFENDER", int64(456), model.DeltaStatusCreated, now, now))
	mock.ExpectExec("DELETE FROM delius.offender_delta").
		WithArgs(int64(123), int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("UPDATE delius.offender_delta").
		WithArgs(model.DeltaStatusInProgress, sqlmock.AnyArg(), int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	delta, err := ds.LockNextDelta(context.Background(), model.DeltaStatusCreated, cutoff, true)
	assert.NoError(t, err)
	assert.NotNil(t, delta)
	assert.Equal(t, int64(99), delta.OffenderDeltaID)
	assert.Equal(t, model.DeltaStatusInProgress, delta.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLockNextDelta_NoCompactionForFailedRetries(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	now := time.Now()
	cutoff := now.Add(-10 * time.Minute)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE SKIP LOCKED").
		WithArgs(model.DeltaStatusInProgress, cutoff).
		WillReturnRows(sqlmock.NewRows(deltaTestColumns).
			AddRow(int64(99), int64(123), now, "UPSERT", "OFFENDER", int64(456), model.DeltaStatusInProgress, now, now))
	mock.ExpectExec("UPDATE delius.offender_delta").
		WithArgs(model.DeltaStatusInProgress, sqlmock.AnyArg(), int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	delta, err := ds.LockNextDelta(context.Background(), model.DeltaStatusInProgress, cutoff, false)
	assert.NoError(t, err)
	assert.NotNil(t, delta)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLockNextDelta_EmptyWhenNothingEligible(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE SKIP LOCKED").
		WithArgs(model.DeltaStatusCreated, sqlmock.AnyArg()).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	delta, err := ds.LockNextDelta(context.Background(), model.DeltaStatusCreated, time.Now(), true)
	assert.NoError(t, err)
	assert.Nil(t, delta)
}

func TestDeleteDelta_IdempotentWhenAbsent(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectExec("DELETE FROM delius.offender_delta WHERE offender_delta_id").
		WithArgs(int64(404)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = ds.DeleteDelta(context.Background(), 404)
	assert.NoError(t, err)
}

func TestMarkDeltaAsFailed_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectExec("UPDATE delius.offender_delta").
		WithArgs(model.DeltaStatusFailed, int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = ds.MarkDeltaAsFailed(context.Background(), 99)
	assert.NoError(t, err)
}

func TestMarkDeltaAsFailed_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectExec("UPDATE delius.offender_delta").
		WithArgs(model.DeltaStatusFailed, int64(404)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = ds.MarkDeltaAsFailed(context.Background(), 404)
	assert.Error(t, err)
	apiErr, ok := err.(apierror.APIError)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrNotFound, apiErr.Code)
}
