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

package delius

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ministryofjustice/delius-api/config"
	"github.com/ministryofjustice/delius-api/database/mocks"
	"github.com/ministryofjustice/delius-api/internal/apierror"
	"github.com/ministryofjustice/delius-api/model"
)

func newTestService(datasource *mocks.MockDataSource) *Delius {
	config.MockConfig(&config.Configuration{})
	return &Delius{datasource: datasource}
}

func cutoffWithin(expected time.Duration) interface{} {
	return mock.MatchedBy(func(cutoff time.Time) bool {
		age := time.Since(cutoff)
		return age >= expected && age < expected+time.Second
	})
}

func TestLockNextUpdateLeasesOldestDelta(t *testing.T) {
	datasource := new(mocks.MockDataSource)
	service := newTestService(datasource)

	delta := model.OffenderDelta{
		OffenderDeltaID: 11,
		OffenderID:      12345,
		DateChanged:     time.Now(),
		Action:          "UPSERT",
		SourceTable:     "OFFENDER",
		SourceRecordID:  12345,
		Status:          model.DeltaStatusInProgress,
	}
	datasource.On("LockNextDelta", mock.Anything, model.DeltaStatusCreated,
		cutoffWithin(WaitBeforeLockingDeltaSeconds*time.Second), true).Return(&delta, nil)

	update, err := service.LockNextUpdate(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, int64(11), update.OffenderDeltaID)
	assert.Equal(t, int64(12345), update.OffenderID)
	assert.False(t, update.FailedUpdate)
	datasource.AssertExpectations(t)
}

func TestLockNextUpdateReturnsNilWhenNothingEligible(t *testing.T) {
	datasource := new(mocks.MockDataSource)
	service := newTestService(datasource)

	datasource.On("LockNextDelta", mock.Anything, model.DeltaStatusCreated, mock.Anything, true).
		Return(nil, nil)

	update, err := service.LockNextUpdate(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, update)
}

func TestLockNextFailedUpdateReclaimsAbandonedLease(t *testing.T) {
	datasource := new(mocks.MockDataSource)
	service := newTestService(datasource)

	delta := model.OffenderDelta{
		OffenderDeltaID: 42,
		OffenderID:      12345,
		Status:          model.DeltaStatusInProgress,
	}
	datasource.On("LockNextDelta", mock.Anything, model.DeltaStatusInProgress,
		cutoffWithin(InProgressIsFailedAfterMinutes*time.Minute), false).Return(&delta, nil)

	update, err := service.LockNextFailedUpdate(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, int64(42), update.OffenderDeltaID)
	assert.True(t, update.FailedUpdate)
	datasource.AssertExpectations(t)
}

func TestLockNextFailedUpdateReturnsNilWhenNothingEligible(t *testing.T) {
	datasource := new(mocks.MockDataSource)
	service := newTestService(datasource)

	datasource.On("LockNextDelta", mock.Anything, model.DeltaStatusInProgress, mock.Anything, false).
		Return(nil, nil)

	update, err := service.LockNextFailedUpdate(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, update)
}

func TestDeleteDelta(t *testing.T) {
	datasource := new(mocks.MockDataSource)
	service := newTestService(datasource)

	datasource.On("DeleteDelta", mock.Anything, int64(11)).Return(nil)

	assert.NoError(t, service.DeleteDelta(context.Background(), 11))
	datasource.AssertExpectations(t)
}

func TestMarkAsFailedPropagatesNotFound(t *testing.T) {
	datasource := new(mocks.MockDataSource)
	service := newTestService(datasource)

	notFound := apierror.NewAPIError(apierror.ErrNotFound, "offender delta with id 99 not found", nil)
	datasource.On("MarkDeltaAsFailed", mock.Anything, int64(99)).Return(notFound)

	err := service.MarkAsFailed(context.Background(), 99)
	assert.Error(t, err)
	assert.Equal(t, notFound, err)
}

func TestMarkAsFailed(t *testing.T) {
	datasource := new(mocks.MockDataSource)
	service := newTestService(datasource)

	datasource.On("MarkDeltaAsFailed", mock.Anything, int64(11)).Return(nil)

	assert.NoError(t, service.MarkAsFailed(context.Background(), 11))
	datasource.AssertExpectations(t)
}

func TestDeleteDeltasBefore(t *testing.T) {
	datasource := new(mocks.MockDataSource)
	service := newTestService(datasource)

	cutoff := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	datasource.On("DeleteDeltasBefore", mock.Anything, cutoff).Return(int64(7), nil)

	deleted, err := service.DeleteDeltasBefore(context.Background(), cutoff)
	assert.NoError(t, err)
	assert.Equal(t, int64(7), deleted)
}

func TestFindAllDeltas(t *testing.T) {
	datasource := new(mocks.MockDataSource)
	service := newTestService(datasource)

	datasource.On("ListDeltas", mock.Anything).
		Return([]model.OffenderDelta{{OffenderDeltaID: 1}, {OffenderDeltaID: 2}}, nil)

	deltas, err := service.FindAllDeltas(context.Background())
	assert.NoError(t, err)
	assert.Len(t, deltas, 2)
}
