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
package mocks

import (
	"context"
	"time"

	"github.com/ministryofjustice/delius-api/model"
	"github.com/stretchr/testify/mock"
)

// MockDataSource is a mock implementation of the IDataSource interface
type MockDataSource struct {
	mock.Mock
}

// Delta methods

func (m *MockDataSource) ListDeltas(ctx context.Context) ([]model.OffenderDelta, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.OffenderDelta), args.Error(1)
}

func (m *MockDataSource) DeleteDeltasBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDataSource) LockNextDelta(ctx context.Context, status string, cutoff time.Time, compactDuplicates bool) (*model.OffenderDelta, error) {
	args := m.Called(ctx, status, cutoff, compactDuplicates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OffenderDelta), args.Error(1)
}

func (m *MockDataSource) DeleteDelta(ctx context.Context, offenderDeltaID int64) error {
	args := m.Called(ctx, offenderDeltaID)
	return args.Error(0)
}

func (m *MockDataSource) MarkDeltaAsFailed(ctx context.Context, offenderDeltaID int64) error {
	args := m.Called(ctx, offenderDeltaID)
	return args.Error(0)
}

func (m *MockDataSource) CreateDelta(ctx context.Context, delta *model.OffenderDelta) (*model.OffenderDelta, error) {
	args := m.Called(ctx, delta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OffenderDelta), args.Error(1)
}

// Offender methods

func (m *MockDataSource) GetOffenderIDByCrn(ctx context.Context, crn string) (*int64, error) {
	args := m.Called(ctx, crn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*int64), args.Error(1)
}

func (m *MockDataSource) GetOffenderByCrn(ctx context.Context, crn string) (*model.Offender, error) {
	args := m.Called(ctx, crn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Offender), args.Error(1)
}

func (m *MockDataSource) CreateOffender(ctx context.Context, o model.Offender) (model.Offender, error) {
	args := m.Called(ctx, o)
	return args.Get(0).(model.Offender), args.Error(1)
}

// NSI methods

func (m *MockDataSource) GetNsisByCodes(ctx context.Context, offenderID, convictionID int64, typeCodes []string) ([]model.Nsi, error) {
	args := m.Called(ctx, offenderID, convictionID, typeCodes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Nsi), args.Error(1)
}
