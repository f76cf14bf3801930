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
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/stretchr/testify/assert"
)

var nsiTestColumns = []string{
	"nsi_id", "type_code", "sub_type_code", "referral_date", "status_code",
	"requirement_id", "intended_provider_code", "staff_code", "team_code", "provider_code",
}

func TestGetNsisByCodes_GroupsManagerAssignments(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	referralDate := time.Date(2021, 1, 20, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(nsiTestColumns).
		AddRow(int64(12345), "IPT", "IPT1", referralDate, "REFER", int64(2500083652), "YSS", "N06AAFU", "N05MKU", "YSS").
		AddRow(int64(12345), "IPT", "IPT1", referralDate, "REFER", int64(2500083652), "YSS", "N06BBFU", "N05XYU", "YSS").
		AddRow(int64(12346), "IPT", nil, referralDate, "REFER", nil, "YSS", nil, nil, nil)

	mock.ExpectQuery("FROM delius.nsis n").
		WithArgs(int64(123), int64(2500295343), sqlmock.AnyArg()).
		WillReturnRows(rows)

	nsis, err := ds.GetNsisByCodes(context.Background(), 123, 2500295343, []string{"IPT"})
	assert.NoError(t, err)
	assert.Len(t, nsis, 2)

	assert.Equal(t, int64(12345), nsis[0].NsiID)
	assert.Equal(t, "IPT1", *nsis[0].SubTypeCode)
	assert.Equal(t, int64(2500083652), *nsis[0].RequirementID)
	assert.Len(t, nsis[0].Managers, 2)
	assert.Equal(t, "N06AAFU", nsis[0].Managers[0].StaffCode)
	assert.Equal(t, "N05XYU", nsis[0].Managers[1].TeamCode)

	// NSI without subtype, requirement or managers
	assert.Equal(t, int64(12346), nsis[1].NsiID)
	assert.Nil(t, nsis[1].SubTypeCode)
	assert.Nil(t, nsis[1].RequirementID)
	assert.Empty(t, nsis[1].Managers)
}

func TestGetNsisByCodes_EmptyScope(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectQuery("FROM delius.nsis n").
		WithArgs(int64(123), int64(999), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(nsiTestColumns))

	nsis, err := ds.GetNsisByCodes(context.Background(), 123, 999, []string{"IPT"})
	assert.NoError(t, err)
	assert.Empty(t, nsis)
}
