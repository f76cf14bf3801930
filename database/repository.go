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
	"time"

	"github.com/ministryofjustice/delius-api/model"
)

// IDataSource defines the interface for data source operations, grouping related functionalities.
type IDataSource interface {
	delta    // Interface for offender-delta queue operations
	offender // Interface for offender lookups
	nsi      // Interface for NSI queries
}

// delta defines methods for the offender-delta queue. The two Lock methods
// must run their read-check-mutate sequence in a single database transaction.
type delta interface {
	ListDeltas(ctx context.Context) ([]model.OffenderDelta, error)                                                                  // Retrieves up to 1000 deltas in storage order
	DeleteDeltasBefore(ctx context.Context, cutoff time.Time) (int64, error)                                                        // Bulk-deletes deltas changed before the cutoff
	LockNextDelta(ctx context.Context, status string, cutoff time.Time, compactDuplicates bool) (*model.OffenderDelta, error)       // Leases the oldest eligible delta
	DeleteDelta(ctx context.Context, offenderDeltaID int64) error                                                                   // Deletes a delta, idempotently
	MarkDeltaAsFailed(ctx context.Context, offenderDeltaID int64) error                                                             // Moves a delta to the terminal FAILED status
	CreateDelta(ctx context.Context, delta *model.OffenderDelta) (*model.OffenderDelta, error)                                      // Records a new offender-changed delta
}

// offender defines methods for resolving and reading offender records.
type offender interface {
	GetOffenderIDByCrn(ctx context.Context, crn string) (*int64, error)          // Resolves a CRN to the internal id, nil when unknown
	GetOffenderByCrn(ctx context.Context, crn string) (*model.Offender, error)   // Retrieves the full offender record
	CreateOffender(ctx context.Context, o model.Offender) (model.Offender, error) // Creates an offender record
}

// nsi defines methods for querying non-statutory interventions.
type nsi interface {
	GetNsisByCodes(ctx context.Context, offenderID, convictionID int64, typeCodes []string) ([]model.Nsi, error) // Retrieves NSIs scoped to offender, conviction and type codes
}
