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

package model

import "time"

const (
	// DeltaStatusCreated marks a delta written by the upstream trigger and not
	// yet claimed by any poller.
	DeltaStatusCreated = "CREATED"
	// DeltaStatusInProgress marks a delta leased by a poller. The lease is the
	// last_updated_datetime heartbeat, not a separate column.
	DeltaStatusInProgress = "INPROGRESS"
	// DeltaStatusFailed marks a delta a worker gave up on. Failed deltas are
	// never leased again.
	DeltaStatusFailed = "FAILED"
)

// OffenderDelta is a queued "this offender's data changed" record, written by
// a database trigger whenever a watched row changes and drained by downstream
// pollers.
type OffenderDelta struct {
	OffenderDeltaID     int64     `json:"offenderDeltaId"`
	OffenderID          int64     `json:"offenderId"`
	DateChanged         time.Time `json:"dateChanged"`
	Action              string    `json:"action"`
	SourceTable         string    `json:"sourceTable"`
	SourceRecordID      int64     `json:"sourceRecordId"`
	Status              string    `json:"status"`
	CreatedDateTime     time.Time `json:"createdDateTime"`
	LastUpdatedDateTime time.Time `json:"lastUpdatedDateTime"`
}

// OffenderUpdate is the work item handed to a poller once a delta has been
// leased.
type OffenderUpdate struct {
	OffenderDeltaID int64     `json:"offenderDeltaId"`
	OffenderID      int64     `json:"offenderId"`
	DateChanged     time.Time `json:"dateChanged"`
	Action          string    `json:"action"`
	SourceTable     string    `json:"sourceTable"`
	SourceRecordID  int64     `json:"sourceRecordId"`
	Status          string    `json:"status"`
	// FailedUpdate is set when the delta was reclaimed from a presumed-dead
	// worker, so callers can alert while still reprocessing it.
	FailedUpdate bool `json:"failedUpdate"`
}

// ToUpdate shapes a leased delta into the work item returned to pollers.
func (d *OffenderDelta) ToUpdate() *OffenderUpdate {
	return &OffenderUpdate{
		OffenderDeltaID: d.OffenderDeltaID,
		OffenderID:      d.OffenderID,
		DateChanged:     d.DateChanged,
		Action:          d.Action,
		SourceTable:     d.SourceTable,
		SourceRecordID:  d.SourceRecordID,
		Status:          d.Status,
	}
}
