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
	"time"

	"github.com/ministryofjustice/delius-api/internal/notification"
	"github.com/ministryofjustice/delius-api/model"
)

const (
	// InProgressIsFailedAfterMinutes is how long a leased delta may sit
	// without completion before it is presumed abandoned by a dead worker.
	InProgressIsFailedAfterMinutes = 10

	// WaitBeforeLockingDeltaSeconds guards the lease scan. The
	// last_updated_datetime heartbeat has a fidelity of 1 second, so we have
	// to wait longer than that to avoid two pollers reading the same version
	// as untouched.
	WaitBeforeLockingDeltaSeconds = 2
)

// FindAllDeltas returns up to 1000 queued deltas in storage order, for
// diagnostics.
func (d *Delius) FindAllDeltas(ctx context.Context) ([]model.OffenderDelta, error) {
	return d.datasource.ListDeltas(ctx)
}

// DeleteDeltasBefore removes all deltas changed before the given time.
func (d *Delius) DeleteDeltasBefore(ctx context.Context, dateTime time.Time) (int64, error) {
	return d.datasource.DeleteDeltasBefore(ctx, dateTime)
}

// LockNextUpdate leases the oldest unclaimed delta, compacting away sibling
// deltas for the same offender in the same transaction. Returns nil when
// nothing is eligible.
func (d *Delius) LockNextUpdate(ctx context.Context) (*model.OffenderUpdate, error) {
	cutoff := time.Now().Add(-WaitBeforeLockingDeltaSeconds * time.Second)
	delta, err := d.datasource.LockNextDelta(ctx, model.DeltaStatusCreated, cutoff, true)
	if err != nil || delta == nil {
		return nil, err
	}
	return delta.ToUpdate(), nil
}

// LockNextFailedUpdate re-leases a delta whose worker went quiet for longer
// than the failure timeout. The returned update is flagged so callers can
// alert while reprocessing.
func (d *Delius) LockNextFailedUpdate(ctx context.Context) (*model.OffenderUpdate, error) {
	cutoff := time.Now().Add(-InProgressIsFailedAfterMinutes * time.Minute)
	delta, err := d.datasource.LockNextDelta(ctx, model.DeltaStatusInProgress, cutoff, false)
	if err != nil || delta == nil {
		return nil, err
	}
	update := delta.ToUpdate()
	update.FailedUpdate = true

	if err := d.SendWebhook(NewWebhook{Event: EventDeltaReclaimed, Payload: update}); err != nil {
		notification.NotifyError(err)
	}
	return update, nil
}

// DeleteDelta removes a delta after successful downstream processing.
// Idempotent: deleting an already-absent delta succeeds.
func (d *Delius) DeleteDelta(ctx context.Context, offenderDeltaID int64) error {
	return d.datasource.DeleteDelta(ctx, offenderDeltaID)
}

// MarkAsFailed moves a delta to the terminal FAILED status. Surfaces a
// not-found error for unknown ids rather than swallowing them.
func (d *Delius) MarkAsFailed(ctx context.Context, offenderDeltaID int64) error {
	err := d.datasource.MarkDeltaAsFailed(ctx, offenderDeltaID)
	if err != nil {
		return err
	}

	if err := d.SendWebhook(NewWebhook{Event: EventDeltaFailed, Payload: map[string]int64{"offenderDeltaId": offenderDeltaID}}); err != nil {
		notification.NotifyError(err)
	}
	return nil
}
