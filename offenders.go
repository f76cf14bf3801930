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

	"github.com/ministryofjustice/delius-api/model"
)

const crnCacheTTL = 5 * time.Minute

// OffenderIdOfCrn resolves an external CRN to the internal offender id,
// read-through the resolver cache. Returns nil when the CRN is unknown.
// CRNs are never re-pointed at a different offender, so a cached hit is safe.
func (d *Delius) OffenderIdOfCrn(ctx context.Context, crn string) (*int64, error) {
	cacheKey := "crn:" + crn

	if d.cache != nil {
		var cached int64
		if err := d.cache.Get(ctx, cacheKey, &cached); err == nil && cached != 0 {
			return &cached, nil
		}
	}

	offenderID, err := d.datasource.GetOffenderIDByCrn(ctx, crn)
	if err != nil || offenderID == nil {
		return offenderID, err
	}

	if d.cache != nil {
		_ = d.cache.Set(ctx, cacheKey, *offenderID, crnCacheTTL)
	}
	return offenderID, nil
}

func (d *Delius) GetOffenderByCrn(ctx context.Context, crn string) (*model.Offender, error) {
	return d.datasource.GetOffenderByCrn(ctx, crn)
}

func (d *Delius) CreateOffender(ctx context.Context, offender model.Offender) (model.Offender, error) {
	return d.datasource.CreateOffender(ctx, offender)
}
