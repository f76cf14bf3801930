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
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ministryofjustice/delius-api/internal/apierror"
	"github.com/ministryofjustice/delius-api/model"
)

// CreateNsiReferral records a referral against an offender's conviction. When
// an equivalent NSI already exists the call is idempotent and returns the
// existing id without touching the Delius API; when more than one equivalent
// exists the outcome is ambiguous and the call is rejected so an operator can
// resolve the duplicates first. Two concurrent calls can both observe zero
// matches and both create; the duplicate then surfaces as a conflict on the
// next call rather than being prevented here.
func (d *Delius) CreateNsiReferral(ctx context.Context, crn string, request model.ReferralSentRequest) (*model.NsiDto, error) {
	existing, err := d.GetExistingMatchingNsi(ctx, crn, request)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		logrus.Infof("referral for CRN %s conviction %d already recorded as NSI %d", crn, request.ConvictionID, existing.NsiID)
		return &model.NsiDto{ID: existing.NsiID}, nil
	}
	return d.deliusAPI.CreateNewNsi(ctx, request.ToNewNsi(crn))
}

// GetExistingMatchingNsi returns the single NSI on the offender's conviction
// that is equivalent to the request, nil when there is none, and a conflict
// error when there are several.
func (d *Delius) GetExistingMatchingNsi(ctx context.Context, crn string, request model.ReferralSentRequest) (*model.Nsi, error) {
	offenderID, err := d.OffenderIdOfCrn(ctx, crn)
	if err != nil {
		return nil, err
	}
	if offenderID == nil {
		return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("offender with CRN %s not found", crn), nil)
	}

	candidates, err := d.GetNsisByCodes(ctx, *offenderID, request.ConvictionID, []string{request.NsiType})
	if err != nil {
		return nil, err
	}

	var matches []model.Nsi
	for _, candidate := range candidates {
		if nsiMatchesRequest(candidate, request) {
			matches = append(matches, candidate)
		}
	}

	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		return &matches[0], nil
	default:
		return nil, apierror.NewAPIError(apierror.ErrConflict,
			fmt.Sprintf("multiple existing matching NSIs found for CRN %s conviction %d", crn, request.ConvictionID), nil)
	}
}

// nsiMatchesRequest decides whether an existing NSI represents the same
// referral as the request. Subtype, date, status and requirement must be
// equal exactly; staff and team are only compared when the request supplies
// them, because callers differ in how much manager detail they send.
func nsiMatchesRequest(nsi model.Nsi, request model.ReferralSentRequest) bool {
	return equalStringPtr(nsi.SubTypeCode, request.NsiSubType) &&
		sameDay(nsi.ReferralDate, request.Date) &&
		nsi.StatusCode == request.NsiStatus &&
		equalInt64Ptr(nsi.RequirementID, request.RequirementID) &&
		managersMatchRequest(nsi, request)
}

func managersMatchRequest(nsi model.Nsi, request model.ReferralSentRequest) bool {
	if nsi.IntendedProviderCode != request.ProviderCode {
		return false
	}
	staffMatched := request.StaffCode == nil
	teamMatched := request.TeamCode == nil
	for _, manager := range nsi.Managers {
		if request.StaffCode != nil && manager.StaffCode == *request.StaffCode {
			staffMatched = true
		}
		if request.TeamCode != nil && manager.TeamCode == *request.TeamCode {
			teamMatched = true
		}
	}
	return staffMatched && teamMatched
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func equalInt64Ptr(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
