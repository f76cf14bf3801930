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

// Wire date formats used by the Delius API.
const (
	DateFormat     = "2006-01-02"
	DateTimeFormat = "2006-01-02T15:04:05"
)

// ReferralSentRequest asks for a referral event (NSI) to be recorded against
// an offender's conviction. Optional fields are pointers: nil means the
// caller did not supply them, which matching treats differently from an
// empty string.
type ReferralSentRequest struct {
	ProviderCode  string    `json:"providerCode"`
	StaffCode     *string   `json:"staffCode,omitempty"`
	TeamCode      *string   `json:"teamCode,omitempty"`
	Date          time.Time `json:"date"`
	NsiType       string    `json:"nsiType"`
	NsiSubType    *string   `json:"nsiSubType,omitempty"`
	ConvictionID  int64     `json:"convictionId"`
	RequirementID *int64    `json:"requirementId,omitempty"`
	NsiStatus     string    `json:"nsiStatus"`
	Notes         *string   `json:"notes,omitempty"`
}

// NewNsiManager is the manager assignment block of a creation payload.
type NewNsiManager struct {
	Staff    *string `json:"staff"`
	Team     *string `json:"team"`
	Provider string  `json:"provider"`
}

// NewNsi is the creation payload sent to the Delius API. Dates are
// pre-formatted strings because the remote schema distinguishes date and
// date-time fields.
type NewNsi struct {
	Type              string        `json:"type"`
	SubType           *string       `json:"subType"`
	OffenderCrn       string        `json:"offenderCrn"`
	EventID           int64         `json:"eventId"`
	RequirementID     *int64        `json:"requirementId"`
	ReferralDate      string        `json:"referralDate"`
	ExpectedStartDate *string       `json:"expectedStartDate"`
	ExpectedEndDate   *string       `json:"expectedEndDate"`
	StartDate         *string       `json:"startDate"`
	EndDate           *string       `json:"endDate"`
	Length            *int64        `json:"length"`
	Status            string        `json:"status"`
	StatusDate        *string       `json:"statusDate"`
	Outcome           *string       `json:"outcome"`
	Notes             *string       `json:"notes"`
	IntendedProvider  string        `json:"intendedProvider"`
	Manager           NewNsiManager `json:"manager"`
}

// NsiDto is the Delius API response for a created NSI.
type NsiDto struct {
	ID int64 `json:"id"`
}

// ToNewNsi maps every request field into the Delius API creation schema. The
// status date defaults to the event date at midnight whenever a status is
// supplied.
func (r *ReferralSentRequest) ToNewNsi(offenderCrn string) NewNsi {
	var statusDate *string
	if r.NsiStatus != "" {
		formatted := time.Date(r.Date.Year(), r.Date.Month(), r.Date.Day(), 0, 0, 0, 0, r.Date.Location()).Format(DateTimeFormat)
		statusDate = &formatted
	}
	return NewNsi{
		Type:             r.NsiType,
		SubType:          r.NsiSubType,
		OffenderCrn:      offenderCrn,
		EventID:          r.ConvictionID,
		RequirementID:    r.RequirementID,
		ReferralDate:     r.Date.Format(DateFormat),
		Status:           r.NsiStatus,
		StatusDate:       statusDate,
		Notes:            r.Notes,
		IntendedProvider: r.ProviderCode,
		Manager: NewNsiManager{
			Staff:    r.StaffCode,
			Team:     r.TeamCode,
			Provider: r.ProviderCode,
		},
	}
}
