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

import (
	"time"

	"github.com/ministryofjustice/delius-api/model"
)

// ReferralSent is the inbound body for the referral endpoints. Dates travel
// as YYYY-MM-DD strings.
type ReferralSent struct {
	ProviderCode  string  `json:"providerCode"`
	StaffCode     *string `json:"staffCode"`
	TeamCode      *string `json:"teamCode"`
	Date          string  `json:"date"`
	NsiType       string  `json:"nsiType"`
	NsiSubType    *string `json:"nsiSubType"`
	ConvictionID  int64   `json:"convictionId"`
	RequirementID *int64  `json:"requirementId"`
	NsiStatus     string  `json:"nsiStatus"`
	Notes         *string `json:"notes"`
}

func (r *ReferralSent) ToReferralSentRequest() (*model.ReferralSentRequest, error) {
	date, err := time.Parse(model.DateFormat, r.Date)
	if err != nil {
		return nil, err
	}
	return &model.ReferralSentRequest{
		ProviderCode:  r.ProviderCode,
		StaffCode:     r.StaffCode,
		TeamCode:      r.TeamCode,
		Date:          date,
		NsiType:       r.NsiType,
		NsiSubType:    r.NsiSubType,
		ConvictionID:  r.ConvictionID,
		RequirementID: r.RequirementID,
		NsiStatus:     r.NsiStatus,
		Notes:         r.Notes,
	}, nil
}

// CreateOffender is the inbound body for registering an offender record.
type CreateOffender struct {
	Crn         string `json:"crn"`
	FirstName   string `json:"firstName"`
	Surname     string `json:"surname"`
	DateOfBirth string `json:"dateOfBirth"`
}

func (o *CreateOffender) ToOffender() (model.Offender, error) {
	dateOfBirth, err := time.Parse(model.DateFormat, o.DateOfBirth)
	if err != nil {
		return model.Offender{}, err
	}
	return model.Offender{
		Crn:         o.Crn,
		FirstName:   o.FirstName,
		Surname:     o.Surname,
		DateOfBirth: dateOfBirth,
	}, nil
}
