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

// NsiManager is one provider/team/staff assignment on an NSI. An NSI keeps
// the full assignment history, so matching has to scan all of them.
type NsiManager struct {
	StaffCode    string `json:"staffCode"`
	TeamCode     string `json:"teamCode"`
	ProviderCode string `json:"providerCode"`
}

// Nsi is a non-statutory intervention recorded against an offender's
// conviction. Read-only in this service; creation goes through the Delius
// API.
type Nsi struct {
	NsiID                int64        `json:"nsiId"`
	TypeCode             string       `json:"nsiType"`
	SubTypeCode          *string      `json:"nsiSubType,omitempty"`
	ReferralDate         time.Time    `json:"referralDate"`
	StatusCode           string       `json:"nsiStatus"`
	RequirementID        *int64       `json:"requirementId,omitempty"`
	IntendedProviderCode string       `json:"intendedProvider"`
	Managers             []NsiManager `json:"nsiManagers"`
}
