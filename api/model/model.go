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
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/ministryofjustice/delius-api/model"
)

func validateDateFormat(format, value string) error {
	_, err := time.Parse(format, value)
	if err != nil {
		return errors.New("please format the date as 'YYYY-MM-DD' (e.g., 2021-01-20)")
	}
	return nil
}

func dateFormatRule(format string) validation.RuleFunc {
	return func(value interface{}) error {
		date, ok := value.(string)
		if !ok {
			return errors.New("date must be a string")
		}
		return validateDateFormat(format, date)
	}
}

func (r *ReferralSent) ValidateReferralSent() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ProviderCode, validation.Required),
		validation.Field(&r.Date, validation.Required, validation.By(dateFormatRule(model.DateFormat))),
		validation.Field(&r.NsiType, validation.Required),
		validation.Field(&r.ConvictionID, validation.Required, validation.Min(int64(1))),
		validation.Field(&r.NsiStatus, validation.Required),
	)
}

func (o *CreateOffender) ValidateCreateOffender() error {
	return validation.ValidateStruct(o,
		validation.Field(&o.Crn, validation.Required),
		validation.Field(&o.Surname, validation.Required),
		validation.Field(&o.DateOfBirth, validation.Required, validation.By(dateFormatRule(model.DateFormat))),
	)
}
