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

	"github.com/ministryofjustice/delius-api/model"
)

// GetNsisByCodes returns every NSI on the given conviction whose type is one
// of typeCodes, with managers attached.
func (d *Delius) GetNsisByCodes(ctx context.Context, offenderID, convictionID int64, typeCodes []string) ([]model.Nsi, error) {
	return d.datasource.GetNsisByCodes(ctx, offenderID, convictionID, typeCodes)
}
