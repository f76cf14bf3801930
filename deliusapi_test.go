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
	"encoding/json"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/wacul/ptr"

	"github.com/ministryofjustice/delius-api/config"
	"github.com/ministryofjustice/delius-api/internal/apierror"
	"github.com/ministryofjustice/delius-api/model"
)

func newTestDeliusApiClient() *DeliusApiClient {
	client := NewDeliusApiClient(&config.Configuration{
		DeliusApi: config.DeliusApiConfig{
			Url:     "http://delius-api.test",
			Timeout: 5,
			Headers: map[string]string{"Authorization": "Bearer token"},
		},
	})
	httpmock.ActivateNonDefault(client.client)
	return client
}

func TestCreateNewNsiPostsPayload(t *testing.T) {
	client := newTestDeliusApiClient()
	defer httpmock.DeactivateAndReset()

	var received model.NewNsi
	httpmock.RegisterResponder(http.MethodPost, "http://delius-api.test/v1/nsi",
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "Bearer token", req.Header.Get("Authorization"))
			assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
			if err := json.NewDecoder(req.Body).Decode(&received); err != nil {
				return nil, err
			}
			return httpmock.NewJsonResponse(http.StatusOK, model.NsiDto{ID: 2500029015})
		})

	payload := model.NewNsi{
		Type:             "IPT",
		SubType:          ptr.String("IPT1"),
		OffenderCrn:      "X123456",
		EventID:          2500295343,
		ReferralDate:     "2021-01-20",
		Status:           "REFER",
		StatusDate:       ptr.String("2021-01-20T00:00:00"),
		IntendedProvider: "YSS",
		Manager: model.NewNsiManager{
			Staff:    ptr.String("N06AAFU"),
			Team:     ptr.String("N05MKU"),
			Provider: "YSS",
		},
	}

	dto, err := client.CreateNewNsi(context.Background(), payload)
	assert.NoError(t, err)
	assert.Equal(t, int64(2500029015), dto.ID)
	assert.Equal(t, payload, received)
}

func TestCreateNewNsiDoesNotRetryClientErrors(t *testing.T) {
	client := newTestDeliusApiClient()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodPost, "http://delius-api.test/v1/nsi",
		httpmock.NewStringResponder(http.StatusBadRequest, `{"developerMessage":"eventId must be provided"}`))

	dto, err := client.CreateNewNsi(context.Background(), model.NewNsi{Type: "IPT"})
	assert.Nil(t, dto)
	assert.Error(t, err)

	apiErr, ok := err.(apierror.APIError)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrUpstream, apiErr.Code)
	assert.Equal(t, http.StatusBadRequest, apierror.MapErrorToHTTPStatus(apiErr))
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestCreateNewNsiRetriesServerErrors(t *testing.T) {
	client := newTestDeliusApiClient()
	defer httpmock.DeactivateAndReset()

	calls := 0
	httpmock.RegisterResponder(http.MethodPost, "http://delius-api.test/v1/nsi",
		func(req *http.Request) (*http.Response, error) {
			calls++
			if calls == 1 {
				return httpmock.NewStringResponse(http.StatusServiceUnavailable, ""), nil
			}
			return httpmock.NewJsonResponse(http.StatusOK, model.NsiDto{ID: 99})
		})

	dto, err := client.CreateNewNsi(context.Background(), model.NewNsi{Type: "IPT"})
	assert.NoError(t, err)
	assert.Equal(t, int64(99), dto.ID)
	assert.Equal(t, 2, calls)
}
