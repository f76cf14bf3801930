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
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"github.com/ministryofjustice/delius-api/config"
	"github.com/ministryofjustice/delius-api/internal/apierror"
	"github.com/ministryofjustice/delius-api/internal/request"
	"github.com/ministryofjustice/delius-api/model"
)

// NsiCreator is the outbound side of referral handling: something that can
// create an NSI in the system of record.
type NsiCreator interface {
	CreateNewNsi(ctx context.Context, payload model.NewNsi) (*model.NsiDto, error)
}

// DeliusApiClient creates NSIs over the Delius API's REST surface.
type DeliusApiClient struct {
	baseURL string
	headers map[string]string
	client  *http.Client
}

func NewDeliusApiClient(conf *config.Configuration) *DeliusApiClient {
	return &DeliusApiClient{
		baseURL: conf.DeliusApi.Url,
		headers: conf.DeliusApi.Headers,
		client:  &http.Client{Timeout: time.Duration(conf.DeliusApi.Timeout) * time.Second},
	}
}

// CreateNewNsi posts the creation payload to the Delius API. Connection
// failures and 5xx responses are retried with exponential backoff; 4xx
// responses are terminal and surface with the remote status intact.
func (c *DeliusApiClient) CreateNewNsi(ctx context.Context, payload model.NewNsi) (*model.NsiDto, error) {
	var dto model.NsiDto
	operation := func() error {
		body, err := request.ToJsonReq(payload)
		if err != nil {
			return backoff.Permanent(err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/nsi", body)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		for key, value := range c.headers {
			req.Header.Set(key, value)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			logrus.Warnf("Delius API call failed, will retry: %v", err)
			return err
		}
		defer func() {
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
		}()

		if resp.StatusCode >= http.StatusInternalServerError {
			logrus.Warnf("Delius API returned %d, will retry", resp.StatusCode)
			return apierror.NewUpstreamError(resp.StatusCode,
				fmt.Sprintf("Delius API returned status %d creating NSI", resp.StatusCode), nil)
		}
		if resp.StatusCode >= http.StatusMultipleChoices {
			return backoff.Permanent(apierror.NewUpstreamError(resp.StatusCode,
				fmt.Sprintf("Delius API rejected NSI creation with status %d", resp.StatusCode), nil))
		}
		if err := json.NewDecoder(resp.Body).Decode(&dto); err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return &dto, nil
}
