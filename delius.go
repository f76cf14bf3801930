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
	"embed"

	"github.com/ministryofjustice/delius-api/cache"
	"github.com/ministryofjustice/delius-api/config"
	"github.com/ministryofjustice/delius-api/database"
	"github.com/ministryofjustice/delius-api/internal/notification"
	"github.com/sirupsen/logrus"
)

//go:embed sql/*.sql
var SQLFiles embed.FS

// Delius is the service layer: offender-delta queue management and referral
// (NSI) matching over a datasource, an outbound Delius API client, a task
// queue and a resolver cache.
type Delius struct {
	queue      *Queue
	cache      cache.Cache
	datasource database.IDataSource
	deliusAPI  NsiCreator
}

// NewDelius wires the service from the loaded configuration. The cache is
// best-effort: when redis is unreachable the CRN resolver just always hits
// the datasource.
func NewDelius(db database.IDataSource) (*Delius, error) {
	configuration, err := config.Fetch()
	if err != nil {
		return nil, err
	}

	newQueue := NewQueue(configuration)

	resolverCache, err := cache.NewCache()
	if err != nil {
		logrus.Warnf("offender resolver cache unavailable: %v", err)
		resolverCache = nil
	}

	d := &Delius{
		datasource: db,
		queue:      newQueue,
		cache:      resolverCache,
		deliusAPI:  NewDeliusApiClient(configuration),
	}

	notification.RegisterWebhookSender(func(event string, payload interface{}) error {
		return d.SendWebhook(NewWebhook{Event: event, Payload: payload})
	})

	return d, nil
}
