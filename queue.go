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
	"encoding/json"
	"log"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/ministryofjustice/delius-api/config"
	redis_db "github.com/ministryofjustice/delius-api/internal/redis-db"
)

// Queue hands tasks to the redis-backed worker pool. Only webhook fan-out
// goes through it; delta leasing stays a synchronous database transaction.
type Queue struct {
	Client    *asynq.Client
	Inspector *asynq.Inspector
}

func NewQueue(conf *config.Configuration) *Queue {
	redisOption, err := redis_db.ParseRedisURL(conf.Redis.Dns)
	if err != nil {
		log.Fatalf("Error parsing Redis URL: %v", err)
	}

	queueOptions := asynq.RedisClientOpt{Addr: redisOption.Addr, Password: redisOption.Password, DB: redisOption.DB}
	client := asynq.NewClient(queueOptions)
	inspector := asynq.NewInspector(queueOptions)
	return &Queue{
		Client:    client,
		Inspector: inspector,
	}
}

// queueWebhook enqueues one webhook notification. Task ids are fresh UUIDs;
// dispatch retries are asynq's responsibility.
func (q *Queue) queueWebhook(queueName string, data NewWebhook) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}

	taskOptions := []asynq.Option{
		asynq.TaskID(uuid.New().String()),
		asynq.Queue(queueName),
	}
	task := asynq.NewTask(queueName, payload, taskOptions...)
	info, err := q.Client.Enqueue(task)
	if err != nil {
		log.Println(err, info)
		return err
	}
	return nil
}
