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

package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	delius "github.com/ministryofjustice/delius-api"
	"github.com/ministryofjustice/delius-api/config"
	redlock "github.com/ministryofjustice/delius-api/internal/lock"
	pg_listener "github.com/ministryofjustice/delius-api/internal/pg-listener"
	redis_db "github.com/ministryofjustice/delius-api/internal/redis-db"
)

const (
	retentionSweepInterval = time.Hour
	retentionSweepLockKey  = "delta:retention-sweep"
)

// deltaChangeHandler fans database change notifications out as webhooks so
// downstream pollers can wake up instead of waiting for their next interval.
type deltaChangeHandler struct {
	delius *delius.Delius
}

func (h *deltaChangeHandler) HandleNotification(table string, data map[string]interface{}) error {
	if table != "offender_delta" {
		return nil
	}
	return h.delius.SendWebhook(delius.NewWebhook{
		Event:   delius.EventDeltaCreated,
		Payload: data,
	})
}

// runRetentionSweep deletes deltas older than the retention window. The redis
// lock keeps concurrent worker instances from sweeping at the same time.
func runRetentionSweep(ctx context.Context, d *deliusInstance, locker *redlock.Locker) {
	if err := locker.Lock(ctx, retentionSweepInterval/2); err != nil {
		logrus.Infof("retention sweep skipped: %v", err)
		return
	}
	defer func() {
		if err := locker.Unlock(ctx); err != nil {
			logrus.Warnf("retention sweep unlock: %v", err)
		}
	}()

	cutoff := time.Now().AddDate(0, 0, -d.cnf.Delta.RetentionDays)
	deleted, err := d.delius.DeleteDeltasBefore(ctx, cutoff)
	if err != nil {
		logrus.Errorf("retention sweep failed: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf(" [*] Retention sweep removed %d deltas older than %s", deleted, cutoff.Format(time.RFC3339))
	}
}

func startRetentionSweeper(ctx context.Context, d *deliusInstance) error {
	client, err := redis_db.NewRedisClient([]string{fmt.Sprintf("redis://%s", d.cnf.Redis.Dns)})
	if err != nil {
		return err
	}
	locker := redlock.NewLocker(client.Client(), retentionSweepLockKey, uuid.New().String())

	ticker := time.NewTicker(retentionSweepInterval)
	go func() {
		for range ticker.C {
			runRetentionSweep(ctx, d, locker)
		}
	}()
	return nil
}

func startDeltaListener(d *deliusInstance) {
	listener := pg_listener.NewDBListener(pg_listener.ListenerConfig{
		PgConnStr: d.cnf.DataSource.Dns,
		Timeout:   time.Minute,
	}, &deltaChangeHandler{delius: d.delius})
	go listener.Start()
}

func initializeQueues(cfg *config.Configuration) map[string]int {
	queues := make(map[string]int)
	queues[cfg.Delta.WebhookQueue] = 3
	return queues
}

func initializeWorkerServer(conf *config.Configuration, queues map[string]int) (*asynq.Server, error) {
	redisOption, err := redis_db.ParseRedisURL(conf.Redis.Dns)
	if err != nil {
		return nil, fmt.Errorf("error parsing Redis URL: %v", err)
	}

	return asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:      redisOption.Addr,
			Password:  redisOption.Password,
			DB:        redisOption.DB,
			TLSConfig: redisOption.TLSConfig,
		},
		asynq.Config{
			Concurrency: 1,
			Queues:      queues,
		},
	), nil
}

// workerCommands defines the "workers" command. Workers dispatch queued
// webhooks, relay delta change notifications and run the retention sweep.
func workerCommands(d *deliusInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workers",
		Short: "start delius-api workers",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			conf, err := config.Fetch()
			if err != nil {
				log.Fatal("Error fetching config:", err)
			}

			queues := initializeQueues(conf)

			srv, err := initializeWorkerServer(conf, queues)
			if err != nil {
				log.Fatal(err)
			}

			mux := asynq.NewServeMux()
			mux.HandleFunc(conf.Delta.WebhookQueue, delius.ProcessWebhook)

			if err := startRetentionSweeper(ctx, d); err != nil {
				log.Fatal(err)
			}
			startDeltaListener(d)

			if err := srv.Run(mux); err != nil {
				log.Fatalf("could not run server: %v", err)
			}
		},
	}

	return cmd
}
