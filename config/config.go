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

package config

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"sync/atomic"

	"github.com/kelseyhightower/envconfig"

	"github.com/sirupsen/logrus"
)

const (
	DEFAULT_PORT = "8080"

	// DEFAULT_DELTA_RETENTION_DAYS is how long processed-around deltas are
	// kept before the retention sweep removes them.
	DEFAULT_DELTA_RETENTION_DAYS = 30
)

var ConfigStore atomic.Value

type ServerConfig struct {
	SSL       bool   `json:"ssl" envconfig:"DELIUS_SERVER_SSL"`
	Secure    bool   `json:"secure" envconfig:"DELIUS_SERVER_SECURE"`
	SecretKey string `json:"secret_key" envconfig:"DELIUS_SERVER_SECRET_KEY"`
	Domain    string `json:"domain" envconfig:"DELIUS_SERVER_SSL_DOMAIN"`
	Email     string `json:"ssl_email" envconfig:"DELIUS_SERVER_SSL_EMAIL"`
	Port      string `json:"port" envconfig:"DELIUS_SERVER_PORT"`
}

type DataSourceConfig struct {
	Dns string `json:"dns" envconfig:"DELIUS_DATA_SOURCE_DNS"`
}

type RedisConfig struct {
	Dns string `json:"dns" envconfig:"DELIUS_REDIS_DNS"`
}

// DeliusApiConfig points at the system of record that owns NSI creation.
type DeliusApiConfig struct {
	Url     string            `json:"url" envconfig:"DELIUS_API_URL"`
	Timeout int               `json:"timeout" envconfig:"DELIUS_API_TIMEOUT"`
	Headers map[string]string `json:"headers"`
}

// DeltaConfig tunes the offender-delta queue. Retention is in days; the lock
// grace window and failure timeout are deliberately not configurable, see
// the constants on OffenderDeltaService.
type DeltaConfig struct {
	RetentionDays int    `json:"retention_days" envconfig:"DELIUS_DELTA_RETENTION_DAYS"`
	WebhookQueue  string `json:"webhook_queue" envconfig:"DELIUS_DELTA_WEBHOOK_QUEUE"`
}

type RateLimitConfig struct {
	RequestsPerSecond  *float64 `json:"requests_per_second" envconfig:"DELIUS_RATE_LIMIT_RPS"`
	Burst              *int     `json:"burst" envconfig:"DELIUS_RATE_LIMIT_BURST"`
	CleanupIntervalSec *int     `json:"cleanup_interval_sec" envconfig:"DELIUS_RATE_LIMIT_CLEANUP_INTERVAL_SEC"`
}

type SlackWebhook struct {
	WebhookUrl string `json:"webhook_url"`
}

type Notification struct {
	Slack   SlackWebhook `json:"slack"`
	Webhook struct {
		Url     string            `json:"url"`
		Headers map[string]string `json:"headers"`
	} `json:"webhook"`
}

type Configuration struct {
	ProjectName  string           `json:"project_name" envconfig:"DELIUS_PROJECT_NAME"`
	Server       ServerConfig     `json:"server"`
	DataSource   DataSourceConfig `json:"data_source"`
	Redis        RedisConfig      `json:"redis"`
	DeliusApi    DeliusApiConfig  `json:"delius_api"`
	Delta        DeltaConfig      `json:"delta"`
	Notification Notification     `json:"notification"`
	RateLimit    RateLimitConfig  `json:"rate_limit"`
	BackupDir    string           `json:"backup_dir" envconfig:"DELIUS_BACKUP_DIR"`
}

func loadConfigFromFile(file string) error {
	var cnf Configuration
	_, err := os.Stat(file)
	if err == nil {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		err = json.NewDecoder(f).Decode(&cnf)
		if err != nil {
			return err
		}

	} else if errors.Is(err, os.ErrNotExist) {
		log.Println("config json not passed, will use env variables")
	}

	// override config from environment variables
	err = envconfig.Process("delius", &cnf)
	if err != nil {
		return err
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		return err
	}

	ConfigStore.Store(&cnf)
	return err
}

func InitConfig(configFile string) error {
	logger()
	return loadConfigFromFile(configFile)
}

func Fetch() (*Configuration, error) {
	config := ConfigStore.Load()
	c, ok := config.(*Configuration)
	if !ok {
		return nil, errors.New("config not loaded from file. Create a json file called delius.json with your config")
	}
	return c, nil
}

func (cnf *Configuration) validateAndAddDefaults() error {
	if cnf.ProjectName == "" {
		log.Println("Warning: Project name is empty. Setting a default name.")
		cnf.ProjectName = "Delius API"
	}

	if cnf.DataSource.Dns == "" {
		log.Println("Error: Data source DNS is empty. It's a required field.")
		return errors.New("data source DNS is required")
	}

	if cnf.Redis.Dns == "" {
		log.Println("Error: Redis DNS is empty. It's a required field.")
		return errors.New("redis DNS is required")
	}

	// Trim white spaces from fields
	cnf.ProjectName = strings.TrimSpace(cnf.ProjectName)
	cnf.Server.Port = strings.TrimSpace(cnf.Server.Port)
	cnf.DataSource.Dns = strings.TrimSpace(cnf.DataSource.Dns)
	cnf.Redis.Dns = strings.TrimSpace(cnf.Redis.Dns)
	cnf.DeliusApi.Url = strings.TrimSpace(cnf.DeliusApi.Url)

	if cnf.Server.Port == "" {
		cnf.Server.Port = DEFAULT_PORT
		log.Printf("Warning: Port not specified in config. Setting default port: %s", DEFAULT_PORT)
	}

	if cnf.Delta.RetentionDays == 0 {
		cnf.Delta.RetentionDays = DEFAULT_DELTA_RETENTION_DAYS
	}
	if cnf.Delta.WebhookQueue == "" {
		cnf.Delta.WebhookQueue = "delta_webhook"
	}

	if cnf.DeliusApi.Timeout == 0 {
		cnf.DeliusApi.Timeout = 30
	}

	if cnf.BackupDir == "" {
		cnf.BackupDir = "backups"
	}

	// Rate limiting is disabled by default (when both RPS and Burst are nil)
	if cnf.RateLimit.RequestsPerSecond != nil && cnf.RateLimit.Burst == nil {
		defaultBurst := 2 * int(*cnf.RateLimit.RequestsPerSecond)
		cnf.RateLimit.Burst = &defaultBurst
		log.Printf("Warning: Rate limit burst not specified. Setting default value: %d", defaultBurst)
	}
	if cnf.RateLimit.RequestsPerSecond == nil && cnf.RateLimit.Burst != nil {
		defaultRPS := float64(*cnf.RateLimit.Burst) / 2
		cnf.RateLimit.RequestsPerSecond = &defaultRPS
		log.Printf("Warning: Rate limit RPS not specified. Setting default value: %.2f", defaultRPS)
	}

	if cnf.RateLimit.CleanupIntervalSec == nil {
		defaultCleanup := 10800 // 3 hours in seconds
		cnf.RateLimit.CleanupIntervalSec = &defaultCleanup
	}

	return nil
}

// MockConfig sets a mock configuration for testing purposes.
func MockConfig(mockConfig *Configuration) {
	ConfigStore.Store(mockConfig)
}

func logger() {
	logger := logrus.New()
	log.SetOutput(logger.Writer())
}
