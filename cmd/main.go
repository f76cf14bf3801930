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
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	delius "github.com/ministryofjustice/delius-api"
	"github.com/ministryofjustice/delius-api/config"
	"github.com/ministryofjustice/delius-api/database"
	"github.com/ministryofjustice/delius-api/internal/notification"
)

// CLI wraps the root cobra command.
type CLI struct {
	cmd *cobra.Command
}

// deliusInstance holds the wired service and its configuration for use by
// the subcommands.
type deliusInstance struct {
	delius *delius.Delius
	cnf    *config.Configuration
}

func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

// preRun loads the configuration and wires the service before any
// subcommand executes.
func preRun(app *deliusInstance) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := config.InitConfig("delius.json")
		if err != nil {
			log.Fatal("error loading config", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}

		newDelius, err := setupDelius(cnf)
		if err != nil {
			notification.NotifyError(err)
			log.Fatal(err)
		}

		app.delius = newDelius
		app.cnf = cnf

		return nil
	}
}

func setupDelius(cfg *config.Configuration) (*delius.Delius, error) {
	db, err := database.NewDataSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("error getting datasource: %v", err)
	}

	newDelius, err := delius.NewDelius(db)
	if err != nil {
		return nil, fmt.Errorf("error creating delius service: %v", err)
	}
	return newDelius, nil
}

func NewCLI() *CLI {
	var configFile string
	d := &deliusInstance{}

	var rootCmd = &cobra.Command{
		Use:   "delius-api",
		Short: "Probation case-management backend",
		Run:   func(cmd *cobra.Command, args []string) {},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./delius.json", "Configuration file for the Delius API")

	rootCmd.PersistentPreRunE = preRun(d)

	rootCmd.AddCommand(serverCommands(d))
	rootCmd.AddCommand(workerCommands(d))
	rootCmd.AddCommand(migrateCommands(d))
	rootCmd.AddCommand(backupCommands())
	rootCmd.AddCommand(configCommands())

	return &CLI{cmd: rootCmd}
}

func (w CLI) executeCLI() {
	if err := w.cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	defer recoverPanic()

	cli := NewCLI()
	cli.executeCLI()
}
