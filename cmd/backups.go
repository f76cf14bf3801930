package main

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	backups "github.com/ministryofjustice/delius-api/internal/pg-backups"
)

func backupCommands() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "back up the delius database",
	}

	cmd.AddCommand(backupToCommands())
	cmd.AddCommand(backupZipCommands())

	return cmd
}

func backupToCommands() *cobra.Command {
	cmd := &cobra.Command{
		Use: "drive",
		Run: func(cmd *cobra.Command, args []string) {
			err := backups.BackupDB()
			if err != nil {
				logrus.Error(err)
				return
			}
		},
	}

	return cmd
}

func backupZipCommands() *cobra.Command {
	cmd := &cobra.Command{
		Use: "zip",
		Run: func(cmd *cobra.Command, args []string) {
			zipFile, err := backups.ZipBackups(time.Now())
			if err != nil {
				logrus.Error(err)
				return
			}
			logrus.Infof("backups archived to %s", zipFile)
		},
	}

	return cmd
}
