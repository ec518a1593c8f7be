package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"flakeforge/internal/config"
	"flakeforge/internal/ui"
	"flakeforge/pkg/models"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config.yaml without prompting",
	Long: "Scaffolds a configuration with placeholder values. Edit it, store\n" +
		"the warehouse password with 'flakeforge setup', and run a batch.",
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	if config.Exists() {
		ui.ShowWarning(fmt.Sprintf("Configuration already exists at %s", config.GetConfigFile()))
		return nil
	}

	cfg := &models.Config{
		Warehouse: models.WarehouseConfig{
			Account:     "xy12345.us-east-1",
			Username:    "loader",
			Role:        "SYSADMIN",
			Warehouse:   "COMPUTE_WH",
			Database:    "DATAWAREHOUSE",
			PasswordRef: "loader@xy12345.us-east-1",
		},
		Dataset: models.DatasetConfig{
			Path: "./datasets",
		},
		Run: models.RunConfig{
			Parallelism: 1,
			ChunkSize:   500,
		},
		Logging: models.LoggingConfig{
			Level: "info",
		},
	}

	if err := config.Save(cfg); err != nil {
		return err
	}

	ui.ShowSuccess(fmt.Sprintf("Starter configuration written to %s", config.GetConfigFile()))
	ui.ShowInfo("Edit the warehouse and dataset settings, then run 'flakeforge setup' to store the password")
	return nil
}
