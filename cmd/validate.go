package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"flakeforge/internal/config"
	"flakeforge/internal/dataset"
	"flakeforge/internal/security"
	"flakeforge/internal/ui"
	"flakeforge/internal/warehouse"
)

var validateSkipConnect bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration and probe warehouse connectivity",
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateSkipConnect, "offline", false, "skip the warehouse connectivity probe")
}

func runValidate(cmd *cobra.Command, args []string) error {
	ui.ShowHeader("Configuration Check")

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	ui.ShowSuccess(fmt.Sprintf("Configuration valid (%s)", config.GetConfigFile()))

	logger, flush, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer flush()

	ui.PrintKeyValue("Account", cfg.Warehouse.Account)
	ui.PrintKeyValue("Database", cfg.Warehouse.Database)
	if cfg.Dataset.GitURL != "" {
		ui.PrintKeyValue("Dataset", cfg.Dataset.GitURL)
	} else {
		ui.PrintKeyValue("Dataset", cfg.Dataset.Path)
		if _, err := dataset.NewResolver(cfg.Dataset, logger).Resolve(cmd.Context()); err != nil {
			return err
		}
		ui.ShowSuccess("All six source files present")
	}

	if validateSkipConnect {
		return nil
	}

	creds, err := security.NewCredentialManager()
	if err != nil {
		return err
	}
	password, err := creds.GetPassword(cfg.Warehouse.PasswordRef)
	if err != nil {
		return err
	}

	spinner := ui.NewSpinner("Connecting to warehouse")
	spinner.Start()

	svc := warehouse.NewService(cfg.Warehouse, password, logger)
	if err := svc.Connect(cmd.Context()); err != nil {
		spinner.Stop(false, "Connection failed")
		return err
	}
	defer svc.Close()

	spinner.Stop(true, fmt.Sprintf("Connected to %s as %s", cfg.Warehouse.Account, cfg.Warehouse.Username))
	return nil
}
