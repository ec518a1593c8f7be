package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"flakeforge/internal/config"
	"flakeforge/internal/security"
	"flakeforge/internal/ui"
	"flakeforge/pkg/models"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive configuration wizard",
	Long: "Walks through the warehouse connection, dataset source, and run\n" +
		"settings, stores the warehouse password in the system credential\n" +
		"store, and writes config.yaml.",
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	ui.ShowLogo()
	ui.ShowHeader("FlakeForge Setup")

	if config.Exists() {
		ok, err := ui.Confirm("A configuration already exists. Overwrite it?", false)
		if err != nil {
			return err
		}
		if !ok {
			ui.ShowInfo("Setup cancelled")
			return nil
		}
	}

	cfg := &models.Config{}

	ui.PrintSection("Warehouse connection")
	var err error
	if cfg.Warehouse.Account, err = ui.Input("Snowflake account", "", "e.g. xy12345.us-east-1"); err != nil {
		return err
	}
	if cfg.Warehouse.Username, err = ui.Input("Username", "", ""); err != nil {
		return err
	}
	if cfg.Warehouse.Role, err = ui.Input("Role", "SYSADMIN", ""); err != nil {
		return err
	}
	if cfg.Warehouse.Warehouse, err = ui.Input("Warehouse", "COMPUTE_WH", ""); err != nil {
		return err
	}
	if cfg.Warehouse.Database, err = ui.Input("Database", "DATAWAREHOUSE", ""); err != nil {
		return err
	}

	password, err := ui.Password("Warehouse password", "Stored in the OS keyring, never in config.yaml")
	if err != nil {
		return err
	}

	ui.PrintSection("Dataset source")
	source, err := ui.Select("Where do the CSV extracts live?", []string{
		"Local directory",
		"Git repository",
	})
	if err != nil {
		return err
	}
	if source == "Git repository" {
		if cfg.Dataset.GitURL, err = ui.Input("Repository URL", "", "HTTPS or SSH clone URL"); err != nil {
			return err
		}
		if cfg.Dataset.Branch, err = ui.Input("Branch", "main", ""); err != nil {
			return err
		}
	} else {
		if cfg.Dataset.Path, err = ui.Input("Dataset directory", "./datasets", "Directory containing the six CSV extracts"); err != nil {
			return err
		}
	}

	cfg.Warehouse.PasswordRef = fmt.Sprintf("%s@%s", cfg.Warehouse.Username, cfg.Warehouse.Account)
	cfg.Logging.Level = "info"

	creds, err := security.NewCredentialManager()
	if err != nil {
		return err
	}
	if err := creds.StorePassword(cfg.Warehouse.PasswordRef, password); err != nil {
		return err
	}

	if err := config.Save(cfg); err != nil {
		return err
	}

	ui.ShowSuccess(fmt.Sprintf("Configuration saved to %s", config.GetConfigFile()))
	ui.ShowInfo("Run 'flakeforge validate' to verify connectivity, then 'flakeforge run'")
	return nil
}
