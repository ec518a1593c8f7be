package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"flakeforge/internal/observability"
	"flakeforge/internal/ui"
	"flakeforge/pkg/models"
)

var (
	verbose bool

	rootCmd = &cobra.Command{
		Use:   "flakeforge",
		Short: "Refresh a Snowflake medallion warehouse from CSV extracts",
		Long: "FlakeForge - a batch ELT tool that lands CRM and ERP CSV extracts in\n" +
			"bronze, conforms them into silver, and maintains the gold star-schema\n" +
			"views, in one command.",
	}
)

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		ui.ShowError(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug console logging")
	viper.BindPFlags(rootCmd.PersistentFlags())
}

func initConfig() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".flakeforge"))
	}

	viper.SetEnvPrefix("FLAKEFORGE")
	viper.AutomaticEnv()

	// Missing config is fine here; commands that need it load and validate
	// it explicitly.
	_ = viper.ReadInConfig()
}

// newLogger builds the command logger, honoring --verbose over the
// configured level. The returned func flushes buffered log entries.
func newLogger(cfg *models.Config) (*zap.Logger, func(), error) {
	logging := cfg.Logging
	if verbose {
		logging.Level = "debug"
	}
	return observability.NewLogger(logging)
}
