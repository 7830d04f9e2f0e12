package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"finitefield.org/dex-web/internal/platform/config"
	"finitefield.org/dex-web/internal/platform/observability"
)

var (
	envFile  string
	logLevel string

	cfg    config.Config
	logger *zap.Logger
)

// Execute runs the dex CLI.
func Execute() error {
	root := newRootCmd()
	err := root.Execute()
	if logger != nil {
		_ = logger.Sync()
	}
	return err
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "dex",
		Short:         "Random creature widget backed by PokeAPI",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(config.WithEnvFile(envFile))
			if err != nil {
				return err
			}
			if logLevel != "" {
				loaded.LogLevel = logLevel
			}
			l, err := observability.NewLogger(loaded.LogLevel)
			if err != nil {
				return err
			}
			cfg, logger = loaded, l
			return nil
		},
	}

	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file read before the environment")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "override DEX_LOG_LEVEL")

	root.AddCommand(serveCmd(), rollCmd())
	return root
}
