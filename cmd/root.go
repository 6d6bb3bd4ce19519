// File: cmd/root.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/sewardsheng/sql-analyzer-cli-sub008/internal/config"
	"github.com/sewardsheng/sql-analyzer-cli-sub008/internal/observability"
)

// contextKey is unexported so only this package can store values under it.
type contextKey string

const configKey contextKey = "config"

const (
	envPrefix      = "SQLANALYZER"
	configName     = "config"
	userConfigDir  = ".sqlanalyzer"
	configFileType = "yaml"
)

// NewRootCommand builds a fresh command tree. Every call returns independent
// flag state, so tests and embedders can run it repeatedly.
func NewRootCommand() *cobra.Command {
	return newRootCmd(NewStoreProvider())
}

func newRootCmd(provider storeProvider) *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "sqlanalyzer",
		Short: "sqlanalyzer merges SQL analysis results into one prioritized report.",
		Long: `sqlanalyzer reads the per-dimension output of SQL analyzers (performance,
security, standards), merges and prioritizes their recommendations, and renders
a single integrated report with an overall risk verdict and an implementation plan.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			config.SetDefaults(v)

			if err := initializeConfig(v, cfgFile); err != nil {
				return fmt.Errorf("failed to initialize configuration: %w", err)
			}

			cfg, err := config.NewConfigFromViper(v)
			if err != nil {
				observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "sqlanalyzer"})
				return fmt.Errorf("failed to load or validate config: %w", err)
			}

			observability.InitializeLogger(cfg.Logger())
			logger := observability.GetLogger()
			logger.Debug("Starting sqlanalyzer", zap.String("version", Version), zap.String("config_file", v.ConfigFileUsed()))
			for _, warning := range cfg.Warnings() {
				logger.Warn("Configuration value corrected", zap.String("detail", warning))
			}

			cmd.SetContext(context.WithValue(cmd.Context(), configKey, cfg))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./config.yaml, then ~/.sqlanalyzer/config.yaml)")
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	rootCmd.AddCommand(newReportCmd(provider))
	rootCmd.AddCommand(newHistoryCmd(provider))
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

// Execute runs the command tree with ctx. Errors are logged before they are
// returned so the caller only has to pick an exit code.
func Execute(ctx context.Context) error {
	rootCmd := NewRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			observability.GetLogger().Error("Command execution failed", zap.Error(err))
		}
		observability.Sync()
		return err
	}
	observability.Sync()
	return nil
}

// initializeConfig points v at the config file and the environment. An
// explicit file must exist; the default locations are optional.
func initializeConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		path, err := homedir.Expand(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to expand config path %s: %w", cfgFile, err)
		}
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(filepath.Join(home, userConfigDir))
		}
		v.SetConfigName(configName)
		v.SetConfigType(configFileType)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

// getConfigFromContext returns the configuration stored by the root command.
func getConfigFromContext(ctx context.Context) (config.Interface, error) {
	if ctx == nil {
		return nil, errors.New("command context is nil")
	}
	cfg, ok := ctx.Value(configKey).(config.Interface)
	if !ok || cfg == nil {
		return nil, errors.New("configuration not found in context")
	}
	return cfg, nil
}
