// File: cmd/config_cmd.go
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"

	"github.com/sewardsheng/sql-analyzer-cli-sub008/internal/config"
)

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the sqlanalyzer configuration file",
	}

	var path string
	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			written, err := writeDefaultConfig(path, force)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", written)
			return err
		},
	}
	initCmd.Flags().StringVarP(&path, "path", "p", configName+"."+configFileType, "Where to write the configuration file")
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	configCmd.AddCommand(initCmd)
	return configCmd
}

// writeDefaultConfig renders the default configuration to path and returns
// the expanded path it wrote.
func writeDefaultConfig(path string, force bool) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("failed to expand config path %s: %w", path, err)
	}

	if !force {
		if _, err := os.Stat(expanded); err == nil {
			return "", fmt.Errorf("%s already exists; use --force to overwrite", expanded)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("failed to check %s: %w", expanded, err)
		}
	}

	out, err := config.NewDefaultConfig().ToYAML()
	if err != nil {
		return "", err
	}
	if dir := filepath.Dir(expanded); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(expanded, out, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", expanded, err)
	}
	return expanded, nil
}
