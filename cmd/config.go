package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/bkarpinos/linkvault/internal/config"
)

// Config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage linkvault configuration",
}

// Set storage directory command
var setStorageDirCmd = &cobra.Command{
	Use:   "storage-dir [path]",
	Short: "Set the directory holding the data file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("converting to absolute path: %w", err)
		}

		if err := config.Write(viper.GetViper(), configDir, "storage_dir", path); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Storage directory set to: %s\n", path)
		fmt.Fprintln(out, "Restart the application for changes to take effect.")
		return nil
	},
}

// Set backend command
var setBackendCmd = &cobra.Command{
	Use:       "backend [file|sqlite]",
	Short:     "Choose where data is stored",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{config.BackendFile, config.BackendSQLite},
	RunE: func(cmd *cobra.Command, args []string) error {
		next := *cfg
		next.Backend = args[0]
		if err := next.Validate(); err != nil {
			return err
		}
		if err := config.Write(viper.GetViper(), configDir, "backend", args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Backend set to: %s\n", args[0])
		return nil
	},
}

// View config command
var viewConfigCmd = &cobra.Command{
	Use:   "view",
	Short: "View current configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Config directory: %s\n", configDir)
		if viper.ConfigFileUsed() != "" {
			fmt.Fprintf(out, "Config file: %s\n", viper.ConfigFileUsed())
		} else {
			fmt.Fprintln(out, "Config file: not found (using defaults)")
		}
		if cfg.Backend == config.BackendSQLite {
			fmt.Fprintf(out, "Database: %s\n", cfg.DatabaseDSN())
		} else {
			fmt.Fprintf(out, "Data file: %s\n", cfg.FilePath())
		}

		fmt.Fprintln(out, "\nAll settings:")
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(cfg)
	},
}

func init() {
	configCmd.AddCommand(setStorageDirCmd, setBackendCmd, viewConfigCmd)
}
