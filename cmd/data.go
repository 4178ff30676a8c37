package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/bkarpinos/linkvault/internal/transfer"
)

// Export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export links, folders and settings to a JSON or XLSX file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")

		if output == "" {
			output = fmt.Sprintf("linkvault-backup-%s.%s", time.Now().Format("2006-01-02"), format)
		}

		var buf bytes.Buffer
		switch format {
		case "json":
			if err := xfer.ExportJSON(&buf); err != nil {
				return err
			}
		case "xlsx":
			if err := transfer.WriteXLSX(&buf, transfer.ToWorkbook(xfer.Export())); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown format %q (use json or xlsx)", format)
		}

		if output == "-" {
			_, err := cmd.OutOrStdout().Write(buf.Bytes())
			return err
		}
		if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", output)
		return nil
	},
}

// Import command
var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Replace all data with the contents of a JSON or XLSX export",
	Long: `Replace all links, folders and settings with the contents of an export.
Files ending in .xlsx are read as spreadsheets, anything else as JSON.
Current data is overwritten, not merged.

Use - to read a JSON document from stdin. Stdin then cannot answer the
confirmation prompt, so --yes (or --dry-run) is required.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if err := checkStdinImport(cmd, path); err != nil {
			return err
		}
		data, err := readInput(cmd, path)
		if err != nil {
			return err
		}

		var snap *transfer.Snapshot
		if strings.EqualFold(filepath.Ext(path), ".xlsx") {
			wb, err := transfer.ReadXLSX(bytes.NewReader(data))
			if err != nil {
				return err
			}
			snap, err = transfer.FromWorkbook(wb, time.Now())
			if err != nil {
				return err
			}
		} else {
			snap, err = transfer.Validate(data)
			if err != nil {
				return err
			}
		}

		sum := snap.Summary()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "File contains %d link(s) (%d in the trash) and %d folder(s)\n", sum.Links, sum.Trashed, sum.Folders)
		if snap.ExportDate != "" {
			fmt.Fprintf(out, "Exported at %s, format %s\n", snap.ExportDate, snap.Version)
		}

		if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
			return nil
		}
		if !confirm(cmd, "Replace all current data with this file?") {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}

		if err := xfer.Apply(snap); err != nil {
			return err
		}
		fmt.Fprintln(out, "Import complete")
		return nil
	},
}

// checkStdinImport rejects an import from stdin that would still need the
// interactive confirmation, which reads the same stream.
func checkStdinImport(cmd *cobra.Command, path string) error {
	if path != "-" {
		return nil
	}
	yes, _ := cmd.Flags().GetBool("yes")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	if !yes && !dryRun {
		return errors.New("importing from stdin needs --yes or --dry-run")
	}
	return nil
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read import file: %w", err)
	}
	return data, nil
}

// Stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show counts of links, folders and tags",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(repo.Stats())
	},
}

// Clear command
var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Erase all links, folders and settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirm(cmd, "Erase ALL links, folders and settings? This cannot be undone.") {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
			return nil
		}
		if err := repo.Clear(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "All data erased")
		return nil
	},
}

func init() {
	exportCmd.Flags().String("format", "json", "Export format: json or xlsx")
	exportCmd.Flags().StringP("output", "o", "", "Output file, - for stdout (default linkvault-backup-<date>.<format>)")

	importCmd.Flags().Bool("dry-run", false, "Validate the file and show what it contains without importing")

	addYesFlag(importCmd, clearCmd)
}
