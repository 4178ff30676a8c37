package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bkarpinos/linkvault/internal/library"
)

// Delete command
var deleteCmd = &cobra.Command{
	Use:   "delete [id...]",
	Short: "Move links to the trash",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			l, err := lib.SoftDelete(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved %s to the trash\n", l.Title)
			return nil
		}

		res, err := lib.BulkSoftDelete(args)
		if err != nil {
			return err
		}
		printBulk(cmd, "Moved to the trash", res)
		return nil
	},
}

// Restore command
var restoreCmd = &cobra.Command{
	Use:   "restore [id...]",
	Short: "Take links out of the trash",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			l, err := lib.Restore(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %s to %s\n", l.Title, l.Folder)
			return nil
		}

		res, err := lib.BulkRestore(args)
		if err != nil {
			return err
		}
		printBulk(cmd, "Restored", res)
		return nil
	},
}

// Purge command
var purgeCmd = &cobra.Command{
	Use:   "purge [id...]",
	Short: "Delete links permanently",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirm(cmd, fmt.Sprintf("Permanently delete %d link(s)? This cannot be undone.", len(args))) {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
			return nil
		}

		if len(args) == 1 {
			if err := lib.PermanentDelete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s permanently\n", args[0])
			return nil
		}

		res, err := lib.PermanentDeleteMany(args)
		if err != nil {
			return err
		}
		printBulk(cmd, "Deleted permanently", res)
		return nil
	},
}

// Empty trash command
var emptyTrashCmd = &cobra.Command{
	Use:   "empty-trash",
	Short: "Permanently delete every link in the trash",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirm(cmd, "Permanently delete every link in the trash? This cannot be undone.") {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
			return nil
		}

		n, err := lib.EmptyTrash()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d link(s) from the trash\n", n)
		return nil
	},
}

func printBulk(cmd *cobra.Command, verb string, res library.BulkResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %d link(s)\n", verb, len(res.Applied))
	if len(res.Skipped) > 0 {
		fmt.Fprintf(out, "Skipped: %s\n", strings.Join(res.Skipped, ", "))
	}
}

func init() {
	addYesFlag(purgeCmd, emptyTrashCmd)
}
