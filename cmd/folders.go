package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bkarpinos/linkvault/internal/link"
)

// Folder command
var folderCmd = &cobra.Command{
	Use:   "folder",
	Short: "Manage folders",
}

var folderListCmd = &cobra.Command{
	Use:   "list",
	Short: "List folders with their link counts",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		counts := make(map[string]int)
		for _, l := range repo.LoadLinks() {
			if !l.IsDeleted {
				counts[l.Folder]++
			}
		}

		out := cmd.OutOrStdout()
		for _, f := range lib.Folders() {
			marker := ""
			if link.IsProtected(f) {
				marker = " (built-in)"
			}
			fmt.Fprintf(out, "%-20s %3d%s\n", f, counts[f], marker)
		}
	},
}

var folderAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Create a folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := lib.CreateFolder(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created folder %s\n", args[0])
		return nil
	},
}

var folderRenameCmd = &cobra.Command{
	Use:   "rename [old] [new]",
	Short: "Rename a folder and move its links along",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := lib.RenameFolder(args[0], args[1])
		if err != nil {
			return err
		}
		if _, err := repo.SwitchFolderView(args[0], link.FolderView(args[1])); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %s (%d link(s) moved)\n", args[0], args[1], n)
		return nil
	},
}

var folderDeleteCmd = &cobra.Command{
	Use:   "delete [name]",
	Short: "Delete a folder, moving its links to Personal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		n, err := lib.DeleteFolder(name)
		if err != nil {
			return err
		}
		reset, err := repo.SwitchFolderView(name, link.View{Kind: link.KindAll})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Deleted folder %s (%d link(s) moved to %s)\n", name, n, link.Personal)
		if reset {
			fmt.Fprintln(out, "Current view reset to all links")
		}
		return nil
	},
}

var folderReorderCmd = &cobra.Command{
	Use:   "reorder [name...]",
	Short: "Put the named folders first, in the given order",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		folders, err := lib.ReorderFolders(args)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for i, f := range folders {
			fmt.Fprintf(out, "%2d. %s\n", i+1, f)
		}
		return nil
	},
}

func init() {
	folderCmd.AddCommand(folderListCmd, folderAddCmd, folderRenameCmd, folderDeleteCmd, folderReorderCmd)
}
