package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bkarpinos/linkvault/internal/link"
)

// Add command
var addCmd = &cobra.Command{
	Use:   "add [url]",
	Short: "Save a new link",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		if title == "" {
			title = args[0]
		}
		p := paramsFromFlags(cmd, link.Params{URL: args[0], Title: title})

		l, err := lib.Create(p)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s -> %s (id %s)\n", l.Title, l.URL, l.ID)
		return nil
	},
}

// List command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List links in a view",
	Long: `List links in a view. Views are all, favorites, read-later, trash,
folder:<name> and tag:<name>. Without --view the saved current view is used.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		selector, _ := cmd.Flags().GetString("view")
		search, _ := cmd.Flags().GetString("search")
		watch, _ := cmd.Flags().GetBool("watch")

		if selector == "" {
			selector = repo.LoadSettings().CurrentView
		}
		view, err := link.ParseView(selector)
		if err != nil {
			return err
		}

		printList(cmd, view, search)
		if !watch {
			return nil
		}
		if fileSlot == nil {
			return errors.New("--watch needs the file backend")
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s for changes, press Ctrl+C to stop\n", fileSlot.Path())
		return fileSlot.Watch(ctx, func() {
			fmt.Fprintln(cmd.OutOrStdout(), "---")
			printList(cmd, view, search)
		})
	},
}

func printList(cmd *cobra.Command, view link.View, search string) {
	out := cmd.OutOrStdout()
	links := lib.List(view, search)
	if len(links) == 0 {
		fmt.Fprintln(out, "No links found.")
		return
	}

	fmt.Fprintf(out, "Links (%s):\n", view)
	fmt.Fprintln(out, "=========")
	for _, l := range links {
		printLink(out, l)
	}
}

// Show command
var showCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show every field of a link",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := lib.Get(args[0])
		if err != nil {
			return err
		}
		printLinkDetails(cmd.OutOrStdout(), l)
		return nil
	},
}

// Edit command
var editCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Change the fields of a link",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		current, err := lib.Get(args[0])
		if err != nil {
			return err
		}
		p := current.Params()
		if cmd.Flags().Changed("url") {
			p.URL, _ = cmd.Flags().GetString("url")
		}
		if cmd.Flags().Changed("title") {
			p.Title, _ = cmd.Flags().GetString("title")
		}
		p = paramsFromFlags(cmd, p)

		l, err := lib.Update(args[0], p)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", l.Title)
		return nil
	},
}

// paramsFromFlags overlays the link flags the user set onto p.
func paramsFromFlags(cmd *cobra.Command, p link.Params) link.Params {
	flags := cmd.Flags()
	if flags.Changed("description") {
		p.Description, _ = flags.GetString("description")
	}
	if flags.Changed("image") {
		p.Image, _ = flags.GetString("image")
	}
	if flags.Changed("folder") {
		p.Folder, _ = flags.GetString("folder")
	}
	if flags.Changed("tags") {
		tags, _ := flags.GetString("tags")
		p.Tags = link.SplitTags(tags)
	}
	if flags.Changed("favorite") {
		p.IsFavorite, _ = flags.GetBool("favorite")
	}
	if flags.Changed("read-later") {
		p.ReadLater, _ = flags.GetBool("read-later")
	}
	return p
}

// Favorite command
var favoriteCmd = &cobra.Command{
	Use:   "favorite [id]",
	Short: "Toggle the favorite mark of a link",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := lib.ToggleFavorite(args[0])
		if err != nil {
			return err
		}
		state := "removed from"
		if l.IsFavorite {
			state = "added to"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s favorites\n", l.Title, state)
		return nil
	},
}

// Read later command
var laterCmd = &cobra.Command{
	Use:   "later [id]",
	Short: "Toggle the read-later mark of a link",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := lib.ToggleReadLater(args[0])
		if err != nil {
			return err
		}
		state := "removed from"
		if l.ReadLater {
			state = "added to"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s the read-later list\n", l.Title, state)
		return nil
	},
}

// Open command
var openCmd = &cobra.Command{
	Use:   "open [id]",
	Short: "Open a link in the default browser",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := lib.Get(args[0])
		if err != nil {
			return err
		}

		useGoURL, _ := cmd.Flags().GetBool("go")
		urlToOpen := l.URL
		if useGoURL {
			urlToOpen = fmt.Sprintf("http://localhost:%d/go/%s", cfg.Server.Port, l.ID)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Opening %s (%s) in browser\n", l.Title, urlToOpen)

		// Open URL in the default browser
		var openCmd *exec.Cmd
		switch runtime.GOOS {
		case "darwin":
			openCmd = exec.Command("open", urlToOpen)
		case "linux":
			openCmd = exec.Command("xdg-open", urlToOpen)
		case "windows":
			openCmd = exec.Command("cmd", "/c", "start", urlToOpen)
		default:
			return fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
		}

		if err := openCmd.Run(); err != nil {
			return fmt.Errorf("opening URL: %w", err)
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{addCmd, editCmd} {
		c.Flags().StringP("title", "t", "", "Title of the link")
		c.Flags().StringP("description", "d", "", "Description of the link")
		c.Flags().String("image", "", "Preview image URL")
		c.Flags().StringP("folder", "f", "", "Folder for the link (default Personal)")
		c.Flags().String("tags", "", "Comma separated tags")
		c.Flags().Bool("favorite", false, "Mark as favorite")
		c.Flags().Bool("read-later", false, "Add to the read-later list")
	}
	editCmd.Flags().String("url", "", "New URL")

	listCmd.Flags().String("view", "", "View to list (all, favorites, read-later, trash, folder:<name>, tag:<name>)")
	listCmd.Flags().StringP("search", "s", "", "Only links whose title, description or tags contain this text")
	listCmd.Flags().BoolP("watch", "w", false, "Print the list again whenever the data file changes")

	// Add go flag to open command
	openCmd.Flags().Bool("go", false, "Open the go/<id> redirect of a running server instead of the URL")
}
