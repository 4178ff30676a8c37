package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bkarpinos/linkvault/internal/link"
)

// confirm asks the user to approve an irreversible action unless --yes
// was given. Anything but "y" or "yes" declines.
func confirm(cmd *cobra.Command, prompt string) bool {
	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		return true
	}
	return ask(cmd.InOrStdin(), cmd.OutOrStdout(), prompt)
}

func ask(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", prompt)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		fmt.Fprintln(out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

func addYesFlag(cmds ...*cobra.Command) {
	for _, c := range cmds {
		c.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
	}
}

// printLink writes one link in the list layout.
func printLink(w io.Writer, l link.Link) {
	marks := ""
	if l.IsFavorite {
		marks += " ★"
	}
	if l.ReadLater {
		marks += " ⏱"
	}
	fmt.Fprintf(w, "%-36s %s%s\n", l.ID, l.Title, marks)
	fmt.Fprintf(w, "%37s URL: %s\n", "", l.URL)
	if l.Description != "" {
		fmt.Fprintf(w, "%37s Description: %s\n", "", l.Description)
	}
	if l.IsDeleted {
		fmt.Fprintf(w, "%37s Deleted from: %s\n", "", originalFolder(l))
	} else {
		fmt.Fprintf(w, "%37s Folder: %s\n", "", l.Folder)
	}
	if len(l.Tags) > 0 {
		fmt.Fprintf(w, "%37s Tags: %s\n", "", strings.Join(l.Tags, ", "))
	}
	fmt.Fprintln(w)
}

// printLinkDetails writes every field of a link.
func printLinkDetails(w io.Writer, l link.Link) {
	fmt.Fprintf(w, "ID:          %s\n", l.ID)
	fmt.Fprintf(w, "Title:       %s\n", l.Title)
	fmt.Fprintf(w, "URL:         %s\n", l.URL)
	fmt.Fprintf(w, "Description: %s\n", l.Description)
	fmt.Fprintf(w, "Image:       %s\n", l.Image)
	fmt.Fprintf(w, "Folder:      %s\n", l.Folder)
	fmt.Fprintf(w, "Tags:        %s\n", strings.Join(l.Tags, ", "))
	fmt.Fprintf(w, "Favorite:    %t\n", l.IsFavorite)
	fmt.Fprintf(w, "Read later:  %t\n", l.ReadLater)
	fmt.Fprintf(w, "Created:     %s\n", l.CreatedAt.Local().Format("2006-01-02 15:04"))
	if l.IsDeleted {
		deleted := "unknown"
		if l.DeletedAt != nil {
			deleted = l.DeletedAt.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "In trash:    since %s, from %s\n", deleted, originalFolder(l))
	}
}

func originalFolder(l link.Link) string {
	if l.OriginalFolder == "" {
		return link.Personal
	}
	return l.OriginalFolder
}
