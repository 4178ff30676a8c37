package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/bkarpinos/linkvault/internal/link"
)

// Settings command
var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change preferences",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the stored preferences",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings := repo.LoadSettings()
		out := cmd.OutOrStdout()

		if asYAML, _ := cmd.Flags().GetBool("yaml"); asYAML {
			enc := yaml.NewEncoder(out)
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(settings)
		}

		fmt.Fprintf(out, "dark_mode:    %t\n", settings.DarkMode)
		fmt.Fprintf(out, "language:     %s\n", settings.Language)
		fmt.Fprintf(out, "view_layout:  %s\n", settings.ViewLayout)
		fmt.Fprintf(out, "current_view: %s\n", settings.CurrentView)
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change one preference",
	Long: `Change one preference. Keys:
  dark_mode     true or false
  language      ar or en
  view_layout   grid, list or compact
  current_view  all, favorites, read-later, trash, folder:<name> or tag:<name>`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := repo.UpdateSettings(func(settings *link.Settings) error {
			return applySetting(settings, args[0], args[1])
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s set to %s\n", args[0], args[1])
		return nil
	},
}

func applySetting(s *link.Settings, key, value string) error {
	switch key {
	case "dark_mode", "dark-mode":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("dark_mode must be true or false")
		}
		s.DarkMode = b
	case "language":
		s.Language = link.Language(value)
	case "view_layout", "view-layout":
		s.ViewLayout = link.ViewLayout(value)
	case "current_view", "current-view":
		s.CurrentView = value
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	return nil
}

func init() {
	settingsShowCmd.Flags().Bool("yaml", false, "Print as YAML")
	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd)
}
