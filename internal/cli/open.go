package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/marks/internal/model"
	"github.com/nikbrunner/marks/internal/picker"
	"github.com/nikbrunner/marks/internal/search"
)

func (a *app) newOpenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open <query>",
		Short: "Fuzzy search titles and open the match in the browser",
		Long: `Fuzzy search bookmark titles. A single match opens straight away;
several matches open a picker.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.openCLI(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			out := cmd.OutOrStdout()
			query := strings.Join(args, " ")
			results := search.FuzzySearchBookmarks(sess.svc.List(), query)

			var selected model.Bookmark
			switch len(results) {
			case 0:
				fmt.Fprintf(out, "No bookmarks found for '%s'\n", query)
				return nil
			case 1:
				selected = results[0].Bookmark
			default:
				p := picker.New(results, query, sess.svc.Theme())
				finalModel, err := tea.NewProgram(p, tea.WithInput(cmd.InOrStdin()), tea.WithOutput(cmd.ErrOrStderr())).Run()
				if err != nil {
					return fmt.Errorf("run picker: %w", err)
				}
				b, ok := finalModel.(picker.Picker).SelectedBookmark()
				if !ok {
					return nil
				}
				selected = b
			}

			fmt.Fprintf(out, "Opening: %s\n", selected.Title)
			if err := a.openURL(selected.URL); err != nil {
				return fmt.Errorf("open %s: %w", selected.URL, err)
			}
			return nil
		},
	}
}
