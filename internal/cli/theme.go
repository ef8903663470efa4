package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/marks/internal/model"
)

func (a *app) newThemeCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "theme [light|dark|toggle]",
		Short:     "Show or set the UI theme",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(model.ThemeLight), string(model.ThemeDark), "toggle"},
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.openCLI(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			out := cmd.OutOrStdout()
			if len(args) == 0 {
				fmt.Fprintln(out, sess.svc.Theme())
				return nil
			}

			var theme model.Theme
			if args[0] == "toggle" {
				theme, err = sess.svc.ToggleTheme()
			} else {
				theme, err = model.ParseTheme(args[0])
				if err == nil {
					err = sess.svc.SetTheme(theme)
				}
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(out, theme)
			return nil
		},
	}
}
