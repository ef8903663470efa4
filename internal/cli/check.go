package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/marks/internal/linkcheck"
)

func (a *app) newCheckCmd() *cobra.Command {
	var (
		concurrency int
		timeout     time.Duration
		private     []string
		prune       bool
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Find bookmarks whose links are dead",
		Long: `Request every bookmarked URL and report the ones that are dead (404/410)
or unreachable. With --prune, dead bookmarks are deleted; unreachable
ones are only reported since they are often temporary.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.openCLI(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			bookmarks := sess.svc.List()
			if len(bookmarks) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No bookmarks")
				return nil
			}

			errOut := cmd.ErrOrStderr()
			results := linkcheck.Check(cmd.Context(), bookmarks, linkcheck.Options{
				Concurrency:    concurrency,
				Timeout:        timeout,
				PrivateDomains: private,
				OnProgress: func(done, total int) {
					fmt.Fprintf(errOut, "\rChecked %d/%d", done, total)
				},
			})
			fmt.Fprintln(errOut)

			out := cmd.OutOrStdout()
			var dead, unreachable int
			var errs []error
			for _, r := range results {
				switch r.Status {
				case linkcheck.Dead:
					dead++
					fmt.Fprintf(out, "dead         %d  %s  %s\n", r.StatusCode, r.Bookmark.Title, r.Bookmark.URL)
					if prune {
						if err := sess.svc.Delete(r.Bookmark.ID); err != nil {
							errs = append(errs, err)
						}
					}
				case linkcheck.Unreachable:
					unreachable++
					fmt.Fprintf(out, "unreachable  %s  %s  %s\n", r.Reason, r.Bookmark.Title, r.Bookmark.URL)
				}
			}

			fmt.Fprintf(out, "%d checked, %d dead, %d unreachable", len(results), dead, unreachable)
			if prune && dead > 0 {
				fmt.Fprintf(out, ", %d deleted", dead-len(errs))
			}
			fmt.Fprintln(out)
			return errors.Join(errs...)
		},
	}

	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", linkcheck.DefaultConcurrency, "parallel requests")
	cmd.Flags().DurationVar(&timeout, "timeout", linkcheck.DefaultTimeout, "per-request timeout")
	cmd.Flags().StringSliceVar(&private, "private", nil, "domains where 404 means login required, not dead")
	cmd.Flags().BoolVar(&prune, "prune", false, "delete dead bookmarks")
	return cmd
}
