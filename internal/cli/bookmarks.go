package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/marks/internal/editor"
	"github.com/nikbrunner/marks/internal/model"
	"github.com/nikbrunner/marks/internal/search"
	"github.com/nikbrunner/marks/internal/service"
)

const fetchTitleTimeout = 5 * time.Second

func (a *app) newAddCmd() *cobra.Command {
	var (
		title       string
		description string
		tags        []string
		noFetch     bool
	)

	cmd := &cobra.Command{
		Use:   "add <url>",
		Short: "Add a bookmark",
		Long: `Add a bookmark for url. Without --title the page is fetched and its
<title> used; if that fails the URL itself becomes the title.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.openCLI(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			rawURL := strings.TrimSpace(args[0])
			if title == "" && !noFetch {
				title = fetchTitle(cmd.Context(), rawURL)
			}
			if strings.TrimSpace(title) == "" {
				title = rawURL
			}

			b, err := sess.svc.Create(service.BookmarkInput{
				Title:       title,
				URL:         rawURL,
				Description: description,
				Tags:        tags,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", b.Title, b.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "bookmark title (default: the page's <title>)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "bookmark description")
	cmd.Flags().StringSliceVar(&tags, "tags", []string{}, "comma-separated tags")
	cmd.Flags().BoolVar(&noFetch, "no-fetch", false, "don't fetch the page to find a title")
	return cmd
}

// fetchTitle returns the <title> of the page at rawURL, or "" on any failure.
func fetchTitle(ctx context.Context, rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, fetchTitleTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return ""
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

func (a *app) newEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id|query>",
		Short: "Edit a bookmark in a form",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.openCLI(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			b, ok, err := pickBookmark(sess.svc, strings.Join(args, " "))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "No matching bookmark")
				return nil
			}

			ed := editor.New()
			if err := ed.BeginEdit(b); err != nil {
				return err
			}

			err = huh.NewForm(huh.NewGroup(
				huh.NewInput().Title("Title").Value(&ed.Draft.Title),
				huh.NewInput().Title("URL").Value(&ed.Draft.URL),
				huh.NewText().Title("Description").Value(&ed.Draft.Description),
				huh.NewInput().Title("Tags (comma-separated)").Value(&ed.Draft.Tags),
			)).Run()
			if err != nil {
				if errors.Is(err, huh.ErrUserAborted) {
					return nil
				}
				return err
			}

			updated, err := ed.Submit(sess.svc)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", updated.Title)
			return nil
		},
	}
}

// pickBookmark resolves an exact ID, else fuzzy searches titles and asks the
// user to pick when more than one matches.
func pickBookmark(svc *service.BookmarkService, query string) (model.Bookmark, bool, error) {
	if b, err := svc.Get(query); err == nil {
		return b, true, nil
	}

	matches := search.Bookmarks(search.FuzzySearchBookmarks(svc.List(), query))
	switch len(matches) {
	case 0:
		return model.Bookmark{}, false, nil
	case 1:
		return matches[0], true, nil
	}

	picked := 0
	options := make([]huh.Option[int], len(matches))
	for i, b := range matches {
		options[i] = huh.NewOption(b.Title, i)
	}
	err := huh.NewSelect[int]().Title("Pick a bookmark").Options(options...).Value(&picked).Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return model.Bookmark{}, false, nil
		}
		return model.Bookmark{}, false, err
	}
	return matches[picked], true, nil
}

func (a *app) newRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>...",
		Aliases: []string{"delete"},
		Short:   "Delete bookmarks by ID",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.openCLI(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			var errs []error
			for _, id := range args {
				if err := sess.svc.Delete(id); err != nil {
					errs = append(errs, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
			}
			return errors.Join(errs...)
		},
	}
}

func (a *app) newLsCmd() *cobra.Command {
	var (
		asJSON bool
		tag    string
	)

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List bookmarks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.openCLI(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			bookmarks := sess.svc.List()
			if tag != "" {
				filtered := []model.Bookmark{}
				for _, b := range bookmarks {
					if b.HasTag(tag) {
						filtered = append(filtered, b)
					}
				}
				bookmarks = filtered
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(bookmarks)
			}

			if len(bookmarks) == 0 {
				fmt.Fprintln(out, "No bookmarks")
				return nil
			}
			fmt.Fprintln(out, bookmarkTable(bookmarks))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print bookmarks as JSON")
	cmd.Flags().StringVar(&tag, "tag", "", "only list bookmarks with this tag")
	return cmd
}

func bookmarkTable(bookmarks []model.Bookmark) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "Title", "URL", "Tags")
	for _, b := range bookmarks {
		t.Row(b.ID, b.Title, b.URL, editor.FormatTags(b.Tags))
	}
	return t.Render()
}
