package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/marks/internal/service"
)

func (a *app) newImportCmd() *cobra.Command {
	var skipDuplicates bool

	cmd := &cobra.Command{
		Use:   "import <file.html>",
		Short: "Import bookmarks from an HTML bookmark file",
		Long: `Import every link in an HTML file, typically a browser's bookmarks.html
export. Folder structure is flattened. ADD_DATE, DESCRIPTION and TAGS
attributes are kept when present.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.openCLI(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			if !cmd.Flags().Changed("skip-duplicates") {
				skipDuplicates = sess.cfg.SkipDuplicateImports
			}

			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open import file: %w", err)
			}
			defer file.Close()

			result, err := sess.svc.Import(file, service.ImportOptions{SkipDuplicates: skipDuplicates})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported %d bookmarks", result.Added)
			if result.Skipped > 0 {
				fmt.Fprintf(out, " (%d duplicates skipped)", result.Skipped)
			}
			fmt.Fprintln(out)
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipDuplicates, "skip-duplicates", false, "skip links whose URL is already bookmarked")
	return cmd
}

func (a *app) newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [path]",
		Short: "Export bookmarks to a Netscape bookmarks.html file",
		Long: `Export all bookmarks as a Netscape bookmark file that browsers can import.
Writes to the configured exportPath unless a path is given; "-" writes
to stdout.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.openCLI(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			path := sess.cfg.ExportPath
			if len(args) == 1 {
				path = args[0]
			}

			if path == "-" {
				return sess.svc.Export(cmd.OutOrStdout())
			}
			if err := sess.svc.ExportFile(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d bookmarks to %s\n", sess.svc.Len(), path)
			return nil
		},
	}
}
