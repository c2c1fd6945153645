package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mnemo-app/mnemo/internal/importer"
)

func newImportCommand(a *app) *cobra.Command {
	var fresh bool

	cmd := &cobra.Command{
		Use:   "import <package>",
		Short: "Import a deck package into the collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			media := &importer.DirMediaStore{Dir: a.cfg.Storage.MediaDir}
			imp := importer.New(a.store, media, a.log, a.cfg.Importer)

			opts := importer.Options{
				Mode: importer.ModeWithProgress,
				OnProgress: func(p importer.Progress) {
					fmt.Fprintf(out, "\r%-6s %d/%d", p.Phase, p.Done, p.Total)
				},
			}
			if fresh {
				opts.Mode = importer.ModeFresh
			}

			res, err := imp.Import(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(out)

			green := color.New(color.FgGreen)
			green.Fprintf(out, "imported %d notes and %d cards into %d decks (%d media files)\n",
				res.Notes, res.Cards, res.Decks, res.Media)

			yellow := color.New(color.FgYellow)
			for _, w := range res.Warnings {
				yellow.Fprintf(out, "skipped %s: %s\n", w.Kind, w.Detail)
			}
			return a.saveCollection()
		},
	}
	cmd.Flags().BoolVar(&fresh, "fresh", false, "discard the package's review progress")
	return cmd
}
