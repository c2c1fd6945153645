package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mnemo-app/mnemo/internal/search"
)

func newSearchCommand(a *app) *cobra.Command {
	var (
		deckName string
		tag      string
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "search <query>...",
		Short: "Search note content",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			ix := search.New(a.store, a.cfg.Search)

			filter := search.Filter{Tag: tag, Limit: limit}
			if deckName != "" {
				d, err := a.store.DeckByName(deckName)
				if err != nil {
					return err
				}
				filter.DeckID = d.ID
			}

			results := ix.Search(strings.Join(args, " "), filter)
			if len(results) == 0 {
				fmt.Fprintln(out, "no matches")
				return nil
			}
			for _, r := range results {
				fmt.Fprintf(out, "%5d  %s\n", r.Score, ix.Preview(r.NoteID, 80))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&deckName, "deck", "", "restrict to a deck and its children")
	cmd.Flags().StringVar(&tag, "tag", "", "restrict to notes carrying this tag")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of results")
	return cmd
}
