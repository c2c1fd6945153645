package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mnemo-app/mnemo/internal/domain"
	"github.com/mnemo-app/mnemo/internal/scheduler"
)

func newDecksCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "decks",
		Short: "List decks with due counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			eng := scheduler.New(a.store, a.cfg.Scheduler)
			now := time.Now()
			today := eng.Today(now)

			for _, d := range a.store.Decks() {
				var newCount, learnCount, dueCount int
				for _, c := range a.store.CardsInDeck(d.ID) {
					switch c.Queue {
					case domain.QueueNew:
						newCount++
					case domain.QueueLearning, domain.QueueRelearning:
						if c.Due <= now.Unix() {
							learnCount++
						}
					case domain.QueueReview:
						if c.Due <= today {
							dueCount++
						}
					}
				}

				depth := strings.Count(d.Name, domain.DeckSeparator)
				name := d.Name
				if idx := strings.LastIndex(name, domain.DeckSeparator); idx >= 0 {
					name = name[idx+len(domain.DeckSeparator):]
				}
				fmt.Fprintf(out, "%s%-30s new %4d  learn %4d  due %4d\n",
					strings.Repeat("  ", depth), name, newCount, learnCount, dueCount)
			}
			return nil
		},
	}
}
