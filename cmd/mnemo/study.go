package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mnemo-app/mnemo/internal/cloze"
	"github.com/mnemo-app/mnemo/internal/domain"
	"github.com/mnemo-app/mnemo/internal/scheduler"
	"github.com/mnemo-app/mnemo/internal/search"
)

func newStudyCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "study <deck>",
		Short: "Study the cards due in a deck",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			in := bufio.NewReader(cmd.InOrStdin())

			d, err := a.store.DeckByName(args[0])
			if err != nil {
				return err
			}
			eng := scheduler.New(a.store, a.cfg.Scheduler)
			sess, err := eng.NewSession(d.ID)
			if err != nil {
				return err
			}

			answered := 0
			for {
				c := sess.Next()
				if c == nil {
					break
				}
				question, answer, err := a.renderCard(c)
				if err != nil {
					return err
				}

				fmt.Fprintf(out, "\n%s\n", question)
				fmt.Fprint(out, "press enter to reveal ")
				if _, err := in.ReadString('\n'); err != nil {
					break
				}
				color.New(color.FgCyan).Fprintf(out, "%s\n", answer)

				rating, ok := promptRating(in, out)
				if !ok {
					break
				}
				res, err := sess.Answer(c.ID, rating)
				if err != nil {
					return err
				}
				answered++
				if res.Leech {
					color.New(color.FgYellow).Fprintln(out, "this card keeps lapsing; consider rewording or suspending it")
				}
			}

			newLeft, reviewsLeft := sess.Remaining()
			fmt.Fprintf(out, "\nanswered %d cards (%d new, %d reviews still available today)\n",
				answered, newLeft, reviewsLeft)
			return a.saveCollection()
		},
	}
}

// renderCard builds the question and answer text for a card. Cloze
// cards mask their own index on the question side and reveal everything
// on the answer side; standard cards show the first field, then the
// rest.
func (a *app) renderCard(c *domain.Card) (question, answer string, err error) {
	n, err := a.store.Note(c.NoteID)
	if err != nil {
		return "", "", err
	}
	m, err := a.store.Model(n.ModelID)
	if err != nil {
		return "", "", err
	}

	fields := n.Fields()
	if m.IsCloze() {
		text := fields[0]
		question = search.Plain(maskedFor(text, c.Ord+1))
		answer = search.Plain(cloze.Resolve(text))
		return question, answer, nil
	}

	question = search.Plain(fields[0])
	if len(fields) > 1 {
		answer = search.Plain(strings.Join(fields[1:], " / "))
	} else {
		answer = question
	}
	return question, answer, nil
}

// maskedFor returns the text with the given cloze index hidden.
func maskedFor(text string, index int) string {
	for _, p := range cloze.Previews(text) {
		if p.Index == index {
			return p.Text
		}
	}
	return text
}

func promptRating(in *bufio.Reader, out io.Writer) (scheduler.Rating, bool) {
	for {
		fmt.Fprint(out, "[1] again  [2] hard  [3] good  [4] easy  [q] quit: ")
		line, err := in.ReadString('\n')
		if err != nil {
			return 0, false
		}
		switch strings.TrimSpace(line) {
		case "1":
			return scheduler.Again, true
		case "2":
			return scheduler.Hard, true
		case "3":
			return scheduler.Good, true
		case "4":
			return scheduler.Easy, true
		case "q", "quit":
			return 0, false
		}
	}
}
