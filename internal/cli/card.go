package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/vytor/flashstudy/internal/models"
)

func (a *app) cardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "card",
		Short: "Manage flashcards",
	}
	cmd.AddCommand(a.cardAddCmd(), a.cardListCmd(), a.cardShowCmd(), a.cardEditCmd(), a.cardDeleteCmd())
	return cmd
}

func (a *app) cardAddCmd() *cobra.Command {
	var (
		ease int
		tags string
	)
	cmd := &cobra.Command{
		Use:   "add DECK_ID FRONT BACK",
		Short: "Add a flashcard to a deck",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.svc.AddFlashcard(cmd.Context(), models.NewFlashcard{
				DeckID: args[0],
				Front:  args[1],
				Back:   args[2],
				Ease:   ease,
				Tags:   splitTags(tags),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "✅ Flashcard added (%s), first review %s\n", c.ID, c.NextReview.Format("2006-01-02"))
			return nil
		},
	}
	cmd.Flags().IntVar(&ease, "ease", 0, "initial ease 1-5 (default: the deck's default ease)")
	cmd.Flags().StringVarP(&tags, "tags", "t", "", "comma separated tags")
	return cmd
}

func (a *app) cardListCmd() *cobra.Command {
	var (
		deckID string
		search string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List flashcards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cards, err := a.svc.SearchFlashcards(cmd.Context(), deckID, search)
			if err != nil {
				return err
			}
			return printCards(out(cmd), cards)
		},
	}
	cmd.Flags().StringVar(&deckID, "deck", "", "only cards of this deck")
	cmd.Flags().StringVarP(&search, "search", "s", "", "only cards whose front or back contains this text")
	return cmd
}

func (a *app) cardShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show a flashcard and its schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.svc.GetFlashcard(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			w := out(cmd)
			fmt.Fprintf(w, "Front:       %s\n", c.Front)
			fmt.Fprintf(w, "Back:        %s\n", c.Back)
			fmt.Fprintf(w, "Deck:        %s\n", c.DeckID)
			fmt.Fprintf(w, "Ease:        %d\n", c.Ease)
			fmt.Fprintf(w, "Interval:    %d days\n", c.Interval)
			fmt.Fprintf(w, "Next review: %s\n", c.NextReview.Format("2006-01-02"))
			if c.LastReviewed != nil {
				fmt.Fprintf(w, "Reviewed:    %s\n", c.LastReviewed.Format("2006-01-02 15:04"))
			}
			if len(c.Tags) > 0 {
				fmt.Fprintf(w, "Tags:        %s\n", strings.Join(c.Tags, ", "))
			}
			return nil
		},
	}
}

func (a *app) cardEditCmd() *cobra.Command {
	var (
		deckID string
		front  string
		back   string
		ease   int
		tags   string
	)
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change a flashcard's fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var update models.FlashcardUpdate
			f := cmd.Flags()
			if f.Changed("deck") {
				update.DeckID = &deckID
			}
			if f.Changed("front") {
				update.Front = &front
			}
			if f.Changed("back") {
				update.Back = &back
			}
			if f.Changed("ease") {
				update.Ease = &ease
			}
			if f.Changed("tags") {
				t := splitTags(tags)
				update.Tags = &t
			}
			if _, err := a.svc.UpdateFlashcard(cmd.Context(), args[0], update); err != nil {
				return err
			}
			fmt.Fprintln(out(cmd), "✅ Flashcard updated")
			return nil
		},
	}
	cmd.Flags().StringVar(&deckID, "deck", "", "move to this deck")
	cmd.Flags().StringVar(&front, "front", "", "new front")
	cmd.Flags().StringVar(&back, "back", "", "new back")
	cmd.Flags().IntVar(&ease, "ease", 0, "new ease 1-5")
	cmd.Flags().StringVarP(&tags, "tags", "t", "", "replace tags (comma separated, empty clears)")
	return cmd
}

func (a *app) cardDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a flashcard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.svc.DeleteFlashcard(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(out(cmd), "🗑️  Flashcard deleted")
			return nil
		},
	}
}

// splitTags turns "a, b,,c" into [a b c].
func splitTags(s string) []string {
	return models.NormalizeTags(strings.Split(s, ","))
}

func printCards(w io.Writer, cards []models.Flashcard) error {
	if len(cards) == 0 {
		fmt.Fprintln(w, "No flashcards.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFRONT\tEASE\tINTERVAL\tNEXT REVIEW")
	for _, c := range cards {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", c.ID, truncate(c.Front, 40), c.Ease, c.Interval, c.NextReview.Format("2006-01-02"))
	}
	return tw.Flush()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
