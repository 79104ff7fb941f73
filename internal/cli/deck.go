package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/vytor/flashstudy/internal/models"
)

func (a *app) deckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deck",
		Short: "Manage decks",
	}
	cmd.AddCommand(a.deckAddCmd(), a.deckListCmd(), a.deckShowCmd(), a.deckEditCmd(), a.deckDeleteCmd())
	return cmd
}

func (a *app) deckAddCmd() *cobra.Command {
	var (
		description string
		cardsPerDay int
		ease        int
	)
	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Create a deck",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.svc.AddDeck(cmd.Context(), models.NewDeck{
				Name:        args[0],
				Description: description,
				CardsPerDay: cardsPerDay,
				DefaultEase: ease,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "✅ Deck %q created (%s)\n", d.Name, d.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "deck description")
	cmd.Flags().IntVar(&cardsPerDay, "cards-per-day", 0, "cards to study per day (default 20)")
	cmd.Flags().IntVar(&ease, "ease", 0, "default ease 1-5 for new cards (default 3)")
	return cmd
}

func (a *app) deckListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List decks with card and due counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			decks := a.svc.ListDecks(cmd.Context())
			if len(decks) == 0 {
				fmt.Fprintln(out(cmd), "No decks yet. Create one with: flashstudy deck add NAME")
				return nil
			}
			tw := tabwriter.NewWriter(out(cmd), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tCARDS\tDUE\tPER DAY")
			for _, d := range decks {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\n", d.ID, d.Name, d.CardCount, d.DueToday, d.CardsPerDay)
			}
			return tw.Flush()
		},
	}
}

func (a *app) deckShowCmd() *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show a deck and its flashcards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, err := a.svc.GetDeck(ctx, args[0])
			if err != nil {
				return err
			}
			cards, err := a.svc.SearchFlashcards(ctx, d.ID, search)
			if err != nil {
				return err
			}

			w := out(cmd)
			fmt.Fprintf(w, "📚 %s\n", d.Name)
			if d.Description != "" {
				fmt.Fprintln(w, d.Description)
			}
			fmt.Fprintf(w, "Created %s, %d cards per day, default ease %d\n\n",
				d.CreatedAt.Format("2006-01-02"), d.CardsPerDay, d.DefaultEase)
			return printCards(w, cards)
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "only cards whose front or back contains this text")
	return cmd
}

func (a *app) deckEditCmd() *cobra.Command {
	var (
		name        string
		description string
		cardsPerDay int
		ease        int
	)
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change a deck's fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var update models.DeckUpdate
			f := cmd.Flags()
			if f.Changed("name") {
				update.Name = &name
			}
			if f.Changed("description") {
				update.Description = &description
			}
			if f.Changed("cards-per-day") {
				update.CardsPerDay = &cardsPerDay
			}
			if f.Changed("ease") {
				update.DefaultEase = &ease
			}
			d, err := a.svc.UpdateDeck(cmd.Context(), args[0], update)
			if err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "✅ Deck %q updated\n", d.Name)
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "new name")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new description")
	cmd.Flags().IntVar(&cardsPerDay, "cards-per-day", 0, "cards to study per day")
	cmd.Flags().IntVar(&ease, "ease", 0, "default ease 1-5 for new cards")
	return cmd
}

func (a *app) deckDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a deck and all of its flashcards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := a.svc.DeleteDeck(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "🗑️  Deck deleted along with %d flashcards\n", removed)
			return nil
		},
	}
}
