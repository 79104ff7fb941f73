package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/vytor/flashstudy/internal/models"
)

func (a *app) statsCmd() *cobra.Command {
	var (
		deckID string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show study statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := a.svc.Overview(cmd.Context(), deckID)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(out(cmd))
				enc.SetIndent("", "  ")
				return enc.Encode(o)
			}
			printOverview(out(cmd), o)
			return nil
		},
	}
	cmd.Flags().StringVar(&deckID, "deck", "", "only count cards of this deck")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the overview as JSON")
	return cmd
}

func printOverview(w io.Writer, o models.StatsOverview) {
	fmt.Fprintf(w, "🔥 Streak:            %d days\n", o.StreakDays)
	fmt.Fprintf(w, "Reviewed today:       %d\n", o.HistoryReviewedToday)
	fmt.Fprintf(w, "Total reviews:        %d\n", o.TotalReviewed)
	fmt.Fprintf(w, "Retention:            %.0f%%\n", o.RetentionRate)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Cards:                %d (%d new, %d known, %d still learning)\n",
		o.TotalCards, o.NewCards, o.KnownCards, o.UnknownCards)
	fmt.Fprintf(w, "Due today:            %d (about %s)\n", o.DueToday, o.EstimatedStudyTime)

	fmt.Fprintln(w, "\nEase distribution:")
	for i, n := range o.EaseDistribution {
		fmt.Fprintf(w, "  %d  %s %d\n", i+1, bar(n), n)
	}

	if len(o.History) > 0 {
		fmt.Fprintln(w, "\nReviews per day:")
		for _, d := range o.History {
			fmt.Fprintf(w, "  %s  %s %d\n", d.Date, bar(d.Reviewed), d.Reviewed)
		}
	}

	printCardList(w, "Most difficult", o.MostDifficult)
	printCardList(w, "Recently missed", o.RecentlyMissed)

	if len(o.Decks) > 0 {
		fmt.Fprintln(w, "\nDecks:")
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, d := range o.Decks {
			fmt.Fprintf(tw, "  %s\t%d cards\t%d due\n", d.Name, d.CardCount, d.DueToday)
		}
		_ = tw.Flush()
	}
}

func printCardList(w io.Writer, title string, cards []models.Flashcard) {
	if len(cards) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s:\n", title)
	for _, c := range cards {
		fmt.Fprintf(w, "  [%d] %s\n", c.Ease, truncate(c.Front, 60))
	}
}

func bar(n int) string {
	const maxWidth = 30
	if n > maxWidth {
		n = maxWidth
	}
	return strings.Repeat("█", n)
}
