package cli

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/vytor/flashstudy/internal/flashcard"
	"github.com/vytor/flashstudy/internal/models"
)

func (a *app) dueCmd() *cobra.Command {
	var deckID string
	cmd := &cobra.Command{
		Use:   "due",
		Short: "List flashcards due today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cards, err := a.svc.DueFlashcards(cmd.Context(), deckID)
			if err != nil {
				return err
			}
			if len(cards) == 0 {
				fmt.Fprintln(out(cmd), "🎉 No cards to review today!")
				return nil
			}
			fmt.Fprintf(out(cmd), "📚 %d cards due\n", len(cards))
			return printCards(out(cmd), cards)
		},
	}
	cmd.Flags().StringVar(&deckID, "deck", "", "only cards of this deck")
	return cmd
}

func (a *app) reviewCmd() *cobra.Command {
	var deckID string
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Review the flashcards due today",
		Long: `Review the flashcards due today, one at a time.

Press Enter to reveal the answer, then grade how well you remembered it:
  1 didn't know   2 hard   3 good   4 easy   5 very easy

Other inputs: s skips the card, d YYYY-MM-DD reschedules it, q quits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := &reviewer{
				app: a,
				in:  bufio.NewReader(cmd.InOrStdin()),
				out: out(cmd),
			}
			return r.run(cmd.Context(), deckID)
		},
	}
	cmd.Flags().StringVar(&deckID, "deck", "", "only review cards of this deck")
	return cmd
}

type reviewer struct {
	app *app
	in  *bufio.Reader
	out io.Writer
}

var errQuit = stderrors.New("quit")

func (r *reviewer) run(ctx context.Context, deckID string) error {
	view, err := r.app.svc.StartSession(ctx, deckID)
	if err != nil {
		return err
	}
	for {
		switch view.State {
		case models.SessionIdle:
			fmt.Fprintln(r.out, "🎉 No cards to review today!")
			return nil
		case models.SessionFinished:
			r.printSummary(view.Summary)
			line, err := r.prompt("Press r to review again, or Enter to quit: ")
			if err != nil || !strings.EqualFold(line, "r") {
				return ignoreQuit(err)
			}
			if view, err = r.app.svc.Restart(ctx, deckID); err != nil {
				return err
			}
		default:
			if view, err = r.step(ctx, view); err != nil {
				return ignoreQuit(err)
			}
		}
	}
}

// step handles one prompt for the card in view.
func (r *reviewer) step(ctx context.Context, view models.SessionView) (models.SessionView, error) {
	svc := r.app.svc
	card := view.Current
	if card == nil {
		fmt.Fprintln(r.out, "⚠️  This card no longer exists, skipping.")
		return svc.Advance(ctx)
	}

	if !view.ShowAnswer {
		fmt.Fprintf(r.out, "\n[%d/%d] %s\n", view.Index+1, view.Total, card.Front)
		line, err := r.prompt("Press Enter to show the answer (s skip, q quit): ")
		if err != nil {
			return view, err
		}
		switch strings.ToLower(line) {
		case "":
			return svc.Flip(ctx)
		case "s":
			return svc.Advance(ctx)
		case "q":
			return view, errQuit
		default:
			fmt.Fprintln(r.out, "❌ Unknown input.")
			return view, nil
		}
	}

	fmt.Fprintf(r.out, "Answer: %s\n", card.Back)
	line, err := r.prompt("Grade 1-5 (d YYYY-MM-DD reschedule, s skip, q quit): ")
	if err != nil {
		return view, err
	}
	in, err := parseReviewInput(line, r.app.loc)
	if err != nil {
		fmt.Fprintf(r.out, "❌ %v\n", err)
		return view, nil
	}
	switch in.action {
	case actionGrade:
		return svc.Rate(ctx, card.ID, in.grade)
	case actionReschedule:
		next, err := svc.SetCustomReviewDate(ctx, card.ID, in.date)
		if err == nil {
			fmt.Fprintf(r.out, "📅 Next review on %s\n", in.date.Format("2006-01-02"))
		}
		return next, err
	case actionSkip:
		return svc.Advance(ctx)
	default:
		return view, errQuit
	}
}

func (r *reviewer) prompt(msg string) (string, error) {
	fmt.Fprint(r.out, msg)
	line, err := r.in.ReadString('\n')
	if err != nil {
		if stderrors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if stderrors.Is(err, io.EOF) {
			fmt.Fprintln(r.out)
			return "", errQuit
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (r *reviewer) printSummary(sum *models.SessionSummary) {
	fmt.Fprintln(r.out, "\n✅ Session complete!")
	if sum == nil {
		return
	}
	fmt.Fprintf(r.out, "Cards reviewed: %d\n", sum.Processed)
	fmt.Fprintf(r.out, "Correct:        %d\n", sum.Correct)
	fmt.Fprintf(r.out, "Accuracy:       %.0f%%\n", sum.Accuracy)
}

func ignoreQuit(err error) error {
	if stderrors.Is(err, errQuit) {
		return nil
	}
	return err
}

type reviewAction int

const (
	actionGrade reviewAction = iota
	actionReschedule
	actionSkip
	actionQuit
)

type reviewInput struct {
	action reviewAction
	grade  int
	date   time.Time
}

// parseReviewInput reads a line typed with the answer showing. Dates are
// calendar days in loc.
func parseReviewInput(line string, loc *time.Location) (reviewInput, error) {
	line = strings.TrimSpace(line)
	switch strings.ToLower(line) {
	case "s":
		return reviewInput{action: actionSkip}, nil
	case "q":
		return reviewInput{action: actionQuit}, nil
	}

	if rest, ok := strings.CutPrefix(line, "d "); ok {
		date, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(rest), loc)
		if err != nil {
			return reviewInput{}, fmt.Errorf("date must look like 2024-03-15")
		}
		return reviewInput{action: actionReschedule, date: date}, nil
	}

	g, err := strconv.Atoi(line)
	if err != nil || !flashcard.Grade(g).Valid() {
		return reviewInput{}, fmt.Errorf("enter a grade from 1 to 5")
	}
	return reviewInput{action: actionGrade, grade: g}, nil
}
