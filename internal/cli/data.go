package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func (a *app) exportCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all study data to a JSON file",
		Long: `Write all study data to a JSON file. The default name is
flashcard-data-YYYY-MM-DD.json in the current directory; use -o - for stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, data, err := a.svc.Export(cmd.Context())
			if err != nil {
				return err
			}
			if output == "-" {
				_, err := out(cmd).Write(data)
				return err
			}
			if output != "" {
				name = output
			}
			if err := os.WriteFile(name, data, 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Fprintf(out(cmd), "📦 Exported to %s\n", name)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path")
	return cmd
}

func (a *app) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Replace all study data with an exported file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read import: %w", err)
			}
			if err := a.svc.Import(cmd.Context(), data); err != nil {
				return err
			}
			n := len(a.svc.ListDecks(cmd.Context()))
			fmt.Fprintf(out(cmd), "✅ Imported %s (%d decks)\n", args[0], n)
			return nil
		},
	}
}

func (a *app) resetCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all decks, flashcards and statistics",
		Long:  "Delete all decks, flashcards and statistics. Settings are kept.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("reset deletes all study data; run again with --yes to confirm")
			}
			if err := a.svc.ResetProgress(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(out(cmd), "🧹 All study data deleted")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return cmd
}
