package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/thruflo/turing/internal/history"
	"github.com/thruflo/turing/internal/render"
)

var (
	historyReplay bool
	historySpeed  int
	historyDelete bool
)

var historyCmd = &cobra.Command{
	Use:   "history [id]",
	Short: "List saved runs or show one",
	Long: `Without arguments, lists runs saved with 'turing run --save', newest
first. With an ID, prints that run's trace.

Example:
  turing history
  turing history 6f1c0e7e-3c1a-4c52-9f57-5d9f0b0c2d11 --replay
  turing history 6f1c0e7e-3c1a-4c52-9f57-5d9f0b0c2d11 --delete`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().BoolVar(&historyReplay, "replay", false, "animate the run instead of printing the trace")
	historyCmd.Flags().IntVar(&historySpeed, "speed", 300, "milliseconds per frame with --replay")
	historyCmd.Flags().BoolVar(&historyDelete, "delete", false, "delete the run")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	dir, err := baseDir()
	if err != nil {
		return err
	}
	store := history.NewStore(dir)
	out := cmd.OutOrStdout()

	if len(args) == 0 {
		if historyDelete || historyReplay {
			return errors.New("--delete and --replay need a run ID")
		}
		return listRuns(out, store)
	}

	id := args[0]
	if historyDelete {
		if err := store.Delete(id); err != nil {
			return err
		}
		fmt.Fprintf(out, "Deleted run %s.\n", id)
		return nil
	}

	rec, err := store.Get(id)
	if err != nil {
		return err
	}
	resp, err := store.Trace(id)
	if err != nil {
		return err
	}

	if historyReplay {
		return render.Replay(commandContext(cmd), out, resp, time.Duration(historySpeed)*time.Millisecond)
	}

	fmt.Fprintf(out, "Run %s\n", rec.ID)
	fmt.Fprintf(out, "  %-8s %s\n", "Created:", rec.CreatedAt.Local().Format(time.DateTime))
	fmt.Fprintf(out, "  %-8s %d + %d = %d\n\n", "Sum:", rec.A, rec.B, rec.Sum)
	return render.Trace(out, resp)
}

func listRuns(out io.Writer, store *history.Store) error {
	records, err := store.List()
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(records) == 0 {
		fmt.Fprintln(out, "No saved runs.")
		return nil
	}

	idWidth := len("ID")
	for _, r := range records {
		if len(r.ID) > idWidth {
			idWidth = len(r.ID)
		}
	}
	const createdWidth = len(time.DateTime)

	fmt.Fprintf(out, "%-*s  %-*s  %-9s  %5s  %5s\n", idWidth, "ID", createdWidth, "CREATED", "A + B", "SUM", "STEPS")
	fmt.Fprintf(out, "%s  %s  %s  %s  %s\n",
		strings.Repeat("-", idWidth), strings.Repeat("-", createdWidth), "---------", "-----", "-----")
	for _, r := range records {
		fmt.Fprintf(out, "%-*s  %-*s  %-9s  %5d  %5d\n",
			idWidth, r.ID, createdWidth, r.CreatedAt.Local().Format(time.DateTime),
			fmt.Sprintf("%d + %d", r.A, r.B), r.Sum, r.Steps)
	}
	return nil
}
