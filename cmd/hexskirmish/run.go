package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/milk9111/hexskirmish/scenario"
)

var errNeedsDriver = errors.New("the prompt draw policy needs an interactive driver (viewer or serve)")

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Play the scenario's script for a number of rounds",
	Long: `Plays the configured scenario without a window. Each round the monster
script queues its turns and the queue is resolved. Play stops early once only
one team is left standing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rounds, _ := cmd.Flags().GetInt("rounds")
		asJSON, _ := cmd.Flags().GetBool("json")

		g, err := cfg.Open(logger)
		if err != nil {
			return err
		}
		if g.Prompt != nil {
			return errNeedsDriver
		}
		if g.Producer == nil {
			return fmt.Errorf("scenario %s has no script", cfg.Scenario)
		}

		out := cmd.OutOrStdout()
		printed := 0
		for range rounds {
			if _, err := g.Producer.PlayRound(cmd.Context(), g.Session); err != nil {
				return err
			}
			snap := g.Session.Snapshot()
			if !asJSON {
				printed = printRound(out, snap, printed)
			}
			if teams := snap.LivingTeams(); len(teams) <= 1 {
				logger.Info("scenario decided", zap.Strings("standing", teams), zap.Int("round", snap.Round))
				break
			}
		}

		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(g.Session.Snapshot())
		}
		return nil
	},
}

// printRound writes the commands resolved since the last call, oldest first,
// followed by each figure's health. It returns the new history length.
func printRound(w io.Writer, snap scenario.Snapshot, printed int) int {
	fmt.Fprintf(w, "round %d\n", snap.Round)
	fresh := snap.History[:len(snap.History)-printed]
	for i := len(fresh) - 1; i >= 0; i-- {
		fmt.Fprintf(w, "  %s\n", fresh[i].Text)
	}
	for _, f := range snap.Figures {
		fmt.Fprintf(w, "  %-12s %-7s hp %2d/%-2d (%d,%d)\n", f.Name, f.Team, f.Health, f.MaxHealth, f.Q, f.R)
	}
	return len(snap.History)
}

func init() {
	runCmd.Flags().Int("rounds", 5, "number of rounds to play")
	runCmd.Flags().Bool("json", false, "print the final snapshot as JSON instead of a log")
	rootCmd.AddCommand(runCmd)
}
