package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"replay/internal/api"
	"replay/internal/store"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var (
		dateFlag string
		jsonOut  bool
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show matches, fetch state, and highlights for a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDay(dateFlag, time.Now())
			if err != nil {
				return err
			}
			return ctx.withRepository(cmd.Context(), func(repo store.Repository) error {
				rows, err := repo.ListDay(cmd.Context(), day)
				if err != nil {
					return err
				}
				if jsonOut {
					out := make([]api.MatchHighlight, 0, len(rows))
					for _, row := range rows {
						out = append(out, api.MatchHighlight{
							Match:     api.FromMatch(row.Match, row.State),
							Highlight: api.FromHighlight(row.Highlight, ""),
						})
					}
					return writeJSON(cmd, out)
				}
				w := cmd.OutOrStdout()
				if len(rows) == 0 {
					fmt.Fprintf(w, "No matches on %s\n", store.DayKey(day))
					return nil
				}
				fmt.Fprintln(w, renderTable(
					[]string{"ID", "Kickoff", "Match", "Competition", "Status", "Score", "Attempts", "Outcome", "Highlight"},
					statusRows(rows),
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
				))
				fmt.Fprintln(w, summarizeDay(rows))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&dateFlag, "date", "today", "Day to show (YYYY-MM-DD, today, yesterday)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print as JSON")
	return cmd
}

func statusRows(rows []store.MatchHighlight) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		m := row.Match
		highlight := "-"
		if row.Highlight != nil {
			highlight = row.Highlight.VideoID
			if row.Highlight.Source == store.SourceManual {
				highlight += " (manual)"
			}
		}
		outcome := string(row.State.LastOutcome)
		if outcome == "" {
			outcome = "-"
		}
		out = append(out, []string{
			strconv.FormatInt(m.ID, 10),
			formatKickoff(m.MatchDate),
			m.HomeTeam + " vs " + m.AwayTeam,
			m.Competition,
			string(m.Status),
			formatScore(m.HomeScore, m.AwayScore),
			strconv.Itoa(row.State.Attempts),
			outcome,
			highlight,
		})
	}
	return out
}

func summarizeDay(rows []store.MatchHighlight) string {
	var finished, found int
	for _, row := range rows {
		if row.Match.Finished() {
			finished++
		}
		if row.Highlight != nil {
			found++
		}
	}
	return fmt.Sprintf("%d match(es), %d finished, %d with highlights", len(rows), finished, found)
}
