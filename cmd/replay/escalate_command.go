package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"replay/internal/store"
)

func newEscalateCommand(ctx *commandContext) *cobra.Command {
	var dateFlag string

	cmd := &cobra.Command{
		Use:   "escalate",
		Short: "Notify about finished matches still missing highlights",
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDay(dateFlag, time.Now())
			if err != nil {
				return err
			}
			notifier, err := ctx.newNotifier(cmd.Context())
			if err != nil {
				return err
			}
			return ctx.withRepository(cmd.Context(), func(repo store.Repository) error {
				result, err := escalate(cmd.Context(), ctx, repo, notifier, store.DayKey(day))
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(result.Missing) == 0 {
					fmt.Fprintf(out, "All matches on %s have highlights\n", result.Day)
					return nil
				}
				rows := make([][]string, 0, len(result.Missing))
				for _, m := range result.Missing {
					rows = append(rows, []string{
						fmt.Sprintf("%d", m.MatchID),
						m.Label(),
						m.Competition,
						fmt.Sprintf("%d", m.Attempts),
						yesNo(m.Capped),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Match", "Competition", "Attempts", "Capped"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
				))
				fmt.Fprintf(out, "Notified: %s\n", yesNo(result.Notified))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&dateFlag, "date", "yesterday", "Day to escalate (YYYY-MM-DD, today, yesterday)")
	return cmd
}
