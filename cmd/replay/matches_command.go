package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"replay/internal/store"
)

func newMatchesCommand(ctx *commandContext) *cobra.Command {
	matchesCmd := &cobra.Command{
		Use:   "matches",
		Short: "Manage fixtures",
	}
	matchesCmd.AddCommand(newMatchesImportCommand(ctx))
	return matchesCmd
}

// fixtureRecord is one fixture of a scores provider export.
type fixtureRecord struct {
	ExternalID  string `json:"external_id"`
	EventID     string `json:"espn_event_id"`
	HomeTeam    string `json:"home_team"`
	AwayTeam    string `json:"away_team"`
	Competition string `json:"competition"`
	League      string `json:"league_name"`
	Kickoff     string `json:"kickoff"`
	MatchDate   string `json:"match_date"`
	MatchTime   string `json:"match_time"`
	Status      string `json:"status"`
	HomeScore   *int   `json:"home_score"`
	AwayScore   *int   `json:"away_score"`
}

func (r fixtureRecord) toMatch() (*store.Match, error) {
	id := firstNonEmpty(r.ExternalID, r.EventID)
	if id == "" {
		return nil, fmt.Errorf("fixture %s vs %s: missing external_id", r.HomeTeam, r.AwayTeam)
	}
	kickoff, err := r.kickoff()
	if err != nil {
		return nil, fmt.Errorf("fixture %s: %w", id, err)
	}
	status, ok := store.ParseStatus(r.Status)
	if !ok {
		return nil, fmt.Errorf("fixture %s: unknown status %q", id, r.Status)
	}
	return &store.Match{
		ExternalID:  id,
		HomeTeam:    r.HomeTeam,
		AwayTeam:    r.AwayTeam,
		Competition: firstNonEmpty(r.Competition, r.League),
		MatchDate:   kickoff,
		Status:      status,
		HomeScore:   r.HomeScore,
		AwayScore:   r.AwayScore,
	}, nil
}

func (r fixtureRecord) kickoff() (time.Time, error) {
	if value := strings.TrimSpace(r.Kickoff); value != "" {
		t, err := time.Parse(time.RFC3339, value)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid kickoff %q", value)
		}
		return t.UTC(), nil
	}
	date := strings.TrimSpace(r.MatchDate)
	if date == "" {
		return time.Time{}, fmt.Errorf("missing kickoff")
	}
	clock := strings.TrimSpace(r.MatchTime)
	if clock == "" {
		clock = "00:00"
	}
	t, err := time.Parse("2006-01-02 15:04", date+" "+clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid match_date/match_time %q %q", date, clock)
	}
	return t, nil
}

func newMatchesImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json>",
		Short: "Import fixtures from a JSON export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read fixtures: %w", err)
			}
			var records []fixtureRecord
			if err := json.Unmarshal(data, &records); err != nil {
				return fmt.Errorf("decode fixtures: %w", err)
			}
			matches := make([]*store.Match, 0, len(records))
			for _, record := range records {
				m, err := record.toMatch()
				if err != nil {
					return err
				}
				matches = append(matches, m)
			}
			return ctx.withRepository(cmd.Context(), func(repo store.Repository) error {
				var finished int
				for _, m := range matches {
					stored, err := repo.UpsertMatch(cmd.Context(), m)
					if err != nil {
						return err
					}
					if stored.Finished() {
						finished++
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d match(es) (%d finished)\n", len(matches), finished)
				return nil
			})
		},
	}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			return value
		}
	}
	return ""
}
