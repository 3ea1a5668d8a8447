package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"replay/internal/api"
	"replay/internal/geo"
	"replay/internal/keypool"
	"replay/internal/logging"
	"replay/internal/store"
	"replay/internal/youtube"
)

func newHighlightCommand(ctx *commandContext) *cobra.Command {
	highlightCmd := &cobra.Command{
		Use:   "highlight",
		Short: "Inspect or override match highlights",
	}
	highlightCmd.AddCommand(newHighlightShowCommand(ctx))
	highlightCmd.AddCommand(newHighlightSetCommand(ctx))
	highlightCmd.AddCommand(newHighlightAvailableCommand(ctx))
	return highlightCmd
}

func parseMatchID(value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid match id %q", value)
	}
	return id, nil
}

// parseVideoID accepts a bare id or a watch / youtu.be / shorts URL.
func parseVideoID(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", errors.New("video id required")
	}
	if !strings.Contains(value, "/") {
		return value, nil
	}
	u, err := url.Parse(value)
	if err != nil {
		return "", fmt.Errorf("invalid video url %q", value)
	}
	if id := u.Query().Get("v"); id != "" {
		return id, nil
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if last := segments[len(segments)-1]; last != "" && last != "watch" {
		return last, nil
	}
	return "", fmt.Errorf("no video id in %q", value)
}

func newHighlightShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "show <match-id>",
		Short: "Show the highlight stored for a match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseMatchID(args[0])
			if err != nil {
				return err
			}
			return ctx.withRepository(cmd.Context(), func(repo store.Repository) error {
				m, state, h, err := loadMatch(cmd.Context(), repo, id)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, api.MatchHighlight{Match: api.FromMatch(m, state), Highlight: api.FromHighlight(h, "")})
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Match:      %s vs %s (%s)\n", m.HomeTeam, m.AwayTeam, m.Competition)
				fmt.Fprintf(out, "Status:     %s, %d attempt(s), terminal: %s\n", m.Status, state.Attempts, yesNo(state.Terminal))
				if h == nil {
					fmt.Fprintln(out, "Highlight:  none")
					return nil
				}
				fmt.Fprintf(out, "Highlight:  %s\n", h.Title)
				fmt.Fprintf(out, "URL:        %s\n", h.URL())
				fmt.Fprintf(out, "Channel:    %s\n", h.ChannelTitle)
				fmt.Fprintf(out, "Source:     %s\n", h.Source)
				if len(h.BlockedRegions) > 0 {
					fmt.Fprintf(out, "Blocked in: %s\n", strings.Join(h.BlockedRegions, ", "))
				}
				if len(h.AllowedRegions) > 0 {
					fmt.Fprintf(out, "Only in:    %s\n", strings.Join(h.AllowedRegions, ", "))
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print as JSON")
	return cmd
}

func newHighlightSetCommand(ctx *commandContext) *cobra.Command {
	var (
		title   string
		channel string
		enrich  bool
	)
	cmd := &cobra.Command{
		Use:   "set <match-id> <video-id-or-url>",
		Short: "Manually set or replace the highlight of a match",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseMatchID(args[0])
			if err != nil {
				return err
			}
			videoID, err := parseVideoID(args[1])
			if err != nil {
				return err
			}
			return ctx.withRepository(cmd.Context(), func(repo store.Repository) error {
				m, err := repo.GetMatch(cmd.Context(), id)
				if err != nil {
					return err
				}
				h := &store.Highlight{
					MatchID:      id,
					VideoID:      videoID,
					Title:        firstNonEmpty(title, fmt.Sprintf("%s vs %s | Highlights", m.HomeTeam, m.AwayTeam)),
					ChannelTitle: strings.TrimSpace(channel),
					Source:       store.SourceManual,
				}
				if enrich {
					if err := ctx.enrichHighlight(cmd.Context(), h); err != nil {
						return err
					}
				}
				if err := repo.ReplaceHighlight(cmd.Context(), h); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Highlight for match %d set to %s\n", id, h.URL())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Video title")
	cmd.Flags().StringVar(&channel, "channel", "", "Channel title")
	cmd.Flags().BoolVar(&enrich, "enrich", false, "Fetch view count, duration, and region restrictions from the Data API")
	return cmd
}

// enrichHighlight fills optional fields from the Data API.
func (c *commandContext) enrichHighlight(ctx context.Context, h *store.Highlight) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	if err := cfg.RequireAPIKeys(); err != nil {
		return err
	}
	client, err := c.newYouTubeClient(nil)
	if err != nil {
		return err
	}
	pool := keypool.New(cfg.YouTube.APIKeys)
	for {
		key, err := pool.Current()
		if err != nil {
			return fmt.Errorf("enrich %s: %w", h.VideoID, err)
		}
		details, err := client.VideoDetails(ctx, key, []string{h.VideoID})
		if youtube.IsQuotaError(err) {
			if rotateErr := pool.Rotate(); rotateErr != nil {
				return fmt.Errorf("enrich %s: %w", h.VideoID, rotateErr)
			}
			continue
		}
		if err != nil {
			return fmt.Errorf("enrich %s: %w", h.VideoID, err)
		}
		d, ok := details[h.VideoID]
		if !ok {
			return fmt.Errorf("video %s not found", h.VideoID)
		}
		h.ViewCount = d.ViewCount
		h.Duration = d.Duration
		h.BlockedRegions = d.BlockedRegions
		h.AllowedRegions = d.AllowedRegions
		return nil
	}
}

func newHighlightAvailableCommand(ctx *commandContext) *cobra.Command {
	var (
		region string
		ip     string
	)
	cmd := &cobra.Command{
		Use:   "available <match-id>",
		Short: "Check whether a match highlight can be watched from a region",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseMatchID(args[0])
			if err != nil {
				return err
			}
			if region == "" && ip != "" {
				locator, err := ctx.newLocator(cmd.Context())
				if err != nil {
					return err
				}
				region = locator.Country(cmd.Context(), ip)
			}
			region = geo.NormalizeRegion(region)
			return ctx.withRepository(cmd.Context(), func(repo store.Repository) error {
				h, err := repo.GetHighlight(cmd.Context(), id)
				if err != nil {
					return err
				}
				label := region
				if label == "" {
					label = "unknown region"
				}
				if geo.Available(region, h.BlockedRegions, h.AllowedRegions) {
					fmt.Fprintf(cmd.OutOrStdout(), "Available in %s: %s\n", label, h.URL())
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Blocked in %s: %s\n", label, h.URL())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&region, "region", "", "Two-letter region code")
	cmd.Flags().StringVar(&ip, "ip", "", "Viewer IP address to locate when --region is not set")
	return cmd
}

func loadMatch(ctx context.Context, repo store.Repository, id int64) (*store.Match, store.FetchState, *store.Highlight, error) {
	m, err := repo.GetMatch(ctx, id)
	if err != nil {
		return nil, store.FetchState{}, nil, err
	}
	state, err := repo.GetFetchState(ctx, id)
	if err != nil {
		return nil, store.FetchState{}, nil, err
	}
	h, err := repo.GetHighlight(ctx, id)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, store.FetchState{}, nil, err
	}
	return m, state, h, nil
}

func (c *commandContext) newLocator(ctx context.Context) (*geo.Locator, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	lookups, err := c.newCache(ctx, "replay-geo")
	if err != nil {
		return nil, err
	}
	return geo.NewLocator(cfg.Geo.LookupURL, cfg.GeoTimeout(),
		geo.WithCache(lookups),
		geo.WithLogger(logging.NewComponentLogger(logger, "geo")),
	)
}
