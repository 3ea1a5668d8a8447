package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"replay/internal/escalation"
	"replay/internal/fetcher"
	"replay/internal/logging"
	"replay/internal/notifications"
	"replay/internal/store"
)

func newFetchCommand(ctx *commandContext) *cobra.Command {
	var (
		dateFlag string
		passFlag string
		notify   bool
		jsonOut  bool
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Search highlights for the finished matches of a day",
		Long: `Search highlights for the finished matches of a day.

--pass selects the scheduled run: "today" retries today's matches,
"yesterday-morning" and "yesterday-afternoon" cover yesterday. The afternoon
pass escalates matches that are still missing. --date overrides the day.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.RequireAPIKeys(); err != nil {
				return err
			}
			pass, err := fetcher.ParsePass(passFlag)
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			runCtx := cmd.Context()
			details, err := ctx.newRunCache()
			if err != nil {
				return err
			}
			defer func() {
				hits, misses := details.Stats()
				logger.Debug("video details cache",
					logging.Int64("hits", hits),
					logging.Int64("misses", misses),
				)
			}()
			client, err := ctx.newYouTubeClient(details)
			if err != nil {
				return err
			}
			searcher, err := ctx.newSearcher(client)
			if err != nil {
				return err
			}
			policy, err := ctx.newPolicy()
			if err != nil {
				return err
			}
			notifier, err := ctx.newNotifier(runCtx)
			if err != nil {
				return err
			}

			return ctx.withRepository(runCtx, func(repo store.Repository) error {
				orch, err := fetcher.New(repo, searcher, cfg.YouTube.APIKeys, fetcher.Options{
					MaxAttempts: cfg.Fetch.MaxAttempts,
					LockPath:    cfg.LockPath(),
					Selector:    policy,
					Notifier:    notifier,
				}, logger)
				if err != nil {
					return err
				}

				var report *fetcher.Report
				if strings.TrimSpace(dateFlag) != "" {
					day, err := parseDay(dateFlag, time.Now())
					if err != nil {
						return err
					}
					report, err = orch.Run(runCtx, day)
					if err != nil {
						return fetchError(err)
					}
					report.Pass = pass
				} else {
					report, err = orch.RunPass(runCtx, pass)
					if err != nil {
						return fetchError(err)
					}
				}

				var escalated *escalation.Result
				if pass.Escalates() || notify {
					escalated, err = escalate(runCtx, ctx, repo, notifier, report.Day)
					if err != nil {
						return err
					}
				}

				if jsonOut {
					return writeJSON(cmd, fetchOutput{Report: report, Escalated: escalated})
				}
				printReport(cmd.OutOrStdout(), report, escalated)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&dateFlag, "date", "", "Day to fetch (YYYY-MM-DD, today, yesterday)")
	cmd.Flags().StringVar(&passFlag, "pass", string(fetcher.PassToday), "Scheduled pass: "+fetcher.PassNames())
	cmd.Flags().BoolVar(&notify, "notify", false, "Escalate unresolved matches after the run")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the report as JSON")
	return cmd
}

type fetchOutput struct {
	Report    *fetcher.Report    `json:"report"`
	Escalated *escalation.Result `json:"escalated,omitempty"`
}

func fetchError(err error) error {
	if errors.Is(err, fetcher.ErrRunInProgress) {
		return fmt.Errorf("%w; wait for it to finish or remove a stale lock file", err)
	}
	return fmt.Errorf("fetch: %w", err)
}

func escalate(runCtx context.Context, ctx *commandContext, repo store.Repository, notifier notifications.Service, dayKey string) (*escalation.Result, error) {
	logger, err := ctx.ensureLogger()
	if err != nil {
		return nil, err
	}
	policy, err := ctx.newPolicy()
	if err != nil {
		return nil, err
	}
	day, err := time.Parse(time.DateOnly, dayKey)
	if err != nil {
		return nil, err
	}
	esc, err := escalation.New(repo, notifier, policy, logger)
	if err != nil {
		return nil, err
	}
	result, err := esc.Run(runCtx, day)
	if err != nil {
		logging.WarnWithContext(logger, "escalation failed", "escalation_failed", logging.Error(err))
		if result == nil {
			return nil, err
		}
	}
	return result, nil
}

func printReport(out io.Writer, report *fetcher.Report, escalated *escalation.Result) {
	colorize := shouldColorize(out)
	kind := statusOK
	switch {
	case report.Aborted:
		kind = statusError
	case report.Missing() > 0:
		kind = statusWarn
	}
	fmt.Fprintln(out, renderStatusLine("Fetch", kind, report.Summary(), colorize))
	if report.Aborted {
		fmt.Fprintln(out, renderStatusLine("Quota", statusError,
			"all API keys exhausted; this is not an empty result", colorize))
	}
	if escalated == nil {
		return
	}
	message := "nothing to escalate"
	escKind := statusOK
	if n := len(escalated.Missing); n > 0 {
		message = fmt.Sprintf("%d match(es) still missing, notified: %s", n, yesNo(escalated.Notified))
		escKind = statusWarn
	}
	fmt.Fprintln(out, renderStatusLine("Escalation", escKind, message, colorize))
}
