// cmd/matchctl/budget.go
package main

import (
	"github.com/spf13/cobra"

	"matchmaking-workers/internal/budget"
	"matchmaking-workers/internal/common/config"
	"matchmaking-workers/internal/common/database"
)

func newBudgetCmd(opts *rootOptions) *cobra.Command {
	var redisAddr string

	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Inspect or reset a couple's search budget in Redis",
	}
	cmd.PersistentFlags().StringVar(&redisAddr, "redis", "", "redis address (overrides the config file)")

	withTracker := func(run func(cmd *cobra.Command, tracker *budget.Tracker, userID, category string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if redisAddr != "" {
				cfg.Database.Redis.Address = redisAddr
			}
			tracker, closeFn, err := newTracker(cfg)
			if err != nil {
				return err
			}
			defer closeFn()
			return run(cmd, tracker, args[0], args[1])
		}
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status <userId> <category>",
		Short: "Print the budget status",
		Args:  cobra.ExactArgs(2),
		RunE: withTracker(func(cmd *cobra.Command, tracker *budget.Tracker, userID, category string) error {
			status, err := tracker.Status(cmd.Context(), userID, category)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), status)
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset <userId> <category>",
		Short: "Clear both the shown set and the search count",
		Args:  cobra.ExactArgs(2),
		RunE: withTracker(func(cmd *cobra.Command, tracker *budget.Tracker, userID, category string) error {
			if err := tracker.Reset(cmd.Context(), userID, category); err != nil {
				return err
			}
			cmd.Printf("budget reset: %s/%s\n", userID, category)
			return nil
		}),
	})

	return cmd
}

func newTracker(cfg *config.Config) (*budget.Tracker, func(), error) {
	rdb, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		return nil, nil, err
	}
	store := budget.NewRedisLimitStore(rdb.Client,
		budget.WithKeyPrefix(cfg.Budget.KeyPrefix),
		budget.WithMaxRetries(cfg.Budget.LockRetries),
		budget.WithRecordTTL(cfg.Budget.RecordTTL()),
	)
	tracker := budget.NewTracker(store, budget.Policy{
		ShowLimit:   cfg.Budget.ShowLimit,
		Window:      cfg.Budget.Window(),
		MaxSearches: cfg.Budget.MaxSearches,
	})
	return tracker, func() { _ = rdb.Close() }, nil
}
