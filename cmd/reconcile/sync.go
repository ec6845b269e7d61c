package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/jithinio/brillo-sub004/internal/app"
	"github.com/jithinio/brillo-sub004/internal/usecase"
	"github.com/spf13/cobra"
)

var (
	syncUserID   string
	syncProvider string
	syncRecovery bool
	syncAllPaid  bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull subscription state from the provider and reconcile profiles",
	Long: `Sync one user (--user) or every profile on a paid plan (--all-paid).

--all-paid always runs in recovery mode: profiles whose provider reports no
qualifying subscription are downgraded to the free plan.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if syncAllPaid == (syncUserID != "") {
			return errors.New("exactly one of --user or --all-paid is required")
		}
		name, err := parseProviderFlag(syncProvider)
		if err != nil {
			return err
		}
		if syncUserID != "" {
			if _, err := uuid.Parse(syncUserID); err != nil {
				return fmt.Errorf("invalid --user: %w", err)
			}
		}

		return withApp(func(ctx context.Context, a *app.App) error {
			if syncAllPaid {
				outcomes, err := a.Sync.RecoverAllPaid(ctx)
				if err != nil {
					return err
				}
				return printRecoverySummary(cmd.OutOrStdout(), outcomes)
			}

			resp, err := a.Sync.Sync(ctx, usecase.SyncRequest{
				UserID:   syncUserID,
				Recovery: syncRecovery,
				Provider: name,
			})
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), resp)
		})
	},
}

func init() {
	syncCmd.Flags().StringVar(&syncUserID, "user", "", "user (profile) ID to sync")
	syncCmd.Flags().StringVar(&syncProvider, "provider", "", "billing provider: stripe or polar (default from config)")
	syncCmd.Flags().BoolVar(&syncRecovery, "recovery", false, "downgrade when no qualifying subscription is found")
	syncCmd.Flags().BoolVar(&syncAllPaid, "all-paid", false, "recover every profile on a paid plan")
}

// printRecoverySummary writes one line per user and returns an error when
// any user failed, so the process exits non-zero.
func printRecoverySummary(w io.Writer, outcomes []usecase.RecoveryOutcome) error {
	counts := make(map[string]int)
	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
			fmt.Fprintf(w, "%s\terror\t%v\n", o.UserID, o.Err)
			continue
		}
		counts[string(o.Response.Outcome)]++
		fmt.Fprintf(w, "%s\t%s\t%s\n", o.UserID, o.Response.Outcome, o.Response.Message)
	}

	fmt.Fprintf(w, "\nprocessed=%d updated=%d preserved=%d downgraded=%d failed=%d\n",
		len(outcomes), counts["updated"], counts["preserved"], counts["downgraded"], failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d users failed to sync", failed, len(outcomes))
	}
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

