package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jithinio/brillo-sub004/internal/app"
	"github.com/spf13/cobra"
)

var (
	customerUserID   string
	customerProvider string
)

var customerCmd = &cobra.Command{
	Use:   "customer",
	Short: "Find or create the provider customer for a user and link it to the profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := uuid.Parse(customerUserID); err != nil {
			return fmt.Errorf("invalid --user: %w", err)
		}
		name, err := parseProviderFlag(customerProvider)
		if err != nil {
			return err
		}

		return withApp(func(ctx context.Context, a *app.App) error {
			customer, err := a.Sync.EnsureCustomer(ctx, customerUserID, name)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), customer)
		})
	},
}

func init() {
	customerCmd.Flags().StringVar(&customerUserID, "user", "", "user (profile) ID")
	customerCmd.Flags().StringVar(&customerProvider, "provider", "", "billing provider: stripe or polar (default from config)")
	_ = customerCmd.MarkFlagRequired("user")
}
