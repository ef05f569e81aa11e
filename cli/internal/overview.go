package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newOverviewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "overview",
		Short: "Show your dashboard overview",
		Long:  `Show account status, wallet balances, and job activity at a glance.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := getCliContext(cmd)

			userID, err := ctx.UserID()
			if err != nil {
				return err
			}

			reqCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			overview, err := ctx.Backend.GetOverview(reqCtx, userID)
			if err != nil {
				return fmt.Errorf("failed to fetch overview: %w", err)
			}

			var md strings.Builder
			fmt.Fprintf(&md, "# Overview for %s\n\n", ctx.Session.Profile.Email)

			if overview.IsActivated {
				md.WriteString("Account status: **activated**\n\n")
			} else {
				md.WriteString("Account status: **not activated** (pay the activation fee in the web client)\n\n")
			}

			md.WriteString("## Wallets\n\n")
			fmt.Fprintf(&md, "| Wallet | Balance |\n|---|---|\n")
			fmt.Fprintf(&md, "| Earnings | KSh %.2f |\n", overview.EarningsWallet)
			fmt.Fprintf(&md, "| Referral | KSh %.2f |\n", overview.ReferralWallet)
			fmt.Fprintf(&md, "| Total | KSh %.2f |\n\n", overview.WalletBalance)

			md.WriteString("## Activity\n\n")
			fmt.Fprintf(&md, "- Completed jobs: %d\n", overview.TotalCompletedJobs)
			fmt.Fprintf(&md, "- Assigned jobs: %d\n", overview.AssignedJobs)
			fmt.Fprintf(&md, "- Pending applications: %d\n", overview.PendingApplications)
			fmt.Fprintf(&md, "- Unread messages: %d\n", overview.UnreadMessages)
			if overview.TotalReviews > 0 {
				fmt.Fprintf(&md, "- Rating: %.1f (%d reviews)\n", overview.Rating, overview.TotalReviews)
			}

			return printMarkdown(ctx.Config, md.String())
		},
	}
}
