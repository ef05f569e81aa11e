package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/freelancekenya/kazi/internal/api"
	"github.com/freelancekenya/kazi/internal/wallet"
)

func newWalletCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wallet",
		Short: "Wallet balances and withdrawals",
	}

	cmd.AddCommand(newWalletShowCommand())
	cmd.AddCommand(newWalletWithdrawCommand())
	cmd.AddCommand(newWalletHistoryCommand())

	return cmd
}

func newWalletShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show wallet balances and recent transactions",
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
				return fmt.Errorf("failed to fetch wallet: %w", err)
			}

			transactions, err := ctx.Backend.WalletTransactions(reqCtx, userID)
			if err != nil {
				return fmt.Errorf("failed to fetch transactions: %w", err)
			}

			var md strings.Builder
			md.WriteString("# Wallet\n\n")
			fmt.Fprintf(&md, "| Wallet | Balance |\n|---|---|\n")
			fmt.Fprintf(&md, "| Earnings | KSh %.2f |\n", overview.EarningsWallet)
			fmt.Fprintf(&md, "| Referral | KSh %.2f |\n\n", overview.ReferralWallet)

			if len(transactions) > 0 {
				md.WriteString("## Recent transactions\n\n")
				fmt.Fprintf(&md, "| Date | Type | Wallet | Amount | Description |\n|---|---|---|---|---|\n")
				max := len(transactions)
				if max > 15 {
					max = 15
				}
				for _, tx := range transactions[:max] {
					fmt.Fprintf(&md, "| %s | %s | %s | KSh %.2f | %s |\n",
						tx.CreatedAt, tx.TransactionType, tx.WalletType, tx.Amount, tx.Description)
				}
			}

			return printMarkdown(ctx.Config, md.String())
		},
	}
}

func newWalletWithdrawCommand() *cobra.Command {
	var (
		from   string
		amount float64
	)

	cmd := &cobra.Command{
		Use:   "withdraw",
		Short: "Request a withdrawal",
		Long: `Request a withdrawal from the earnings or referral wallet.

Earnings withdrawals are limited to one every 30 days; referral
withdrawals require at least KSh 100.

Examples:
  kazi wallet withdraw --from earnings --amount 2500
  kazi wallet withdraw --from referral --amount 150`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := getCliContext(cmd)

			userID, err := ctx.UserID()
			if err != nil {
				return err
			}

			walletType := api.WalletType(from)
			if walletType != api.WalletEarnings && walletType != api.WalletReferral {
				return fmt.Errorf("unknown wallet %q: must be earnings or referral", from)
			}

			reqCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			// Check the withdrawal rules locally for a clear error before
			// the request round trip
			overview, err := ctx.Backend.GetOverview(reqCtx, userID)
			if err != nil {
				return fmt.Errorf("failed to fetch wallet: %w", err)
			}
			if err := wallet.CheckWithdrawal(overview, walletType, amount, time.Now()); err != nil {
				return err
			}

			resp, err := ctx.Backend.RequestWithdrawal(reqCtx, api.WithdrawalRequest{
				UserID:     userID,
				Amount:     amount,
				WalletType: walletType,
			})
			if err != nil {
				return fmt.Errorf("withdrawal failed: %w", err)
			}

			if resp.Message != "" {
				fmt.Println(resp.Message)
			} else {
				fmt.Printf("✓ Withdrawal of KSh %.2f requested\n", amount)
			}
			if resp.RequestID != "" {
				fmt.Printf("  Request ID: %s\n", resp.RequestID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "earnings", "Wallet to withdraw from (earnings, referral)")
	cmd.Flags().Float64Var(&amount, "amount", 0, "Amount in KSh")
	cmd.MarkFlagRequired("amount")

	return cmd
}

func newWalletHistoryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List past withdrawal requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := getCliContext(cmd)

			userID, err := ctx.UserID()
			if err != nil {
				return err
			}

			reqCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			withdrawals, err := ctx.Backend.WithdrawalHistory(reqCtx, userID)
			if err != nil {
				return fmt.Errorf("failed to fetch withdrawals: %w", err)
			}

			if len(withdrawals) == 0 {
				fmt.Println("No withdrawals yet.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "REQUESTED\tWALLET\tAMOUNT\tSTATUS")
			for _, wd := range withdrawals {
				status := wd.Status
				if wd.RejectionReason != "" {
					status = fmt.Sprintf("%s (%s)", wd.Status, wd.RejectionReason)
				}
				fmt.Fprintf(w, "%s\t%s\tKSh %.2f\t%s\n",
					wd.RequestedAt, wd.WalletType, wd.Amount, status)
			}
			w.Flush()

			return nil
		},
	}
}
