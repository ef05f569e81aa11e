// Package wallet holds the client-side withdrawal eligibility rules. The
// backend is the authority on every withdrawal; these checks only reject
// requests that would certainly fail, before any network round trip.
package wallet

import (
	"fmt"
	"time"

	"github.com/freelancekenya/kazi/internal/api"
)

// ReferralMinimum is the smallest referral-wallet withdrawal the backend
// accepts, in KSh
const ReferralMinimum = 100

// EarningsCooldown is the rolling window within which only one earnings
// withdrawal is allowed
const EarningsCooldown = 30 * 24 * time.Hour

// RuleError is a withdrawal request rejected before submission
type RuleError struct {
	Wallet api.WalletType
	Reason string
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("%s withdrawal rejected: %s", e.Wallet, e.Reason)
}

// CheckWithdrawal validates a withdrawal request against overview, at time
// now. A nil return means the request may be submitted; the backend still
// applies its own rules.
func CheckWithdrawal(overview *api.Overview, wallet api.WalletType, amount float64, now time.Time) error {
	if amount <= 0 {
		return &RuleError{Wallet: wallet, Reason: "amount must be greater than zero"}
	}

	switch wallet {
	case api.WalletEarnings:
		if amount > overview.EarningsWallet {
			return &RuleError{Wallet: wallet,
				Reason: fmt.Sprintf("amount %.2f exceeds balance %.2f", amount, overview.EarningsWallet)}
		}
		if last := api.ParseTimestamp(overview.LastEarningsWithdrawal); !last.IsZero() {
			if elapsed := now.Sub(last); elapsed < EarningsCooldown {
				next := last.Add(EarningsCooldown)
				return &RuleError{Wallet: wallet,
					Reason: fmt.Sprintf("only one earnings withdrawal per 30 days, next allowed %s",
						next.Format("2 Jan 2006"))}
			}
		}
	case api.WalletReferral:
		if amount < ReferralMinimum {
			return &RuleError{Wallet: wallet,
				Reason: fmt.Sprintf("minimum referral withdrawal is KSh %d", ReferralMinimum)}
		}
		if amount > overview.ReferralWallet {
			return &RuleError{Wallet: wallet,
				Reason: fmt.Sprintf("amount %.2f exceeds balance %.2f", amount, overview.ReferralWallet)}
		}
	default:
		return &RuleError{Wallet: wallet, Reason: "unknown wallet type"}
	}

	return nil
}
