package wallet

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/freelancekenya/kazi/internal/api"
)

var now = time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

func overview(earnings, referral float64, lastWithdrawal time.Time) *api.Overview {
	o := &api.Overview{EarningsWallet: earnings, ReferralWallet: referral}
	if !lastWithdrawal.IsZero() {
		o.LastEarningsWithdrawal = lastWithdrawal.Format(time.RFC3339)
	}
	return o
}

func TestCheckWithdrawalEarnings(t *testing.T) {
	cases := []struct {
		name           string
		amount         float64
		earnings       float64
		lastWithdrawal time.Time
		wantErr        string
	}{
		{"first withdrawal allowed", 500, 1000, time.Time{}, ""},
		{"full balance allowed", 1000, 1000, time.Time{}, ""},
		{"zero amount rejected", 0, 1000, time.Time{}, "greater than zero"},
		{"negative amount rejected", -5, 1000, time.Time{}, "greater than zero"},
		{"over balance rejected", 1500, 1000, time.Time{}, "exceeds balance"},
		{"withdrawal 10 days ago rejected", 500, 1000, now.Add(-10 * 24 * time.Hour), "per 30 days"},
		{"withdrawal 29 days ago rejected", 500, 1000, now.Add(-29 * 24 * time.Hour), "per 30 days"},
		{"withdrawal exactly 30 days ago allowed", 500, 1000, now.Add(-30 * 24 * time.Hour), ""},
		{"withdrawal 31 days ago allowed", 500, 1000, now.Add(-31 * 24 * time.Hour), ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckWithdrawal(overview(tc.earnings, 0, tc.lastWithdrawal), api.WalletEarnings, tc.amount, now)
			checkRuleError(t, err, tc.wantErr, api.WalletEarnings)
		})
	}
}

func TestCheckWithdrawalReferral(t *testing.T) {
	cases := []struct {
		name     string
		amount   float64
		referral float64
		wantErr  string
	}{
		{"minimum allowed", 100, 500, ""},
		{"above minimum allowed", 250, 500, ""},
		{"below minimum rejected", 99.99, 500, "minimum referral withdrawal"},
		{"over balance rejected", 600, 500, "exceeds balance"},
		{"zero rejected", 0, 500, "greater than zero"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckWithdrawal(overview(0, tc.referral, time.Time{}), api.WalletReferral, tc.amount, now)
			checkRuleError(t, err, tc.wantErr, api.WalletReferral)
		})
	}
}

func TestCheckWithdrawalNoCooldownOnReferral(t *testing.T) {
	// A recent earnings withdrawal must not block the referral wallet
	o := overview(1000, 500, now.Add(-5*24*time.Hour))
	if err := CheckWithdrawal(o, api.WalletReferral, 200, now); err != nil {
		t.Errorf("referral withdrawal blocked by earnings cooldown: %v", err)
	}
}

func TestCheckWithdrawalUnknownWallet(t *testing.T) {
	err := CheckWithdrawal(overview(1000, 500, time.Time{}), api.WalletType("savings"), 100, now)
	checkRuleError(t, err, "unknown wallet type", api.WalletType("savings"))
}

func checkRuleError(t *testing.T, err error, want string, wallet api.WalletType) {
	t.Helper()
	if want == "" {
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		return
	}
	if err == nil {
		t.Fatalf("expected error containing %q, got nil", want)
	}
	var re *RuleError
	if !errors.As(err, &re) {
		t.Fatalf("error %v is not a *RuleError", err)
	}
	if re.Wallet != wallet {
		t.Errorf("RuleError wallet = %q, want %q", re.Wallet, wallet)
	}
	if !strings.Contains(err.Error(), want) {
		t.Errorf("error %q does not contain %q", err.Error(), want)
	}
}
