package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/freelancekenya/kazi/internal/api"
	"github.com/freelancekenya/kazi/internal/wallet"
)

// Wallet renders balances, the transaction ledger, and withdrawal history
func (h *Handler) Wallet(w http.ResponseWriter, r *http.Request) {
	data := h.newTemplateData(w, r)
	userID := h.currentUserID()

	overview, err := h.backend.GetOverview(r.Context(), userID)
	if err != nil {
		h.log.Warn("overview fetch failed", slog.String("error", err.Error()))
		data["Alert"] = "Could not load your wallet balances"
	} else {
		data["Overview"] = overview
	}

	transactions, err := h.backend.WalletTransactions(r.Context(), userID)
	if err != nil {
		h.log.Warn("transactions fetch failed", slog.String("error", err.Error()))
	} else {
		data["Transactions"] = transactions
	}

	withdrawals, err := h.backend.WithdrawalHistory(r.Context(), userID)
	if err != nil {
		h.log.Warn("withdrawal history fetch failed", slog.String("error", err.Error()))
	} else {
		data["Withdrawals"] = withdrawals
	}

	h.renderTemplate(w, "wallet.html", data)
}

// Withdraw handles a withdrawal request, applying the client-side
// eligibility rules before contacting the backend
func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	userID := h.currentUserID()

	amount, err := strconv.ParseFloat(r.PostFormValue("amount"), 64)
	if err != nil {
		h.cookies.AddFlash(r, w, "Enter a valid amount")
		http.Redirect(w, r, "/wallet", http.StatusSeeOther)
		return
	}
	walletType := api.WalletType(r.PostFormValue("wallet_type"))

	overview, err := h.backend.GetOverview(r.Context(), userID)
	if err != nil {
		h.log.Warn("overview fetch failed before withdrawal", slog.String("error", err.Error()))
		h.cookies.AddFlash(r, w, "Could not check your balance, please try again")
		http.Redirect(w, r, "/wallet", http.StatusSeeOther)
		return
	}

	if err := wallet.CheckWithdrawal(overview, walletType, amount, time.Now()); err != nil {
		var ruleErr *wallet.RuleError
		if errors.As(err, &ruleErr) {
			h.cookies.AddFlash(r, w, ruleErr.Reason)
		} else {
			h.cookies.AddFlash(r, w, err.Error())
		}
		http.Redirect(w, r, "/wallet", http.StatusSeeOther)
		return
	}

	resp, err := h.backend.RequestWithdrawal(r.Context(), api.WithdrawalRequest{
		UserID:     userID,
		Amount:     amount,
		WalletType: walletType,
	})
	if err != nil {
		h.log.Warn("withdrawal request failed", slog.String("error", err.Error()))
		h.cookies.AddFlash(r, w, backendErrorMessage(err, "Withdrawal request failed"))
	} else {
		h.log.Info("withdrawal requested",
			slog.String("wallet", string(walletType)),
			slog.Float64("amount", amount))
		message := resp.Message
		if message == "" {
			message = "Withdrawal requested"
		}
		h.cookies.AddFlash(r, w, message)
	}
	http.Redirect(w, r, "/wallet", http.StatusSeeOther)
}
