package swap

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/SauceFoong/jup-swap-app/internal/apperrors"
)

// Category buckets a failure into one user-facing message. Exactly one
// short message is shown per failure, never a raw stack trace.
type Category string

const (
	CategoryNone              Category = ""
	CategoryCancelled         Category = "cancelled"
	CategoryInsufficientFunds Category = "insufficient_funds"
	CategoryNetwork           Category = "network"
	CategorySlippage          Category = "slippage"
	CategoryStaleRoute        Category = "stale_route"
	CategorySimulation        Category = "simulation"
	CategoryWallet            Category = "wallet"
	CategoryGeneric           Category = "generic"
)

// Classify maps an error from any stage of the pipeline to a category and
// the message the UI should display.
func Classify(err error) (Category, string) {
	if err == nil {
		return CategoryNone, ""
	}

	switch {
	case errors.Is(err, apperrors.ErrPrecondition):
		return CategoryWallet, "Wallet not connected"
	case errors.Is(err, apperrors.ErrExpired):
		return CategoryStaleRoute, "Transaction data is outdated. Please try again."
	case errors.Is(err, apperrors.ErrTransactionFailed):
		return CategorySimulation, "Transaction failed to simulate. Please refresh and try again."
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "user rejected", "user declined", "cancelled", "denied"):
		return CategoryCancelled, "Transaction cancelled by user"
	case containsAny(msg, "insufficient funds", "insufficient balance", "insufficient lamports"):
		return CategoryInsufficientFunds, "Insufficient funds for this transaction"
	case containsAny(msg, "network", "timeout", "connection"):
		return CategoryNetwork, "Network error. Please try again."
	case containsAny(msg, "slippage", "price impact"):
		return CategorySlippage, "Price changed too much. Please try with higher slippage."
	case containsAny(msg, "address table", "lookup table"):
		return CategoryStaleRoute, "Transaction data is outdated. Please try again."
	case containsAny(msg, "simulation failed", "blockhash"):
		return CategorySimulation, "Transaction failed to simulate. Please refresh and try again."
	case strings.Contains(msg, "wallet"):
		return CategoryWallet, "Wallet error. Please try again."
	}
	return CategoryGeneric, "Transaction failed. Please try again."
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
