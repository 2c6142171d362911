package transfer

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Reconciler decides the amount credited to the receiver when sender and
// receiver currencies differ. The sender is always debited the original
// requested amount; the conversion delta lands on the credit side.
//
// The rate is a fixed multiplicative factor standing in for a real rate
// source; production deployments would inject one per currency pair.
type Reconciler struct {
	factor decimal.Decimal
}

// NewReconciler creates a reconciler with the given conversion factor.
// A non-positive factor falls back to identity.
func NewReconciler(factor decimal.Decimal) *Reconciler {
	if !factor.IsPositive() {
		factor = decimal.NewFromInt(1)
	}
	return &Reconciler{factor: factor}
}

// Reconcile returns the amount to credit and a human-readable note.
// Matching currencies (case-insensitive) pass the amount through unchanged
// with an empty note.
func (r *Reconciler) Reconcile(senderCurrency, receiverCurrency string, amount decimal.Decimal) (decimal.Decimal, string) {
	if strings.EqualFold(senderCurrency, receiverCurrency) {
		return amount, ""
	}
	credit := amount.Mul(r.factor).Round(2)
	note := fmt.Sprintf("Amount converted from %s to %s", senderCurrency, receiverCurrency)
	return credit, note
}
