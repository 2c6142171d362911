package transfer

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestReconciler(t *testing.T) {
	amount := decimal.RequireFromString("100.00")

	t.Run("matching currencies pass through", func(t *testing.T) {
		r := NewReconciler(decimal.NewFromFloat(1.1))
		credit, note := r.Reconcile("EUR", "EUR", amount)
		assert.True(t, credit.Equal(amount), "credit %s", credit)
		assert.Empty(t, note)
	})

	t.Run("currency match is case-insensitive", func(t *testing.T) {
		r := NewReconciler(decimal.NewFromFloat(1.1))
		credit, note := r.Reconcile("usd", "USD", amount)
		assert.True(t, credit.Equal(amount), "credit %s", credit)
		assert.Empty(t, note)
	})

	t.Run("differing currencies apply the factor", func(t *testing.T) {
		r := NewReconciler(decimal.NewFromFloat(1.1))
		credit, note := r.Reconcile("USD", "EUR", amount)
		assert.True(t, credit.Equal(decimal.RequireFromString("110.00")), "credit %s", credit)
		assert.Equal(t, "Amount converted from USD to EUR", note)
	})

	t.Run("credit is rounded to cents", func(t *testing.T) {
		r := NewReconciler(decimal.NewFromFloat(1.015))
		credit, _ := r.Reconcile("USD", "EUR", decimal.RequireFromString("33.33"))
		assert.True(t, credit.Equal(decimal.RequireFromString("33.83")), "credit %s", credit)
	})

	t.Run("non-positive factor falls back to identity", func(t *testing.T) {
		r := NewReconciler(decimal.Zero)
		credit, _ := r.Reconcile("USD", "EUR", amount)
		assert.True(t, credit.Equal(amount), "credit %s", credit)
	})
}
