package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-propmarket/models"
)

func TestMarginFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		price  float64
		margin float64
	}{
		{name: "low band", price: 10000, margin: 500},
		{name: "low band upper boundary", price: 50000, margin: 2500},
		{name: "just above low band uses 10%", price: 50000.01, margin: 5000.001},
		{name: "mid band", price: 300000, margin: 30000},
		{name: "mid band upper boundary", price: 500000, margin: 50000},
		{name: "high band", price: 1200000, margin: 144000},
		{name: "high band upper boundary", price: 2000000, margin: 240000},
		{name: "top band", price: 3000000, margin: 450000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			margin, err := MarginFor(tt.price)
			require.NoError(t, err)
			assert.InDelta(t, tt.margin, margin, 1e-6)
		})
	}
}

func TestMarginForRejectsNonPositivePrice(t *testing.T) {
	t.Parallel()

	for _, price := range []float64{0, -5} {
		_, err := MarginFor(price)
		assert.ErrorIs(t, err, models.ErrInvalidPrice)
	}
}

func TestMarginForTotalExceedsPrice(t *testing.T) {
	t.Parallel()

	for _, price := range []float64{1, 49999.99, 50000, 50001, 2000001} {
		margin, err := MarginFor(price)
		require.NoError(t, err)
		assert.Greater(t, margin, 0.0)
		assert.Greater(t, price+margin, price)
	}
}
