package style

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLiquidityColorThresholds(t *testing.T) {
	p := DefaultPalette()

	assert.Equal(t, p.Success, p.LiquidityColor(LiquidityHighUSD))
	assert.Equal(t, p.Success, p.LiquidityColor(120_000))

	assert.Equal(t, p.Warning, p.LiquidityColor(LiquidityMidUSD))
	assert.Equal(t, p.Warning, p.LiquidityColor(49_999.99))

	assert.Equal(t, p.Error, p.LiquidityColor(9_999.99))
	assert.Equal(t, p.Error, p.LiquidityColor(0))
}
