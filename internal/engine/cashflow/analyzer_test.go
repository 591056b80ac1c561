package cashflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeEmptyProjection(t *testing.T) {
	a := Analyze(nil)
	assert.Equal(t, Analysis{}, a)
}

func TestAnalyzeFullYear(t *testing.T) {
	projection, err := Project("August", 50000, 12, testSchedule(), DefaultThresholds())
	require.NoError(t, err)

	a := Analyze(projection)

	// Ten school months at -1566 plus two summer months at -12666.
	assert.InDelta(t, -40992.0, a.TotalNetCashFlow, 1e-9)
	assert.InDelta(t, -25332.0, a.SummerNetCashFlow, 1e-9)
	assert.InDelta(t, -1566.0, a.AverageNonSummerNet, 1e-9)
	assert.Equal(t, 12, a.NegativeNetMonths)

	// The balance only falls, so the low point is the last month and the
	// high point is the first.
	assert.Equal(t, "July", a.LowestBalanceMonth.Month)
	assert.Equal(t, "August", a.HighestBalanceMonth.Month)
}

func TestAnalyzeTieBreakFirstEncountered(t *testing.T) {
	projection := []MonthProjection{
		{Month: "January", NetCashFlow: 0, RunningBalance: 100},
		{Month: "February", NetCashFlow: 0, RunningBalance: 100},
		{Month: "March", NetCashFlow: 0, RunningBalance: 100},
	}
	a := Analyze(projection)
	assert.Equal(t, "January", a.LowestBalanceMonth.Month)
	assert.Equal(t, "January", a.HighestBalanceMonth.Month)
}

func TestAnalyzeCountsNegativeMonths(t *testing.T) {
	projection := []MonthProjection{
		{Month: "January", NetCashFlow: 500, RunningBalance: 500},
		{Month: "February", NetCashFlow: -200, RunningBalance: 300},
		{Month: "March", NetCashFlow: -400, RunningBalance: -100},
		{Month: "April", NetCashFlow: 50, RunningBalance: -50},
	}
	a := Analyze(projection)
	assert.Equal(t, 2, a.NegativeNetMonths)
	assert.Equal(t, 2, a.NegativeBalanceMonths)
	assert.Equal(t, "March", a.LowestBalanceMonth.Month)
	assert.Equal(t, "January", a.HighestBalanceMonth.Month)
}

func TestAnalyzeSummerSplit(t *testing.T) {
	projection := []MonthProjection{
		{Month: "May", NetCashFlow: 1000, RunningBalance: 10000},
		{Month: "June", NetCashFlow: -5000, RunningBalance: 5000, IsSummerMonth: true},
		{Month: "July", NetCashFlow: -3000, RunningBalance: 2000, IsSummerMonth: true},
		{Month: "August", NetCashFlow: 2000, RunningBalance: 4000},
	}
	a := Analyze(projection)
	assert.Equal(t, -5000.0, a.TotalNetCashFlow)
	assert.Equal(t, -8000.0, a.SummerNetCashFlow)
	assert.Equal(t, 1500.0, a.AverageNonSummerNet)
}
