package cashflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecommendSummerCashGap(t *testing.T) {
	projection := []MonthProjection{
		{Month: "June", RunningBalance: 3000, IsSummerMonth: true},
		{Month: "July", RunningBalance: 1000, IsSummerMonth: true},
	}
	recs := Recommend(projection, Analyze(projection), DefaultThresholds())

	require.NotEmpty(t, recs)
	assert.Equal(t, PriorityCritical, recs[0].Priority)
	assert.Equal(t, "Summer cash gap", recs[0].Issue)

	// One recommendation even when both summer months are short.
	summerRecs := 0
	for _, r := range recs {
		if r.Issue == "Summer cash gap" {
			summerRecs++
		}
	}
	assert.Equal(t, 1, summerRecs)
}

func TestRecommendRecurringDeficits(t *testing.T) {
	projection := []MonthProjection{
		{Month: "January", NetCashFlow: -100, RunningBalance: 90000},
		{Month: "February", NetCashFlow: -100, RunningBalance: 89900},
		{Month: "March", NetCashFlow: -100, RunningBalance: 89800},
	}
	recs := Recommend(projection, Analyze(projection), DefaultThresholds())

	require.Len(t, recs, 1)
	assert.Equal(t, PriorityHigh, recs[0].Priority)
	assert.Equal(t, "Recurring monthly deficits", recs[0].Issue)
}

func TestRecommendWithinTolerance(t *testing.T) {
	// Two negative months are tolerated by the default thresholds.
	projection := []MonthProjection{
		{Month: "January", NetCashFlow: -100, RunningBalance: 90000},
		{Month: "February", NetCashFlow: -100, RunningBalance: 89900},
		{Month: "March", NetCashFlow: 500, RunningBalance: 90400},
	}
	recs := Recommend(projection, Analyze(projection), DefaultThresholds())
	assert.Empty(t, recs)
}

func TestRecommendThinCushion(t *testing.T) {
	projection := []MonthProjection{
		{Month: "January", NetCashFlow: 100, RunningBalance: 8000},
		{Month: "February", NetCashFlow: 100, RunningBalance: 8100},
	}
	recs := Recommend(projection, Analyze(projection), DefaultThresholds())

	require.Len(t, recs, 1)
	assert.Equal(t, PriorityMedium, recs[0].Priority)
	assert.Equal(t, "Thin cash cushion", recs[0].Issue)
}

func TestRecommendThinCushionNotForDeficit(t *testing.T) {
	// A negative low point is the deficit story, not the thin-cushion one.
	projection := []MonthProjection{
		{Month: "January", NetCashFlow: -100, RunningBalance: -100},
	}
	recs := Recommend(projection, Analyze(projection), DefaultThresholds())
	for _, r := range recs {
		assert.NotEqual(t, "Thin cash cushion", r.Issue)
	}
}

func TestRecommendHealthyYearIsQuiet(t *testing.T) {
	projection := []MonthProjection{
		{Month: "January", NetCashFlow: 2000, RunningBalance: 60000},
		{Month: "February", NetCashFlow: 2000, RunningBalance: 62000},
	}
	recs := Recommend(projection, Analyze(projection), DefaultThresholds())
	assert.Empty(t, recs)
}
