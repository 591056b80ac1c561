package cashflow

// MonthBalance names a month together with its running balance, used for the
// minimum/maximum markers in an Analysis.
type MonthBalance struct {
	Month   string  `json:"month"`
	Balance float64 `json:"balance"`
}

// Analysis summarizes a full projection.
type Analysis struct {
	TotalNetCashFlow      float64      `json:"totalNetCashFlow"`
	AverageNonSummerNet   float64      `json:"averageNonSummerNet"`
	SummerNetCashFlow     float64      `json:"summerNetCashFlow"`
	LowestBalanceMonth    MonthBalance `json:"lowestBalanceMonth"`
	HighestBalanceMonth   MonthBalance `json:"highestBalanceMonth"`
	NegativeNetMonths     int          `json:"negativeNetMonths"`
	NegativeBalanceMonths int          `json:"negativeBalanceMonths"`
}

// Analyze computes summary statistics over a projection in simulation order.
// When several months share the minimum (or maximum) balance, the first one
// encountered wins.
func Analyze(projection []MonthProjection) Analysis {
	var a Analysis
	if len(projection) == 0 {
		return a
	}

	a.LowestBalanceMonth = MonthBalance{Month: projection[0].Month, Balance: projection[0].RunningBalance}
	a.HighestBalanceMonth = a.LowestBalanceMonth

	var nonSummerNet float64
	var nonSummerMonths int

	for _, mp := range projection {
		a.TotalNetCashFlow += mp.NetCashFlow
		if mp.IsSummerMonth {
			a.SummerNetCashFlow += mp.NetCashFlow
		} else {
			nonSummerNet += mp.NetCashFlow
			nonSummerMonths++
		}
		if mp.NetCashFlow < 0 {
			a.NegativeNetMonths++
		}
		if mp.RunningBalance < 0 {
			a.NegativeBalanceMonths++
		}
		if mp.RunningBalance < a.LowestBalanceMonth.Balance {
			a.LowestBalanceMonth = MonthBalance{Month: mp.Month, Balance: mp.RunningBalance}
		}
		if mp.RunningBalance > a.HighestBalanceMonth.Balance {
			a.HighestBalanceMonth = MonthBalance{Month: mp.Month, Balance: mp.RunningBalance}
		}
	}

	if nonSummerMonths > 0 {
		a.AverageNonSummerNet = nonSummerNet / float64(nonSummerMonths)
	}
	return a
}
