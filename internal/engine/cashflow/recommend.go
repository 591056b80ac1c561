package cashflow

type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
)

// Recommendation is one advisory line derived from the analysis. This is a
// fixed rule table evaluated in order, not a scored optimizer.
type Recommendation struct {
	Priority Priority `json:"priority"`
	Issue    string   `json:"issue"`
	Action   string   `json:"action"`
	Impact   string   `json:"impact"`
}

// Recommend runs the ordered, independent threshold checks over a projection
// and its analysis.
func Recommend(projection []MonthProjection, a Analysis, th Thresholds) []Recommendation {
	recs := make([]Recommendation, 0)

	for _, mp := range projection {
		if mp.IsSummerMonth && mp.RunningBalance < th.LowBalanceAlert {
			recs = append(recs, Recommendation{
				Priority: PriorityCritical,
				Issue:    "Summer cash gap",
				Action:   "Build a summer reserve during the school year or move to 12-month tuition collection",
				Impact:   "Prevents running out of cash during the months with no tuition revenue",
			})
			break
		}
	}

	if a.NegativeNetMonths > th.MaxNegativeNetMonths {
		recs = append(recs, Recommendation{
			Priority: PriorityHigh,
			Issue:    "Recurring monthly deficits",
			Action:   "Adjust tuition pricing or reduce monthly expenses",
			Impact:   "Stops the balance eroding month over month outside the summer gap",
		})
	}

	if a.LowestBalanceMonth.Balance >= 0 && a.LowestBalanceMonth.Balance < th.CriticalBelow {
		recs = append(recs, Recommendation{
			Priority: PriorityMedium,
			Issue:    "Thin cash cushion",
			Action:   "Target a larger operating reserve before taking on new fixed costs",
			Impact:   "Keeps the lowest point of the year above the critical threshold",
		})
	}

	return recs
}
