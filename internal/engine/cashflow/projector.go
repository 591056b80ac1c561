package cashflow

import (
	"microschool-crm/internal/engine"
)

// Thresholds are the balance cutoffs the projector and recommender classify
// against. They are configuration, not constants, so tests can exercise
// boundary behavior precisely.
type Thresholds struct {
	// CriticalBelow and CautionBelow bound the status bands:
	// balance < 0 is deficit, below CriticalBelow is critical, below
	// CautionBelow is caution, anything else is healthy.
	CriticalBelow float64 `json:"criticalBelow"`
	CautionBelow  float64 `json:"cautionBelow"`
	// LowBalanceAlert triggers the low-balance warning and the summer
	// reserve recommendation.
	LowBalanceAlert float64 `json:"lowBalanceAlert"`
	// MaxNegativeNetMonths is how many negative-cash-flow months are
	// tolerated before the pricing recommendation fires.
	MaxNegativeNetMonths int `json:"maxNegativeNetMonths"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		CriticalBelow:        10000,
		CautionBelow:         30000,
		LowBalanceAlert:      5000,
		MaxNegativeNetMonths: 2,
	}
}

type Status string

const (
	StatusDeficit  Status = "deficit"
	StatusCritical Status = "critical"
	StatusCaution  Status = "caution"
	StatusHealthy  Status = "healthy"
)

type AlertSeverity string

const (
	AlertInfo     AlertSeverity = "info"
	AlertWarning  AlertSeverity = "warning"
	AlertCritical AlertSeverity = "critical"
)

type Alert struct {
	Severity AlertSeverity `json:"severity"`
	Message  string        `json:"message"`
}

// MonthProjection is one simulated month.
type MonthProjection struct {
	Month            string             `json:"month"`
	Revenue          float64            `json:"revenue"`
	TuitionCollected bool               `json:"tuitionCollected"`
	FixedExpenses    float64            `json:"fixedExpenses"`
	VariableExpenses float64            `json:"variableExpenses"`
	TotalExpenses    float64            `json:"totalExpenses"`
	ExpenseDetail    map[string]float64 `json:"expenseDetail"`
	NetCashFlow      float64            `json:"netCashFlow"`
	RunningBalance   float64            `json:"runningBalance"`
	Status           Status             `json:"status"`
	IsSummerMonth    bool               `json:"isSummerMonth"`
	Alerts           []Alert            `json:"alerts"`
}

// Project simulates the cash balance month by month, starting at startMonth
// with startBalance and looping the 12-month calendar when months exceeds 12.
func Project(startMonth string, startBalance float64, months int, s Schedule, th Thresholds) ([]MonthProjection, error) {
	if months < 1 {
		return nil, &engine.InvalidInputError{Field: "months", Reason: "must be at least 1"}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	startIdx, err := MonthIndex(startMonth)
	if err != nil {
		return nil, err
	}

	projection := make([]MonthProjection, 0, months)
	balance := startBalance

	for i := 0; i < months; i++ {
		idx := (startIdx + i) % 12
		name := monthNames[idx]
		rev := s.Revenue[name]
		exp := s.Expenses[name]

		var fixed, variable float64
		detail := make(map[string]float64, len(exp.Fixed)+len(exp.Variable))
		for k, v := range exp.Fixed {
			fixed += v
			detail[k] += v
		}
		for k, v := range exp.Variable {
			variable += v
			detail[k] += v
		}

		net := rev.Amount - (fixed + variable)
		balance += net

		mp := MonthProjection{
			Month:            name,
			Revenue:          rev.Amount,
			TuitionCollected: rev.TuitionCollected,
			FixedExpenses:    fixed,
			VariableExpenses: variable,
			TotalExpenses:    fixed + variable,
			ExpenseDetail:    detail,
			NetCashFlow:      net,
			RunningBalance:   balance,
			Status:           classify(balance, th),
			IsSummerMonth:    rev.Summer,
			Alerts:           monthAlerts(balance, idx, rev, s, th),
		}
		projection = append(projection, mp)
	}

	return projection, nil
}

func classify(balance float64, th Thresholds) Status {
	switch {
	case balance < 0:
		return StatusDeficit
	case balance < th.CriticalBelow:
		return StatusCritical
	case balance < th.CautionBelow:
		return StatusCaution
	default:
		return StatusHealthy
	}
}

func monthAlerts(balance float64, idx int, rev MonthRevenue, s Schedule, th Thresholds) []Alert {
	alerts := make([]Alert, 0)
	if balance < 0 {
		alerts = append(alerts, Alert{
			Severity: AlertCritical,
			Message:  "Account overdrawn",
		})
	} else if balance < th.LowBalanceAlert {
		alerts = append(alerts, Alert{
			Severity: AlertWarning,
			Message:  "Critically low balance",
		})
	}
	if s.isLastCollectionMonth(idx) {
		alerts = append(alerts, Alert{
			Severity: AlertInfo,
			Message:  "Last tuition collection month: make sure summer reserves are adequate",
		})
	}
	if rev.Summer {
		alerts = append(alerts, Alert{
			Severity: AlertInfo,
			Message:  "Summer month: operating on reserves or summer program revenue",
		})
	}
	return alerts
}
