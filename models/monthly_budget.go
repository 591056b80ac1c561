package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"gorm.io/gorm"

	"microschool-crm/internal/engine/cashflow"
)

// CostMap stores a category -> dollar amount breakdown as JSONB.
type CostMap map[string]float64

func (m CostMap) Value() (driver.Value, error) {
	return json.Marshal(m)
}

func (m *CostMap) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(bytes, m)
}

// MonthlyBudget is one hand-authored row of the 12-month operating schedule
// the cash-flow projector runs against. Month is the calendar month name;
// exactly twelve rows exist.
type MonthlyBudget struct {
	gorm.Model
	Month            string  `json:"month" gorm:"uniqueIndex;not null"`
	Revenue          float64 `json:"revenue" gorm:"type:numeric(12,2)"`
	TuitionCollected bool    `json:"tuitionCollected"`
	Summer           bool    `json:"summer"`
	FixedCosts       CostMap `json:"fixedCosts" gorm:"type:jsonb"`
	VariableCosts    CostMap `json:"variableCosts" gorm:"type:jsonb"`
}

// BudgetScheduleProvider adapts the monthly_budgets table to the engine's
// Provider interface. Each call reads a fresh snapshot of all twelve rows.
type BudgetScheduleProvider struct {
	DB *gorm.DB
}

func (p BudgetScheduleProvider) Schedule() (cashflow.Schedule, error) {
	var rows []MonthlyBudget
	if err := p.DB.Find(&rows).Error; err != nil {
		return cashflow.Schedule{}, err
	}
	return BudgetSchedule(rows), nil
}

// BudgetSchedule converts budget rows into the engine schedule type.
func BudgetSchedule(rows []MonthlyBudget) cashflow.Schedule {
	s := cashflow.Schedule{
		Revenue:  make(map[string]cashflow.MonthRevenue, len(rows)),
		Expenses: make(map[string]cashflow.MonthExpenses, len(rows)),
	}
	for _, r := range rows {
		s.Revenue[r.Month] = cashflow.MonthRevenue{
			Amount:           r.Revenue,
			TuitionCollected: r.TuitionCollected,
			Summer:           r.Summer,
		}
		s.Expenses[r.Month] = cashflow.MonthExpenses{
			Fixed:    r.FixedCosts,
			Variable: r.VariableCosts,
		}
	}
	return s
}

// DefaultMonthlyBudget seeds an empty installation with a typical
// 10-month collection calendar (August through May) and a June/July summer
// program. Amounts reflect a ~25-student school.
func DefaultMonthlyBudget() []MonthlyBudget {
	fixed := CostMap{
		"rent":      4516,
		"insurance": 850,
		"utilities": 700,
		"software":  400,
		"admin":     3800,
	}
	schoolVariable := CostMap{
		"payroll":    8500,
		"supplies":   800,
		"activities": 500,
	}
	summerVariable := CostMap{
		"payroll":  4250,
		"supplies": 150,
	}

	school := func(month string, revenue float64) MonthlyBudget {
		return MonthlyBudget{
			Month:            month,
			Revenue:          revenue,
			TuitionCollected: true,
			FixedCosts:       fixed,
			VariableCosts:    schoolVariable,
		}
	}
	summer := func(month string) MonthlyBudget {
		return MonthlyBudget{
			Month:         month,
			Revenue:       2000,
			Summer:        true,
			FixedCosts:    fixed,
			VariableCosts: summerVariable,
		}
	}

	return []MonthlyBudget{
		school("January", 20500),
		school("February", 20500),
		school("March", 21000),
		school("April", 20500),
		school("May", 20500),
		summer("June"),
		summer("July"),
		school("August", 18500),
		school("September", 21500),
		school("October", 21000),
		school("November", 20500),
		school("December", 19500),
	}
}
