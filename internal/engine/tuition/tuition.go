// Package tuition computes a family's effective monthly tuition for a
// program: sliding-scale tier lookup, stacked discount rules, and the
// program-wide discount cap. All functions are pure; callers load program
// configuration from the database and pass plain values in.
package tuition

import (
	"math"

	"github.com/Knetic/govaluate"

	"microschool-crm/internal/engine"
)

type ProgramType string

const (
	ProgramFullTime    ProgramType = "full-time"
	ProgramPartTime    ProgramType = "part-time"
	ProgramDropIn      ProgramType = "drop-in"
	ProgramOnline      ProgramType = "online"
	ProgramHybrid      ProgramType = "hybrid"
	ProgramAfterSchool ProgramType = "after-school"
	ProgramSummer      ProgramType = "summer"
	ProgramCustom      ProgramType = "custom"
)

type RuleType string

const (
	RuleSibling     RuleType = "sibling"
	RuleStaff       RuleType = "staff"
	RuleEarlyBird   RuleType = "early-bird"
	RuleReferral    RuleType = "referral"
	RuleScholarship RuleType = "scholarship"
	RuleCustom      RuleType = "custom"
)

type DiscountForm string

const (
	FormPercentage  DiscountForm = "percentage"
	FormFixedAmount DiscountForm = "fixed"
)

// Tier is one income band of a sliding scale. Nil bounds default to
// 0 and +Inf respectively.
type Tier struct {
	IncomeMin    *float64 `json:"incomeMin"`
	IncomeMax    *float64 `json:"incomeMax"`
	MonthlyPrice float64  `json:"monthlyPrice"`
}

func (t Tier) min() float64 {
	if t.IncomeMin == nil {
		return 0
	}
	return *t.IncomeMin
}

func (t Tier) max() float64 {
	if t.IncomeMax == nil {
		return math.Inf(1)
	}
	return *t.IncomeMax
}

func (t Tier) matches(income float64) bool {
	return income >= t.min() && income <= t.max()
}

// DiscountRule is one entry in a program's ordered rule list. Rule order is
// part of the contract: lookups take the first matching rule, not the best.
type DiscountRule struct {
	Type               RuleType     `json:"type"`
	Form               DiscountForm `json:"form"`
	Value              float64      `json:"value"`
	Applicability      string       `json:"applicability"`
	Stackable          bool         `json:"stackable"`
	MaxDiscountPercent *float64     `json:"maxDiscountPercent"`
	// Formula is only consulted for RuleCustom. It is evaluated against the
	// parameters tuition, students and income; the result is the discount
	// amount in dollars.
	Formula string `json:"formula"`
	Active  bool   `json:"active"`
}

// amountAgainst computes the rule's discount against the given tuition.
func (r DiscountRule) amountAgainst(tuition float64) float64 {
	if r.Form == FormPercentage {
		return tuition * r.Value / 100
	}
	return r.Value
}

// Program carries the pricing configuration the evaluator needs. Tiers and
// Rules keep their stored order.
type Program struct {
	Name      string         `json:"name"`
	Type      ProgramType    `json:"type"`
	Capacity  int            `json:"capacity"`
	BasePrice float64        `json:"basePrice"`
	Tiers     []Tier         `json:"tiers"`
	Rules     []DiscountRule `json:"rules"`
}

func (p Program) firstActiveRule(t RuleType) *DiscountRule {
	for i := range p.Rules {
		if p.Rules[i].Active && p.Rules[i].Type == t {
			return &p.Rules[i]
		}
	}
	return nil
}

// FamilyProfile is the slice of family data tuition computation consumes.
type FamilyProfile struct {
	HouseholdIncome *float64 `json:"householdIncome"`
	StudentCount    int      `json:"studentCount"`
	StaffAffiliated bool     `json:"staffAffiliated"`
}

// AppliedDiscount is one line of the quote's itemization.
type AppliedDiscount struct {
	Type         RuleType `json:"type"`
	Label        string   `json:"label"`
	Amount       float64  `json:"amount"`
	ChildOrdinal int      `json:"childOrdinal,omitempty"`
}

// Quote is the evaluator's result.
type Quote struct {
	BaseTuition      float64           `json:"baseTuition"`
	TotalDiscount    float64           `json:"totalDiscount"`
	FinalTuition     float64           `json:"finalTuition"`
	DiscountsApplied []AppliedDiscount `json:"discountsApplied"`
}

// ValidateTiers rejects malformed sliding scales at configuration time:
// a tier whose lower bound exceeds its upper bound, or two tiers whose
// income bands overlap. Evaluation itself stays first-match so existing
// data keeps working, but new configuration should never get this far.
func ValidateTiers(tiers []Tier) error {
	for i, t := range tiers {
		if t.min() > t.max() {
			return &engine.ConfigurationError{
				Key:    "tiers",
				Reason: "tier lower bound exceeds upper bound",
			}
		}
		for j := 0; j < i; j++ {
			prev := tiers[j]
			if t.min() <= prev.max() && prev.min() <= t.max() {
				return &engine.ConfigurationError{
					Key:    "tiers",
					Reason: "overlapping income bands",
				}
			}
		}
	}
	return nil
}

// ComputeTuition produces the effective monthly tuition for one family.
//
// Order of operations: sliding-scale lookup replaces the base price, then
// staff and sibling rules accumulate discounts against the tier-adjusted
// tuition, then custom formula rules run, and finally the first rule that
// declares maxDiscountPercent caps the accumulated total. Final tuition
// never goes below zero.
func ComputeTuition(p Program, f FamilyProfile) (Quote, error) {
	if f.StudentCount < 1 {
		return Quote{}, &engine.InvalidInputError{Field: "studentCount", Reason: "must be at least 1"}
	}
	if f.HouseholdIncome != nil && *f.HouseholdIncome < 0 {
		return Quote{}, &engine.InvalidInputError{Field: "householdIncome", Reason: "must not be negative"}
	}

	tuition := p.BasePrice
	if len(p.Tiers) > 0 && f.HouseholdIncome != nil {
		// First matching tier wins. No match falls back to the flat base
		// price; that is not an error.
		for _, t := range p.Tiers {
			if t.matches(*f.HouseholdIncome) {
				tuition = t.MonthlyPrice
				break
			}
		}
	}

	var total float64
	applied := make([]AppliedDiscount, 0)

	if f.StaffAffiliated {
		if r := p.firstActiveRule(RuleStaff); r != nil {
			amt := r.amountAgainst(tuition)
			total += amt
			applied = append(applied, AppliedDiscount{
				Type:   RuleStaff,
				Label:  "Staff discount",
				Amount: amt,
			})
		}
	}

	if f.StudentCount > 1 {
		if r := p.firstActiveRule(RuleSibling); r != nil {
			// One discount instance per additional child, each itemized
			// with the child's ordinal.
			for child := 2; child <= f.StudentCount; child++ {
				amt := r.amountAgainst(tuition)
				total += amt
				applied = append(applied, AppliedDiscount{
					Type:         RuleSibling,
					Label:        "Sibling discount",
					Amount:       amt,
					ChildOrdinal: child,
				})
			}
		}
	}

	for _, r := range p.Rules {
		if !r.Active || r.Type != RuleCustom || r.Formula == "" {
			continue
		}
		amt, err := evalCustomRule(r, tuition, f)
		if err != nil {
			return Quote{}, err
		}
		total += amt
		applied = append(applied, AppliedDiscount{
			Type:   RuleCustom,
			Label:  "Custom discount",
			Amount: amt,
		})
	}

	// The first rule declaring a cap governs the whole computation, even if
	// later rules declare tighter caps.
	for _, r := range p.Rules {
		if r.MaxDiscountPercent == nil {
			continue
		}
		if maxTotal := tuition * *r.MaxDiscountPercent / 100; total > maxTotal {
			total = maxTotal
		}
		break
	}

	final := tuition - total
	if final < 0 {
		final = 0
	}

	return Quote{
		BaseTuition:      tuition,
		TotalDiscount:    total,
		FinalTuition:     final,
		DiscountsApplied: applied,
	}, nil
}

func evalCustomRule(r DiscountRule, tuition float64, f FamilyProfile) (float64, error) {
	expr, err := govaluate.NewEvaluableExpression(r.Formula)
	if err != nil {
		return 0, &engine.ConfigurationError{Key: "formula", Reason: err.Error()}
	}

	params := map[string]interface{}{
		"tuition":  tuition,
		"students": float64(f.StudentCount),
		"income":   0.0,
	}
	if f.HouseholdIncome != nil {
		params["income"] = *f.HouseholdIncome
	}

	result, err := expr.Evaluate(params)
	if err != nil {
		return 0, &engine.ConfigurationError{Key: "formula", Reason: err.Error()}
	}
	amt, ok := result.(float64)
	if !ok {
		return 0, &engine.ConfigurationError{Key: "formula", Reason: "result is not a number"}
	}
	return amt, nil
}
