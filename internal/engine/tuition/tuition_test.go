package tuition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"microschool-crm/internal/engine"
)

func fptr(v float64) *float64 { return &v }

func slidingScaleProgram() Program {
	return Program{
		Name:      "Full-Time K-8",
		Type:      ProgramFullTime,
		Capacity:  25,
		BasePrice: 1000,
		Tiers: []Tier{
			{IncomeMin: fptr(0), IncomeMax: fptr(50000), MonthlyPrice: 600},
			{IncomeMin: fptr(50001), IncomeMax: fptr(90000), MonthlyPrice: 800},
			{IncomeMin: fptr(90001), IncomeMax: nil, MonthlyPrice: 1000},
		},
		Rules: []DiscountRule{
			{Type: RuleSibling, Form: FormPercentage, Value: 15, Stackable: true, Active: true},
			{Type: RuleStaff, Form: FormPercentage, Value: 20, Stackable: true, Active: true},
		},
	}
}

func TestComputeTuitionFlatPriceWithoutTiers(t *testing.T) {
	p := Program{Name: "Drop-In", Type: ProgramDropIn, BasePrice: 350}

	for _, income := range []*float64{nil, fptr(20000), fptr(250000)} {
		quote, err := ComputeTuition(p, FamilyProfile{HouseholdIncome: income, StudentCount: 1})
		require.NoError(t, err)
		assert.Equal(t, 350.0, quote.BaseTuition)
		assert.Equal(t, 350.0, quote.FinalTuition)
		assert.Empty(t, quote.DiscountsApplied)
	}
}

func TestComputeTuitionTierMatchWithSibling(t *testing.T) {
	quote, err := ComputeTuition(slidingScaleProgram(), FamilyProfile{
		HouseholdIncome: fptr(72000),
		StudentCount:    2,
	})
	require.NoError(t, err)

	assert.Equal(t, 800.0, quote.BaseTuition)
	assert.Equal(t, 120.0, quote.TotalDiscount)
	assert.Equal(t, 680.0, quote.FinalTuition)
	require.Len(t, quote.DiscountsApplied, 1)
	assert.Equal(t, RuleSibling, quote.DiscountsApplied[0].Type)
	assert.Equal(t, 2, quote.DiscountsApplied[0].ChildOrdinal)
}

func TestComputeTuitionSiblingLinePerAdditionalChild(t *testing.T) {
	for _, studentCount := range []int{1, 2, 3, 5} {
		quote, err := ComputeTuition(slidingScaleProgram(), FamilyProfile{
			HouseholdIncome: fptr(40000),
			StudentCount:    studentCount,
		})
		require.NoError(t, err)

		assert.Len(t, quote.DiscountsApplied, studentCount-1)
		for i, d := range quote.DiscountsApplied {
			assert.Equal(t, i+2, d.ChildOrdinal)
			assert.Equal(t, 90.0, d.Amount) // 15% of the $600 tier
		}
	}
}

func TestComputeTuitionNoTierMatchFallsBackToBasePrice(t *testing.T) {
	p := Program{
		BasePrice: 900,
		Tiers: []Tier{
			{IncomeMin: fptr(0), IncomeMax: fptr(30000), MonthlyPrice: 500},
		},
	}
	quote, err := ComputeTuition(p, FamilyProfile{HouseholdIncome: fptr(45000), StudentCount: 1})
	require.NoError(t, err)
	assert.Equal(t, 900.0, quote.BaseTuition)
	assert.Equal(t, 900.0, quote.FinalTuition)
}

func TestComputeTuitionStaffDiscount(t *testing.T) {
	quote, err := ComputeTuition(slidingScaleProgram(), FamilyProfile{
		HouseholdIncome: fptr(100000),
		StudentCount:    1,
		StaffAffiliated: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1000.0, quote.BaseTuition)
	assert.Equal(t, 200.0, quote.TotalDiscount)
	assert.Equal(t, 800.0, quote.FinalTuition)
	require.Len(t, quote.DiscountsApplied, 1)
	assert.Equal(t, RuleStaff, quote.DiscountsApplied[0].Type)
}

func TestComputeTuitionDiscountCap(t *testing.T) {
	p := slidingScaleProgram()
	cap := 50.0
	p.Rules[0].MaxDiscountPercent = &cap

	// Staff 20% plus four siblings at 15% is 80% raw; the cap holds it at 50%.
	quote, err := ComputeTuition(p, FamilyProfile{
		HouseholdIncome: fptr(100000),
		StudentCount:    5,
		StaffAffiliated: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 500.0, quote.TotalDiscount)
	assert.Equal(t, 500.0, quote.FinalTuition)
}

func TestComputeTuitionFirstCapRuleGoverns(t *testing.T) {
	p := slidingScaleProgram()
	looseCap := 70.0
	tightCap := 10.0
	p.Rules[0].MaxDiscountPercent = &looseCap
	p.Rules[1].MaxDiscountPercent = &tightCap

	quote, err := ComputeTuition(p, FamilyProfile{
		HouseholdIncome: fptr(100000),
		StudentCount:    5,
		StaffAffiliated: true,
	})
	require.NoError(t, err)
	// Raw total is 80%; the first declared cap (70%) applies, the tighter
	// later one is ignored.
	assert.Equal(t, 700.0, quote.TotalDiscount)
}

func TestComputeTuitionNeverNegative(t *testing.T) {
	p := Program{
		BasePrice: 300,
		Rules: []DiscountRule{
			{Type: RuleScholarship, Form: FormFixedAmount, Value: 200, Active: true},
			{Type: RuleCustom, Form: FormFixedAmount, Formula: "250", Active: true},
		},
	}
	quote, err := ComputeTuition(p, FamilyProfile{StudentCount: 1})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, quote.FinalTuition, 0.0)
	assert.Equal(t, 0.0, quote.FinalTuition)
}

func TestComputeTuitionCustomFormula(t *testing.T) {
	p := Program{
		BasePrice: 1000,
		Rules: []DiscountRule{
			{Type: RuleCustom, Active: true, Formula: "tuition * 0.05 * students"},
		},
	}
	quote, err := ComputeTuition(p, FamilyProfile{StudentCount: 3})
	require.NoError(t, err)
	assert.Equal(t, 150.0, quote.TotalDiscount)
	assert.Equal(t, 850.0, quote.FinalTuition)
}

func TestComputeTuitionBadFormulaIsConfigurationError(t *testing.T) {
	p := Program{
		BasePrice: 1000,
		Rules: []DiscountRule{
			{Type: RuleCustom, Active: true, Formula: "tuition *"},
		},
	}
	_, err := ComputeTuition(p, FamilyProfile{StudentCount: 1})
	var cfgErr *engine.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "formula", cfgErr.Key)
}

func TestComputeTuitionInactiveRulesIgnored(t *testing.T) {
	p := slidingScaleProgram()
	p.Rules[0].Active = false

	quote, err := ComputeTuition(p, FamilyProfile{
		HouseholdIncome: fptr(40000),
		StudentCount:    3,
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, quote.TotalDiscount)
	assert.Empty(t, quote.DiscountsApplied)
}

func TestComputeTuitionDeterministic(t *testing.T) {
	f := FamilyProfile{HouseholdIncome: fptr(72000), StudentCount: 3, StaffAffiliated: true}
	first, err := ComputeTuition(slidingScaleProgram(), f)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := ComputeTuition(slidingScaleProgram(), f)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestComputeTuitionInvalidInputs(t *testing.T) {
	p := slidingScaleProgram()

	_, err := ComputeTuition(p, FamilyProfile{StudentCount: 0})
	var inputErr *engine.InvalidInputError
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, "studentCount", inputErr.Field)

	_, err = ComputeTuition(p, FamilyProfile{HouseholdIncome: fptr(-1), StudentCount: 1})
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, "householdIncome", inputErr.Field)
}

func TestValidateTiers(t *testing.T) {
	assert.NoError(t, ValidateTiers(slidingScaleProgram().Tiers))
	assert.NoError(t, ValidateTiers(nil))

	err := ValidateTiers([]Tier{
		{IncomeMin: fptr(50000), IncomeMax: fptr(10000), MonthlyPrice: 500},
	})
	var cfgErr *engine.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)

	err = ValidateTiers([]Tier{
		{IncomeMin: fptr(0), IncomeMax: fptr(50000), MonthlyPrice: 500},
		{IncomeMin: fptr(40000), IncomeMax: fptr(90000), MonthlyPrice: 700},
	})
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "tiers", cfgErr.Key)
}
