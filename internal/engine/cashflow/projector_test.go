package cashflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"microschool-crm/internal/engine"
)

// testSchedule models a school on a ten-month collection calendar: tuition
// comes in August through May, June and July run a small summer program on
// reserves.
func testSchedule() Schedule {
	fixed := map[string]float64{
		"rent":      4516,
		"insurance": 850,
		"utilities": 700,
		"software":  400,
		"admin":     3800,
	}
	schoolVariable := map[string]float64{
		"payroll":    8500,
		"supplies":   800,
		"activities": 500,
	}
	summerVariable := map[string]float64{
		"payroll":  4250,
		"supplies": 150,
	}

	s := Schedule{
		Revenue:  make(map[string]MonthRevenue, 12),
		Expenses: make(map[string]MonthExpenses, 12),
	}
	for _, m := range monthNames {
		if m == "June" || m == "July" {
			s.Revenue[m] = MonthRevenue{Amount: 2000, Summer: true}
			s.Expenses[m] = MonthExpenses{Fixed: fixed, Variable: summerVariable}
			continue
		}
		s.Revenue[m] = MonthRevenue{Amount: 18500, TuitionCollected: true}
		s.Expenses[m] = MonthExpenses{Fixed: fixed, Variable: schoolVariable}
	}
	return s
}

func TestProjectAugustScenario(t *testing.T) {
	projection, err := Project("August", 15748, 1, testSchedule(), DefaultThresholds())
	require.NoError(t, err)
	require.Len(t, projection, 1)

	august := projection[0]
	assert.Equal(t, "August", august.Month)
	assert.Equal(t, 18500.0, august.Revenue)
	assert.Equal(t, 10266.0, august.FixedExpenses)
	assert.Equal(t, 9800.0, august.VariableExpenses)
	assert.Equal(t, 20066.0, august.TotalExpenses)
	assert.Equal(t, -1566.0, august.NetCashFlow)
	assert.Equal(t, 14182.0, august.RunningBalance)
	assert.Equal(t, StatusCaution, august.Status)
	assert.False(t, august.IsSummerMonth)
}

func TestProjectRunningBalanceIsCumulative(t *testing.T) {
	start := 50000.0
	projection, err := Project("August", start, 12, testSchedule(), DefaultThresholds())
	require.NoError(t, err)
	require.Len(t, projection, 12)

	balance := start
	for _, mp := range projection {
		balance += mp.NetCashFlow
		assert.Equal(t, balance, mp.RunningBalance, mp.Month)
	}
}

func TestProjectSummerMonths(t *testing.T) {
	// Start in May so June and July land inside the window.
	projection, err := Project("May", 80000, 4, testSchedule(), DefaultThresholds())
	require.NoError(t, err)
	require.Len(t, projection, 4)

	assert.Equal(t, "May", projection[0].Month)
	assert.Equal(t, "June", projection[1].Month)
	assert.Equal(t, "July", projection[2].Month)
	assert.Equal(t, "August", projection[3].Month)

	assert.False(t, projection[0].IsSummerMonth)
	assert.True(t, projection[1].IsSummerMonth)
	assert.True(t, projection[2].IsSummerMonth)

	// June: 2000 revenue against 10266 fixed and 4400 variable.
	assert.Equal(t, -12666.0, projection[1].NetCashFlow)

	summerInfo := false
	for _, a := range projection[1].Alerts {
		if a.Severity == AlertInfo {
			summerInfo = true
		}
	}
	assert.True(t, summerInfo, "summer month should carry an info alert")
}

func TestProjectLastCollectionMonthAlert(t *testing.T) {
	projection, err := Project("May", 200000, 1, testSchedule(), DefaultThresholds())
	require.NoError(t, err)

	found := false
	for _, a := range projection[0].Alerts {
		if a.Severity == AlertInfo {
			found = true
		}
	}
	assert.True(t, found, "May closes the collection run and should be flagged")
}

func TestProjectBalanceAlerts(t *testing.T) {
	// Deep in the red from the start.
	projection, err := Project("June", 1000, 2, testSchedule(), DefaultThresholds())
	require.NoError(t, err)

	june := projection[0]
	assert.Equal(t, StatusDeficit, june.Status)
	require.NotEmpty(t, june.Alerts)
	assert.Equal(t, AlertCritical, june.Alerts[0].Severity)
}

func TestProjectLowBalanceWarning(t *testing.T) {
	// August nets -1566, so a 6000 start lands at 4434: positive but under
	// the 5000 alert line.
	projection, err := Project("August", 6000, 1, testSchedule(), DefaultThresholds())
	require.NoError(t, err)

	august := projection[0]
	assert.Equal(t, 4434.0, august.RunningBalance)
	require.NotEmpty(t, august.Alerts)
	assert.Equal(t, AlertWarning, august.Alerts[0].Severity)
}

func TestProjectWrapsCalendar(t *testing.T) {
	projection, err := Project("November", 100000, 15, testSchedule(), DefaultThresholds())
	require.NoError(t, err)
	require.Len(t, projection, 15)

	assert.Equal(t, "November", projection[0].Month)
	assert.Equal(t, "December", projection[1].Month)
	assert.Equal(t, "January", projection[2].Month)
	// Month 13 is November again.
	assert.Equal(t, "November", projection[12].Month)
	assert.Equal(t, projection[0].NetCashFlow, projection[12].NetCashFlow)
}

func TestProjectStatusBands(t *testing.T) {
	th := DefaultThresholds()
	cases := []struct {
		balance float64
		want    Status
	}{
		{-0.01, StatusDeficit},
		{0, StatusCritical},
		{9999.99, StatusCritical},
		{10000, StatusCaution},
		{29999.99, StatusCaution},
		{30000, StatusHealthy},
		{250000, StatusHealthy},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, classify(tc.balance, th), "balance %.2f", tc.balance)
	}
}

func TestProjectRejectsBadInputs(t *testing.T) {
	s := testSchedule()

	_, err := Project("August", 1000, 0, s, DefaultThresholds())
	var inputErr *engine.InvalidInputError
	require.ErrorAs(t, err, &inputErr)

	_, err = Project("Augst", 1000, 12, s, DefaultThresholds())
	var cfgErr *engine.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestProjectRejectsIncompleteSchedule(t *testing.T) {
	s := testSchedule()
	delete(s.Revenue, "March")

	_, err := Project("August", 1000, 12, s, DefaultThresholds())
	var cfgErr *engine.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "March", cfgErr.Key)
}

func TestScheduleRejectsUnknownMonthKey(t *testing.T) {
	s := testSchedule()
	s.Revenue["Brumaire"] = MonthRevenue{Amount: 1}

	var cfgErr *engine.ConfigurationError
	require.ErrorAs(t, s.Validate(), &cfgErr)
	assert.Equal(t, "Brumaire", cfgErr.Key)
}

func TestMonthIndex(t *testing.T) {
	idx, err := MonthIndex("January")
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	idx, err = MonthIndex("December")
	require.NoError(t, err)
	assert.Equal(t, 11, idx)

	_, err = MonthIndex("january")
	assert.Error(t, err)
}
