package calculation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuidelineFactor(t *testing.T) {
	testCases := []struct {
		age      int
		expected string
		desc     string
	}{
		{age: 35, expected: "0.025", desc: "lower bound"},
		{age: 45, expected: "0.028", desc: "mid table"},
		{age: 55, expected: "0.031", desc: "age 55"},
		{age: 85, expected: "0.04", desc: "upper bound"},
		{age: 34, expected: "0.03", desc: "below table"},
		{age: 86, expected: "0.03", desc: "above table"},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			assertDec(t, tc.expected, GuidelineFactor(tc.age))
		})
	}
}

func TestCorridorFactor(t *testing.T) {
	testCases := []struct {
		age      int
		expected string
		desc     string
	}{
		{age: 35, expected: "1.5", desc: "lower bound"},
		{age: 45, expected: "1.4", desc: "mid table"},
		{age: 84, expected: "1.01", desc: "just above floor"},
		{age: 85, expected: "1", desc: "reaches floor"},
		{age: 20, expected: "1", desc: "below table"},
		{age: 90, expected: "1", desc: "above table"},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			assertDec(t, tc.expected, CorridorFactor(tc.age))
		})
	}
}

func TestCorridorFactor_NeverBelowOne(t *testing.T) {
	for age := 0; age <= 120; age++ {
		assert.True(t, CorridorFactor(age).GreaterThanOrEqual(dec("1")), "age %d", age)
	}
}

func TestFactorTable(t *testing.T) {
	rows := FactorTable(45, 50)
	require.Len(t, rows, 6)
	assert.Equal(t, 45, rows[0].Age)
	assert.Equal(t, 50, rows[5].Age)
	assertDec(t, "0.028", rows[0].Guideline)
	assertDec(t, "1.4", rows[0].Corridor)

	assert.Nil(t, FactorTable(50, 45))
}

func TestRules(t *testing.T) {
	assertDec(t, "0.005", COIRate(45, 45))
	assertDec(t, "0.0075", COIRate(50, 45))
	assert.True(t, PenaltyApplies(59))
	assert.False(t, PenaltyApplies(60))
}
