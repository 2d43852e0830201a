package utils

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateTotalDue(t *testing.T) {
	tests := []struct {
		name      string
		principal decimal.Decimal
		markup    decimal.Decimal
		expected  decimal.Decimal
	}{
		{
			name:      "standard thirty percent markup",
			principal: decimal.NewFromInt(10000),
			markup:    decimal.RequireFromString("0.30"),
			expected:  decimal.NewFromInt(13000),
		},
		{
			name:      "fractional principal",
			principal: decimal.RequireFromString("1234.56"),
			markup:    decimal.RequireFromString("0.30"),
			expected:  decimal.RequireFromString("1604.93"), // 1604.928 rounded
		},
		{
			name:      "zero markup",
			principal: decimal.NewFromInt(5000),
			markup:    decimal.Zero,
			expected:  decimal.NewFromInt(5000),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateTotalDue(tt.principal, tt.markup)
			assert.True(t, result.Equal(tt.expected),
				"Expected %v, but got %v", tt.expected, result)
		})
	}
}

func TestCalculateWeeklyPayment(t *testing.T) {
	tests := []struct {
		name     string
		totalDue decimal.Decimal
		weeks    int
		expected decimal.Decimal
	}{
		{
			name:     "thirteen week loan",
			totalDue: decimal.NewFromInt(13000),
			weeks:    13,
			expected: decimal.NewFromInt(1000),
		},
		{
			name:     "rounds to cents",
			totalDue: decimal.NewFromInt(1000),
			weeks:    3,
			expected: decimal.RequireFromString("333.33"),
		},
		{
			name:     "zero weeks",
			totalDue: decimal.NewFromInt(1000),
			weeks:    0,
			expected: decimal.Zero,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateWeeklyPayment(tt.totalDue, tt.weeks)
			assert.True(t, result.Equal(tt.expected),
				"Expected %v, but got %v", tt.expected, result)
		})
	}
}

func TestUnitsPayable(t *testing.T) {
	installment := decimal.NewFromInt(1000)

	assert.Equal(t, 2, UnitsPayable(decimal.NewFromInt(2500), installment))
	assert.Equal(t, 0, UnitsPayable(decimal.NewFromInt(999), installment))
	assert.Equal(t, 1, UnitsPayable(decimal.NewFromInt(1000), installment))
	assert.Equal(t, 0, UnitsPayable(decimal.NewFromInt(1000), decimal.Zero))
}

func TestCents(t *testing.T) {
	assert.Equal(t, int64(5), Cents(decimal.RequireFromString("12.05")))
	assert.Equal(t, int64(0), Cents(decimal.NewFromInt(13000)))
	assert.Equal(t, int64(34), Cents(decimal.RequireFromString("1333.335")))
}

func TestCalculateDueDate(t *testing.T) {
	baseDate := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		startDate  time.Time
		weekNumber int
		expected   time.Time
	}{
		{
			name:       "first week",
			startDate:  baseDate,
			weekNumber: 1,
			expected:   baseDate.AddDate(0, 0, 7),
		},
		{
			name:       "second week",
			startDate:  baseDate,
			weekNumber: 2,
			expected:   baseDate.AddDate(0, 0, 14),
		},
		{
			name:       "week 13",
			startDate:  baseDate,
			weekNumber: 13,
			expected:   baseDate.AddDate(0, 0, 91),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateDueDate(tt.startDate, tt.weekNumber)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestGetCurrentWeek(t *testing.T) {
	loanStartDate := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		currentDate time.Time
		expected    int
	}{
		{name: "same day as loan start", currentDate: loanStartDate, expected: 1},
		{name: "one week later", currentDate: loanStartDate.AddDate(0, 0, 7), expected: 2},
		{name: "middle of second week", currentDate: loanStartDate.AddDate(0, 0, 10), expected: 2},
		{name: "before start", currentDate: loanStartDate.AddDate(0, 0, -3), expected: 1},
		{name: "late in the day", currentDate: loanStartDate.Add(6*24*time.Hour + 23*time.Hour), expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetCurrentWeek(loanStartDate, tt.currentDate))
		})
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("15/03/2024")
	assert.Error(t, err)
}

func TestIsAfterDay(t *testing.T) {
	due := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)

	assert.False(t, IsAfterDay(due.Add(20*time.Hour), due))
	assert.True(t, IsAfterDay(due.AddDate(0, 0, 1), due))
	assert.False(t, IsAfterDay(due.AddDate(0, 0, -1), due))
}
