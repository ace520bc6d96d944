package flow_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avdeeva/spendbot/internal/flow"
)

func TestParseTransactionLine(t *testing.T) {
	tests := []struct {
		input    string
		wantName string
		wantCost float64
		wantOK   bool
	}{
		{"Milk 100.50", "Milk", 100.50, true},
		{"milk 100,50", "Milk", 100.50, true},
		{"green tea 45", "Green tea", 45, true},
		{"МОЛОКО 99,9", "Молоко", 99.9, true},
		{"bus ticket 2 30", "Bus ticket 2", 30, true},
		{"Milk", "", 0, false},
		{"100.50", "", 0, false},
		{"Milk 100.50.2", "", 0, false},
		{"Milk! 100", "", 0, false},
		{"", "", 0, false},
		{"   ", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			name, cost, ok := flow.ParseTransactionLine(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantName, name)
				assert.Equal(t, tt.wantCost, cost)
			}
		})
	}
}

func TestParseName(t *testing.T) {
	name, ok := flow.ParseName("Groceries ")
	require.True(t, ok)
	assert.Equal(t, "Groceries", name)

	name, ok = flow.ParseName("еда и напитки")
	require.True(t, ok)
	assert.Equal(t, "Еда и напитки", name)

	_, ok = flow.ParseName("")
	assert.False(t, ok)

	_, ok = flow.ParseName("   ")
	// Spaces alone match the character class but trim to nothing.
	assert.False(t, ok)

	_, ok = flow.ParseName("has-a-dash")
	assert.False(t, ok)

	_, ok = flow.ParseName(strings.Repeat("a", 50))
	assert.False(t, ok)

	_, ok = flow.ParseName(strings.Repeat("a", 49))
	assert.True(t, ok)
}

func TestParseCost(t *testing.T) {
	cost, ok := flow.ParseCost("100,50")
	require.True(t, ok)
	assert.Equal(t, 100.50, cost)

	cost, ok = flow.ParseCost("0")
	require.True(t, ok)
	assert.Equal(t, 0.0, cost)

	// Sign is not the validator's business.
	_, ok = flow.ParseCost("-5")
	assert.True(t, ok)

	_, ok = flow.ParseCost("ten")
	assert.False(t, ok)

	_, ok = flow.ParseCost("")
	assert.False(t, ok)
}

func TestParseAmount(t *testing.T) {
	amount, ok := flow.ParseAmount("3")
	require.True(t, ok)
	assert.Equal(t, 3, amount)

	_, ok = flow.ParseAmount("3.5")
	assert.False(t, ok)

	_, ok = flow.ParseAmount("-3")
	assert.False(t, ok)

	_, ok = flow.ParseAmount("three")
	assert.False(t, ok)

	_, ok = flow.ParseAmount("")
	assert.False(t, ok)
}

func TestParseDate(t *testing.T) {
	date, ok := flow.ParseDate("05.03.2024")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), date)

	date, ok = flow.ParseDate("29-02-2024")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), date)

	_, ok = flow.ParseDate("31.02.2024")
	assert.False(t, ok)

	_, ok = flow.ParseDate("29.02.2023")
	assert.False(t, ok)

	_, ok = flow.ParseDate("2024.03.05")
	assert.False(t, ok)

	_, ok = flow.ParseDate("05.03")
	assert.False(t, ok)

	_, ok = flow.ParseDate("yesterday")
	assert.False(t, ok)
}

func TestParseComment(t *testing.T) {
	comment, ok := flow.ParseComment("for the office party")
	require.True(t, ok)
	assert.Equal(t, "for the office party", comment)

	_, ok = flow.ParseComment(strings.Repeat("x", 50))
	assert.False(t, ok)

	// 49 multi-byte runes are still under the character bound.
	_, ok = flow.ParseComment(strings.Repeat("ы", 49))
	assert.True(t, ok)
}

func TestActionTagsRoundTrip(t *testing.T) {
	actions := []flow.Action{
		flow.ActionConfirm, flow.ActionCorrect, flow.ActionCancel,
		flow.ActionNewCategory, flow.ActionFixName, flow.ActionFixCategory,
		flow.ActionFixCost, flow.ActionFixAmount, flow.ActionFixDate,
		flow.ActionFixComment,
	}
	for _, a := range actions {
		assert.Equal(t, a, flow.ActionFromTag(a.Tag()))
	}
	assert.Equal(t, flow.ActionNone, flow.ActionFromTag("no-such-action"))
}
