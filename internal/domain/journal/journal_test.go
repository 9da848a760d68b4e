package journal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentledger/ledger/pkg/money"
)

func mustAmount(t *testing.T, s string) money.Amount {
	t.Helper()

	a, err := money.Parse(s)
	require.NoError(t, err)

	return a
}

func balancedLines(t *testing.T) []Line {
	t.Helper()

	return []Line{
		{LedgerAccountID: "acc-a", Direction: DirectionDebit, Amount: mustAmount(t, "10.00"), Currency: "USD"},
		{LedgerAccountID: "acc-b", Direction: DirectionCredit, Amount: mustAmount(t, "10.00"), Currency: "USD"},
	}
}

func TestNewEntry_AcceptsBalancedTwoLineEntry(t *testing.T) {
	entry, err := NewEntry(EntryTypeTransfer, "idem-1", "key-1", nil, nil, balancedLines(t))
	require.NoError(t, err)
	assert.Equal(t, StatusPosted, entry.Status)
	assert.Len(t, entry.Lines, 2)
}

func TestNewEntry_RejectsFewerThanTwoLines(t *testing.T) {
	_, err := NewEntry(EntryTypeTransfer, "idem-1", "key-1", nil, nil, []Line{
		{LedgerAccountID: "acc-a", Direction: DirectionDebit, Amount: mustAmount(t, "10.00"), Currency: "USD"},
	})
	require.Error(t, err)
}

func TestNewEntry_RejectsMixedCurrencies(t *testing.T) {
	lines := balancedLines(t)
	lines[1].Currency = "EUR"

	_, err := NewEntry(EntryTypeTransfer, "idem-1", "key-1", nil, nil, lines)
	require.Error(t, err)
}

func TestNewEntry_RejectsNonPositiveAmount(t *testing.T) {
	lines := balancedLines(t)
	lines[0].Amount = mustAmount(t, "0.00")

	_, err := NewEntry(EntryTypeTransfer, "idem-1", "key-1", nil, nil, lines)
	require.Error(t, err)
}

func TestNewEntry_RejectsUnbalancedDebitsAndCredits(t *testing.T) {
	lines := balancedLines(t)
	lines[1].Amount = mustAmount(t, "9.99")

	_, err := NewEntry(EntryTypeTransfer, "idem-1", "key-1", nil, nil, lines)
	require.Error(t, err)
}

func TestNewEntry_RejectsInvalidDirection(t *testing.T) {
	lines := balancedLines(t)
	lines[0].Direction = "sideways"

	_, err := NewEntry(EntryTypeTransfer, "idem-1", "key-1", nil, nil, lines)
	require.Error(t, err)
}

func TestEntry_AmountFor(t *testing.T) {
	entry, err := NewEntry(EntryTypeTransfer, "idem-1", "key-1", nil, nil, balancedLines(t))
	require.NoError(t, err)

	dir, amt, ok := entry.AmountFor("acc-a")
	assert.True(t, ok)
	assert.Equal(t, DirectionDebit, dir)
	assert.True(t, amt.Equal(mustAmount(t, "10.00")))

	_, _, ok = entry.AmountFor("acc-unknown")
	assert.False(t, ok)
}

func TestEntry_CounterpartyLine(t *testing.T) {
	entry, err := NewEntry(EntryTypeTransfer, "idem-1", "key-1", nil, nil, balancedLines(t))
	require.NoError(t, err)

	line, ok := entry.CounterpartyLine("acc-a")
	assert.True(t, ok)
	assert.Equal(t, "acc-b", line.LedgerAccountID)

	_, ok = entry.CounterpartyLine("acc-unknown-on-both-lines")
	assert.True(t, ok) // neither line matches, so the first non-matching line is returned
}

func TestEntry_CounterpartyLine_SelfOnlyEntry(t *testing.T) {
	lines := []Line{
		{LedgerAccountID: "acc-a", Direction: DirectionDebit, Amount: mustAmount(t, "10.00"), Currency: "USD"},
		{LedgerAccountID: "acc-a", Direction: DirectionCredit, Amount: mustAmount(t, "10.00"), Currency: "USD"},
	}

	entry, err := NewEntry(EntryTypeHold, "idem-1", "key-1", nil, nil, lines)
	require.NoError(t, err)

	_, ok := entry.CounterpartyLine("acc-a")
	assert.False(t, ok)
}
