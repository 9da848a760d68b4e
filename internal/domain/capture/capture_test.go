package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cn "github.com/agentledger/ledger/pkg/constant"
	"github.com/agentledger/ledger/pkg/money"
)

func mustAmount(t *testing.T, s string) money.Amount {
	t.Helper()

	a, err := money.Parse(s)
	require.NoError(t, err)

	return a
}

func TestCapture_Refundable(t *testing.T) {
	c := &Capture{Amount: mustAmount(t, "10.00"), RefundedAmount: mustAmount(t, "4.00")}
	assert.True(t, c.Refundable().Equal(mustAmount(t, "6.00")))
}

func TestCapture_CanRefund(t *testing.T) {
	c := &Capture{Amount: mustAmount(t, "10.00"), RefundedAmount: mustAmount(t, "4.00")}

	assert.NoError(t, c.CanRefund(mustAmount(t, "6.00")))
	assert.ErrorIs(t, c.CanRefund(mustAmount(t, "6.01")), cn.ErrAmountExceedsRefundable)
	assert.ErrorIs(t, c.CanRefund(mustAmount(t, "0.00")), cn.ErrAmountExceedsRefundable)
}
