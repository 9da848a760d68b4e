package wallet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWallet_IsActive(t *testing.T) {
	assert.True(t, (&Wallet{Status: StatusActive}).IsActive())
	assert.False(t, (&Wallet{Status: StatusFrozen}).IsActive())
	assert.False(t, (&Wallet{Status: StatusClosed}).IsActive())
}
