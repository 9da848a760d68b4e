package mzap

import (
	"testing"

	"github.com/agentledger/ledger/pkg/mlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeLogger_ImplementsInterface(t *testing.T) {
	var _ mlog.Logger = InitializeLogger(mlog.InfoLevel, "console")
}

func TestWithFields_ReturnsNewLogger(t *testing.T) {
	l := InitializeLogger(mlog.DebugLevel, "console")
	child := l.WithFields("wallet_id", "wal_123")
	require.NotNil(t, child)
	assert.NotSame(t, l, child)
}

func TestToZapLevel(t *testing.T) {
	assert.Equal(t, "fatal", toZapLevel(mlog.FatalLevel).String())
	assert.Equal(t, "info", toZapLevel(mlog.InfoLevel).String())
}
