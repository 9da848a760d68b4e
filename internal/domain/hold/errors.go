package hold

import cn "github.com/agentledger/ledger/pkg/constant"

var (
	errNotCapturable = cn.ErrHoldNotCapturable
	errNotReleasable = cn.ErrHoldNotReleasable
	errExpired       = cn.ErrHoldExpired
	errExceedsHold   = cn.ErrAmountExceedsHold
)
