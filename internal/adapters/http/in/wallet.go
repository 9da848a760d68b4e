package in

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/agentledger/ledger/internal/domain/journal"
	"github.com/agentledger/ledger/internal/services/query"
	netHTTP "github.com/agentledger/ledger/pkg/net/http"
)

// WalletHandler serves the read-only surface of the caller's own wallet
// (spec.md §6: `GET /v1/wallets/me*`).
type WalletHandler struct {
	Query *query.UseCase
}

// GetMe returns the caller's wallet.
func (h *WalletHandler) GetMe(c *fiber.Ctx) error {
	caller := Caller(c)

	w, err := h.Query.GetWallet(c.UserContext(), caller.WalletID)
	if err != nil {
		return respondError(c, err, "wallet")
	}

	return netHTTP.OK(c, w)
}

// GetBalance returns the caller's available and held balances.
func (h *WalletHandler) GetBalance(c *fiber.Ctx) error {
	caller := Caller(c)

	w, err := h.Query.GetWallet(c.UserContext(), caller.WalletID)
	if err != nil {
		return respondError(c, err, "wallet")
	}

	bal, err := h.Query.GetBalance(c.UserContext(), caller.WalletID, w.Currency)
	if err != nil {
		return respondError(c, err, "wallet")
	}

	return netHTTP.OK(c, bal)
}

// ListTransactions returns a page of the caller's transaction feed.
func (h *WalletHandler) ListTransactions(c *fiber.Ctx) error {
	caller := Caller(c)

	w, err := h.Query.GetWallet(c.UserContext(), caller.WalletID)
	if err != nil {
		return respondError(c, err, "wallet")
	}

	in := query.ListTransactionsInput{
		Cursor: c.Query("cursor"),
		Limit:  queryInt(c, "limit"),
	}

	if t := c.Query("type"); t != "" {
		et := journal.EntryType(t)
		in.Type = &et
	}

	if s := c.Query("status"); s != "" {
		st := journal.Status(s)
		in.Status = &st
	}

	if from, ok := queryTime(c, "from"); ok {
		in.FromDate = &from
	}

	if to, ok := queryTime(c, "to"); ok {
		in.ToDate = &to
	}

	result, err := h.Query.ListTransactions(c.UserContext(), caller.WalletID, w.Currency, in)
	if err != nil {
		return respondError(c, err, "transaction")
	}

	return netHTTP.OK(c, result)
}

func queryInt(c *fiber.Ctx, name string) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}

	return v
}

func queryTime(c *fiber.Ctx, name string) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, false
	}

	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}

	return t, true
}
