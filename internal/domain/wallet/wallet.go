// Package wallet holds the Wallet entity: the accounts that own balances
// (spec.md §3).
package wallet

import "time"

// Type distinguishes customer-owned wallets, merchant/business wallets,
// and system wallets used as the source of deposits.
type Type string

const (
	TypeCustomer Type = "customer"
	TypeBusiness Type = "business"
	TypeSystem   Type = "system"
)

// Status is a wallet's lifecycle state. Frozen blocks both initiating and
// receiving value; closed is terminal.
type Status string

const (
	StatusActive Status = "active"
	StatusFrozen Status = "frozen"
	StatusClosed Status = "closed"
)

// Wallet is an account: the thing a caller authenticates as, and the
// entity balances and limits are attached to.
type Wallet struct {
	ID        string
	Type      Type
	Status    Status
	Currency  string
	Handle    *string
	Metadata  map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateInput is the payload accepted by the admin wallet-creation operation.
type CreateInput struct {
	Type     Type           `json:"type" validate:"required,oneof=customer business system"`
	Currency string         `json:"currency" validate:"required,len=3"`
	Handle   *string        `json:"handle" validate:"omitempty,min=2,max=64"`
	Metadata map[string]any `json:"metadata"`
}

// IsActive reports whether the wallet can currently originate or receive value.
func (w *Wallet) IsActive() bool {
	return w.Status == StatusActive
}
