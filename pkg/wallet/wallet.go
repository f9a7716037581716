// Package wallet defines how the client hands transactions to a signer and
// holds the connected account for the running session.
package wallet

import (
	"context"
	"errors"

	"tableflip.dev/chainjournal/pkg/txn"
)

var (
	// ErrRejected means the user declined to sign.
	ErrRejected = errors.New("wallet: request rejected")
	// ErrNotConnected means no account is connected.
	ErrNotConnected = errors.New("wallet: no account connected")
)

// Request asks a wallet to sign and submit a transaction as Account on Chain.
type Request struct {
	Transaction *txn.Transaction `json:"transaction"`
	Account     string           `json:"account"`
	Chain       string           `json:"chain"`
}

// Result is what a wallet reports after a successful submission.
type Result struct {
	Digest string `json:"digest"`
}

// Executor signs and submits transactions.
type Executor interface {
	SignAndExecute(ctx context.Context, req Request) (Result, error)
}

// Account is an address the wallet can sign for.
type Account struct {
	Address string `json:"address"`
	Label   string `json:"label,omitempty"`
}

// AccountLister is implemented by wallets that can enumerate accounts.
type AccountLister interface {
	Accounts(ctx context.Context) ([]Account, error)
}
