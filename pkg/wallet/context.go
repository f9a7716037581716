package wallet

import (
	"context"
	"errors"
	"strings"
	"sync"

	"tableflip.dev/chainjournal/pkg/txn"
)

// Context is the wallet, account and network state shared by every view.
// It is created once per process and passed explicitly.
type Context struct {
	// Network is the name of the selected network (e.g. "testnet").
	Network string
	// PackageID is the journal package on Network.
	PackageID string
	Executor  Executor

	mu      sync.RWMutex
	account string
}

// NewContext returns a disconnected context.
func NewContext(network, packageID string, exec Executor) *Context {
	return &Context{Network: network, PackageID: packageID, Executor: exec}
}

// Chain is the wallet-standard chain identifier for the network.
func (c *Context) Chain() string {
	return "sui:" + c.Network
}

// Connect sets the current account.
func (c *Context) Connect(address string) error {
	address = strings.TrimSpace(address)
	if address == "" {
		return errors.New("wallet: empty address")
	}
	c.mu.Lock()
	c.account = address
	c.mu.Unlock()
	return nil
}

// ConnectFirst connects the first account the executor lists.
func (c *Context) ConnectFirst(ctx context.Context) error {
	lister, ok := c.Executor.(AccountLister)
	if !ok {
		return errors.New("wallet: executor cannot list accounts")
	}
	accounts, err := lister.Accounts(ctx)
	if err != nil {
		return err
	}
	if len(accounts) == 0 {
		return errors.New("wallet: no accounts available")
	}
	return c.Connect(accounts[0].Address)
}

// Disconnect clears the current account.
func (c *Context) Disconnect() {
	c.mu.Lock()
	c.account = ""
	c.mu.Unlock()
}

// Account returns the connected address, or "" when disconnected.
func (c *Context) Account() string {
	if c == nil {
		return ""
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.account
}

// Connected reports whether an account is connected.
func (c *Context) Connected() bool {
	return c.Account() != ""
}

// SignAndExecute submits tx as the connected account.
func (c *Context) SignAndExecute(ctx context.Context, tx *txn.Transaction) (Result, error) {
	account := c.Account()
	if account == "" {
		return Result{}, ErrNotConnected
	}
	if c.Executor == nil {
		return Result{}, errors.New("wallet: no executor configured")
	}
	if err := tx.Validate(); err != nil {
		return Result{}, err
	}
	res, err := c.Executor.SignAndExecute(ctx, Request{
		Transaction: tx,
		Account:     account,
		Chain:       c.Chain(),
	})
	if err != nil {
		return Result{}, err
	}
	if res.Digest == "" {
		return Result{}, errors.New("wallet: executor returned no digest")
	}
	return res, nil
}
