// Package accounts prints the addresses the configured wallet can sign for.
package accounts

import (
	"context"
	"io"

	"tableflip.dev/chainjournal/pkg/journal"
	"tableflip.dev/chainjournal/pkg/printers"
	"tableflip.dev/chainjournal/pkg/wallet"
)

// Source is the part of the app service Accounts needs.
type Source interface {
	Accounts(ctx context.Context) ([]wallet.Account, error)
}

type Accounts struct {
	Service Source
	Current string
	JSON    bool
	Out     io.Writer
}

type row struct {
	wallet.Account
	Current bool `json:"current"`
}

func (a *Accounts) Do(ctx context.Context) error {
	accounts, err := a.Service.Accounts(ctx)
	if err != nil {
		return err
	}
	if a.JSON {
		rows := make([]row, 0, len(accounts))
		for _, acct := range accounts {
			rows = append(rows, row{Account: acct, Current: journal.SameAddress(acct.Address, a.Current)})
		}
		return printers.JSON(a.Out, rows)
	}
	pp := printers.PrettyPrint{Out: a.Out}
	pp.NewLine()
	pp.Accounts(accounts, a.Current)
	return nil
}
