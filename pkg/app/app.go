package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"tableflip.dev/chainjournal/pkg/chain/sandbox"
	"tableflip.dev/chainjournal/pkg/config"
	"tableflip.dev/chainjournal/pkg/confirm"
	"tableflip.dev/chainjournal/pkg/journal"
	"tableflip.dev/chainjournal/pkg/lifecycle"
	"tableflip.dev/chainjournal/pkg/sui"
	"tableflip.dev/chainjournal/pkg/txn"
	"tableflip.dev/chainjournal/pkg/wallet"
)

// Service provides the journal operations shared by the UI and the CLI.
// It wraps the query service, the wallet and the confirmation waiter.
type Service struct {
	Wallet  *wallet.Context
	Reader  sui.ObjectReader
	Waiter  lifecycle.Confirmer
	Sandbox *sandbox.Chain
	Logger  *zap.Logger
}

var (
	// ErrEmptyText is returned for blank titles and entries.
	ErrEmptyText = errors.New("app: text must not be blank")
	// ErrNoPackage means the selected network has no journal package.
	ErrNoPackage = errors.New("app: no journal package configured")
	// ErrNoWatch means the selected network cannot stream changes.
	ErrNoWatch = errors.New("app: change notifications need the sandbox network")
)

// Open builds a Service for the network cfg selects. On the sandbox network
// everything runs in-process; elsewhere queries go to the node's RPC and
// signing goes to the wallet bridge, if one is configured.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	net, err := cfg.Current()
	if err != nil {
		return nil, err
	}

	s := &Service{Logger: logger.With(zap.String("network", cfg.Network))}
	var (
		txReader  sui.TransactionReader
		exec      wallet.Executor
		packageID = net.Package
	)

	if cfg.IsSandbox() {
		chain, err := sandbox.Open(sandbox.Config{
			BasePath:      cfg.Sandbox.Path,
			PackageID:     net.Package,
			Accounts:      cfg.Sandbox.Accounts,
			FinalityPolls: cfg.Sandbox.FinalityPolls,
			Logger:        logger.Named("sandbox"),
		})
		if err != nil {
			return nil, err
		}
		s.Sandbox = chain
		s.Reader, txReader, exec = chain, chain, chain
		packageID = chain.PackageID()
	} else {
		if packageID == "" {
			return nil, fmt.Errorf("%w for %s (set networks.%s.package)", ErrNoPackage, cfg.Network, cfg.Network)
		}
		client, err := sui.NewClient(sui.Config{
			URL:               net.RPC,
			Timeout:           cfg.RPC.Timeout,
			RequestsPerSecond: cfg.RPC.Rate,
			Burst:             1,
			Logger:            logger.Named("rpc"),
		})
		if err != nil {
			return nil, err
		}
		s.Reader, txReader = client, client
		if cfg.Wallet.Bridge != "" {
			bridge, err := wallet.NewBridge(wallet.BridgeConfig{URL: cfg.Wallet.Bridge, Logger: logger.Named("wallet")})
			if err != nil {
				return nil, err
			}
			exec = bridge
		}
	}

	s.Wallet = wallet.NewContext(cfg.Network, packageID, exec)
	s.Waiter = &confirm.Waiter{
		Reader:      txReader,
		Timeout:     cfg.Confirm.Timeout,
		Interval:    cfg.Confirm.Interval,
		MaxInterval: cfg.Confirm.MaxInterval,
		Logger:      logger.Named("confirm"),
	}

	switch {
	case cfg.Account != "":
		if err := s.Wallet.Connect(cfg.Account); err != nil {
			return nil, err
		}
	case exec != nil:
		if err := s.Wallet.ConnectFirst(ctx); err != nil {
			s.Logger.Info("starting disconnected", zap.Error(err))
		}
	}
	return s, nil
}

// PackageID is the journal package on the selected network.
func (s *Service) PackageID() string {
	return s.Wallet.PackageID
}

// Journals lists the connected account's journals.
func (s *Service) Journals(ctx context.Context) ([]journal.Summary, error) {
	account := s.Wallet.Account()
	if account == "" {
		return nil, wallet.ErrNotConnected
	}
	return journal.ListOwned(ctx, s.Reader, account, s.PackageID())
}

// Journal reads one journal.
func (s *Service) Journal(ctx context.Context, id string) (*journal.Journal, error) {
	return journal.Fetch(ctx, s.Reader, id)
}

// Runner returns a lifecycle runner bound to this service's wallet and
// waiter.
func (s *Service) Runner(observe func(lifecycle.Pending)) *lifecycle.Runner {
	return &lifecycle.Runner{
		Signer:    s.Wallet,
		Confirmer: s.Waiter,
		Logger:    s.Logger,
		Observe:   observe,
	}
}

// CreateJournal creates a journal titled title and returns its id once
// finalized.
func (s *Service) CreateJournal(ctx context.Context, title string, observe func(lifecycle.Pending)) (string, error) {
	if !journal.ValidText(title) {
		return "", ErrEmptyText
	}
	account := s.Wallet.Account()
	if account == "" {
		return "", wallet.ErrNotConnected
	}
	var p lifecycle.Pending
	effects, err := s.Runner(observe).Run(ctx, &p, lifecycle.IntentCreate, txn.BuildCreateJournal(s.PackageID(), title, account))
	if err != nil {
		return "", err
	}
	return lifecycle.CreatedObjectID(effects)
}

// AddEntry appends content to journal id and returns the journal as read
// after finality.
func (s *Service) AddEntry(ctx context.Context, id, content string, observe func(lifecycle.Pending)) (*journal.Journal, error) {
	if !journal.ValidText(content) {
		return nil, ErrEmptyText
	}
	var p lifecycle.Pending
	if _, err := s.Runner(observe).Run(ctx, &p, lifecycle.IntentAddEntry, txn.BuildAddEntry(s.PackageID(), id, content)); err != nil {
		return nil, err
	}
	return s.Journal(ctx, id)
}

// Accounts lists the accounts the wallet can sign for.
func (s *Service) Accounts(ctx context.Context) ([]wallet.Account, error) {
	lister, ok := s.Wallet.Executor.(wallet.AccountLister)
	if !ok {
		return nil, errors.New("app: wallet cannot list accounts")
	}
	return lister.Accounts(ctx)
}

// Watch subscribes to sandbox change events.
func (s *Service) Watch(ctx context.Context) (<-chan sandbox.Event, error) {
	if s.Sandbox == nil {
		return nil, ErrNoWatch
	}
	return s.Sandbox.Watch(ctx)
}
