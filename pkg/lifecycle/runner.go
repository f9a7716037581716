package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"tableflip.dev/chainjournal/pkg/sui"
	"tableflip.dev/chainjournal/pkg/txn"
	"tableflip.dev/chainjournal/pkg/wallet"
)

// ErrNoCreatedObject means a create transaction finalized without creating
// anything.
var ErrNoCreatedObject = errors.New("lifecycle: transaction created no object")

// ErrBusy is returned when an action is already in flight.
var ErrBusy = errors.New("lifecycle: action already pending")

// Signer submits a transaction as the connected account.
type Signer interface {
	SignAndExecute(ctx context.Context, tx *txn.Transaction) (wallet.Result, error)
}

// Confirmer waits for finality.
type Confirmer interface {
	Wait(ctx context.Context, digest string) (*sui.TransactionEffects, error)
}

// CreatedObjectID returns the first created object of effects.
func CreatedObjectID(effects *sui.TransactionEffects) (string, error) {
	if effects == nil || len(effects.Created) == 0 || effects.Created[0].Reference.ObjectID == "" {
		return "", ErrNoCreatedObject
	}
	return effects.Created[0].Reference.ObjectID, nil
}

// Runner drives a Pending through one full action synchronously. The TUI
// performs the same steps as separate messages.
type Runner struct {
	Signer    Signer
	Confirmer Confirmer
	Logger    *zap.Logger
	// Observe is called after every phase change.
	Observe func(Pending)
}

func (r *Runner) observe(p *Pending) {
	if r.Observe != nil {
		r.Observe(*p)
	}
}

func (r *Runner) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

// Run signs, submits and confirms tx. On return p is Done or Failed.
func (r *Runner) Run(ctx context.Context, p *Pending, intent Intent, tx *txn.Transaction) (*sui.TransactionEffects, error) {
	if !p.Begin(intent) {
		return nil, ErrBusy
	}
	r.observe(p)
	log := r.logger().With(zap.Stringer("intent", intent))

	res, err := r.Signer.SignAndExecute(ctx, tx)
	if err != nil {
		log.Info("signing failed", zap.Error(err))
		p.Fail(err)
		r.observe(p)
		return nil, err
	}
	p.Submitted(res.Digest)
	r.observe(p)

	p.Confirming()
	r.observe(p)
	effects, err := r.Confirmer.Wait(ctx, res.Digest)
	if err != nil {
		log.Info("confirmation failed", zap.String("digest", res.Digest), zap.Error(err))
		p.Fail(err)
		r.observe(p)
		return effects, err
	}
	if intent == IntentCreate {
		if _, err := CreatedObjectID(effects); err != nil {
			p.Fail(err)
			r.observe(p)
			return effects, fmt.Errorf("%s: %w", res.Digest, err)
		}
	}
	p.Done()
	r.observe(p)
	log.Info("transaction confirmed", zap.String("digest", res.Digest))
	return effects, nil
}
