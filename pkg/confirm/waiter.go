// Package confirm waits for submitted transactions to be finalized.
package confirm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"tableflip.dev/chainjournal/pkg/sui"
)

var (
	// ErrTimeout means the transaction was not finalized within the wait
	// budget. It may still land later.
	ErrTimeout = errors.New("confirm: timed out waiting for finality")
	// ErrExecutionFailed means the transaction was finalized but its
	// commands aborted.
	ErrExecutionFailed = errors.New("confirm: transaction execution failed")
)

// Defaults used when a Waiter field is zero.
const (
	DefaultTimeout     = 60 * time.Second
	DefaultInterval    = 500 * time.Millisecond
	DefaultMaxInterval = 5 * time.Second
)

// Waiter polls for a transaction's effects with exponential backoff.
type Waiter struct {
	Reader      sui.TransactionReader
	Timeout     time.Duration
	Interval    time.Duration
	MaxInterval time.Duration
	Logger      *zap.Logger
}

// Wait blocks until digest is finalized, the timeout passes, or ctx is done.
// Not-found answers and transport errors are retried; other RPC errors are
// returned.
func (w *Waiter) Wait(ctx context.Context, digest string) (*sui.TransactionEffects, error) {
	timeout := w.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	interval := w.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	maxInterval := w.MaxInterval
	if maxInterval < interval {
		maxInterval = DefaultMaxInterval
		if maxInterval < interval {
			maxInterval = interval
		}
	}
	logger := w.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	wctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := sui.TransactionBlockResponseOptions{ShowEffects: true}
	for attempt := 1; ; attempt++ {
		res, err := w.Reader.GetTransactionBlock(wctx, digest, opts)
		switch {
		case err == nil && res != nil && res.Effects != nil:
			effects := res.Effects
			if effects.Status.Status != sui.StatusSuccess {
				return effects, fmt.Errorf("%w: %s", ErrExecutionFailed, effects.Status.Error)
			}
			logger.Debug("transaction finalized", zap.String("digest", digest), zap.Int("attempts", attempt))
			return effects, nil
		case err == nil:
			// Known but not yet carrying effects.
		case sui.IsNotFound(err):
		default:
			var rpcErr *sui.RPCError
			if errors.As(err, &rpcErr) {
				return nil, err
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Debug("confirmation poll failed", zap.String("digest", digest), zap.Error(err))
		}

		timer := time.NewTimer(interval)
		select {
		case <-wctx.Done():
			timer.Stop()
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("%w: %s after %s", ErrTimeout, digest, timeout)
		case <-timer.C:
		}
		interval *= 2
		if interval > maxInterval {
			interval = maxInterval
		}
	}
}
