package confirm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"tableflip.dev/chainjournal/pkg/sui"
)

type scriptedReader struct {
	mu    sync.Mutex
	calls int
	steps []func() (*sui.TransactionBlockResponse, error)
}

func (s *scriptedReader) GetTransactionBlock(_ context.Context, _ string, opts sui.TransactionBlockResponseOptions) (*sui.TransactionBlockResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !opts.ShowEffects {
		return nil, errors.New("effects not requested")
	}
	i := s.calls
	s.calls++
	if i >= len(s.steps) {
		i = len(s.steps) - 1
	}
	return s.steps[i]()
}

func notFound() (*sui.TransactionBlockResponse, error) {
	return nil, &sui.RPCError{Code: -32602, Message: "Could not find the referenced transaction"}
}

func finalized(status, msg string) func() (*sui.TransactionBlockResponse, error) {
	return func() (*sui.TransactionBlockResponse, error) {
		return &sui.TransactionBlockResponse{
			Digest: "d",
			Effects: &sui.TransactionEffects{
				Status:  sui.ExecutionStatus{Status: status, Error: msg},
				Created: []sui.OwnedObjectRef{{Reference: sui.ObjectRef{ObjectID: "0xnew"}}},
			},
		}, nil
	}
}

func fastWaiter(t *testing.T, r sui.TransactionReader) *Waiter {
	return &Waiter{
		Reader:      r,
		Timeout:     time.Second,
		Interval:    time.Millisecond,
		MaxInterval: 4 * time.Millisecond,
		Logger:      zaptest.NewLogger(t),
	}
}

func TestWaitRetriesUntilFinalized(t *testing.T) {
	transient := func() (*sui.TransactionBlockResponse, error) { return nil, errors.New("connection reset") }
	pending := func() (*sui.TransactionBlockResponse, error) { return &sui.TransactionBlockResponse{Digest: "d"}, nil }
	r := &scriptedReader{steps: []func() (*sui.TransactionBlockResponse, error){
		notFound, transient, pending, finalized(sui.StatusSuccess, ""),
	}}

	effects, err := fastWaiter(t, r).Wait(context.Background(), "d")
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if len(effects.Created) != 1 || effects.Created[0].Reference.ObjectID != "0xnew" {
		t.Fatalf("unexpected effects %+v", effects)
	}
	if r.calls != 4 {
		t.Fatalf("expected 4 polls, got %d", r.calls)
	}
}

func TestWaitReportsExecutionFailure(t *testing.T) {
	r := &scriptedReader{steps: []func() (*sui.TransactionBlockResponse, error){
		finalized(sui.StatusFailure, "MoveAbort(0x2::journal::add_entry, 0)"),
	}}
	effects, err := fastWaiter(t, r).Wait(context.Background(), "d")
	if !errors.Is(err, ErrExecutionFailed) {
		t.Fatalf("expected ErrExecutionFailed, got %v", err)
	}
	if effects == nil {
		t.Fatalf("failed effects should still be returned")
	}
}

func TestWaitTimesOut(t *testing.T) {
	r := &scriptedReader{steps: []func() (*sui.TransactionBlockResponse, error){notFound}}
	w := fastWaiter(t, r)
	w.Timeout = 20 * time.Millisecond

	start := time.Now()
	_, err := w.Wait(context.Background(), "d")
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatalf("wait overran its timeout")
	}
}

func TestWaitHonorsCallerCancel(t *testing.T) {
	r := &scriptedReader{steps: []func() (*sui.TransactionBlockResponse, error){notFound}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := fastWaiter(t, r).Wait(ctx, "d")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestWaitReturnsOtherRPCErrors(t *testing.T) {
	boom := func() (*sui.TransactionBlockResponse, error) {
		return nil, &sui.RPCError{Code: -32602, Message: "invalid digest"}
	}
	r := &scriptedReader{steps: []func() (*sui.TransactionBlockResponse, error){boom}}
	_, err := fastWaiter(t, r).Wait(context.Background(), "d")
	var rpcErr *sui.RPCError
	if !errors.As(err, &rpcErr) {
		t.Fatalf("expected rpc error, got %v", err)
	}
	if r.calls != 1 {
		t.Fatalf("expected no retry, got %d polls", r.calls)
	}
}
