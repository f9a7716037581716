package lifecycle

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"tableflip.dev/chainjournal/pkg/sui"
	"tableflip.dev/chainjournal/pkg/txn"
	"tableflip.dev/chainjournal/pkg/wallet"
)

func TestPendingTransitions(t *testing.T) {
	var p Pending
	if p.Phase != Idle || p.Busy() {
		t.Fatalf("zero value must be idle")
	}
	if p.Submitted("d") || p.Confirming() || p.Done() || p.Fail(errors.New("x")) {
		t.Fatalf("transitions from idle must be refused")
	}
	if !p.Begin(IntentCreate) {
		t.Fatalf("begin from idle")
	}
	if p.Begin(IntentAddEntry) {
		t.Fatalf("begin while signing must be refused")
	}
	if p.Confirming() {
		t.Fatalf("confirming before submitted must be refused")
	}
	if !p.Submitted("d") || p.Digest != "d" {
		t.Fatalf("submitted: %+v", p)
	}
	if !p.Confirming() || !p.Busy() {
		t.Fatalf("confirming: %+v", p)
	}
	if !p.Done() || p.Busy() {
		t.Fatalf("done: %+v", p)
	}
	if !p.Begin(IntentAddEntry) || p.Digest != "" || p.Intent != IntentAddEntry {
		t.Fatalf("begin after done must start fresh: %+v", p)
	}
	boom := errors.New("boom")
	if !p.Fail(boom) || p.Phase != Failed || p.Err != boom {
		t.Fatalf("fail: %+v", p)
	}
	if !p.Begin(IntentAddEntry) || p.Err != nil {
		t.Fatalf("begin after failure must clear error: %+v", p)
	}
	p.Reset()
	if p != (Pending{}) {
		t.Fatalf("reset: %+v", p)
	}
}

type fakeSigner struct {
	res wallet.Result
	err error
	n   int
}

func (f *fakeSigner) SignAndExecute(_ context.Context, _ *txn.Transaction) (wallet.Result, error) {
	f.n++
	return f.res, f.err
}

type fakeConfirmer struct {
	effects *sui.TransactionEffects
	err     error
	digest  string
}

func (f *fakeConfirmer) Wait(_ context.Context, digest string) (*sui.TransactionEffects, error) {
	f.digest = digest
	return f.effects, f.err
}

func created(id string) *sui.TransactionEffects {
	return &sui.TransactionEffects{
		Status:  sui.ExecutionStatus{Status: sui.StatusSuccess},
		Created: []sui.OwnedObjectRef{{Reference: sui.ObjectRef{ObjectID: id}}},
	}
}

func TestRunnerHappyPath(t *testing.T) {
	var phases []Phase
	conf := &fakeConfirmer{effects: created("0xnew")}
	r := &Runner{
		Signer:    &fakeSigner{res: wallet.Result{Digest: "d1"}},
		Confirmer: conf,
		Observe:   func(p Pending) { phases = append(phases, p.Phase) },
	}
	var p Pending
	effects, err := r.Run(context.Background(), &p, IntentCreate, txn.BuildCreateJournal("0x2", "t", "0xa"))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	id, err := CreatedObjectID(effects)
	if err != nil || id != "0xnew" {
		t.Fatalf("created id %q, %v", id, err)
	}
	if conf.digest != "d1" {
		t.Fatalf("confirmer got digest %q", conf.digest)
	}
	want := []Phase{Signing, Submitted, Confirming, Done}
	if !reflect.DeepEqual(phases, want) {
		t.Fatalf("expected phases %v, got %v", want, phases)
	}
}

func TestRunnerSigningFailure(t *testing.T) {
	conf := &fakeConfirmer{}
	r := &Runner{Signer: &fakeSigner{err: wallet.ErrRejected}, Confirmer: conf}
	var p Pending
	_, err := r.Run(context.Background(), &p, IntentAddEntry, txn.BuildAddEntry("0x2", "0xj", "x"))
	if !errors.Is(err, wallet.ErrRejected) {
		t.Fatalf("expected rejection, got %v", err)
	}
	if p.Phase != Failed {
		t.Fatalf("expected failed, got %v", p.Phase)
	}
	if conf.digest != "" {
		t.Fatalf("confirmation must not start after signing failure")
	}
}

func TestRunnerCreateWithoutCreatedObject(t *testing.T) {
	r := &Runner{
		Signer:    &fakeSigner{res: wallet.Result{Digest: "d"}},
		Confirmer: &fakeConfirmer{effects: &sui.TransactionEffects{Status: sui.ExecutionStatus{Status: sui.StatusSuccess}}},
	}
	var p Pending
	_, err := r.Run(context.Background(), &p, IntentCreate, txn.BuildCreateJournal("0x2", "t", "0xa"))
	if !errors.Is(err, ErrNoCreatedObject) {
		t.Fatalf("expected ErrNoCreatedObject, got %v", err)
	}
	if p.Phase != Failed {
		t.Fatalf("expected failed, got %v", p.Phase)
	}
}

func TestRunnerRefusesReentry(t *testing.T) {
	signer := &fakeSigner{res: wallet.Result{Digest: "d"}}
	r := &Runner{Signer: signer, Confirmer: &fakeConfirmer{effects: created("0x1")}}
	p := Pending{Phase: Confirming}
	if _, err := r.Run(context.Background(), &p, IntentAddEntry, txn.BuildAddEntry("0x2", "0xj", "x")); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	if signer.n != 0 {
		t.Fatalf("signer must not be called while busy")
	}
}

func TestPendingDescribe(t *testing.T) {
	p := Pending{}
	if p.Describe() != "" {
		t.Fatalf("idle should render empty")
	}
	p.Begin(IntentCreate)
	p.Submitted("9mWkhxQLdpRCxVzW3eCvT6vK1aSSzUYtxrfuWVhAbCde")
	if got := p.Describe(); got != "Submitted 9mWkhx…bCde" {
		t.Fatalf("unexpected %q", got)
	}
	p.Fail(errors.New("user rejected"))
	if got := p.Describe(); got != "Failed: user rejected" {
		t.Fatalf("unexpected %q", got)
	}
}
