package sandbox

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"

	"tableflip.dev/chainjournal/pkg/journal"
	"tableflip.dev/chainjournal/pkg/sui"
	"tableflip.dev/chainjournal/pkg/txn"
	"tableflip.dev/chainjournal/pkg/wallet"
)

// ErrUnknownTarget is returned for calls into anything but the journal
// package.
var ErrUnknownTarget = errors.New("sandbox: unknown call target")

// abort is an execution failure. The transaction is recorded with failure
// status and no state changes.
type abort struct {
	msg string
}

func (a *abort) Error() string { return a.msg }

func abortf(format string, args ...interface{}) error {
	return &abort{msg: fmt.Sprintf(format, args...)}
}

// execution holds the staged writes of one transaction.
type execution struct {
	c       *Chain
	tx      *txn.Transaction
	sender  string
	digest  string
	seed    []byte
	nowMs   int64
	results map[int]string
	// moved is the set of created object ids still awaiting transfer.
	moved   map[string]bool
	created []*storedObject
	mutated []*storedObject
}

// SignAndExecute implements wallet.Executor. Requests that cannot be
// submitted return an error. Requests that execute and abort are recorded
// with failure status and still return a digest.
func (c *Chain) SignAndExecute(ctx context.Context, req wallet.Request) (wallet.Result, error) {
	if req.Account == "" {
		return wallet.Result{}, wallet.ErrNotConnected
	}
	if !c.signsFor(req.Account) {
		return wallet.Result{}, fmt.Errorf("%w: sandbox does not hold a key for %s", wallet.ErrRejected, req.Account)
	}
	if err := req.Transaction.Validate(); err != nil {
		return wallet.Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return wallet.Result{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	raw, err := json.Marshal(req)
	if err != nil {
		return wallet.Result{}, err
	}
	nonce := make([]byte, 16)
	binary.BigEndian.PutUint64(nonce, c.nextNonce())
	binary.BigEndian.PutUint64(nonce[8:], uint64(c.now().UnixNano()))
	sum := blake2b.Sum256(append(raw, nonce...))
	digest := base58.Encode(sum[:])

	ex := &execution{
		c:       c,
		tx:      req.Transaction,
		sender:  journal.NormalizeAddress(req.Account),
		digest:  digest,
		seed:    sum[:],
		nowMs:   c.now().UnixMilli(),
		results: map[int]string{},
		moved:   map[string]bool{},
	}

	effects := &sui.TransactionEffects{
		Status:            sui.ExecutionStatus{Status: sui.StatusSuccess},
		TransactionDigest: digest,
	}
	runErr := ex.run()
	var ab *abort
	switch {
	case errors.As(runErr, &ab):
		effects.Status = sui.ExecutionStatus{Status: sui.StatusFailure, Error: ab.msg}
	case runErr != nil:
		return wallet.Result{}, runErr
	default:
		for _, o := range ex.created {
			if err := c.writeObject(o); err != nil {
				return wallet.Result{}, err
			}
			effects.Created = append(effects.Created, ex.ref(o))
		}
		for _, o := range ex.mutated {
			if err := c.writeObject(o); err != nil {
				return wallet.Result{}, err
			}
			effects.Mutated = append(effects.Mutated, ex.ref(o))
		}
	}

	record, err := json.Marshal(&sui.TransactionBlockResponse{
		Digest:      digest,
		Effects:     effects,
		TimestampMs: fmt.Sprintf("%d", ex.nowMs),
	})
	if err != nil {
		return wallet.Result{}, err
	}
	if err := c.d.Write(txsBucket+"-"+digest, record); err != nil {
		return wallet.Result{}, err
	}
	c.logger.Debug("executed",
		zap.String("digest", digest),
		zap.String("sender", ex.sender),
		zap.String("status", effects.Status.Status),
		zap.String("error", effects.Status.Error),
	)
	return wallet.Result{Digest: digest}, nil
}

func (c *Chain) signsFor(account string) bool {
	for _, a := range c.accounts {
		if journal.SameAddress(a, account) {
			return true
		}
	}
	return false
}

func (ex *execution) ref(o *storedObject) sui.OwnedObjectRef {
	return sui.OwnedObjectRef{
		Owner: sui.Owner{AddressOwner: o.Owner},
		Reference: sui.ObjectRef{
			ObjectID: o.ID,
			Version:  json.Number(fmt.Sprintf("%d", o.Version)),
			Digest:   o.Digest,
		},
	}
}

func (ex *execution) run() error {
	for i, cmd := range ex.tx.Commands {
		var err error
		switch {
		case cmd.MoveCall != nil:
			err = ex.moveCall(i, cmd.MoveCall)
		case cmd.TransferObjects != nil:
			err = ex.transfer(cmd.TransferObjects)
		}
		if err != nil {
			return err
		}
	}
	for id, pending := range ex.moved {
		if pending {
			return abortf("UnusedValueWithoutDrop { result_idx: %s }", id)
		}
	}
	return nil
}

func (ex *execution) pure(a txn.Argument, typ string) (string, error) {
	in, ok := ex.tx.Resolve(a)
	if !ok || in.Kind != txn.InputPure || in.Type != typ {
		return "", abortf("CommandArgumentError { kind: TypeMismatch, expected: %s }", typ)
	}
	return in.Value, nil
}

func (ex *execution) object(a txn.Argument) (string, error) {
	if a.Kind == txn.ArgResult {
		id, ok := ex.results[a.Index]
		if !ok {
			return "", abortf("CommandArgumentError { kind: InvalidResultArity, result: %d }", a.Index)
		}
		return id, nil
	}
	in, ok := ex.tx.Resolve(a)
	if !ok || in.Kind != txn.InputObject {
		return "", abortf("CommandArgumentError { kind: TypeMismatch, expected: object }")
	}
	return in.ObjectID, nil
}

func (ex *execution) moveCall(idx int, call *txn.MoveCall) error {
	switch call.Target {
	case journal.Target(ex.c.packageID, journal.FuncNewJournal):
		return ex.newJournal(idx, call.Arguments)
	case journal.Target(ex.c.packageID, journal.FuncAddEntry):
		return ex.addEntry(call.Arguments)
	}
	return fmt.Errorf("%w: %s", ErrUnknownTarget, call.Target)
}

func (ex *execution) objectID(n int) string {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(n))
	sum := blake2b.Sum256(append(append([]byte{}, ex.seed...), b...))
	return hexID(sum[:])
}

func (ex *execution) newJournal(idx int, args []txn.Argument) error {
	if len(args) != 1 {
		return abortf("CommandArgumentError { kind: ArityMismatch, function: %s }", journal.FuncNewJournal)
	}
	title, err := ex.pure(args[0], txn.TypeString)
	if err != nil {
		return err
	}
	o := &storedObject{
		ID:      ex.objectID(len(ex.created)),
		Type:    journal.StructType(ex.c.packageID),
		Version: 1,
		Digest:  ex.digest,
		Owner:   ex.sender,
		Seq:     ex.c.now().UnixNano() + int64(ex.c.nonce),
		Title:   title,
		Entries: []storedEntry{},
	}
	ex.created = append(ex.created, o)
	ex.results[idx] = o.ID
	ex.moved[o.ID] = true
	return nil
}

func (ex *execution) transfer(t *txn.TransferObjects) error {
	recipient, err := ex.pure(t.Address, txn.TypeAddress)
	if err != nil {
		return err
	}
	for _, a := range t.Objects {
		id, err := ex.object(a)
		if err != nil {
			return err
		}
		if _, ok := ex.moved[id]; !ok {
			return abortf("InvalidTransferObject { object: %s }", id)
		}
		for _, o := range ex.created {
			if o.ID == id {
				o.Owner = journal.NormalizeAddress(recipient)
			}
		}
		ex.moved[id] = false
	}
	return nil
}

func (ex *execution) addEntry(args []txn.Argument) error {
	if len(args) != 3 {
		return abortf("CommandArgumentError { kind: ArityMismatch, function: %s }", journal.FuncAddEntry)
	}
	id, err := ex.object(args[0])
	if err != nil {
		return err
	}
	content, err := ex.pure(args[1], txn.TypeString)
	if err != nil {
		return err
	}
	clock, err := ex.object(args[2])
	if err != nil {
		return err
	}
	if !journal.SameAddress(clock, txn.ClockObjectID) {
		return abortf("CommandArgumentError { kind: TypeMismatch, expected: 0x2::clock::Clock }")
	}

	key := journal.NormalizeAddress(id)
	if !ex.c.d.Has(objectsBucket + "-" + key) {
		return fmt.Errorf("sandbox: object %s not found", id)
	}
	o, err := ex.c.readObject(key)
	if err != nil {
		return err
	}
	if !journal.SameAddress(o.Owner, ex.sender) {
		return fmt.Errorf("%w: object %s is not owned by %s", wallet.ErrRejected, id, ex.sender)
	}
	o.Entries = append(o.Entries, storedEntry{Content: content, CreateAtMs: ex.nowMs})
	o.Version++
	o.Digest = ex.digest
	ex.mutated = append(ex.mutated, o)
	return nil
}
