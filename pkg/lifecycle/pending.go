// Package lifecycle tracks one signed action from user trigger to finality.
package lifecycle

import "fmt"

// Intent names what a pending transaction is for.
type Intent int

const (
	IntentCreate Intent = iota + 1
	IntentAddEntry
)

func (i Intent) String() string {
	switch i {
	case IntentCreate:
		return "create"
	case IntentAddEntry:
		return "add-entry"
	default:
		return fmt.Sprintf("intent(%d)", int(i))
	}
}

// Phase is a lifecycle state.
type Phase int

const (
	Idle Phase = iota
	Signing
	Submitted
	Confirming
	Done
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Signing:
		return "signing"
	case Submitted:
		return "submitted"
	case Confirming:
		return "confirming"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Pending is the per-view state of an in-flight action. The zero value is
// Idle.
type Pending struct {
	Intent Intent
	Phase  Phase
	Digest string
	Err    error
}

// Busy reports whether an action is in flight. Views disable input while
// Busy.
func (p Pending) Busy() bool {
	switch p.Phase {
	case Signing, Submitted, Confirming:
		return true
	}
	return false
}

// Begin starts a new action. It returns false without changing state when
// another action is in flight.
func (p *Pending) Begin(intent Intent) bool {
	if p.Busy() {
		return false
	}
	*p = Pending{Intent: intent, Phase: Signing}
	return true
}

// Submitted records the digest the wallet returned.
func (p *Pending) Submitted(digest string) bool {
	if p.Phase != Signing {
		return false
	}
	p.Phase = Submitted
	p.Digest = digest
	return true
}

// Confirming marks the start of the finality wait.
func (p *Pending) Confirming() bool {
	if p.Phase != Submitted {
		return false
	}
	p.Phase = Confirming
	return true
}

// Done marks success.
func (p *Pending) Done() bool {
	if p.Phase != Confirming {
		return false
	}
	p.Phase = Done
	return true
}

// Fail records err. Only in-flight actions can fail.
func (p *Pending) Fail(err error) bool {
	if !p.Busy() {
		return false
	}
	p.Phase = Failed
	p.Err = err
	return true
}

// Reset returns to Idle, keeping nothing.
func (p *Pending) Reset() {
	*p = Pending{}
}

// Describe renders the state for a status line. Idle renders empty.
func (p Pending) Describe() string {
	switch p.Phase {
	case Signing:
		return "Waiting for wallet approval…"
	case Submitted:
		return "Submitted " + shortDigest(p.Digest)
	case Confirming:
		return "Confirming " + shortDigest(p.Digest) + "…"
	case Done:
		return "Confirmed " + shortDigest(p.Digest)
	case Failed:
		if p.Err != nil {
			return "Failed: " + p.Err.Error()
		}
		return "Failed"
	}
	return ""
}

func shortDigest(d string) string {
	if len(d) <= 12 {
		return d
	}
	return d[:6] + "…" + d[len(d)-4:]
}
