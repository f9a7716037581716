// Package txn describes programmable transactions: a list of inputs and the
// commands that consume them. Nothing here signs or submits.
package txn

import (
	"errors"
	"fmt"
)

// ClockObjectID is the platform's shared clock object.
const ClockObjectID = "0x6"

// InputKind distinguishes pure values from object references.
type InputKind string

const (
	InputPure   InputKind = "pure"
	InputObject InputKind = "object"
)

// Pure value types.
const (
	TypeString  = "string"
	TypeAddress = "address"
)

// Input is one transaction input.
type Input struct {
	Kind     InputKind `json:"kind"`
	Type     string    `json:"type,omitempty"`
	Value    string    `json:"value,omitempty"`
	ObjectID string    `json:"objectId,omitempty"`
}

// ArgumentKind says where an argument's value comes from.
type ArgumentKind string

const (
	ArgInput  ArgumentKind = "Input"
	ArgResult ArgumentKind = "Result"
)

// Argument refers to an input or to the result of an earlier command.
type Argument struct {
	Kind  ArgumentKind `json:"kind"`
	Index int          `json:"index"`
}

// MoveCall invokes a contract entry point.
type MoveCall struct {
	Target    string     `json:"target"`
	Arguments []Argument `json:"arguments"`
}

// TransferObjects sends objects to an address.
type TransferObjects struct {
	Objects []Argument `json:"objects"`
	Address Argument   `json:"address"`
}

// Command is one step. Exactly one field is set.
type Command struct {
	MoveCall        *MoveCall        `json:"MoveCall,omitempty"`
	TransferObjects *TransferObjects `json:"TransferObjects,omitempty"`
}

// Transaction is the unsigned description handed to a wallet.
type Transaction struct {
	Inputs   []Input   `json:"inputs"`
	Commands []Command `json:"commands"`
}

// New returns an empty transaction.
func New() *Transaction {
	return &Transaction{Inputs: []Input{}, Commands: []Command{}}
}

func (t *Transaction) addInput(in Input) Argument {
	t.Inputs = append(t.Inputs, in)
	return Argument{Kind: ArgInput, Index: len(t.Inputs) - 1}
}

// PureString adds a pure string input. The value is stored as given.
func (t *Transaction) PureString(v string) Argument {
	return t.addInput(Input{Kind: InputPure, Type: TypeString, Value: v})
}

// PureAddress adds a pure address input.
func (t *Transaction) PureAddress(addr string) Argument {
	return t.addInput(Input{Kind: InputPure, Type: TypeAddress, Value: addr})
}

// Object adds an object reference input.
func (t *Transaction) Object(id string) Argument {
	return t.addInput(Input{Kind: InputObject, ObjectID: id})
}

// Clock adds the shared clock object.
func (t *Transaction) Clock() Argument {
	return t.Object(ClockObjectID)
}

// MoveCall appends a call and returns a reference to its result.
func (t *Transaction) MoveCall(target string, args ...Argument) Argument {
	if args == nil {
		args = []Argument{}
	}
	t.Commands = append(t.Commands, Command{MoveCall: &MoveCall{Target: target, Arguments: args}})
	return Argument{Kind: ArgResult, Index: len(t.Commands) - 1}
}

// TransferObjects appends a transfer of objects to address.
func (t *Transaction) TransferObjects(objects []Argument, address Argument) {
	t.Commands = append(t.Commands, Command{TransferObjects: &TransferObjects{Objects: objects, Address: address}})
}

// ErrInvalid wraps structural problems found by Validate.
var ErrInvalid = errors.New("txn: invalid transaction")

// Validate checks that every argument refers to an existing input or an
// earlier command.
func (t *Transaction) Validate() error {
	if t == nil || len(t.Commands) == 0 {
		return fmt.Errorf("%w: no commands", ErrInvalid)
	}
	check := func(cmd int, a Argument) error {
		switch a.Kind {
		case ArgInput:
			if a.Index < 0 || a.Index >= len(t.Inputs) {
				return fmt.Errorf("%w: command %d: input %d out of range", ErrInvalid, cmd, a.Index)
			}
		case ArgResult:
			if a.Index < 0 || a.Index >= cmd {
				return fmt.Errorf("%w: command %d: result %d not yet produced", ErrInvalid, cmd, a.Index)
			}
		default:
			return fmt.Errorf("%w: command %d: unknown argument kind %q", ErrInvalid, cmd, a.Kind)
		}
		return nil
	}
	for i, c := range t.Commands {
		switch {
		case c.MoveCall != nil && c.TransferObjects == nil:
			if c.MoveCall.Target == "" {
				return fmt.Errorf("%w: command %d: empty target", ErrInvalid, i)
			}
			for _, a := range c.MoveCall.Arguments {
				if err := check(i, a); err != nil {
					return err
				}
			}
		case c.TransferObjects != nil && c.MoveCall == nil:
			if len(c.TransferObjects.Objects) == 0 {
				return fmt.Errorf("%w: command %d: nothing to transfer", ErrInvalid, i)
			}
			for _, a := range c.TransferObjects.Objects {
				if err := check(i, a); err != nil {
					return err
				}
			}
			if err := check(i, c.TransferObjects.Address); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: command %d: exactly one kind must be set", ErrInvalid, i)
		}
	}
	return nil
}

// Resolve returns the input an argument refers to.
func (t *Transaction) Resolve(a Argument) (Input, bool) {
	if a.Kind != ArgInput || a.Index < 0 || a.Index >= len(t.Inputs) {
		return Input{}, false
	}
	return t.Inputs[a.Index], true
}
