// Package sui holds the JSON-RPC shapes and a client for the object chain the
// journal contract is deployed on.
package sui

import (
	"encoding/json"
	"fmt"
)

// ObjectDataOptions selects which parts of an object the node returns.
type ObjectDataOptions struct {
	ShowType                bool `json:"showType,omitempty"`
	ShowOwner               bool `json:"showOwner,omitempty"`
	ShowPreviousTransaction bool `json:"showPreviousTransaction,omitempty"`
	ShowDisplay             bool `json:"showDisplay,omitempty"`
	ShowContent             bool `json:"showContent,omitempty"`
	ShowBcs                 bool `json:"showBcs,omitempty"`
	ShowStorageRebate       bool `json:"showStorageRebate,omitempty"`
}

// ObjectFilter restricts owned-object queries. Only the struct type filter is
// used by the journal views.
type ObjectFilter struct {
	StructType string `json:"StructType,omitempty"`
}

// ObjectResponseQuery is the second parameter of suix_getOwnedObjects.
type ObjectResponseQuery struct {
	Filter  *ObjectFilter      `json:"filter,omitempty"`
	Options *ObjectDataOptions `json:"options,omitempty"`
}

// ObjectResponse wraps either object data or an error describing why the
// object could not be returned (e.g. it does not exist).
type ObjectResponse struct {
	Data  *ObjectData          `json:"data,omitempty"`
	Error *ObjectResponseError `json:"error,omitempty"`
}

// ObjectResponseError is the per-object error of sui_getObject.
type ObjectResponseError struct {
	Code     string `json:"code"`
	ObjectID string `json:"object_id,omitempty"`
}

func (e *ObjectResponseError) Error() string {
	if e.ObjectID == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.ObjectID)
}

// ObjectData is the current state of one object.
type ObjectData struct {
	ObjectID string      `json:"objectId"`
	Version  string      `json:"version"`
	Digest   string      `json:"digest"`
	Type     string      `json:"type,omitempty"`
	Owner    *Owner      `json:"owner,omitempty"`
	Content  *ParsedData `json:"content,omitempty"`
}

// DataTypeMoveObject marks content decoded from a Move struct.
const DataTypeMoveObject = "moveObject"

// ParsedData is the decoded content of an object. Fields is kept raw so the
// caller decodes it against its own contract schema.
type ParsedData struct {
	DataType          string          `json:"dataType"`
	Type              string          `json:"type,omitempty"`
	HasPublicTransfer bool            `json:"hasPublicTransfer,omitempty"`
	Fields            json.RawMessage `json:"fields,omitempty"`
}

// ObjectsPage is one page of suix_getOwnedObjects.
type ObjectsPage struct {
	Data        []ObjectResponse `json:"data"`
	NextCursor  *string          `json:"nextCursor"`
	HasNextPage bool             `json:"hasNextPage"`
}

// Owner is the object ownership union. Exactly one of the fields is set.
type Owner struct {
	AddressOwner string `json:"AddressOwner,omitempty"`
	ObjectOwner  string `json:"ObjectOwner,omitempty"`
	Shared       *struct {
		InitialSharedVersion json.Number `json:"initial_shared_version"`
	} `json:"Shared,omitempty"`
	Immutable bool `json:"-"`
}

// UnmarshalJSON accepts both the object form and the bare "Immutable" string.
func (o *Owner) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if s != "Immutable" {
			return fmt.Errorf("sui: unknown owner %q", s)
		}
		*o = Owner{Immutable: true}
		return nil
	}
	type plain Owner
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*o = Owner(p)
	return nil
}

// MarshalJSON mirrors UnmarshalJSON.
func (o Owner) MarshalJSON() ([]byte, error) {
	if o.Immutable {
		return []byte(`"Immutable"`), nil
	}
	type plain Owner
	return json.Marshal(plain(o))
}

// TransactionBlockResponseOptions selects the parts of a transaction returned
// by sui_getTransactionBlock.
type TransactionBlockResponseOptions struct {
	ShowInput          bool `json:"showInput,omitempty"`
	ShowRawInput       bool `json:"showRawInput,omitempty"`
	ShowEffects        bool `json:"showEffects,omitempty"`
	ShowEvents         bool `json:"showEvents,omitempty"`
	ShowObjectChanges  bool `json:"showObjectChanges,omitempty"`
	ShowBalanceChanges bool `json:"showBalanceChanges,omitempty"`
}

// TransactionBlockResponse is a finalized transaction.
type TransactionBlockResponse struct {
	Digest      string              `json:"digest"`
	Effects     *TransactionEffects `json:"effects,omitempty"`
	Checkpoint  string              `json:"checkpoint,omitempty"`
	TimestampMs string              `json:"timestampMs,omitempty"`
}

// Execution status values.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// ExecutionStatus reports whether the transaction's commands succeeded.
type ExecutionStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// TransactionEffects lists the objects a transaction touched.
type TransactionEffects struct {
	Status            ExecutionStatus  `json:"status"`
	TransactionDigest string           `json:"transactionDigest"`
	Created           []OwnedObjectRef `json:"created,omitempty"`
	Mutated           []OwnedObjectRef `json:"mutated,omitempty"`
}

// OwnedObjectRef pairs an object reference with its owner after execution.
type OwnedObjectRef struct {
	Owner     Owner     `json:"owner"`
	Reference ObjectRef `json:"reference"`
}

// ObjectRef identifies one version of an object.
type ObjectRef struct {
	ObjectID string      `json:"objectId"`
	Version  json.Number `json:"version"`
	Digest   string      `json:"digest"`
}
