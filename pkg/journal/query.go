package journal

import (
	"context"
	"errors"

	"tableflip.dev/chainjournal/pkg/sui"
)

// ErrNotFound is returned by Fetch when the query succeeded but no object
// exists under the id.
var ErrNotFound = errors.New("journal: not found")

// Fetch reads one journal. A recognized object that is not a Move object
// yields a Journal with only the id set, so views can still render it.
func Fetch(ctx context.Context, r sui.ObjectReader, id string) (*Journal, error) {
	res, err := r.GetObject(ctx, id, sui.ObjectDataOptions{ShowOwner: true, ShowContent: true})
	if err != nil {
		return nil, err
	}
	if res == nil || res.Data == nil {
		return nil, ErrNotFound
	}
	if j := Decode(res.Data); j != nil {
		return j, nil
	}
	return &Journal{ID: res.Data.ObjectID, Entries: []Entry{}}, nil
}

// ListOwned returns summaries of every journal owned by owner, in the order
// the node returned them.
func ListOwned(ctx context.Context, r sui.ObjectReader, owner, packageID string) ([]Summary, error) {
	query := sui.ObjectResponseQuery{
		Filter:  &sui.ObjectFilter{StructType: StructType(packageID)},
		Options: &sui.ObjectDataOptions{ShowType: true, ShowContent: true},
	}
	objs, err := sui.ListOwnedObjects(ctx, r, owner, query)
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(objs))
	for _, o := range objs {
		if s, ok := Summarize(o.Data); ok {
			out = append(out, s)
		}
	}
	return out, nil
}
