// Package sandbox is an in-process stand-in for a full node and wallet. It
// executes the journal contract's two entry points against objects kept on
// disk, answers the same queries as the RPC client, and signs as any
// configured account.
package sandbox

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/peterbourgon/diskv/v3"
	"go.uber.org/zap"

	"tableflip.dev/chainjournal/pkg/journal"
	"tableflip.dev/chainjournal/pkg/sui"
	"tableflip.dev/chainjournal/pkg/wallet"
)

// DefaultPackageID is the journal package address inside the sandbox.
const DefaultPackageID = "0x00000000000000000000000000000000000000000000000000000000000005ad"

// DefaultAccount is the account the sandbox lists when none are configured.
const DefaultAccount = "0x000000000000000000000000000000000000000000000000000000000000a11c"

const (
	objectsBucket = "objects"
	txsBucket     = "txs"
	defaultLimit  = 50
)

// Config configures a sandbox chain.
type Config struct {
	BasePath  string
	PackageID string
	Accounts  []string
	// FinalityPolls is how many reads of a new digest answer "not found"
	// before the transaction becomes visible.
	FinalityPolls int
	Now           func() time.Time
	Logger        *zap.Logger
}

// Chain is the sandbox. It is safe for concurrent use.
type Chain struct {
	d         *diskv.Diskv
	basePath  string
	packageID string
	accounts  []string
	finality  int
	now       func() time.Time
	logger    *zap.Logger

	mu    sync.Mutex
	polls map[string]int
	nonce uint64
}

var (
	_ sui.ObjectReader      = (*Chain)(nil)
	_ sui.TransactionReader = (*Chain)(nil)
	_ wallet.Executor       = (*Chain)(nil)
	_ wallet.AccountLister  = (*Chain)(nil)
)

// Open creates or reopens a sandbox rooted at cfg.BasePath.
func Open(cfg Config) (*Chain, error) {
	if cfg.BasePath == "" {
		return nil, errors.New("sandbox: base path required")
	}
	if err := os.MkdirAll(cfg.BasePath, 0o755); err != nil {
		return nil, fmt.Errorf("sandbox: ensure base path: %w", err)
	}
	c := &Chain{
		d: diskv.New(diskv.Options{
			BasePath:          cfg.BasePath,
			AdvancedTransform: keyToPathTransform,
			InverseTransform:  pathToKeyTransform,
			CacheSizeMax:      1024 * 1024, // 1MB
		}),
		basePath:  cfg.BasePath,
		packageID: cfg.PackageID,
		accounts:  cfg.Accounts,
		finality:  cfg.FinalityPolls,
		now:       cfg.Now,
		logger:    cfg.Logger,
		polls:     make(map[string]int),
	}
	if c.packageID == "" {
		c.packageID = DefaultPackageID
	}
	if len(c.accounts) == 0 {
		c.accounts = []string{DefaultAccount}
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c, nil
}

// PackageID is the journal package the sandbox executes.
func (c *Chain) PackageID() string {
	return c.packageID
}

// BasePath is where objects are kept.
func (c *Chain) BasePath() string {
	return c.basePath
}

// Accounts lists the accounts the sandbox signs for.
func (c *Chain) Accounts(_ context.Context) ([]wallet.Account, error) {
	out := make([]wallet.Account, 0, len(c.accounts))
	for i, a := range c.accounts {
		out = append(out, wallet.Account{Address: journal.NormalizeAddress(a), Label: fmt.Sprintf("sandbox-%d", i)})
	}
	return out, nil
}

// storedObject is the on-disk record of one journal object.
type storedObject struct {
	ID      string        `json:"id"`
	Type    string        `json:"type"`
	Version uint64        `json:"version"`
	Digest  string        `json:"digest"`
	Owner   string        `json:"owner"`
	Seq     int64         `json:"seq"`
	Title   string        `json:"title"`
	Entries []storedEntry `json:"entries"`
}

type storedEntry struct {
	Content    string `json:"content"`
	CreateAtMs int64  `json:"create_at_ms"`
}

func (o *storedObject) fields(packageID string) json.RawMessage {
	type entryFields struct {
		Content    string `json:"content"`
		CreateAtMs string `json:"create_at_ms"`
	}
	type wrapped struct {
		Type   string      `json:"type"`
		Fields entryFields `json:"fields"`
	}
	entries := make([]wrapped, 0, len(o.Entries))
	for _, e := range o.Entries {
		entries = append(entries, wrapped{
			Type:   fmt.Sprintf("%s::%s::Entry", packageID, journal.Module),
			Fields: entryFields{Content: e.Content, CreateAtMs: fmt.Sprintf("%d", e.CreateAtMs)},
		})
	}
	raw, _ := json.Marshal(map[string]interface{}{
		"id":      map[string]string{"id": o.ID},
		"owner":   o.Owner,
		"title":   o.Title,
		"entries": entries,
	})
	return raw
}

func (o *storedObject) data(packageID string, opts sui.ObjectDataOptions) *sui.ObjectData {
	d := &sui.ObjectData{
		ObjectID: o.ID,
		Version:  fmt.Sprintf("%d", o.Version),
		Digest:   o.Digest,
	}
	if opts.ShowType {
		d.Type = o.Type
	}
	if opts.ShowOwner {
		d.Owner = &sui.Owner{AddressOwner: o.Owner}
	}
	if opts.ShowContent {
		d.Content = &sui.ParsedData{
			DataType:          sui.DataTypeMoveObject,
			Type:              o.Type,
			HasPublicTransfer: true,
			Fields:            o.fields(packageID),
		}
	}
	return d
}

func (c *Chain) readObject(id string) (*storedObject, error) {
	raw, err := c.d.Read(objectsBucket + "-" + id)
	if err != nil {
		return nil, err
	}
	var o storedObject
	if err := json.Unmarshal(raw, &o); err != nil {
		return nil, fmt.Errorf("sandbox: decode object %s: %w", id, err)
	}
	return &o, nil
}

func (c *Chain) writeObject(o *storedObject) error {
	raw, err := json.Marshal(o)
	if err != nil {
		return err
	}
	return c.d.Write(objectsBucket+"-"+o.ID, raw)
}

func (c *Chain) allObjects(ctx context.Context) []*storedObject {
	var all []*storedObject
	for key := range c.d.KeysPrefix(objectsBucket+"-", ctx.Done()) {
		pk := keyToPathTransform(key)
		o, err := c.readObject(pk.FileName)
		if err != nil {
			c.logger.Warn("skipping unreadable object", zap.String("key", key), zap.Error(err))
			continue
		}
		all = append(all, o)
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Seq == all[j].Seq {
			return all[i].ID < all[j].ID
		}
		return all[i].Seq < all[j].Seq
	})
	return all
}

// GetObject implements sui.ObjectReader.
func (c *Chain) GetObject(_ context.Context, id string, opts sui.ObjectDataOptions) (*sui.ObjectResponse, error) {
	key := journal.NormalizeAddress(id)
	if !c.d.Has(objectsBucket + "-" + key) {
		return &sui.ObjectResponse{Error: &sui.ObjectResponseError{Code: "notExists", ObjectID: id}}, nil
	}
	o, err := c.readObject(key)
	if err != nil {
		return nil, err
	}
	return &sui.ObjectResponse{Data: o.data(c.packageID, opts)}, nil
}

// GetOwnedObjects implements sui.ObjectReader. Objects come back in creation
// order; the cursor is the last object id of the previous page.
func (c *Chain) GetOwnedObjects(ctx context.Context, owner string, query sui.ObjectResponseQuery, cursor *string, limit int) (*sui.ObjectsPage, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	opts := sui.ObjectDataOptions{}
	if query.Options != nil {
		opts = *query.Options
	}
	var matched []*storedObject
	for _, o := range c.allObjects(ctx) {
		if !journal.SameAddress(o.Owner, owner) {
			continue
		}
		if query.Filter != nil && query.Filter.StructType != "" && query.Filter.StructType != o.Type {
			continue
		}
		matched = append(matched, o)
	}
	start := 0
	if cursor != nil {
		for i, o := range matched {
			if o.ID == *cursor {
				start = i + 1
				break
			}
		}
	}
	page := &sui.ObjectsPage{Data: []sui.ObjectResponse{}}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	for _, o := range matched[start:end] {
		page.Data = append(page.Data, sui.ObjectResponse{Data: o.data(c.packageID, opts)})
	}
	if end < len(matched) {
		next := matched[end-1].ID
		page.NextCursor = &next
		page.HasNextPage = true
	}
	return page, nil
}

func notFound(digest string) error {
	return &sui.RPCError{Code: -32602, Message: fmt.Sprintf("Could not find the referenced transaction [TransactionDigest(%s)].", digest)}
}

// GetTransactionBlock implements sui.TransactionReader. A fresh digest stays
// invisible for FinalityPolls reads.
func (c *Chain) GetTransactionBlock(_ context.Context, digest string, opts sui.TransactionBlockResponseOptions) (*sui.TransactionBlockResponse, error) {
	c.mu.Lock()
	if c.polls[digest] < c.finality {
		c.polls[digest]++
		c.mu.Unlock()
		return nil, notFound(digest)
	}
	c.mu.Unlock()

	raw, err := c.d.Read(txsBucket + "-" + digest)
	if err != nil {
		return nil, notFound(digest)
	}
	var res sui.TransactionBlockResponse
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("sandbox: decode transaction %s: %w", digest, err)
	}
	if !opts.ShowEffects {
		res.Effects = nil
	}
	return &res, nil
}

func (c *Chain) nextNonce() uint64 {
	c.nonce++
	return c.nonce
}

func keyToPathTransform(s string) *diskv.PathKey {
	parts := strings.Split(s, "-")
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1],
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return fmt.Sprintf("%s-%s", strings.Join(pathKey.Path, "-"), pathKey.FileName)
}

func hexID(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}
