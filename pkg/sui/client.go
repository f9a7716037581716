package sui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ObjectReader is the read side of the object query service.
type ObjectReader interface {
	GetObject(ctx context.Context, id string, opts ObjectDataOptions) (*ObjectResponse, error)
	GetOwnedObjects(ctx context.Context, owner string, query ObjectResponseQuery, cursor *string, limit int) (*ObjectsPage, error)
}

// TransactionReader reads finalized transactions by digest.
type TransactionReader interface {
	GetTransactionBlock(ctx context.Context, digest string, opts TransactionBlockResponseOptions) (*TransactionBlockResponse, error)
}

// Config holds client configuration.
type Config struct {
	URL     string
	Timeout time.Duration

	// RequestsPerSecond caps outgoing calls; zero disables limiting.
	RequestsPerSecond float64
	Burst             int

	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client is a JSON-RPC client for a full node.
type Client struct {
	url        string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

var _ ObjectReader = (*Client)(nil)
var _ TransactionReader = (*Client)(nil)

// NewClient creates a client for the node at cfg.URL.
func NewClient(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("sui: RPC URL required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		url:        cfg.URL,
		httpClient: hc,
		logger:     logger,
	}
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return c, nil
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      string        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      string          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

// RPCError is an error object returned by the node.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("sui: rpc error %d: %s", e.Code, e.Message)
}

// IsNotFound reports whether err is the node telling us a transaction or
// object is not (yet) known.
func IsNotFound(err error) bool {
	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) {
		return false
	}
	msg := strings.ToLower(rpcErr.Message)
	return strings.Contains(msg, "could not find") || strings.Contains(msg, "not found")
}

// Call makes one RPC call and returns the raw result.
func (c *Client) Call(ctx context.Context, method string, params ...interface{}) (json.RawMessage, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("sui: rate limit: %w", err)
		}
	}
	if params == nil {
		params = []interface{}{}
	}
	req := rpcRequest{
		JSONRPC: "2.0",
		ID:      uuid.NewString(),
		Method:  method,
		Params:  params,
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("sui: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("sui: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sui: %s: %w", method, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("sui: read response: %w", err)
	}
	c.logger.Debug("rpc call",
		zap.String("method", method),
		zap.String("id", req.ID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)))

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sui: %s: unexpected status %s", method, resp.Status)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return nil, fmt.Errorf("sui: unmarshal response: %w", err)
	}
	if rpcResp.Error != nil {
		return nil, rpcResp.Error
	}
	return rpcResp.Result, nil
}

// GetObject returns the object with the given id. A missing object is not an
// error; the response carries Error instead of Data.
func (c *Client) GetObject(ctx context.Context, id string, opts ObjectDataOptions) (*ObjectResponse, error) {
	result, err := c.Call(ctx, "sui_getObject", id, opts)
	if err != nil {
		return nil, err
	}
	var out ObjectResponse
	if err := json.Unmarshal(result, &out); err != nil {
		return nil, fmt.Errorf("sui: decode object: %w", err)
	}
	return &out, nil
}

// GetOwnedObjects returns one page of objects owned by owner.
func (c *Client) GetOwnedObjects(ctx context.Context, owner string, query ObjectResponseQuery, cursor *string, limit int) (*ObjectsPage, error) {
	var lim interface{}
	if limit > 0 {
		lim = limit
	}
	result, err := c.Call(ctx, "suix_getOwnedObjects", owner, query, cursor, lim)
	if err != nil {
		return nil, err
	}
	var out ObjectsPage
	if err := json.Unmarshal(result, &out); err != nil {
		return nil, fmt.Errorf("sui: decode owned objects: %w", err)
	}
	return &out, nil
}

// GetTransactionBlock returns a transaction by digest.
func (c *Client) GetTransactionBlock(ctx context.Context, digest string, opts TransactionBlockResponseOptions) (*TransactionBlockResponse, error) {
	result, err := c.Call(ctx, "sui_getTransactionBlock", digest, opts)
	if err != nil {
		return nil, err
	}
	var out TransactionBlockResponse
	if err := json.Unmarshal(result, &out); err != nil {
		return nil, fmt.Errorf("sui: decode transaction: %w", err)
	}
	return &out, nil
}

// maxOwnedPages bounds cursor walking so a misbehaving node cannot keep a
// view loading forever.
const maxOwnedPages = 50

// ListOwnedObjects follows cursors until every matching object is returned.
func ListOwnedObjects(ctx context.Context, r ObjectReader, owner string, query ObjectResponseQuery) ([]ObjectResponse, error) {
	var (
		all    []ObjectResponse
		cursor *string
	)
	for page := 0; page < maxOwnedPages; page++ {
		res, err := r.GetOwnedObjects(ctx, owner, query, cursor, 0)
		if err != nil {
			return nil, err
		}
		all = append(all, res.Data...)
		if !res.HasNextPage || res.NextCursor == nil {
			return all, nil
		}
		cursor = res.NextCursor
	}
	return all, fmt.Errorf("sui: owned objects exceed %d pages", maxOwnedPages)
}
