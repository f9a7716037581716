package wallet

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

	"go.uber.org/zap"
)

// Bridge talks to an external signer over HTTP. The signer owns the keys and
// prompts the user; the bridge only forwards requests.
type Bridge struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

var _ Executor = (*Bridge)(nil)
var _ AccountLister = (*Bridge)(nil)

// BridgeConfig configures a Bridge.
type BridgeConfig struct {
	URL string
	// Timeout bounds one request. Signing waits on a human, so the default
	// is generous.
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewBridge creates a bridge client.
func NewBridge(cfg BridgeConfig) (*Bridge, error) {
	if cfg.URL == "" {
		return nil, errors.New("wallet: bridge URL required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Minute
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bridge{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

type bridgeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CodeRejected is the error code a signer returns when the user declines.
const CodeRejected = "rejected"

func (b *Bridge) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("wallet: marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("wallet: create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("wallet: %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("wallet: read response: %w", err)
	}

	var envelope struct {
		Error *bridgeError `json:"error"`
	}
	_ = json.Unmarshal(raw, &envelope)

	if resp.StatusCode == http.StatusForbidden || (envelope.Error != nil && envelope.Error.Code == CodeRejected) {
		msg := "declined"
		if envelope.Error != nil && envelope.Error.Message != "" {
			msg = envelope.Error.Message
		}
		return fmt.Errorf("%w: %s", ErrRejected, msg)
	}
	if envelope.Error != nil {
		return fmt.Errorf("wallet: %s: %s", envelope.Error.Code, envelope.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("wallet: %s: unexpected status %s", path, resp.Status)
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("wallet: decode response: %w", err)
		}
	}
	return nil
}

// Accounts lists the signer's accounts.
func (b *Bridge) Accounts(ctx context.Context) ([]Account, error) {
	var out struct {
		Accounts []Account `json:"accounts"`
	}
	if err := b.do(ctx, http.MethodGet, "/v1/accounts", nil, &out); err != nil {
		return nil, err
	}
	return out.Accounts, nil
}

// SignAndExecute asks the signer to sign and submit req.
func (b *Bridge) SignAndExecute(ctx context.Context, req Request) (Result, error) {
	var out Result
	if err := b.do(ctx, http.MethodPost, "/v1/sign-and-execute", req, &out); err != nil {
		b.logger.Info("sign and execute failed", zap.String("account", req.Account), zap.Error(err))
		return Result{}, err
	}
	b.logger.Info("transaction submitted", zap.String("account", req.Account), zap.String("digest", out.Digest))
	return out, nil
}
