package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"time"

	contracts "certledger/contracts/ledger"
	"certledger/pkg/domain"
	dErrors "certledger/pkg/domain-errors"
)

// HTTPClient implements ChainClient by calling the chain bridge service, which
// holds the contract ABIs and signer keys and relays to the RPC provider.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Ensure HTTPClient implements ChainClient
var _ ChainClient = (*HTTPClient)(nil)

// HTTPClientOption configures the HTTPClient.
type HTTPClientOption func(*HTTPClient)

// WithHTTPClient sets a custom HTTP client (for testing).
func WithHTTPClient(client *http.Client) HTTPClientOption {
	return func(c *HTTPClient) {
		c.httpClient = client
	}
}

// NewHTTPClient creates a new HTTP-based chain bridge client.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration, opts ...HTTPClientOption) *HTTPClient {
	c := &HTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// callResponse wraps a read-only result. The bridge forwards whatever shape
// its web3 decoder produced, so Result stays raw here.
type callResponse struct {
	Result json.RawMessage `json:"result"`
}

type estimateResponse struct {
	Gas uint64 `json:"gas"`
}

// weiResponse carries a wei amount as a decimal string to survive JSON's
// number precision limits.
type weiResponse struct {
	Wei string `json:"wei"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Call performs a read-only contract invocation via the bridge.
func (c *HTTPClient) Call(ctx context.Context, req contracts.CallRequest) (json.RawMessage, error) {
	var resp callResponse
	if err := c.post(ctx, "/v1/call", req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Result) == 0 {
		return nil, dErrors.New(dErrors.CodeContractCall, "bridge returned empty call result")
	}
	return resp.Result, nil
}

// Send submits a state-changing invocation; the bridge blocks until mined.
func (c *HTTPClient) Send(ctx context.Context, req contracts.SendRequest) (*contracts.Receipt, error) {
	var receipt contracts.Receipt
	if err := c.post(ctx, "/v1/send", req, &receipt); err != nil {
		return nil, err
	}
	if receipt.TxHash == "" {
		return nil, dErrors.New(dErrors.CodeContractCall, "bridge returned receipt without tx hash")
	}
	return &receipt, nil
}

// EstimateGas estimates the gas a send would consume.
func (c *HTTPClient) EstimateGas(ctx context.Context, req contracts.SendRequest) (uint64, error) {
	var resp estimateResponse
	if err := c.post(ctx, "/v1/estimate-gas", req, &resp); err != nil {
		return 0, err
	}
	return resp.Gas, nil
}

// GasPrice returns the current gas price in wei.
func (c *HTTPClient) GasPrice(ctx context.Context) (*big.Int, error) {
	var resp weiResponse
	if err := c.get(ctx, "/v1/gas-price", &resp); err != nil {
		return nil, err
	}
	return parseWei(resp.Wei)
}

// Balance returns the wallet's balance in wei.
func (c *HTTPClient) Balance(ctx context.Context, addr domain.WalletAddress) (*big.Int, error) {
	var resp weiResponse
	if err := c.get(ctx, "/v1/balance/"+addr.String(), &resp); err != nil {
		return nil, err
	}
	return parseWei(resp.Wei)
}

func parseWei(s string) (*big.Int, error) {
	if s == "" {
		return nil, dErrors.New(dErrors.CodeContractCall, "bridge returned empty wei amount")
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, dErrors.New(dErrors.CodeContractCall, "bridge returned malformed wei amount: "+s)
	}
	return v, nil
}

func (c *HTTPClient) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to marshal bridge request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create bridge request")
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *HTTPClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create bridge request")
	}
	return c.do(req, out)
}

func (c *HTTPClient) do(req *http.Request, out any) error {
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(req.Context().Err(), context.DeadlineExceeded) {
			return dErrors.Wrap(err, dErrors.CodeTimeout, "chain bridge request timeout")
		}
		return dErrors.Wrap(err, dErrors.CodeContractCall, "chain bridge unreachable")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeContractCall, "failed to read bridge response")
	}

	if resp.StatusCode != http.StatusOK {
		var errResp errorResponse
		msg := fmt.Sprintf("bridge returned status %d", resp.StatusCode)
		if json.Unmarshal(data, &errResp) == nil && errResp.Message != "" {
			msg = errResp.Message
		}
		return dErrors.New(dErrors.CodeContractCall, msg)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return dErrors.Wrap(err, dErrors.CodeContractCall, "failed to parse bridge response")
	}
	return nil
}
