// Package aelf implements the ledger capabilities against an aelf node's
// HTTP web API.
package aelf

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/chainsafe/crosschain-issuer/internal/metrics"
	"github.com/chainsafe/crosschain-issuer/pkg/ledger"
)

const (
	pathChainStatus        = "/api/blockChain/chainStatus"
	pathExecuteTransaction = "/api/blockChain/executeTransaction"
	pathSendTransaction    = "/api/blockChain/sendTransaction"
	pathTransactionResult  = "/api/blockChain/transactionResult"
	pathMerklePath         = "/api/blockChain/merklePathByTransactionId"
)

// Client talks to one aelf node.
type Client struct {
	chain      ledger.ChainRef
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

var _ ledger.Client = (*Client)(nil)

// NewClient creates a client for the node at cfg.Chain.RPCURL.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if cfg.Chain.RPCURL == "" {
		return nil, errors.New("aelf: rpc url is required")
	}
	if _, err := url.Parse(cfg.Chain.RPCURL); err != nil {
		return nil, fmt.Errorf("aelf: parse rpc url: %w", err)
	}
	s := applyOptions(cfg, opts)
	return &Client{
		chain:      cfg.Chain,
		baseURL:    strings.TrimRight(cfg.Chain.RPCURL, "/"),
		httpClient: s.httpClient,
		limiter:    s.limiter,
		logger:     s.logger.With(zap.String("chain", cfg.Chain.Name)),
	}, nil
}

// Chain returns the chain this client is bound to.
func (c *Client) Chain() ledger.ChainRef {
	return c.chain
}

type chainStatusResponse struct {
	ChainID                     string `json:"ChainId"`
	GenesisContractAddress      string `json:"GenesisContractAddress"`
	BestChainHeight             int64  `json:"BestChainHeight"`
	BestChainHash               string `json:"BestChainHash"`
	LastIrreversibleBlockHeight int64  `json:"LastIrreversibleBlockHeight"`
}

// ChainStatus reads the node's view of the chain head.
func (c *Client) ChainStatus(ctx context.Context) (*ledger.ChainStatus, error) {
	var resp chainStatusResponse
	if err := c.do(ctx, http.MethodGet, pathChainStatus, nil, nil, &resp); err != nil {
		return nil, err
	}
	return &ledger.ChainStatus{
		ChainID:                resp.ChainID,
		RegistryAddress:        resp.GenesisContractAddress,
		BestChainHeight:        resp.BestChainHeight,
		BestChainHash:          resp.BestChainHash,
		LastIrreversibleHeight: resp.LastIrreversibleBlockHeight,
	}, nil
}

type rawTransactionRequest struct {
	RawTransaction string `json:"RawTransaction"`
}

// CallReadOnly executes tx without broadcasting it.
func (c *Client) CallReadOnly(ctx context.Context, tx *ledger.SignedTransaction) ([]byte, error) {
	var out []byte
	body := rawTransactionRequest{RawTransaction: tx.RawHex()}
	if err := c.do(ctx, http.MethodPost, pathExecuteTransaction, nil, body, &out); err != nil {
		return nil, err
	}
	return decodeHexResult(out)
}

// Submit broadcasts tx and returns the node's transaction id.
func (c *Client) Submit(ctx context.Context, tx *ledger.SignedTransaction) (string, error) {
	var resp struct {
		TransactionID string `json:"TransactionId"`
	}
	body := rawTransactionRequest{RawTransaction: tx.RawHex()}
	if err := c.do(ctx, http.MethodPost, pathSendTransaction, nil, body, &resp); err != nil {
		return "", err
	}
	if resp.TransactionID == "" {
		return "", ledger.Reject("", "node returned empty transaction id")
	}
	c.logger.Debug("transaction submitted", zap.String("tx_id", resp.TransactionID))
	return resp.TransactionID, nil
}

type transactionResultResponse struct {
	TransactionID string `json:"TransactionId"`
	Status        string `json:"Status"`
	BlockNumber   int64  `json:"BlockNumber"`
	Error         string `json:"Error"`
	ReturnValue   string `json:"ReturnValue"`
	Transaction   *struct {
		RefBlockNumber int64 `json:"RefBlockNumber"`
	} `json:"Transaction"`
}

// TransactionResult reads the current status of txID.
func (c *Client) TransactionResult(ctx context.Context, txID string) (*ledger.TransactionOutcome, error) {
	var resp transactionResultResponse
	q := url.Values{"transactionId": {txID}}
	if err := c.do(ctx, http.MethodGet, pathTransactionResult, q, nil, &resp); err != nil {
		return nil, err
	}

	out := &ledger.TransactionOutcome{
		TransactionID: txID,
		BlockNumber:   resp.BlockNumber,
		Error:         resp.Error,
	}
	if resp.Transaction != nil {
		out.RefBlockNumber = resp.Transaction.RefBlockNumber
	}
	if resp.ReturnValue != "" {
		if rv, err := hex.DecodeString(resp.ReturnValue); err == nil {
			out.ReturnValue = rv
		}
	}

	switch strings.ToUpper(resp.Status) {
	case "MINED":
		out.Status = ledger.TxStatusMined
	case "FAILED", "NODEVALIDATIONFAILED", "CONFLICT":
		out.Status = ledger.TxStatusFailed
	case "PENDING", "PENDING_VALIDATION":
		out.Status = ledger.TxStatusPending
	case "NOTEXISTED":
		return nil, fmt.Errorf("%w: %s", ledger.ErrTransactionNotFound, txID)
	default:
		return nil, fmt.Errorf("unknown transaction status %q for %s", resp.Status, txID)
	}
	return out, nil
}

// MerklePath fetches the inclusion path of txID in its block.
func (c *Client) MerklePath(ctx context.Context, txID string) (ledger.MerklePath, error) {
	var resp struct {
		MerklePathNodes []struct {
			Hash            string `json:"Hash"`
			IsLeftChildNode bool   `json:"IsLeftChildNode"`
		} `json:"MerklePathNodes"`
	}
	q := url.Values{"transactionId": {txID}}
	if err := c.do(ctx, http.MethodGet, pathMerklePath, q, nil, &resp); err != nil {
		return nil, err
	}
	if len(resp.MerklePathNodes) == 0 {
		return nil, fmt.Errorf("empty merkle path for %s", txID)
	}
	path := make(ledger.MerklePath, 0, len(resp.MerklePathNodes))
	for _, n := range resp.MerklePathNodes {
		path = append(path, ledger.MerklePathNode{Hash: n.Hash, IsLeftSibling: n.IsLeftChildNode})
	}
	return path, nil
}

type errorResponse struct {
	Error *struct {
		Code    string `json:"Code"`
		Message string `json:"Message"`
		Details string `json:"Details"`
	} `json:"Error"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) (err error) {
	start := time.Now()
	defer func() {
		status := "ok"
		if err != nil {
			status = errorLabel(err)
		}
		metrics.NodeRequestsTotal.WithLabelValues(c.chain.Name, path, status).Inc()
		metrics.NodeRequestDuration.WithLabelValues(c.chain.Name, path).Observe(time.Since(start).Seconds())
	}()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %s %s: %v", ledger.ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("%w: read %s response: %v", ledger.ErrTransport, path, err)
	}

	if resp.StatusCode != http.StatusOK {
		return c.decodeError(resp.StatusCode, path, raw)
	}
	switch dst := out.(type) {
	case nil:
		return nil
	case *[]byte:
		*dst = raw
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func (c *Client) decodeError(status int, path string, raw []byte) error {
	var er errorResponse
	if json.Unmarshal(raw, &er) == nil && er.Error != nil && er.Error.Message != "" {
		msg := er.Error.Message
		if er.Error.Details != "" {
			msg += ": " + er.Error.Details
		}
		c.logger.Debug("node rejected request",
			zap.String("path", path),
			zap.Int("status", status),
			zap.String("code", er.Error.Code),
			zap.String("message", msg))
		return ledger.Reject(er.Error.Code, msg)
	}
	if status >= http.StatusInternalServerError || status == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %s returned %d", ledger.ErrTransport, path, status)
	}
	snippet := string(raw)
	if len(snippet) > 256 {
		snippet = snippet[:256]
	}
	return fmt.Errorf("%s returned %d: %s", path, status, snippet)
}

// decodeHexResult accepts either a JSON string or a bare hex body.
func decodeHexResult(raw []byte) ([]byte, error) {
	s := strings.TrimSpace(string(raw))
	if strings.HasPrefix(s, `"`) {
		unq, err := strconv.Unquote(s)
		if err != nil {
			return nil, fmt.Errorf("decode result: %w", err)
		}
		s = unq
	}
	out, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode result hex: %w", err)
	}
	return out, nil
}

func errorLabel(err error) string {
	var rej *ledger.RejectionError
	switch {
	case errors.Is(err, ledger.ErrTransport):
		return "transport"
	case errors.As(err, &rej):
		return "rejected"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "error"
	}
}
