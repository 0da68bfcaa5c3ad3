// Package indexer reads NFT holdings from the marketplace indexer API.
package indexer

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

	"github.com/chainsafe/crosschain-issuer/internal/metrics"
)

const holdingsPath = "/api/app/nft/nft-infos-user-profile/myhold"

// ErrUnavailable marks indexer responses that could not be used.
var ErrUnavailable = errors.New("indexer unavailable")

// Item is one NFT the indexer lists for an owner.
type Item struct {
	Symbol       string `json:"nftSymbol"`
	TokenName    string `json:"tokenName"`
	CollectionID string `json:"nftCollectionId,omitempty"`
	ImageURL     string `json:"previewImage,omitempty"`
	ChainID      string `json:"chainId,omitempty"`
}

// Config describes the indexer endpoint.
type Config struct {
	BaseURL string        `yaml:"base_url" validate:"omitempty,url"`
	Chains  []string      `yaml:"chains" default:"[\"tDVV\"]"`
	Timeout time.Duration `yaml:"timeout" default:"15s"`
}

// Client queries the holdings endpoint.
type Client struct {
	baseURL string
	chains  []string
	http    *http.Client
	logger  *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger. If not provided, a no-op logger is used.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// NewClient creates an indexer client.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("indexer base url is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		chains:  cfg.Chains,
		http:    &http.Client{Timeout: timeout},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

type holdingsRequest struct {
	ChainList      []string `json:"ChainList"`
	HasListingFlag bool     `json:"hasListingFlag"`
	HasAuctionFlag bool     `json:"hasAuctionFlag"`
	HasOfferFlag   bool     `json:"hasOfferFlag"`
	CollectionIDs  []string `json:"collectionIds"`
	Address        string   `json:"address"`
	Sorting        string   `json:"sorting"`
}

type holdingsResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    struct {
		TotalCount int    `json:"totalCount"`
		Items      []Item `json:"items"`
	} `json:"data"`
}

// Holdings lists the NFTs owner holds on the configured chains.
func (c *Client) Holdings(ctx context.Context, owner string) ([]Item, error) {
	body, err := json.Marshal(holdingsRequest{
		ChainList:     c.chains,
		CollectionIDs: []string{},
		Address:       owner,
		Sorting:       "ListingTime DESC",
	})
	if err != nil {
		return nil, fmt.Errorf("encode holdings request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+holdingsPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build holdings request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ErrorsTotal.WithLabelValues("indexer", "transport").Inc()
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		metrics.ErrorsTotal.WithLabelValues("indexer", "status").Inc()
		c.logger.Warn("indexer returned non-200",
			zap.Int("status", resp.StatusCode),
			zap.String("owner", owner))
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var out holdingsResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		metrics.ErrorsTotal.WithLabelValues("indexer", "decode").Inc()
		return nil, fmt.Errorf("%w: decode: %v", ErrUnavailable, err)
	}
	if out.Code != "" && out.Code != "20000" {
		return nil, fmt.Errorf("%w: code %s: %s", ErrUnavailable, out.Code, out.Message)
	}
	return out.Data.Items, nil
}
