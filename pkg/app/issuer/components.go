package issuer

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/chainsafe/crosschain-issuer/pkg/balance"
	"github.com/chainsafe/crosschain-issuer/pkg/config"
	"github.com/chainsafe/crosschain-issuer/pkg/contracts"
	"github.com/chainsafe/crosschain-issuer/pkg/indexer"
	"github.com/chainsafe/crosschain-issuer/pkg/issuance"
	"github.com/chainsafe/crosschain-issuer/pkg/keys"
	"github.com/chainsafe/crosschain-issuer/pkg/ledger"
	"github.com/chainsafe/crosschain-issuer/pkg/ledger/aelf"
	tokenservice "github.com/chainsafe/crosschain-issuer/pkg/token/service"
)

const redisPingTimeout = 5 * time.Second

// Components are the chain-facing parts shared by the service and the CLI.
type Components struct {
	Main     *ledger.Chain
	Side     *ledger.Chain
	Locator  *contracts.Locator
	Balances *balance.Aggregator
	Tokens   *tokenservice.TokenService

	cfg    *config.Config
	logger *zap.Logger
	redis  *backend.Client
}

// NewComponents connects both chains with the configured signing key and
// builds the services on top of them.
func NewComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Components, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	key, err := keys.Load(cfg.Signer)
	if err != nil {
		return nil, fmt.Errorf("load signing key: %w", err)
	}

	c := &Components{cfg: cfg, logger: logger}

	c.Main, err = openChain(cfg.MainChain, key, logger)
	if err != nil {
		return nil, err
	}
	c.Side, err = openChain(cfg.SideChain, key, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("signer ready", zap.String("address", c.Main.Signer.Address()))

	locatorOpts := []contracts.Option{contracts.WithLogger(logger)}
	if cfg.Redis.Enabled() {
		c.redis = backend.NewClient(&backend.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
		err := c.redis.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			_ = c.redis.Close()
			return nil, fmt.Errorf("connect redis %s: %w", cfg.Redis.Addr, err)
		}
		locatorOpts = append(locatorOpts, contracts.WithSharedCache(
			contracts.NewRedisCache(c.redis,
				contracts.WithPrefix(cfg.Redis.Prefix),
				contracts.WithTTL(cfg.Redis.TTL)),
		))
		logger.Info("using shared contract cache", zap.String("addr", cfg.Redis.Addr))
	}
	c.Locator = contracts.NewLocator(locatorOpts...)

	c.Balances = balance.NewAggregator(c.Side, c.Locator,
		balance.WithLogger(logger),
		balance.WithConcurrency(cfg.Balance.Concurrency),
	)

	var holdings tokenservice.HoldingsSource
	if cfg.Indexer.BaseURL != "" {
		ic, err := indexer.NewClient(cfg.Indexer, indexer.WithLogger(logger))
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("create indexer client: %w", err)
		}
		holdings = ic
	}
	c.Tokens = tokenservice.NewTokenService(c.Side, c.Locator, c.Balances, holdings, cfg.Transfer.TxFinal.Policy(), logger)

	return c, nil
}

func openChain(cfg config.ChainConfig, key *ecdsa.PrivateKey, logger *zap.Logger) (*ledger.Chain, error) {
	ref := ledger.ChainRef{Name: cfg.Name, RPCURL: cfg.RPCURL, ChainID: cfg.ChainID}
	client, err := aelf.NewClient(aelf.Config{
		Chain:          ref,
		RequestTimeout: cfg.RequestTimeout,
		RateLimit:      cfg.RateLimit,
		Burst:          cfg.Burst,
	}, aelf.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("create %s client: %w", cfg.Name, err)
	}
	signer, err := aelf.NewTransactionSigner(key, client)
	if err != nil {
		return nil, fmt.Errorf("create %s signer: %w", cfg.Name, err)
	}
	return ledger.NewChain(ref, client, signer)
}

// OrchestratorConfig converts the issuance settings.
func OrchestratorConfig(cfg config.IssuanceConfig) issuance.Config {
	return issuance.Config{
		ParentSync:           cfg.ParentSync.Policy(),
		TxFinal:              cfg.TxFinal.Policy(),
		CrossChainBackoff:    cfg.CrossChainBackoff,
		CrossChainMaxRetries: cfg.CrossChainMaxRetries,
		CrossChainTimeout:    cfg.CrossChainTimeout,
	}
}

// Orchestrator builds an orchestrator over both chains reporting to obs.
func (c *Components) Orchestrator(obs issuance.Observer) (*issuance.Orchestrator, error) {
	return issuance.New(c.Main, c.Side, c.Locator, OrchestratorConfig(c.cfg.Issuance),
		issuance.WithLogger(c.logger),
		issuance.WithObserver(obs),
	)
}

// Ready checks that both nodes answer.
func (c *Components) Ready(ctx context.Context) error {
	for _, chain := range []*ledger.Chain{c.Main, c.Side} {
		if _, err := chain.Client.ChainStatus(ctx); err != nil {
			return fmt.Errorf("%s: %w", chain.Ref.Name, err)
		}
	}
	return nil
}

// Close releases the Redis connection, if any.
func (c *Components) Close() {
	if c.redis != nil {
		_ = c.redis.Close()
	}
}
