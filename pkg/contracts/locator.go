// Package contracts resolves well-known system contract addresses through a
// chain's contract registry and caches them.
package contracts

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/chainsafe/crosschain-issuer/internal/metrics"
	"github.com/chainsafe/crosschain-issuer/pkg/ledger"
	"github.com/chainsafe/crosschain-issuer/pkg/ledger/aelf"
)

// Well-known contract names.
const (
	NameToken      = "AElf.ContractNames.Token"
	NameCrossChain = "AElf.ContractNames.CrossChain"
)

const (
	methodGetContractAddressByName = "GetContractAddressByName"
	methodGetParentChainHeight     = "GetParentChainHeight"
)

const defaultLookupTimeout = 30 * time.Second

// ErrContractNotFound is returned when the registry has no address for a name.
var ErrContractNotFound = errors.New("contract not found")

// Handle is a resolved contract on one chain.
type Handle struct {
	ChainID int32
	Name    string
	Address string
}

// SharedCache is an optional second cache tier shared between processes.
type SharedCache interface {
	Get(ctx context.Context, chainID int32, name string) (address string, ok bool, err error)
	Set(ctx context.Context, chainID int32, name, address string) error
}

type cacheKey struct {
	chainID int32
	name    string
}

func (k cacheKey) String() string {
	return strconv.Itoa(int(k.chainID)) + "/" + k.name
}

// Locator resolves and caches contract handles. It is safe for concurrent use;
// concurrent misses for the same key share one registry lookup.
type Locator struct {
	mu    sync.RWMutex
	cache map[cacheKey]Handle
	group singleflight.Group

	shared        SharedCache
	lookupTimeout time.Duration
	logger        *zap.Logger
}

// Option configures a Locator.
type Option func(*Locator)

// WithLogger sets the logger. If not provided, a no-op logger is used.
func WithLogger(l *zap.Logger) Option {
	return func(loc *Locator) { loc.logger = l }
}

// WithLookupTimeout bounds a single registry lookup. Non-positive values are
// ignored.
func WithLookupTimeout(d time.Duration) Option {
	return func(loc *Locator) {
		if d > 0 {
			loc.lookupTimeout = d
		}
	}
}

// WithSharedCache adds a shared tier consulted before the registry.
func WithSharedCache(c SharedCache) Option {
	return func(loc *Locator) { loc.shared = c }
}

// NewLocator creates an empty locator.
func NewLocator(opts ...Option) *Locator {
	l := &Locator{
		cache:         make(map[cacheKey]Handle),
		lookupTimeout: defaultLookupTimeout,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Resolve returns the handle for name on chain.
//
// The registry lookup is shared by every caller waiting on the same key and
// runs detached from any one caller's context, bounded by the lookup timeout.
// A caller whose context ends stops waiting without failing the others.
func (l *Locator) Resolve(ctx context.Context, chain *ledger.Chain, name string) (Handle, error) {
	key := cacheKey{chainID: chain.Ref.ChainID, name: name}
	if h, ok := l.cached(key); ok {
		metrics.ContractLookups.WithLabelValues(chain.Ref.Name, "memory").Inc()
		return h, nil
	}

	ch := l.group.DoChan(key.String(), func() (any, error) {
		if h, ok := l.cached(key); ok {
			return h, nil
		}
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.lookupTimeout)
		defer cancel()
		h, err := l.lookup(lctx, chain, key)
		if err != nil {
			return Handle{}, err
		}
		l.mu.Lock()
		l.cache[key] = h
		l.mu.Unlock()
		return h, nil
	})

	select {
	case <-ctx.Done():
		return Handle{}, fmt.Errorf("resolve %s on %s: %w", name, chain.Ref, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return Handle{}, res.Err
		}
		return res.Val.(Handle), nil
	}
}

// Invalidate drops a cached handle, e.g. after a contract upgrade.
func (l *Locator) Invalidate(chainID int32, name string) {
	l.mu.Lock()
	delete(l.cache, cacheKey{chainID: chainID, name: name})
	l.mu.Unlock()
}

func (l *Locator) cached(key cacheKey) (Handle, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	h, ok := l.cache[key]
	return h, ok
}

func (l *Locator) lookup(ctx context.Context, chain *ledger.Chain, key cacheKey) (Handle, error) {
	if l.shared != nil {
		addr, ok, err := l.shared.Get(ctx, key.chainID, key.name)
		if err != nil {
			l.logger.Warn("shared contract cache read failed", zap.String("key", key.String()), zap.Error(err))
		} else if ok {
			metrics.ContractLookups.WithLabelValues(chain.Ref.Name, "shared").Inc()
			return Handle{ChainID: key.chainID, Name: key.name, Address: addr}, nil
		}
	}

	status, err := chain.Client.ChainStatus(ctx)
	if err != nil {
		return Handle{}, fmt.Errorf("chain status on %s: %w", chain.Ref, err)
	}
	if status.RegistryAddress == "" {
		return Handle{}, fmt.Errorf("%s reports no registry contract: %w", chain.Ref, ErrContractNotFound)
	}

	out, err := chain.View(ctx, ledger.Call{
		Contract: status.RegistryAddress,
		Method:   methodGetContractAddressByName,
		Params:   aelf.HashValue(ledger.HashName(key.name)),
	})
	if err != nil {
		return Handle{}, fmt.Errorf("resolve %s on %s: %w", key.name, chain.Ref, err)
	}
	raw, err := aelf.DecodeBytesValue(out)
	if err != nil {
		return Handle{}, fmt.Errorf("decode %s address: %w", key.name, err)
	}
	if len(raw) == 0 {
		return Handle{}, fmt.Errorf("%s on %s: %w", key.name, chain.Ref, ErrContractNotFound)
	}
	metrics.ContractLookups.WithLabelValues(chain.Ref.Name, "registry").Inc()

	h := Handle{ChainID: key.chainID, Name: key.name, Address: aelf.EncodeAddress(raw)}
	l.logger.Info("resolved contract",
		zap.String("chain", chain.Ref.Name),
		zap.String("name", key.name),
		zap.String("address", h.Address))

	if l.shared != nil {
		if err := l.shared.Set(ctx, key.chainID, key.name, h.Address); err != nil {
			l.logger.Warn("shared contract cache write failed", zap.String("key", key.String()), zap.Error(err))
		}
	}
	return h, nil
}

// ParentChainHeight reads the parent chain height the side chain has indexed
// from its cross-chain contract.
func ParentChainHeight(ctx context.Context, chain *ledger.Chain, crossChain Handle) (int64, error) {
	out, err := chain.View(ctx, ledger.Call{
		Contract: crossChain.Address,
		Method:   methodGetParentChainHeight,
	})
	if err != nil {
		return 0, err
	}
	h, err := aelf.DecodeInt64Value(out)
	if err != nil {
		return 0, fmt.Errorf("decode parent chain height: %w", err)
	}
	metrics.LastParentHeight.WithLabelValues(chain.Ref.Name).Set(float64(h))
	return h, nil
}
