package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// NodeRequestsTotal counts web API requests to ledger nodes by chain, endpoint and outcome
	NodeRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "issuer_node_requests_total",
			Help: "Total number of ledger node requests",
		},
		[]string{"chain", "endpoint", "status"},
	)

	// NodeRequestDuration tracks ledger node request latency
	NodeRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "issuer_node_request_duration_seconds",
			Help:    "Ledger node request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"chain", "endpoint"},
	)

	// IssuancesTotal counts finished issuance runs by mode and status
	IssuancesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "issuer_issuances_total",
			Help: "Total number of issuance runs",
		},
		[]string{"mode", "status"},
	)

	// IssuanceDuration tracks end-to-end issuance time
	IssuanceDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "issuer_issuance_duration_seconds",
			Help:    "Issuance run duration in seconds",
			Buckets: []float64{5, 15, 30, 60, 120, 300, 600, 1200},
		},
		[]string{"mode"},
	)

	// StageDuration tracks the time spent in each workflow stage
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "issuer_stage_duration_seconds",
			Help:    "Workflow stage duration in seconds",
			Buckets: []float64{0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"stage"},
	)

	// TransactionsSent counts transactions submitted to each chain
	TransactionsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "issuer_transactions_sent_total",
			Help: "Total number of transactions sent",
		},
		[]string{"chain", "method", "status"},
	)

	// CrossChainRetries counts side chain create attempts that were retried
	CrossChainRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "issuer_crosschain_retries_total",
			Help: "Total number of retried cross-chain create attempts",
		},
		[]string{"reason"},
	)

	// ActiveIssuances tracks runs currently in flight
	ActiveIssuances = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "issuer_active_issuances",
			Help: "Number of issuance runs in flight",
		},
	)

	// ContractLookups counts contract address resolutions by source
	ContractLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "issuer_contract_lookups_total",
			Help: "Total number of contract address lookups",
		},
		[]string{"chain", "source"},
	)

	// BalanceQueries counts per-owner balance reads by outcome
	BalanceQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "issuer_balance_queries_total",
			Help: "Total number of balance queries",
		},
		[]string{"status"},
	)

	// LastParentHeight tracks the parent chain height last observed on the side chain
	LastParentHeight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "issuer_last_parent_height",
			Help: "Parent chain height indexed by the side chain",
		},
		[]string{"chain"},
	)

	// ErrorsTotal counts errors by type
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "issuer_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)
)
