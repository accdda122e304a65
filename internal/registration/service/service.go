// Package service implements the registration core: rule management, the
// registration validator, the registration and survey ledgers, and the
// read-side query facade.
package service

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"

	"rollbook/internal/catalog"
	"rollbook/internal/identity"
	regmetrics "rollbook/internal/registration/metrics"
	"rollbook/pkg/platform/changefeed"
)

var tracer = otel.Tracer("rollbook/internal/registration/service")

// Service orchestrates the registration workflow over its stores. All public
// methods take external identifiers; storage surrogates never cross this
// boundary.
type Service struct {
	campaigns  CampaignStore
	rules      RuleStore
	ledger     LedgerStore
	identities identity.Resolver
	courses    catalog.Resolver
	feed       FeedPublisher
	logger     *slog.Logger
	metrics    *regmetrics.Metrics
	tx         TxRunner
}

// Option configures optional Service collaborators.
type Option func(*Service)

// WithFeed sets the changefeed publisher.
func WithFeed(feed FeedPublisher) Option {
	return func(s *Service) { s.feed = feed }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithMetrics sets the domain metrics.
func WithMetrics(m *regmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithTx sets the transactional runner. Defaults to a pass-through runner
// suitable for the in-memory stores.
func WithTx(tx TxRunner) Option {
	return func(s *Service) { s.tx = tx }
}

// WithCourses sets the course catalog resolver. Defaults to treating course
// references as canonical ids.
func WithCourses(courses catalog.Resolver) Option {
	return func(s *Service) { s.courses = courses }
}

// New builds a Service over the given stores.
func New(campaigns CampaignStore, rules RuleStore, ledgerStore LedgerStore, identities identity.Resolver, opts ...Option) *Service {
	s := &Service{
		campaigns:  campaigns,
		rules:      rules,
		ledger:     ledgerStore,
		identities: identities,
		courses:    catalog.Passthrough{},
		feed:       noopFeed{},
		logger:     slog.Default(),
		tx:         passthroughTx{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type noopFeed struct{}

func (noopFeed) Emit(context.Context, changefeed.Event) error { return nil }

// passthroughTx runs the function without a transaction. The memory stores
// enforce their invariants under their own locks.
type passthroughTx struct{}

func (passthroughTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
