// Package tracker records transaction statements and answers questions
// about a user's ledger. It is the single entry point used by the CLI and
// the HTTP API.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/smartspend-dev/smartspend/internal/analysis"
	"github.com/smartspend-dev/smartspend/internal/events"
	"github.com/smartspend-dev/smartspend/internal/ledger"
	"github.com/smartspend-dev/smartspend/internal/model"
	"github.com/smartspend-dev/smartspend/internal/parser"
	"github.com/smartspend-dev/smartspend/internal/report"
)

var (
	// ErrAmountRequired means the statement had no amount and none was
	// supplied. It wraps ledger.ErrInvalidAmount.
	ErrAmountRequired = fmt.Errorf("%w: amount is required", ledger.ErrInvalidAmount)
	// ErrEmptyStatement rejects blank statement text.
	ErrEmptyStatement = errors.New("statement text is required")
	// ErrNoTransactions is returned by Analyze for an empty ledger.
	ErrNoTransactions = errors.New("no transactions yet")
	// ErrAnalysisUnavailable is returned by Analyze when no analyzer is
	// configured.
	ErrAnalysisUnavailable = errors.New("analysis is not configured")
	// ErrAnalysisFailed wraps errors of the analysis collaborator.
	ErrAnalysisFailed = errors.New("analysis failed")
)

// Service records statements into a ledger store.
type Service struct {
	store     ledger.Store
	analyzer  analysis.Analyzer
	publisher events.Publisher
	summary   report.Options
	log       zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithAnalyzer sets the collaborator used by Analyze.
func WithAnalyzer(a analysis.Analyzer) Option {
	return func(s *Service) { s.analyzer = a }
}

// WithPublisher sets where transaction events are sent.
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithSummaryOptions sets the top-N and recent window of summaries.
func WithSummaryOptions(o report.Options) Option {
	return func(s *Service) { s.summary = o }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// New creates a Service over store.
func New(store ledger.Store, opts ...Option) *Service {
	s := &Service{
		store:     store,
		publisher: events.Nop{},
		summary:   report.DefaultOptions(),
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddTransaction classifies text and appends it to the user's ledger. A
// non-nil amount replaces the amount found in the text.
func (s *Service) AddTransaction(ctx context.Context, userID, text string, amount *decimal.Decimal) (model.Record, error) {
	if strings.TrimSpace(text) == "" {
		return model.Record{}, ErrEmptyStatement
	}

	kind, category, parsed := parser.Parse(text)
	switch {
	case amount != nil:
		parsed = *amount
	case parsed.IsZero():
		return model.Record{}, ErrAmountRequired
	}

	rec, err := s.store.Append(ctx, userID, kind, category, parsed)
	if err != nil {
		return model.Record{}, err
	}

	// The record is durable at this point; a lost notification is only
	// logged.
	if err := s.publisher.Publish(ctx, events.TransactionRecorded(userID, rec)); err != nil {
		s.log.Warn().Err(err).Str("user", userID).Msg("publishing transaction event")
	}

	s.log.Info().
		Str("user", userID).
		Str("type", string(rec.Kind)).
		Str("amount", rec.Amount.String()).
		Msg("transaction recorded")
	return rec, nil
}

// Records returns the user's valid ledger records, oldest first.
func (s *Service) Records(ctx context.Context, userID string) ([]model.Record, error) {
	return s.store.Load(ctx, userID)
}

// Summary aggregates the user's ledger.
func (s *Service) Summary(ctx context.Context, userID string) (report.View, error) {
	records, err := s.store.Load(ctx, userID)
	if err != nil {
		return report.View{}, err
	}
	return report.AggregateWith(records, s.summary), nil
}

// Payload returns the structured summary of the user's ledger.
func (s *Service) Payload(ctx context.Context, userID string) (report.Payload, error) {
	v, err := s.Summary(ctx, userID)
	if err != nil {
		return report.Payload{}, err
	}
	return report.FormatSummary(v), nil
}

// Transactions returns the per-category ledger view.
func (s *Service) Transactions(ctx context.Context, userID string) (report.Ledger, error) {
	v, err := s.Summary(ctx, userID)
	if err != nil {
		return report.Ledger{}, err
	}
	return report.LedgerPayload(v), nil
}

// Stats returns the headline numbers of the user's ledger.
func (s *Service) Stats(ctx context.Context, userID string) (report.Stats, error) {
	v, err := s.Summary(ctx, userID)
	if err != nil {
		return report.Stats{}, err
	}
	return report.StatsPayload(v), nil
}

// Analyze answers query about the user's ledger.
func (s *Service) Analyze(ctx context.Context, userID, query string) (string, error) {
	if s.analyzer == nil {
		return "", ErrAnalysisUnavailable
	}
	v, err := s.Summary(ctx, userID)
	if err != nil {
		return "", err
	}
	if v.Empty() {
		return "", ErrNoTransactions
	}
	answer, err := s.analyzer.Analyze(ctx, report.FormatSummary(v), query)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAnalysisFailed, err)
	}
	return answer, nil
}
