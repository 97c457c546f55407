// Package ledger persists append-only, per-user transaction ledgers.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/smartspend-dev/smartspend/internal/model"
)

var (
	// ErrInvalidAmount rejects zero and negative amounts on append.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInvalidUser rejects user ids that could escape the ledger namespace.
	ErrInvalidUser = errors.New("invalid user id")
	// ErrStorage wraps every failure of the underlying durable store.
	ErrStorage = errors.New("ledger storage unavailable")
	// ErrMalformedRecord marks a stored row that failed validation. Load
	// skips such rows and never returns this error.
	ErrMalformedRecord = errors.New("malformed ledger row")
)

// Store appends to and loads per-user ledgers.
type Store interface {
	// Append validates and persists one record, stamping it with the
	// current time. The returned record is exactly what was written.
	Append(ctx context.Context, userID string, kind model.Kind, category string, amount decimal.Decimal) (model.Record, error)
	// Load returns every valid record of a user, oldest first. A user
	// without a ledger has an empty one.
	Load(ctx context.Context, userID string) ([]model.Record, error)
}

var userIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// ValidateUserID rejects ids that are not a plain token of letters, digits,
// '-' and '_'.
func ValidateUserID(userID string) error {
	if !userIDRe.MatchString(userID) {
		return fmt.Errorf("%w: %q", ErrInvalidUser, userID)
	}
	return nil
}

// ValidateAmount rejects zero and negative amounts.
func ValidateAmount(amount decimal.Decimal) error {
	switch {
	case amount.IsZero():
		return fmt.Errorf("%w: amount must not be zero", ErrInvalidAmount)
	case amount.IsNegative():
		return fmt.Errorf("%w: amount %s must not be negative", ErrInvalidAmount, amount)
	}
	return nil
}

func newRecord(now time.Time, kind model.Kind, category string, amount decimal.Decimal) (model.Record, error) {
	if _, ok := model.ParseKind(string(kind)); !ok {
		return model.Record{}, fmt.Errorf("unknown transaction type %q", kind)
	}
	if err := ValidateAmount(amount); err != nil {
		return model.Record{}, err
	}
	return model.Record{
		// The persisted layout has second precision; keep the returned
		// record identical to what Load will read back.
		Timestamp: now.Local().Truncate(time.Second),
		Kind:      kind,
		Category:  singleLine(strings.TrimSpace(category)),
		Amount:    amount,
	}, nil
}

func storageError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}

// Option configures a store.
type Option func(*options)

type options struct {
	now func() time.Time
	log zerolog.Logger
}

func newOptions(opts []Option) options {
	o := options{now: time.Now, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithClock replaces time.Now as the source of record timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLogger sets the logger used to report skipped rows.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = l }
}

func (o options) skipper(userID string) SkipFunc {
	return func(line int, err error) {
		o.log.Warn().Str("user", userID).Int("line", line).Err(err).Msg("skipping malformed ledger row")
	}
}
