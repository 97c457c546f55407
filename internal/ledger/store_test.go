package ledger

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartspend-dev/smartspend/internal/model"
)

func fixedClock() func() time.Time {
	return func() time.Time { return at(2025, 3, 14, 15, 9, 26) }
}

// testStore runs the behaviour every Store implementation must share.
func testStore(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("append then load", func(t *testing.T) {
		s := newStore(t)
		rec, err := s.Append(ctx, "alice", model.KindExpense, "  coffee  ", dec("3.5"))
		require.NoError(t, err)
		assert.Equal(t, "coffee", rec.Category)

		got, err := s.Load(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, model.KindExpense, got[0].Kind)
		assert.Equal(t, "coffee", got[0].Category)
		assert.True(t, got[0].Amount.Equal(dec("3.5")))
		assert.True(t, rec.Timestamp.Equal(got[0].Timestamp))
	})

	t.Run("unknown user is empty", func(t *testing.T) {
		s := newStore(t)
		got, err := s.Load(ctx, "nobody")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("order preserved", func(t *testing.T) {
		s := newStore(t)
		for i := 1; i <= 5; i++ {
			_, err := s.Append(ctx, "bob", model.KindDeposit, fmt.Sprintf("pay %d", i), decimal.NewFromInt(int64(i)))
			require.NoError(t, err)
		}
		got, err := s.Load(ctx, "bob")
		require.NoError(t, err)
		require.Len(t, got, 5)
		for i, rec := range got {
			assert.Equal(t, fmt.Sprintf("pay %d", i+1), rec.Category)
		}
	})

	t.Run("users are isolated", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Append(ctx, "alice", model.KindExpense, "rent", dec("500"))
		require.NoError(t, err)
		_, err = s.Append(ctx, "bob", model.KindDeposit, "salary", dec("900"))
		require.NoError(t, err)

		alice, err := s.Load(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, alice, 1)
		assert.Equal(t, "rent", alice[0].Category)

		bob, err := s.Load(ctx, "bob")
		require.NoError(t, err)
		require.Len(t, bob, 1)
		assert.Equal(t, "salary", bob[0].Category)
	})

	t.Run("load is idempotent", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Append(ctx, "carol", model.KindExpense, "bus", dec("2.25"))
		require.NoError(t, err)

		first, err := s.Load(ctx, "carol")
		require.NoError(t, err)
		second, err := s.Load(ctx, "carol")
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Append(ctx, "dave", model.KindExpense, "nothing", decimal.Zero)
		assert.ErrorIs(t, err, ErrInvalidAmount)
		_, err = s.Append(ctx, "dave", model.KindExpense, "refund", dec("-4"))
		assert.ErrorIs(t, err, ErrInvalidAmount)

		got, err := s.Load(ctx, "dave")
		require.NoError(t, err)
		assert.Empty(t, got, "rejected appends must not be written")
	})

	t.Run("rejects unsafe user ids", func(t *testing.T) {
		s := newStore(t)
		for _, id := range []string{"", "../etc/passwd", "a/b", "a b", "..", "ünïcode"} {
			_, err := s.Append(ctx, id, model.KindExpense, "x", dec("1"))
			assert.ErrorIs(t, err, ErrInvalidUser, "append %q", id)
			_, err = s.Load(ctx, id)
			assert.ErrorIs(t, err, ErrInvalidUser, "load %q", id)
		}
	})

	t.Run("rejects unknown kind", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Append(ctx, "erin", model.Kind("withdrawal"), "atm", dec("20"))
		assert.Error(t, err)
	})

	t.Run("concurrent appends", func(t *testing.T) {
		s := newStore(t)
		const n = 50
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := s.Append(ctx, "frank", model.KindExpense, fmt.Sprintf("item %d", i), dec("1.5"))
				assert.NoError(t, err)
			}(i)
		}
		wg.Wait()

		got, err := s.Load(ctx, "frank")
		require.NoError(t, err)
		assert.Len(t, got, n)

		total := decimal.Zero
		for _, rec := range got {
			total = total.Add(rec.Amount)
		}
		assert.True(t, total.Equal(dec("75")), "got %s", total)
	})

	t.Run("cancelled context", func(t *testing.T) {
		s := newStore(t)
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := s.Append(cctx, "gina", model.KindExpense, "x", dec("1"))
		assert.Error(t, err)
	})
}

func TestValidateUserID(t *testing.T) {
	for _, id := range []string{"alice", "user_01", "A-B", "x"} {
		assert.NoError(t, ValidateUserID(id), id)
	}
	long := make([]byte, 129)
	for i := range long {
		long[i] = 'a'
	}
	for _, id := range []string{"", ".", "a.b", "a/b", `a\b`, string(long)} {
		assert.ErrorIs(t, ValidateUserID(id), ErrInvalidUser, id)
	}
}

func TestValidateAmount(t *testing.T) {
	assert.NoError(t, ValidateAmount(dec("0.01")))
	assert.ErrorIs(t, ValidateAmount(decimal.Zero), ErrInvalidAmount)
	assert.ErrorIs(t, ValidateAmount(dec("-1")), ErrInvalidAmount)
}
