package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitledger/splitledger/internal/money"
)

func TestLedgerInvalidateDuringCompute(t *testing.T) {
	ledger := NewLedger()
	calls := 0

	// A write lands while the aggregation is still running: its result is
	// returned to the caller but must not end up in the cache.
	overlapped := map[string]money.Cents{"alice": 400, "bob": -400}
	got, err := ledger.Balances("g1", func() (map[string]money.Cents, error) {
		calls++
		ledger.Invalidate("g1")
		return overlapped, nil
	})
	require.NoError(t, err)
	assert.Equal(t, overlapped, got)

	// The next read recomputes against the post-write state instead of
	// serving the overlapped result.
	fresh := map[string]money.Cents{"alice": 0, "bob": 0}
	got, err = ledger.Balances("g1", func() (map[string]money.Cents, error) {
		calls++
		return fresh, nil
	})
	require.NoError(t, err)
	assert.Equal(t, fresh, got)
	require.Equal(t, 2, calls)

	// With no write in flight the fresh result is cached as usual.
	got, err = ledger.Balances("g1", func() (map[string]money.Cents, error) {
		calls++
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, fresh, got)
	assert.Equal(t, 2, calls)
}

func TestLedgerInvalidateOtherGroup(t *testing.T) {
	ledger := NewLedger()
	balances := map[string]money.Cents{"alice": 100, "bob": -100}

	_, err := ledger.Balances("g1", func() (map[string]money.Cents, error) {
		return balances, nil
	})
	require.NoError(t, err)

	// Invalidating an unrelated group leaves g1's cache intact.
	ledger.Invalidate("g2")
	got, err := ledger.Balances("g1", func() (map[string]money.Cents, error) {
		t.Fatal("cache miss for an untouched group")
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, balances, got)
}
